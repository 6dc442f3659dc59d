package indexers

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/torrent"
)

const DefaultZamundaRipLimit = 50

func zamundaRip(limit int) IndexerMeta {
	if limit <= 0 {
		limit = DefaultZamundaRipLimit
	}
	return IndexerMeta{
		Label:     "zamunda.rip",
		URL:       "https://zamunda.rip",
		SearchURL: fmt.Sprintf("/api/torznab/api?t=search&q=%%s&limit=%d", limit),
	}
}

type torznabFeed struct {
	Items []torznabItem `xml:"channel>item"`
}

type torznabItem struct {
	Title     string `xml:"title"`
	Link      string `xml:"link"`
	GUID      string `xml:"guid"`
	Enclosure struct {
		URL    string `xml:"url,attr"`
		Length int64  `xml:"length,attr"`
	} `xml:"enclosure"`
	Attrs []struct {
		Name  string `xml:"name,attr"`
		Value string `xml:"value,attr"`
	} `xml:"attr"`
}

func (it torznabItem) attr(name string) string {
	for _, a := range it.Attrs {
		if strings.EqualFold(a.Name, name) {
			return a.Value
		}
	}
	return ""
}

var (
	torznabItemRegex      = regexp.MustCompile(`(?is)<item>(.*?)</item>`)
	torznabTitleRegex     = regexp.MustCompile(`(?is)<title>(?:<!\[CDATA\[)?(.*?)(?:\]\]>)?</title>`)
	torznabLinkRegex      = regexp.MustCompile(`(?is)<link>(?:<!\[CDATA\[)?(.*?)(?:\]\]>)?</link>`)
	torznabEnclosureRegex = regexp.MustCompile(`(?is)<enclosure[^>]*url=["']([^"']+)["']`)
)

// torznabParser reads the zamunda.rip Torznab feed.
type torznabParser struct {
	label string
}

func (p *torznabParser) ParseListings(body, query string) []schema.RawListing {
	return parseWithFallback(p.label, body, p.parseFeed, p.parseRegex)
}

func (p *torznabParser) parseFeed(body string) ([]schema.RawListing, error) {
	var feed torznabFeed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		return nil, fmt.Errorf("failed to decode torznab feed: %w", err)
	}

	var listings []schema.RawListing
	for i, it := range feed.Items {
		parseRow(p.label, i, func() {
			title := cleanTitle(it.Title)
			if title == "" {
				return
			}

			listing := schema.RawListing{
				Title:    title,
				Seeders:  parseCount(it.attr("seeders")),
				Leechers: max(0, parseCount(it.attr("peers"))-parseCount(it.attr("seeders"))),
				Flags:    flagsFromTitle(title),
			}
			if leechers := it.attr("leechers"); leechers != "" {
				listing.Leechers = parseCount(leechers)
			}

			p.setRefs(&listing, it.Enclosure.URL, it.Link)

			length := it.Enclosure.Length
			if size, err := strconv.ParseInt(it.attr("size"), 10, 64); err == nil && size > 0 {
				length = size
			}
			if length > 0 {
				listing.Size = humanize.IBytes(uint64(length))
			}

			listings = append(listings, listing)
		})
	}
	return listings, nil
}

func (p *torznabParser) parseRegex(body string) ([]schema.RawListing, error) {
	var listings []schema.RawListing
	for i, m := range torznabItemRegex.FindAllStringSubmatch(body, -1) {
		parseRow(p.label, i, func() {
			t := torznabTitleRegex.FindStringSubmatch(m[1])
			if t == nil {
				return
			}
			title := cleanTitle(html.UnescapeString(t[1]))
			if title == "" {
				return
			}

			listing := schema.RawListing{Title: title, Flags: flagsFromTitle(title)}
			var enclosure, link string
			if e := torznabEnclosureRegex.FindStringSubmatch(m[1]); e != nil {
				enclosure = html.UnescapeString(e[1])
			}
			if l := torznabLinkRegex.FindStringSubmatch(m[1]); l != nil {
				link = html.UnescapeString(strings.TrimSpace(l[1]))
			}
			p.setRefs(&listing, enclosure, link)
			listings = append(listings, listing)
		})
	}
	return listings, nil
}

// setRefs records the magnet and the direct download found in an item. The
// link wins over the enclosure as the download.
func (p *torznabParser) setRefs(listing *schema.RawListing, enclosure, link string) {
	enclosure = strings.TrimSpace(enclosure)
	link = strings.TrimSpace(link)

	for _, ref := range []string{link, enclosure} {
		switch {
		case ref == "":
		case torrent.IsMagnet(ref):
			if listing.MagnetURI == "" {
				listing.MagnetURI = ref
			}
		case listing.DownloadURL == "":
			listing.DownloadURL = ref
		}
	}
}
