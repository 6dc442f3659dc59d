package indexers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/felipemarinho97/torrent-streams/schema"
)

var zamunda = IndexerMeta{
	Label:           "zamunda",
	URL:             "https://zamunda.net",
	SearchURL:       "/catalogs/movies?letter=&t=movie&search=%s&field=name&comb=yes",
	SeriesSearchURL: "/catalogs/series?letter=&t=series&search=%s&field=name&comb=yes",
	Charset:         "windows-1251",
	YearInQuery:     true,
}

var zamundaCH = IndexerMeta{
	Label:       "zamunda.ch",
	URL:         "https://zamunda.ch",
	SearchURL:   "/catalogs/movies?letter=&t=movie&search=%s&field=name&comb=yes",
	Charset:     "windows-1251",
	YearInQuery: true,
}

const (
	zamundaTitleSelector    = `td.colheadd a[href*="/banan?id="]`
	zamundaDownloadSelector = `a[href*="/download.php/"], a[href*=".torrent"]`
)

var (
	zamundaFlagRegex     = regexp.MustCompile(`<img[^>]*src=['"][^'"]*flag_([^'"]*)['"][^>]*>.*?<a[^>]*href=['"][^'"]*/banan\?id=(\d+)`)
	zamundaPeersRegex    = regexp.MustCompile(`(?s)<b>(\d+)</b>.*?<b>(\d+)</b>`)
	zamundaTitleRegex    = regexp.MustCompile(`(?i)<a[^>]*href="[^"]*/banan\?id=(\d+)"[^>]*>([^<]+)</a>`)
	zamundaTorrentRegex  = regexp.MustCompile(`(?i)<a[^>]*href="([^"]*(?:download\.php|\.torrent)[^"]*)"[^>]*>`)
	zamundaFlagNameRegex = regexp.MustCompile(`flag_([a-z0-9]+)`)
)

// zamundaParser reads the movie and series catalogs of zamunda.net and
// zamunda.ch, which share their markup.
type zamundaParser struct {
	label   string
	baseURL string
}

func (p *zamundaParser) ParseListings(body, query string) []schema.RawListing {
	return parseWithFallback(p.label, body, p.parseDocument, p.parseRegex)
}

func (p *zamundaParser) parseDocument(body string) ([]schema.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var downloads []string
	doc.Find(zamundaDownloadSelector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			downloads = append(downloads, href)
		}
	})

	var sizes []string
	doc.Find(`td > font[color="red"]`).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); isSizeLabel(text) {
			sizes = append(sizes, text)
		}
	})

	flagsByID := zamundaFlagsByID(body)
	seedersFound := false

	var listings []schema.RawListing
	doc.Find(zamundaTitleSelector).Each(func(i int, s *goquery.Selection) {
		parseRow(p.label, i, func() {
			title := cleanTitle(s.Text())
			href := s.AttrOr("href", "")
			id := extractID(href)
			if title == "" || id == "" {
				return
			}

			n := len(listings)
			row := s.Closest("tr")
			listing := schema.RawListing{
				Title:     title,
				DetailURL: absoluteURL(p.baseURL, href),
			}

			if dl := row.Find(zamundaDownloadSelector).First(); dl.Length() > 0 {
				listing.DownloadURL = absoluteURL(p.baseURL, dl.AttrOr("href", ""))
			} else if n < len(downloads) {
				listing.DownloadURL = absoluteURL(p.baseURL, downloads[n])
			}

			if peers := row.Find("td.tddownloaded b"); peers.Length() > 0 {
				seedersFound = true
				listing.Seeders = parseCount(peers.Eq(0).Text())
				if peers.Length() > 1 {
					listing.Leechers = parseCount(peers.Eq(1).Text())
				}
			}

			if size := strings.TrimSpace(row.Find(`font[color="red"]`).First().Text()); isSizeLabel(size) {
				listing.Size = size
			} else if n < len(sizes) {
				listing.Size = sizes[n]
			}

			structural := zamundaRowFlags(row).Merge(flagsByID[id])
			listing.Flags = structural.Merge(flagsFromTitle(title))

			listings = append(listings, listing)
		})
	})

	if !seedersFound {
		applyPeersByIndex(body, listings)
	}

	return listings, nil
}

// parseRegex recovers titles and torrent links when the catalog table cannot
// be queried.
func (p *zamundaParser) parseRegex(body string) ([]schema.RawListing, error) {
	var listings []schema.RawListing
	for i, m := range zamundaTitleRegex.FindAllStringSubmatch(body, -1) {
		parseRow(p.label, i, func() {
			title := cleanTitle(m[2])
			if title == "" {
				return
			}
			listings = append(listings, schema.RawListing{
				Title:     title,
				DetailURL: absoluteURL(p.baseURL, "/banan?id="+m[1]),
				Flags:     flagsFromTitle(title),
			})
		})
	}

	for i, m := range zamundaTorrentRegex.FindAllStringSubmatch(body, len(listings)) {
		listings[i].DownloadURL = absoluteURL(p.baseURL, m[1])
	}

	applyPeersByIndex(body, listings)
	return listings, nil
}

func zamundaFlagsByID(body string) map[string]schema.Flags {
	flags := map[string]schema.Flags{}
	for _, m := range zamundaFlagRegex.FindAllStringSubmatch(body, -1) {
		flags[m[2]] = flags[m[2]].Merge(zamundaFlag(m[1]))
	}
	return flags
}

func zamundaRowFlags(row *goquery.Selection) schema.Flags {
	var flags schema.Flags
	row.Find(`img[src*="flag_"]`).Each(func(_ int, img *goquery.Selection) {
		if m := zamundaFlagNameRegex.FindStringSubmatch(strings.ToLower(img.AttrOr("src", ""))); m != nil {
			flags = flags.Merge(zamundaFlag(m[1]))
		}
	})
	return flags
}

func zamundaFlag(name string) schema.Flags {
	return schema.Flags{
		LocalizedAudio: strings.Contains(name, "bgaudio"),
		LocalizedSubs:  strings.Contains(name, "bgsub"),
		Is3D:           strings.Contains(name, "3d"),
	}
}

// applyPeersByIndex assigns bold seeder/leecher pairs to listings in page
// order.
func applyPeersByIndex(body string, listings []schema.RawListing) {
	for i, m := range zamundaPeersRegex.FindAllStringSubmatch(body, len(listings)) {
		listings[i].Seeders = parseCount(m[1])
		listings[i].Leechers = parseCount(m[2])
	}
}
