package indexers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/torrent"
)

var zamundaSE = IndexerMeta{
	Label:       "zamunda.se",
	URL:         "http://zamunda.se",
	SearchURL:   "/catalogue.php?search=%s&catalog=movies",
	Charset:     "windows-1251",
	YearInQuery: true,
}

var (
	zamundaSEDetailRegex = regexp.MustCompile(`(?i)<a[^>]*href=["'][^"']*details\.php\?id=(\d+)[^"']*["'][^>]*>([^<]+)</a>`)
	detailMagnetRegex    = regexp.MustCompile(`magnet:\?xt=urn:btih:([a-fA-F0-9]{40})[^"'<\s]*`)
)

type zamundaSEParser struct {
	label   string
	baseURL string
}

func (p *zamundaSEParser) ParseListings(body, query string) []schema.RawListing {
	return parseWithFallback(p.label, body, p.parseDocument, p.parseRegex)
}

func (p *zamundaSEParser) parseDocument(body string) ([]schema.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var listings []schema.RawListing
	doc.Find(`td.colheadd a[href*="details.php?id="]`).Each(func(i int, s *goquery.Selection) {
		parseRow(p.label, i, func() {
			title := cleanTitle(s.Text())
			id := extractID(s.AttrOr("href", ""))
			if title == "" || id == "" {
				return
			}

			download := doc.Find(fmt.Sprintf(`a[href*="/download.php/%s/"]`, id)).First()
			if download.Length() == 0 {
				return
			}

			row := s.Closest("tr")
			listing := schema.RawListing{
				Title:       title,
				DetailURL:   p.detailURL(id),
				DownloadURL: absoluteURL(p.baseURL, download.AttrOr("href", "")),
				Size:        sizeRegex.FindString(row.Text()),
			}
			listing.Flags = zamundaRowFlags(row).Merge(flagsFromTitle(title))
			listings = append(listings, listing)
		})
	})

	return listings, nil
}

// parseRegex yields detail-only rows; the magnet is resolved from the detail
// page later.
func (p *zamundaSEParser) parseRegex(body string) ([]schema.RawListing, error) {
	seen := map[string]bool{}
	var listings []schema.RawListing
	for i, m := range zamundaSEDetailRegex.FindAllStringSubmatch(body, -1) {
		parseRow(p.label, i, func() {
			title := cleanTitle(m[2])
			if title == "" || seen[m[1]] {
				return
			}
			seen[m[1]] = true
			listings = append(listings, schema.RawListing{
				Title:     title,
				DetailURL: p.detailURL(m[1]),
				Flags:     flagsFromTitle(title),
			})
		})
	}
	return listings, nil
}

func (p *zamundaSEParser) detailURL(id string) string {
	return fmt.Sprintf("%s/details.php?id=%s", strings.TrimRight(p.baseURL, "/"), id)
}

// resolveDetailMagnet reads the magnet link embedded in a zamunda.se details
// page.
func resolveDetailMagnet(ctx context.Context, i *Indexer, t schema.NormalizedTorrent) (schema.TorrentRef, bool) {
	body, err := i.requester.GetDetail(ctx, t.Ref.URL, i.Meta.Charset, i.Meta.URL)
	if err != nil {
		logging.Warn().Err(err).Str("indexer", i.Meta.Label).Str("url", t.Ref.URL).Msg("Failed to fetch detail page")
		return schema.TorrentRef{}, false
	}

	uri := detailMagnetRegex.FindString(body)
	if uri == "" {
		logging.Debug().Str("indexer", i.Meta.Label).Str("url", t.Ref.URL).Msg("No magnet link on detail page")
		return schema.TorrentRef{}, false
	}

	m, err := torrent.ParseMagnet(strings.ReplaceAll(uri, "&amp;", "&"))
	if err != nil {
		logging.Warn().Err(err).Str("indexer", i.Meta.Label).Str("url", t.Ref.URL).Msg("Invalid magnet link on detail page")
		return schema.TorrentRef{}, false
	}
	return schema.TorrentRef{Kind: schema.RefMagnet, URL: m.URI}, true
}
