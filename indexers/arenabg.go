package indexers

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/schema"
)

var arenabg = IndexerMeta{
	Label:       "arenabg",
	URL:         "https://arenabg.com",
	SearchURL:   "/bg/torrents/?text=%s",
	YearInQuery: true,
}

var (
	arenabgIDRegex       = regexp.MustCompile(`/bg/torrents/([^/?#]+)`)
	arenabgMagnetRegex   = regexp.MustCompile(`(?i)href=["'](magnet:\?xt=urn:btih:[^"']+)["']`)
	arenabgTitleRegex    = regexp.MustCompile(`(?i)<a[^>]*href=["']https?://[^/]+/bg/torrents/([^/'"]+)/?["'][^>]*class=["']title["'][^>]*>([^<]+)</a>`)
	arenabgDownloadRegex = regexp.MustCompile(`/bg/torrents/download/\?key=([^"'&]+)`)
)

var arenabgAudioHints = []string{"българско озвучение", "bulgarian audio"}

type arenabgParser struct {
	label   string
	baseURL string
}

func (p *arenabgParser) ParseListings(body, query string) []schema.RawListing {
	return parseWithFallback(p.label, body, p.parseDocument, p.parseRegex)
}

func (p *arenabgParser) parseDocument(body string) ([]schema.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	// Magnets hidden from the DOM (e.g. inside scripts) are matched to rows
	// by position.
	var magnets []string
	if doc.Find(`a[href^="magnet:"]`).Length() == 0 {
		for _, m := range arenabgMagnetRegex.FindAllStringSubmatch(body, -1) {
			magnets = append(magnets, m[1])
		}
	}

	var listings []schema.RawListing
	doc.Find("table.table-torrents tbody tr").Each(func(i int, row *goquery.Selection) {
		parseRow(p.label, i, func() {
			cell := row.Find("td.filename").First()
			if cell.Length() == 0 {
				return
			}
			link := cell.Find(`a.title, a[href*="/bg/torrents/"]`).First()
			title := cleanTitle(link.Text())
			href := link.AttrOr("href", "")
			if title == "" || arenabgIDRegex.FindStringSubmatch(href) == nil {
				return
			}

			n := len(listings)
			listing := schema.RawListing{
				Title:     title,
				DetailURL: p.detailURL(href),
				Seeders:   parseCount(row.Find("td.seeders").Text()),
				Leechers:  parseCount(row.Find("td.leechers").Text()),
			}

			if cells := row.Find("td"); cells.Length() >= 3 {
				if size := strings.TrimSpace(cells.Eq(cells.Length() - 3).Text()); isSizeLabel(size) {
					listing.Size = size
				}
			}

			if magnet := row.Find(`a[href^="magnet:"]`).First(); magnet.Length() > 0 {
				listing.MagnetURI = magnet.AttrOr("href", "")
			} else if n < len(magnets) {
				listing.MagnetURI = magnets[n]
			}

			structural := schema.Flags{
				LocalizedAudio: arenabgHasAudioIcon(cell),
				LocalizedSubs:  cell.Find(".flag-icon-bg").Length() > 0,
			}
			listing.Flags = structural.Merge(flagsFromTitle(title))

			listings = append(listings, listing)
		})
	})

	return listings, nil
}

func (p *arenabgParser) parseRegex(body string) ([]schema.RawListing, error) {
	var listings []schema.RawListing
	for i, m := range arenabgTitleRegex.FindAllStringSubmatch(body, -1) {
		parseRow(p.label, i, func() {
			title := cleanTitle(m[2])
			if title == "" {
				return
			}
			listings = append(listings, schema.RawListing{
				Title:     title,
				DetailURL: p.detailURL("/bg/torrents/" + m[1]),
				Flags:     flagsFromTitle(title),
			})
		})
	}

	for i, m := range arenabgMagnetRegex.FindAllStringSubmatch(body, len(listings)) {
		listings[i].MagnetURI = m[1]
	}
	return listings, nil
}

// detailURL rebuilds the detail link on the configured host, without the
// trailing slash.
func (p *arenabgParser) detailURL(href string) string {
	path := href
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		path = u.RequestURI()
	}
	return strings.TrimRight(p.baseURL, "/") + strings.TrimRight(path, "/")
}

func arenabgHasAudioIcon(cell *goquery.Selection) bool {
	found := false
	cell.Find(".fa-volume-up").EachWithBreak(func(_ int, icon *goquery.Selection) bool {
		for _, attr := range []string{"data-original-title", "title", "alt"} {
			if v, ok := icon.Attr(attr); ok && v != "" {
				found = containsAny(strings.ToLower(v), arenabgAudioHints)
				break
			}
		}
		return !found
	})
	return found
}

// resolveArenabgDownload exchanges a detail page for its keyed download link.
func resolveArenabgDownload(ctx context.Context, i *Indexer, t schema.NormalizedTorrent) (schema.TorrentRef, bool) {
	body, err := i.requester.GetDetail(ctx, t.Ref.URL, i.Meta.Charset, i.Meta.URL)
	if err != nil {
		logging.Warn().Err(err).Str("indexer", i.Meta.Label).Str("url", t.Ref.URL).Msg("Failed to fetch detail page")
		return schema.TorrentRef{}, false
	}

	m := arenabgDownloadRegex.FindStringSubmatch(body)
	if m == nil {
		logging.Debug().Str("indexer", i.Meta.Label).Str("url", t.Ref.URL).Msg("No download key on detail page")
		return schema.TorrentRef{}, false
	}

	download := fmt.Sprintf("%s/bg/torrents/download/?key=%s", strings.TrimRight(i.Meta.URL, "/"), m[1])
	return schema.TorrentRef{Kind: schema.RefDownload, URL: download}, true
}
