package requester

import (
	"net/http"
	"net/url"

	"github.com/felipemarinho97/torrent-streams/consts"
)

// spoofBrowserHeaders adds browser-like headers to spoof a real browser.
// Without a referer the request looks like a fresh navigation from Google.
// Accept-Encoding is left to the transport so gzip stays transparent.
func spoofBrowserHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", consts.SpoofedUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "bg-BG,bg;q=0.9,en-US;q=0.8,en;q=0.7")

	site := "none"
	if referer != "" {
		req.Header.Set("Referer", referer)
		if ref, err := url.Parse(referer); err == nil && ref.Host == req.URL.Host {
			site = "same-origin"
		} else {
			site = "cross-site"
		}
	} else {
		req.Header.Set("Referer", "https://google.com/")
	}

	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-Site", site)
	req.Header.Set("Sec-Fetch-User", "?1")
	req.Header.Set("Cache-Control", "max-age=0")
}
