package indexers

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/utils"
)

var (
	idParamRegex = regexp.MustCompile(`id=(\d+)`)
	sizeRegex    = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:KB|MB|GB|TB)`)
	digitsRegex  = regexp.MustCompile(`\d+`)
)

var (
	audioHints = []string{"bg audio", "bgaudio", "bg+enaudio", "bulgarian audio", "българско озвучение", "дубляж"}
	subsHints  = []string{"bg sub", "bgsub", "bulgarian sub", "субтитри"}
)

type parseFunc func(body string) ([]schema.RawListing, error)

// parseWithFallback runs the structured strategy first and switches to the
// pattern strategy when it fails or finds nothing.
func parseWithFallback(label, body string, primary, fallback parseFunc) []schema.RawListing {
	listings, err := safeParse(primary, body)
	if err != nil {
		logging.Debug().Err(err).Str("indexer", label).Msg("Structured parse failed, using fallback")
	}
	if len(listings) > 0 {
		return listings
	}

	listings, err = safeParse(fallback, body)
	if err != nil {
		logging.Warn().Err(err).Str("indexer", label).Msg("Fallback parse failed")
		return nil
	}
	return listings
}

func safeParse(fn parseFunc, body string) (listings []schema.RawListing, err error) {
	defer func() {
		if r := recover(); r != nil {
			listings, err = nil, fmt.Errorf("parser panic: %v", r)
		}
	}()
	return fn(body)
}

// parseRow runs fn, skipping the row if it panics.
func parseRow(label string, index int, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Debug().Str("indexer", label).Int("row", index).Interface("panic", r).Msg("Skipping unparsable row")
		}
	}()
	fn()
}

// flagsFromTitle is the weak signal: it only ever sets flags.
func flagsFromTitle(title string) schema.Flags {
	lower := strings.ToLower(title)
	return schema.Flags{
		LocalizedAudio: containsAny(lower, audioHints),
		LocalizedSubs:  containsAny(lower, subsHints),
		Is3D:           strings.Contains(lower, "3d"),
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func cleanTitle(raw string) string {
	return utils.NormalizeTitle(utils.RemoveKnownWebsites(raw))
}

func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") || strings.HasPrefix(href, "magnet:") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(href, "/")
	}
	return b.ResolveReference(ref).String()
}

// parseCount reads the first number of s; anything else is 0.
func parseCount(s string) int {
	n, err := strconv.Atoi(digitsRegex.FindString(strings.ReplaceAll(s, ",", "")))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// isSizeLabel reports whether s is a whole size cell such as "12.5 GB" or
// "4,2 GB"; bare numbers are seeder counts, not sizes.
func isSizeLabel(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || sizeRegex.FindString(s) != s {
		return false
	}
	n, err := humanize.ParseBytes(strings.ReplaceAll(s, ",", "."))
	return err == nil && n > 0
}

func extractID(href string) string {
	if m := idParamRegex.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return ""
}
