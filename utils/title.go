package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/felipemarinho97/torrent-streams/schema"
)

var (
	separatorRegex = regexp.MustCompile(`[-.:]`)
	yearRegex      = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// NormalizeTitle replaces hyphens, dots and colons with spaces and collapses
// whitespace runs. NormalizeTitle(NormalizeTitle(x)) == NormalizeTitle(x).
func NormalizeTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = separatorRegex.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}

// ExtractYear returns the first 4-digit year token in title, or 0.
func ExtractYear(title string) int {
	match := yearRegex.FindString(title)
	if match == "" {
		return 0
	}
	year, _ := strconv.Atoi(match)
	return year
}

// MatchesTitleAndYear reports whether listingTitle contains searchTitle
// (case-insensitive, both normalized) and, when year > 0, whether the first
// year token of listingTitle equals year.
func MatchesTitleAndYear(listingTitle, searchTitle string, year int) bool {
	haystack := strings.ToLower(NormalizeTitle(listingTitle))
	needle := strings.ToLower(NormalizeTitle(searchTitle))
	if !strings.Contains(haystack, needle) {
		return false
	}
	if year > 0 && ExtractYear(listingTitle) != year {
		return false
	}
	return true
}

func FilterByTitleAndYear(listings []schema.RawListing, title string, year int) []schema.RawListing {
	return Filter(listings, func(l schema.RawListing) bool {
		return MatchesTitleAndYear(l.Title, title, year)
	})
}
