package utils

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var trackerTLDs = []string{
	".net",
	".com",
	".org",
	".ch",
	".se",
	".rip",
	".bg",
	".cc",
	".to",
}

var trackerSubdomains = []string{
	"", // no prefix
	"www.",
}

var trackerSLDs = []string{
	"zamunda",
	"arenabg",
	"zelka",
	"p2pbg",
	"rarbg",
}

var watermarkPatterns = []string{
	`[\[\(]\s*%s\s*[\]\)]`,
	`\b%s\b`,
}

var watermarkRegexesOnce sync.Once
var watermarkRegexes []*regexp.Regexp

func getWatermarkRegexes() []*regexp.Regexp {
	watermarkRegexesOnce.Do(func() {
		var hosts []string
		for _, prefix := range trackerSubdomains {
			for _, name := range trackerSLDs {
				for _, tld := range trackerTLDs {
					hosts = append(hosts, regexp.QuoteMeta(prefix+name+tld))
				}
			}
		}
		alternation := "(?i)(" + strings.Join(hosts, "|") + ")"

		for _, pattern := range watermarkPatterns {
			watermarkRegexes = append(watermarkRegexes, regexp.MustCompile(fmt.Sprintf(pattern, alternation)))
		}
	})
	return watermarkRegexes
}

// RemoveKnownWebsites strips tracker watermarks such as "[arenabg.com]",
// "(zamunda.net)" or a bare "zelka.org" from a release title.
func RemoveKnownWebsites(title string) string {
	for _, re := range getWatermarkRegexes() {
		title = re.ReplaceAllString(title, "")
	}
	return strings.Join(strings.Fields(title), " ")
}
