package utils

import (
	"regexp"
	"strings"
)

func Filter[A any](arr []A, f func(A) bool) []A {
	var res []A
	res = make([]A, 0)
	for _, v := range arr {
		if f(v) {
			res = append(res, v)
		}
	}
	return res
}

var (
	doctypeRegex  = regexp.MustCompile(`(?is)^\s*<!doctype\s+html`)
	htmlPairRegex = regexp.MustCompile(`(?is)<html(\s[^>]*)?>.*</html>`)
	bodyPairRegex = regexp.MustCompile(`(?is)<body(\s[^>]*)?>.*</body>`)
)

// IsValidHTML reports whether s looks like a full HTML page rather than a
// fragment, JSON or XML payload.
func IsValidHTML(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return doctypeRegex.MatchString(s) || htmlPairRegex.MatchString(s) || bodyPairRegex.MatchString(s)
}
