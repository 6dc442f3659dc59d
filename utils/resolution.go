package utils

import (
	"regexp"
	"strings"
)

const (
	ResolutionUnknown = "Unknown"
	Resolution3D      = "3D"
	ResolutionWEBRip  = "WEBRip"
)

var (
	numericResolutionRegex = regexp.MustCompile(`(?i)\b(8k|2160p|4k|1440p|2k|1080p|720p|576p|480p)\b`)
	webripRegex            = regexp.MustCompile(`(?i)\bwebrip\b|\bweb-rip\b|\bweb\.rip\b`)
	qualityTokenRegex      = regexp.MustCompile(`(?i)\b(UHD|8K|BRRip|BDRip|Bluray|Blu-?Ray|HDRip|HDR|FHD|FullHD|HD|SD|DVD|PAL|NTSC|XVID|DIVX|BR|BD)\b`)
)

var numericResolutions = map[string]string{
	"8k":    "8K",
	"2160p": "4K",
	"4k":    "4K",
	"1440p": "1440p",
	"2k":    "1440p",
	"1080p": "1080p",
	"720p":  "720p",
	"576p":  "576p",
	"480p":  "480p",
}

// HDR is matched but maps to no tier.
var qualityTiers = map[string]string{
	"uhd":     "4K",
	"8k":      "4K",
	"bluray":  "1080p",
	"blu-ray": "1080p",
	"br":      "1080p",
	"bd":      "1080p",
	"brrip":   "720p",
	"bdrip":   "720p",
	"hdrip":   "720p",
	"fhd":     "1080p",
	"fullhd":  "1080p",
	"hd":      "720p",
	"dvd":     "480p",
	"pal":     "480p",
	"ntsc":    "480p",
	"xvid":    "480p",
	"divx":    "480p",
	"sd":      "480p",
}

func is3D(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "3d") || strings.Contains(lower, "halfou") || strings.Contains(lower, "hsbs")
}

// ExtractResolution maps a title or file name to a quality label. Numeric
// tokens always win over qualitative ones; 3D content gets a "(3D)" suffix.
func ExtractResolution(text string) string {
	if text == "" {
		return ResolutionUnknown
	}

	threeD := is3D(text)
	label := func(tier string) string {
		if threeD {
			return tier + "(3D)"
		}
		return tier
	}

	if m := numericResolutionRegex.FindStringSubmatch(text); m != nil {
		return label(numericResolutions[strings.ToLower(m[1])])
	}

	if webripRegex.MatchString(text) {
		return label(ResolutionWEBRip)
	}

	if m := qualityTokenRegex.FindStringSubmatch(text); m != nil {
		if tier, ok := qualityTiers[strings.ToLower(m[1])]; ok {
			return label(tier)
		}
	}

	if threeD {
		return Resolution3D
	}
	return ResolutionUnknown
}

// ResolutionPriority ranks a label produced by ExtractResolution, higher is
// better.
func ResolutionPriority(resolution string) int {
	r := strings.ToLower(resolution)
	switch {
	case strings.Contains(r, "8k"):
		return 1000
	case strings.Contains(r, "4k"), strings.Contains(r, "2160p"), strings.Contains(r, "uhd"):
		return 900
	case strings.Contains(r, "1440p"), strings.Contains(r, "2k"):
		return 700
	case strings.Contains(r, "1080p"), strings.Contains(r, "fhd"):
		return 600
	case strings.Contains(r, "720p"), strings.Contains(r, "hd"):
		return 400
	case strings.Contains(r, "576p"):
		return 300
	case strings.Contains(r, "480p"), strings.Contains(r, "sd"):
		return 200
	}
	return 0
}
