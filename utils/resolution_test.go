package utils_test

import (
	"testing"

	"github.com/felipemarinho97/torrent-streams/utils"
)

func TestExtractResolution(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Movie 1080p BluRay x264", "1080p"},
		{"Movie 3D 1080p HSBS", "1080p(3D)"},
		{"random text", "Unknown"},
		{"", "Unknown"},
		{"Movie.2160p.UHD", "4K"},
		{"Movie 4K HDR", "4K"},
		{"Movie 2K", "1440p"},
		{"Movie 8K", "8K"},
		{"Movie.WEBRip.x264", "WEBRip"},
		{"Movie.WEB-Rip", "WEBRip"},
		{"Movie BluRay", "1080p"},
		{"Movie Blu-Ray", "1080p"},
		{"Movie BDRip", "720p"},
		{"Movie DVDRip", "Unknown"},
		{"Movie DVD PAL", "480p"},
		{"Movie XviD", "480p"},
		{"Movie UHD", "4K"},
		{"Movie FullHD", "1080p"},
		{"Movie HD", "720p"},
		{"Movie HDR", "Unknown"},
		{"Movie Half-OU", "Unknown"},
		{"Movie 3D HalfOU", "3D"},
		{"Movie 3D BluRay", "1080p(3D)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := utils.ExtractResolution(tt.input); got != tt.want {
				t.Errorf("ExtractResolution(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolutionPriority(t *testing.T) {
	order := []string{"8K", "4K(3D)", "1440p", "1080p", "720p", "576p", "480p", "Unknown"}
	for i := 1; i < len(order); i++ {
		if utils.ResolutionPriority(order[i-1]) <= utils.ResolutionPriority(order[i]) {
			t.Errorf("ResolutionPriority(%q) should rank above %q", order[i-1], order[i])
		}
	}
}
