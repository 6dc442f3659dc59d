package utils_test

import (
	"testing"

	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/utils"
)

func TestExtractSeasonEpisode(t *testing.T) {
	tests := []struct {
		title  string
		want   schema.SeasonEpisode
		wantOk bool
	}{
		{"Show.S01E01-E05.1080p", schema.SeasonEpisode{Season: 1, Episode: 1, EpisodeEnd: 5, IsPack: true}, true},
		{"Show S02E03 to E08", schema.SeasonEpisode{Season: 2, Episode: 3, EpisodeEnd: 8, IsPack: true}, true},
		{"Show Season 2 Complete", schema.SeasonEpisode{Season: 2, IsPack: true, IsSeasonPack: true}, true},
		{"Сериал Сезон 3 ", schema.SeasonEpisode{Season: 3, IsPack: true, IsSeasonPack: true}, true},
		{"Show.S01E05.720p", schema.SeasonEpisode{Season: 1, Episode: 5}, true},
		{"Show 1x05", schema.SeasonEpisode{Season: 1, Episode: 5}, true},
		{"Show Season-1-Episode-7", schema.SeasonEpisode{Season: 1, Episode: 7}, true},
		{"Just A Movie", schema.SeasonEpisode{}, false},
		{"", schema.SeasonEpisode{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got, ok := utils.ExtractSeasonEpisode(tt.title)
			if ok != tt.wantOk || got != tt.want {
				t.Errorf("ExtractSeasonEpisode() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}

func TestMatchesEpisode(t *testing.T) {
	tests := []struct {
		name    string
		se      *schema.SeasonEpisode
		season  int
		episode int
		want    bool
	}{
		{"unknown marker", nil, 1, 2, true},
		{"other season", &schema.SeasonEpisode{Season: 2, Episode: 1}, 1, 1, false},
		{"same episode", &schema.SeasonEpisode{Season: 1, Episode: 4}, 1, 4, true},
		{"other episode", &schema.SeasonEpisode{Season: 1, Episode: 3}, 1, 4, false},
		{"season pack", &schema.SeasonEpisode{Season: 1, IsPack: true, IsSeasonPack: true}, 1, 9, true},
		{"inside range", &schema.SeasonEpisode{Season: 1, Episode: 1, EpisodeEnd: 5, IsPack: true}, 1, 3, true},
		{"outside range", &schema.SeasonEpisode{Season: 1, Episode: 1, EpisodeEnd: 5, IsPack: true}, 1, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := utils.MatchesEpisode(tt.se, tt.season, tt.episode); got != tt.want {
				t.Errorf("MatchesEpisode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEpisodeLabel(t *testing.T) {
	tests := []struct {
		se   *schema.SeasonEpisode
		want string
	}{
		{nil, ""},
		{&schema.SeasonEpisode{Season: 1, Episode: 5}, "S01E05"},
		{&schema.SeasonEpisode{Season: 1, Episode: 1, EpisodeEnd: 5, IsPack: true}, "S01E01-E05 (Pack)"},
		{&schema.SeasonEpisode{Season: 2, IsPack: true, IsSeasonPack: true}, "Season 2 (Complete Pack)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := utils.EpisodeLabel(tt.se); got != tt.want {
				t.Errorf("EpisodeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
