package torrent_test

import (
	"testing"

	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/torrent"
)

func entries(paths ...string) []schema.FileEntry {
	files := make([]schema.FileEntry, 0, len(paths))
	for _, p := range paths {
		files = append(files, schema.FileEntry{Path: p, Length: 1})
	}
	return files
}

func TestFindEpisodeFileIndex(t *testing.T) {
	tests := []struct {
		name    string
		files   []schema.FileEntry
		season  int
		episode int
		want    int
		wantOk  bool
	}{
		{
			name:    "SxxEyy",
			files:   entries("Show.S01E01.mkv", "Show.S01E02.mkv", "notes.txt"),
			season:  1,
			episode: 2,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "NxNN",
			files:   entries("show.1x03.mkv", "show.1x04.mkv"),
			season:  1,
			episode: 4,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "NxNN does not match a longer season",
			files:   entries("Show.11x01.mkv", "Show.1x01.mkv"),
			season:  1,
			episode: 1,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "Episode NN",
			files:   entries("Episode 05.mp4", "Episode 06.mp4"),
			season:  1,
			episode: 6,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "bare E",
			files:   entries("Show - E10.avi", "Show - E11.avi"),
			season:  2,
			episode: 11,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "padded number",
			files:   entries("Show - 07 - Title.mkv", "Show - 08 - Title.mkv"),
			season:  1,
			episode: 8,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "does not confuse E1 with E10",
			files:   entries("Show.S01E10.mkv", "Show.S01E01.mkv"),
			season:  1,
			episode: 1,
			want:    1,
			wantOk:  true,
		},
		{
			name:    "single video file",
			files:   entries("movie.mkv", "readme.nfo"),
			season:  1,
			episode: 3,
			want:    0,
			wantOk:  true,
		},
		{
			name:    "ambiguous",
			files:   entries("a.mkv", "b.mkv"),
			season:  1,
			episode: 3,
			wantOk:  false,
		},
		{
			name:    "no video files",
			files:   entries("S01E03.srt"),
			season:  1,
			episode: 3,
			wantOk:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := torrent.FindEpisodeFileIndex(tt.files, tt.season, tt.episode)
			if ok != tt.wantOk || (ok && got != tt.want) {
				t.Errorf("FindEpisodeFileIndex() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOk)
			}
		})
	}
}
