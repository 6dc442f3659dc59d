package torrent

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/felipemarinho97/torrent-streams/schema"
)

var videoExtensions = map[string]bool{
	".mkv":  true,
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
}

func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(path.Ext(name))]
}

func episodePatterns(season, episode int) []*regexp.Regexp {
	templates := []string{
		`(?i)s0*%[1]de0*%[2]d(?:[^0-9]|$)`,
		`(?i)(?:^|[^0-9])0*%[1]dx0*%[2]d(?:[^0-9]|$)`,
		`(?i)episode[\s._-]*0*%[2]d(?:[^0-9]|$)`,
		`(?i)[^s]e0*%[2]d(?:[^0-9]|$)`,
		`(?i)[\s._-]0*%[2]d[\s._-]`,
	}
	patterns := make([]*regexp.Regexp, 0, len(templates))
	for _, t := range templates {
		patterns = append(patterns, regexp.MustCompile(fmt.Sprintf(t, season, episode)))
	}
	return patterns
}

// FindEpisodeFileIndex returns the index in files of the video file holding
// the requested episode. Patterns are tried in order of strength; the first
// video file matching wins. A torrent with a single video file resolves to
// that file.
func FindEpisodeFileIndex(files []schema.FileEntry, season, episode int) (int, bool) {
	if len(files) == 0 || episode <= 0 {
		return 0, false
	}

	var videos []int
	for i, f := range files {
		if IsVideoFile(f.Path) {
			videos = append(videos, i)
		}
	}
	if len(videos) == 0 {
		return 0, false
	}

	for _, re := range episodePatterns(season, episode) {
		for _, idx := range videos {
			if re.MatchString(files[idx].Path) {
				return idx, true
			}
		}
	}

	if len(videos) == 1 {
		return videos[0], true
	}
	return 0, false
}
