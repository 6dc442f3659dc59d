package utils

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/felipemarinho97/torrent-streams/schema"
)

var (
	episodeRangeRegex   = regexp.MustCompile(`(?i)s(\d+)e(\d+)[\s\-]*(?:e|to|-)[\s\-]*e?(\d+)`)
	seasonPackRegex     = regexp.MustCompile(`(?i)(?:season|сезон|s)[\s\-]?(\d+)(?:\s|$|complete|full|pack)`)
	anyEpisodeRegex     = regexp.MustCompile(`(?i)e\d+`)
	seasonEpisodeRegex  = regexp.MustCompile(`(?i)s(\d+)e(\d+)`)
	crossEpisodeRegex   = regexp.MustCompile(`(?i)(\d+)x(\d+)`)
	verboseEpisodeRegex = regexp.MustCompile(`(?i)season[\s\-]?(\d+)[\s\-]?episode[\s\-]?(\d+)`)
)

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// ExtractSeasonEpisode reads the season/episode marker of a release title.
// Checked in order: episode ranges (S01E01-E05), whole-season packs
// (Season 2, S02 Complete, Сезон 2), S01E05, 1x05 and "Season 1 Episode 5".
func ExtractSeasonEpisode(title string) (schema.SeasonEpisode, bool) {
	if title == "" {
		return schema.SeasonEpisode{}, false
	}

	if m := episodeRangeRegex.FindStringSubmatch(title); m != nil {
		return schema.SeasonEpisode{
			Season:     atoi(m[1]),
			Episode:    atoi(m[2]),
			EpisodeEnd: atoi(m[3]),
			IsPack:     true,
		}, true
	}

	if m := seasonPackRegex.FindStringSubmatch(title); m != nil && !anyEpisodeRegex.MatchString(title) {
		return schema.SeasonEpisode{
			Season:       atoi(m[1]),
			IsPack:       true,
			IsSeasonPack: true,
		}, true
	}

	for _, re := range []*regexp.Regexp{seasonEpisodeRegex, crossEpisodeRegex, verboseEpisodeRegex} {
		if m := re.FindStringSubmatch(title); m != nil {
			return schema.SeasonEpisode{Season: atoi(m[1]), Episode: atoi(m[2])}, true
		}
	}

	return schema.SeasonEpisode{}, false
}

// MatchesEpisode reports whether a release marked se can serve the requested
// season and episode. Unknown markers and zero requests match everything.
func MatchesEpisode(se *schema.SeasonEpisode, season, episode int) bool {
	if se == nil {
		return true
	}
	if season > 0 && se.Season > 0 && se.Season != season {
		return false
	}
	if episode <= 0 {
		return true
	}
	switch {
	case se.IsSeasonPack:
		return true
	case se.IsPack:
		return episode >= se.Episode && episode <= se.EpisodeEnd
	case se.Episode > 0:
		return se.Episode == episode
	}
	return true
}

// EpisodeLabel renders the display prefix for a release, e.g. "S01E05",
// "S01E01-E05 (Pack)" or "Season 1 (Complete Pack)".
func EpisodeLabel(se *schema.SeasonEpisode) string {
	if se == nil || se.Season == 0 {
		return ""
	}
	switch {
	case se.IsSeasonPack:
		return fmt.Sprintf("Season %d (Complete Pack)", se.Season)
	case se.IsPack:
		return fmt.Sprintf("S%02dE%02d-E%02d (Pack)", se.Season, se.Episode, se.EpisodeEnd)
	case se.Episode > 0:
		return fmt.Sprintf("S%02dE%02d", se.Season, se.Episode)
	}
	return fmt.Sprintf("S%02d", se.Season)
}
