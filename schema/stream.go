package schema

type ContentType string

const (
	ContentMovie  ContentType = "movie"
	ContentSeries ContentType = "series"
)

func ParseContentType(s string) ContentType {
	if s == string(ContentSeries) {
		return ContentSeries
	}
	return ContentMovie
}

// Query is the normalized request handed to every source.
type Query struct {
	Title   string      `json:"title"`
	Year    int         `json:"year,omitempty"`
	Type    ContentType `json:"type"`
	Season  int         `json:"season,omitempty"`
	Episode int         `json:"episode,omitempty"`
}

// StreamDescriptor describes one playable option. Exactly one of InfoHash
// and URL is set.
type StreamDescriptor struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	InfoHash  string `json:"infoHash,omitempty"`
	URL       string `json:"url,omitempty"`
	FileIndex *int   `json:"fileIdx,omitempty"`
}

type SeasonEpisode struct {
	Season       int  `json:"season"`
	Episode      int  `json:"episode"`
	EpisodeEnd   int  `json:"episode_end,omitempty"`
	IsPack       bool `json:"is_pack"`
	IsSeasonPack bool `json:"is_season_pack"`
}
