package schema

// RawListing is one scraped search-result row, before normalization.
type RawListing struct {
	Title       string
	DetailURL   string
	DownloadURL string
	MagnetURI   string
	Seeders     int
	Leechers    int
	Size        string
	Flags       Flags
}

type RefKind int

const (
	RefNone RefKind = iota
	RefDownload
	RefMagnet
	RefDetail
)

func (k RefKind) String() string {
	switch k {
	case RefDownload:
		return "download"
	case RefMagnet:
		return "magnet"
	case RefDetail:
		return "detail"
	}
	return "none"
}

// TorrentRef is the single reference a NormalizedTorrent carries.
type TorrentRef struct {
	Kind RefKind `json:"kind"`
	URL  string  `json:"url"`
}

func (r TorrentRef) IsZero() bool {
	return r.Kind == RefNone || r.URL == ""
}

// NormalizedTorrent carries exactly one primary reference in Ref.
// FallbackMagnet keeps a listing's magnet when Ref points elsewhere, for use
// only after the .torrent path has failed.
type NormalizedTorrent struct {
	Title          string         `json:"title"`
	Ref            TorrentRef     `json:"ref"`
	FallbackMagnet string         `json:"fallback_magnet,omitempty"`
	Size           string         `json:"size"`
	Seeders        int            `json:"seed_count"`
	Leechers       int            `json:"leech_count"`
	Flags          Flags          `json:"flags"`
	Source         string         `json:"source"`
	Episode        *SeasonEpisode `json:"episode,omitempty"`
}

// Magnet returns the magnet usable for this torrent, primary or fallback.
func (t NormalizedTorrent) Magnet() string {
	if t.Ref.Kind == RefMagnet {
		return t.Ref.URL
	}
	return t.FallbackMagnet
}

// Normalize converts a listing into a NormalizedTorrent. The primary
// reference is picked in the order download, detail, magnet: a detail page
// may still lead to a .torrent file. ok is false when the listing carries
// none of them.
func (l RawListing) Normalize(source string) (NormalizedTorrent, bool) {
	var ref TorrentRef
	switch {
	case l.DownloadURL != "":
		ref = TorrentRef{Kind: RefDownload, URL: l.DownloadURL}
	case l.DetailURL != "":
		ref = TorrentRef{Kind: RefDetail, URL: l.DetailURL}
	case l.MagnetURI != "":
		ref = TorrentRef{Kind: RefMagnet, URL: l.MagnetURI}
	default:
		return NormalizedTorrent{}, false
	}

	var fallback string
	if ref.Kind != RefMagnet {
		fallback = l.MagnetURI
	}

	return NormalizedTorrent{
		Title:          l.Title,
		Ref:            ref,
		FallbackMagnet: fallback,
		Size:           l.Size,
		Seeders:        max(l.Seeders, 0),
		Leechers:       max(l.Leechers, 0),
		Flags:          l.Flags,
		Source:         source,
	}, true
}

// TorrentMetadata is the decoded content of a .torrent file.
type TorrentMetadata struct {
	InfoHash    string      `json:"info_hash"`
	Name        string      `json:"name"`
	TotalLength int64       `json:"total_length"`
	Files       []FileEntry `json:"files,omitempty"`
}

type FileEntry struct {
	Path   string `json:"path"`
	Length int64  `json:"length"`
}
