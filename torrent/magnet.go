package torrent

import (
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

type Magnet struct {
	InfoHash    string
	DisplayName string
	URI         string
}

func IsMagnet(uri string) bool {
	return strings.HasPrefix(strings.ToLower(uri), "magnet:?")
}

// ParseMagnet validates a magnet URI and extracts its info hash.
func ParseMagnet(uri string) (Magnet, error) {
	m, err := metainfo.ParseMagnetUri(uri)
	if err != nil {
		return Magnet{}, fmt.Errorf("failed to parse magnet uri: %w", err)
	}
	return Magnet{
		InfoHash:    m.InfoHash.HexString(),
		DisplayName: m.DisplayName,
		URI:         uri,
	}, nil
}
