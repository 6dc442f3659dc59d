package torrent

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/felipemarinho97/torrent-streams/schema"
)

var ErrInvalidTorrent = errors.New("invalid torrent file")

// Decode parses the bencoded content of a .torrent file.
func Decode(data []byte) (*schema.TorrentMetadata, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidTorrent)
	}

	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTorrent, err)
	}
	if len(mi.InfoBytes) == 0 {
		return nil, fmt.Errorf("%w: missing info dictionary", ErrInvalidTorrent)
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTorrent, err)
	}

	var files []schema.FileEntry
	for _, f := range info.UpvertedFiles() {
		path := strings.Join(f.Path, "/")
		if path == "" {
			path = info.Name
		}
		files = append(files, schema.FileEntry{Path: path, Length: f.Length})
	}

	return &schema.TorrentMetadata{
		InfoHash:    mi.HashInfoBytes().HexString(),
		Name:        info.Name,
		TotalLength: info.TotalLength(),
		Files:       files,
	}, nil
}
