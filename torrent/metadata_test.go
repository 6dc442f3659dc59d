package torrent_test

import (
	"bytes"
	"testing"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/torrent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTorrent(t *testing.T, info metainfo.Info) ([]byte, string) {
	t.Helper()
	info.PieceLength = 256 << 10
	info.Pieces = make([]byte, 20)

	infoBytes, err := bencode.Marshal(info)
	require.NoError(t, err)

	mi := metainfo.MetaInfo{InfoBytes: infoBytes, Announce: "udp://tracker.example.org:80/announce"}
	var buf bytes.Buffer
	require.NoError(t, mi.Write(&buf))
	return buf.Bytes(), mi.HashInfoBytes().HexString()
}

func TestDecodeMultiFile(t *testing.T) {
	data, hash := buildTorrent(t, metainfo.Info{
		Name: "Show.S01.1080p",
		Files: []metainfo.FileInfo{
			{Length: 700, Path: []string{"Show.S01E01.mkv"}},
			{Length: 300, Path: []string{"Subs", "Show.S01E01.srt"}},
		},
	})

	meta, err := torrent.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, hash, meta.InfoHash)
	assert.Len(t, meta.InfoHash, 40)
	assert.Equal(t, "Show.S01.1080p", meta.Name)
	assert.Equal(t, int64(1000), meta.TotalLength)
	assert.Equal(t, []schema.FileEntry{
		{Path: "Show.S01E01.mkv", Length: 700},
		{Path: "Subs/Show.S01E01.srt", Length: 300},
	}, meta.Files)
}

func TestDecodeSingleFile(t *testing.T) {
	data, hash := buildTorrent(t, metainfo.Info{Name: "Movie.2010.1080p.mkv", Length: 4096})

	meta, err := torrent.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, hash, meta.InfoHash)
	assert.Equal(t, int64(4096), meta.TotalLength)
	assert.Equal(t, []schema.FileEntry{{Path: "Movie.2010.1080p.mkv", Length: 4096}}, meta.Files)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "login page", data: []byte("<html><body>Please log in</body></html>")},
		{name: "dictionary without info", data: []byte("d8:announce3:urle")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := torrent.Decode(tt.data)
			assert.ErrorIs(t, err, torrent.ErrInvalidTorrent)
		})
	}
}

func TestParseMagnet(t *testing.T) {
	m, err := torrent.ParseMagnet("magnet:?xt=urn:btih:c9e15763f722f23e98a29decdfae341b98d53056&dn=Test")
	require.NoError(t, err)
	assert.Equal(t, "c9e15763f722f23e98a29decdfae341b98d53056", m.InfoHash)
	assert.Equal(t, "Test", m.DisplayName)
	assert.True(t, torrent.IsMagnet(m.URI))

	_, err = torrent.ParseMagnet("https://example.org/file.torrent")
	assert.Error(t, err)
	assert.False(t, torrent.IsMagnet("https://example.org/file.torrent"))
}
