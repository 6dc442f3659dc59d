package indexers

import (
	"testing"

	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHash = "c9e15763f722f23e98a29decdfae341b98d53056"

const zamundaCatalogPage = `<!DOCTYPE html>
<html><body>
<table>
<tr>
<td class="colheadd"><img src="/pic/flag_bgaudio.png"><a href="/banan?id=101"><b>Inception.2010.1080p.BluRay</b></a></td>
<td><a href="/download.php/101/Inception.torrent">download</a></td>
<td><font color="red">12.5 GB</font></td>
<td class="tddownloaded"><b>42</b></td>
<td class="tddownloaded"><b>3</b></td>
</tr>
<tr>
<td class="colheadd"><img src="/pic/flag_bgsub.png"><a href="/banan?id=102"><b>Inception.2010.720p</b></a></td>
<td><a href="/download.php/102/Inception.720p.torrent">download</a></td>
<td><font color="red">4.2 GB</font></td>
<td class="tddownloaded"><b>7</b></td>
<td class="tddownloaded"><b>1</b></td>
</tr>
<tr>
<td class="colheadd"><a href="/banan?id=103"><b>Inception 2010 BGAudio 3D</b></a></td>
<td><a href="/download.php/103/Inception.3D.torrent">download</a></td>
<td><font color="red">20 GB</font></td>
<td class="tddownloaded"><b>abc</b></td>
<td class="tddownloaded"><b>-</b></td>
</tr>
</table>
</body></html>`

func TestZamundaParserStructured(t *testing.T) {
	p := &zamundaParser{label: "zamunda", baseURL: "https://zamunda.net"}

	listings := p.ParseListings(zamundaCatalogPage, "inception")
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "Inception 2010 1080p BluRay", first.Title)
	assert.Equal(t, "https://zamunda.net/banan?id=101", first.DetailURL)
	assert.Equal(t, "https://zamunda.net/download.php/101/Inception.torrent", first.DownloadURL)
	assert.Equal(t, 42, first.Seeders)
	assert.Equal(t, 3, first.Leechers)
	assert.Equal(t, "12.5 GB", first.Size)
	assert.Equal(t, schema.Flags{LocalizedAudio: true}, first.Flags)

	assert.Equal(t, schema.Flags{LocalizedSubs: true}, listings[1].Flags)

	third := listings[2]
	assert.Equal(t, schema.Flags{LocalizedAudio: true, Is3D: true}, third.Flags)
	assert.Equal(t, 0, third.Seeders)
	assert.Equal(t, 0, third.Leechers)
}

func TestZamundaParserFallsBackToRegex(t *testing.T) {
	body := `<html><body><div>
<a href="/banan?id=5">Some.Movie.2010</a> <b>9</b> <b>2</b>
<a href="/download.php/5/Some.Movie.torrent">get</a>
</div></body></html>`

	p := &zamundaParser{label: "zamunda", baseURL: "https://zamunda.net"}
	listings := p.ParseListings(body, "some movie")
	require.Len(t, listings, 1)

	assert.Equal(t, "Some Movie 2010", listings[0].Title)
	assert.Equal(t, "https://zamunda.net/banan?id=5", listings[0].DetailURL)
	assert.Equal(t, "https://zamunda.net/download.php/5/Some.Movie.torrent", listings[0].DownloadURL)
	assert.Equal(t, 9, listings[0].Seeders)
	assert.Equal(t, 2, listings[0].Leechers)
}

func TestZamundaSEParser(t *testing.T) {
	body := `<html><body><table>
<tr><td class="colheadd"><a href="details.php?id=702422">Dune.Part.Two.2024.2160p</a></td>
<td><a href="/download.php/702422/Dune.torrent">dl</a></td><td>18.3 GB</td></tr>
<tr><td class="colheadd"><a href="details.php?id=702423">No.Download.2024</a></td></tr>
</table></body></html>`

	p := &zamundaSEParser{label: "zamunda.se", baseURL: "http://zamunda.se"}
	listings := p.ParseListings(body, "dune")
	require.Len(t, listings, 1)
	assert.Equal(t, "Dune Part Two 2024 2160p", listings[0].Title)
	assert.Equal(t, "http://zamunda.se/details.php?id=702422", listings[0].DetailURL)
	assert.Equal(t, "http://zamunda.se/download.php/702422/Dune.torrent", listings[0].DownloadURL)
	assert.Equal(t, "18.3 GB", listings[0].Size)
}

func TestZamundaSEParserFallbackIsDetailOnly(t *testing.T) {
	body := `<html><body><p><a href="details.php?id=9">Dune.2021.1080p</a></p></body></html>`

	p := &zamundaSEParser{label: "zamunda.se", baseURL: "http://zamunda.se"}
	listings := p.ParseListings(body, "dune")
	require.Len(t, listings, 1)
	assert.Equal(t, "http://zamunda.se/details.php?id=9", listings[0].DetailURL)
	assert.Empty(t, listings[0].DownloadURL)

	torrent, ok := listings[0].Normalize("zamunda.se")
	require.True(t, ok)
	assert.Equal(t, schema.RefDetail, torrent.Ref.Kind)
}

const arenabgSearchPage = `<!DOCTYPE html>
<html><body>
<table class="table-torrents"><tbody>
<tr>
<td class="filename">
<a class="title" href="/bg/torrents/inception-2010-abc/">Inception.2010.1080p.BluRay</a>
<i class="fa fa-volume-up" data-original-title="Българско озвучение"></i>
</td>
<td>12.5 GB</td>
<td class="seeders">10</td>
<td class="leechers">2</td>
</tr>
<tr>
<td class="filename">
<a class="title" href="https://arenabg.com/bg/torrents/inception-2010-720p/">Inception.2010.720p</a>
<span class="flag-icon flag-icon-bg"></span>
<a href="magnet:?xt=urn:btih:` + testHash + `&dn=Inception">magnet</a>
</td>
<td>4 GB</td>
<td class="seeders">5</td>
<td class="leechers">0</td>
</tr>
</tbody></table>
</body></html>`

func TestArenabgParser(t *testing.T) {
	p := &arenabgParser{label: "arenabg", baseURL: "https://arenabg.com"}

	listings := p.ParseListings(arenabgSearchPage, "inception")
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Inception 2010 1080p BluRay", first.Title)
	assert.Equal(t, "https://arenabg.com/bg/torrents/inception-2010-abc", first.DetailURL)
	assert.Empty(t, first.MagnetURI)
	assert.Equal(t, 10, first.Seeders)
	assert.Equal(t, 2, first.Leechers)
	assert.Equal(t, "12.5 GB", first.Size)
	assert.Equal(t, schema.Flags{LocalizedAudio: true}, first.Flags)

	second := listings[1]
	assert.Equal(t, "https://arenabg.com/bg/torrents/inception-2010-720p", second.DetailURL)
	assert.Equal(t, "magnet:?xt=urn:btih:"+testHash+"&dn=Inception", second.MagnetURI)
	assert.Equal(t, schema.Flags{LocalizedSubs: true}, second.Flags)

	torrent, ok := second.Normalize("arenabg")
	require.True(t, ok)
	assert.Equal(t, schema.RefDetail, torrent.Ref.Kind)
	assert.Equal(t, second.MagnetURI, torrent.FallbackMagnet)
}

func TestArenabgParserFallsBackToRegex(t *testing.T) {
	body := `<div><a href="https://arenabg.com/bg/torrents/matrix-1999/" class="title">The.Matrix.1999.BG.Audio</a>
<a href="magnet:?xt=urn:btih:` + testHash + `">m</a></div>`

	p := &arenabgParser{label: "arenabg", baseURL: "https://arenabg.com"}
	listings := p.ParseListings(body, "matrix")
	require.Len(t, listings, 1)
	assert.Equal(t, "The Matrix 1999 BG Audio", listings[0].Title)
	assert.Equal(t, "https://arenabg.com/bg/torrents/matrix-1999", listings[0].DetailURL)
	assert.Equal(t, "magnet:?xt=urn:btih:"+testHash, listings[0].MagnetURI)
	assert.True(t, listings[0].Flags.LocalizedAudio)
}

func TestTorznabParser(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:torznab="http://torznab.com/schemas/2015/feed">
<channel>
<title>zamunda.rip</title>
<item>
<title>Inception.2010.1080p.BluRay</title>
<guid>1</guid>
<link>https://zamunda.rip/download/1.torrent</link>
<enclosure url="magnet:?xt=urn:btih:` + testHash + `&amp;dn=Inception" length="1073741824" type="application/x-bittorrent"/>
<torznab:attr name="seeders" value="25"/>
<torznab:attr name="peers" value="30"/>
<torznab:attr name="size" value="2147483648"/>
</item>
<item>
<title>Inception.2010.720p</title>
<guid>2</guid>
<link>https://zamunda.rip/download/2.torrent</link>
<enclosure url="https://zamunda.rip/download/2.torrent" length="1048576" type="application/x-bittorrent"/>
</item>
</channel>
</rss>`

	p := &torznabParser{label: "zamunda.rip"}
	listings := p.ParseListings(body, "inception")
	require.Len(t, listings, 2)

	assert.Equal(t, "Inception 2010 1080p BluRay", listings[0].Title)
	assert.Equal(t, "magnet:?xt=urn:btih:"+testHash+"&dn=Inception", listings[0].MagnetURI)
	assert.Equal(t, "https://zamunda.rip/download/1.torrent", listings[0].DownloadURL)
	assert.Equal(t, 25, listings[0].Seeders)
	assert.Equal(t, 5, listings[0].Leechers)
	assert.Equal(t, "2.0 GiB", listings[0].Size)

	assert.Equal(t, "https://zamunda.rip/download/2.torrent", listings[1].DownloadURL)
	assert.Equal(t, "1.0 MiB", listings[1].Size)
}

func TestTorznabParserFallsBackOnBrokenFeed(t *testing.T) {
	body := `<rss><channel><item><title>Show.S01E01.720p</title><link>https://zamunda.rip/download/7.torrent</link></item><item>`

	p := &torznabParser{label: "zamunda.rip"}
	listings := p.ParseListings(body, "show")
	require.Len(t, listings, 1)
	assert.Equal(t, "Show S01E01 720p", listings[0].Title)
	assert.Equal(t, "https://zamunda.rip/download/7.torrent", listings[0].DownloadURL)
}

func TestParseWithFallbackRecoversPanics(t *testing.T) {
	primary := func(string) ([]schema.RawListing, error) { panic("boom") }
	fallback := func(string) ([]schema.RawListing, error) {
		return []schema.RawListing{{Title: "ok"}}, nil
	}

	listings := parseWithFallback("test", "", primary, fallback)
	require.Len(t, listings, 1)
	assert.Equal(t, "ok", listings[0].Title)
}

func TestFlagsFromTitleOnlySetsFlags(t *testing.T) {
	structural := schema.Flags{LocalizedSubs: true}
	merged := structural.Merge(flagsFromTitle("Movie 2010 1080p"))
	assert.Equal(t, schema.Flags{LocalizedSubs: true}, merged)

	merged = schema.Flags{}.Merge(flagsFromTitle("Movie 2010 BG Audio"))
	assert.True(t, merged.LocalizedAudio)
}

func TestIsSizeLabel(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"12.5 GB", true},
		{"4,2 GB", true},
		{"700 MB", true},
		{" 1.37 TB ", true},
		{"850KB", true},
		{"42", false},
		{"", false},
		{"Размер: 4 GB", false},
		{"GB", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, isSizeLabel(tt.input))
		})
	}
}
