package formatter

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/felipemarinho97/torrent-streams/cache"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/monitoring"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/torrent"
	"github.com/felipemarinho97/torrent-streams/utils"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 3

// Fetcher downloads the raw .torrent body behind a download URL.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

type Options struct {
	Type    schema.ContentType
	Season  int
	Episode int
}

// Formatter turns normalized torrents into stream descriptors, resolving at
// most limit torrent files at a time.
type Formatter struct {
	label   string
	cache   *cache.TorrentCache
	fetch   Fetcher
	limit   int
	metrics *monitoring.Metrics
}

func New(label string, c *cache.TorrentCache, fetch Fetcher, limit int, metrics *monitoring.Metrics) *Formatter {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Formatter{
		label:   label,
		cache:   c,
		fetch:   fetch,
		limit:   limit,
		metrics: metrics,
	}
}

// Format builds one descriptor per torrent, in input order. A torrent is only
// dropped when it carries no reference at all.
func (f *Formatter) Format(ctx context.Context, torrents []schema.NormalizedTorrent, opts Options) []schema.StreamDescriptor {
	results := make([]*schema.StreamDescriptor, len(torrents))
	priorities := make([]int, len(torrents))

	var g errgroup.Group
	g.SetLimit(f.limit)
	for i, t := range torrents {
		g.Go(func() error {
			results[i], priorities[i] = f.describe(ctx, t, opts)
			return nil
		})
	}
	_ = g.Wait()

	type ranked struct {
		stream   schema.StreamDescriptor
		priority int
		seeders  int
	}
	var out []ranked
	for i, r := range results {
		if r != nil {
			out = append(out, ranked{*r, priorities[i], torrents[i].Seeders})
		}
	}

	if opts.Type == schema.ContentSeries {
		slices.SortStableFunc(out, func(a, b ranked) int {
			if c := cmp.Compare(b.priority, a.priority); c != 0 {
				return c
			}
			return cmp.Compare(b.seeders, a.seeders)
		})
	}

	streams := make([]schema.StreamDescriptor, 0, len(out))
	for _, r := range out {
		streams = append(streams, r.stream)
	}
	return streams
}

func (f *Formatter) describe(ctx context.Context, t schema.NormalizedTorrent, opts Options) (*schema.StreamDescriptor, int) {
	if t.Ref.IsZero() {
		return nil, 0
	}

	resolution := resolutionFor(t)
	stream := &schema.StreamDescriptor{
		Name: fmt.Sprintf("%s\n%s", f.label, resolution),
	}
	size := t.Size

	if meta, ok := f.resolveMetadata(ctx, t); ok {
		stream.InfoHash = meta.InfoHash
		size = humanize.IBytes(uint64(meta.TotalLength))
		if opts.Type == schema.ContentSeries && opts.Episode > 0 && len(meta.Files) > 1 {
			if idx, found := torrent.FindEpisodeFileIndex(meta.Files, opts.Season, opts.Episode); found {
				stream.FileIndex = &idx
			}
		}
	} else if magnet := t.Magnet(); magnet != "" {
		if t.Ref.Kind == schema.RefDownload {
			f.metrics.FormatterFallback.WithLabelValues(f.label, "magnet").Inc()
		}
		stream.URL = magnet
	} else {
		if t.Ref.Kind == schema.RefDownload {
			f.metrics.FormatterFallback.WithLabelValues(f.label, "url").Inc()
		}
		stream.URL = t.Ref.URL
	}

	stream.Title = displayTitle(t, size, opts)
	return stream, utils.ResolutionPriority(resolution)
}

// resolveMetadata is the first rung of the ladder. It never panics; any
// failure reports false.
func (f *Formatter) resolveMetadata(ctx context.Context, t schema.NormalizedTorrent) (meta *schema.TorrentMetadata, ok bool) {
	if t.Ref.Kind != schema.RefDownload {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("indexer", f.label).Str("url", t.Ref.URL).Interface("panic", r).Msg("Recovered while resolving torrent metadata")
			meta, ok = nil, false
		}
	}()

	gauge := f.metrics.FormatterInFlight.WithLabelValues(f.label)
	gauge.Inc()
	defer gauge.Dec()

	data, cached := f.cache.Get(t.Ref.URL)
	if !cached {
		var err error
		data, err = f.fetch(ctx, t.Ref.URL)
		if err != nil {
			logging.Warn().Err(err).Str("indexer", f.label).Str("url", t.Ref.URL).Msg("Failed to download torrent file")
			return nil, false
		}
	}

	meta, err := torrent.Decode(data)
	if err != nil {
		logging.Warn().Err(err).Str("indexer", f.label).Str("url", t.Ref.URL).Msg("Failed to decode torrent file")
		return nil, false
	}

	if !cached {
		f.cache.Put(t.Ref.URL, data)
	}
	return meta, true
}

func resolutionFor(t schema.NormalizedTorrent) string {
	resolution := utils.ExtractResolution(t.Title)
	if resolution != utils.ResolutionUnknown || t.Ref.Kind != schema.RefDownload {
		return resolution
	}

	u, err := url.Parse(t.Ref.URL)
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Path), ".torrent") {
		return resolution
	}
	name, _ := url.PathUnescape(path.Base(u.Path))
	return utils.ExtractResolution(name)
}

func displayTitle(t schema.NormalizedTorrent, size string, opts Options) string {
	var b strings.Builder
	if opts.Type == schema.ContentSeries {
		if label := utils.EpisodeLabel(t.Episode); label != "" {
			b.WriteString(label)
			b.WriteString("\n")
		}
	}
	b.WriteString(t.Title)
	b.WriteString(t.Flags.Annotation())
	fmt.Fprintf(&b, " 👤%d", t.Seeders)
	if size != "" {
		fmt.Fprintf(&b, " 💾 %s", size)
	}
	return b.String()
}
