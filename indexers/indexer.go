package indexers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/felipemarinho97/torrent-streams/cache"
	"github.com/felipemarinho97/torrent-streams/config"
	"github.com/felipemarinho97/torrent-streams/formatter"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/monitoring"
	"github.com/felipemarinho97/torrent-streams/requester"
	"github.com/felipemarinho97/torrent-streams/schema"
	"github.com/felipemarinho97/torrent-streams/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/encoding/htmlindex"
)

const DefaultDetailConcurrency = 5

// IndexerMeta describes one catalog. SearchURL and SeriesSearchURL are paths
// relative to URL with a single %s for the escaped query.
type IndexerMeta struct {
	Label           string
	URL             string
	SearchURL       string
	SeriesSearchURL string
	Charset         string
	YearInQuery     bool
}

// Parser turns a search page body into listings.
type Parser interface {
	ParseListings(body, query string) []schema.RawListing
}

// Resolver exchanges a detail page reference for a download or magnet
// reference.
type Resolver func(ctx context.Context, i *Indexer, t schema.NormalizedTorrent) (schema.TorrentRef, bool)

type Options struct {
	// BaseURL replaces the catalog host, mostly for tests and mirrors.
	BaseURL              string
	Requester            *requester.Requester
	Credentials          config.Credentials
	Metrics              *monitoring.Metrics
	CacheSize            int
	FormatterConcurrency int
	DetailConcurrency    int
}

// Indexer is the client of one catalog. It owns its session, its torrent
// cache and its formatter; nothing is shared between indexers.
type Indexer struct {
	Meta     IndexerMeta
	parser   Parser
	resolver Resolver
	login    LoginFunc
	creds    config.Credentials

	requester         *requester.Requester
	cache             *cache.TorrentCache
	formatter         *formatter.Formatter
	metrics           *monitoring.Metrics
	detailConcurrency int

	loginGroup singleflight.Group
	loggedIn   atomic.Bool
}

func newIndexer(meta IndexerMeta, parser Parser, resolver Resolver, login LoginFunc, opts Options) (*Indexer, error) {
	if opts.BaseURL != "" {
		meta.URL = strings.TrimRight(opts.BaseURL, "/")
	}

	req := opts.Requester
	if req == nil {
		var err error
		req, err = requester.NewRequester(requester.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to create requester for %s: %w", meta.Label, err)
		}
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}

	detailConcurrency := opts.DetailConcurrency
	if detailConcurrency <= 0 {
		detailConcurrency = DefaultDetailConcurrency
	}

	i := &Indexer{
		Meta:              meta,
		parser:            parser,
		resolver:          resolver,
		login:             login,
		creds:             opts.Credentials,
		requester:         req,
		cache:             cache.NewTorrentCache(meta.Label, opts.CacheSize, metrics),
		metrics:           metrics,
		detailConcurrency: detailConcurrency,
	}
	i.formatter = formatter.New(meta.Label, i.cache, i.fetchTorrent, opts.FormatterConcurrency, metrics)
	return i, nil
}

func (i *Indexer) Label() string {
	return i.Meta.Label
}

func (i *Indexer) fetchTorrent(ctx context.Context, rawURL string) ([]byte, error) {
	i.ensureLoggedIn(ctx)
	return i.requester.Download(ctx, rawURL, i.Meta.URL)
}

// ensureLoggedIn returns the session signal. Concurrent callers share one
// login attempt. The attempt is detached from the caller's cancellation so
// one impatient caller cannot fail it for the others.
func (i *Indexer) ensureLoggedIn(ctx context.Context) bool {
	if i.login == nil || i.loggedIn.Load() {
		return true
	}
	if !i.creds.IsSet() {
		return false
	}

	v, _, _ := i.loginGroup.Do("login", func() (any, error) {
		if i.loggedIn.Load() {
			return true, nil
		}

		ok, err := i.login(context.WithoutCancel(ctx), i, i.creds)
		switch {
		case err != nil:
			i.metrics.LoginAttempts.WithLabelValues(i.Meta.Label, "error").Inc()
			logging.Error().Err(err).Str("indexer", i.Meta.Label).Msg("Login failed")
		case !ok:
			i.metrics.LoginAttempts.WithLabelValues(i.Meta.Label, "rejected").Inc()
			logging.Warn().Str("indexer", i.Meta.Label).Msg("Login returned no session cookie")
		default:
			i.metrics.LoginAttempts.WithLabelValues(i.Meta.Label, "success").Inc()
			logging.Info().Str("indexer", i.Meta.Label).Msg("Logged in")
			i.loggedIn.Store(true)
		}
		return ok && err == nil, nil
	})
	return v.(bool)
}

// Search runs a movie catalog search for query.
func (i *Indexer) Search(ctx context.Context, query string) []schema.RawListing {
	return i.searchCatalog(ctx, query, i.Meta.SearchURL)
}

func (i *Indexer) searchCatalog(ctx context.Context, query, path string) []schema.RawListing {
	if path == "" {
		return nil
	}
	i.ensureLoggedIn(ctx)

	searchURL := i.Meta.URL + fmt.Sprintf(path, i.escapeQuery(query))
	body, err := i.requester.GetDocument(ctx, searchURL, i.Meta.Charset, i.Meta.URL)
	if err != nil {
		i.metrics.IndexerErrors.WithLabelValues(i.Meta.Label).Inc()
		logging.Warn().Err(err).Str("indexer", i.Meta.Label).Str("url", searchURL).Msg("Search request failed")
		return nil
	}

	listings := i.parser.ParseListings(body, query)
	if len(listings) > 0 {
		i.requester.StoreDocument(ctx, searchURL, body)
	}
	logging.Debug().Str("indexer", i.Meta.Label).Str("query", query).Int("listings", len(listings)).Msg("Parsed search results")
	return listings
}

// escapeQuery encodes the query in the catalog charset before escaping it;
// words end up joined by "+".
func (i *Indexer) escapeQuery(query string) string {
	if i.Meta.Charset != "" {
		if enc, err := htmlindex.Get(i.Meta.Charset); err == nil {
			if encoded, err := enc.NewEncoder().String(query); err == nil {
				query = encoded
			}
		}
	}
	return url.QueryEscape(query)
}

func (i *Indexer) searchQuery(title string, year int) string {
	if year > 0 && i.Meta.YearInQuery {
		return fmt.Sprintf("%s %d", title, year)
	}
	return title
}

// SearchByTitle searches movies by title and optional year (0 for any).
func (i *Indexer) SearchByTitle(ctx context.Context, title string, year int) []schema.NormalizedTorrent {
	title = utils.NormalizeTitle(title)
	if title == "" {
		return nil
	}

	listings := i.Search(ctx, i.searchQuery(title, year))
	listings = utils.FilterByTitleAndYear(listings, title, year)
	return i.normalize(listings)
}

// SearchSeries searches the series catalog. Season packs covering the
// requested episode are kept.
func (i *Indexer) SearchSeries(ctx context.Context, title string, year, season, episode int) []schema.NormalizedTorrent {
	title = utils.NormalizeTitle(title)
	if title == "" || i.Meta.SeriesSearchURL == "" {
		return nil
	}

	query := i.searchQuery(title, year)
	if season > 0 {
		query = fmt.Sprintf("%s S%02d", query, season)
	}

	listings := i.searchCatalog(ctx, query, i.Meta.SeriesSearchURL)
	lowerTitle := strings.ToLower(title)

	var torrents []schema.NormalizedTorrent
	for _, l := range listings {
		if !strings.Contains(strings.ToLower(utils.NormalizeTitle(l.Title)), lowerTitle) {
			continue
		}

		var marker *schema.SeasonEpisode
		if se, ok := utils.ExtractSeasonEpisode(l.Title); ok {
			marker = &se
		}
		if !utils.MatchesEpisode(marker, season, episode) {
			continue
		}

		t, ok := l.Normalize(i.Meta.Label)
		if !ok {
			continue
		}
		t.Episode = marker
		torrents = append(torrents, t)
	}
	return torrents
}

func (i *Indexer) normalize(listings []schema.RawListing) []schema.NormalizedTorrent {
	torrents := make([]schema.NormalizedTorrent, 0, len(listings))
	for _, l := range listings {
		if t, ok := l.Normalize(i.Meta.Label); ok {
			torrents = append(torrents, t)
		}
	}
	return torrents
}

// ResolveDownloadReference follows a detail page reference to the download or
// magnet URL it embeds. It reports false for catalogs without detail pages and
// on any failure.
func (i *Indexer) ResolveDownloadReference(ctx context.Context, t schema.NormalizedTorrent) (string, bool) {
	ref, ok := i.resolveRef(ctx, t)
	return ref.URL, ok
}

func (i *Indexer) resolveRef(ctx context.Context, t schema.NormalizedTorrent) (schema.TorrentRef, bool) {
	if i.resolver == nil || t.Ref.Kind != schema.RefDetail {
		return schema.TorrentRef{}, false
	}
	i.ensureLoggedIn(ctx)
	return i.resolver(ctx, i, t)
}

// FormatAsStreams resolves detail references, then hands the batch to the
// formatter. A torrent whose detail page cannot be resolved keeps its detail
// URL and degrades to a raw URL stream.
func (i *Indexer) FormatAsStreams(ctx context.Context, torrents []schema.NormalizedTorrent, opts formatter.Options) []schema.StreamDescriptor {
	if len(torrents) == 0 {
		return nil
	}

	if i.resolver != nil {
		resolved := make([]schema.NormalizedTorrent, len(torrents))
		copy(resolved, torrents)

		var g errgroup.Group
		g.SetLimit(i.detailConcurrency)
		for idx := range resolved {
			if resolved[idx].Ref.Kind != schema.RefDetail {
				continue
			}
			g.Go(func() error {
				if ref, ok := i.resolveRef(ctx, resolved[idx]); ok {
					resolved[idx].Ref = ref
				}
				return nil
			})
		}
		_ = g.Wait()
		torrents = resolved
	}

	return i.formatter.Format(ctx, torrents, opts)
}

// Streams answers one query end to end.
func (i *Indexer) Streams(ctx context.Context, q schema.Query) ([]schema.StreamDescriptor, error) {
	start := time.Now()
	defer func() {
		i.metrics.IndexerDuration.WithLabelValues(i.Meta.Label).Observe(time.Since(start).Seconds())
	}()
	i.metrics.IndexerRequests.WithLabelValues(i.Meta.Label).Inc()

	var torrents []schema.NormalizedTorrent
	opts := formatter.Options{Type: q.Type, Season: q.Season, Episode: q.Episode}
	if q.Type == schema.ContentSeries {
		torrents = i.SearchSeries(ctx, q.Title, q.Year, q.Season, q.Episode)
	} else {
		torrents = i.SearchByTitle(ctx, q.Title, q.Year)
	}

	streams := i.FormatAsStreams(ctx, torrents, opts)
	i.metrics.IndexerResults.WithLabelValues(i.Meta.Label).Add(float64(len(streams)))
	logging.Info().Str("indexer", i.Meta.Label).Str("title", q.Title).Int("streams", len(streams)).Dur("duration", time.Since(start)).Msg("Indexer finished")
	return streams, nil
}

func (i *Indexer) CacheStats() cache.TorrentCacheStats {
	return i.cache.Stats()
}

func (i *Indexer) CachedTorrents() []string {
	return i.cache.Keys()
}

func (i *Indexer) ClearCache() {
	i.cache.Clear()
}
