package main

import (
	"context"
	"fmt"
	"time"

	"github.com/felipemarinho97/torrent-streams/aggregator"
	handler "github.com/felipemarinho97/torrent-streams/api"
	"github.com/felipemarinho97/torrent-streams/cache"
	"github.com/felipemarinho97/torrent-streams/config"
	"github.com/felipemarinho97/torrent-streams/indexers"
	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/monitoring"
	"github.com/felipemarinho97/torrent-streams/requester"
)

type app struct {
	cfg        *config.Config
	metrics    *monitoring.Metrics
	redis      *cache.Redis
	indexers   []*indexers.Indexer
	aggregator *aggregator.Aggregator
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	metrics := monitoring.NewMetrics()
	metrics.Register()

	a := &app{cfg: cfg, metrics: metrics}

	var documentCache requester.DocumentCache
	if r := cache.NewRedis(cfg.RedisHost); r != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			logging.Warn().Err(err).Str("host", cfg.RedisHost).Msg("Redis unavailable, page cache disabled")
			_ = r.Close()
		} else {
			logging.Info().Str("host", cfg.RedisHost).Msg("Using redis page cache")
			a.redis = r
			documentCache = r
		}
	}

	idx, err := indexers.NewFromConfig(cfg, documentCache, metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexers: %w", err)
	}
	a.indexers = idx

	sources := make([]aggregator.Source, 0, len(idx))
	for _, i := range idx {
		sources = append(sources, i)
	}
	a.aggregator = aggregator.New(metrics, sources...)

	labels := make([]string, 0, len(idx))
	for _, i := range idx {
		labels = append(labels, i.Label())
	}
	logging.Info().Strs("sources", labels).Msg("Indexers ready")
	if !cfg.SourceEnabled(config.SourceZamunda) {
		logging.Warn().Msg("zamunda is disabled, series queries will return no streams")
	}
	return a, nil
}

func (a *app) handler() *handler.Handler {
	owners := make([]handler.CacheOwner, 0, len(a.indexers))
	for _, i := range a.indexers {
		owners = append(owners, i)
	}
	return handler.NewHandler(a.aggregator, owners...)
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close redis client")
		}
	}
}
