package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felipemarinho97/torrent-streams/logging"
	"github.com/felipemarinho97/torrent-streams/monitoring"
	"github.com/felipemarinho97/torrent-streams/schema"
)

// Source is anything that can answer a stream query, usually an indexer.
type Source interface {
	Label() string
	Streams(ctx context.Context, q schema.Query) ([]schema.StreamDescriptor, error)
}

type Aggregator struct {
	sources []Source
	metrics *monitoring.Metrics
}

func New(metrics *monitoring.Metrics, sources ...Source) *Aggregator {
	if metrics == nil {
		metrics = monitoring.NewMetrics()
	}
	return &Aggregator{sources: sources, metrics: metrics}
}

func (a *Aggregator) Sources() []Source {
	return a.sources
}

// Streams queries every source at once and waits for all of them. Results
// are concatenated in registration order; a failing source contributes
// nothing.
func (a *Aggregator) Streams(ctx context.Context, q schema.Query) []schema.StreamDescriptor {
	results := make([][]schema.StreamDescriptor, len(a.sources))

	var wg sync.WaitGroup
	for i, s := range a.sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.query(ctx, s, q)
		}()
	}
	wg.Wait()

	var streams []schema.StreamDescriptor
	for _, r := range results {
		streams = append(streams, r...)
	}
	if streams == nil {
		streams = []schema.StreamDescriptor{}
	}
	return streams
}

func (a *Aggregator) query(ctx context.Context, s Source, q schema.Query) (streams []schema.StreamDescriptor) {
	label := s.Label()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("source panicked: %v", r)
			a.metrics.IndexerErrors.WithLabelValues(label).Inc()
			logging.WarnWithContext(ctx).Err(err).Str("indexer", label).Msg("Source failed")
			streams = nil
		}
	}()

	streams, err := s.Streams(ctx, q)
	if err != nil {
		a.metrics.IndexerErrors.WithLabelValues(label).Inc()
		logging.WarnWithContext(ctx).Err(err).Str("indexer", label).Dur("duration", time.Since(start)).Msg("Source failed")
		return nil
	}
	logging.WithContext(ctx).Str("indexer", label).Int("streams", len(streams)).Dur("duration", time.Since(start)).Msg("Source done")
	return streams
}
