package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	IndexerDuration   *prometheus.HistogramVec
	IndexerErrors     *prometheus.CounterVec
	IndexerRequests   *prometheus.CounterVec
	IndexerResults    *prometheus.CounterVec
	LoginAttempts     *prometheus.CounterVec
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	CacheEvictions    *prometheus.CounterVec
	FormatterInFlight *prometheus.GaugeVec
	FormatterFallback *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		IndexerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "indexer_duration_seconds",
			Help:    "Duration of indexer requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"indexer"}),
		IndexerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_errors_total",
			Help: "Number of indexer errors",
		}, []string{"indexer"}),
		IndexerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_requests_total",
			Help: "Number of indexer requests",
		}, []string{"indexer"}),
		IndexerResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_streams_total",
			Help: "Number of stream descriptors produced",
		}, []string{"indexer"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "indexer_login_attempts_total",
			Help: "Number of login attempts by outcome",
		}, []string{"indexer", "result"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Number of cache hits",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Number of cache misses",
		}, []string{"cache"}),
		CacheEvictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Number of entries evicted from a cache",
		}, []string{"cache"}),
		FormatterInFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "formatter_inflight",
			Help: "Torrent metadata resolutions currently in flight",
		}, []string{"indexer"}),
		FormatterFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formatter_fallback_total",
			Help: "Stream descriptors built without decoded metadata, by fallback step",
		}, []string{"indexer", "step"}),
	}
}

func (m *Metrics) Register() {
	prometheus.MustRegister(m.IndexerDuration)
	prometheus.MustRegister(m.IndexerErrors)
	prometheus.MustRegister(m.IndexerRequests)
	prometheus.MustRegister(m.IndexerResults)
	prometheus.MustRegister(m.LoginAttempts)
	prometheus.MustRegister(m.CacheHits)
	prometheus.MustRegister(m.CacheMisses)
	prometheus.MustRegister(m.CacheEvictions)
	prometheus.MustRegister(m.FormatterInFlight)
	prometheus.MustRegister(m.FormatterFallback)
}
