package cache

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/felipemarinho97/torrent-streams/monitoring"
)

const (
	DefaultTorrentCacheSize = 50
	evictionRatio           = 0.25
)

type torrentEntry struct {
	url      string
	data     []byte
	seq      uint64
	storedAt time.Time
}

type TorrentCacheStats struct {
	Name      string  `json:"name"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	Evictions uint64  `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// TorrentCache keeps downloaded .torrent bodies in memory, keyed by a hash of
// their download URL. When full, the oldest quarter of the entries is evicted
// in one batch. Entries never expire otherwise.
type TorrentCache struct {
	name    string
	maxSize int
	metrics *monitoring.Metrics

	mu        sync.Mutex
	entries   map[uint64]*torrentEntry
	seq       uint64
	hits      uint64
	misses    uint64
	evictions uint64
}

func NewTorrentCache(name string, maxSize int, metrics *monitoring.Metrics) *TorrentCache {
	if maxSize <= 0 {
		maxSize = DefaultTorrentCacheSize
	}
	return &TorrentCache{
		name:    name,
		maxSize: maxSize,
		metrics: metrics,
		entries: make(map[uint64]*torrentEntry, maxSize),
	}
}

func torrentKey(url string) uint64 {
	return xxhash.Sum64String(url)
}

func (c *TorrentCache) Get(url string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[torrentKey(url)]
	if !ok || entry.url != url {
		c.misses++
		if c.metrics != nil {
			c.metrics.CacheMisses.WithLabelValues(c.name).Inc()
		}
		return nil, false
	}

	c.hits++
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(c.name).Inc()
	}
	return entry.data, true
}

func (c *TorrentCache) Put(url string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := torrentKey(url)
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.seq++
	c.entries[key] = &torrentEntry{
		url:      url,
		data:     slices.Clone(data),
		seq:      c.seq,
		storedAt: time.Now(),
	}
}

// evictOldest must be called with c.mu held.
func (c *TorrentCache) evictOldest() {
	n := int(float64(c.maxSize) * evictionRatio)
	if n < 1 {
		n = 1
	}

	keys := make([]uint64, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b uint64) int {
		return cmp.Compare(c.entries[a].seq, c.entries[b].seq)
	})

	for _, k := range keys[:min(n, len(keys))] {
		delete(c.entries, k)
	}
	c.evictions += uint64(min(n, len(keys)))
	if c.metrics != nil {
		c.metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(min(n, len(keys))))
	}
}

// Keys lists cached URLs from oldest to newest.
func (c *TorrentCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]*torrentEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *torrentEntry) int {
		return cmp.Compare(a.seq, b.seq)
	})

	urls := make([]string, 0, len(entries))
	for _, e := range entries {
		urls = append(urls, e.url)
	}
	return urls
}

func (c *TorrentCache) Stats() TorrentCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return TorrentCacheStats{
		Name:      c.name,
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// Clear drops every entry. Counters are kept.
func (c *TorrentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
