package cache

import (
	"time"

	"shortearn/config"
	"shortearn/model"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog/log"
)

// Cache holds resolved link records for the redirect hot path. Ristretto
// handles admission and eviction; entries expire on the configured TTL so a
// stale view count never survives long.
type Cache struct {
	client *ristretto.Cache
	ttl    time.Duration
}

// New creates a cache instance with the given configuration.
func New(cfg config.CacheConfig) (*Cache, error) {
	maxCost := int64(cfg.MaxSizeMB) * 1024 * 1024

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: int64(cfg.CounterSize), // keys tracked for admission frequency
		MaxCost:     maxCost,                // cache size in bytes
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("max_size_mb", cfg.MaxSizeMB).
		Int("ttl_seconds", cfg.TTLSeconds).
		Int("counter_size", cfg.CounterSize).
		Msg("Link cache initialized")

	return &Cache{
		client: client,
		ttl:    time.Duration(cfg.TTLSeconds) * time.Second,
	}, nil
}

// GetLink retrieves a cached global link record by short code.
func (c *Cache) GetLink(code string) (*model.GlobalLinkRecord, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	value, found := c.client.Get(code)
	if !found {
		return nil, false
	}
	record, ok := value.(model.GlobalLinkRecord)
	if !ok {
		return nil, false
	}
	return &record, true
}

// SetLink stores a global link record under its short code. Each entry is
// costed at roughly its serialized size.
func (c *Cache) SetLink(code string, record model.GlobalLinkRecord) bool {
	if c == nil || c.client == nil {
		return false
	}
	return c.client.SetWithTTL(code, record, 1024, c.ttl)
}

// Delete removes a code from the cache.
func (c *Cache) Delete(code string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(code)
}

// Close cleanly shuts down the cache.
func (c *Cache) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
		log.Info().Msg("Link cache closed")
	}
}

// MetricsSnapshot is a point-in-time copy of cache performance counters.
type MetricsSnapshot struct {
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	KeysAdded    uint64  `json:"keys_added"`
	KeysEvicted  uint64  `json:"keys_evicted"`
	CostAdded    uint64  `json:"cost_added"`
	CostEvicted  uint64  `json:"cost_evicted"`
	SetsDropped  uint64  `json:"sets_dropped"`
	SetsRejected uint64  `json:"sets_rejected"`
	GetsDropped  uint64  `json:"gets_dropped"`
	HitRatio     float64 `json:"hit_ratio"`
	TTLSeconds   int     `json:"ttl_seconds"`
}

// GetMetricsSnapshot returns current cache metrics.
func (c *Cache) GetMetricsSnapshot() MetricsSnapshot {
	if c == nil || c.client == nil || c.client.Metrics == nil {
		return MetricsSnapshot{}
	}

	m := c.client.Metrics
	hits := m.Hits()
	misses := m.Misses()
	total := hits + misses

	hitRatio := 0.0
	if total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return MetricsSnapshot{
		Hits:         hits,
		Misses:       misses,
		KeysAdded:    m.KeysAdded(),
		KeysEvicted:  m.KeysEvicted(),
		CostAdded:    m.CostAdded(),
		CostEvicted:  m.CostEvicted(),
		SetsDropped:  m.SetsDropped(),
		SetsRejected: m.SetsRejected(),
		GetsDropped:  m.GetsDropped(),
		HitRatio:     hitRatio,
		TTLSeconds:   int(c.ttl.Seconds()),
	}
}
