package services

import (
	"context"
	"time"

	"github.com/shashiranjanraj/catalog/app/models"
	"github.com/shashiranjanraj/catalog/pkg/cache"
	"github.com/shashiranjanraj/catalog/pkg/metrics"
)

const (
	StatsCacheKey   = "product_stats"
	DefaultStatsTTL = 300 * time.Second
)

// StatsCache holds the single statistics snapshot. It does no locking of its
// own: concurrent misses may both recompute and the last Set wins.
type StatsCache struct {
	store cache.Store
	ttl   time.Duration
}

// NewStatsCache stores the snapshot in store for ttl (DefaultStatsTTL when <= 0).
func NewStatsCache(store cache.Store, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{store: store, ttl: ttl}
}

// Get returns a copy of the cached snapshot.
func (c *StatsCache) Get(ctx context.Context) (*models.ProductStats, bool) {
	var stats models.ProductStats
	hit := c.store.Get(ctx, StatsCacheKey, &stats)
	metrics.RecordCacheLookup(c.store.Driver(), hit)
	if !hit {
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, stats *models.ProductStats) error {
	return c.store.Set(ctx, StatsCacheKey, stats, c.ttl)
}

// Invalidate drops the snapshot. Dropping an absent snapshot is not an error.
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return cache.Forget(ctx, c.store, StatsCacheKey)
}

func (c *StatsCache) TTL() time.Duration { return c.ttl }
