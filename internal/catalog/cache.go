package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/angelmondragon/lostfound-backend/pkg/logger"
	"github.com/angelmondragon/lostfound-backend/pkg/metrics"
	redisclient "github.com/angelmondragon/lostfound-backend/pkg/redis"
)

const cacheName = "catalog_summary"

// SummaryCache stores the unfiltered counts and facets between writes.
type SummaryCache interface {
	Get(ctx context.Context) (*Summary, bool)
	Set(ctx context.Context, s *Summary)
	Invalidate(ctx context.Context)
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CatalogSummaryKey() string
}

// RedisSummaryCache shares the summary across API instances.
type RedisSummaryCache struct {
	store   kvStore
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.CacheMetrics
}

var _ SummaryCache = (*RedisSummaryCache)(nil)

func NewRedisSummaryCache(store kvStore, ttl time.Duration, logg *logger.Logger, m *metrics.CacheMetrics) *RedisSummaryCache {
	return &RedisSummaryCache{store: store, ttl: ttl, logg: logg, metrics: m}
}

func (c *RedisSummaryCache) Get(ctx context.Context) (*Summary, bool) {
	raw, err := c.store.Get(ctx, c.store.CatalogSummaryKey())
	if err != nil {
		if !errors.Is(err, redisclient.ErrNil) {
			c.warn(ctx, "catalog.summary_cache.get_failed", err)
		}
		c.metrics.IncMiss(cacheName)
		return nil, false
	}
	var s Summary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		c.warn(ctx, "catalog.summary_cache.decode_failed", err)
		c.metrics.IncMiss(cacheName)
		return nil, false
	}
	c.metrics.IncHit(cacheName)
	return &s, true
}

func (c *RedisSummaryCache) Set(ctx context.Context, s *Summary) {
	payload, err := json.Marshal(s)
	if err != nil {
		c.warn(ctx, "catalog.summary_cache.encode_failed", err)
		return
	}
	if err := c.store.Set(ctx, c.store.CatalogSummaryKey(), string(payload), c.ttl); err != nil {
		c.warn(ctx, "catalog.summary_cache.set_failed", err)
	}
}

func (c *RedisSummaryCache) Invalidate(ctx context.Context) {
	if err := c.store.Del(ctx, c.store.CatalogSummaryKey()); err != nil {
		c.warn(ctx, "catalog.summary_cache.invalidate_failed", err)
	}
}

func (c *RedisSummaryCache) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}

// LocalSummaryCache keeps the summary in process memory. It serves single
// instance deployments and tests.
type LocalSummaryCache struct {
	lru     *expirable.LRU[string, Summary]
	metrics *metrics.CacheMetrics
}

var _ SummaryCache = (*LocalSummaryCache)(nil)

func NewLocalSummaryCache(ttl time.Duration, m *metrics.CacheMetrics) *LocalSummaryCache {
	return &LocalSummaryCache{
		lru:     expirable.NewLRU[string, Summary](1, nil, ttl),
		metrics: m,
	}
}

func (c *LocalSummaryCache) Get(context.Context) (*Summary, bool) {
	s, ok := c.lru.Get(cacheName)
	if !ok {
		c.metrics.IncMiss(cacheName)
		return nil, false
	}
	c.metrics.IncHit(cacheName)
	return &s, true
}

func (c *LocalSummaryCache) Set(_ context.Context, s *Summary) {
	if s == nil {
		return
	}
	c.lru.Add(cacheName, *s)
}

func (c *LocalSummaryCache) Invalidate(context.Context) {
	c.lru.Remove(cacheName)
}
