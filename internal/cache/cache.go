package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rmadriz/portfolio-backend/pkg/config"
	"github.com/rmadriz/portfolio-backend/pkg/logger"
	"github.com/rmadriz/portfolio-backend/pkg/redis"
)

// Key families. Every cached response belongs to exactly one family so a
// write can invalidate the whole family in one pattern delete.
const (
	FamilyProjects = "projects"
	FamilySkills   = "skills"
	FamilyHero     = "hero"
	FamilyContact  = "contact"
	FamilyMedia    = "media"
)

type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	DelByPattern(ctx context.Context, pattern string) (int64, error)
	KeyCount(ctx context.Context) (int64, error)
	CacheKey(parts ...string) string
	CachePattern(family string) string
}

// Cache is the read-through response cache. Every failure degrades to a
// miss; the cache never surfaces an error to a request.
type Cache struct {
	store   store
	ttl     time.Duration
	enabled bool
	logg    *logger.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New builds the cache handle. A nil store (Redis not configured) or a
// disabled flag produces a permanent-miss cache, which is valid.
func New(st *redis.Client, cfg config.CacheConfig, logg *logger.Logger) *Cache {
	c := &Cache{
		ttl:     cfg.TTL,
		enabled: cfg.Enabled && st != nil,
		logg:    logg,
	}
	if st != nil {
		c.store = st
	}
	return c
}

// Get unmarshals the cached payload into dest. Returns false on miss,
// disabled cache, or any Redis/JSON failure.
func (c *Cache) Get(ctx context.Context, family, key string, dest any) bool {
	if c == nil || !c.enabled {
		return false
	}

	raw, err := c.store.Get(ctx, c.store.CacheKey(family, key))
	if err != nil {
		c.misses.Add(1)
		if !redis.IsMiss(err) && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_family", family), "cache read failed")
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.misses.Add(1)
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_family", family), "cache payload corrupt")
		}
		return false
	}

	c.hits.Add(1)
	return true
}

// Set stores the JSON-encoded value under the family key with the fixed TTL.
func (c *Cache) Set(ctx context.Context, family, key string, value any) bool {
	if c == nil || !c.enabled {
		return false
	}

	payload, err := json.Marshal(value)
	if err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_family", family), "cache encode failed")
		}
		return false
	}

	if err := c.store.Set(ctx, c.store.CacheKey(family, key), payload, c.ttl); err != nil {
		if c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_family", family), "cache write failed")
		}
		return false
	}
	return true
}

// Invalidate drops every key in the given families. Runs synchronously so a
// read issued right after a mutation cannot observe stale data. Failures are
// logged and swallowed.
func (c *Cache) Invalidate(ctx context.Context, families ...string) {
	if c == nil || !c.enabled {
		return
	}
	for _, family := range families {
		if _, err := c.store.DelByPattern(ctx, c.store.CachePattern(family)); err != nil && c.logg != nil {
			c.logg.Warn(c.logg.WithField(ctx, "cache_family", family), "cache invalidation failed")
		}
	}
}

// Flush drops every cached response. Returns the number of keys removed.
func (c *Cache) Flush(ctx context.Context) int64 {
	if c == nil || !c.enabled {
		return 0
	}
	removed, err := c.store.DelByPattern(ctx, c.store.CachePattern(""))
	if err != nil && c.logg != nil {
		c.logg.Warn(ctx, "cache flush failed")
	}
	return removed
}

// Stats is the payload for the admin cache-stats endpoint.
type Stats struct {
	Enabled bool   `json:"enabled"`
	Keys    int64  `json:"keys"`
	Hits    int64  `json:"hits"`
	Misses  int64  `json:"misses"`
	TTL     string `json:"ttl"`
}

func (c *Cache) Stats(ctx context.Context) Stats {
	if c == nil {
		return Stats{}
	}
	stats := Stats{TTL: c.ttl.String()}
	if !c.enabled {
		return stats
	}
	stats.Enabled = true
	stats.Hits = c.hits.Load()
	stats.Misses = c.misses.Load()
	if keys, err := c.store.KeyCount(ctx); err == nil {
		stats.Keys = keys
	}
	return stats
}
