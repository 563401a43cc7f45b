package validator

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/belovedchibuikem/smart-housing-pro-sub007/internal/shell/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// CacheConfig configures the validation cache.
type CacheConfig struct {
	Size        int           // max entries per cache
	TTL         time.Duration // lifetime of found results
	NegativeTTL time.Duration // lifetime of not-found results
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Size:        1024,
		TTL:         60 * time.Second,
		NegativeTTL: 10 * time.Second,
	}
}

type cacheEntry struct {
	host   string
	slug   string
	result Result
}

// Cache is a Validator that memoizes backend answers keyed by host and slug.
// Transport errors are never cached. Concurrent misses for one key share a
// single backend call.
type Cache struct {
	next       Validator
	found      *expirable.LRU[string, cacheEntry]
	notFound   *expirable.LRU[string, cacheEntry]
	group      singleflight.Group
	generation atomic.Uint64
	logger     *slog.Logger
}

// NewCache wraps next with a TTL cache.
func NewCache(next Validator, cfg CacheConfig, logger *slog.Logger) *Cache {
	defaults := DefaultCacheConfig()
	if cfg.Size <= 0 {
		cfg.Size = defaults.Size
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.NegativeTTL <= 0 {
		cfg.NegativeTTL = defaults.NegativeTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Cache{
		next:     next,
		found:    expirable.NewLRU[string, cacheEntry](cfg.Size, nil, cfg.TTL),
		notFound: expirable.NewLRU[string, cacheEntry](cfg.Size, nil, cfg.NegativeTTL),
		logger:   logger.With("component", "validation_cache"),
	}
}

// Validate returns a cached result or asks the wrapped validator.
func (c *Cache) Validate(ctx context.Context, host, slug string) (Result, error) {
	key := cacheKey(host, slug)

	if e, ok := c.found.Get(key); ok {
		metrics.RecordCacheLookup("hit")
		return e.result, nil
	}
	if e, ok := c.notFound.Get(key); ok {
		metrics.RecordCacheLookup("hit_negative")
		return e.result, nil
	}
	metrics.RecordCacheLookup("miss")

	// Callers arriving after an invalidation start a fresh flight.
	gen := c.generation.Load()
	v, err, _ := c.group.Do(flightKey(key, gen), func() (any, error) {
		// Shared by every waiter; one cancelled request must not fail the rest.
		res, err := c.next.Validate(context.WithoutCancel(ctx), host, slug)
		if err != nil {
			return Result{}, err
		}

		// Drop results that raced with an invalidation.
		if c.generation.Load() == gen {
			e := cacheEntry{host: host, slug: slug, result: res}
			if res.Valid {
				c.found.Add(key, e)
			} else {
				c.notFound.Add(key, e)
			}
		}
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// Invalidate removes every entry for host. Returns the number removed.
func (c *Cache) Invalidate(host string) int {
	c.generation.Add(1)
	n := c.removeWhere(func(e cacheEntry) bool { return e.host == host })
	c.logger.Debug("cache invalidated", "host", host, "removed", n)
	return n
}

// InvalidateSlug removes every entry whose slug hint or tenant slug is slug.
func (c *Cache) InvalidateSlug(slug string) int {
	c.generation.Add(1)
	n := c.removeWhere(func(e cacheEntry) bool {
		if e.slug == slug {
			return true
		}
		return e.result.Tenant != nil && e.result.Tenant.Slug == slug
	})
	c.logger.Debug("cache invalidated", "slug", slug, "removed", n)
	return n
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.generation.Add(1)
	c.found.Purge()
	c.notFound.Purge()
	c.logger.Debug("cache purged")
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.found.Len() + c.notFound.Len()
}

func (c *Cache) removeWhere(match func(cacheEntry) bool) int {
	removed := 0
	for _, lru := range []*expirable.LRU[string, cacheEntry]{c.found, c.notFound} {
		for _, key := range lru.Keys() {
			if e, ok := lru.Peek(key); ok && match(e) {
				if lru.Remove(key) {
					removed++
				}
			}
		}
	}
	return removed
}

func cacheKey(host, slug string) string {
	return host + "|" + slug
}

func flightKey(key string, gen uint64) string {
	return key + "#" + strconv.FormatUint(gen, 10)
}
