package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache stores serialized hour-of-day aggregates. Implementations must be
// safe for concurrent use. A cache miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed cache from a client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get fetches a cached value.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores a value with a TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// MemoryCache is an in-process Cache used in tests and single-node setups.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

// Get fetches a cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores a value with a TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryCacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// CachedRepository decorates a Repository with memoization of the per-hour
// aggregation queries the forecaster issues. Recent and Insert pass through:
// only ByHourOfDay is hot enough to be worth caching, and a short TTL keeps
// forecasts from lagging new data by more than a few minutes.
type CachedRepository struct {
	inner  Repository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedRepository wraps a repository with an hour-of-day cache.
// A non-positive TTL selects 5 minutes.
func NewCachedRepository(inner Repository, cache Cache, ttl time.Duration, logger zerolog.Logger) *CachedRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Recent passes through to the underlying repository.
func (r *CachedRepository) Recent(ctx context.Context, bottleneckID string, limit int) ([]Observation, error) {
	return r.inner.Recent(ctx, bottleneckID, limit)
}

// ByHourOfDay serves from the cache when possible. Cache failures degrade to
// the underlying repository; they are logged, never surfaced.
func (r *CachedRepository) ByHourOfDay(ctx context.Context, bottleneckID string, hour int) ([]Observation, error) {
	key := fmt.Sprintf("history:hour:%s:%d", bottleneckID, hour)

	if raw, ok, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("hour cache read failed")
	} else if ok {
		var cached []Observation
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		r.logger.Warn().Str("key", key).Msg("discarding undecodable hour cache entry")
	}

	observations, err := r.inner.ByHourOfDay(ctx, bottleneckID, hour)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(observations); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("hour cache write failed")
		}
	}

	return observations, nil
}

// Insert passes through to the underlying repository.
func (r *CachedRepository) Insert(ctx context.Context, obs Observation) error {
	return r.inner.Insert(ctx, obs)
}
