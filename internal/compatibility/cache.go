package compatibility

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultCacheTTL is how long a loaded profile stays fresh. Profiles are
// read-only snapshots; TTL expiry is the only invalidation.
const DefaultCacheTTL = 5 * time.Minute

// ProfileCache is the narrow caching contract the loader depends on, so TTL
// and eviction policy stay testable in isolation.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*LightweightProfile, bool)
	Put(ctx context.Context, userID string, profile *LightweightProfile)
	EvictStale(ctx context.Context) int
	Len(ctx context.Context) int
}

type cacheEntry struct {
	profile    *LightweightProfile
	insertedAt time.Time
}

// memoryCache is the default in-process cache: a keyed map with per-entry
// insertion timestamps. The clock is injectable for expiry tests.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryCache creates an in-process profile cache. A non-positive ttl
// falls back to DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) ProfileCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &memoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *memoryCache) Get(_ context.Context, userID string) (*LightweightProfile, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, userID)
		c.mu.Unlock()
		return nil, false
	}
	return entry.profile, true
}

func (c *memoryCache) Put(_ context.Context, userID string, profile *LightweightProfile) {
	c.mu.Lock()
	c.entries[userID] = cacheEntry{profile: profile, insertedAt: c.now()}
	c.mu.Unlock()
}

func (c *memoryCache) EvictStale(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	cutoff := c.now()
	for userID, entry := range c.entries {
		if cutoff.Sub(entry.insertedAt) >= c.ttl {
			delete(c.entries, userID)
			evicted++
		}
	}
	return evicted
}

func (c *memoryCache) Len(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// redisCache is the shared cache tier for multi-instance deployments. Expiry
// is delegated to Redis key TTLs, so EvictStale has nothing to sweep.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed profile cache under the given key
// prefix. Redis errors degrade to cache misses; the loader's store fallback
// covers the rest.
func NewRedisCache(client *redis.Client, ttl time.Duration, prefix string) ProfileCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if prefix == "" {
		prefix = "compat:profile:"
	}
	return &redisCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisCache) Get(ctx context.Context, userID string) (*LightweightProfile, bool) {
	data, err := c.client.Get(ctx, c.prefix+userID).Bytes()
	if err != nil {
		return nil, false
	}
	var profile LightweightProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

func (c *redisCache) Put(ctx context.Context, userID string, profile *LightweightProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	c.client.Set(ctx, c.prefix+userID, data, c.ttl)
}

func (c *redisCache) EvictStale(_ context.Context) int {
	return 0
}

func (c *redisCache) Len(ctx context.Context) int {
	keys, err := c.client.Keys(ctx, c.prefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}
