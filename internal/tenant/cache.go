package tenant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache fronts PrincipalStore's tenant lookups with a short-TTL,
// read-mostly cache (spec §5: "invalidated by Admin-side writes;
// staleness tolerated briefly"). Two backends satisfy this interface:
// an in-process map (default) and a Redis-backed one for multi-instance
// deployments that want to share invalidation-by-expiry across
// processes.
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t Tenant)
}

// InMemoryCache is a mutex-guarded map whose entries count as misses
// once older than the TTL (they stay in the map until overwritten), the
// default backend when ADCP_REDIS_ADDR is unset.
type InMemoryCache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]cacheEntry
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{ttl: ttl, m: make(map[string]cacheEntry)}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.m[key]
	if !ok || time.Since(entry.insertedAt) > c.ttl {
		return nil, false
	}
	t := entry.tenant
	return &t, true
}

func (c *InMemoryCache) Set(_ context.Context, key string, t Tenant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = cacheEntry{tenant: t, insertedAt: time.Now()}
}

// RedisCache is the optional distributed backend, selected when
// ADCP_REDIS_ADDR is configured.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, "tenant:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, t Tenant) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	c.client.Set(ctx, "tenant:"+key, data, c.ttl)
}
