package utils

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultCacheTTL is how long a cached response lives without invalidation.
	DefaultCacheTTL = time.Hour

	cacheKeyPrefix = "cache:"
)

// Cache is the response cache used in front of list endpoints. Failures are
// reported as misses and never surface to the caller.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	InvalidatePrefix(ctx context.Context, prefix string)
}

// NewCache returns a Redis-backed cache when a client is available and an
// in-process one otherwise.
func NewCache(rc *redis.Client) Cache {
	if rc == nil {
		return NewMemoryCache()
	}
	return &RedisCache{client: rc}
}

// RedisCache stores entries under the "cache:" namespace.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(rc *redis.Client) *RedisCache {
	return &RedisCache{client: rc}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	b, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			Sugar.Warnf("cache get failed key=%s err=%v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.client.Set(ctx, cacheKeyPrefix+key, value, ttl).Err(); err != nil {
		Sugar.Warnf("cache set failed key=%s err=%v", key, err)
	}
}

// InvalidatePrefix deletes keys that match the given prefix using SCAN.
func (c *RedisCache) InvalidatePrefix(ctx context.Context, prefix string) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := c.client.Scan(ctx, cursor, cacheKeyPrefix+prefix+"*", 1000).Result()
		if err != nil {
			Sugar.Warnf("cache invalidate scan failed prefix=%s err=%v", prefix, err)
			return
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := c.client.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				Sugar.Warnf("cache invalidate delete failed prefix=%s err=%v", prefix, err)
			}
		}
		if cursor == 0 {
			return
		}
	}
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a single-instance fallback used when Redis is disabled.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	c.mu.Lock()
	c.entries[key] = memoryEntry{value: buf, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryCache) InvalidatePrefix(_ context.Context, prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Key namespaces for cached list responses.
const (
	PostsListCachePrefix = "posts:"
	FeedCachePrefix      = "feed:"
)

// FeedCachePrefixFor scopes feed entries to one caller.
func FeedCachePrefixFor(userID uint) string {
	return FeedCachePrefix + strconv.FormatUint(uint64(userID), 10) + ":"
}
