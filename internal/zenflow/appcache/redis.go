package appcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the cache with a single Redis node, grounded in the
// teacher's agent/cache_redis.go. It keeps hit/miss counters locally
// (Redis itself only stores the values); Stats() still makes a SCAN round
// trip on every call to count the stored keys for Size.
type RedisCache struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
	statsLock  sync.RWMutex
	stats      Stats
}

// NewRedisCache dials addr and verifies connectivity with a Ping before
// returning, so a misconfigured REDIS_URL fails fast at startup rather
// than on the first cache miss.
func NewRedisCache(addr, password string, db int, keyPrefix string, defaultTTL time.Duration) (*RedisCache, error) {
	if keyPrefix == "" {
		keyPrefix = "zenflow"
	}
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("appcache: failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client, prefix: keyPrefix, defaultTTL: defaultTTL}, nil
}

func (c *RedisCache) makeKey(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.makeKey(key)).Result()
	if err == redis.Nil {
		c.statsLock.Lock()
		c.stats.Misses++
		c.statsLock.Unlock()
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("appcache: redis get failed: %w", err)
	}
	c.statsLock.Lock()
	c.stats.Hits++
	c.statsLock.Unlock()
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.client.Set(ctx, c.makeKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("appcache: redis set failed: %w", err)
	}
	c.statsLock.Lock()
	c.stats.TotalWrites++
	c.statsLock.Unlock()
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("appcache: redis delete failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	pattern := c.makeKey("*")
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("appcache: redis scan failed: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("appcache: redis delete batch failed: %w", err)
		}
	}
	c.statsLock.Lock()
	c.stats = Stats{}
	c.statsLock.Unlock()
	return nil
}

func (c *RedisCache) Stats() Stats {
	c.statsLock.RLock()
	defer c.statsLock.RUnlock()

	ctx := context.Background()
	pattern := c.makeKey("*")
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	size := 0
	for iter.Next(ctx) {
		size++
	}
	s := c.stats
	s.Size = size
	return s
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
