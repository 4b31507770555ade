package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "mealsub:holiday:current:"

// Cache remembers the current-holiday lookup per calendar day. A cached nil means
// "no holiday today" and is a hit.
type Cache interface {
	Get(ctx context.Context, day string) (h *Holiday, found bool, err error)
	Set(ctx context.Context, day string, h *Holiday) error
	Invalidate(ctx context.Context) error
}

// RedisCache stores lookups as JSON with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects using a redis:// URL.
func NewRedisCache(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func (c *RedisCache) Get(ctx context.Context, day string) (*Holiday, bool, error) {
	raw, err := c.client.Get(ctx, cacheKeyPrefix+day).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var h *Holiday
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, false, fmt.Errorf("decode cached holiday: %w", err)
	}
	return h, true, nil
}

func (c *RedisCache) Set(ctx context.Context, day string, h *Holiday) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode holiday: %w", err)
	}
	return c.client.Set(ctx, cacheKeyPrefix+day, raw, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, cacheKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is a process-local cache for single instance deployments and tests.
// Entries expire after ttl so replicas sharing a database converge on admin changes
// made elsewhere; a ttl of zero keeps entries until Invalidate.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	holiday   *Holiday
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

// WithClock replaces the clock used to expire entries.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, day string) (*Holiday, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[day]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.holiday, true, nil
}

func (c *MemoryCache) Set(_ context.Context, day string, h *Holiday) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{holiday: h}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[day] = e
	return nil
}

func (c *MemoryCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}
