// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package toolkit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pagecore/pagecore/core/page"
)

// RedisCacheConfig configures a RedisResultCache.
type RedisCacheConfig struct {
	// Address is the Redis server address (host:port).
	// Default: "localhost:6379"
	Address string

	// Password is the Redis password. Default: "" (no password).
	Password string

	// DB is the Redis database number. Default: 0.
	DB int

	// DefaultTTL is used when Set is called with ttl == 0.
	// Default: 5 minutes.
	DefaultTTL time.Duration
}

// DefaultRedisCacheConfig returns a localhost, 5-minute-TTL configuration.
func DefaultRedisCacheConfig() RedisCacheConfig {
	return RedisCacheConfig{
		Address:    "localhost:6379",
		DB:         0,
		DefaultTTL: 5 * time.Minute,
	}
}

// RedisResultCache is a ResultCache backed by Redis, for sharing tool
// results across multiple pagecore instances behind a load balancer
// (MemoryResultCache is process-local and can't do that). Hit/miss/set
// counters are tracked in-process, since Redis has no native notion of
// them; Size always reports 0 rather than issuing a KEYS scan per Stats
// call.
type RedisResultCache struct {
	client *redis.Client
	ttl    time.Duration

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64
}

// redisCacheEntry is the JSON envelope stored per key: the raw pages plus
// the time the result was computed, so staleness can still be judged
// against age after a round trip through Redis.
type redisCacheEntry struct {
	Value    []*page.Page `json:"value"`
	Computed time.Time    `json:"computed"`
}

// NewRedisResultCache dials Redis and verifies the connection with Ping.
func NewRedisResultCache(cfg RedisCacheConfig) (*RedisResultCache, error) {
	if cfg.Address == "" {
		cfg = DefaultRedisCacheConfig()
	}
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisResultCache{client: client, ttl: cfg.DefaultTTL}, nil
}

func (c *RedisResultCache) buildKey(key string) string {
	return "pagecore:toolkit:" + key
}

// Get implements ResultCache. The stored cachedResult.value is widened
// from []*page.Page, matching what MemoryResultCache callers expect.
func (c *RedisResultCache) Get(ctx context.Context, key string) (interface{}, bool) {
	data, err := c.client.Get(ctx, c.buildKey(key)).Bytes()
	if err != nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	var entry redisCacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	return cachedResult{value: entry.Value, computed: entry.Computed}, true
}

// Set implements ResultCache.
func (c *RedisResultCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	cached, ok := value.(cachedResult)
	if !ok {
		return fmt.Errorf("toolkit: RedisResultCache.Set got unexpected value type %T", value)
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(redisCacheEntry{Value: cached.value, Computed: cached.computed})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := c.client.Set(ctx, c.buildKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	atomic.AddInt64(&c.sets, 1)
	return nil
}

// Delete implements ResultCache.
func (c *RedisResultCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.buildKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	atomic.AddInt64(&c.deletes, 1)
	return nil
}

// Clear implements ResultCache, scanning for every key under this
// cache's namespace and deleting them in one round trip.
func (c *RedisResultCache) Clear(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, c.buildKey("*")).Result()
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	atomic.AddInt64(&c.evictions, int64(len(keys)))
	return nil
}

// Stats implements ResultCache. Size is left at 0: reporting it
// accurately would require a KEYS scan on every call.
func (c *RedisResultCache) Stats() CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	stats := CacheStats{
		Hits:      hits,
		Misses:    misses,
		Sets:      atomic.LoadInt64(&c.sets),
		Deletes:   atomic.LoadInt64(&c.deletes),
		Evictions: atomic.LoadInt64(&c.evictions),
	}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// Close implements ResultCache.
func (c *RedisResultCache) Close() error {
	return c.client.Close()
}
