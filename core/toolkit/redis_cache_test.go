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

//go:build integration

package toolkit

import (
	"context"
	"testing"
	"time"

	"github.com/pagecore/pagecore/core/page"
)

// setupRedisCache creates a RedisResultCache for testing, skipping the
// test if Redis is not available.
func setupRedisCache(t *testing.T) *RedisResultCache {
	t.Helper()

	cfg := DefaultRedisCacheConfig()
	cfg.DefaultTTL = 5 * time.Second

	cache, err := NewRedisResultCache(cfg)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	ctx := context.Background()
	_ = cache.Clear(ctx)
	t.Cleanup(func() {
		_ = cache.Clear(ctx)
		cache.Close()
	})
	return cache
}

func TestRedisResultCache_SetGet(t *testing.T) {
	cache := setupRedisCache(t)
	ctx := context.Background()

	pages := makePages(3)
	want := cachedResult{value: pages, computed: time.Now().Truncate(time.Second)}

	if err := cache.Set(ctx, "tool|a=1", want, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found := cache.Get(ctx, "tool|a=1")
	if !found {
		t.Fatal("expected cache hit")
	}
	cr := got.(cachedResult)
	if len(cr.value) != len(pages) {
		t.Fatalf("got %d pages, want %d", len(cr.value), len(pages))
	}
	if !cr.computed.Equal(want.computed) {
		t.Fatalf("computed = %v, want %v", cr.computed, want.computed)
	}
}

func TestRedisResultCache_MissAfterTTL(t *testing.T) {
	cache := setupRedisCache(t)
	ctx := context.Background()

	pages := makePages(1)
	if err := cache.Set(ctx, "tool|b=2", cachedResult{value: pages, computed: time.Now()}, 50*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	time.Sleep(150 * time.Millisecond)

	if _, found := cache.Get(ctx, "tool|b=2"); found {
		t.Fatal("expected expired entry to miss")
	}
}

func TestRedisResultCache_DeleteAndClear(t *testing.T) {
	cache := setupRedisCache(t)
	ctx := context.Background()

	_ = cache.Set(ctx, "tool|c=3", cachedResult{value: makePages(1), computed: time.Now()}, 0)
	if err := cache.Delete(ctx, "tool|c=3"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found := cache.Get(ctx, "tool|c=3"); found {
		t.Fatal("expected miss after delete")
	}

	_ = cache.Set(ctx, "tool|d=4", cachedResult{value: makePages(1), computed: time.Now()}, 0)
	_ = cache.Set(ctx, "tool|e=5", cachedResult{value: makePages(1), computed: time.Now()}, 0)
	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, found := cache.Get(ctx, "tool|d=4"); found {
		t.Fatal("expected miss after clear")
	}
}

func TestRegistry_WithRedisCache_SharesAcrossTools(t *testing.T) {
	registry := NewRegistry()
	if _, err := registry.WithRedisCache(DefaultRedisCacheConfig()); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	var calls int
	invoke := func(ctx context.Context, args map[string]interface{}) ([]*page.Page, error) {
		calls++
		return makePages(2), nil
	}
	if err := registry.Register("shared", invoke, Options{CacheEnabled: true}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := registry.Invoke(context.Background(), "shared", nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if _, err := registry.Invoke(context.Background(), "shared", nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if calls != 1 {
		t.Fatalf("invoke called %d times, want 1 (second call should hit Redis cache)", calls)
	}
}
