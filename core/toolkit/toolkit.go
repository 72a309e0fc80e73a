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

// Package toolkit exposes retrieval operations to upstream agents as
// named tools, wrapped in optional result caching and cursor-based
// pagination, per spec.md §4.9.
package toolkit

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/observability/metrics"
	"github.com/pagecore/pagecore/pkg/errors"
)

// Invoker is a tool's underlying callable: it returns the full, unpaged
// sequence of pages the tool produces for args.
type Invoker func(ctx context.Context, args map[string]interface{}) ([]*page.Page, error)

// StalenessPredicate reports whether a previously cached value is still
// acceptable to serve, independent of TTL.
type StalenessPredicate func(value interface{}) bool

// Options configures a registered tool.
type Options struct {
	// CacheEnabled turns on the result-caching wrapper.
	CacheEnabled bool
	// TTL bounds how long a cached result is considered fresh. Zero
	// skips the registry's own age check, but the result cache still
	// drops the entry after its default TTL (5 minutes for both
	// MemoryResultCache and RedisResultCache defaults); zero does not
	// keep a result indefinitely.
	TTL time.Duration
	// Staleness, if set, must also return true for a cached value to
	// count as fresh.
	Staleness StalenessPredicate

	// PageSize is the maximum number of pages in one paginated
	// response. Zero disables the pagination wrapper: Invoke returns
	// the tool's full sequence untouched.
	PageSize int
	// TokenBudget, if positive, trims a page from the right per
	// Paginator's rule. TokenCount must be set for this to take effect.
	TokenBudget int
	// TokenCount reports a page's contribution against TokenBudget.
	TokenCount func(p *page.Page) int
}

type tool struct {
	name      string
	invoke    Invoker
	opts      Options
	results   ResultCache
	paginator *Paginator
}

// Registry is a write-once, name-keyed collection of tools.
type Registry struct {
	mu             sync.RWMutex
	tools          map[string]*tool
	metrics        *metrics.PageMetrics
	newResultCache func() ResultCache
}

// NewRegistry constructs an empty tool registry. Registered tools with
// CacheEnabled get a process-local MemoryResultCache unless WithRedisCache
// has been called first.
func NewRegistry() *Registry {
	return &Registry{
		tools:          make(map[string]*tool),
		newResultCache: func() ResultCache { return NewMemoryResultCache(DefaultCacheConfig()) },
	}
}

// WithMetrics attaches a PageMetrics recorder, returning r for chaining.
func (r *Registry) WithMetrics(m *metrics.PageMetrics) *Registry {
	r.metrics = m
	return r
}

// WithRedisCache points every subsequently-registered, cache-enabled tool
// at one shared RedisResultCache instead of a per-tool in-memory one, so
// results survive process restarts and are shared across instances.
func (r *Registry) WithRedisCache(cfg RedisCacheConfig) (*Registry, error) {
	cache, err := NewRedisResultCache(cfg)
	if err != nil {
		return r, err
	}
	r.newResultCache = func() ResultCache { return cache }
	return r, nil
}

// Register installs a tool under name. Fails with
// errors.ErrAlreadyRegistered if name is already taken.
func (r *Registry) Register(name string, invoke Invoker, opts Options) error {
	if name == "" {
		return errors.ErrInvalidValue.WithMessage("tool name must not be empty")
	}
	if invoke == nil {
		return errors.ErrInvalidValue.WithDetail("tool", name).WithMessage("tool invoker must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return errors.ErrAlreadyRegistered.WithDetail("tool", name)
	}

	t := &tool{name: name, invoke: invoke, opts: opts}
	if opts.CacheEnabled {
		t.results = r.newResultCache()
	}
	if opts.PageSize > 0 {
		t.paginator = NewPaginator(opts.PageSize, opts.TokenBudget, opts.TokenCount)
	}
	r.tools[name] = t
	return nil
}

// cachedResult pairs a tool's raw output with the time it was computed,
// so a staleness predicate can be evaluated against age as well as TTL.
type cachedResult struct {
	value    []*page.Page
	computed time.Time
}

// Invoke runs the named tool against args. If the tool was registered
// with a page size, the result is paginated and args["page"] (default 0)
// or args["cursor"] selects which window to return; otherwise the full
// sequence is wrapped in a PaginatedResponse with a single page.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]interface{}) (PaginatedResponse, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return PaginatedResponse{}, errors.ErrToolNotFound.WithDetail("tool", name)
	}

	if r.metrics != nil {
		r.metrics.RecordToolInvocation(name)
	}

	pageIndex, err := r.resolvePageIndex(ctx, t, args)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordToolError(name)
		}
		return PaginatedResponse{}, err
	}

	full, err := r.compute(ctx, t, args)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordToolError(name)
		}
		return PaginatedResponse{}, errors.ErrToolExecution.WithDetail("tool", name).Wrap(err)
	}

	if t.paginator == nil {
		return PaginatedResponse{Items: full, PageNumber: 0, HasNextPage: false}, nil
	}
	return t.paginator.Paginate(ctx, full, pageIndex, nil)
}

func (r *Registry) resolvePageIndex(ctx context.Context, t *tool, args map[string]interface{}) (int, error) {
	if cursor, ok := args["cursor"].(string); ok && cursor != "" {
		if t.paginator == nil {
			return 0, errors.ErrInvalidCursor.WithDetail("tool", t.name).WithMessage("tool is not paginated")
		}
		return t.paginator.ResolveCursor(ctx, cursor)
	}
	if v, ok := args["page"]; ok {
		switch n := v.(type) {
		case int:
			return n, nil
		default:
			return 0, errors.ErrInvalidValue.WithDetail("page", v)
		}
	}
	return 0, nil
}

// compute runs the tool's Invoker, through the caching wrapper when
// enabled: the cache key is derived from the tool's qualified name and
// its argument tuple (excluding pagination-only keys, which select a
// window of an otherwise identical result rather than changing it).
func (r *Registry) compute(ctx context.Context, t *tool, args map[string]interface{}) ([]*page.Page, error) {
	if t.results == nil {
		return t.invoke(ctx, args)
	}

	key := cacheKey(t.name, args)
	if v, found := t.results.Get(ctx, key); found {
		cached := v.(cachedResult)
		fresh := true
		if t.opts.TTL > 0 && time.Since(cached.computed) > t.opts.TTL {
			fresh = false
		}
		if fresh && t.opts.Staleness != nil && !t.opts.Staleness(cached.value) {
			fresh = false
		}
		if fresh {
			if r.metrics != nil {
				r.metrics.RecordToolCacheHit(t.name)
			}
			return cached.value, nil
		}
	}

	value, err := t.invoke(ctx, args)
	if err != nil {
		return nil, err
	}
	_ = t.results.Set(ctx, key, cachedResult{value: value, computed: time.Now()}, t.opts.TTL)
	return value, nil
}

// cacheKey derives a deterministic string from name and the invocation's
// non-pagination arguments. page/cursor select a window of an otherwise
// identical result, so they're excluded rather than fragmenting the
// cache per page.
func cacheKey(name string, args map[string]interface{}) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		if k == "page" || k == "cursor" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := name
	for _, k := range keys {
		key += fmt.Sprintf("|%s=%v", k, args[k])
	}
	return key
}
