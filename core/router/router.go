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

// Package router maps a page type to its handler and implements
// read-through caching with automatic version allocation, per
// spec.md §4.8.
package router

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pagecore/pagecore/cache"
	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/core/pageuri"
	"github.com/pagecore/pagecore/observability/logging"
	"github.com/pagecore/pagecore/observability/metrics"
	"github.com/pagecore/pagecore/pkg/errors"
)

// maxVersionAttempts bounds the retry loop when two concurrent requests
// race to mint the same version.
const maxVersionAttempts = 5

// Handler produces a page for uri. uri always carries a fixed version by
// the time a handler is called: the Router resolves "latest" before
// calling. Handlers are pure with respect to the Router but may perform
// their own I/O and may suspend.
type Handler func(ctx context.Context, uri pageuri.PageURI) (*page.Page, error)

type registration struct {
	desc         descriptor.PageTypeDescriptor
	handler      Handler
	cacheEnabled bool
}

// Router holds a write-once map of type -> handler and dispatches reads
// through the cache, allocating versions on write.
type Router struct {
	registry *descriptor.Registry
	cache    *cache.Cache
	log      logging.Logger
	metrics  *metrics.PageMetrics

	mu       sync.RWMutex
	handlers map[string]registration

	freezeOnce sync.Once
	group      singleflight.Group
}

// New constructs a Router over registry and pageCache. log may be nil.
func New(registry *descriptor.Registry, pageCache *cache.Cache, log logging.Logger) *Router {
	return &Router{
		registry: registry,
		cache:    pageCache,
		log:      log,
		handlers: make(map[string]registration),
	}
}

// WithMetrics attaches a PageMetrics recorder, returning r for chaining.
// A nil recorder disables instrumentation (the zero value already does).
func (r *Router) WithMetrics(m *metrics.PageMetrics) *Router {
	r.metrics = m
	return r
}

// Register installs handler for desc.Name. Fails with
// errors.ErrAlreadyRegistered if the type already has a handler. When
// cacheEnabled is true, the type's schema is registered eagerly so later
// reads and writes have a table to address.
func (r *Router) Register(desc descriptor.PageTypeDescriptor, handler Handler, cacheEnabled bool) error {
	if desc.Name == "" {
		return errors.ErrBadURI.WithMessage("handler registration requires a non-empty page type name")
	}
	if handler == nil {
		return errors.ErrNoHandler.WithMessage("handler registration requires a non-nil handler")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[desc.Name]; exists {
		return errors.ErrAlreadyRegistered.WithDetail("type", desc.Name)
	}

	if cacheEnabled {
		if _, err := r.registry.EnsureRegistered(desc); err != nil {
			return err
		}
	}

	r.handlers[desc.Name] = registration{desc: desc, handler: handler, cacheEnabled: cacheEnabled}
	return nil
}

// GetPage resolves uri through its registered handler, reading through
// the cache and allocating a version when uri.Version is "latest".
func (r *Router) GetPage(ctx context.Context, uri pageuri.PageURI, allowStale bool) (*page.Page, error) {
	start := time.Now()
	p, err := r.getPage(ctx, uri, allowStale)
	if r.metrics != nil {
		if err != nil {
			r.metrics.RecordRouterError(uri.Type, errorCode(err))
		} else {
			r.metrics.RecordRouterRequest(uri.Type, time.Since(start).Seconds())
		}
	}
	return p, err
}

func errorCode(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "unknown"
}

func (r *Router) getPage(ctx context.Context, uri pageuri.PageURI, allowStale bool) (*page.Page, error) {
	r.freezeOnce.Do(r.registry.Freeze)

	reg, ok := r.lookup(uri.Type)
	if !ok {
		return nil, errors.ErrNoHandler.WithDetail("type", uri.Type)
	}

	if reg.cacheEnabled && !uri.Version.IsLatest() {
		if allowStale {
			p, err := r.cache.GetStale(ctx, uri.Type, uri)
			if err != nil {
				return nil, err
			}
			if p != nil {
				return p, nil
			}
		} else {
			p, err := r.cache.Get(ctx, uri.Type, uri)
			if err != nil {
				return nil, err
			}
			if p != nil {
				return p, nil
			}
		}
	}

	resolved, err := r.resolveVersion(ctx, reg, uri)
	if err != nil {
		return nil, err
	}

	// Single-flight identical in-flight handler calls for the same
	// resolved URI, so a burst of misses for one page costs one handler
	// invocation.
	v, err, _ := r.group.Do(resolved.String(), func() (interface{}, error) {
		return reg.handler(ctx, resolved)
	})
	if err != nil {
		return nil, err
	}
	p := v.(*page.Page)

	if reg.cacheEnabled {
		r.storeIfAbsent(ctx, reg, p)
	}

	return p, nil
}

// GetPages issues GetPage for each URI concurrently and returns results
// in input order.
func (r *Router) GetPages(ctx context.Context, uris []pageuri.PageURI, allowStale bool) ([]*page.Page, error) {
	results := make([]*page.Page, len(uris))

	group, gctx := errgroup.WithContext(ctx)
	for i, uri := range uris {
		i, uri := i, uri
		group.Go(func() error {
			p, err := r.GetPage(gctx, uri, allowStale)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CreatePageURI mints a URI for typeName/root/id, defaulting version to
// one above the latest stored version (or 1 if caching is disabled for
// the type or no version has been stored yet).
func (r *Router) CreatePageURI(ctx context.Context, typeName, root, id string) (pageuri.PageURI, error) {
	reg, ok := r.lookup(typeName)
	if !ok {
		return pageuri.PageURI{}, errors.ErrNoHandler.WithDetail("type", typeName)
	}

	version := uint64(1)
	if reg.cacheEnabled {
		prefix := pageuri.New(root, typeName, id, pageuri.Latest()).Prefix()
		if latest, found, err := r.cache.LatestVersion(ctx, typeName, prefix); err != nil {
			return pageuri.PageURI{}, err
		} else if found {
			version = latest + 1
		}
	}
	return pageuri.New(root, typeName, id, pageuri.Exact(version)), nil
}

func (r *Router) lookup(typeName string) (registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.handlers[typeName]
	return reg, ok
}

func (r *Router) resolveVersion(ctx context.Context, reg registration, uri pageuri.PageURI) (pageuri.PageURI, error) {
	if !uri.Version.IsLatest() {
		return uri, nil
	}
	version := uint64(1)
	if reg.cacheEnabled {
		if latest, found, err := r.cache.LatestVersion(ctx, uri.Type, uri.Prefix()); err != nil {
			return pageuri.PageURI{}, err
		} else if found {
			version = latest + 1
		}
	}
	return pageuri.New(uri.Root, uri.Type, uri.ID, pageuri.Exact(version)), nil
}

// storeIfAbsent writes p to storage if caching is enabled, retrying with
// an incremented version up to maxVersionAttempts times on a version
// conflict. Every storage error is logged and swallowed: a cache-write
// failure never fails the read that produced p.
func (r *Router) storeIfAbsent(ctx context.Context, reg registration, p *page.Page) {
	candidate := p.Clone()
	for attempt := 0; attempt < maxVersionAttempts; attempt++ {
		err := r.cache.Store(ctx, reg.desc, candidate)
		if err == nil {
			return
		}
		if !errors.Is(err, errors.ErrAlreadyExists) {
			if r.log != nil {
				r.log.Error(nil, "router: failed to store page after handler call",
					logging.String("type", reg.desc.Name),
					logging.String("uri", candidate.URI.String()),
					logging.Any("error", err),
				)
			}
			return
		}
		// Lost the race to allocate this version: bump and retry. The
		// handler already returned a page at the original version; a
		// higher version is only ever used to avoid re-raising
		// AlreadyExists, never returned to the caller.
		if r.metrics != nil {
			r.metrics.RecordVersionRetry(reg.desc.Name)
		}
		candidate = candidate.Clone()
		candidate.URI.Version = candidate.URI.Version.Next()
	}
	if r.log != nil {
		r.log.Error(nil, "router: exhausted version retries storing page",
			logging.String("type", reg.desc.Name),
			logging.String("uri_prefix", p.URI.Prefix()),
		)
	}
}
