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

// Package pagecontext wires one cache, one router, and one toolkit
// behind a single entry point, plus a write-once registry of named
// collaborators (retrievers and the like), per spec.md §4.10.
package pagecontext

import (
	"context"
	"sync"

	"github.com/pagecore/pagecore/cache"
	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/core/pageuri"
	"github.com/pagecore/pagecore/core/router"
	"github.com/pagecore/pagecore/core/toolkit"
	"github.com/pagecore/pagecore/pkg/errors"
)

// Reference is one result of a Retriever search: the referenced page's
// URI, and — when resolution is requested — the page itself.
type Reference struct {
	URI  pageuri.PageURI
	Page *page.Page
}

// SearchResponse wraps the references a search produced.
type SearchResponse struct {
	References []Reference
}

// Retriever turns a free-text instruction into a list of page
// references. Context does not implement retrieval itself; callers
// supply a Retriever (inline, or looked up from the service registry).
type Retriever interface {
	Search(ctx context.Context, instruction string) ([]Reference, error)
}

// Context owns the cache, router, and toolkit for one deployment, plus a
// write-once map of named services.
type Context struct {
	Cache   *cache.Cache
	Router  *router.Router
	Toolkit *toolkit.Registry

	mu               sync.RWMutex
	services         map[string]interface{}
	defaultRetriever Retriever
}

// New constructs a Context over the given cache, router, and toolkit.
func New(pageCache *cache.Cache, pageRouter *router.Router, tools *toolkit.Registry) *Context {
	return &Context{
		Cache:    pageCache,
		Router:   pageRouter,
		Toolkit:  tools,
		services: make(map[string]interface{}),
	}
}

// RegisterRetriever installs retriever as the default used by Search
// calls that omit one. Write-once: fails with
// errors.ErrAlreadyRegistered if a default is already set.
func (c *Context) RegisterRetriever(retriever Retriever) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.defaultRetriever != nil {
		return errors.ErrAlreadyRegistered.WithDetail("service", "default retriever")
	}
	c.defaultRetriever = retriever
	return nil
}

// Ping checks that the underlying storage backend is reachable.
func (c *Context) Ping(ctx context.Context) error {
	return c.Cache.Ping(ctx)
}

// DefaultRetriever returns the retriever registered via
// RegisterRetriever, if any. Transport layers that have no per-request
// way to supply a Retriever (an HTTP or websocket handler, for example)
// use this instead of requiring one on every call.
func (c *Context) DefaultRetriever() (Retriever, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultRetriever, c.defaultRetriever != nil
}

// RegisterService installs service under name. Fails with
// errors.ErrAlreadyRegistered if name is already taken.
func (c *Context) RegisterService(name string, service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.services[name]; exists {
		return errors.ErrAlreadyRegistered.WithDetail("service", name)
	}
	c.services[name] = service
	return nil
}

// Service looks up a previously registered service by name.
func (c *Context) Service(name string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.services[name]
	return s, ok
}

// GetPage delegates to the Router.
func (c *Context) GetPage(ctx context.Context, uri pageuri.PageURI, allowStale bool) (*page.Page, error) {
	return c.Router.GetPage(ctx, uri, allowStale)
}

// GetPages delegates to the Router.
func (c *Context) GetPages(ctx context.Context, uris []pageuri.PageURI, allowStale bool) ([]*page.Page, error) {
	return c.Router.GetPages(ctx, uris, allowStale)
}

// Search calls retriever.Search(instruction) and, when resolveReferences
// is true, resolves every reference's URI through GetPages and attaches
// the resolved page. A nil retriever falls back to the registered
// default (see RegisterRetriever); if neither is available, Search
// fails.
func (c *Context) Search(ctx context.Context, instruction string, retriever Retriever, resolveReferences bool) (*SearchResponse, error) {
	if retriever == nil {
		c.mu.RLock()
		retriever = c.defaultRetriever
		c.mu.RUnlock()
	}
	if retriever == nil {
		return nil, errors.ErrInvalidValue.WithMessage("search requires a retriever")
	}

	refs, err := retriever.Search(ctx, instruction)
	if err != nil {
		return nil, err
	}

	if resolveReferences && len(refs) > 0 {
		uris := make([]pageuri.PageURI, len(refs))
		for i, ref := range refs {
			uris[i] = ref.URI
		}
		pages, err := c.GetPages(ctx, uris, false)
		if err != nil {
			return nil, err
		}
		for i := range refs {
			refs[i].Page = pages[i]
		}
	}

	return &SearchResponse{References: refs}, nil
}
