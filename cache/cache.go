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

// Package cache composes the schema registry, serialization, storage,
// provenance, validator, and query components behind one facade: the
// read-time validation pass with ancestor propagation that spec.md §4.7
// describes.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/core/pageuri"
	"github.com/pagecore/pagecore/core/provenance"
	"github.com/pagecore/pagecore/core/query"
	"github.com/pagecore/pagecore/core/serialize"
	"github.com/pagecore/pagecore/core/validator"
	"github.com/pagecore/pagecore/observability/logging"
	"github.com/pagecore/pagecore/observability/metrics"
	"github.com/pagecore/pagecore/pkg/errors"
	"github.com/pagecore/pagecore/storage"
)

// Stats reports cumulative cache activity, mirrored into metrics when a
// collector is configured.
type Stats struct {
	Hits        int64
	Misses      int64
	Invalidated int64
}

// Cache composes C1-C6 behind Store/Get/GetLatest/Find and the
// invalidation and lineage operations spec.md §4.7 requires.
type Cache struct {
	registry   *descriptor.Registry
	backend    storage.Backend
	tracker    *provenance.Tracker
	validators *validator.Registry
	finder     *query.Finder
	resolve    serialize.Resolver

	log       logging.Logger
	collector metrics.Collector

	mu    sync.Mutex
	stats Stats
}

// New constructs a Cache. collector and log may both be nil.
func New(registry *descriptor.Registry, backend storage.Backend, resolve serialize.Resolver, log logging.Logger, collector metrics.Collector) *Cache {
	return &Cache{
		registry:   registry,
		backend:    backend,
		tracker:    provenance.NewTracker(registry, backend),
		validators: validator.NewRegistry(log),
		finder:     query.NewFinder(registry, backend, resolve),
		resolve:    resolve,
		log:        log,
		collector:  collector,
	}
}

// RegisterValidator installs predicate for typeName.
func (c *Cache) RegisterValidator(typeName string, predicate validator.Predicate) {
	c.validators.Register(typeName, predicate)
}

// Store ensures desc is registered, validates provenance (when p has a
// parent), serializes p's fields, and writes it to Storage. p.URI must
// already carry a fixed version.
func (c *Cache) Store(ctx context.Context, desc descriptor.PageTypeDescriptor, p *page.Page) error {
	ctx = logging.WithPageURI(ctx, p.URI.String())

	table, err := c.registry.EnsureRegistered(desc)
	if err != nil {
		return err
	}

	if p.ParentURI != nil {
		if err := c.tracker.ValidateParent(ctx, p.URI, p.ParentURI); err != nil {
			return err
		}
	}

	version, ok := p.URI.Version.Uint64()
	if !ok {
		return errors.ErrInvalidValue.WithDetail("uri", p.URI.String()).WithMessage("page must carry a fixed version before storing")
	}

	stored, err := serialize.Serialize(desc, p.Fields, c.resolve)
	if err != nil {
		return err
	}

	row := storage.Row{URIPrefix: p.URI.Prefix(), Version: version, Fields: stored}
	if err := c.backend.Store(ctx, table.TableName, row); err != nil {
		return err
	}

	if p.ParentURI != nil {
		if err := c.tracker.RecordParent(ctx, p.URI, *p.ParentURI); err != nil && c.log != nil {
			c.log.Error(nil, "failed to record parent relationship after store",
				logging.String("uri", p.URI.String()),
				logging.String("parent_uri", p.ParentURI.String()),
				logging.Any("error", err),
			)
		}
	}
	return nil
}

// Get reads one exact-versioned page and runs read-time validation with
// ancestor propagation. Returns (nil, nil) when the page is absent or
// fails validation — this is not an error condition.
func (c *Cache) Get(ctx context.Context, typeName string, uri pageuri.PageURI) (*page.Page, error) {
	ctx = logging.WithPageURI(ctx, uri.String())

	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return nil, nil
	}
	version, ok := uri.Version.Uint64()
	if !ok {
		return nil, errors.ErrInvalidValue.WithDetail("uri", uri.String()).WithMessage("Get requires a fixed version; use GetLatest")
	}

	row, err := c.backend.Get(ctx, table.TableName, uri.Prefix(), version, false)
	if err != nil {
		c.recordMiss()
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	p, err := c.rowToPage(ctx, table, typeName, uri, row)
	if err != nil {
		return nil, err
	}

	if !c.validators.IsValid(p) {
		c.invalidateRow(ctx, table.TableName, uri.Prefix(), version)
		c.recordMiss()
		return nil, nil
	}

	if p.ParentURI != nil && c.validators.HasAny() {
		lineage, err := c.tracker.Lineage(ctx, uri)
		if err != nil {
			if c.validators.HasAny() {
				c.recordMiss()
				return nil, nil
			}
		} else {
			for _, ancestorURI := range lineage {
				if ancestorURI.Equal(uri) {
					continue
				}
				ancestorValid, err := c.validateAncestor(ctx, ancestorURI)
				if err != nil {
					continue
				}
				if !ancestorValid {
					c.invalidateAncestorRow(ctx, ancestorURI)
					c.invalidateRow(ctx, table.TableName, uri.Prefix(), version)
					c.recordMiss()
					return nil, nil
				}
			}
		}
	}

	c.recordHit()
	return p, nil
}

// GetLatest reads the highest-versioned valid row for prefix and runs the
// self-validator (ancestor propagation is not required for latest reads:
// latest is itself a freshness signal).
func (c *Cache) GetLatest(ctx context.Context, typeName, prefix string) (*page.Page, error) {
	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return nil, nil
	}

	row, err := c.backend.GetLatestRow(ctx, table.TableName, prefix, false)
	if err != nil {
		c.recordMiss()
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	uri, err := pageuri.Parse(prefix)
	if err != nil {
		return nil, err
	}
	uri.Version = pageuri.Exact(row.Version)

	p, err := c.rowToPage(ctx, table, typeName, uri, row)
	if err != nil {
		return nil, err
	}

	if !c.validators.IsValid(p) {
		c.invalidateRow(ctx, table.TableName, prefix, row.Version)
		c.recordMiss()
		return nil, nil
	}

	c.recordHit()
	return p, nil
}

// Find returns every page of typeName matching builders, with each result
// passed through the validator, auto-invalidating failures.
func (c *Cache) Find(ctx context.Context, typeName string, builders []query.FilterBuilder) ([]*page.Page, error) {
	candidates, err := c.finder.Find(ctx, typeName, builders)
	if err != nil {
		return nil, err
	}

	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return nil, nil
	}

	out := make([]*page.Page, 0, len(candidates))
	for _, p := range candidates {
		if !c.validators.IsValid(p) {
			version, _ := p.URI.Version.Uint64()
			c.invalidateRow(ctx, table.TableName, p.URI.Prefix(), version)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Invalidate marks one exact-versioned row invalid.
func (c *Cache) Invalidate(ctx context.Context, typeName string, uri pageuri.PageURI) error {
	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return err
	}
	version, ok := uri.Version.Uint64()
	if !ok {
		return errors.ErrInvalidValue.WithDetail("uri", uri.String())
	}
	_, err = c.backend.MarkInvalid(ctx, table.TableName, uri.Prefix(), version)
	if err == nil {
		c.recordInvalidated(1)
	}
	return err
}

// InvalidatePrefix marks every version of prefix invalid.
func (c *Cache) InvalidatePrefix(ctx context.Context, typeName, prefix string) (int64, error) {
	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return 0, err
	}
	n, err := c.backend.MarkInvalidByPrefix(ctx, table.TableName, prefix)
	if err == nil {
		c.recordInvalidated(n)
	}
	return n, err
}

// GetChildren returns every page whose parent link points at parentURI.
func (c *Cache) GetChildren(ctx context.Context, parentURI pageuri.PageURI) ([]pageuri.PageURI, error) {
	return c.tracker.ChildrenOf(ctx, parentURI)
}

// GetLineage returns the root-to-leaf ancestor chain ending at uri.
func (c *Cache) GetLineage(ctx context.Context, uri pageuri.PageURI) ([]pageuri.PageURI, error) {
	return c.tracker.Lineage(ctx, uri)
}

// GetStale reads uri's row ignoring validity and skips read-time
// validation entirely. Intended for callers that explicitly accept
// possibly-invalid data, such as core/router's allow_stale path.
func (c *Cache) GetStale(ctx context.Context, typeName string, uri pageuri.PageURI) (*page.Page, error) {
	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return nil, nil
	}
	version, ok := uri.Version.Uint64()
	if !ok {
		return nil, errors.ErrInvalidValue.WithDetail("uri", uri.String()).WithMessage("GetStale requires a fixed version")
	}

	row, err := c.backend.Get(ctx, table.TableName, uri.Prefix(), version, true)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return c.rowToPage(ctx, table, typeName, uri, row)
}

// LatestVersion reports the highest version ever stored for prefix,
// across both valid and invalidated rows, so a caller minting the next
// version never reuses a number. ok is false when no row exists yet or
// typeName is unregistered.
func (c *Cache) LatestVersion(ctx context.Context, typeName, prefix string) (uint64, bool, error) {
	table, err := c.registry.TableFor(typeName)
	if err != nil {
		return 0, false, nil
	}
	row, err := c.backend.GetLatestRow(ctx, table.TableName, prefix, true)
	if err != nil {
		if errors.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return row.Version, true, nil
}

// Ping checks that the underlying storage backend is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

// StatsSnapshot returns a copy of the cache's cumulative counters.
func (c *Cache) StatsSnapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Cache) validateAncestor(ctx context.Context, ancestorURI pageuri.PageURI) (bool, error) {
	table, err := c.registry.TableFor(ancestorURI.Type)
	if err != nil {
		return true, err
	}
	version, ok := ancestorURI.Version.Uint64()
	if !ok {
		return true, fmt.Errorf("ancestor URI %s is missing a fixed version", ancestorURI.String())
	}
	row, err := c.backend.Get(ctx, table.TableName, ancestorURI.Prefix(), version, true)
	if err != nil {
		return true, err
	}
	p, err := c.rowToPage(ctx, table, ancestorURI.Type, ancestorURI, row)
	if err != nil {
		return true, err
	}
	return c.validators.IsValid(p), nil
}

// invalidateAncestorRow marks ancestorURI's own row invalid. Called when
// ancestor propagation fails a lineage check: spec.md §4.7/Scenario S5
// requires both the failing ancestor and the descendant being read to
// come out marked invalid, not just the descendant.
func (c *Cache) invalidateAncestorRow(ctx context.Context, ancestorURI pageuri.PageURI) {
	table, err := c.registry.TableFor(ancestorURI.Type)
	if err != nil {
		return
	}
	version, ok := ancestorURI.Version.Uint64()
	if !ok {
		return
	}
	c.invalidateRow(ctx, table.TableName, ancestorURI.Prefix(), version)
}

func (c *Cache) rowToPage(ctx context.Context, table *descriptor.TableDescriptor, typeName string, uri pageuri.PageURI, row storage.Row) (*page.Page, error) {
	fields, err := serialize.Deserialize(table.Type, row.Fields, c.resolve)
	if err != nil {
		return nil, err
	}
	p := page.New(typeName, uri, nil, fields)
	p.Valid = row.Valid
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt

	if target, ok, err := c.backend.GetRelationship(ctx, uri.String(), provenance.RelationshipType); err == nil && ok {
		if parentURI, err := pageuri.Parse(target); err == nil {
			p.ParentURI = &parentURI
		}
	}
	return p, nil
}

func (c *Cache) invalidateRow(ctx context.Context, tableName, prefix string, version uint64) {
	if _, err := c.backend.MarkInvalid(ctx, tableName, prefix, version); err != nil && c.log != nil {
		c.log.Error(nil, "failed to mark row invalid",
			logging.String("table", tableName),
			logging.String("uri_prefix", prefix),
		)
	}
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	if c.collector != nil {
		c.collector.IncrementCounter("pagecore_cache_hits_total", nil)
	}
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	if c.collector != nil {
		c.collector.IncrementCounter("pagecore_cache_misses_total", nil)
	}
}

func (c *Cache) recordInvalidated(n int64) {
	c.mu.Lock()
	c.stats.Invalidated += n
	c.mu.Unlock()
	if c.collector != nil {
		c.collector.AddCounter("pagecore_cache_invalidations_total", float64(n), nil)
	}
}
