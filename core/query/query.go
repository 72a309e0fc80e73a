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

// Package query builds storage.Filter values from column descriptors and
// runs them against a registered page type, auto-restricted to valid
// rows and deserialized back into pages via core/serialize.
package query

import (
	"context"
	"fmt"

	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/core/pageuri"
	"github.com/pagecore/pagecore/core/serialize"
	"github.com/pagecore/pagecore/storage"
)

// FilterBuilder yields a storage.Filter for a specific table descriptor.
// Builders are supplied by the caller; core/query only composes and
// executes them.
type FilterBuilder func(table *descriptor.TableDescriptor) (storage.Filter, error)

// Equals builds a filter matching rows where field equals value exactly,
// in both its in-memory and SQL forms.
func Equals(field string, value interface{}) FilterBuilder {
	return func(table *descriptor.TableDescriptor) (storage.Filter, error) {
		return storage.Filter{
			Match: func(fields map[string]interface{}) bool {
				return fields[field] == value
			},
			SQLFragment: func(argOffset int) (string, []interface{}) {
				return fmt.Sprintf("%q = $%d", field, argOffset), []interface{}{value}
			},
		}, nil
	}
}

// Finder runs filter builders against a registered page type and
// deserializes matching rows back into pages.
type Finder struct {
	registry *descriptor.Registry
	backend  storage.Backend
	resolve  serialize.Resolver
}

// NewFinder constructs a Finder over registry, backend, and a record-type
// resolver for nested TypeRecord fields.
func NewFinder(registry *descriptor.Registry, backend storage.Backend, resolve serialize.Resolver) *Finder {
	return &Finder{registry: registry, backend: backend, resolve: resolve}
}

// Find returns every valid page of typeName matching all of builders,
// ANDed together. Returns an empty list, never an error, when typeName is
// not registered.
func (f *Finder) Find(ctx context.Context, typeName string, builders []FilterBuilder) ([]*page.Page, error) {
	table, err := f.registry.TableFor(typeName)
	if err != nil {
		return nil, nil
	}

	filters := make([]storage.Filter, 0, len(builders))
	for _, build := range builders {
		filter, err := build(table)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}

	rows, err := f.backend.Find(ctx, table.TableName, filters)
	if err != nil {
		return nil, err
	}

	out := make([]*page.Page, 0, len(rows))
	for _, row := range rows {
		p, err := f.toPage(typeName, row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// First returns the first page matching builders, or nil if none match.
func (f *Finder) First(ctx context.Context, typeName string, builders []FilterBuilder) (*page.Page, error) {
	results, err := f.Find(ctx, typeName, builders)
	if err != nil || len(results) == 0 {
		return nil, err
	}
	return results[0], nil
}

// Count returns the number of pages matching builders.
func (f *Finder) Count(ctx context.Context, typeName string, builders []FilterBuilder) (int, error) {
	results, err := f.Find(ctx, typeName, builders)
	if err != nil {
		return 0, err
	}
	return len(results), nil
}

func (f *Finder) toPage(typeName string, row storage.Row) (*page.Page, error) {
	table, err := f.registry.TableFor(typeName)
	if err != nil {
		return nil, err
	}
	fields, err := serialize.Deserialize(table.Type, row.Fields, f.resolve)
	if err != nil {
		return nil, err
	}

	uri, err := pageuri.Parse(row.URIPrefix)
	if err != nil {
		return nil, err
	}
	uri.Version = pageuri.Exact(row.Version)

	p := page.New(typeName, uri, nil, fields)
	p.Valid = row.Valid
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return p, nil
}
