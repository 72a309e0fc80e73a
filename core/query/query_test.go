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

package query

import (
	"context"
	"testing"

	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/serialize"
	"github.com/pagecore/pagecore/storage"
)

func setup(t *testing.T) (*Finder, *descriptor.Registry, storage.Backend) {
	t.Helper()
	registry := descriptor.NewRegistry(nil)
	backend := storage.NewMemoryBackend()

	table, err := registry.EnsureRegistered(descriptor.PageTypeDescriptor{
		Name: "doc",
		Fields: []descriptor.FieldDescriptor{
			{Name: "status", Type: descriptor.TypeString},
		},
	})
	if err != nil {
		t.Fatalf("EnsureRegistered() error = %v", err)
	}

	rows := []storage.Row{
		{URIPrefix: "r/doc:a", Version: 1, Fields: map[string]interface{}{"status": "published"}},
		{URIPrefix: "r/doc:b", Version: 1, Fields: map[string]interface{}{"status": "draft"}},
	}
	for _, row := range rows {
		if err := backend.Store(context.Background(), table.TableName, row); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	resolve := func(typeName string) (descriptor.PageTypeDescriptor, bool) {
		return descriptor.PageTypeDescriptor{}, false
	}
	return NewFinder(registry, backend, serialize.Resolver(resolve)), registry, backend
}

func TestFind_MatchesFilter(t *testing.T) {
	finder, _, _ := setup(t)

	results, err := finder.Find(context.Background(), "doc", []FilterBuilder{Equals("status", "published")})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].URI.Prefix() != "r/doc:a" {
		t.Errorf("result URI prefix = %q, want r/doc:a", results[0].URI.Prefix())
	}
	if results[0].Fields["status"] != "published" {
		t.Errorf("status = %v, want published", results[0].Fields["status"])
	}
}

func TestFind_UnregisteredTypeReturnsEmpty(t *testing.T) {
	finder, _, _ := setup(t)

	results, err := finder.Find(context.Background(), "missing", nil)
	if err != nil {
		t.Fatalf("Find() error = %v, want nil (never fails for an unregistered type)", err)
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0", len(results))
	}
}

func TestFirst(t *testing.T) {
	finder, _, _ := setup(t)

	p, err := finder.First(context.Background(), "doc", []FilterBuilder{Equals("status", "draft")})
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if p == nil || p.URI.Prefix() != "r/doc:b" {
		t.Errorf("First() = %v, want r/doc:b", p)
	}
}

func TestFirst_NoMatchReturnsNil(t *testing.T) {
	finder, _, _ := setup(t)

	p, err := finder.First(context.Background(), "doc", []FilterBuilder{Equals("status", "archived")})
	if err != nil {
		t.Fatalf("First() error = %v", err)
	}
	if p != nil {
		t.Errorf("First() = %v, want nil", p)
	}
}

func TestCount(t *testing.T) {
	finder, _, _ := setup(t)

	count, err := finder.Count(context.Background(), "doc", nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}
