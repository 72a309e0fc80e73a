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

package storage

import (
	"context"
	"testing"

	"github.com/pagecore/pagecore/pkg/errors"
)

func TestMemoryBackend_StoreAndGet(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	row := Row{URIPrefix: "r/doc:a", Version: 1, Fields: map[string]interface{}{"title": "hello"}}
	if err := b.Store(ctx, "doc_pages", row); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := b.Get(ctx, "doc_pages", "r/doc:a", 1, false)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Fields["title"] != "hello" {
		t.Errorf("title = %v, want hello", got.Fields["title"])
	}
	if !got.Valid {
		t.Error("Valid = false, want true")
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("expected CreatedAt/UpdatedAt to be set")
	}
}

func TestMemoryBackend_StoreDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	row := Row{URIPrefix: "r/doc:a", Version: 1, Fields: map[string]interface{}{"title": "hello"}}
	if err := b.Store(ctx, "doc_pages", row); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	err := b.Store(ctx, "doc_pages", row)
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("Store() duplicate error = %v, want ErrAlreadyExists", err)
	}
}

func TestMemoryBackend_GetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	_, err := b.Get(ctx, "doc_pages", "r/doc:missing", 1, false)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryBackend_GetLatestRow(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	for v := uint64(1); v <= 3; v++ {
		row := Row{URIPrefix: "r/doc:a", Version: v, Fields: map[string]interface{}{"n": v}}
		if err := b.Store(ctx, "doc_pages", row); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	latest, err := b.GetLatestRow(ctx, "doc_pages", "r/doc:a", false)
	if err != nil {
		t.Fatalf("GetLatestRow() error = %v", err)
	}
	if latest.Version != 3 {
		t.Errorf("Version = %d, want 3", latest.Version)
	}
}

func TestMemoryBackend_GetLatestRowSkipsInvalid(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	for v := uint64(1); v <= 2; v++ {
		row := Row{URIPrefix: "r/doc:a", Version: v, Fields: map[string]interface{}{"n": v}}
		if err := b.Store(ctx, "doc_pages", row); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
	if _, err := b.MarkInvalid(ctx, "doc_pages", "r/doc:a", 2); err != nil {
		t.Fatalf("MarkInvalid() error = %v", err)
	}

	latest, err := b.GetLatestRow(ctx, "doc_pages", "r/doc:a", false)
	if err != nil {
		t.Fatalf("GetLatestRow() error = %v", err)
	}
	if latest.Version != 1 {
		t.Errorf("Version = %d, want 1 (version 2 is invalid)", latest.Version)
	}

	latestIgnoring, err := b.GetLatestRow(ctx, "doc_pages", "r/doc:a", true)
	if err != nil {
		t.Fatalf("GetLatestRow(ignoreValidity) error = %v", err)
	}
	if latestIgnoring.Version != 2 {
		t.Errorf("Version = %d, want 2 when ignoring validity", latestIgnoring.Version)
	}
}

func TestMemoryBackend_MarkInvalidByPrefix(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	for v := uint64(1); v <= 3; v++ {
		row := Row{URIPrefix: "r/doc:a", Version: v, Fields: map[string]interface{}{"n": v}}
		if err := b.Store(ctx, "doc_pages", row); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	count, err := b.MarkInvalidByPrefix(ctx, "doc_pages", "r/doc:a")
	if err != nil {
		t.Fatalf("MarkInvalidByPrefix() error = %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	if _, err := b.GetLatestRow(ctx, "doc_pages", "r/doc:a", false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetLatestRow() after invalidation error = %v, want ErrNotFound", err)
	}
}

func TestMemoryBackend_Find(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	rows := []Row{
		{URIPrefix: "r/doc:a", Version: 1, Fields: map[string]interface{}{"status": "published"}},
		{URIPrefix: "r/doc:b", Version: 1, Fields: map[string]interface{}{"status": "draft"}},
		{URIPrefix: "r/doc:c", Version: 1, Fields: map[string]interface{}{"status": "published"}},
	}
	for _, row := range rows {
		if err := b.Store(ctx, "doc_pages", row); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	published := Filter{Match: func(fields map[string]interface{}) bool {
		return fields["status"] == "published"
	}}
	found, err := b.Find(ctx, "doc_pages", []Filter{published})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 2 {
		t.Errorf("len(found) = %d, want 2", len(found))
	}
}

func TestMemoryBackend_FindExcludesInvalid(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	if err := b.Store(ctx, "doc_pages", Row{URIPrefix: "r/doc:a", Version: 1, Fields: map[string]interface{}{}}); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if _, err := b.MarkInvalid(ctx, "doc_pages", "r/doc:a", 1); err != nil {
		t.Fatalf("MarkInvalid() error = %v", err)
	}

	found, err := b.Find(ctx, "doc_pages", nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(found) != 0 {
		t.Errorf("len(found) = %d, want 0", len(found))
	}
}

func TestMemoryBackend_Relationships(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	if err := b.PutRelationship(ctx, "r/doc:child", "parent", "r/doc:parent@1"); err != nil {
		t.Fatalf("PutRelationship() error = %v", err)
	}

	target, ok, err := b.GetRelationship(ctx, "r/doc:child", "parent")
	if err != nil || !ok {
		t.Fatalf("GetRelationship() = %q, %v, %v", target, ok, err)
	}
	if target != "r/doc:parent@1" {
		t.Errorf("target = %q, want r/doc:parent@1", target)
	}

	children, err := b.ChildrenOf(ctx, "r/doc:parent@1", "parent")
	if err != nil {
		t.Fatalf("ChildrenOf() error = %v", err)
	}
	if len(children) != 1 || children[0] != "r/doc:child" {
		t.Errorf("children = %v, want [r/doc:child]", children)
	}
}

func TestMemoryBackend_PutRelationshipDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	if err := b.PutRelationship(ctx, "r/doc:child", "parent", "r/doc:parent@1"); err != nil {
		t.Fatalf("PutRelationship() error = %v", err)
	}
	err := b.PutRelationship(ctx, "r/doc:child", "parent", "r/doc:other@1")
	if !errors.Is(err, errors.ErrAlreadyExists) {
		t.Errorf("PutRelationship() duplicate error = %v, want ErrAlreadyExists", err)
	}
}
