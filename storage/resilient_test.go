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
	"time"

	"github.com/pagecore/pagecore/pkg/errors"
)

// flakyBackend wraps a MemoryBackend and fails Get with a given error
// for the first failUntil calls, then delegates normally.
type flakyBackend struct {
	*MemoryBackend
	failErr   error
	failUntil int
	calls     int
}

func (f *flakyBackend) Get(ctx context.Context, table, uriPrefix string, version uint64, ignoreValidity bool) (Row, error) {
	f.calls++
	if f.calls <= f.failUntil {
		return Row{}, f.failErr
	}
	return f.MemoryBackend.Get(ctx, table, uriPrefix, version, ignoreValidity)
}

func TestResilient_RetriesOnConnectionError(t *testing.T) {
	backend := &flakyBackend{
		MemoryBackend: NewMemoryBackend(),
		failErr:       errors.ErrStorageConnection,
		failUntil:     2,
	}
	row := Row{URIPrefix: "r/doc:a", Version: 1, Fields: map[string]interface{}{"title": "hello"}}
	if err := backend.MemoryBackend.Store(context.Background(), "doc_pages", row); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	retry := DefaultStorageRetryConfig()
	retry.Backoff = func(attempt int) time.Duration { return 0 }
	r := NewResilient(backend, retry, nil)

	got, err := r.Get(context.Background(), "doc_pages", "r/doc:a", 1, false)
	if err != nil {
		t.Fatalf("Get() error = %v, want eventual success after retries", err)
	}
	if got.Fields["title"] != "hello" {
		t.Errorf("Fields[title] = %v, want hello", got.Fields["title"])
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3 (2 failures + 1 success)", backend.calls)
	}
}

func TestResilient_DoesNotRetryBusinessErrors(t *testing.T) {
	backend := &flakyBackend{
		MemoryBackend: NewMemoryBackend(),
		failErr:       errors.ErrNotFound,
		failUntil:     100,
	}
	r := NewResilient(backend, nil, nil)

	_, err := r.Get(context.Background(), "doc_pages", "r/doc:missing", 1, false)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if backend.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on a business error)", backend.calls)
	}
}

func TestResilient_PingBypassesCircuitBreaker(t *testing.T) {
	r := NewResilient(NewMemoryBackend(), nil, nil)
	if err := r.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v, want nil", err)
	}
}
