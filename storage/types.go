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

// Package storage provides insert-only, versioned record storage for the
// page core, plus the parent/child relationship table that backs
// provenance queries.
//
// Each registered page type owns one table, named after
// descriptor.TableDescriptor.TableName, keyed by (uri_prefix, version).
// Rows are never updated in place: a new revision is always a new
// version.
package storage

import (
	"context"
	"time"
)

// Row is one stored, serialized page revision.
type Row struct {
	URIPrefix string
	Version   uint64
	Valid     bool
	// Fields holds the storage-representation values produced by
	// core/serialize, keyed by field name.
	Fields    map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter is a caller-supplied predicate over a table's rows, expressed in
// two equivalent forms so that either backend can apply it natively: an
// in-memory predicate for MemoryBackend, and a parameterized SQL fragment
// for PostgresBackend. core/query builds these from column descriptors.
type Filter struct {
	// Match evaluates the filter against a row's deserialized field map.
	Match func(fields map[string]interface{}) bool

	// SQLFragment returns a WHERE-clause fragment (e.g. "title = $2") and
	// its positional arguments, given the next free placeholder index.
	SQLFragment func(argOffset int) (fragment string, args []interface{})
}

// Backend is the storage contract C3 requires: insert-only record write,
// primary-key read, latest-version read, validity mutation, filtered
// query, and the parent/child relationship table.
type Backend interface {
	// Store inserts a new row. Fails with errors.ErrAlreadyExists if a row
	// for (table, row.URIPrefix, row.Version) already exists; existing
	// rows are never overwritten.
	Store(ctx context.Context, table string, row Row) error

	// Get returns the row for the exact (uriPrefix, version). Fails with
	// errors.ErrNotFound if absent, or if present but invalid and
	// ignoreValidity is false.
	Get(ctx context.Context, table, uriPrefix string, version uint64, ignoreValidity bool) (Row, error)

	// GetLatestRow returns the highest-versioned row for uriPrefix. When
	// ignoreValidity is false, invalid rows are skipped; fails with
	// errors.ErrNotFound if no qualifying row exists.
	GetLatestRow(ctx context.Context, table, uriPrefix string, ignoreValidity bool) (Row, error)

	// MarkInvalid sets valid = false on the exact (uriPrefix, version)
	// row. Returns whether that row exists (true also when it was already
	// invalid); never errors on a missing row.
	MarkInvalid(ctx context.Context, table, uriPrefix string, version uint64) (bool, error)

	// MarkInvalidByPrefix sets valid = false on every row with uriPrefix,
	// across all versions, returning the number of rows affected.
	MarkInvalidByPrefix(ctx context.Context, table, uriPrefix string) (int64, error)

	// Find returns every valid row in table matching all of filters,
	// ANDed together.
	Find(ctx context.Context, table string, filters []Filter) ([]Row, error)

	// PutRelationship records a (sourceURI, relationshipType) -> targetURI
	// edge. Fails with errors.ErrAlreadyExists if the composite key is
	// already recorded.
	PutRelationship(ctx context.Context, sourceURI, relationshipType, targetURI string) error

	// GetRelationship returns the target of a (sourceURI, relationshipType)
	// edge, or ok=false if none is recorded.
	GetRelationship(ctx context.Context, sourceURI, relationshipType string) (targetURI string, ok bool, err error)

	// ChildrenOf returns every sourceURI recorded against targetURI under
	// relationshipType.
	ChildrenOf(ctx context.Context, targetURI, relationshipType string) ([]string, error)

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend's resources.
	Close() error
}
