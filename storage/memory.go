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
	"sync"
	"time"

	"github.com/pagecore/pagecore/pkg/errors"
)

type memoryKey struct {
	uriPrefix string
	version   uint64
}

// MemoryBackend is an in-memory Backend implementation.
//
// Suitable for testing, development, and single-instance deployments.
// Data is not persisted and is lost when the process exits.
type MemoryBackend struct {
	mu            sync.RWMutex
	tables        map[string]map[memoryKey]Row
	relationships map[string]string // "sourceURI|relationshipType" -> targetURI
}

// NewMemoryBackend creates a new in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		tables:        make(map[string]map[memoryKey]Row),
		relationships: make(map[string]string),
	}
}

func (m *MemoryBackend) table(name string) map[memoryKey]Row {
	t, ok := m.tables[name]
	if !ok {
		t = make(map[memoryKey]Row)
		m.tables[name] = t
	}
	return t
}

// Store implements Backend.
func (m *MemoryBackend) Store(ctx context.Context, table string, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	key := memoryKey{uriPrefix: row.URIPrefix, version: row.Version}
	if _, exists := t[key]; exists {
		return errors.ErrAlreadyExists.WithDetail("table", table).WithDetail("uri_prefix", row.URIPrefix).WithDetail("version", row.Version)
	}

	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now
	if !row.Valid {
		row.Valid = true
	}
	t[key] = row
	return nil
}

// Get implements Backend.
func (m *MemoryBackend) Get(ctx context.Context, table, uriPrefix string, version uint64, ignoreValidity bool) (Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.tables[table][memoryKey{uriPrefix: uriPrefix, version: version}]
	if !ok || (!row.Valid && !ignoreValidity) {
		return Row{}, errors.ErrNotFound.WithDetail("table", table).WithDetail("uri_prefix", uriPrefix).WithDetail("version", version)
	}
	return row, nil
}

// GetLatestRow implements Backend.
func (m *MemoryBackend) GetLatestRow(ctx context.Context, table, uriPrefix string, ignoreValidity bool) (Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best Row
	found := false
	for key, row := range m.tables[table] {
		if key.uriPrefix != uriPrefix {
			continue
		}
		if !row.Valid && !ignoreValidity {
			continue
		}
		if !found || row.Version > best.Version {
			best = row
			found = true
		}
	}
	if !found {
		return Row{}, errors.ErrNotFound.WithDetail("table", table).WithDetail("uri_prefix", uriPrefix)
	}
	return best, nil
}

// MarkInvalid implements Backend.
func (m *MemoryBackend) MarkInvalid(ctx context.Context, table, uriPrefix string, version uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{uriPrefix: uriPrefix, version: version}
	row, ok := m.tables[table][key]
	if !ok {
		return false, nil
	}
	if !row.Valid {
		return true, nil
	}
	row.Valid = false
	row.UpdatedAt = time.Now()
	m.tables[table][key] = row
	return true, nil
}

// MarkInvalidByPrefix implements Backend.
func (m *MemoryBackend) MarkInvalidByPrefix(ctx context.Context, table, uriPrefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key, row := range m.tables[table] {
		if key.uriPrefix != uriPrefix || !row.Valid {
			continue
		}
		row.Valid = false
		row.UpdatedAt = time.Now()
		m.tables[table][key] = row
		count++
	}
	return count, nil
}

// Find implements Backend.
func (m *MemoryBackend) Find(ctx context.Context, table string, filters []Filter) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Row
rows:
	for _, row := range m.tables[table] {
		if !row.Valid {
			continue
		}
		for _, f := range filters {
			if f.Match != nil && !f.Match(row.Fields) {
				continue rows
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func relationshipKey(sourceURI, relationshipType string) string {
	return sourceURI + "|" + relationshipType
}

// PutRelationship implements Backend.
func (m *MemoryBackend) PutRelationship(ctx context.Context, sourceURI, relationshipType, targetURI string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := relationshipKey(sourceURI, relationshipType)
	if _, exists := m.relationships[key]; exists {
		return errors.ErrAlreadyExists.WithDetail("source_uri", sourceURI).WithDetail("relationship_type", relationshipType)
	}
	m.relationships[key] = targetURI
	return nil
}

// GetRelationship implements Backend.
func (m *MemoryBackend) GetRelationship(ctx context.Context, sourceURI, relationshipType string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target, ok := m.relationships[relationshipKey(sourceURI, relationshipType)]
	return target, ok, nil
}

// ChildrenOf implements Backend.
func (m *MemoryBackend) ChildrenOf(ctx context.Context, targetURI, relationshipType string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var children []string
	suffix := "|" + relationshipType
	for key, target := range m.relationships {
		if target != targetURI || len(key) <= len(suffix) {
			continue
		}
		if key[len(key)-len(suffix):] != suffix {
			continue
		}
		children = append(children, key[:len(key)-len(suffix)])
	}
	return children, nil
}

// Ping implements Backend.
func (m *MemoryBackend) Ping(ctx context.Context) error {
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	return nil
}
