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

// Package descriptor derives a persistent schema from explicit page type
// descriptors and keeps a process-wide registry of one table per type.
//
// A concrete page type is declared once, as a Go value (PageTypeDescriptor),
// rather than reflected over at runtime; the registry only ever consumes
// descriptors that callers hand it.
package descriptor

import (
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"

	"github.com/pagecore/pagecore/observability/logging"
	"github.com/pagecore/pagecore/pkg/errors"
)

// SemanticType is the closed set of field types a page field may declare.
type SemanticType string

const (
	TypeString    SemanticType = "string"
	TypeInteger   SemanticType = "integer"
	TypeFloat     SemanticType = "float"
	TypeBool      SemanticType = "bool"
	TypeDecimal   SemanticType = "decimal"
	TypeTimestamp SemanticType = "timestamp"
	TypeURI       SemanticType = "uri"
	TypeSequence  SemanticType = "sequence"
	TypeMapping   SemanticType = "mapping"
	TypeRecord    SemanticType = "record"
)

// StorageColumn is the storage representation a semantic type maps to.
type StorageColumn string

const (
	ColumnText      StorageColumn = "text"
	ColumnLargeText StorageColumn = "large_text"
	ColumnBigInt    StorageColumn = "bigint"
	ColumnDouble    StorageColumn = "double"
	ColumnBoolean   StorageColumn = "boolean"
	ColumnNumeric   StorageColumn = "numeric"
	ColumnTimestamp StorageColumn = "timestamptz"
	ColumnJSON      StorageColumn = "jsonb"
)

// FieldDescriptor declares one named field of a page type.
type FieldDescriptor struct {
	Name string
	Type SemanticType
	// Nullable marks the field as optional<T>.
	Nullable bool
	// LargeText hints that a string field should use a large-text column.
	LargeText bool
	// Element is the element descriptor for a TypeSequence field.
	Element *FieldDescriptor
	// RecordType names the nested PageTypeDescriptor for a TypeRecord field,
	// used by core/serialize to recursively validate nested values.
	RecordType string
}

// Column returns the storage column this field maps to.
func (f FieldDescriptor) Column() StorageColumn {
	switch f.Type {
	case TypeString:
		if f.LargeText {
			return ColumnLargeText
		}
		return ColumnText
	case TypeInteger:
		return ColumnBigInt
	case TypeFloat:
		return ColumnDouble
	case TypeBool:
		return ColumnBoolean
	case TypeDecimal:
		return ColumnNumeric
	case TypeTimestamp:
		return ColumnTimestamp
	case TypeURI:
		return ColumnText
	case TypeSequence, TypeMapping, TypeRecord:
		return ColumnJSON
	default:
		return ColumnText
	}
}

// PageTypeDescriptor declares the fixed field set of a concrete page type.
// uri and parent_uri are universal and are not listed here; Fields holds
// only the type's own declared fields.
type PageTypeDescriptor struct {
	Name   string
	Fields []FieldDescriptor
}

// signature summarizes the field list deterministically, so that
// re-registration with a differing shape can be detected.
func (d PageTypeDescriptor) signature() string {
	var b strings.Builder
	b.WriteString(d.Name)
	for _, f := range d.Fields {
		fmt.Fprintf(&b, "|%s:%s:%v:%v:%s", f.Name, f.Type, f.Nullable, f.LargeText, f.RecordType)
	}
	sum := blake2b.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// TableDescriptor is the opaque handle Storage and Query use to address a
// registered page type's table.
type TableDescriptor struct {
	// TableName is "<type_lowercased>_pages".
	TableName string
	Type      PageTypeDescriptor
	Signature string
}

// Registry is process-wide state keyed by page type name. All descriptors
// are expected to register during a single start-up phase; Freeze then
// rejects new registrations. Lookups (TableFor, Has) take a read lock
// both before and after Freeze; they are not lock-free.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*TableDescriptor
	frozen atomic.Bool
	log    logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logging.Logger) *Registry {
	return &Registry{
		tables: make(map[string]*TableDescriptor),
		log:    log,
	}
}

// Freeze rejects any registration made after this call. Intended to be
// called once, by the Router, just before serving its first request.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

// EnsureRegistered idempotently registers a page type, creating its table
// descriptor if missing. On re-registration with a differing signature,
// the existing table descriptor is kept and a warning is logged;
// migrations of an already-registered type are out of scope here.
func (r *Registry) EnsureRegistered(typ PageTypeDescriptor) (*TableDescriptor, error) {
	r.mu.RLock()
	existing, ok := r.tables[typ.Name]
	r.mu.RUnlock()

	sig := typ.signature()
	if ok {
		if existing.Signature != sig && r.log != nil {
			r.log.Warn(nil, "page type re-registered with a differing schema signature",
				logging.String("type", typ.Name),
				logging.String("existing_signature", existing.Signature),
				logging.String("new_signature", sig),
			)
		}
		return existing, nil
	}

	if r.frozen.Load() {
		return nil, errors.ErrRegistryClosed.WithDetail("type", typ.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock: another goroutine may have won the race.
	if existing, ok := r.tables[typ.Name]; ok {
		return existing, nil
	}

	table := &TableDescriptor{
		TableName: strings.ToLower(typ.Name) + "_pages",
		Type:      typ,
		Signature: sig,
	}
	r.tables[typ.Name] = table
	return table, nil
}

// TableFor returns the table descriptor for a registered type. Fails with
// ErrNotRegistered if the type was never registered.
func (r *Registry) TableFor(typeName string) (*TableDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.tables[typeName]
	if !ok {
		return nil, errors.ErrNotRegistered.WithDetail("type", typeName)
	}
	return table, nil
}

// Has reports whether a type is registered, without erroring.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tables[typeName]
	return ok
}
