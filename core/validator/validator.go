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

// Package validator holds per-type page predicates and evaluates them on
// read, recovering from predicate panics and treating them as a failed
// validation rather than a crashed request.
package validator

import (
	"sync"

	"github.com/pagecore/pagecore/core/page"
	"github.com/pagecore/pagecore/observability/logging"
)

// Predicate decides whether a page of its registered type is still
// considered valid. It may perform I/O and may panic; a panic is treated
// as a false result.
type Predicate func(p *page.Page) bool

// Registry maps page type name to its registered Predicate.
type Registry struct {
	mu         sync.RWMutex
	predicates map[string]Predicate
	log        logging.Logger
}

// NewRegistry constructs an empty validator Registry. log may be nil.
func NewRegistry(log logging.Logger) *Registry {
	return &Registry{predicates: make(map[string]Predicate), log: log}
}

// Register installs predicate for typeName, replacing any predicate
// previously registered for that type.
func (r *Registry) Register(typeName string, predicate Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[typeName] = predicate
}

// HasAny reports whether at least one predicate is registered, across all
// types — used by the cache facade to decide whether ancestor propagation
// is worth the lineage fetch.
func (r *Registry) HasAny() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.predicates) > 0
}

// HasFor reports whether a predicate is registered for typeName.
func (r *Registry) HasFor(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.predicates[typeName]
	return ok
}

// IsValid evaluates the predicate registered for p.Type, if any.
//
// Returns true if no predicate is registered for p's type. Otherwise
// runs the predicate; if it panics, the panic is logged and the page is
// treated as invalid.
func (r *Registry) IsValid(p *page.Page) (valid bool) {
	r.mu.RLock()
	predicate, ok := r.predicates[p.Type]
	r.mu.RUnlock()
	if !ok {
		return true
	}

	defer func() {
		if rec := recover(); rec != nil {
			valid = false
			if r.log != nil {
				r.log.Error(nil, "validator predicate panicked",
					logging.String("type", p.Type),
					logging.String("uri", p.URI.String()),
					logging.Any("recovered", rec),
				)
			}
		}
	}()

	return predicate(p)
}
