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

// Package provenance validates parent/child links at write time and
// answers lineage queries at read time, on top of storage.Backend's
// relationship table.
package provenance

import (
	"context"

	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/pageuri"
	"github.com/pagecore/pagecore/pkg/errors"
	"github.com/pagecore/pagecore/storage"
)

// RelationshipType names the single edge kind this package records:
// child -> parent.
const RelationshipType = "parent"

const relationshipType = RelationshipType

// Tracker validates and records parent/child links and answers lineage
// queries, scoped to one registry (for type->table lookup) and one
// storage backend.
type Tracker struct {
	registry *descriptor.Registry
	backend  storage.Backend
}

// NewTracker constructs a Tracker over registry and backend.
func NewTracker(registry *descriptor.Registry, backend storage.Backend) *Tracker {
	return &Tracker{registry: registry, backend: backend}
}

// ValidateParent runs the five provenance checks spec.md §4.4 requires
// for storing child at childURI with the given (possibly nil) parent.
// A nil parentURI means the page has no effective parent and no checks
// apply.
func (t *Tracker) ValidateParent(ctx context.Context, childURI pageuri.PageURI, parentURI *pageuri.PageURI) error {
	if parentURI == nil {
		return nil
	}

	if childURI.Type == parentURI.Type {
		return errors.ErrSameTypeParent.WithDetail("type", childURI.Type)
	}

	if parentURI.Version.IsLatest() {
		return errors.ErrUnversionedParent.WithDetail("parent_uri", parentURI.String())
	}

	if _, err := t.getRow(ctx, *parentURI, true); err != nil {
		return errors.ErrMissingParent.WithDetail("parent_uri", parentURI.String())
	}

	if exists, err := t.prefixExists(ctx, childURI); err != nil {
		return err
	} else if exists {
		return errors.ErrChildExists.WithDetail("uri", childURI.String())
	}

	if cyclic, err := t.introducesCycle(ctx, childURI, *parentURI); err != nil {
		return err
	} else if cyclic {
		return errors.ErrCycle.WithDetail("uri", childURI.String()).WithDetail("parent_uri", parentURI.String())
	}

	return nil
}

// RecordParent records the child -> parent edge. Call only after
// ValidateParent has succeeded.
func (t *Tracker) RecordParent(ctx context.Context, childURI, parentURI pageuri.PageURI) error {
	return t.backend.PutRelationship(ctx, childURI.String(), relationshipType, parentURI.String())
}

// ChildrenOf returns every page whose parent link points at parentURI,
// regardless of type.
func (t *Tracker) ChildrenOf(ctx context.Context, parentURI pageuri.PageURI) ([]pageuri.PageURI, error) {
	raw, err := t.backend.ChildrenOf(ctx, parentURI.String(), relationshipType)
	if err != nil {
		return nil, err
	}
	out := make([]pageuri.PageURI, 0, len(raw))
	for _, s := range raw {
		u, err := pageuri.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// Lineage returns the chain from the root ancestor down to uri,
// inclusive, in root-to-leaf order. Intermediate URIs whose backing row
// no longer exists are skipped silently.
func (t *Tracker) Lineage(ctx context.Context, uri pageuri.PageURI) ([]pageuri.PageURI, error) {
	chain := []pageuri.PageURI{uri}

	current := uri
	for {
		target, ok, err := t.backend.GetRelationship(ctx, current.String(), relationshipType)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		parent, err := pageuri.Parse(target)
		if err != nil {
			break
		}
		chain = append(chain, parent)
		current = parent
	}

	// chain is leaf-to-root; reverse it, dropping any entry whose row no
	// longer exists.
	out := make([]pageuri.PageURI, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		candidate := chain[i]
		if _, err := t.getRow(ctx, candidate, true); err != nil {
			continue
		}
		out = append(out, candidate)
	}
	return out, nil
}

func (t *Tracker) getRow(ctx context.Context, uri pageuri.PageURI, ignoreValidity bool) (storage.Row, error) {
	table, err := t.registry.TableFor(uri.Type)
	if err != nil {
		return storage.Row{}, err
	}
	if v, ok := uri.Version.Uint64(); ok {
		return t.backend.Get(ctx, table.TableName, uri.Prefix(), v, ignoreValidity)
	}
	return t.backend.GetLatestRow(ctx, table.TableName, uri.Prefix(), ignoreValidity)
}

func (t *Tracker) prefixExists(ctx context.Context, uri pageuri.PageURI) (bool, error) {
	table, err := t.registry.TableFor(uri.Type)
	if err != nil {
		// Type not yet registered: nothing can exist under it.
		return false, nil
	}
	_, err = t.backend.GetLatestRow(ctx, table.TableName, uri.Prefix(), true)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// introducesCycle reports whether making childURI a descendant of
// parentURI would create a cycle, by walking the existing parent chain
// upward from parentURI and checking whether it ever reaches childURI.
func (t *Tracker) introducesCycle(ctx context.Context, childURI, parentURI pageuri.PageURI) (bool, error) {
	visited := map[string]bool{childURI.String(): true}
	current := parentURI
	for {
		if visited[current.String()] {
			return true, nil
		}
		visited[current.String()] = true

		target, ok, err := t.backend.GetRelationship(ctx, current.String(), relationshipType)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		next, err := pageuri.Parse(target)
		if err != nil {
			return false, nil
		}
		current = next
	}
}
