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

// Package page defines the in-memory representation of a page: the
// universal uri/parent_uri fields plus a type's own declared fields.
package page

import (
	"time"

	"github.com/pagecore/pagecore/core/pageuri"
)

// Page is a typed, versioned record. Type is the page's registered type
// name (matching a descriptor.PageTypeDescriptor.Name); Fields holds only
// the type's own declared field values, keyed by field name. uri and
// parent_uri are first-class, not part of Fields.
type Page struct {
	Type      string                 `json:"type"`
	URI       pageuri.PageURI        `json:"uri"`
	ParentURI *pageuri.PageURI       `json:"parent_uri,omitempty"`
	Valid     bool                   `json:"valid"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Fields    map[string]interface{} `json:"fields"`
}

// New constructs a page with Valid defaulted to true, as every newly
// created record starts out valid.
func New(typ string, uri pageuri.PageURI, parentURI *pageuri.PageURI, fields map[string]interface{}) *Page {
	return &Page{
		Type:      typ,
		URI:       uri,
		ParentURI: parentURI,
		Valid:     true,
		Fields:    fields,
	}
}

// Clone returns a deep-enough copy safe for a caller to mutate without
// affecting the original: the Fields map is copied one level deep.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	fields := make(map[string]interface{}, len(p.Fields))
	for k, v := range p.Fields {
		fields[k] = v
	}
	var parent *pageuri.PageURI
	if p.ParentURI != nil {
		u := *p.ParentURI
		parent = &u
	}
	return &Page{
		Type:      p.Type,
		URI:       p.URI,
		ParentURI: parent,
		Valid:     p.Valid,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Fields:    fields,
	}
}
