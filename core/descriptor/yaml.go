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

package descriptor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlFieldDescriptor mirrors FieldDescriptor in a YAML-friendly shape.
type yamlFieldDescriptor struct {
	Name       string               `yaml:"name"`
	Type       SemanticType         `yaml:"type"`
	Nullable   bool                 `yaml:"nullable"`
	LargeText  bool                 `yaml:"large_text"`
	Element    *yamlFieldDescriptor `yaml:"element,omitempty"`
	RecordType string               `yaml:"record_type,omitempty"`
}

func (f yamlFieldDescriptor) toFieldDescriptor() FieldDescriptor {
	fd := FieldDescriptor{
		Name:       f.Name,
		Type:       f.Type,
		Nullable:   f.Nullable,
		LargeText:  f.LargeText,
		RecordType: f.RecordType,
	}
	if f.Element != nil {
		elem := f.Element.toFieldDescriptor()
		fd.Element = &elem
	}
	return fd
}

// yamlPageType mirrors PageTypeDescriptor for file-based declaration.
type yamlPageType struct {
	Name   string                `yaml:"name"`
	Fields []yamlFieldDescriptor `yaml:"fields"`
}

// LoadDescriptorsFromFile reads a YAML file declaring one or more page
// types and returns their descriptors. This exists for deployments that
// prefer to declare page shapes out-of-process rather than compiling a Go
// descriptor literal per type; both forms produce an identical
// PageTypeDescriptor.
//
// File shape:
//
//	page_types:
//	  - name: doc
//	    fields:
//	      - name: title
//	        type: string
//	      - name: body
//	        type: string
//	        large_text: true
func LoadDescriptorsFromFile(path string) ([]PageTypeDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file: %w", err)
	}

	var doc struct {
		PageTypes []yamlPageType `yaml:"page_types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor file: %w", err)
	}

	descs := make([]PageTypeDescriptor, 0, len(doc.PageTypes))
	for _, pt := range doc.PageTypes {
		fields := make([]FieldDescriptor, 0, len(pt.Fields))
		for _, f := range pt.Fields {
			fields = append(fields, f.toFieldDescriptor())
		}
		descs = append(descs, PageTypeDescriptor{Name: pt.Name, Fields: fields})
	}
	return descs, nil
}
