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

// Package serialize round-trips page field values to and from their
// storage representation, per the mapping a descriptor.PageTypeDescriptor
// declares.
package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/pageuri"
	"github.com/pagecore/pagecore/pkg/errors"
)

// Resolver looks up a nested record type's descriptor by name, so that
// TypeRecord fields can be serialized/deserialized recursively. It is
// satisfied by (*descriptor.Registry).TableFor composed with a type
// lookup; callers typically pass a small adapter.
type Resolver func(typeName string) (descriptor.PageTypeDescriptor, bool)

// Serialize converts a page's field map to its storage representation,
// per desc's field list. PageURI fields become canonical strings; nested
// records, sequences, and mappings recurse element-wise; primitives pass
// through unchanged.
func Serialize(desc descriptor.PageTypeDescriptor, fields map[string]interface{}, resolve Resolver) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(desc.Fields))
	for _, f := range desc.Fields {
		v, present := fields[f.Name]
		if !present || v == nil {
			if !f.Nullable {
				return nil, errors.ErrMissingField.WithDetail("field", f.Name)
			}
			out[f.Name] = nil
			continue
		}

		sv, err := serializeValue(f, v, resolve)
		if err != nil {
			return nil, errors.ErrInvalidValue.WithDetail("field", f.Name).Wrap(err)
		}
		out[f.Name] = sv
	}
	return out, nil
}

func serializeValue(f descriptor.FieldDescriptor, v interface{}, resolve Resolver) (interface{}, error) {
	switch f.Type {
	case descriptor.TypeURI:
		u, ok := v.(pageuri.PageURI)
		if !ok {
			return nil, fmt.Errorf("field %q: expected pageuri.PageURI, got %T", f.Name, v)
		}
		return u.String(), nil

	case descriptor.TypeRecord:
		nested, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q: expected map[string]interface{}, got %T", f.Name, v)
		}
		nestedDesc, ok := resolveRecordType(f, resolve)
		if !ok {
			return nil, fmt.Errorf("field %q: unknown record type %q", f.Name, f.RecordType)
		}
		serialized, err := Serialize(nestedDesc, nested, resolve)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(serialized)
		if err != nil {
			return nil, err
		}
		return string(data), nil

	case descriptor.TypeSequence:
		slice, ok := asSlice(v)
		if !ok {
			return nil, fmt.Errorf("field %q: expected a sequence, got %T", f.Name, v)
		}
		if f.Element == nil {
			return nil, fmt.Errorf("field %q: sequence field missing element descriptor", f.Name)
		}
		out := make([]interface{}, len(slice))
		for i, elem := range slice {
			sv, err := serializeValue(*f.Element, elem, resolve)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return string(data), nil

	case descriptor.TypeMapping:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(data), nil

	default:
		// string, integer, float, bool, decimal, timestamp pass through;
		// the storage backend is responsible for the final wire encoding.
		return v, nil
	}
}

// Deserialize reconstructs a page's field map from its storage
// representation, the inverse of Serialize.
func Deserialize(desc descriptor.PageTypeDescriptor, stored map[string]interface{}, resolve Resolver) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(desc.Fields))
	for _, f := range desc.Fields {
		v, present := stored[f.Name]
		if !present || v == nil {
			if !f.Nullable {
				return nil, errors.ErrMissingField.WithDetail("field", f.Name)
			}
			out[f.Name] = nil
			continue
		}

		dv, err := deserializeValue(f, v, resolve)
		if err != nil {
			return nil, errors.ErrInvalidValue.WithDetail("field", f.Name).Wrap(err)
		}
		out[f.Name] = dv
	}
	return out, nil
}

func deserializeValue(f descriptor.FieldDescriptor, v interface{}, resolve Resolver) (interface{}, error) {
	switch f.Type {
	case descriptor.TypeURI:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected string, got %T", f.Name, v)
		}
		return pageuri.Parse(s)

	case descriptor.TypeRecord:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected JSON string, got %T", f.Name, v)
		}
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, err
		}
		nestedDesc, ok := resolveRecordType(f, resolve)
		if !ok {
			return nil, fmt.Errorf("field %q: unknown record type %q", f.Name, f.RecordType)
		}
		return Deserialize(nestedDesc, raw, resolve)

	case descriptor.TypeSequence:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected JSON string, got %T", f.Name, v)
		}
		var raw []interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, err
		}
		if f.Element == nil {
			return nil, fmt.Errorf("field %q: sequence field missing element descriptor", f.Name)
		}
		out := make([]interface{}, len(raw))
		for i, elem := range raw {
			dv, err := deserializeValue(*f.Element, elem, resolve)
			if err != nil {
				return nil, err
			}
			out[i] = dv
		}
		return out, nil

	case descriptor.TypeMapping:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("field %q: expected JSON string, got %T", f.Name, v)
		}
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, err
		}
		return raw, nil

	default:
		return v, nil
	}
}

func resolveRecordType(f descriptor.FieldDescriptor, resolve Resolver) (descriptor.PageTypeDescriptor, bool) {
	if resolve == nil || f.RecordType == "" {
		return descriptor.PageTypeDescriptor{}, false
	}
	return resolve(f.RecordType)
}

func asSlice(v interface{}) ([]interface{}, bool) {
	switch s := v.(type) {
	case []interface{}:
		return s, true
	default:
		return nil, false
	}
}
