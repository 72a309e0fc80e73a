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

// Package pageuri implements the PageURI identifier: a four-part
// root/type:id@version address for a page, with "latest" modeled as its
// own variant rather than a sentinel integer.
package pageuri

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pagecore/pagecore/pkg/errors"
)

// Version is either a fixed positive integer or the "latest" variant,
// meaning "whichever version is newest at read time".
type Version struct {
	value    uint64
	isLatest bool
}

// Latest returns the "latest" version variant.
func Latest() Version {
	return Version{isLatest: true}
}

// Exact returns a fixed version. Callers must ensure v > 0 before a page
// carrying it is stored; the zero value is only meaningful in requests.
func Exact(v uint64) Version {
	return Version{value: v}
}

// IsLatest reports whether this is the "latest" variant.
func (v Version) IsLatest() bool {
	return v.isLatest
}

// Uint64 returns the fixed version number and true, or (0, false) if this
// is the "latest" variant.
func (v Version) Uint64() (uint64, bool) {
	if v.isLatest {
		return 0, false
	}
	return v.value, true
}

// Next returns the version one above this one. Panics if called on the
// "latest" variant; callers must resolve latest to a concrete number
// first.
func (v Version) Next() Version {
	if v.isLatest {
		panic("pageuri: Next called on latest version")
	}
	return Exact(v.value + 1)
}

// String renders the version's wire form: the decimal value, or the
// empty string for "latest".
func (v Version) String() string {
	if v.isLatest {
		return ""
	}
	return strconv.FormatUint(v.value, 10)
}

// MarshalJSON encodes the version as its wire-form string.
func (v Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON decodes a version from its wire-form string; an empty
// string decodes to Latest().
func (v *Version) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*v = Latest()
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return errors.ErrBadURI.WithDetail("version", s)
	}
	*v = Exact(n)
	return nil
}

// PageURI is a four-part identifier: root/type:id@version.
type PageURI struct {
	Root    string
	Type    string
	ID      string
	Version Version
}

// New constructs a PageURI from its parts.
func New(root, typ, id string, version Version) PageURI {
	return PageURI{Root: root, Type: typ, ID: id, Version: version}
}

// Prefix returns the "root/type:id" portion shared by every version of
// the same entity; this is the storage primary-key prefix.
func (u PageURI) Prefix() string {
	return u.Root + "/" + u.Type + ":" + u.ID
}

// String renders the canonical wire form: root/type:id@version, with an
// empty version suffix for "latest".
func (u PageURI) String() string {
	var b strings.Builder
	b.WriteString(u.Prefix())
	b.WriteByte('@')
	b.WriteString(u.Version.String())
	return b.String()
}

// Equal reports whether two URIs have identical components. Two "latest"
// URIs for the same prefix compare equal, per the wire-form contract:
// "latest" denotes "whichever is newest at read time", not a specific
// row.
func (u PageURI) Equal(other PageURI) bool {
	return u.Root == other.Root &&
		u.Type == other.Type &&
		u.ID == other.ID &&
		u.Version.IsLatest() == other.Version.IsLatest() &&
		(u.Version.IsLatest() || u.Version.value == other.Version.value)
}

// MarshalJSON encodes the URI as its canonical wire-form string.
func (u PageURI) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON decodes a URI from its canonical wire-form string.
func (u *PageURI) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// Parse parses a canonical PageURI string: root/type:id@version. The
// version suffix may be omitted entirely (equivalent to an empty,
// "latest" suffix). id must not contain '@' or ':'.
func Parse(s string) (PageURI, error) {
	root, rest, ok := strings.Cut(s, "/")
	if !ok || root == "" {
		return PageURI{}, errors.ErrBadURI.WithDetail("uri", s)
	}

	typeAndID, versionPart, hasVersion := strings.Cut(rest, "@")
	typ, id, ok := strings.Cut(typeAndID, ":")
	if !ok || typ == "" || id == "" {
		return PageURI{}, errors.ErrBadURI.WithDetail("uri", s)
	}
	if strings.ContainsAny(id, "@:") {
		return PageURI{}, errors.ErrBadURI.WithDetail("uri", s).WithDetail("reason", "id contains reserved character")
	}

	if !hasVersion || versionPart == "" {
		return New(root, typ, id, Latest()), nil
	}

	v, err := strconv.ParseUint(versionPart, 10, 64)
	if err != nil {
		return PageURI{}, errors.ErrBadURI.WithDetail("uri", s).WithDetail("reason", "version is not a non-negative integer").Wrap(err)
	}
	return New(root, typ, id, Exact(v)), nil
}

// MustParse is Parse but panics on error; intended for literal URIs in
// test fixtures and static registration code.
func MustParse(s string) PageURI {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}
