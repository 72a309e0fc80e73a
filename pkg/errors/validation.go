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

package errors

// Validation errors for malformed requests, caught at the boundary
// (server/handlers.go decoding a request body) rather than deep in
// page-core logic — contrast ErrValidatorFailed in validator.go, which
// is a registered validator rejecting an otherwise well-formed page.
var (
	// ErrInvalidInput indicates a request body failed to decode, as in
	// server/handlers.go's handleInvoke.
	ErrInvalidInput = &Error{
		Category: CategoryValidation,
		Code:     "INVALID_INPUT",
		Message:  "invalid input provided",
	}

	// ErrMissingField indicates core/serialize's Serialize or Deserialize
	// found a non-nullable field that is absent or nil in its input map.
	ErrMissingField = &Error{
		Category: CategoryValidation,
		Code:     "MISSING_FIELD",
		Message:  "required field is missing",
	}

	// ErrInvalidFormat indicates a value parsed but didn't match the
	// expected shape. A malformed page URI is reported as ErrBadURI
	// instead.
	ErrInvalidFormat = &Error{
		Category: CategoryValidation,
		Code:     "INVALID_FORMAT",
		Message:  "invalid format",
	}

	// ErrInvalidValue is cache.Cache and core/toolkit's catch-all for a
	// well-formed but semantically wrong argument: an unversioned URI
	// passed to Cache.Get, an empty tool name, a field that failed
	// core/serialize's type conversion.
	ErrInvalidValue = &Error{
		Category: CategoryValidation,
		Code:     "INVALID_VALUE",
		Message:  "invalid value",
	}

	// ErrOutOfRange indicates a numeric argument — a toolkit.pagination
	// page size or offset — fell outside its allowed bounds.
	ErrOutOfRange = &Error{
		Category: CategoryValidation,
		Code:     "OUT_OF_RANGE",
		Message:  "value out of valid range",
	}
)
