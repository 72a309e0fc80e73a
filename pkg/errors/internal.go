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

// Internal errors, for failures that aren't the caller's fault: a bug
// in the page core itself, or a deployment that never finished wiring
// a required component.
var (
	// ErrInternal indicates the page core hit a condition its own
	// invariants should have prevented (e.g. a descriptor.Registry lookup
	// racing past its documented freeze point).
	ErrInternal = &Error{
		Category: CategoryInternal,
		Code:     "INTERNAL_ERROR",
		Message:  "internal page core error",
	}

	// ErrNotImplemented indicates a storage.Backend method or a tool's
	// Invoker that the deployment called is a stub that was never filled
	// in.
	ErrNotImplemented = &Error{
		Category: CategoryInternal,
		Code:     "NOT_IMPLEMENTED",
		Message:  "feature not implemented",
	}

	// ErrConfigurationError indicates config.Config (or a flag override
	// in cmd/pagecore) described a deployment that cannot start, such as
	// a storage backend with no DSN.
	ErrConfigurationError = &Error{
		Category: CategoryInternal,
		Code:     "CONFIGURATION_ERROR",
		Message:  "configuration error",
	}
)
