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

// Router and registry errors
var (
	// ErrNoHandler indicates no handler is registered for a page type.
	ErrNoHandler = &Error{
		Category: CategoryRouter,
		Code:     "NO_HANDLER",
		Message:  "no handler registered for page type",
	}

	// ErrAlreadyRegistered indicates a page type or tool name was
	// registered more than once.
	ErrAlreadyRegistered = &Error{
		Category: CategoryRouter,
		Code:     "ALREADY_REGISTERED",
		Message:  "already registered",
	}

	// ErrNotRegistered indicates a lookup against an unregistered page
	// type or tool name.
	ErrNotRegistered = &Error{
		Category: CategoryRouter,
		Code:     "NOT_REGISTERED",
		Message:  "not registered",
	}

	// ErrBadURI indicates a PageURI string failed to parse.
	ErrBadURI = &Error{
		Category: CategoryRouter,
		Code:     "BAD_URI",
		Message:  "malformed page URI",
	}

	// ErrRegistryClosed indicates a registration attempt after the
	// registry accepted its first lookup.
	ErrRegistryClosed = &Error{
		Category: CategoryRouter,
		Code:     "REGISTRY_CLOSED",
		Message:  "registry no longer accepts registrations",
	}

	// ErrVersionConflict indicates version allocation could not settle
	// on an unused version within the retry budget.
	ErrVersionConflict = &Error{
		Category: CategoryRouter,
		Code:     "VERSION_CONFLICT",
		Message:  "could not allocate a page version",
	}
)
