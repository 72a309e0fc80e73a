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

// Storage errors, returned by storage.Backend implementations
// (storage/memory.go, storage/postgres.go) and surfaced through
// cache.Cache and core/resilience's Retry/CircuitBreaker.
var (
	// ErrNotFound indicates a page row was not found in storage.Backend
	// for the requested URI prefix and version.
	ErrNotFound = &Error{
		Category: CategoryNotFound,
		Code:     "NOT_FOUND",
		Message:  "page not found in storage",
	}

	// ErrStorageConnection indicates the storage.Backend connection (the
	// Postgres pool, for storage/postgres.go) failed. storage/resilient.go
	// treats this as retryable.
	ErrStorageConnection = &Error{
		Category: CategoryStorage,
		Code:     "CONNECTION_ERROR",
		Message:  "storage backend connection failed",
	}

	// ErrStorageTimeout indicates a storage.Backend call exceeded its
	// deadline. storage/resilient.go treats this as retryable.
	ErrStorageTimeout = &Error{
		Category: CategoryStorage,
		Code:     "TIMEOUT",
		Message:  "storage backend operation timed out",
	}

	// ErrAlreadyExists indicates a page row (or a lineage edge, in
	// storage.Backend.RecordRelationship) already exists under the same
	// key. Never retried — a duplicate write won't become new on retry.
	ErrAlreadyExists = &Error{
		Category: CategoryStorage,
		Code:     "ALREADY_EXISTS",
		Message:  "page already exists",
	}
)
