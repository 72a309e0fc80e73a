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

// Network errors, for the HTTP edge of server/http.go: the distributed
// ratelimit.Distributed backend (Redis) and the toolkit's optional
// Redis result cache, and any future remote storage.Backend.
var (
	// ErrNetworkTimeout indicates a remote call (a Redis round-trip for
	// ratelimit.Distributed or toolkit's result cache) timed out.
	ErrNetworkTimeout = &Error{
		Category: CategoryNetwork,
		Code:     "NETWORK_TIMEOUT",
		Message:  "network request timed out",
	}

	// ErrTimeout is an alias for ErrNetworkTimeout for convenience.
	ErrTimeout = ErrNetworkTimeout

	// ErrNetworkUnavailable indicates a dependency the page core reaches
	// over the network (Redis, a remote Postgres) could not be reached
	// at all.
	ErrNetworkUnavailable = &Error{
		Category: CategoryNetwork,
		Code:     "NETWORK_UNAVAILABLE",
		Message:  "network unavailable",
	}

	// ErrConnectionRefused indicates a remote dependency actively
	// refused the connection, distinct from ErrNetworkUnavailable's
	// broader "couldn't reach it at all".
	ErrConnectionRefused = &Error{
		Category: CategoryNetwork,
		Code:     "CONNECTION_REFUSED",
		Message:  "connection refused",
	}

	// ErrRateLimitExceeded is returned by ratelimit.HTTPMiddleware
	// (server/http.go's POST /tools/{name} path) once a caller's
	// key — an IP via IPKeyFromRequest, or a tool name via
	// ToolKeyFromRequest — has exhausted its budget.
	ErrRateLimitExceeded = &Error{
		Category: CategoryNetwork,
		Code:     "RATE_LIMIT_EXCEEDED",
		Message:  "rate limit exceeded",
	}
)
