// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package ratelimit

import (
	"net/http"
	"strings"

	"github.com/pagecore/pagecore/pkg/errors"
)

// KeyFromRequest generates a rate limit key from an inbound HTTP request.
type KeyFromRequest func(r *http.Request) string

// IPKeyFromRequest keys by the request's remote address, stripped of port.
func IPKeyFromRequest(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// ToolKeyFromRequest keys by the {name} path variable under /tools/{name},
// giving each tool its own bucket regardless of caller.
func ToolKeyFromRequest(r *http.Request) string {
	name := strings.TrimPrefix(r.URL.Path, "/tools/")
	if name == "" || name == r.URL.Path {
		return "unknown"
	}
	return name
}

// HTTPMiddleware returns net/http middleware that rejects requests the
// given Limiter denies with errors.ErrRateLimitExceeded, written the way
// server.Server's writeError renders *errors.Error.
func HTTPMiddleware(limiter Limiter, keyFunc KeyFromRequest, writeError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = IPKeyFromRequest
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if !limiter.Allow(key) {
				writeError(w, r, errors.ErrRateLimitExceeded.WithMessage("rate limit exceeded for "+key))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
