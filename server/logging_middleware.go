// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package server

import (
	"net/http"
	"time"

	"github.com/pagecore/pagecore/observability/logging"
)

// statusWriter wraps http.ResponseWriter to capture the status code
// written by the inner handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// accessLog returns middleware that logs one line per request: method,
// path, status, and duration. A nil logger yields a no-op middleware.
func (s *Server) accessLog(next http.Handler) http.Handler {
	if s.log == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.log.Info(r.Context(), "request handled",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", sw.status),
			logging.Float64("duration_sec", time.Since(start).Seconds()),
		)
	})
}
