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

// Package server exposes a page-core deployment's toolkit and search
// surface over HTTP: tool dispatch at POST /tools/{name}, an
// incremental search stream over a websocket, and a /healthz probe.
// This transport is not part of spec.md's core contract — the spec only
// promises the toolkit "is exposed to upstream agents" without naming a
// wire protocol — so the shape here is this repository's own choice,
// built the way the teacher builds its gRPC surface (explicit
// Config/Server types, a Start/Stop lifecycle, graceful shutdown).
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/pagecore/pagecore/core/pagecontext"
	"github.com/pagecore/pagecore/observability/health"
	"github.com/pagecore/pagecore/observability/logging"
	"github.com/pagecore/pagecore/observability/metrics"
	"github.com/pagecore/pagecore/ratelimit"
)

// Config configures the HTTP surface.
type Config struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// MetricsEnabled mounts the metrics collector's handler at
	// MetricsPath. Both are ignored when Collector is nil.
	MetricsEnabled bool
	MetricsPath    string

	// RateLimiter, if non-nil, is consulted for every POST /tools/{name}
	// request via RateLimitKeyFunc (defaults to ratelimit.IPKeyFromRequest).
	RateLimiter      ratelimit.Limiter
	RateLimitKeyFunc ratelimit.KeyFromRequest
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		AllowedOrigins:  []string{"*"},
		MetricsPath:     "/metrics",
	}
}

// Server is the HTTP surface over one pagecontext.Context.
type Server struct {
	ctx       *pagecontext.Context
	log       logging.Logger
	collector metrics.Collector
	cfg       Config

	liveness *health.LivenessChecker
	startup  *health.StartupChecker
	upgrader websocket.Upgrader
	http     *http.Server
}

// New constructs a Server. log and collector may both be nil. The
// caller should call MarkStarted once the backing storage has been
// opened and migrated, so /startupz reflects the truth.
func New(pageContext *pagecontext.Context, log logging.Logger, collector metrics.Collector, cfg Config) *Server {
	return &Server{
		ctx:       pageContext,
		log:       log,
		collector: collector,
		cfg:       cfg,
		liveness:  health.NewLivenessChecker(),
		startup:   health.NewStartupChecker(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()

	invoke := http.HandlerFunc(s.handleInvoke)
	if s.cfg.RateLimiter != nil {
		mw := ratelimit.HTTPMiddleware(s.cfg.RateLimiter, s.cfg.RateLimitKeyFunc, s.writeError)
		r.Handle("/tools/{name}", mw(invoke)).Methods(http.MethodPost)
	} else {
		r.Handle("/tools/{name}", invoke).Methods(http.MethodPost)
	}
	r.HandleFunc("/search/stream", s.handleSearchStream)
	r.Handle("/healthz", health.Handler(storageChecker{ctx: s.ctx})).Methods(http.MethodGet)
	r.Handle("/livez", health.Handler(s.liveness)).Methods(http.MethodGet)
	r.Handle("/readyz", health.Handler(health.NewReadinessChecker(storageChecker{ctx: s.ctx}))).Methods(http.MethodGet)
	r.Handle("/startupz", health.Handler(s.startup)).Methods(http.MethodGet)
	r.HandleFunc("/healthz/all", health.MultiHandler(storageChecker{ctx: s.ctx}, s.liveness, s.startup)).Methods(http.MethodGet)

	if s.collector != nil && s.cfg.MetricsEnabled {
		path := s.cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, s.collector.Handler()).Methods(http.MethodGet)
	}

	return r
}

// MarkStarted marks /startupz healthy. Call once after the storage
// backend has been opened and migrated, so readiness/startup probes
// do not report success before the page core can actually serve a read.
func (s *Server) MarkStarted() {
	s.startup.MarkReady()
}

// Start runs the HTTP server until it is stopped or fails. It blocks.
func (s *Server) Start() error {
	handler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(s.accessLog(s.routes()))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logInfo("http server listening", logging.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down, bounded by cfg.ShutdownTimeout.
func (s *Server) Stop(ctx context.Context) error {
	s.liveness.MarkStopped()
	if s.http == nil {
		return nil
	}
	s.logInfo("http server stopping")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) logInfo(msg string, fields ...logging.Field) {
	if s.log == nil {
		return
	}
	s.log.Info(context.Background(), msg, fields...)
}

func (s *Server) logError(ctx context.Context, msg string, err error) {
	if s.log == nil {
		return
	}
	s.log.Error(ctx, msg, logging.String("error", err.Error()))
}
