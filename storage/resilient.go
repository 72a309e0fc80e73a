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

package storage

import (
	"context"

	"github.com/pagecore/pagecore/core/resilience"
	"github.com/pagecore/pagecore/pkg/errors"
)

// Resilient wraps a Backend with retry and circuit-breaker protection,
// for backends whose calls cross a network boundary (PostgresBackend;
// MemoryBackend has no need for either). A tripped circuit breaker
// fails calls immediately with resilience.ErrCircuitBreakerOpen instead
// of letting every caller pile up against an already-down database.
type Resilient struct {
	backend Backend
	retry   *resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewResilient wraps backend. A nil retry or breaker config falls back
// to DefaultStorageRetryConfig / resilience's circuit-breaker default.
func NewResilient(backend Backend, retry *resilience.RetryConfig, breakerConfig *resilience.CircuitBreakerConfig) *Resilient {
	if retry == nil {
		retry = DefaultStorageRetryConfig()
	}
	return &Resilient{
		backend: backend,
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(breakerConfig),
	}
}

// DefaultStorageRetryConfig only retries connection/timeout failures:
// unlike resilience.DefaultRetryConfig's retry-on-any-error, a business
// error like errors.ErrNotFound or errors.ErrAlreadyExists would never
// succeed on a second attempt, so retrying it just adds latency.
func DefaultStorageRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.ShouldRetry = func(err error) bool {
		return errors.IsTimeout(err) ||
			errors.Is(err, errors.ErrStorageTimeout) ||
			errors.Is(err, errors.ErrStorageConnection)
	}
	return cfg
}

func (r *Resilient) run(ctx context.Context, op func(ctx context.Context) error) error {
	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, r.retry, op)
	})
}

func (r *Resilient) Store(ctx context.Context, table string, row Row) error {
	return r.run(ctx, func(ctx context.Context) error {
		return r.backend.Store(ctx, table, row)
	})
}

func (r *Resilient) Get(ctx context.Context, table, uriPrefix string, version uint64, ignoreValidity bool) (Row, error) {
	var row Row
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		row, err = r.backend.Get(ctx, table, uriPrefix, version, ignoreValidity)
		return err
	})
	return row, err
}

func (r *Resilient) GetLatestRow(ctx context.Context, table, uriPrefix string, ignoreValidity bool) (Row, error) {
	var row Row
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		row, err = r.backend.GetLatestRow(ctx, table, uriPrefix, ignoreValidity)
		return err
	})
	return row, err
}

func (r *Resilient) MarkInvalid(ctx context.Context, table, uriPrefix string, version uint64) (bool, error) {
	var ok bool
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		ok, err = r.backend.MarkInvalid(ctx, table, uriPrefix, version)
		return err
	})
	return ok, err
}

func (r *Resilient) MarkInvalidByPrefix(ctx context.Context, table, uriPrefix string) (int64, error) {
	var n int64
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		n, err = r.backend.MarkInvalidByPrefix(ctx, table, uriPrefix)
		return err
	})
	return n, err
}

func (r *Resilient) Find(ctx context.Context, table string, filters []Filter) ([]Row, error) {
	var rows []Row
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		rows, err = r.backend.Find(ctx, table, filters)
		return err
	})
	return rows, err
}

func (r *Resilient) PutRelationship(ctx context.Context, sourceURI, relationshipType, targetURI string) error {
	return r.run(ctx, func(ctx context.Context) error {
		return r.backend.PutRelationship(ctx, sourceURI, relationshipType, targetURI)
	})
}

func (r *Resilient) GetRelationship(ctx context.Context, sourceURI, relationshipType string) (string, bool, error) {
	var target string
	var ok bool
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		target, ok, err = r.backend.GetRelationship(ctx, sourceURI, relationshipType)
		return err
	})
	return target, ok, err
}

func (r *Resilient) ChildrenOf(ctx context.Context, targetURI, relationshipType string) ([]string, error) {
	var children []string
	err := r.run(ctx, func(ctx context.Context) error {
		var err error
		children, err = r.backend.ChildrenOf(ctx, targetURI, relationshipType)
		return err
	})
	return children, err
}

// Ping and Close bypass the circuit breaker: a health probe must report
// the backend's real state rather than a breaker's cached judgment, and
// Close is a one-shot teardown with nothing useful to retry.
func (r *Resilient) Ping(ctx context.Context) error {
	return r.backend.Ping(ctx)
}

func (r *Resilient) Close() error {
	return r.backend.Close()
}
