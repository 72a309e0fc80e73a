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

// Package resilience provides the retry and circuit-breaker patterns that
// storage.Resilient wraps around a storage.Backend, so a flaky Postgres
// connection degrades gracefully instead of taking the router down with it.
//
// Retry Pattern:
//
//	config := &resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    Backoff:     resilience.ExponentialBackoff(100*time.Millisecond, 2.0, 5*time.Second),
//	    ShouldRetry: resilience.DefaultShouldRetry,
//	}
//
//	err := resilience.Retry(ctx, config, func(ctx context.Context) error {
//	    _, err := backend.Get(ctx, table, prefix, version, false)
//	    return err
//	})
//
// Circuit Breaker Pattern:
//
//	config := &resilience.CircuitBreakerConfig{
//	    MaxFailures: 5,
//	    Timeout:     60 * time.Second,
//	    MaxHalfOpenRequests: 1,
//	}
//	cb := resilience.NewCircuitBreaker(config)
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    _, err := backend.Get(ctx, table, prefix, version, false)
//	    return err
//	})
//
// Combining Patterns:
//
// storage.Resilient wraps every backend call in both: a retry loop for
// transient connection drops, guarded by a circuit breaker so a backend
// that is genuinely down fails fast instead of retrying into it. The
// breaker sits outside the retry loop, so it records the outcome of the
// whole loop as one call.
//
//	cb := resilience.NewCircuitBreaker(nil)
//	retryConfig := resilience.DefaultRetryConfig()
//
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return resilience.Retry(ctx, retryConfig, func(ctx context.Context) error {
//	        _, err := backend.Get(ctx, table, prefix, version, false)
//	        return err
//	    })
//	})
package resilience
