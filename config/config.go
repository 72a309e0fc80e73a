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

// Package config loads and validates a pagecore deployment's
// configuration: the HTTP surface, the storage backend, and the
// toolkit's default pagination and caching knobs.
package config

import (
	"time"
)

// Config is the complete configuration for a pagecore deployment.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Toolkit   ToolkitConfig
	RateLimit RateLimitConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// RateLimitConfig controls the per-client limiter in front of
// POST /tools/{name}.
type RateLimitConfig struct {
	Enabled bool

	// Algorithm selects the ratelimit.Limiter implementation:
	// "token_bucket" (default), "sliding_window", or "distributed"
	// (shares one Redis-backed budget across every server instance).
	Algorithm string

	// Rate is requests/second for the token bucket algorithm.
	Rate float64
	// Burst is the token bucket's capacity.
	Burst int

	// Limit and Window configure the sliding window and distributed
	// algorithms.
	Limit  int
	Window time.Duration

	// RedisAddr, if set, is required by the "distributed" algorithm.
	RedisAddr string

	// KeyBy selects the per-client key: "ip" (default) or "tool".
	KeyBy string
}

// StorageConfig selects and configures the storage.Backend.
type StorageConfig struct {
	Type     string // "memory", "postgres"
	Postgres PostgresConfig
}

// PostgresConfig mirrors storage.PostgresConfig so connection settings
// can be loaded from file/env before the backend is constructed.
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json" selects StructuredLogger; "zap" selects ZapLogger
	Output string // "stdout" or a file path
}

// MetricsConfig contains metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// ToolkitConfig holds defaults for tools registered without their own
// pagination/caching options.
type ToolkitConfig struct {
	DefaultPageSize    int
	DefaultTokenBudget int
	ResultCacheTTL     time.Duration

	// ResultCacheRedisAddr, if non-empty, backs every cache-enabled tool's
	// result cache with Redis instead of a per-process in-memory cache so
	// results are shared across pagecore instances.
	ResultCacheRedisAddr string
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				Host:            "localhost",
				Port:            5432,
				User:            "postgres",
				Database:        "pagecore",
				SSLMode:         "disable",
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		Toolkit: ToolkitConfig{
			DefaultPageSize:    50,
			DefaultTokenBudget: 0,
			ResultCacheTTL:     5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:   false,
			Algorithm: "token_bucket",
			Rate:      10.0,
			Burst:     100,
			Limit:     100,
			Window:    time.Minute,
			KeyBy:     "ip",
		},
	}
}

// NewConfig creates a new default configuration. Alias for
// DefaultConfig.
func NewConfig() *Config {
	return DefaultConfig()
}
