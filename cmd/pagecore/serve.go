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

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redis/go-redis/v9"

	"github.com/pagecore/pagecore/config"
	"github.com/pagecore/pagecore/core/pagecontext"
	"github.com/pagecore/pagecore/core/router"
	"github.com/pagecore/pagecore/core/toolkit"
	"github.com/pagecore/pagecore/observability/metrics"
	"github.com/pagecore/pagecore/ratelimit"
	"github.com/pagecore/pagecore/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the pagecore HTTP/websocket server",
	Long: `Start the HTTP server exposing tool dispatch, search streaming,
and a health probe over a page-core deployment.

Configuration can be provided via:
  - config.yaml file (default: ./config.yaml)
  - Environment variables (PAGECORE_*)
  - Command-line flags (highest priority)

Example:
  pagecore serve
  pagecore serve --config my-config.yaml
  pagecore serve --port 9000 --host 0.0.0.0`,
	RunE: runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveHost       string
)

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "Path to configuration file")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Server port (overrides config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Server host (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log.Printf("🚀 Starting pagecore server...")
	log.Printf("📄 Config: %s", serveConfigPath)

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	log.Printf("🌐 Address: http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	dep, err := newDeployment(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize deployment: %w", err)
	}

	var collector metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector()
		log.Println("✅ Metrics: Prometheus")
	}

	pageRouter := router.New(dep.registry, dep.cache, dep.logger)
	tools := toolkit.NewRegistry()
	if addr := cfg.Toolkit.ResultCacheRedisAddr; addr != "" {
		if _, err := tools.WithRedisCache(toolkit.RedisCacheConfig{
			Address:    addr,
			DefaultTTL: cfg.Toolkit.ResultCacheTTL,
		}); err != nil {
			log.Printf("⚠️  Redis result cache disabled, falling back to in-memory: %v", err)
		} else {
			log.Println("✅ Toolkit result cache: Redis")
		}
	}
	pageContext := pagecontext.New(dep.cache, pageRouter, tools)
	// Page types and tools are registered by the embedding application
	// before Register is frozen; this CLI boots a bare server ready to
	// accept them via the imported pagecontext.Context.

	limiter, keyFunc := newRateLimiter(cfg.RateLimit)
	if limiter != nil {
		log.Printf("✅ Rate limiting: %s keyed by %s", cfg.RateLimit.Algorithm, cfg.RateLimit.KeyBy)
	}

	srv := server.New(pageContext, dep.logger, collector, server.Config{
		Host:             cfg.Server.Host,
		Port:             cfg.Server.Port,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
		AllowedOrigins:   []string{"*"},
		MetricsEnabled:   cfg.Metrics.Enabled,
		MetricsPath:      cfg.Metrics.Path,
		RateLimiter:      limiter,
		RateLimitKeyFunc: keyFunc,
	})
	// The backend behind dep.cache is already open and migrated by this
	// point, so /startupz can report ready as soon as routes are live.
	srv.MarkStarted()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("\n📥 Shutdown signal received, stopping server...")
	case err := <-errChan:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop server gracefully: %w", err)
	}

	log.Println("✅ Server stopped successfully")
	return nil
}

// newRateLimiter builds the Limiter and per-request key function for
// cfg.RateLimit, or (nil, nil) when disabled.
func newRateLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, ratelimit.KeyFromRequest) {
	if !cfg.Enabled {
		return nil, nil
	}

	var limiter ratelimit.Limiter
	switch cfg.Algorithm {
	case "sliding_window":
		limiter = ratelimit.NewSlidingWindow(ratelimit.SlidingWindowConfig{
			Limit:  cfg.Limit,
			Window: cfg.Window,
			Config: ratelimit.DefaultConfig(),
		})
	case "distributed":
		dist, err := ratelimit.NewDistributed(ratelimit.DistributedConfig{
			RedisClient: redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}),
			Limit:       cfg.Limit,
			Window:      cfg.Window,
			Algorithm:   ratelimit.AlgorithmSlidingWindow,
			Config:      ratelimit.DefaultConfig(),
		})
		if err != nil {
			log.Printf("⚠️  Distributed rate limiter disabled: %v", err)
			return nil, nil
		}
		limiter = dist
	default:
		limiter = ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{
			Rate:     cfg.Rate,
			Capacity: cfg.Burst,
			Config:   ratelimit.DefaultConfig(),
		})
	}

	keyFunc := ratelimit.IPKeyFromRequest
	if cfg.KeyBy == "tool" {
		keyFunc = ratelimit.ToolKeyFromRequest
	}
	return limiter, keyFunc
}
