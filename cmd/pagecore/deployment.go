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
	"fmt"
	"log"
	"os"

	"github.com/pagecore/pagecore/cache"
	"github.com/pagecore/pagecore/config"
	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/core/serialize"
	"github.com/pagecore/pagecore/observability/logging"
	"github.com/pagecore/pagecore/storage"
)

// deployment bundles the storage-backed pieces every subcommand needs:
// a descriptor registry, the storage.Backend config selects, and the
// cache built on top of both. serve additionally wraps a router,
// toolkit registry, and HTTP surface around this; invalidate/lineage
// use it directly.
type deployment struct {
	registry *descriptor.Registry
	backend  storage.Backend
	cache    *cache.Cache
	logger   logging.Logger
}

// loadConfig reads path, falling back to config.DefaultConfig if it
// does not exist, then applies PAGECORE_* environment overrides.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("⚠️  Config file not found: %s, using defaults", path)
		cfg = config.DefaultConfig()
	} else {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		log.Printf("✅ Configuration loaded from %s", path)
		cfg = loaded
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logging.Logger named by cfg.Logging.Format.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	level := logging.Level(cfg.Logging.Level)
	if cfg.Logging.Format == "zap" {
		return logging.NewZapLogger(level)
	}
	return logging.NewStructuredLogger(level), nil
}

// newDeployment wires a descriptor registry, storage backend, and cache
// from cfg. Every subcommand that touches stored pages starts here.
func newDeployment(cfg *config.Config) (*deployment, error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	registry := descriptor.NewRegistry(logger)

	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	resolve := serialize.Resolver(func(typeName string) (descriptor.PageTypeDescriptor, bool) {
		return descriptor.PageTypeDescriptor{}, false
	})
	pageCache := cache.New(registry, backend, resolve, logger, nil)

	return &deployment{registry: registry, backend: backend, cache: pageCache, logger: logger}, nil
}

func newBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Type {
	case "", "memory":
		log.Println("✅ Storage: Memory")
		return storage.NewMemoryBackend(), nil

	case "postgres":
		pg := cfg.Storage.Postgres
		backend, err := storage.NewPostgresBackend(&storage.PostgresConfig{
			Host:            pg.Host,
			Port:            pg.Port,
			User:            pg.User,
			Password:        pg.Password,
			Database:        pg.Database,
			SSLMode:         pg.SSLMode,
			MaxOpenConns:    pg.MaxOpenConns,
			MaxIdleConns:    pg.MaxIdleConns,
			ConnMaxLifetime: pg.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storage: %w", err)
		}
		log.Printf("✅ Storage: PostgreSQL (%s:%d/%s)", pg.Host, pg.Port, pg.Database)
		log.Println("✅ Resilience: retry + circuit breaker enabled for PostgreSQL")
		return storage.NewResilient(backend, nil, nil), nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// ensureType registers typeName with the minimal descriptor needed to
// resolve its storage table, for commands that operate on a type by
// name alone without the application's own field descriptors in scope.
func (d *deployment) ensureType(typeName string) error {
	_, err := d.registry.EnsureRegistered(descriptor.PageTypeDescriptor{Name: typeName})
	return err
}
