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

// Package config provides configuration management for pagecore.
//
// The configuration system supports multiple sources with the following precedence:
//   1. Environment variables (prefixed with PAGECORE_)
//   2. Configuration file (YAML or JSON)
//   3. Default values
//
// # Configuration Structure
//
// The configuration is organized into sections:
//   - Server: HTTP server settings
//   - Storage: Storage backend configuration (memory or postgres)
//   - Logging: Logging configuration
//   - Metrics: Metrics and monitoring
//   - Toolkit: Default pagination, token budget, and result cache settings
//
// # Usage
//
// Loading configuration:
//
//	cfg, err := config.LoadFromFile("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Starting from defaults and applying environment overrides directly:
//
//	cfg := config.DefaultConfig()
//	if err := cfg.LoadEnv(); err != nil {
//	    log.Fatal(err)
//	}
//
// Environment variable override:
//
//	export PAGECORE_SERVER_PORT=9090
//	export PAGECORE_STORAGE_TYPE="postgres"
//	export PAGECORE_POSTGRES_HOST="db.internal"
//
// # Validation
//
// All configuration is validated before use. Validation rules include:
//   - Server port must be between 1 and 65535
//   - Storage type must be "memory" or "postgres"
//   - Postgres storage requires a host, port, user, and database
//   - Logging level must be "debug", "info", "warn", or "error"
//   - Logging format must be "json" or "zap"
//
// See the Config.Validate() method for complete validation rules.
package config
