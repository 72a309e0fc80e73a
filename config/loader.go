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

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadFromFile loads configuration from a file (YAML or JSON), applies
// environment overrides, and validates the result. The file format is
// determined by the file extension (.yaml, .yml, or .json).
func LoadFromFile(path string) (*Config, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "yaml", "yml", "json":
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(ext)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadEnv loads configuration from environment variables.
// Environment variables take precedence over file-based configuration.
// Format: PAGECORE_<SECTION>_<FIELD> (e.g., PAGECORE_SERVER_PORT).
func (c *Config) LoadEnv() error {
	if v := os.Getenv("PAGECORE_SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PAGECORE_SERVER_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			c.Server.Port = port
		}
	}

	if v := os.Getenv("PAGECORE_STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("PAGECORE_POSTGRES_HOST"); v != "" {
		c.Storage.Postgres.Host = v
	}
	if v := os.Getenv("PAGECORE_POSTGRES_PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			c.Storage.Postgres.Port = port
		}
	}
	if v := os.Getenv("PAGECORE_POSTGRES_USER"); v != "" {
		c.Storage.Postgres.User = v
	}
	if v := os.Getenv("PAGECORE_POSTGRES_PASSWORD"); v != "" {
		c.Storage.Postgres.Password = v
	}
	if v := os.Getenv("PAGECORE_POSTGRES_DATABASE"); v != "" {
		c.Storage.Postgres.Database = v
	}

	if v := os.Getenv("PAGECORE_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PAGECORE_LOGGING_FORMAT"); v != "" {
		c.Logging.Format = v
	}

	if v := os.Getenv("PAGECORE_METRICS_ENABLED"); v != "" {
		c.Metrics.Enabled = v == "true" || v == "1"
	}

	return nil
}
