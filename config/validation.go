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
)

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateLogging(); err != nil {
		return err
	}

	if err := c.validateToolkit(); err != nil {
		return err
	}

	return nil
}

// validateServer validates server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	return nil
}

// validateStorage validates storage configuration.
func (c *Config) validateStorage() error {
	validTypes := map[string]bool{
		"memory":   true,
		"postgres": true,
	}

	if !validTypes[c.Storage.Type] {
		return fmt.Errorf("storage type must be one of: memory, postgres")
	}

	if c.Storage.Type == "postgres" {
		if err := c.validatePostgres(); err != nil {
			return err
		}
	}

	return nil
}

// validatePostgres validates PostgreSQL configuration.
func (c *Config) validatePostgres() error {
	if c.Storage.Postgres.Host == "" {
		return fmt.Errorf("postgres host must not be empty")
	}

	if c.Storage.Postgres.Port < 1 || c.Storage.Postgres.Port > 65535 {
		return fmt.Errorf("postgres port must be between 1 and 65535")
	}

	if c.Storage.Postgres.User == "" {
		return fmt.Errorf("postgres user must not be empty")
	}

	if c.Storage.Postgres.Database == "" {
		return fmt.Errorf("postgres database must not be empty")
	}

	return nil
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json": true,
		"zap":  true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging format must be one of: json, zap")
	}

	return nil
}

// validateToolkit validates toolkit defaults.
func (c *Config) validateToolkit() error {
	if c.Toolkit.DefaultPageSize < 0 {
		return fmt.Errorf("toolkit default page size must not be negative")
	}
	if c.Toolkit.DefaultTokenBudget < 0 {
		return fmt.Errorf("toolkit default token budget must not be negative")
	}
	return nil
}
