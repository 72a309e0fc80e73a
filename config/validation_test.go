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

import "testing"

func TestValidate_Default(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidateServer_BadPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with port 0, want an error")
	}
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with port 70000, want an error")
	}
}

func TestValidateServer_NonPositiveTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ReadTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with zero ReadTimeout, want an error")
	}
}

func TestValidateStorage_UnknownType(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Type = "bigtable"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with storage type bigtable, want an error")
	}
}

func TestValidateStorage_PostgresRequiresConnectionDetails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Type = "postgres"
	cfg.Storage.Postgres.Host = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with empty postgres host, want an error")
	}

	cfg2 := DefaultConfig()
	cfg2.Storage.Type = "postgres"
	cfg2.Storage.Postgres.Database = ""
	if err := cfg2.Validate(); err == nil {
		t.Error("Validate() succeeded with empty postgres database, want an error")
	}
}

func TestValidateLogging_UnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with logging level verbose, want an error")
	}
}

func TestValidateLogging_UnknownFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with logging format xml, want an error")
	}
}

func TestValidateToolkit_NegativeValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Toolkit.DefaultPageSize = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() succeeded with negative page size, want an error")
	}

	cfg2 := DefaultConfig()
	cfg2.Toolkit.DefaultTokenBudget = -1
	if err := cfg2.Validate(); err == nil {
		t.Error("Validate() succeeded with negative token budget, want an error")
	}
}
