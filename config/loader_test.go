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
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecore.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9000
storage:
  type: memory
logging:
  level: debug
  format: json
  output: stdout
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecore.json")
	content := `{"Server":{"Host":"10.0.0.1","Port":9100,"ReadTimeout":10000000000,"WriteTimeout":10000000000,"ShutdownTimeout":5000000000},"Storage":{"Type":"memory"},"Logging":{"Level":"warn","Format":"json","Output":"stdout"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Server.Host != "10.0.0.1" {
		t.Errorf("Server.Host = %q, want 10.0.0.1", cfg.Server.Host)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadFromFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecore.toml")
	if err := os.WriteFile(path, []byte("x=1"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() succeeded for .toml, want an error")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/pagecore.yaml"); err == nil {
		t.Error("LoadFromFile() succeeded for a missing file, want an error")
	}
}

func TestLoadFromFile_InvalidConfigFailsValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecore.yaml")
	content := "server:\n  port: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() succeeded with port 0, want a validation error")
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("PAGECORE_SERVER_HOST", "192.168.1.1")
	t.Setenv("PAGECORE_SERVER_PORT", "7777")
	t.Setenv("PAGECORE_STORAGE_TYPE", "postgres")
	t.Setenv("PAGECORE_POSTGRES_HOST", "db.internal")
	t.Setenv("PAGECORE_POSTGRES_DATABASE", "prod")
	t.Setenv("PAGECORE_LOGGING_LEVEL", "error")
	t.Setenv("PAGECORE_METRICS_ENABLED", "true")

	cfg := DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if cfg.Server.Host != "192.168.1.1" {
		t.Errorf("Server.Host = %q, want 192.168.1.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777", cfg.Server.Port)
	}
	if cfg.Storage.Type != "postgres" {
		t.Errorf("Storage.Type = %q, want postgres", cfg.Storage.Type)
	}
	if cfg.Storage.Postgres.Host != "db.internal" {
		t.Errorf("Storage.Postgres.Host = %q, want db.internal", cfg.Storage.Postgres.Host)
	}
	if cfg.Storage.Postgres.Database != "prod" {
		t.Errorf("Storage.Postgres.Database = %q, want prod", cfg.Storage.Postgres.Database)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
}

func TestLoadEnv_NoOverrideLeavesDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (unchanged)", cfg.Server.Port)
	}
}
