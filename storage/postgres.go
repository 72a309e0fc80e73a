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
	gosql "database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/pagecore/pagecore/core/descriptor"
	"github.com/pagecore/pagecore/pkg/errors"
)

const relationshipsTable = "page_relationships"

// PostgresConfig contains PostgreSQL connection configuration.
type PostgresConfig struct {
	// Host is the PostgreSQL server host.
	// Default: "localhost"
	Host string

	// Port is the PostgreSQL server port.
	// Default: 5432
	Port int

	// User is the PostgreSQL user.
	// Default: "postgres"
	User string

	// Password is the PostgreSQL password.
	// Default: ""
	Password string

	// Database is the PostgreSQL database name.
	// Default: "pagecore"
	Database string

	// SSLMode is the SSL mode for connection.
	// Options: "disable", "require", "verify-ca", "verify-full"
	// Default: "disable"
	SSLMode string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 25
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// ConnMaxLifetime is the maximum lifetime of a connection.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration
}

// DefaultPostgresConfig returns the default PostgreSQL configuration.
func DefaultPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "",
		Database:        "pagecore",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// PostgresBackend is a Backend implementation over PostgreSQL, with one
// table per registered page type plus the shared relationships table.
type PostgresBackend struct {
	db *gosql.DB

	mu      sync.Mutex
	ensured map[string]bool
}

// NewPostgresBackend opens a PostgreSQL backend and migrates the shared
// relationships table.
func NewPostgresBackend(config *PostgresConfig) (*PostgresBackend, error) {
	if config == nil {
		config = DefaultPostgresConfig()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.Database, config.SSLMode,
	)

	db, err := gosql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	b := &PostgresBackend{db: db, ensured: make(map[string]bool)}
	if err := b.migrateRelationships(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate relationships table: %w", err)
	}
	return b, nil
}

func (b *PostgresBackend) migrateRelationships(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			source_uri TEXT NOT NULL,
			relationship_type TEXT NOT NULL,
			target_uri TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (source_uri, relationship_type)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_source_uri ON %s(source_uri);
		CREATE INDEX IF NOT EXISTS idx_%s_target_uri ON %s(target_uri);
	`, relationshipsTable, relationshipsTable, relationshipsTable, relationshipsTable, relationshipsTable))
	return err
}

// EnsureTable creates table's backing SQL table if it does not already
// exist, with one typed column per declared field plus the universal
// uri_prefix/version/valid/timestamps/signature columns. On
// re-registration with a differing signature, no DDL is issued (the
// first caller's shape wins; migrations are external).
func (b *PostgresBackend) EnsureTable(ctx context.Context, table *descriptor.TableDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.ensured[table.TableName] {
		return nil
	}

	var cols strings.Builder
	for _, f := range table.Type.Fields {
		nullability := "NOT NULL"
		if f.Nullable {
			nullability = ""
		}
		fmt.Fprintf(&cols, ", %s %s %s", quoteIdent(f.Name), sqlColumnType(f.Column()), nullability)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			uri_prefix TEXT NOT NULL,
			version BIGINT NOT NULL,
			valid BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			_schema_signature TEXT NOT NULL
			%s,
			PRIMARY KEY (uri_prefix, version)
		);
		CREATE INDEX IF NOT EXISTS idx_%s_uri_prefix ON %s(uri_prefix);
	`, quoteIdent(table.TableName), cols.String(), table.TableName, quoteIdent(table.TableName))

	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate table %s: %w", table.TableName, err)
	}
	b.ensured[table.TableName] = true
	return nil
}

func sqlColumnType(c descriptor.StorageColumn) string {
	switch c {
	case descriptor.ColumnText, descriptor.ColumnLargeText:
		return "TEXT"
	case descriptor.ColumnBigInt:
		return "BIGINT"
	case descriptor.ColumnDouble:
		return "DOUBLE PRECISION"
	case descriptor.ColumnBoolean:
		return "BOOLEAN"
	case descriptor.ColumnNumeric:
		return "NUMERIC"
	case descriptor.ColumnTimestamp:
		return "TIMESTAMPTZ"
	case descriptor.ColumnJSON:
		return "JSONB"
	default:
		return "TEXT"
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Store implements Backend.
func (b *PostgresBackend) Store(ctx context.Context, table string, row Row) error {
	names := sortedFieldNames(row.Fields)

	cols := []string{"uri_prefix", "version", "valid", "_schema_signature"}
	placeholders := []string{"$1", "$2", "$3", "$4"}
	args := []interface{}{row.URIPrefix, row.Version, true, ""}

	for _, name := range names {
		cols = append(cols, quoteIdent(name))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, row.Fields[name])
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyExists.WithDetail("table", table).WithDetail("uri_prefix", row.URIPrefix).WithDetail("version", row.Version)
		}
		return fmt.Errorf("failed to store row: %w", err)
	}
	return nil
}

func sortedFieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505), without importing the pq error type
// directly so the check also tolerates wrapped drivers in tests.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "duplicate key")
}

func scanRow(rows interface{ Scan(dest ...interface{}) error }, uriPrefix string, colNames []string) (Row, error) {
	row := Row{URIPrefix: uriPrefix, Fields: make(map[string]interface{}, len(colNames)-5)}
	var version int64
	var valid bool
	var signature string
	dest := []interface{}{&version, &valid, &row.CreatedAt, &row.UpdatedAt, &signature}

	values := make([]interface{}, len(colNames)-5)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := rows.Scan(dest...); err != nil {
		return Row{}, err
	}
	row.Version = uint64(version)
	row.Valid = valid
	for i, name := range colNames[5:] {
		row.Fields[name] = values[i]
	}
	return row, nil
}

// Get implements Backend.
func (b *PostgresBackend) Get(ctx context.Context, table, uriPrefix string, version uint64, ignoreValidity bool) (Row, error) {
	colNames, err := b.columnNames(ctx, table)
	if err != nil {
		return Row{}, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE uri_prefix = $1 AND version = $2`,
		selectList(colNames), quoteIdent(table))
	args := []interface{}{uriPrefix, version}
	if !ignoreValidity {
		query += " AND valid = true"
	}

	row, err := scanRow(b.db.QueryRowContext(ctx, query, args...), uriPrefix, colNames)
	if err != nil {
		if err == gosql.ErrNoRows {
			return Row{}, errors.ErrNotFound.WithDetail("table", table).WithDetail("uri_prefix", uriPrefix).WithDetail("version", version)
		}
		return Row{}, fmt.Errorf("failed to get row: %w", err)
	}
	return row, nil
}

// GetLatestRow implements Backend.
func (b *PostgresBackend) GetLatestRow(ctx context.Context, table, uriPrefix string, ignoreValidity bool) (Row, error) {
	colNames, err := b.columnNames(ctx, table)
	if err != nil {
		return Row{}, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE uri_prefix = $1`, selectList(colNames), quoteIdent(table))
	if !ignoreValidity {
		query += " AND valid = true"
	}
	query += " ORDER BY version DESC LIMIT 1"

	row, err := scanRow(b.db.QueryRowContext(ctx, query, uriPrefix), uriPrefix, colNames)
	if err != nil {
		if err == gosql.ErrNoRows {
			return Row{}, errors.ErrNotFound.WithDetail("table", table).WithDetail("uri_prefix", uriPrefix)
		}
		return Row{}, fmt.Errorf("failed to get latest row: %w", err)
	}
	return row, nil
}

// MarkInvalid implements Backend.
func (b *PostgresBackend) MarkInvalid(ctx context.Context, table, uriPrefix string, version uint64) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET valid = false, updated_at = now() WHERE uri_prefix = $1 AND version = $2 AND valid = true`, quoteIdent(table))
	result, err := b.db.ExecContext(ctx, query, uriPrefix, version)
	if err != nil {
		return false, fmt.Errorf("failed to mark row invalid: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	// Row may already be invalid, or not exist; either way report whether
	// the row exists at all (idempotent success on "already invalid").
	_, getErr := b.Get(ctx, table, uriPrefix, version, true)
	return getErr == nil, nil
}

// MarkInvalidByPrefix implements Backend.
func (b *PostgresBackend) MarkInvalidByPrefix(ctx context.Context, table, uriPrefix string) (int64, error) {
	query := fmt.Sprintf(`UPDATE %s SET valid = false, updated_at = now() WHERE uri_prefix = $1 AND valid = true`, quoteIdent(table))
	result, err := b.db.ExecContext(ctx, query, uriPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to mark rows invalid: %w", err)
	}
	return result.RowsAffected()
}

// Find implements Backend.
func (b *PostgresBackend) Find(ctx context.Context, table string, filters []Filter) ([]Row, error) {
	colNames, err := b.columnNames(ctx, table)
	if err != nil {
		return nil, err
	}

	// uri_prefix is selected as an extra trailing column so each row
	// carries its own prefix.
	findCols := append(append([]string{}, colNames...), "uri_prefix")
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE valid = true`, selectList(findCols), quoteIdent(table))
	var args []interface{}
	for _, f := range filters {
		if f.SQLFragment == nil {
			continue
		}
		fragment, fargs := f.SQLFragment(len(args) + 1)
		query += " AND " + fragment
		args = append(args, fargs...)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row, err := scanRow(rows, "", findCols)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.URIPrefix, _ = row.Fields["uri_prefix"].(string)
		delete(row.Fields, "uri_prefix")
		out = append(out, row)
	}
	return out, rows.Err()
}

// columnNames returns the ordered column list
// [version, valid, created_at, updated_at, _schema_signature, field...]
// for table, introspected from information_schema so Find/Get do not
// need the descriptor at call time.
func (b *PostgresBackend) columnNames(ctx context.Context, table string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT column_name FROM information_schema.columns
		WHERE table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect columns: %w", err)
	}
	defer rows.Close()

	fixed := map[string]bool{"uri_prefix": true, "version": true, "valid": true, "created_at": true, "updated_at": true, "_schema_signature": true}
	cols := []string{"version", "valid", "created_at", "updated_at", "_schema_signature"}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if !fixed[name] {
			cols = append(cols, name)
		}
	}
	return cols, rows.Err()
}

func selectList(colNames []string) string {
	quoted := make([]string, len(colNames))
	for i, c := range colNames {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// PutRelationship implements Backend.
func (b *PostgresBackend) PutRelationship(ctx context.Context, sourceURI, relationshipType, targetURI string) error {
	_, err := b.db.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (source_uri, relationship_type, target_uri) VALUES ($1, $2, $3)`, relationshipsTable),
		sourceURI, relationshipType, targetURI)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyExists.WithDetail("source_uri", sourceURI).WithDetail("relationship_type", relationshipType)
		}
		return fmt.Errorf("failed to store relationship: %w", err)
	}
	return nil
}

// GetRelationship implements Backend.
func (b *PostgresBackend) GetRelationship(ctx context.Context, sourceURI, relationshipType string) (string, bool, error) {
	var target string
	err := b.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT target_uri FROM %s WHERE source_uri = $1 AND relationship_type = $2`, relationshipsTable),
		sourceURI, relationshipType).Scan(&target)
	if err != nil {
		if err == gosql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get relationship: %w", err)
	}
	return target, true, nil
}

// ChildrenOf implements Backend.
func (b *PostgresBackend) ChildrenOf(ctx context.Context, targetURI, relationshipType string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT source_uri FROM %s WHERE target_uri = $1 AND relationship_type = $2`, relationshipsTable),
		targetURI, relationshipType)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, err
		}
		out = append(out, source)
	}
	return out, rows.Err()
}

// Ping implements Backend.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close implements Backend.
func (b *PostgresBackend) Close() error {
	return b.db.Close()
}
