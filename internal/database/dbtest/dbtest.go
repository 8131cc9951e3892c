// Package dbtest opens a migrated SQLite database for package tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/database/migrate"
)

// Open returns a fresh database in the test's temp dir with all migrations
// applied. The pool is limited to one connection so concurrent callers queue
// instead of hitting SQLite's table locks.
func Open(t *testing.T) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "supply.db")
	sqlDB, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migrate.Up(context.Background(), sqlDB, "sqlite3", nil))
	return database.Wrap(sqlDB, "sqlite3")
}

// Count returns SELECT COUNT(*) for the given table and optional WHERE clause.
func Count(t *testing.T, db *database.DB, table, where string, args ...any) int {
	t.Helper()
	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}
