package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+filepath.Join(t.TempDir(), "m.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=$1`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestUpCreatesSchemaAndResetDropsIt(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()

	require.NoError(t, Up(ctx, db, "sqlite3", nil))
	for _, table := range []string{
		"consumers", "marketplace_managers", "warehouse_managers",
		"products", "online_inventory", "offline_inventory",
		"marketplace_sales", "orders", "order_items",
	} {
		assert.True(t, tableExists(t, db, table), table)
	}

	// idempotent
	require.NoError(t, Up(ctx, db, "sqlite3", nil))

	require.NoError(t, Run(ctx, db, "sqlite3", nil, "reset"))
	assert.False(t, tableExists(t, db, "products"))
}

func TestDialect(t *testing.T) {
	d, err := Dialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d)

	d, err = Dialect("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", d)

	_, err = Dialect("oracle")
	require.Error(t, err)
}

func TestMigrationsDeclareInventoryConstraints(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00002_create_catalog_inventory.sql")
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS offline_inventory",
		"PRIMARY KEY (product_id, manager_id)",
		"CHECK (quantity >= 0)",
		"DROP TABLE IF EXISTS online_inventory",
	} {
		assert.True(t, strings.Contains(content, sub), "missing %q", sub)
	}
}
