package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

const dir = "migrations"

// goose keeps its dialect, filesystem and logger in package globals.
var gooseMu sync.Mutex

// Dialect maps a database/sql driver name to the goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "postgres", "pgx":
		return "postgres", nil
	case "sqlite3", "sqlite":
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported migration driver %q", driver)
	}
}

// Up applies every pending embedded migration.
func Up(ctx context.Context, db *sql.DB, driver string, logg *logger.Logger) error {
	return Run(ctx, db, driver, logg, "up")
}

// Run executes a goose command (up, down, status, version, reset, redo, up-to, down-to)
// against the embedded migrations.
func Run(ctx context.Context, db *sql.DB, driver string, logg *logger.Logger, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if logg == nil {
		logg = logger.Nop()
	}
	goose.SetLogger(logg)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
