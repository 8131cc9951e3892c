package database

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/config"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps the pooled connection shared by every module.
type DB struct {
	*sql.DB
	driver string
}

// Open connects with the configured driver, applies pool settings and pings.
func Open(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", driver), "database connection established")
	}
	return &DB{DB: sqlDB, driver: driver}, nil
}

// Wrap adopts an already opened pool.
func Wrap(sqlDB *sql.DB, driver string) *DB {
	return &DB{DB: sqlDB, driver: driver}
}

// Driver reports the database/sql driver name the pool was opened with.
func (d *DB) Driver() string {
	return d.driver
}

// Ping verifies the datasource is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.PingContext(ctx)
}

// WithTx runs fn inside a transaction. It commits only when fn returns nil and
// rolls back on error or panic. Errors returned by fn are passed through untouched.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, err, "begin transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.KindPersistence, err, "commit transaction")
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique/primary key violation on
// either PostgreSQL (SQLSTATE 23505) or SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if stdErrors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// Persistence wraps an unexpected driver error.
func Persistence(err error, op string) error {
	if err == nil {
		return nil
	}
	if apperr.As(err) != nil {
		return err
	}
	return apperr.Wrap(apperr.KindPersistence, err, op)
}
