package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
)

type postgres struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgres{db: db} }

func (r *postgres) Create(ctx context.Context, role Role, c *credentials) error {
	var err error
	if role == RoleMarketplaceManager {
		_, err = r.db.ExecContext(ctx, `
			INSERT INTO marketplace_managers (id, name, email, password_hash, location, manager_id)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.Name, c.Email, c.PasswordHash, c.Location, c.ManagerID)
	} else {
		// table names come from roleTables, never from input
		_, err = r.db.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, name, email, password_hash)
			VALUES ($1, $2, $3, $4)`, role.table()),
			c.ID, c.Name, c.Email, c.PasswordHash)
	}
	if database.IsUniqueViolation(err) {
		return apperr.Newf(apperr.KindConflict, "%s already exists", role)
	}
	return database.Persistence(err, "insert account")
}

func (r *postgres) FindByEmail(ctx context.Context, role Role, email string) (*credentials, error) {
	c := &credentials{}
	c.Role = role

	var err error
	if role == RoleMarketplaceManager {
		err = r.db.QueryRowContext(ctx, `
			SELECT id, name, email, password_hash, location, manager_id, created_at
			FROM marketplace_managers WHERE email = $1`, email).
			Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.Location, &c.ManagerID, &c.CreatedAt)
	} else {
		err = r.db.QueryRowContext(ctx, fmt.Sprintf(`
			SELECT id, name, email, password_hash, created_at
			FROM %s WHERE email = $1`, role.table()), email).
			Scan(&c.ID, &c.Name, &c.Email, &c.PasswordHash, &c.CreatedAt)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, database.Persistence(err, "load account")
	}
	return c, nil
}
