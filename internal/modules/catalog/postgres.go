package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
)

type postgres struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgres{db: db} }

func (r *postgres) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, price, total_quantity, image_base64)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Price, p.TotalQuantity, nullString(p.Image))
	if database.IsUniqueViolation(err) {
		return apperr.Newf(apperr.KindConflict, "product %s already exists", p.ID).
			WithDetails(map[string]any{"product_id": p.ID})
	}
	return database.Persistence(err, "insert product")
}

func (r *postgres) GetByID(ctx context.Context, id string) (*Product, error) {
	p := &Product{}
	var image sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, price, total_quantity, image_base64, created_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.TotalQuantity, &image, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "product %s not found", id)
	}
	if err != nil {
		return nil, database.Persistence(err, "load product")
	}
	if image.Valid {
		p.Image = &image.String
	}
	return p, nil
}

func (r *postgres) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET name = $1, price = $2, total_quantity = $3, image_base64 = $4
		WHERE id = $5`,
		p.Name, p.Price, p.TotalQuantity, nullString(p.Image), p.ID)
	if err != nil {
		return database.Persistence(err, "update product")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.Persistence(err, "update product")
	}
	if n == 0 {
		return apperr.Newf(apperr.KindNotFound, "product %s not found", p.ID)
	}
	return nil
}

func (r *postgres) Search(ctx context.Context, term string) ([]ProductRow, error) {
	query := `
		SELECT p.id, p.name, p.price, p.total_quantity, p.image_base64, p.created_at,
		       COALESCE(oi.quantity, 0)
		FROM products p
		LEFT JOIN online_inventory oi ON oi.product_id = p.id`
	var args []any
	if term = strings.TrimSpace(term); term != "" {
		query += ` WHERE LOWER(p.name) LIKE $1 ESCAPE '\' OR LOWER(p.id) LIKE $1 ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	query += ` ORDER BY p.created_at, p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, database.Persistence(err, "search products")
	}
	defer rows.Close()

	out := []ProductRow{}
	for rows.Next() {
		var row ProductRow
		var image sql.NullString
		if err := rows.Scan(&row.ID, &row.Name, &row.Price, &row.TotalQuantity, &image,
			&row.CreatedAt, &row.OnlineQuantity); err != nil {
			return nil, database.Persistence(err, "scan product")
		}
		if image.Valid {
			row.Image = &image.String
		}
		out = append(out, row)
	}
	return out, database.Persistence(rows.Err(), "search products")
}

func (r *postgres) DeleteDependents(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE product_id = $1`, id); err != nil {
		return database.Persistence(err, "delete order items")
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM marketplace_sales WHERE product_id = $1`, id); err != nil {
		return database.Persistence(err, "delete marketplace sales")
	}
	return nil
}

func (r *postgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return database.Persistence(err, "delete product")
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
