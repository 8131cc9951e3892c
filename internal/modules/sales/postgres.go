package sales

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgemunganga/smartsupply-backend/internal/database"
)

type postgres struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgres{db: db} }

func (r *postgres) AddSold(ctx context.Context, managerID, productID, day string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO marketplace_sales (manager_id, product_id, sale_date, sold_quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (manager_id, product_id, sale_date) DO UPDATE SET
			sold_quantity = marketplace_sales.sold_quantity + excluded.sold_quantity`,
		managerID, productID, day, qty)
	return database.Persistence(err, "record marketplace sale")
}

func (r *postgres) SoldOn(ctx context.Context, managerID, productID, day string) (int, error) {
	var sold int
	err := r.db.QueryRowContext(ctx, `
		SELECT sold_quantity FROM marketplace_sales
		WHERE manager_id = $1 AND product_id = $2 AND sale_date = $3`,
		managerID, productID, day).Scan(&sold)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, database.Persistence(err, "load marketplace sale")
	}
	return sold, nil
}

func (r *postgres) SalesOn(ctx context.Context, managerID, day string) ([]DailySale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, sold_quantity FROM marketplace_sales
		WHERE manager_id = $1 AND sale_date = $2
		ORDER BY product_id`, managerID, day)
	if err != nil {
		return nil, database.Persistence(err, "list marketplace sales")
	}
	defer rows.Close()
	out := []DailySale{}
	for rows.Next() {
		var s DailySale
		if err := rows.Scan(&s.ProductID, &s.QuantitySold); err != nil {
			return nil, database.Persistence(err, "scan marketplace sale")
		}
		out = append(out, s)
	}
	return out, database.Persistence(rows.Err(), "list marketplace sales")
}
