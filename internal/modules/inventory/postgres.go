package inventory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
)

type postgres struct{ db database.DBTX }

// NewPostgresRepository accepts the pool or a transaction.
func NewPostgresRepository(db database.DBTX) Repository { return &postgres{db: db} }

func (r *postgres) CreateOnline(ctx context.Context, productID string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO online_inventory (product_id, quantity) VALUES ($1, $2)`,
		productID, qty)
	if database.IsUniqueViolation(err) {
		return apperr.Newf(apperr.KindConflict, "online inventory for product %s already exists", productID)
	}
	return database.Persistence(err, "insert online inventory")
}

func (r *postgres) SetOnline(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE online_inventory SET quantity = $1 WHERE product_id = $2`,
		qty, productID)
	if err != nil {
		return database.Persistence(err, "update online inventory")
	}
	if n, err := res.RowsAffected(); err != nil {
		return database.Persistence(err, "update online inventory")
	} else if n == 0 {
		return apperr.Wrap(apperr.KindValidation, ErrRowMissing, "online inventory missing for product "+productID).
			WithDetails(map[string]any{"reason": ReasonRowMissing, "product_id": productID})
	}
	return nil
}

func (r *postgres) OnlineQuantity(ctx context.Context, productID string) (int, bool, error) {
	var qty int
	err := r.db.QueryRowContext(ctx, `
		SELECT quantity FROM online_inventory WHERE product_id = $1`, productID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, database.Persistence(err, "load online inventory")
	}
	return qty, true, nil
}

// The quantity guard and the subtraction are one statement, so two concurrent
// transactions can never both pass the check on the same units.
func (r *postgres) DecrementOnline(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE online_inventory SET quantity = quantity - $1
		WHERE product_id = $2 AND quantity >= $1`,
		qty, productID)
	if err != nil {
		return database.Persistence(err, "decrement online inventory")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.Persistence(err, "decrement online inventory")
	}
	if n == 0 {
		return apperr.Newf(apperr.KindInsufficientStock, "insufficient stock for product %s", productID).
			WithDetails(map[string]any{"product_id": productID, "requested": qty})
	}
	return nil
}

func (r *postgres) Allocate(ctx context.Context, productID, managerID string, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO offline_inventory (product_id, manager_id, quantity, initial_quantity)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (product_id, manager_id) DO UPDATE SET
			quantity = offline_inventory.quantity + excluded.quantity,
			initial_quantity = offline_inventory.initial_quantity + excluded.initial_quantity`,
		productID, managerID, qty)
	return database.Persistence(err, "allocate offline inventory")
}

func (r *postgres) SetAllocation(ctx context.Context, productID, managerID string, qty int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE offline_inventory SET quantity = $1
		WHERE product_id = $2 AND manager_id = $3`,
		qty, productID, managerID)
	if err != nil {
		return database.Persistence(err, "update offline inventory")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return database.Persistence(err, "update offline inventory")
	}
	if n == 0 {
		return apperr.Wrap(apperr.KindValidation, ErrRowMissing,
			"offline inventory missing for product "+productID+" at store "+managerID).
			WithDetails(map[string]any{"reason": ReasonRowMissing, "product_id": productID, "manager_id": managerID})
	}
	return nil
}

func (r *postgres) DecrementAllocation(ctx context.Context, productID, managerID string, qty int) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE offline_inventory SET quantity = quantity - $1
		WHERE product_id = $2 AND manager_id = $3 AND quantity >= $1`,
		qty, productID, managerID)
	if err != nil {
		return 0, database.Persistence(err, "decrement offline inventory")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, database.Persistence(err, "decrement offline inventory")
	}

	var remaining int
	err = r.db.QueryRowContext(ctx, `
		SELECT quantity FROM offline_inventory WHERE product_id = $1 AND manager_id = $2`,
		productID, managerID).Scan(&remaining)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, apperr.Newf(apperr.KindNotFound, "product %s is not allocated to store %s", productID, managerID)
	case err != nil:
		return 0, database.Persistence(err, "load offline inventory")
	case n == 0:
		return remaining, apperr.Newf(apperr.KindInsufficientStock, "insufficient stock for product %s at store %s", productID, managerID).
			WithDetails(map[string]any{"product_id": productID, "requested": qty, "available": remaining})
	}
	return remaining, nil
}

func (r *postgres) Allocations(ctx context.Context, productID string) ([]Allocation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT manager_id, quantity, initial_quantity
		FROM offline_inventory WHERE product_id = $1 ORDER BY manager_id`, productID)
	if err != nil {
		return nil, database.Persistence(err, "list offline inventory")
	}
	defer rows.Close()
	out := []Allocation{}
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ManagerID, &a.Quantity, &a.InitialQuantity); err != nil {
			return nil, database.Persistence(err, "scan offline inventory")
		}
		out = append(out, a)
	}
	return out, database.Persistence(rows.Err(), "list offline inventory")
}

func (r *postgres) AllocationsByProduct(ctx context.Context) (map[string][]Allocation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, manager_id, quantity, initial_quantity
		FROM offline_inventory ORDER BY product_id, manager_id`)
	if err != nil {
		return nil, database.Persistence(err, "list offline inventory")
	}
	defer rows.Close()
	out := map[string][]Allocation{}
	for rows.Next() {
		var productID string
		var a Allocation
		if err := rows.Scan(&productID, &a.ManagerID, &a.Quantity, &a.InitialQuantity); err != nil {
			return nil, database.Persistence(err, "scan offline inventory")
		}
		out[productID] = append(out[productID], a)
	}
	return out, database.Persistence(rows.Err(), "list offline inventory")
}

func (r *postgres) StoreAvailability(ctx context.Context, managerID string) ([]StoreProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.image_base64, o.initial_quantity, o.quantity
		FROM offline_inventory o
		JOIN products p ON p.id = o.product_id
		WHERE o.manager_id = $1
		ORDER BY p.name, p.id`, managerID)
	if err != nil {
		return nil, database.Persistence(err, "store availability")
	}
	defer rows.Close()
	out := []StoreProduct{}
	for rows.Next() {
		var sp StoreProduct
		var image sql.NullString
		if err := rows.Scan(&sp.ID, &sp.Name, &image, &sp.AllocatedStock, &sp.CurrentStock); err != nil {
			return nil, database.Persistence(err, "scan store availability")
		}
		if image.Valid {
			sp.Image = &image.String
		}
		out = append(out, sp)
	}
	return out, database.Persistence(rows.Err(), "store availability")
}

func (r *postgres) DeleteForProduct(ctx context.Context, productID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM online_inventory WHERE product_id = $1`, productID); err != nil {
		return database.Persistence(err, "delete online inventory")
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offline_inventory WHERE product_id = $1`, productID); err != nil {
		return database.Persistence(err, "delete offline inventory")
	}
	return nil
}
