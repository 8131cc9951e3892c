package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
)

const dayLayout = "2006-01-02"

type postgres struct{ db database.DBTX }

func NewPostgresRepository(db database.DBTX) Repository { return &postgres{db: db} }

func (r *postgres) InsertOrder(ctx context.Context, o *Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders (id, consumer_id, name, address, payment_mode, total_amount, order_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.ConsumerID, o.Name, o.Address, o.PaymentMode, o.TotalAmount, o.OrderDate.Format(dayLayout))
	return database.Persistence(err, "insert order")
}

func (r *postgres) InsertItem(ctx context.Context, item *Item) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, price_at_order)
		VALUES ($1, $2, $3, $4, $5)`,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.PriceAtOrder)
	return database.Persistence(err, "insert order item")
}

func (r *postgres) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o := &Order{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, consumer_id, name, address, payment_mode, total_amount, order_date, created_at
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.ConsumerID, &o.Name, &o.Address, &o.PaymentMode, &o.TotalAmount, &o.OrderDate, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.KindNotFound, "order %s not found", id)
	}
	if err != nil {
		return nil, database.Persistence(err, "load order")
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price_at_order
		FROM order_items WHERE order_id = $1
		ORDER BY product_id, id`, id)
	if err != nil {
		return nil, database.Persistence(err, "load order items")
	}
	defer rows.Close()

	o.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, database.Persistence(err, "scan order item")
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Persistence(err, "load order items")
	}
	return o, nil
}

func (r *postgres) ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, consumer_id, name, address, payment_mode, total_amount, order_date, created_at
		FROM orders WHERE consumer_id = $1
		ORDER BY created_at DESC, id`, consumerID)
	if err != nil {
		return nil, database.Persistence(err, "list orders")
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ConsumerID, &o.Name, &o.Address, &o.PaymentMode, &o.TotalAmount, &o.OrderDate, &o.CreatedAt); err != nil {
			return nil, database.Persistence(err, "scan order")
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, database.Persistence(err, "list orders")
	}
	return orders, nil
}
