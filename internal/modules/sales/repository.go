package sales

import "context"

// Repository keeps per store, product and day sold totals. day is YYYY-MM-DD.
type Repository interface {
	// AddSold accumulates qty onto the day's total, creating it on first sale.
	AddSold(ctx context.Context, managerID, productID, day string, qty int) error
	SoldOn(ctx context.Context, managerID, productID, day string) (int, error)
	SalesOn(ctx context.Context, managerID, day string) ([]DailySale, error)
}
