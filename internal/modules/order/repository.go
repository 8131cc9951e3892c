package order

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, item *Item) error
	// GetOrder loads the header and its items.
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	// ListByConsumer returns headers only, newest first.
	ListByConsumer(ctx context.Context, consumerID uuid.UUID) ([]Order, error)
}
