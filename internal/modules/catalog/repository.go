package catalog

import "context"

// ProductRow is a product joined with its online quantity (0 when the row is absent).
type ProductRow struct {
	Product
	OnlineQuantity int
}

// Repository stores products. Inventory rows belong to the inventory package.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	Update(ctx context.Context, p *Product) error
	// Search matches name or id case-insensitively; an empty term lists everything.
	Search(ctx context.Context, term string) ([]ProductRow, error)
	// DeleteDependents removes the order lines and store sales that reference the product.
	DeleteDependents(ctx context.Context, id string) error
	// Delete removes the product row; inventory rows must already be gone.
	Delete(ctx context.Context, id string) error
}
