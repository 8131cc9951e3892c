package inventory

import "context"

// Repository is the only writer of online_inventory and offline_inventory.
type Repository interface {
	CreateOnline(ctx context.Context, productID string, qty int) error
	// SetOnline overwrites the online quantity; ErrRowMissing if there is no row.
	SetOnline(ctx context.Context, productID string, qty int) error
	// OnlineQuantity reports the online quantity and whether the row exists.
	OnlineQuantity(ctx context.Context, productID string) (int, bool, error)
	// DecrementOnline subtracts qty only while enough stock remains.
	DecrementOnline(ctx context.Context, productID string, qty int) error

	// Allocate adds qty to both quantity and initial_quantity, creating the row if needed.
	Allocate(ctx context.Context, productID, managerID string, qty int) error
	// SetAllocation overwrites quantity and leaves initial_quantity alone.
	SetAllocation(ctx context.Context, productID, managerID string, qty int) error
	// DecrementAllocation subtracts qty from a store row and returns what is left.
	DecrementAllocation(ctx context.Context, productID, managerID string, qty int) (int, error)
	Allocations(ctx context.Context, productID string) ([]Allocation, error)
	AllocationsByProduct(ctx context.Context) (map[string][]Allocation, error)
	StoreAvailability(ctx context.Context, managerID string) ([]StoreProduct, error)

	DeleteForProduct(ctx context.Context, productID string) error
}
