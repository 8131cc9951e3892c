package inventory

import "errors"

// ErrRowMissing is wrapped when an update targets an online or store row that
// was never created. Updates never create inventory rows; only adding a
// product does.
var ErrRowMissing = errors.New("inventory row missing")

// ReasonRowMissing is the "reason" detail carried by ErrRowMissing failures.
const ReasonRowMissing = "inventory_row_missing"

// Allocation is the stock a single store (identified by its manager id) holds
// for a product. InitialQuantity is everything ever allocated to the store and
// never goes down; Quantity is what is left after in-store sales.
type Allocation struct {
	ManagerID       string `json:"manager_id"`
	Quantity        int    `json:"quantity"`
	InitialQuantity int    `json:"initial_quantity"`
}

// StoreProduct is one line of a store's availability report.
type StoreProduct struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Image          *string `json:"image"`
	AllocatedStock int     `json:"allocated_stock"`
	CurrentStock   int     `json:"current_stock"`
}
