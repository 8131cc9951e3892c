package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/smartsupply-backend/internal/modules/inventory"
)

// Product is a catalog entry. The id is chosen by the warehouse manager.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	TotalQuantity int             `json:"total_quantity"`
	Image         *string         `json:"image_base64"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductView is the warehouse listing row: the product, its online stock and
// every store allocation, plus what is still unallocated.
type ProductView struct {
	Product
	OnlineQuantity          int                    `json:"online_quantity"`
	OfflineStoreAllocations []inventory.Allocation `json:"offline_store_allocations"`
	OfflineLeft             int                    `json:"offline_left"`
}

// ConsumerProduct is what the storefront shows.
type ConsumerProduct struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Image          *string         `json:"image"`
	Price          decimal.Decimal `json:"price"`
	OnlineQuantity int             `json:"online_quantity"`
}

type AllocationInput struct {
	ManagerID string `json:"manager_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
}

type AddProductRequest struct {
	ProductID          string            `json:"product_id" validate:"required,max=64"`
	Name               string            `json:"name" validate:"required,max=255"`
	TotalQuantity      int               `json:"total_quantity" validate:"gte=0"`
	OnlineQuantity     int               `json:"online_quantity" validate:"gte=0"`
	Price              *decimal.Decimal  `json:"price"`
	OfflineAllocations []AllocationInput `json:"offline_allocations" validate:"dive"`
	ImageBase64        *string           `json:"image_base64"`
}

// UpdateProductRequest sets absolute values. An empty name or a missing image
// keeps what is stored; price is always required.
type UpdateProductRequest struct {
	ProductID          string            `json:"product_id" validate:"required,max=64"`
	Name               string            `json:"name" validate:"max=255"`
	TotalQuantity      int               `json:"total_quantity" validate:"gte=0"`
	OnlineQuantity     int               `json:"online_quantity" validate:"gte=0"`
	Price              *decimal.Decimal  `json:"price"`
	OfflineAllocations []AllocationInput `json:"offline_allocations" validate:"dive"`
	ImageBase64        *string           `json:"image_base64"`
}

// offlineLeft is total minus online minus every store's current quantity.
func offlineLeft(total, online int, allocations []inventory.Allocation) int {
	left := total - online
	for _, a := range allocations {
		left -= a.Quantity
	}
	return left
}
