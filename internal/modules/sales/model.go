package sales

import "time"

type RecordSaleRequest struct {
	ManagerID    string `json:"manager_id" validate:"required"`
	ProductID    string `json:"product_id" validate:"required"`
	SoldQuantity int    `json:"sold_quantity" validate:"gt=0"`
}

type SaleResult struct {
	RemainingStock int `json:"remaining_stock"`
}

// DailySale is one product's running total for a store and day.
type DailySale struct {
	ProductID    string `json:"product_id"`
	QuantitySold int    `json:"quantity_sold"`
}

// LogEntry is the audit record appended after a sale commits.
type LogEntry struct {
	ManagerID      string    `json:"manager_id"`
	ProductID      string    `json:"product_id"`
	ProductName    string    `json:"product_name"`
	SoldQuantity   int       `json:"sold_quantity"`
	RemainingStock int       `json:"remaining_stock"`
	Timestamp      time.Time `json:"timestamp"`
}
