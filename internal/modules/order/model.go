package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stage names the steps of placing an order; each transition is logged.
type Stage string

const (
	StageValidating Stage = "validating"
	StageCommitting Stage = "committing"
	StageCommitted  Stage = "committed"
	StageRolledBack Stage = "rolled_back"
)

// CartLine is one product line of a consumer's cart. Name is what the
// storefront displayed and is only carried into the journal.
type CartLine struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type PlaceOrderRequest struct {
	ConsumerID  string     `json:"consumer_id" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	Address     string     `json:"address" validate:"required"`
	PaymentMode string     `json:"payment_mode" validate:"required"`
	Cart        []CartLine `json:"cart" validate:"min=1,dive"`
}

type OrderResult struct {
	OrderID uuid.UUID       `json:"order_id"`
	Total   decimal.Decimal `json:"total"`
}

type Order struct {
	ID          uuid.UUID       `json:"id"`
	ConsumerID  uuid.UUID       `json:"consumer_id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	PaymentMode string          `json:"payment_mode"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	OrderDate   time.Time       `json:"order_date"`
	CreatedAt   time.Time       `json:"created_at"`
	Items       []Item          `json:"items"`
}

// Item is a committed order line. PriceAtOrder is the unit price charged,
// kept even if the catalogue price changes later.
type Item struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"price_at_order"`
}

// LogEntry is the audit record appended after an order commits.
type LogEntry struct {
	ConsumerID  string          `json:"consumer_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	PaymentMode string          `json:"payment_mode"`
	Items       []CartLine      `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Timestamp   time.Time       `json:"timestamp"`
}
