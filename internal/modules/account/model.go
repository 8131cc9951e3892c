package account

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of account kinds. Each role lives in its own table.
type Role string

const (
	RoleConsumer           Role = "Consumer"
	RoleMarketplaceManager Role = "Marketplace Manager"
	RoleWarehouseManager   Role = "Warehouse Manager"
)

var roleTables = map[Role]string{
	RoleConsumer:           "consumers",
	RoleMarketplaceManager: "marketplace_managers",
	RoleWarehouseManager:   "warehouse_managers",
}

// roleSlugs maps the login path segment to its role.
var roleSlugs = map[string]Role{
	"consumer":            RoleConsumer,
	"marketplace_manager": RoleMarketplaceManager,
	"warehouse_manager":   RoleWarehouseManager,
}

func (r Role) Valid() bool {
	_, ok := roleTables[r]
	return ok
}

func (r Role) table() string { return roleTables[r] }

// RoleFromSlug resolves "consumer", "marketplace_manager" or "warehouse_manager".
func RoleFromSlug(slug string) (Role, bool) {
	r, ok := roleSlugs[slug]
	return r, ok
}

// Account is what a successful login reveals about the caller.
type Account struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	ManagerID string    `json:"manager_id,omitempty"`
}

type credentials struct {
	Account
	Email        string
	PasswordHash string
	Location     string
	CreatedAt    time.Time
}

type RegisterRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Role      Role   `json:"role" validate:"required"`
	Location  string `json:"location"`
	ManagerID string `json:"manager_id"`
}

// LoginRequest carries the role too because the login form posts it; the
// path segment decides which table is checked.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}
