package inventory

import (
	"context"
	"strings"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
)

// Service exposes the read side of the ledger. Writes happen through the
// catalog, sales and order services inside their own transactions.
type Service interface {
	StoreAvailability(ctx context.Context, managerID string) ([]StoreProduct, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) StoreAvailability(ctx context.Context, managerID string) ([]StoreProduct, error) {
	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return nil, apperr.New(apperr.KindValidation, "manager_id is required")
	}
	return s.repo.StoreAvailability(ctx, managerID)
}
