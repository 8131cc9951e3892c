package catalog

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/inventory"
)

// Service manages products together with their inventory rows. Every write
// runs in one transaction so the ledger never shows half a product.
type Service interface {
	AddProduct(ctx context.Context, req AddProductRequest) error
	UpdateProduct(ctx context.Context, req UpdateProductRequest) error
	DeleteProduct(ctx context.Context, id string) error
	ListAvailability(ctx context.Context, search string) ([]ProductView, error)
	ConsumerAvailability(ctx context.Context) ([]ConsumerProduct, error)
}

type service struct {
	db   *database.DB
	logg *logger.Logger
}

func NewService(db *database.DB, logg *logger.Logger) Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{db: db, logg: logg}
}

func (s *service) AddProduct(ctx context.Context, req AddProductRequest) error {
	req.ProductID = strings.TrimSpace(req.ProductID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ProductID == "" || req.Name == "" {
		return apperr.New(apperr.KindValidation, "product_id and name are required")
	}
	if err := checkQuantities(req.TotalQuantity, req.OnlineQuantity, req.Price, req.OfflineAllocations); err != nil {
		return err
	}

	// Allocations for the same store in one request accumulate, so the sum is
	// exactly what the ledger will hold once the transaction commits.
	requested := make([]inventory.Allocation, 0, len(req.OfflineAllocations))
	for _, a := range req.OfflineAllocations {
		requested = append(requested, inventory.Allocation{ManagerID: a.ManagerID, Quantity: a.Quantity})
	}
	if left := offlineLeft(req.TotalQuantity, req.OnlineQuantity, requested); left < 0 {
		return overAllocated(req.ProductID, left)
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		products := NewPostgresRepository(tx)
		ledger := inventory.NewPostgresRepository(tx)

		if err := products.Create(ctx, &Product{
			ID:            req.ProductID,
			Name:          req.Name,
			Price:         req.Price.Round(2),
			TotalQuantity: req.TotalQuantity,
			Image:         req.ImageBase64,
		}); err != nil {
			return err
		}
		if err := ledger.CreateOnline(ctx, req.ProductID, req.OnlineQuantity); err != nil {
			return err
		}
		for _, a := range req.OfflineAllocations {
			if err := ledger.Allocate(ctx, req.ProductID, strings.TrimSpace(a.ManagerID), a.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"product_id":  req.ProductID,
		"allocations": len(req.OfflineAllocations),
	}), "catalog.product_added")
	return nil
}

func (s *service) UpdateProduct(ctx context.Context, req UpdateProductRequest) error {
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		return apperr.New(apperr.KindValidation, "product_id is required")
	}
	if err := checkQuantities(req.TotalQuantity, req.OnlineQuantity, req.Price, req.OfflineAllocations); err != nil {
		return err
	}

	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		products := NewPostgresRepository(tx)
		ledger := inventory.NewPostgresRepository(tx)

		p, err := products.GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if name := strings.TrimSpace(req.Name); name != "" {
			p.Name = name
		}
		if req.ImageBase64 != nil {
			p.Image = req.ImageBase64
		}
		p.Price = req.Price.Round(2)
		p.TotalQuantity = req.TotalQuantity
		if err := products.Update(ctx, p); err != nil {
			return err
		}

		if err := ledger.SetOnline(ctx, p.ID, req.OnlineQuantity); err != nil {
			return err
		}
		for _, a := range req.OfflineAllocations {
			if err := ledger.SetAllocation(ctx, p.ID, strings.TrimSpace(a.ManagerID), a.Quantity); err != nil {
				return err
			}
		}

		// Stores not named in the request keep their quantity, so the check
		// has to read the whole ledger back.
		allocations, err := ledger.Allocations(ctx, p.ID)
		if err != nil {
			return err
		}
		if left := offlineLeft(p.TotalQuantity, req.OnlineQuantity, allocations); left < 0 {
			return overAllocated(p.ID, left)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logg.Info(s.logg.WithProductID(ctx, req.ProductID), "catalog.product_updated")
	return nil
}

// DeleteProduct removes children before the parent. Unknown ids succeed.
func (s *service) DeleteProduct(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.New(apperr.KindValidation, "product_id is required")
	}
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		products := NewPostgresRepository(tx)
		if err := products.DeleteDependents(ctx, id); err != nil {
			return err
		}
		if err := inventory.NewPostgresRepository(tx).DeleteForProduct(ctx, id); err != nil {
			return err
		}
		return products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithProductID(ctx, id), "catalog.product_deleted")
	return nil
}

func (s *service) ListAvailability(ctx context.Context, search string) ([]ProductView, error) {
	rows, err := NewPostgresRepository(s.db).Search(ctx, search)
	if err != nil {
		return nil, err
	}
	allocations, err := inventory.NewPostgresRepository(s.db).AllocationsByProduct(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		allocs := allocations[row.ID]
		if allocs == nil {
			allocs = []inventory.Allocation{}
		}
		views = append(views, ProductView{
			Product:                 row.Product,
			OnlineQuantity:          row.OnlineQuantity,
			OfflineStoreAllocations: allocs,
			OfflineLeft:             offlineLeft(row.TotalQuantity, row.OnlineQuantity, allocs),
		})
	}
	return views, nil
}

func (s *service) ConsumerAvailability(ctx context.Context) ([]ConsumerProduct, error) {
	rows, err := NewPostgresRepository(s.db).Search(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]ConsumerProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, ConsumerProduct{
			ID:             row.ID,
			Name:           row.Name,
			Image:          row.Image,
			Price:          row.Price,
			OnlineQuantity: row.OnlineQuantity,
		})
	}
	return out, nil
}

func checkQuantities(total, online int, price *decimal.Decimal, allocations []AllocationInput) error {
	details := map[string]string{}
	if total < 0 {
		details["total_quantity"] = "must be at least 0"
	}
	if online < 0 {
		details["online_quantity"] = "must be at least 0"
	}
	switch {
	case price == nil:
		details["price"] = "is required"
	case price.IsNegative():
		details["price"] = "must be at least 0"
	}
	for _, a := range allocations {
		if strings.TrimSpace(a.ManagerID) == "" {
			details["offline_allocations.manager_id"] = "is required"
		}
		if a.Quantity < 0 {
			details["offline_allocations.quantity"] = "must be at least 0"
		}
	}
	if len(details) > 0 {
		return apperr.New(apperr.KindValidation, "validation failed").WithDetails(details)
	}
	return nil
}

// ReasonOverAllocated marks a rejected add or update whose online and store
// quantities exceed the product total.
const ReasonOverAllocated = "over_allocated"

func overAllocated(productID string, left int) error {
	return apperr.Newf(apperr.KindValidation,
		"online and store quantities exceed total_quantity for product %s", productID).
		WithDetails(map[string]any{"reason": ReasonOverAllocated, "product_id": productID, "offline_left": left})
}
