package sales

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/journal"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
	"github.com/georgemunganga/smartsupply-backend/internal/metrics"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/catalog"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/inventory"
)

const dayLayout = "2006-01-02"

// Service records in-store sales against a store's allocation.
type Service interface {
	// RecordSale returns the committed result even when the journal append
	// fails; the error is then LOGGING_FAILURE.
	RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResult, error)
	QueryTodaySold(ctx context.Context, managerID, productID string) (int, error)
	TodaySales(ctx context.Context, managerID string) ([]DailySale, error)
}

type service struct {
	db      *database.DB
	journal journal.Appender
	metrics *metrics.Metrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(db *database.DB, j journal.Appender, m *metrics.Metrics, logg *logger.Logger) Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{db: db, journal: j, metrics: m, logg: logg, now: time.Now}
}

func (s *service) today() string {
	return s.now().Format(dayLayout)
}

func (s *service) RecordSale(ctx context.Context, req RecordSaleRequest) (*SaleResult, error) {
	req.ManagerID = strings.TrimSpace(req.ManagerID)
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ManagerID == "" || req.ProductID == "" {
		return nil, apperr.New(apperr.KindValidation, "manager_id and product_id are required")
	}
	if req.SoldQuantity <= 0 {
		return nil, apperr.New(apperr.KindValidation, "sold_quantity must be greater than 0")
	}

	ctx = s.logg.WithProductID(s.logg.WithManagerID(ctx, req.ManagerID), req.ProductID)
	at := s.now()

	var productName string
	var remaining int
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		product, err := catalog.NewPostgresRepository(tx).GetByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		productName = product.Name

		if err := NewPostgresRepository(tx).AddSold(ctx, req.ManagerID, req.ProductID, at.Format(dayLayout), req.SoldQuantity); err != nil {
			return err
		}
		remaining, err = inventory.NewPostgresRepository(tx).DecrementAllocation(ctx, req.ProductID, req.ManagerID, req.SoldQuantity)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInsufficientStock {
			s.metrics.IncSale(metrics.OutcomeInsufficientStock)
		} else {
			s.metrics.IncSale(metrics.OutcomeRejected)
		}
		s.logg.Warn(s.logg.WithError(ctx, err), "sales.record_failed")
		return nil, err
	}
	s.metrics.IncSale(metrics.OutcomeCommitted)

	result := &SaleResult{RemainingStock: remaining}
	entry := LogEntry{
		ManagerID:      req.ManagerID,
		ProductID:      req.ProductID,
		ProductName:    productName,
		SoldQuantity:   req.SoldQuantity,
		RemainingStock: remaining,
		Timestamp:      at,
	}
	if err := s.journal.Append(ctx, journal.StreamSales, at, entry); err != nil {
		s.metrics.IncJournalFailure(journal.StreamSales)
		s.logg.Error(ctx, "sales.journal_failed", err)
		return result, apperr.Wrap(apperr.KindLoggingFailure, err, "sale recorded but logging failed").
			WithDetails(map[string]any{"remaining_stock": remaining})
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"sold_quantity":   req.SoldQuantity,
		"remaining_stock": remaining,
	}), "sales.recorded")
	return result, nil
}

func (s *service) QueryTodaySold(ctx context.Context, managerID, productID string) (int, error) {
	managerID = strings.TrimSpace(managerID)
	productID = strings.TrimSpace(productID)
	if managerID == "" || productID == "" {
		return 0, apperr.New(apperr.KindValidation, "manager_id and product_id are required")
	}
	return NewPostgresRepository(s.db).SoldOn(ctx, managerID, productID, s.today())
}

func (s *service) TodaySales(ctx context.Context, managerID string) ([]DailySale, error) {
	managerID = strings.TrimSpace(managerID)
	if managerID == "" {
		return nil, apperr.New(apperr.KindValidation, "manager_id is required")
	}
	return NewPostgresRepository(s.db).SalesOn(ctx, managerID, s.today())
}
