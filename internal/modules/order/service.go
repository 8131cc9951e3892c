package order

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/journal"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
	"github.com/georgemunganga/smartsupply-backend/internal/metrics"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/catalog"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/inventory"
)

// Service places consumer orders against online stock.
type Service interface {
	// PlaceOrder commits the order, its items and the online stock decrements
	// as one unit. When only the journal append fails the committed result is
	// returned together with a LOGGING_FAILURE error.
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListConsumerOrders(ctx context.Context, consumerID string) ([]Order, error)
}

type service struct {
	db                  *database.DB
	journal             journal.Appender
	metrics             *metrics.Metrics
	logg                *logger.Logger
	enforceCatalogPrice bool
	now                 func() time.Time
	newID               func() uuid.UUID
}

func NewService(db *database.DB, j journal.Appender, m *metrics.Metrics, logg *logger.Logger, enforceCatalogPrice bool) Service {
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		db:                  db,
		journal:             j,
		metrics:             m,
		logg:                logg,
		enforceCatalogPrice: enforceCatalogPrice,
		now:                 time.Now,
		newID:               uuid.New,
	}
}

func (s *service) stage(ctx context.Context, st Stage) {
	s.logg.Info(s.logg.WithField(ctx, "stage", string(st)), "order.stage")
}

func (s *service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResult, error) {
	ctx = s.logg.WithConsumerID(ctx, req.ConsumerID)
	s.stage(ctx, StageValidating)

	consumerID, total, err := s.validate(ctx, &req)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInsufficientStock {
			s.metrics.IncOrder(metrics.OutcomeInsufficientStock)
		} else {
			s.metrics.IncOrder(metrics.OutcomeRejected)
		}
		s.logg.Warn(s.logg.WithError(ctx, err), "order.rejected")
		return nil, err
	}

	at := s.now()
	o := &Order{
		ID:          s.newID(),
		ConsumerID:  consumerID,
		Name:        req.Name,
		Address:     req.Address,
		PaymentMode: req.PaymentMode,
		TotalAmount: total,
		OrderDate:   at,
	}
	ctx = s.logg.WithOrderID(ctx, o.ID.String())
	s.stage(ctx, StageCommitting)

	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		orders := NewPostgresRepository(tx)
		stock := inventory.NewPostgresRepository(tx)
		if err := orders.InsertOrder(ctx, o); err != nil {
			return err
		}
		for _, line := range req.Cart {
			if err := orders.InsertItem(ctx, &Item{
				ID:           s.newID(),
				OrderID:      o.ID,
				ProductID:    line.ProductID,
				Quantity:     line.Quantity,
				PriceAtOrder: line.Price,
			}); err != nil {
				return err
			}
			if err := stock.DecrementOnline(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInsufficientStock {
			s.metrics.IncOrder(metrics.OutcomeInsufficientStock)
		} else {
			s.metrics.IncOrder(metrics.OutcomeRolledBack)
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"stage": string(StageRolledBack),
			"error": err.Error(),
		}), "order.stage")
		return nil, err
	}
	s.metrics.IncOrder(metrics.OutcomeCommitted)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"stage": string(StageCommitted),
		"total": total.StringFixed(2),
	}), "order.stage")

	result := &OrderResult{OrderID: o.ID, Total: total}
	entry := LogEntry{
		ConsumerID:  consumerID.String(),
		OrderID:     o.ID,
		Name:        req.Name,
		Address:     req.Address,
		PaymentMode: req.PaymentMode,
		Items:       req.Cart,
		Total:       total,
		Timestamp:   at,
	}
	if err := s.journal.Append(ctx, journal.StreamOrders, at, entry); err != nil {
		s.metrics.IncJournalFailure(journal.StreamOrders)
		s.logg.Error(ctx, "order.journal_failed", err)
		return result, apperr.Wrap(apperr.KindLoggingFailure, err, "order placed but logging failed").
			WithDetails(map[string]any{"order_id": o.ID.String(), "total": total.StringFixed(2)})
	}
	return result, nil
}

// validate normalises req in place and returns the parsed consumer id and the
// order total. Stock is read outside any transaction; the conditional
// decrement at commit time is what actually guards against overselling.
func (s *service) validate(ctx context.Context, req *PlaceOrderRequest) (uuid.UUID, decimal.Decimal, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.PaymentMode = strings.TrimSpace(req.PaymentMode)
	if req.Name == "" || req.Address == "" || req.PaymentMode == "" {
		return uuid.Nil, decimal.Zero, apperr.New(apperr.KindValidation, "name, address and payment_mode are required")
	}
	consumerID, err := uuid.Parse(strings.TrimSpace(req.ConsumerID))
	if err != nil {
		return uuid.Nil, decimal.Zero, apperr.New(apperr.KindValidation, "consumer_id must be a valid id").
			WithDetails(map[string]any{"consumer_id": req.ConsumerID})
	}
	if len(req.Cart) == 0 {
		return uuid.Nil, decimal.Zero, apperr.New(apperr.KindValidation, "cart must contain at least one item")
	}

	requested := make(map[string]int, len(req.Cart))
	var productIDs []string
	total := decimal.Zero
	for i := range req.Cart {
		line := &req.Cart[i]
		line.ProductID = strings.TrimSpace(line.ProductID)
		if line.ProductID == "" {
			return uuid.Nil, decimal.Zero, apperr.New(apperr.KindValidation, "product_id is required for every cart item")
		}
		if line.Quantity <= 0 {
			return uuid.Nil, decimal.Zero, apperr.Newf(apperr.KindValidation, "quantity must be greater than 0 for product %s", line.ProductID).
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if line.Price.IsNegative() {
			return uuid.Nil, decimal.Zero, apperr.Newf(apperr.KindValidation, "price must not be negative for product %s", line.ProductID).
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if _, seen := requested[line.ProductID]; !seen {
			productIDs = append(productIDs, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	stock := inventory.NewPostgresRepository(s.db)
	products := catalog.NewPostgresRepository(s.db)
	for _, id := range productIDs {
		if s.enforceCatalogPrice {
			if err := checkPrice(ctx, products, id, req.Cart); err != nil {
				return uuid.Nil, decimal.Zero, err
			}
		}
		available, ok, err := stock.OnlineQuantity(ctx, id)
		if err != nil {
			return uuid.Nil, decimal.Zero, err
		}
		if !ok {
			return uuid.Nil, decimal.Zero, apperr.Newf(apperr.KindNotFound, "product %s not found", id).
				WithDetails(map[string]any{"product_id": id})
		}
		if available < requested[id] {
			return uuid.Nil, decimal.Zero, apperr.Newf(apperr.KindInsufficientStock, "insufficient stock for product %s", id).
				WithDetails(map[string]any{
					"product_id": id,
					"requested":  requested[id],
					"available":  available,
				})
		}
	}
	return consumerID, total.Round(2), nil
}

func checkPrice(ctx context.Context, products catalog.Repository, productID string, cart []CartLine) error {
	p, err := products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	for _, line := range cart {
		if line.ProductID == productID && !line.Price.Equal(p.Price) {
			return apperr.Newf(apperr.KindValidation, "price for product %s does not match the catalogue", productID).
				WithDetails(map[string]any{"product_id": productID, "price": p.Price.StringFixed(2)})
		}
	}
	return nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	orderID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apperr.Newf(apperr.KindNotFound, "order %s not found", id)
	}
	return NewPostgresRepository(s.db).GetOrder(ctx, orderID)
}

func (s *service) ListConsumerOrders(ctx context.Context, consumerID string) ([]Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(consumerID))
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "consumer_id must be a valid id")
	}
	return NewPostgresRepository(s.db).ListByConsumer(ctx, id)
}
