// Package routes assembles the HTTP surface from the module handlers.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/api/middleware"
	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/config"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/journal"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
	"github.com/georgemunganga/smartsupply-backend/internal/metrics"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/account"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/catalog"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/inventory"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/order"
	"github.com/georgemunganga/smartsupply-backend/internal/modules/sales"
	supplyredis "github.com/georgemunganga/smartsupply-backend/internal/redis"
)

// Deps are the shared resources every handler is built from. Idempotency may
// be nil, which turns the Idempotency-Key header into a no-op.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.DB
	Journal     journal.Appender
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Idempotency supplyredis.IdempotencyStore
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(d.Logger))
	r.Use(middleware.Logging(d.Logger, d.Metrics))
	r.Use(middleware.Recoverer(d.Logger))
	r.Use(middleware.CORS(d.Config.CORS.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := d.DB.Ping(req.Context()); err != nil {
			api.WriteError(req.Context(), d.Logger, w, apperr.Wrap(apperr.KindPersistence, err, "database unreachable"))
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	account.NewHandler(account.NewService(account.NewPostgresRepository(d.DB), d.Logger), d.Logger).RegisterRoutes(r)
	catalog.NewHandler(catalog.NewService(d.DB, d.Logger), d.Logger).RegisterRoutes(r)
	inventory.NewHandler(inventory.NewService(inventory.NewPostgresRepository(d.DB)), d.Logger).RegisterRoutes(r)
	sales.NewHandler(sales.NewService(d.DB, d.Journal, d.Metrics, d.Logger), d.Logger).RegisterRoutes(r)

	orders := order.NewService(d.DB, d.Journal, d.Metrics, d.Logger, d.Config.Orders.EnforceCatalogPrice)
	order.NewHandler(orders, d.Logger,
		middleware.Idempotency(d.Idempotency, d.Config.Redis.IdempotencyTTL, d.Logger),
	).RegisterRoutes(r)

	return r
}
