package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	service    Service
	logg       *logger.Logger
	placeOrder []func(http.Handler) http.Handler
}

// NewHandler takes optional middleware applied only to place_order, such as
// the idempotency guard.
func NewHandler(service Service, logg *logger.Logger, placeOrder ...func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, logg: logg, placeOrder: placeOrder}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.placeOrder...).Post("/consumer/place_order", h.place)
	r.Get("/consumer/orders", h.listConsumerOrders) // ?consumer_id=
	r.Get("/orders/{id}", h.getOrder)
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	result, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		// LOGGING_FAILURE still reports order_id and total in its details.
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) listConsumerOrders(w http.ResponseWriter, r *http.Request) {
	consumerID, err := api.RequiredQuery(r, "consumer_id")
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	orders, err := h.service.ListConsumerOrders(r.Context(), consumerID)
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
