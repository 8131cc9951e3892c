package sales

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

type Handler struct {
	service Service
	logg    *logger.Logger
}

func NewHandler(service Service, logg *logger.Logger) *Handler {
	return &Handler{service: service, logg: logg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/marketplace", func(r chi.Router) {
		r.Post("/update-sales", h.recordSale)
		r.Get("/sales", h.todaySold)        // ?manager_id=&product_id=
		r.Get("/today-sales", h.todaySales) // ?manager_id=
	})
}

func (h *Handler) recordSale(w http.ResponseWriter, r *http.Request) {
	var req RecordSaleRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	result, err := h.service.RecordSale(r.Context(), req)
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"message":         "Sales updated successfully",
		"remaining_stock": result.RemainingStock,
	})
}

func (h *Handler) todaySold(w http.ResponseWriter, r *http.Request) {
	managerID, err := api.RequiredQuery(r, "manager_id")
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	productID, err := api.RequiredQuery(r, "product_id")
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	sold, err := h.service.QueryTodaySold(r.Context(), managerID, productID)
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]int{"sold_quantity": sold})
}

func (h *Handler) todaySales(w http.ResponseWriter, r *http.Request) {
	managerID, err := api.RequiredQuery(r, "manager_id")
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	sales, err := h.service.TodaySales(r.Context(), managerID)
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"sales": sales})
}
