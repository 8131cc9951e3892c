package inventory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

// Handler exposes the store-level inventory endpoints.
type Handler struct {
	service Service
	logg    *logger.Logger
}

func NewHandler(service Service, logg *logger.Logger) *Handler {
	return &Handler{service: service, logg: logg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/store/availability", h.storeAvailability) // ?manager_id=...
}

func (h *Handler) storeAvailability(w http.ResponseWriter, r *http.Request) {
	managerID, err := api.RequiredQuery(r, "manager_id")
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	products, err := h.service.StoreAvailability(r.Context(), managerID)
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, products)
}
