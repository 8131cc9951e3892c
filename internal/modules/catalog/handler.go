package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

// Handler exposes warehouse product management and the consumer storefront.
type Handler struct {
	service Service
	logg    *logger.Logger
}

func NewHandler(service Service, logg *logger.Logger) *Handler {
	return &Handler{service: service, logg: logg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/warehouse", func(r chi.Router) {
		r.Post("/add_product", h.addProduct)
		r.Post("/update_product", h.updateProduct)
		r.Put("/update_product", h.updateProduct)
		r.Delete("/delete_product/{product_id}", h.deleteProduct)
		r.Get("/availability", h.listAvailability) // ?search=...
	})
	r.Get("/consumer/availability", h.consumerAvailability)
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var req AddProductRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	if err := h.service.AddProduct(r.Context(), req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteMessage(w, http.StatusCreated, "Product added successfully")
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	if err := h.service.UpdateProduct(r.Context(), req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteMessage(w, http.StatusOK, "Product updated successfully")
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "product_id")
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteMessage(w, http.StatusOK, "Product deleted successfully")
}

func (h *Handler) listAvailability(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListAvailability(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) consumerAvailability(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ConsumerAvailability(r.Context())
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, products)
}
