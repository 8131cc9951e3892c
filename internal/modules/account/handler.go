package account

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
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
	r.Post("/register", h.register)
	r.Post("/login/{role}", h.login)
}

type loginResponse struct {
	Message string `json:"message"`
	*Account
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	if _, err := h.service.Register(r.Context(), req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteMessage(w, http.StatusCreated, fmt.Sprintf("%s registered successfully", req.Role))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	role, ok := RoleFromSlug(chi.URLParam(r, "role"))
	if !ok {
		api.WriteError(r.Context(), h.logg, w, apperr.New(apperr.KindNotFound, "unknown login route"))
		return
	}
	var req LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	acct, err := h.service.Verify(r.Context(), role, req.Email, req.Password)
	if err != nil {
		api.WriteError(r.Context(), h.logg, w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Account: acct})
}
