// Package api holds the HTTP plumbing shared by every module handler.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

// ErrorBody is the JSON payload of every failed request.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteMessage is the {"message": ...} acknowledgement used by mutating routes.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// WriteError maps err to its kind's status. Messages of non-public kinds are
// replaced with a generic one; server-side failures are logged with the cause.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.KindPersistence, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Kind())

	body := ErrorBody{Kind: string(typed.Kind()), Message: meta.PublicMessage}
	if meta.Public {
		if m := typed.Message(); m != "" {
			body.Message = m
		}
		body.Details = typed.Details()
	}

	if logg != nil && meta.HTTPStatus >= http.StatusInternalServerError {
		ctx = logg.WithFields(ctx, map[string]any{
			"error_kind": string(typed.Kind()),
			"status":     meta.HTTPStatus,
		})
		logg.Error(ctx, "request.error", err)
	}

	WriteJSON(w, meta.HTTPStatus, body)
}
