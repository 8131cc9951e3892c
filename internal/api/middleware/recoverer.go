package middleware

import (
	"fmt"
	"net/http"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
)

func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err := fmt.Errorf("panic: %v", rec)
					api.WriteError(r.Context(), logg, w, apperr.Wrap(apperr.KindPersistence, err, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
