package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/georgemunganga/smartsupply-backend/internal/api"
	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/logger"
	supplyredis "github.com/georgemunganga/smartsupply-backend/internal/redis"
)

const IdempotencyHeader = "Idempotency-Key"

// pendingTTL bounds how long a crashed request can hold its key.
const pendingTTL = time.Minute

type idempotencyRecord struct {
	Pending     bool              `json:"pending,omitempty"`
	Status      int               `json:"status,omitempty"`
	Body        string            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key with the same body. Requests without the header, or with a
// nil store, pass straight through.
//
// The key is reserved with a pending record before the handler runs, so a
// concurrent duplicate gets CONFLICT instead of running twice. Responses are
// kept when the write took effect: anything below 500, and LOGGING_FAILURE,
// which is only sent after a commit. Other server errors release the key so
// the request can be retried.
func Idempotency(store supplyredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idempotencyKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if store == nil || idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				api.WriteError(r.Context(), logg, w, apperr.Wrap(apperr.KindValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.IdempotencyKey(r.Method+"|"+r.URL.Path, idempotencyKey)

			pending, _ := json.Marshal(idempotencyRecord{Pending: true, RequestHash: requestHash})
			reserved, reserveErr := store.SetNX(r.Context(), key, string(pending), pendingTTL)
			if reserveErr != nil {
				// cache outage: serve the request without replay protection
				logError(r.Context(), logg, "idempotency.reserve_failed", reserveErr)
				next.ServeHTTP(w, r)
				return
			}
			if !reserved {
				replayStored(w, r, store, key, requestHash, logg)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := defaultStatus(rec.status)
			if status >= http.StatusInternalServerError && !committed(rec.body.Bytes()) {
				if delErr := store.Del(context.WithoutCancel(r.Context()), key); delErr != nil {
					logError(r.Context(), logg, "idempotency.release_failed", delErr)
				}
				return
			}
			record := idempotencyRecord{
				Status:      status,
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			if ct := rec.Header().Get("Content-Type"); ct != "" {
				record.Headers = map[string]string{"Content-Type": ct}
			}
			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "idempotency.marshal_failed", marshalErr)
				return
			}
			if setErr := store.Set(context.WithoutCancel(r.Context()), key, string(payload), ttl); setErr != nil {
				logError(r.Context(), logg, "idempotency.persist_failed", setErr)
			}
		})
	}
}

// replayStored answers a request whose key is already taken.
func replayStored(w http.ResponseWriter, r *http.Request, store supplyredis.IdempotencyStore, key, requestHash string, logg *logger.Logger) {
	stored, err := store.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logError(r.Context(), logg, "idempotency.lookup_failed", err)
		}
		// the holder released or lost the key in between; the client may retry
		api.WriteError(r.Context(), logg, w, apperr.New(apperr.KindConflict, "request with this idempotency key is in progress"))
		return
	}
	record, err := decodeRecord(stored)
	if err != nil {
		logError(r.Context(), logg, "idempotency.decode_failed", err)
		api.WriteError(r.Context(), logg, w, apperr.New(apperr.KindConflict, "request with this idempotency key is in progress"))
		return
	}
	if record.RequestHash != requestHash {
		api.WriteError(r.Context(), logg, w, apperr.New(apperr.KindConflict, "idempotency key reused with different request body"))
		return
	}
	if record.Pending {
		api.WriteError(r.Context(), logg, w, apperr.New(apperr.KindConflict, "request with this idempotency key is in progress"))
		return
	}
	w.Header().Set("Idempotent-Replay", "true")
	writeStoredResponse(w, record)
}

// committed reports whether an error body says the write already happened.
func committed(body []byte) bool {
	var payload api.ErrorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Kind == string(apperr.KindLoggingFailure)
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
