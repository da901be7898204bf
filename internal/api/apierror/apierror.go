// Package apierror renders domain faults as the service's JSON error body.
package apierror

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/rs/zerolog"
)

const timestampLayout = "2006-01-02 15:04:05"

// Body is the wire shape of every error response.
type Body struct {
	Message   string `json:"message"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

const (
	reasonValidation = "Incorrectly made request."
	reasonNotFound   = "The required object was not found."
	reasonConflict   = "Integrity constraint has been violated."
	reasonInternal   = "Unexpected internal error."
)

// Write maps err to an HTTP status and writes the error body.
// Unrecognized errors become 500 responses with a generic message so
// internals never leak to the caller.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := Body{
		Message:   "An unexpected error has occurred.",
		Reason:    reasonInternal,
		Status:    "INTERNAL_SERVER_ERROR",
		Timestamp: time.Now().Format(timestampLayout),
	}

	if kind, ok := faults.KindOf(err); ok {
		body.Message = err.Error()
		body.Status = string(kind)
		switch kind {
		case faults.KindValidation:
			status = http.StatusBadRequest
			body.Reason = reasonValidation
		case faults.KindNotFound:
			status = http.StatusNotFound
			body.Reason = reasonNotFound
		case faults.KindConflict:
			status = http.StatusConflict
			body.Reason = reasonConflict
		}
	}

	logger := zerolog.Ctx(r.Context())
	if status >= 500 {
		logger.Error().
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg("request failed")
	} else {
		logger.Warn().
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(body.Reason)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
