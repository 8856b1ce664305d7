package web

// respond.go provides unified response helpers for the JSON API.
// Technical error details are logged server-side with the chi request ID;
// clients receive a plain message.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tmsaudit/freteaudit/internal/abono"
	"github.com/tmsaudit/freteaudit/internal/audit"
	"github.com/tmsaudit/freteaudit/internal/logging"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response and logs the message with
// request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", message,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, audit.ErrRecordNotFound), errors.Is(err, audit.ErrBatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, abono.ErrEmptyJustification), errors.Is(err, abono.ErrNotDivergent):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
