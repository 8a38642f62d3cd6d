// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/maintenance-manager/backend/internal/event"
	"github.com/maintenance-manager/backend/internal/storage"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Common error codes
const (
	ErrNotFound      = "not_found"
	ErrBadRequest    = "bad_request"
	ErrConflict      = "conflict"
	ErrRemote        = "remote_error"
	ErrInternalError = "internal_error"
	ErrValidation    = "validation_error"
	ErrUnauthorized  = "unauthorized"
)

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// WriteServiceError maps a coordinator/storage error onto an HTTP response.
// Lookup misses become 404, local conflicts 409, provider failures 502, and
// anything else a 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	var remote *event.RemoteError

	switch {
	case errors.Is(err, event.ErrNotFound), errors.Is(err, event.ErrSeriesNotFound):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.Is(err, storage.ErrConflict):
		WriteError(w, http.StatusConflict, ErrConflict, err.Error())
	case errors.Is(err, event.ErrMalformedTimestamp):
		WriteError(w, http.StatusBadGateway, ErrRemote, err.Error())
	case errors.As(err, &remote):
		WriteError(w, http.StatusBadGateway, ErrRemote, err.Error())
	default:
		log.Printf("Internal error: %v", err)
		WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
	}
}

// ErrorRecovery is middleware that recovers from panics and returns a 500 error.
func ErrorRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v\n%s", err, debug.Stack())
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
