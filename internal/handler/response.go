// Package handler exposes the service layer as a JSON HTTP API. The
// presentation layer is an external client; nothing here renders HTML.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ahh-git/DIU-CPC/internal/apperror"
)

// ErrorResponse is the standard error shape returned by every endpoint, so
// the UI always knows what fields to expect.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
	Field   string `json:"field,omitempty"`
}

// writeJSON sends a JSON response with the given status code. Headers must
// be set before the first body write, hence the ordering here.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone out; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it. The
// service layer deals in apperror categories, not status codes; the
// translation lives here and only here.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrStorage):
			status = http.StatusInternalServerError
			errorType = "storage_error"
			// The cause may name file paths; clients get a generic line.
			message = "the data store is temporarily unavailable"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown error — never expose internals to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON reads a request body into dst, rejecting unknown fields so
// typos in the client surface as 400s instead of silently dropped input.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("", "invalid JSON request body")
	}
	return nil
}
