// Package handler contains the HTTP handlers. Handlers decode requests,
// call services, and encode responses; all error-to-status mapping lives
// in writeError so every endpoint fails the same way.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maragia/motalk-server/internal/apperror"
)

// ErrorResponse is the error shape returned by every API endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response. Headers and status must go out before
// the body; once Encode writes, header changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a service-layer error into an HTTP response.
//
// The service layer returns apperror values; only this function knows
// which status each one maps to. Unknown errors become a generic 500 —
// raw error strings never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrInvalidCredentials):
			// Deliberately 400 with a generic message: the response must not
			// reveal whether the email is registered.
			status = http.StatusBadRequest
			errorType = "authentication_failed"
		case errors.Is(err, apperror.ErrInvalidAssertion):
			status = http.StatusUnauthorized
			errorType = "invalid_assertion"
		case errors.Is(err, apperror.ErrTokenExpired), errors.Is(err, apperror.ErrTokenInvalid):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
