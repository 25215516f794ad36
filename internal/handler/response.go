// Package handler holds the HTTP layer: decoding requests, calling services
// and translating domain errors to status codes and JSON bodies.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/event-planner/internal/apperror"
)

// ErrorResponse is the error shape for authentication, authorization, and
// server failures. Validation and conflict failures use a bare field→message
// map instead, so a form can attach each message to its input.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code. Headers must
// be set before the first body write, hence the fixed order here.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already out; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status and body.
//
// Validation and conflict errors both come out as 400 with a field-keyed
// body, e.g. {"email": "email already exists"} — a duplicate is just another
// thing wrong with the submitted form. Everything the service cannot name
// is a generic 500; raw error strings never reach the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		internalError(w, err)
		return
	}

	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
		writeJSON(w, http.StatusBadRequest, appErr.FieldMap())
	case errors.Is(err, apperror.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: appErr.Message,
		})
	case errors.Is(err, apperror.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: appErr.Message,
		})
	case errors.Is(err, apperror.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: appErr.Message,
		})
	default:
		internalError(w, err)
	}
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON reads the request body into dst, rejecting bodies that are not
// valid JSON.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "request body is not valid JSON")
	}
	return nil
}
