// Package common provides helpers shared by the HTTP features.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/leapstack-labs/sqlplay/internal/engine"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"detail": detail}.
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// WriteEngineError maps gateway errors to status codes. Unexpected errors
// are logged and reported as 500 without their message.
func WriteEngineError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, detail := Status(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.String("error", err.Error()))
	}
	WriteError(w, status, detail)
}

// Status returns the HTTP status and client-facing detail for err.
func Status(err error) (int, string) {
	var forbidden *engine.ForbiddenError
	var queryErr *engine.QueryError
	switch {
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Error()
	case errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), engine.ErrInvalidInput.Error()+": ")
	case errors.As(err, &queryErr):
		return http.StatusBadRequest, queryErr.Message
	case engine.IsUnknownDataset(err):
		return http.StatusNotFound, "Dataset not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
