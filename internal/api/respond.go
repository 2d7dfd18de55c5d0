// Package api carries the JSON response helpers shared by module handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/domain"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error          string   `json:"error"`
	ValidScenarios []string `json:"valid_scenarios,omitempty"`
}

// WriteError maps a domain error to an HTTP status and writes the error
// payload. Unknown errors are logged and surfaced with a generic message so
// nothing is silently swallowed.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var (
		validationErr   *domain.ValidationError
		noDataErr       *domain.NoDataError
		insufficientErr *domain.InsufficientDataError
		numericalErr    *domain.NumericalError
	)

	switch {
	case errors.As(err, &validationErr):
		WriteJSON(w, log, http.StatusBadRequest, ErrorResponse{
			Error:          validationErr.Message,
			ValidScenarios: validationErr.ValidKeys,
		})
	case errors.As(err, &noDataErr):
		WriteJSON(w, log, http.StatusNotFound, ErrorResponse{Error: noDataErr.Error()})
	case errors.As(err, &insufficientErr):
		WriteJSON(w, log, http.StatusUnprocessableEntity, ErrorResponse{Error: insufficientErr.Error()})
	case errors.As(err, &numericalErr):
		WriteJSON(w, log, http.StatusInternalServerError, ErrorResponse{Error: numericalErr.Error()})
	default:
		log.Error().Err(err).Msg("Unexpected computation failure")
		WriteJSON(w, log, http.StatusInternalServerError, ErrorResponse{Error: "internal computation error"})
	}
}

// DecodeJSON decodes a request body into dst, returning a ValidationError on
// malformed input.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.NewValidationError("invalid request body: %v", err)
	}
	return nil
}
