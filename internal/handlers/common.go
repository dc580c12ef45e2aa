package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"swipe-match-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// respondJSON writes v with the given status
func respondJSON(w http.ResponseWriter, v interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, ErrorResponse{Error: message}, statusCode)
}

// respondServiceError logs err and maps it to a status code
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verrs services.ValidationErrors
	status := statusFor(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg(message)

	switch {
	case errors.As(err, &verrs):
		respondJSON(w, ErrorResponse{Error: "Validation failed", Fields: verrs}, status)
	case status >= http.StatusInternalServerError:
		respondError(w, message, status)
	default:
		respondError(w, err.Error(), status)
	}
}

func statusFor(err error) int {
	var verrs services.ValidationErrors
	switch {
	case errors.Is(err, services.ErrIdentityMissing):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &verrs),
		errors.Is(err, services.ErrSelfDecision),
		errors.Is(err, services.ErrInvalidDecision),
		errors.Is(err, services.ErrInvalidPhoto):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotPhotoOwner),
		errors.Is(err, services.ErrNotMatchMember):
		return http.StatusForbidden
	case errors.Is(err, services.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
