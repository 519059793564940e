package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/ecommerce-service/internal/repository"
	"github.com/fjod/go_cart/ecommerce-service/internal/service"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service and repository errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var httpStatus int
	var code string
	message := err.Error()

	switch {
	case errors.Is(err, service.ErrInvalidContact), errors.Is(err, service.ErrInvalidCartLine):
		httpStatus = http.StatusBadRequest
		code = "invalid_argument"
	case errors.Is(err, service.ErrContactIDMismatch):
		httpStatus = http.StatusBadRequest
		code = "id_mismatch"
		message = "Contact ID mismatch."
	case errors.Is(err, repository.ErrContactNotFound), errors.Is(err, repository.ErrProductNotFound):
		httpStatus = http.StatusNotFound
		code = "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		httpStatus = http.StatusServiceUnavailable
		code = "service_unavailable"
		message = "storage temporarily unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus = http.StatusGatewayTimeout
		code = "timeout"
		message = "request timed out"
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled service error")
		httpStatus = http.StatusInternalServerError
		code = "internal_error"
		message = "internal server error"
	}

	respondError(w, r, httpStatus, code, message)
}
