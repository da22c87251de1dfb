package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/payment"
)

type errorResponse struct {
	Error  string                   `json:"error"`
	Fields []domain.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without its details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		vErrs domain.ValidationErrors
		vErr  domain.ValidationError
	)
	switch {
	case errors.As(err, &vErrs):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: vErrs})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: []domain.ValidationError{vErr}})
	case isSignatureError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func isSignatureError(err error) bool {
	return errors.Is(err, payment.ErrMissingSignature) ||
		errors.Is(err, payment.ErrMalformedHeader) ||
		errors.Is(err, payment.ErrInvalidSignature) ||
		errors.Is(err, payment.ErrTimestampSkew)
}

func badRequest(field, msg string) error {
	return domain.ValidationErrors{{Field: field, Message: msg}}
}
