package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeUpstream          = "UPSTREAM_FAILURE"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Domain errors. Services wrap these with %w; handlers map them with WriteDomainError.
var (
	ErrNotFound     = stderrors.New("not found")
	ErrUnauthorized = stderrors.New("unauthorized")
	ErrForbidden    = stderrors.New("forbidden")
	ErrConflict     = stderrors.New("conflict")
	ErrInvalidInput = stderrors.New("invalid input")
	ErrUpstream     = stderrors.New("upstream failure")
)

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteDomainError picks status and code from the wrapped domain error. Anything
// unrecognised, and upstream failures, are logged and reported generically.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case Is(err, ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case Is(err, ErrUnauthorized):
		WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error(), nil)
	case Is(err, ErrForbidden):
		WriteError(w, http.StatusForbidden, ErrCodeForbidden, err.Error(), nil)
	case Is(err, ErrConflict):
		WriteError(w, http.StatusConflict, ErrCodeConflict, err.Error(), nil)
	case Is(err, ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case Is(err, ErrUpstream):
		log.Error().Err(err).Msg("upstream collaborator failed")
		WriteError(w, http.StatusInternalServerError, ErrCodeUpstream, "An external service failed, please retry", nil)
	default:
		log.Error().Err(err).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", nil)
	}
}
