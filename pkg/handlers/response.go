package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/epe-tools/desvinculados-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeEngineError maps engine errors onto HTTP responses. Structural
// (format) errors are the user's problem and come back as 422 with the
// failed expectation spelled out; everything else is a 500.
func writeEngineError(w http.ResponseWriter, err error) error {
	switch {
	case errors.Is(err, apperrors.ErrFormatMismatch):
		return ErrorResponse(w, http.StatusUnprocessableEntity, "format_error", err.Error())
	case errors.Is(err, apperrors.ErrTableMissing):
		return ErrorResponse(w, http.StatusUnprocessableEntity, "format_error", err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedKind):
		return ErrorResponse(w, http.StatusBadRequest, "unsupported_kind", err.Error())
	default:
		return ErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
