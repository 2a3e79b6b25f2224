// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer. Feature packages wrap these so the
// transport can map any engine error to a status without knowing its type.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidRange = errors.New("invalid range")
	ErrConflict     = errors.New("conflict")
)

// StatusFor returns the HTTP status RespondError would answer err with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch StatusFor(err) {
	case http.StatusBadRequest:
		title := "Validation Failed"
		if errors.Is(err, ErrInvalidRange) {
			title = "Invalid Range"
		}
		Problem(w, http.StatusBadRequest, title, err.Error())
	case http.StatusNotFound:
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case http.StatusConflict:
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case http.StatusGatewayTimeout:
		Problem(w, http.StatusGatewayTimeout, "Timeout", "request exceeded its deadline")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
