package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fleetbook/internal/domain"
)

// ErrorResponse is the JSON body for every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code plus a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a service error to the matching HTTP status and body.
// Unrecognized errors become an opaque 500 — internals never leak to callers.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respond(w, http.StatusUnprocessableEntity, errorBody("validation_error", err))
	case errors.Is(err, domain.ErrNotFound):
		respond(w, http.StatusNotFound, errorBody("not_found", err))
	case errors.Is(err, domain.ErrUnavailable):
		respond(w, http.StatusConflict, errorBody("no_availability", err))
	case errors.Is(err, domain.ErrConflict):
		respond(w, http.StatusConflict, errorBody("conflict", err))
	default:
		slog.Error("handler error", "error", err)
		respond(w, http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Code: "internal_error", Message: "internal server error"},
		})
	}
}

// errorBody builds an ErrorResponse with the wrapping prefixes stripped away.
func errorBody(code string, err error) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: unwrapMessage(err)}}
}

// notFoundBody returns an ErrorResponse for a missing resource.
// The caller supplies the human-readable message (e.g. "trip not found")
// because the handler is the layer that knows what was being looked up.
func notFoundBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "not_found", Message: message}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: "validation_error", Message: message}}
}

// unwrapMessage extracts the human-readable tail from a wrapped sentinel error.
// e.g. "service.BookingService.Cancel: conflict: trip has already departed"
// → "trip has already departed". Errors whose whole text is the sentinel plus
// detail keep the detail; anything else passes through untouched.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []string{"validation error: ", "conflict: ", "no availability: ", "not found: "} {
		if i := strings.Index(msg, sentinel); i >= 0 {
			return msg[i+len(sentinel):]
		}
	}
	return msg
}
