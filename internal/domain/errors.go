package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource (location code, vehicle, trip) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (same departure and destination, departure in the past or beyond the
// booking horizon, malformed timestamp). Rejected before any availability
// computation runs. Handlers should map this to HTTP 422.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an operation loses to the current state of a
// trip: cancelling a trip that is already cancelled, completed, or departed,
// or a booking that still conflicts after the transactional retry budget is
// spent. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnavailable is returned by the booking coordinator when no vehicle can
// ever serve the requested route under current schedules — distinct from a
// proposed-alternative response, which is a success. Handlers map it to a
// client-facing rejection with code "no_availability".
var ErrUnavailable = errors.New("no availability")

// invalidStatus wraps ErrValidation with the offending status string.
func invalidStatus(s string) error {
	return fmt.Errorf("%w: unknown trip status %q", ErrValidation, s)
}
