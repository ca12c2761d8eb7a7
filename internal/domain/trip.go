// Package domain contains the core data types for the Fleetbook API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (geo, timeline, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripStatus is the lifecycle state of a trip.
// The state machine moves strictly forward: SCHEDULED may advance to
// IN_PROGRESS or CANCELLED, IN_PROGRESS may advance to COMPLETED, and
// COMPLETED and CANCELLED are terminal. No transition re-enters SCHEDULED.
type TripStatus string

const (
	StatusScheduled  TripStatus = "SCHEDULED"
	StatusInProgress TripStatus = "IN_PROGRESS"
	StatusCompleted  TripStatus = "COMPLETED"
	StatusCancelled  TripStatus = "CANCELLED"
)

// ParseTripStatus validates a caller-supplied status string (e.g. a list
// filter). Returns an error wrapping ErrValidation for anything outside the
// four states.
func ParseTripStatus(s string) (TripStatus, error) {
	switch TripStatus(s) {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return TripStatus(s), nil
	}
	return "", invalidStatus(s)
}

// CanTransitionTo reports whether the status machine permits moving from s to next.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	switch s {
	case StatusScheduled:
		return next == StatusInProgress || next == StatusCompleted || next == StatusCancelled
	case StatusInProgress:
		return next == StatusCompleted
	default:
		// COMPLETED and CANCELLED are terminal.
		return false
	}
}

// Terminal reports whether no further transitions are possible.
func (s TripStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Trip is the central mutable entity: one point-to-point leg booked for a
// vehicle. departs_at < arrives_at is enforced at creation (and by a DB CHECK
// constraint); it is never re-validated on mutation because mutation only
// touches Status.
//
// Trips are never deleted. Cancellation is a status change, so a vehicle's
// timeline is always reconstructible from its full trip history.
type Trip struct {
	ID              uuid.UUID  `json:"id"`
	VehicleID       uuid.UUID  `json:"vehicle_id"`
	DepartureCode   string     `json:"departure_code"`
	DestinationCode string     `json:"destination_code"`
	DepartsAt       time.Time  `json:"departs_at"`
	ArrivesAt       time.Time  `json:"arrives_at"`
	Status          TripStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Active reports whether the trip counts toward its vehicle's timeline.
// Cancelled trips are invisible to all location and availability math.
func (t Trip) Active() bool {
	return t.Status != StatusCancelled
}

// InProgressAt reports whether the trip's travel window covers the instant at.
// The window is half-open: a trip is in progress at its departure instant and
// already arrived at its arrival instant.
func (t Trip) InProgressAt(at time.Time) bool {
	return !t.DepartsAt.After(at) && at.Before(t.ArrivesAt)
}

// TripFilter narrows a trip listing. Nil fields mean "no constraint".
// From/To bound departs_at (inclusive from, exclusive to).
type TripFilter struct {
	VehicleID *uuid.UUID
	Status    *TripStatus
	From      *time.Time
	To        *time.Time
}
