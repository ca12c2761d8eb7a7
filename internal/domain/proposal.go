package domain

import (
	"time"

	"github.com/google/uuid"
)

// Proposal is a computed alternative offered when no vehicle is immediately
// available: the earliest instant any fleet vehicle can depart the requested
// route after the requested time. A proposal is never persisted — the caller
// must re-submit the proposed time to actually book it, which runs a fresh
// confirm-or-propose cycle.
type Proposal struct {
	VehicleID       uuid.UUID `json:"vehicle_id"`
	DepartureCode   string    `json:"departure_code"`
	DestinationCode string    `json:"destination_code"`
	DepartsAt       time.Time `json:"departs_at"`
	ArrivesAt       time.Time `json:"arrives_at"`
}
