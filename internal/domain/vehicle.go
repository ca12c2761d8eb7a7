package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is one member of the fleet.
//
// HomeLocationCode is where the vehicle rests when it has no trips. It is a
// cache, not ground truth: the authoritative location at any instant is always
// derived from the vehicle's non-cancelled trip history (internal/timeline).
// Only the status reconciler writes it, setting it to the destination of each
// trip it completes. Vehicles are never deleted.
type Vehicle struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	HomeLocationCode string    `json:"home_location_code"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
