package domain

// Position is where a vehicle is at some instant: either resting at a named
// location, or in transit on a specific trip. "In transit" is a sentinel —
// it carries no authoritative coordinates of its own; callers that need a
// point on the map interpolate along the trip's endpoints (internal/geo).
type Position struct {
	// InTransit is true when the instant falls inside a trip's travel window.
	InTransit bool `json:"in_transit"`

	// LocationCode is the resting place. Empty when InTransit.
	LocationCode string `json:"location_code,omitempty"`

	// Trip is the trip being travelled. Nil unless InTransit.
	Trip *Trip `json:"trip,omitempty"`
}

// AtLocation builds a resting Position.
func AtLocation(code string) Position {
	return Position{LocationCode: code}
}

// InTransitOn builds an in-transit Position for the given trip.
func InTransitOn(t Trip) Position {
	return Position{InTransit: true, Trip: &t}
}
