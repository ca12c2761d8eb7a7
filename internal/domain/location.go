package domain

import "time"

// Location is an immutable named place a vehicle can rest at or travel
// between, identified by a unique 3-character code (e.g. "JFK").
// Locations are created once at fleet setup and never mutated or deleted.
type Location struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	CreatedAt time.Time `json:"created_at"`
}

// Coordinates returns the location's coordinate pair.
func (l Location) Coordinates() Coordinates {
	return Coordinates{Lat: l.Lat, Lng: l.Lng}
}

// Coordinates is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
