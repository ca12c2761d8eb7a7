// Package geo contains the pure geographic and travel-time math used by the
// timeline and booking logic. Everything here is deterministic: distances are
// rounded to two decimal places and durations to whole minutes, so the same
// inputs always produce the same schedule no matter where the computation runs.
package geo

import (
	"fmt"
	"math"
	"time"

	"fleetbook/internal/domain"
)

const (
	// earthRadiusKm is the mean radius of Earth in kilometres.
	earthRadiusKm = 6371.0

	// CruisingSpeedKmh is the fixed fleet cruising speed used to turn a
	// distance into a travel duration.
	CruisingSpeedKmh = 750.0
)

// knownDistances short-circuits the haversine formula for explicitly
// enumerated city pairs. Keys are built by pairKey with codes in lexical
// order, so lookups are direction-independent. Any pair not listed here
// falls back to the formula.
var knownDistances = map[string]float64{
	pairKey("JFK", "LAX"): 3974.34,
	pairKey("JFK", "ORD"): 1188.72,
	pairKey("JFK", "BOS"): 301.10,
	pairKey("LAX", "SFO"): 543.21,
	pairKey("ORD", "DFW"): 1290.45,
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "-" + b
}

// Distance returns the great-circle distance in kilometres between two
// coordinate pairs, rounded to two decimal places.
func Distance(a, b domain.Coordinates) float64 {
	dLat := degToRad(b.Lat - a.Lat)
	dLng := degToRad(b.Lng - a.Lng)

	rLat1 := degToRad(a.Lat)
	rLat2 := degToRad(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusKm * c)
}

// DistanceBetween returns the distance in kilometres between two named
// locations, consulting the known-pair table before falling back to Distance.
func DistanceBetween(a, b domain.Location) float64 {
	if km, ok := knownDistances[pairKey(a.Code, b.Code)]; ok {
		return km
	}
	return Distance(a.Coordinates(), b.Coordinates())
}

// TravelDuration converts a distance to a travel time at CruisingSpeedKmh,
// rounded once to whole minutes. Rounding exactly once keeps a duration
// computed here identical to one reconstructed later from the same distance.
func TravelDuration(km float64) time.Duration {
	minutes := math.Round(km / CruisingSpeedKmh * 60)
	return time.Duration(minutes) * time.Minute
}

// ArrivalTime returns departure plus the travel time for the given distance.
func ArrivalTime(departure time.Time, km float64) time.Time {
	return departure.Add(TravelDuration(km))
}

// Interpolate returns the point a vehicle occupies at instant now on a linear
// path from from to to, travelled between departs and arrives. The elapsed
// fraction is clamped to [0, 1], so instants outside the window return the
// endpoints. Fraction and coordinates are rounded to four decimal places.
func Interpolate(departs, arrives time.Time, from, to domain.Coordinates, now time.Time) domain.Coordinates {
	total := arrives.Sub(departs)
	if total <= 0 {
		return to
	}

	frac := float64(now.Sub(departs)) / float64(total)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	frac = round4(frac)

	return domain.Coordinates{
		Lat: round4(from.Lat + (to.Lat-from.Lat)*frac),
		Lng: round4(from.Lng + (to.Lng-from.Lng)*frac),
	}
}

// ParseTime parses an RFC 3339 timestamp from a caller.
// Malformed input is a validation failure, not a server error.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid timestamp %q (want RFC 3339)", domain.ErrValidation, s)
	}
	return t, nil
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
