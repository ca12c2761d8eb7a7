// Package timeline reconstructs where a vehicle is, or will be, at any
// instant from its set of non-cancelled trips.
//
// Nothing here touches storage. Callers fetch a vehicle's trips once and hand
// them in; every function is a pure computation over that slice. Location is
// always derived, never stored, so speculative questions ("where will this
// vehicle be tomorrow at noon?") can be answered without mutating anything.
package timeline

import (
	"sort"
	"time"

	"fleetbook/internal/domain"
)

// Active returns the non-cancelled trips sorted chronologically by departure
// (ties by arrival, then id, for a stable order). The input slice is not
// modified. All other functions in this package expect their trips argument
// in this form.
func Active(trips []domain.Trip) []domain.Trip {
	out := make([]domain.Trip, 0, len(trips))
	for _, t := range trips {
		if t.Active() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DepartsAt.Equal(out[j].DepartsAt) {
			return out[i].DepartsAt.Before(out[j].DepartsAt)
		}
		if !out[i].ArrivesAt.Equal(out[j].ArrivesAt) {
			return out[i].ArrivesAt.Before(out[j].ArrivesAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// LocationAt resolves the vehicle's position at instant at, given its home
// location and its active trips (see Active).
//
// Resolution walks the timeline with an explicit cursor rather than recursing:
//  1. The resting anchor is the trip with the latest arrival at or before at;
//     with no such trip the anchor is the home location.
//  2. A successor trip is only followed if it departs at or after the
//     anchor's arrival and at or before at. Such a trip cannot have arrived
//     yet (its arrival would have made it the anchor), so following it means
//     the vehicle is in transit on it. Back-to-back legs departing at the
//     exact instant the prior one arrives are genuine successors.
//  3. With no successor, the vehicle rests at the anchor.
func LocationAt(home string, trips []domain.Trip, at time.Time) domain.Position {
	restingAt := home
	var anchor time.Time // arrival of the latest completed trip, zero when none

	for _, t := range trips {
		if t.ArrivesAt.After(at) {
			continue
		}
		if anchor.IsZero() || t.ArrivesAt.After(anchor) {
			restingAt = t.DestinationCode
			anchor = t.ArrivesAt
		}
	}

	// Earliest genuine successor: departs at or after the anchor arrival and
	// no later than at. Trips departing strictly inside a prior trip's travel
	// window are schedule corruption and are deliberately not followed.
	for _, t := range trips {
		if t.DepartsAt.After(at) {
			break // sorted by departure; nothing later can qualify
		}
		if !anchor.IsZero() && t.DepartsAt.Before(anchor) {
			continue
		}
		if t.InProgressAt(at) {
			return domain.InTransitOn(t)
		}
	}

	return domain.AtLocation(restingAt)
}

// NextAtPlace returns the earliest instant at or after after at which the
// vehicle will be resting at place: after itself when it is already there,
// otherwise the arrival of its earliest trip into place arriving strictly
// after after. The second return is false when no trip ever brings the
// vehicle to place.
func NextAtPlace(home string, trips []domain.Trip, place string, after time.Time) (time.Time, bool) {
	pos := LocationAt(home, trips, after)
	if !pos.InTransit && pos.LocationCode == place {
		return after, true
	}

	var best time.Time
	found := false
	for _, t := range trips {
		if t.DestinationCode != place || !t.ArrivesAt.After(after) {
			continue
		}
		if !found || t.ArrivesAt.Before(best) {
			best = t.ArrivesAt
			found = true
		}
	}
	return best, found
}

// DepartsExactlyAt reports whether any trip departs at exactly at.
// A vehicle with such a trip is committed at that instant regardless of what
// LocationAt resolves for it, so it cannot take another booking then.
func DepartsExactlyAt(trips []domain.Trip, at time.Time) bool {
	for _, t := range trips {
		if t.DepartsAt.Equal(at) {
			return true
		}
	}
	return false
}
