// Package service contains the business logic for the Fleetbook API: the
// availability resolver, the booking coordinator, the status reconciler, and
// fleet reads. Services validate inputs, enforce business rules, and
// orchestrate repo calls. No SQL lives here — services depend on repo
// interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetbook/internal/domain"
	"fleetbook/internal/geo"
	"fleetbook/internal/repo"
	"fleetbook/internal/timeline"
)

// AvailabilityService answers fleet-wide availability questions by running the
// timeline resolver over every vehicle. It is deliberately cheap to construct:
// the booking coordinator builds one over its transaction-bound repos so the
// availability check it acts on is the one the transaction will serialize.
type AvailabilityService struct {
	vehicles repo.VehicleRepo
	trips    repo.TripRepo
}

// NewAvailabilityService constructs an AvailabilityService over the given repos.
func NewAvailabilityService(vehicles repo.VehicleRepo, trips repo.TripRepo) *AvailabilityService {
	return &AvailabilityService{vehicles: vehicles, trips: trips}
}

// FindAvailable returns the vehicles that can depart departureCode at exactly
// at: resting there at that instant with no other trip departing at exactly
// that instant. The result preserves fleet order (vehicle id ascending), which
// is the documented deterministic tie-break — callers that need one vehicle
// take the first.
func (s *AvailabilityService) FindAvailable(ctx context.Context, departureCode string, at time.Time) ([]domain.Vehicle, error) {
	fleet, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AvailabilityService.FindAvailable: %w", err)
	}

	var available []domain.Vehicle
	for _, v := range fleet {
		trips, err := s.trips.ListActiveByVehicle(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("service.AvailabilityService.FindAvailable: %w", err)
		}

		pos := timeline.LocationAt(v.HomeLocationCode, trips, at)
		if pos.InTransit || pos.LocationCode != departureCode {
			continue
		}
		if timeline.DepartsExactlyAt(trips, at) {
			continue
		}
		available = append(available, v)
	}
	return available, nil
}

// EarliestAlternative computes the earliest instant at or after after at which
// any fleet vehicle can depart from departure toward destination: for each
// vehicle the candidate is after itself when it is already resting there, or
// the arrival of its earliest trip into the departure point; vehicles that
// never return have no candidate. The minimum candidate wins, ties broken by
// lowest vehicle id (fleet order). The second return is false when no vehicle
// has a candidate at all.
//
// Nothing is persisted — the proposal's arrival is computed from the route
// distance exactly as a confirmed booking's would be.
func (s *AvailabilityService) EarliestAlternative(ctx context.Context, departure, destination domain.Location, after time.Time) (domain.Proposal, bool, error) {
	fleet, err := s.vehicles.List(ctx)
	if err != nil {
		return domain.Proposal{}, false, fmt.Errorf("service.AvailabilityService.EarliestAlternative: %w", err)
	}

	var (
		best      time.Time
		bestFound bool
		bestID    uuid.UUID
	)
	for _, v := range fleet {
		trips, err := s.trips.ListActiveByVehicle(ctx, v.ID)
		if err != nil {
			return domain.Proposal{}, false, fmt.Errorf("service.AvailabilityService.EarliestAlternative: %w", err)
		}

		candidate, ok := timeline.NextAtPlace(v.HomeLocationCode, trips, departure.Code, after)
		if !ok || timeline.DepartsExactlyAt(trips, candidate) {
			continue
		}
		// Fleet order breaks ties, so strictly-before keeps the lowest id.
		if !bestFound || candidate.Before(best) {
			best = candidate
			bestID = v.ID
			bestFound = true
		}
	}

	if !bestFound {
		return domain.Proposal{}, false, nil
	}

	km := geo.DistanceBetween(departure, destination)
	return domain.Proposal{
		VehicleID:       bestID,
		DepartureCode:   departure.Code,
		DestinationCode: destination.Code,
		DepartsAt:       best,
		ArrivesAt:       geo.ArrivalTime(best, km),
	}, true, nil
}
