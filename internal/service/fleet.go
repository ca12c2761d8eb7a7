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

// VehiclePositionView is a vehicle plus its derived position at a point in
// time. Coordinates is interpolated along the current trip when in transit,
// otherwise it is the resting location's fixed point.
type VehiclePositionView struct {
	Vehicle     domain.Vehicle
	Position    domain.Position
	Coordinates domain.Coordinates
	At          time.Time
}

// FleetService serves the read-only fleet surface: locations, vehicles, and
// derived vehicle positions. Fleet setup itself is migration-driven, so there
// are no writes here.
type FleetService struct {
	locations repo.LocationRepo
	vehicles  repo.VehicleRepo
	trips     repo.TripRepo
	now       func() time.Time
}

// NewFleetService constructs a FleetService backed by the provided repos.
func NewFleetService(locations repo.LocationRepo, vehicles repo.VehicleRepo, trips repo.TripRepo) *FleetService {
	return &FleetService{locations: locations, vehicles: vehicles, trips: trips, now: time.Now}
}

// WithClock overrides the service's notion of now, for tests.
func (s *FleetService) WithClock(now func() time.Time) *FleetService {
	s.now = now
	return s
}

// Locations returns all known locations. Always returns a non-nil slice.
func (s *FleetService) Locations(ctx context.Context) ([]domain.Location, error) {
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.FleetService.Locations: %w", err)
	}
	if locations == nil {
		locations = []domain.Location{}
	}
	return locations, nil
}

// Vehicles returns the whole fleet in id order. Always returns a non-nil slice.
func (s *FleetService) Vehicles(ctx context.Context) ([]domain.Vehicle, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.FleetService.Vehicles: %w", err)
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	return vehicles, nil
}

// VehiclePosition reconstructs where a vehicle is right now from its
// non-cancelled trip history: the trips are fetched once and the timeline
// resolver walks them in memory. The vehicle's stored home location is only
// the fallback for an empty timeline.
func (s *FleetService) VehiclePosition(ctx context.Context, id uuid.UUID) (VehiclePositionView, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return VehiclePositionView{}, fmt.Errorf("service.FleetService.VehiclePosition: %w", err)
	}

	trips, err := s.trips.ListActiveByVehicle(ctx, v.ID)
	if err != nil {
		return VehiclePositionView{}, fmt.Errorf("service.FleetService.VehiclePosition: %w", err)
	}

	now := s.now()
	pos := timeline.LocationAt(v.HomeLocationCode, trips, now)

	view := VehiclePositionView{Vehicle: v, Position: pos, At: now}
	if pos.InTransit {
		departure, err := s.locations.GetByCode(ctx, pos.Trip.DepartureCode)
		if err != nil {
			return VehiclePositionView{}, fmt.Errorf("service.FleetService.VehiclePosition: %w", err)
		}
		destination, err := s.locations.GetByCode(ctx, pos.Trip.DestinationCode)
		if err != nil {
			return VehiclePositionView{}, fmt.Errorf("service.FleetService.VehiclePosition: %w", err)
		}
		view.Coordinates = geo.Interpolate(pos.Trip.DepartsAt, pos.Trip.ArrivesAt,
			departure.Coordinates(), destination.Coordinates(), now)
		return view, nil
	}

	resting, err := s.locations.GetByCode(ctx, pos.LocationCode)
	if err != nil {
		return VehiclePositionView{}, fmt.Errorf("service.FleetService.VehiclePosition: %w", err)
	}
	view.Coordinates = resting.Coordinates()
	return view, nil
}
