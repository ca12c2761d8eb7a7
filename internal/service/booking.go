package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"fleetbook/internal/domain"
	"fleetbook/internal/geo"
	"fleetbook/internal/repo"
)

// bookingHorizon bounds how far ahead a departure may be requested.
const bookingHorizon = 365 * 24 * time.Hour

// defaultMaxRetries is how many times a booking transaction that lost a
// serialization race is re-run before surfacing domain.ErrConflict. Each
// re-run repeats the whole decision, so a loser usually lands in the
// propose branch instead of erroring.
const defaultMaxRetries = 3

// errNoneAvailable aborts the booking transaction when the availability check
// comes up empty. It never escapes RequestTrip: it routes the request into the
// propose branch after the transaction has rolled back.
var errNoneAvailable = errors.New("no vehicle immediately available")

// TxStore runs a function against vehicle and trip repos bound to a single
// transaction. Implemented by repo.Store; unit tests substitute a fake that
// hands back in-memory repos.
type TxStore interface {
	InTx(ctx context.Context, fn func(vehicles repo.VehicleRepo, trips repo.TripRepo) error) error
	InSerializableTx(ctx context.Context, fn func(vehicles repo.VehicleRepo, trips repo.TripRepo) error) error
}

// TripRequest is a booking request after HTTP decoding but before validation.
type TripRequest struct {
	DepartureCode   string
	DestinationCode string
	DepartsAt       time.Time
}

// BookingResult is one of the two terminal outcomes of a booking request:
// exactly one of Trip (confirmed, persisted) or Proposal (computed, unsaved)
// is set.
type BookingResult struct {
	Trip     *domain.Trip
	Proposal *domain.Proposal
}

// TripStatusView is a trip plus its derived position. Coordinates is the
// interpolated point on the route, present only while the trip is in transit.
type TripStatusView struct {
	Trip        domain.Trip
	Position    domain.Position
	Coordinates *domain.Coordinates
}

// BookingService is the booking coordinator: it validates a route, books an
// immediately-available vehicle under a serializable transaction, or computes
// the earliest alternative across the fleet.
type BookingService struct {
	locations  repo.LocationRepo
	vehicles   repo.VehicleRepo
	trips      repo.TripRepo
	store      TxStore
	now        func() time.Time
	maxRetries uint64
}

// NewBookingService constructs a BookingService. The pool-bound repos serve
// the read-only paths; store opens the serializable transactions for the
// confirm branch.
func NewBookingService(locations repo.LocationRepo, vehicles repo.VehicleRepo, trips repo.TripRepo, store TxStore) *BookingService {
	return &BookingService{
		locations:  locations,
		vehicles:   vehicles,
		trips:      trips,
		store:      store,
		now:        time.Now,
		maxRetries: defaultMaxRetries,
	}
}

// WithClock overrides the service's notion of now. Tests use this to pin
// validation and timeline resolution to a fixed instant.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// RequestTrip runs one confirm-or-propose cycle.
//
// Confirmed: an immediately-available vehicle exists; a SCHEDULED trip is
// inserted in the same serializable transaction that observed the
// availability, so two concurrent requests for the same vehicle and instant
// cannot both commit. A transaction that loses the race (serialization
// failure or the unique departure-slot index) is re-run from the availability
// check, a bounded number of times.
//
// Proposed: no vehicle is immediately available; the earliest alternative
// across the fleet is returned unsaved. domain.ErrUnavailable means no
// vehicle can ever reach the departure point under current schedules.
func (s *BookingService) RequestTrip(ctx context.Context, req TripRequest) (BookingResult, error) {
	departure, destination, err := s.validateRoute(ctx, req)
	if err != nil {
		return BookingResult{}, err
	}

	km := geo.DistanceBetween(departure, destination)
	arrivesAt := geo.ArrivalTime(req.DepartsAt, km)

	var confirmed *domain.Trip
	backoff := retry.WithMaxRetries(s.maxRetries, retry.NewFibonacci(10*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		confirmed = nil
		txErr := s.store.InSerializableTx(ctx, func(vehicles repo.VehicleRepo, trips repo.TripRepo) error {
			avail := NewAvailabilityService(vehicles, trips)
			candidates, err := avail.FindAvailable(ctx, departure.Code, req.DepartsAt)
			if err != nil {
				return err
			}
			if len(candidates) == 0 {
				return errNoneAvailable
			}

			created, err := trips.Create(ctx, domain.Trip{
				VehicleID:       candidates[0].ID,
				DepartureCode:   departure.Code,
				DestinationCode: destination.Code,
				DepartsAt:       req.DepartsAt,
				ArrivesAt:       arrivesAt,
				Status:          domain.StatusScheduled,
			})
			if err != nil {
				return err
			}
			confirmed = &created
			return nil
		})
		if txErr != nil && (repo.IsSerializationFailure(txErr) || repo.IsUniqueViolation(txErr)) {
			return retry.RetryableError(txErr)
		}
		return txErr
	})

	switch {
	case err == nil:
		return BookingResult{Trip: confirmed}, nil
	case errors.Is(err, errNoneAvailable):
		return s.propose(ctx, departure, destination, req.DepartsAt)
	case repo.IsSerializationFailure(err) || repo.IsUniqueViolation(err):
		// Retry budget spent and the slot is still contested.
		return BookingResult{}, fmt.Errorf("service.BookingService.RequestTrip: %w: booking lost to a concurrent request, retry", domain.ErrConflict)
	default:
		return BookingResult{}, fmt.Errorf("service.BookingService.RequestTrip: %w", err)
	}
}

// propose computes the unsaved earliest-alternative answer.
func (s *BookingService) propose(ctx context.Context, departure, destination domain.Location, after time.Time) (BookingResult, error) {
	avail := NewAvailabilityService(s.vehicles, s.trips)
	proposal, ok, err := avail.EarliestAlternative(ctx, departure, destination, after)
	if err != nil {
		return BookingResult{}, fmt.Errorf("service.BookingService.RequestTrip: %w", err)
	}
	if !ok {
		return BookingResult{}, fmt.Errorf("service.BookingService.RequestTrip: %w: no vehicle can reach %s under current schedules", domain.ErrUnavailable, departure.Code)
	}
	return BookingResult{Proposal: &proposal}, nil
}

// validateRoute rejects a request before any availability computation runs:
// the two codes must be distinct known locations and the departure must be
// strictly in the future but within the booking horizon.
func (s *BookingService) validateRoute(ctx context.Context, req TripRequest) (departure, destination domain.Location, err error) {
	depCode := strings.ToUpper(strings.TrimSpace(req.DepartureCode))
	destCode := strings.ToUpper(strings.TrimSpace(req.DestinationCode))

	if depCode == destCode {
		return domain.Location{}, domain.Location{}, fmt.Errorf("%w: departure and destination must differ", domain.ErrValidation)
	}

	now := s.now()
	if !req.DepartsAt.After(now) {
		return domain.Location{}, domain.Location{}, fmt.Errorf("%w: departure time must be in the future", domain.ErrValidation)
	}
	if req.DepartsAt.After(now.Add(bookingHorizon)) {
		return domain.Location{}, domain.Location{}, fmt.Errorf("%w: departure time is more than a year ahead", domain.ErrValidation)
	}

	departure, err = s.locations.GetByCode(ctx, depCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Location{}, domain.Location{}, fmt.Errorf("%w: unknown departure location %q", domain.ErrNotFound, depCode)
		}
		return domain.Location{}, domain.Location{}, fmt.Errorf("service.BookingService.RequestTrip: %w", err)
	}
	destination, err = s.locations.GetByCode(ctx, destCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Location{}, domain.Location{}, fmt.Errorf("%w: unknown destination location %q", domain.ErrNotFound, destCode)
		}
		return domain.Location{}, domain.Location{}, fmt.Errorf("service.BookingService.RequestTrip: %w", err)
	}
	return departure, destination, nil
}

// Cancel flips a SCHEDULED, not-yet-departed trip to CANCELLED.
// The repo performs the flip as one conditional UPDATE; the pre-fetch here
// only exists to report the precise rejection reason.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}

	now := s.now()
	switch {
	case t.Status == domain.StatusCancelled:
		return domain.Trip{}, fmt.Errorf("%w: trip is already cancelled", domain.ErrConflict)
	case t.Status == domain.StatusCompleted:
		return domain.Trip{}, fmt.Errorf("%w: trip is already completed", domain.ErrConflict)
	case t.Status == domain.StatusInProgress || !t.DepartsAt.After(now):
		return domain.Trip{}, fmt.Errorf("%w: trip has already departed", domain.ErrConflict)
	}

	cancelled, err := s.trips.CancelScheduled(ctx, id, now)
	if err != nil {
		// The conditional UPDATE lost a race with the reconciler or another
		// cancel between our fetch and the write.
		return domain.Trip{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	return cancelled, nil
}

// Status returns a trip together with its derived position: in transit with
// interpolated coordinates while the travel window covers now, otherwise
// resting at the departure or destination point.
func (s *BookingService) Status(ctx context.Context, id uuid.UUID) (TripStatusView, error) {
	t, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return TripStatusView{}, fmt.Errorf("service.BookingService.Status: %w", err)
	}

	view := TripStatusView{Trip: t}
	now := s.now()

	if t.Active() && t.InProgressAt(now) {
		departure, err := s.locations.GetByCode(ctx, t.DepartureCode)
		if err != nil {
			return TripStatusView{}, fmt.Errorf("service.BookingService.Status: %w", err)
		}
		destination, err := s.locations.GetByCode(ctx, t.DestinationCode)
		if err != nil {
			return TripStatusView{}, fmt.Errorf("service.BookingService.Status: %w", err)
		}

		view.Position = domain.InTransitOn(t)
		coords := geo.Interpolate(t.DepartsAt, t.ArrivesAt, departure.Coordinates(), destination.Coordinates(), now)
		view.Coordinates = &coords
		return view, nil
	}

	if t.Active() && !t.ArrivesAt.After(now) {
		view.Position = domain.AtLocation(t.DestinationCode)
	} else {
		view.Position = domain.AtLocation(t.DepartureCode)
	}
	return view, nil
}

// List returns trips matching the filter, paginated. Always returns a non-nil
// slice so callers can safely range over it.
func (s *BookingService) List(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListPaged(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("service.BookingService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}
