package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetbook/internal/domain"
	"fleetbook/internal/repo"
	"fleetbook/internal/service"
)

// Hand-written test doubles in the repo interfaces' shape. Each method is a
// function field — set only the ones your test needs. This is idiomatic Go:
// no mock generation library required for simple cases.

type mockLocationRepo struct {
	getByCode func(ctx context.Context, code string) (domain.Location, error)
	list      func(ctx context.Context) ([]domain.Location, error)
}

func (m *mockLocationRepo) GetByCode(ctx context.Context, code string) (domain.Location, error) {
	return m.getByCode(ctx, code)
}
func (m *mockLocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	return m.list(ctx)
}

type mockVehicleRepo struct {
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Vehicle, error)
	list            func(ctx context.Context) ([]domain.Vehicle, error)
	setHomeLocation func(ctx context.Context, id uuid.UUID, code string) error
}

func (m *mockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Vehicle, error) {
	return m.getByID(ctx, id)
}
func (m *mockVehicleRepo) List(ctx context.Context) ([]domain.Vehicle, error) {
	return m.list(ctx)
}
func (m *mockVehicleRepo) SetHomeLocation(ctx context.Context, id uuid.UUID, code string) error {
	return m.setHomeLocation(ctx, id, code)
}

type mockTripRepo struct {
	create              func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID             func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listActiveByVehicle func(ctx context.Context, vehicleID uuid.UUID) ([]domain.Trip, error)
	listPaged           func(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error)
	cancelScheduled     func(ctx context.Context, id uuid.UUID, now time.Time) (domain.Trip, error)
	startDue            func(ctx context.Context, now time.Time) (int64, error)
	completeDue         func(ctx context.Context, now time.Time) ([]domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.Trip, error) {
	return m.listActiveByVehicle(ctx, vehicleID)
}
func (m *mockTripRepo) ListPaged(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listPaged(ctx, filter, page)
}
func (m *mockTripRepo) CancelScheduled(ctx context.Context, id uuid.UUID, now time.Time) (domain.Trip, error) {
	return m.cancelScheduled(ctx, id, now)
}
func (m *mockTripRepo) StartDue(ctx context.Context, now time.Time) (int64, error) {
	return m.startDue(ctx, now)
}
func (m *mockTripRepo) CompleteDue(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	return m.completeDue(ctx, now)
}

// compile-time checks: the doubles must satisfy the repo interfaces.
var (
	_ repo.LocationRepo = (*mockLocationRepo)(nil)
	_ repo.VehicleRepo  = (*mockVehicleRepo)(nil)
	_ repo.TripRepo     = (*mockTripRepo)(nil)
)

// fakeStore satisfies service.TxStore without a database: fn runs against the
// supplied mocks, optionally after beforeTx has had a chance to fail the
// whole "transaction" (used to simulate serialization losses).
type fakeStore struct {
	vehicles repo.VehicleRepo
	trips    repo.TripRepo
	beforeTx func(attempt int) error

	attempts int
}

func (s *fakeStore) run(ctx context.Context, fn func(vehicles repo.VehicleRepo, trips repo.TripRepo) error) error {
	s.attempts++
	if s.beforeTx != nil {
		if err := s.beforeTx(s.attempts); err != nil {
			return err
		}
	}
	return fn(s.vehicles, s.trips)
}

func (s *fakeStore) InTx(ctx context.Context, fn func(vehicles repo.VehicleRepo, trips repo.TripRepo) error) error {
	return s.run(ctx, fn)
}

func (s *fakeStore) InSerializableTx(ctx context.Context, fn func(vehicles repo.VehicleRepo, trips repo.TripRepo) error) error {
	return s.run(ctx, fn)
}

var _ service.TxStore = (*fakeStore)(nil)
