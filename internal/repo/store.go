package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Store bundles transaction control with repo construction: callers get repos
// bound to a single transaction without touching pgx directly. The services
// depend on this through their own consumer-side interfaces, so unit tests
// substitute in-memory fakes and never open a database.
type Store struct {
	pool Beginner
}

// NewStore wraps a connection pool. The pool's lifecycle stays with the
// process entry point; Store only borrows it to open transactions.
func NewStore(pool Beginner) *Store {
	return &Store{pool: pool}
}

// InTx runs fn with vehicle and trip repos bound to one read-committed
// transaction. Used by the status reconciler so both sweeps and the home
// location propagation commit atomically.
func (s *Store) InTx(ctx context.Context, fn func(vehicles VehicleRepo, trips TripRepo) error) error {
	return InTx(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(NewVehicleRepo(tx), NewTripRepo(tx))
	})
}

// InSerializableTx runs fn with vehicle and trip repos bound to one
// SERIALIZABLE transaction. This is the consistency guarantee behind booking:
// the availability check and the trip insert execute atomically relative to
// any concurrent transaction doing the same for the same vehicle — one of two
// racing bookings fails with a serialization error instead of both committing.
func (s *Store) InSerializableTx(ctx context.Context, fn func(vehicles VehicleRepo, trips TripRepo) error) error {
	return InTx(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		return fn(NewVehicleRepo(tx), NewTripRepo(tx))
	})
}
