// Package repo contains all database access logic for the Fleetbook API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. It is also what lets the
// booking coordinator run the same repo code inside a serializable transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// Beginner is the transaction-opening interface satisfied by *pgxpool.Pool.
// Services depend on it instead of the pool so tests can substitute a
// transaction-capable fake.
type Beginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// InTx runs fn inside a transaction with the given options, committing on nil
// and rolling back on error or panic. The booking coordinator passes
// pgx.TxOptions{IsoLevel: pgx.Serializable} so its availability check and trip
// insert are atomic relative to any concurrent booking for the same vehicle.
func InTx(ctx context.Context, db Beginner, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("repo.InTx: begin: %w", err)
	}
	// Rollback after Commit is a harmless no-op; this covers early returns
	// and panics in fn.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.InTx: commit: %w", err)
	}
	return nil
}

// IsSerializationFailure reports whether err is a Postgres serialization
// failure (SQLSTATE 40001) — the error a losing serializable transaction
// receives and the signal that the whole booking decision must be re-run.
func IsSerializationFailure(err error) bool {
	return pgErrCode(err) == "40001"
}

// IsUniqueViolation reports whether err is a unique constraint violation
// (SQLSTATE 23505) — raised by the partial unique index on
// (vehicle_id, departs_at) when two bookings race for the same slot.
func IsUniqueViolation(err error) bool {
	return pgErrCode(err) == "23505"
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
