package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"fleetbook/internal/domain"
)

const tripColumns = `id, vehicle_id, departure_code, destination_code, departs_at, arrives_at, status, created_at, updated_at`

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the services to be unit-tested with mocks.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated). The partial
	// unique index on (vehicle_id, departs_at) and the departs_at < arrives_at
	// CHECK constraint both surface here as errors.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListActiveByVehicle returns a vehicle's non-cancelled trips ordered by
	// departs_at ascending — the timeline resolver's working set, fetched
	// once per resolution.
	ListActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.Trip, error)

	// ListPaged returns trips matching the filter ordered by departs_at
	// ascending, plus the total match count for pagination.
	ListPaged(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error)

	// CancelScheduled flips a trip to CANCELLED, but only while it is still
	// SCHEDULED and has not yet departed. The condition lives in the UPDATE
	// itself so cancellation needs nothing stronger than row-level atomicity.
	// Returns domain.ErrConflict when the trip exists but no longer satisfies
	// the condition; callers disambiguate the reason from a prior fetch.
	CancelScheduled(ctx context.Context, id uuid.UUID, now time.Time) (domain.Trip, error)

	// StartDue advances every SCHEDULED trip whose travel window covers now
	// to IN_PROGRESS, returning how many rows changed. Idempotent.
	StartDue(ctx context.Context, now time.Time) (int64, error)

	// CompleteDue advances every SCHEDULED or IN_PROGRESS trip whose arrival
	// has passed to COMPLETED and returns the affected trips, ordered by
	// arrival, so the caller can propagate each destination into its vehicle's
	// home location and the last write per vehicle is the latest arrival.
	// Idempotent; cancelled trips are never touched.
	CompleteDue(ctx context.Context, now time.Time) ([]domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation. The booking coordinator passes its serializable pgx.Tx.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (vehicle_id, departure_code, destination_code, departs_at, arrives_at, status)
		VALUES (@vehicle_id, @departure_code, @destination_code, @departs_at, @arrives_at, @status)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"vehicle_id":       trip.VehicleID,
		"departure_code":   trip.DepartureCode,
		"destination_code": trip.DestinationCode,
		"departs_at":       trip.DepartsAt,
		"arrives_at":       trip.ArrivesAt,
		"status":           trip.Status,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListActiveByVehicle returns the vehicle's non-cancelled trips in
// chronological departure order.
func (r *pgTripRepo) ListActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE vehicle_id = @vehicle_id
		  AND status <> 'CANCELLED'
		ORDER BY departs_at, arrives_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"vehicle_id": vehicleID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListActiveByVehicle: %w", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListActiveByVehicle: %w", err)
	}
	return trips, nil
}

// ListPaged returns trips matching the filter plus the total match count.
func (r *pgTripRepo) ListPaged(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	where, args := buildTripFilter(filter)

	countQ := `SELECT count(*) FROM trips` + where
	var total int64
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: count: %w", err)
	}

	listQ := `
		SELECT ` + tripColumns + `
		FROM trips` + where + `
		ORDER BY departs_at, arrives_at, id
		LIMIT @limit OFFSET @offset`
	args["limit"] = page.Limit
	args["offset"] = page.Offset()

	rows, err := r.db.Query(ctx, listQ, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListPaged: %w", err)
	}
	return trips, total, nil
}

// CancelScheduled conditionally cancels a trip in a single UPDATE.
func (r *pgTripRepo) CancelScheduled(ctx context.Context, id uuid.UUID, now time.Time) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET status     = 'CANCELLED',
		    updated_at = now()
		WHERE id = @id
		  AND status = 'SCHEDULED'
		  AND departs_at > @now
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "now": now})
	result, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// No row matched: the trip is gone, already terminal, or already
			// departed. The service layer tells those cases apart.
			return domain.Trip{}, fmt.Errorf("repo.TripRepo.CancelScheduled: %w", domain.ErrConflict)
		}
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.CancelScheduled: %w", err)
	}
	return result, nil
}

// StartDue advances due SCHEDULED trips to IN_PROGRESS.
func (r *pgTripRepo) StartDue(ctx context.Context, now time.Time) (int64, error) {
	const q = `
		UPDATE trips
		SET status     = 'IN_PROGRESS',
		    updated_at = now()
		WHERE status = 'SCHEDULED'
		  AND departs_at <= @now
		  AND arrives_at > @now`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"now": now})
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.StartDue: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CompleteDue advances arrived trips to COMPLETED and returns them in
// arrival order. UPDATE ... RETURNING emits rows in an unspecified order, so
// the CTE re-sorts them; callers that fold the results per vehicle rely on
// the latest arrival coming last.
func (r *pgTripRepo) CompleteDue(ctx context.Context, now time.Time) ([]domain.Trip, error) {
	const q = `
		WITH done AS (
			UPDATE trips
			SET status     = 'COMPLETED',
			    updated_at = now()
			WHERE status IN ('SCHEDULED', 'IN_PROGRESS')
			  AND arrives_at <= @now
			RETURNING ` + tripColumns + `
		)
		SELECT ` + tripColumns + `
		FROM done
		ORDER BY arrives_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"now": now})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CompleteDue: %w", err)
	}
	defer rows.Close()

	trips, err := collectTrips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CompleteDue: %w", err)
	}
	return trips, nil
}

// buildTripFilter turns a domain.TripFilter into a WHERE clause and its args.
// An empty filter yields an empty clause.
func buildTripFilter(filter domain.TripFilter) (string, pgx.NamedArgs) {
	var conds []string
	args := pgx.NamedArgs{}

	if filter.VehicleID != nil {
		conds = append(conds, "vehicle_id = @vehicle_id")
		args["vehicle_id"] = *filter.VehicleID
	}
	if filter.Status != nil {
		conds = append(conds, "status = @status")
		args["status"] = *filter.Status
	}
	if filter.From != nil {
		conds = append(conds, "departs_at >= @from")
		args["from"] = *filter.From
	}
	if filter.To != nil {
		conds = append(conds, "departs_at < @to")
		args["to"] = *filter.To
	}

	if len(conds) == 0 {
		return "", args
	}
	return "\n\t\tWHERE " + strings.Join(conds, "\n\t\t  AND "), args
}

// collectTrips drains rows into a slice.
func collectTrips(rows pgx.Rows) ([]domain.Trip, error) {
	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		vehicleID pgtype.UUID
	)

	err := s.Scan(&id, &vehicleID, &t.DepartureCode, &t.DestinationCode,
		&t.DepartsAt, &t.ArrivesAt, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.VehicleID = uuid.UUID(vehicleID.Bytes)
	return t, nil
}
