package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fleetbook/internal/domain"
)

// LocationRepo defines the persistence operations for Locations.
// Locations are immutable after fleet setup, so there is no update or delete.
type LocationRepo interface {
	// GetByCode retrieves a location by its 3-character code.
	// Returns domain.ErrNotFound if no location with that code exists.
	GetByCode(ctx context.Context, code string) (domain.Location, error)

	// List returns all locations ordered by code.
	List(ctx context.Context) ([]domain.Location, error)
}

// pgLocationRepo is the Postgres implementation of LocationRepo.
type pgLocationRepo struct {
	db db
}

// NewLocationRepo constructs a LocationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLocationRepo(db db) LocationRepo {
	return &pgLocationRepo{db: db}
}

// GetByCode retrieves a location by primary key.
func (r *pgLocationRepo) GetByCode(ctx context.Context, code string) (domain.Location, error) {
	const q = `
		SELECT code, name, lat, lng, created_at
		FROM locations
		WHERE code = @code`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code})
	result, err := scanLocation(row)
	if err != nil {
		return domain.Location{}, fmt.Errorf("repo.LocationRepo.GetByCode: %w", err)
	}
	return result, nil
}

// List returns all locations ordered by code ascending.
func (r *pgLocationRepo) List(ctx context.Context) ([]domain.Location, error) {
	const q = `
		SELECT code, name, lat, lng, created_at
		FROM locations
		ORDER BY code`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.LocationRepo.List: %w", err)
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.LocationRepo.List: scan: %w", err)
		}
		locations = append(locations, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.LocationRepo.List: rows: %w", err)
	}

	return locations, nil
}

// scanLocation maps a single database row into a domain.Location.
func scanLocation(s scanner) (domain.Location, error) {
	var l domain.Location
	err := s.Scan(&l.Code, &l.Name, &l.Lat, &l.Lng, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Location{}, domain.ErrNotFound
		}
		return domain.Location{}, err
	}
	return l, nil
}
