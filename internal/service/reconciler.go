package service

import (
	"context"
	"fmt"
	"time"

	"fleetbook/internal/repo"
)

// ReconcileReport summarizes one reconciler pass.
type ReconcileReport struct {
	// Started is the number of trips advanced SCHEDULED → IN_PROGRESS.
	Started int64 `json:"started"`
	// Completed is the number of trips advanced to COMPLETED. Each completed
	// trip also moved its vehicle's home location to the trip's destination.
	Completed int64 `json:"completed"`
}

// ReconcilerService advances trip status with the passage of time. It is
// invoked on a fixed cadence by the process entry point (or by POST
// /reconcile); each pass is idempotent, so overlapping or repeated runs with
// no newly-elapsed trips change nothing.
type ReconcilerService struct {
	store TxStore
	now   func() time.Time
}

// NewReconcilerService constructs a ReconcilerService over the given store.
func NewReconcilerService(store TxStore) *ReconcilerService {
	return &ReconcilerService{store: store, now: time.Now}
}

// WithClock overrides the service's notion of now, for tests.
func (s *ReconcilerService) WithClock(now func() time.Time) *ReconcilerService {
	s.now = now
	return s
}

// Reconcile runs the two ordered sweeps in a single transaction:
// (a) SCHEDULED trips whose departure has passed but not their arrival
// become IN_PROGRESS; (b) SCHEDULED or IN_PROGRESS trips whose arrival has
// passed become COMPLETED, and each completed trip's destination overwrites
// the owning vehicle's home location. Cancelled trips are never touched.
func (s *ReconcilerService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	now := s.now()

	var report ReconcileReport
	err := s.store.InTx(ctx, func(vehicles repo.VehicleRepo, trips repo.TripRepo) error {
		started, err := trips.StartDue(ctx, now)
		if err != nil {
			return err
		}
		report.Started = started

		completed, err := trips.CompleteDue(ctx, now)
		if err != nil {
			return err
		}
		report.Completed = int64(len(completed))

		// CompleteDue returns trips in arrival order, so when one vehicle
		// completes several trips in a pass its home ends at the latest
		// arrival's destination.
		for _, t := range completed {
			if err := vehicles.SetHomeLocation(ctx, t.VehicleID, t.DestinationCode); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ReconcileReport{}, fmt.Errorf("service.ReconcilerService.Reconcile: %w", err)
	}
	return report, nil
}
