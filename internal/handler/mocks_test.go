package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain"
	"fleetbook/internal/handler"
	"fleetbook/internal/service"
)

// Test doubles for the handler's service interfaces.
// Set only the method fields your test needs.

type mockBookingServicer struct {
	requestTrip func(ctx context.Context, req service.TripRequest) (service.BookingResult, error)
	cancel      func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	status      func(ctx context.Context, id uuid.UUID) (service.TripStatusView, error)
	list        func(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error)
}

func (m *mockBookingServicer) RequestTrip(ctx context.Context, req service.TripRequest) (service.BookingResult, error) {
	return m.requestTrip(ctx, req)
}
func (m *mockBookingServicer) Cancel(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.cancel(ctx, id)
}
func (m *mockBookingServicer) Status(ctx context.Context, id uuid.UUID) (service.TripStatusView, error) {
	return m.status(ctx, id)
}
func (m *mockBookingServicer) List(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.list(ctx, filter, page)
}

type mockFleetServicer struct {
	locations       func(ctx context.Context) ([]domain.Location, error)
	vehicles        func(ctx context.Context) ([]domain.Vehicle, error)
	vehiclePosition func(ctx context.Context, id uuid.UUID) (service.VehiclePositionView, error)
}

func (m *mockFleetServicer) Locations(ctx context.Context) ([]domain.Location, error) {
	return m.locations(ctx)
}
func (m *mockFleetServicer) Vehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return m.vehicles(ctx)
}
func (m *mockFleetServicer) VehiclePosition(ctx context.Context, id uuid.UUID) (service.VehiclePositionView, error) {
	return m.vehiclePosition(ctx, id)
}

type mockReconciler struct {
	reconcile func(ctx context.Context) (service.ReconcileReport, error)
}

func (m *mockReconciler) Reconcile(ctx context.Context) (service.ReconcileReport, error) {
	return m.reconcile(ctx)
}

// compile-time checks: the doubles must satisfy the handler interfaces.
var (
	_ handler.BookingServicer = (*mockBookingServicer)(nil)
	_ handler.FleetServicer   = (*mockFleetServicer)(nil)
	_ handler.Reconciler      = (*mockReconciler)(nil)
)

// newHTTPHandler wires a Server with the given mocks into the chi router.
// This mirrors exactly how main.go wires it in production.
func newHTTPHandler(bookings handler.BookingServicer, fleet handler.FleetServicer, rec handler.Reconciler) http.Handler {
	return handler.NewServer(bookings, fleet, rec).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// errorResponse mirrors the wire shape of handler.ErrorResponse for decoding.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, body *bytes.Buffer) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}
