// Package handler implements the HTTP handlers for the Fleetbook API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (trip.go, fleet.go, reconcile.go, health.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fleetbook/internal/domain"
	"fleetbook/internal/service"
)

// BookingServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type BookingServicer interface {
	RequestTrip(ctx context.Context, req service.TripRequest) (service.BookingResult, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	Status(ctx context.Context, id uuid.UUID) (service.TripStatusView, error)
	List(ctx context.Context, filter domain.TripFilter, page domain.PaginationParams) ([]domain.Trip, int64, error)
}

// FleetServicer defines the read-only fleet operations the handlers depend on.
type FleetServicer interface {
	Locations(ctx context.Context) ([]domain.Location, error)
	Vehicles(ctx context.Context) ([]domain.Vehicle, error)
	VehiclePosition(ctx context.Context, id uuid.UUID) (service.VehiclePositionView, error)
}

// Reconciler defines the status-advancement operation exposed at /reconcile.
type Reconciler interface {
	Reconcile(ctx context.Context) (service.ReconcileReport, error)
}

// Server holds the handler dependencies for all API endpoints.
// Wire it in main.go via Server.Routes().
type Server struct {
	bookings   BookingServicer
	fleet      FleetServicer
	reconciler Reconciler
}

// NewServer constructs the Server with all its dependencies.
func NewServer(bookings BookingServicer, fleet FleetServicer, reconciler Reconciler) *Server {
	return &Server{bookings: bookings, fleet: fleet, reconciler: reconciler}
}

// Routes returns the chi router for the full API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.RequestTrip)
		r.Get("/", s.ListTrips)
		r.Get("/{id}", s.GetTrip)
		r.Post("/{id}/cancel", s.CancelTrip)
	})

	r.Get("/locations", s.ListLocations)
	r.Get("/vehicles", s.ListVehicles)
	r.Get("/vehicles/{id}/position", s.GetVehiclePosition)

	r.Post("/reconcile", s.Reconcile)

	return r
}

// respond writes v as a JSON response with the given status code.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode unmarshals the request body into v, limiting accepted fields to the
// declared struct. Returns false after writing a 422 when the body is absent
// or malformed.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		respond(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond(w, http.StatusUnprocessableEntity, requestBody("invalid JSON body"))
		return false
	}
	return true
}

// pathUUID parses the {id} URL parameter. Returns false after writing a 404 —
// a malformed id can never name an existing resource.
func pathUUID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, notFoundBody(what+" not found"))
		return uuid.UUID{}, false
	}
	return id, true
}
