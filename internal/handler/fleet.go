package handler

import (
	"errors"
	"net/http"
	"time"

	"fleetbook/internal/domain"
)

// vehiclePositionResponse is the body for GET /vehicles/{id}/position.
type vehiclePositionResponse struct {
	Vehicle     domain.Vehicle     `json:"vehicle"`
	Position    domain.Position    `json:"position"`
	Coordinates domain.Coordinates `json:"coordinates"`
	At          time.Time          `json:"at"`
}

// ListLocations handles GET /locations.
func (s *Server) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.fleet.Locations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string][]domain.Location{"data": locations})
}

// ListVehicles handles GET /vehicles.
func (s *Server) ListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.fleet.Vehicles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string][]domain.Vehicle{"data": vehicles})
}

// GetVehiclePosition handles GET /vehicles/{id}/position: the vehicle's
// location derived from its trip timeline, interpolated while in transit.
func (s *Server) GetVehiclePosition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "vehicle")
	if !ok {
		return
	}

	view, err := s.fleet.VehiclePosition(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond(w, http.StatusNotFound, notFoundBody("vehicle not found"))
			return
		}
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, vehiclePositionResponse{
		Vehicle:     view.Vehicle,
		Position:    view.Position,
		Coordinates: view.Coordinates,
		At:          view.At,
	})
}
