package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"fleetbook/internal/domain"
	"fleetbook/internal/geo"
	"fleetbook/internal/service"
)

// tripRequestBody is the JSON body for POST /trips.
type tripRequestBody struct {
	DepartureCode   string `json:"departure_code"`
	DestinationCode string `json:"destination_code"`
	DepartsAt       string `json:"departs_at"` // RFC 3339
}

// bookingResponse is the body for both booking outcomes. Outcome is
// "confirmed" (trip persisted, HTTP 201) or "proposed" (unsaved alternative,
// HTTP 200 — re-submit the proposed time to book it).
type bookingResponse struct {
	Outcome  string           `json:"outcome"`
	Trip     *domain.Trip     `json:"trip,omitempty"`
	Proposal *domain.Proposal `json:"proposal,omitempty"`
}

// tripStatusResponse is the body for GET /trips/{id}.
type tripStatusResponse struct {
	Trip        domain.Trip         `json:"trip"`
	Position    domain.Position     `json:"position"`
	Coordinates *domain.Coordinates `json:"coordinates,omitempty"`
}

// tripListResponse is the paginated body for GET /trips.
type tripListResponse struct {
	Data       []domain.Trip `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// RequestTrip handles POST /trips.
func (s *Server) RequestTrip(w http.ResponseWriter, r *http.Request) {
	var body tripRequestBody
	if !decode(w, r, &body) {
		return
	}

	departsAt, err := geo.ParseTime(body.DepartsAt)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.bookings.RequestTrip(r.Context(), service.TripRequest{
		DepartureCode:   body.DepartureCode,
		DestinationCode: body.DestinationCode,
		DepartsAt:       departsAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Trip != nil {
		respond(w, http.StatusCreated, bookingResponse{Outcome: "confirmed", Trip: result.Trip})
		return
	}
	respond(w, http.StatusOK, bookingResponse{Outcome: "proposed", Proposal: result.Proposal})
}

// CancelTrip handles POST /trips/{id}/cancel.
func (s *Server) CancelTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "trip")
	if !ok {
		return
	}

	cancelled, err := s.bookings.Cancel(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, map[string]domain.Trip{"trip": cancelled})
}

// GetTrip handles GET /trips/{id}: the trip's status plus its derived
// position, with interpolated coordinates while in transit.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "trip")
	if !ok {
		return
	}

	view, err := s.bookings.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond(w, http.StatusNotFound, notFoundBody("trip not found"))
			return
		}
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, tripStatusResponse{
		Trip:        view.Trip,
		Position:    view.Position,
		Coordinates: view.Coordinates,
	})
}

// ListTrips handles GET /trips.
// Supports ?vehicle_id=, ?status=, ?from=, ?to= filters and ?page=/?limit=
// pagination (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTripFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	trips, total, err := s.bookings.List(r.Context(), filter, params)
	if err != nil {
		writeError(w, err)
		return
	}

	respond(w, http.StatusOK, tripListResponse{
		Data: trips,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// parseTripFilter builds a domain.TripFilter from query parameters.
// Malformed values are validation failures, not silently ignored filters.
func parseTripFilter(r *http.Request) (domain.TripFilter, error) {
	var filter domain.TripFilter
	q := r.URL.Query()

	if v := q.Get("vehicle_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return domain.TripFilter{}, fmt.Errorf("%w: invalid vehicle_id", domain.ErrValidation)
		}
		filter.VehicleID = &id
	}
	if v := q.Get("status"); v != "" {
		status, err := domain.ParseTripStatus(v)
		if err != nil {
			return domain.TripFilter{}, err
		}
		filter.Status = &status
	}
	if v := q.Get("from"); v != "" {
		t, err := geo.ParseTime(v)
		if err != nil {
			return domain.TripFilter{}, err
		}
		filter.From = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := geo.ParseTime(v)
		if err != nil {
			return domain.TripFilter{}, err
		}
		filter.To = &t
	}
	return filter, nil
}

// queryInt returns a pointer to the integer query parameter named by key,
// or nil when absent or malformed.
func queryInt(r *http.Request, key string) *int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
