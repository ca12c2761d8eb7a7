package timeline_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain"
	"fleetbook/internal/timeline"
)

var base = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

// at returns base plus h hours — trip schedules in these tests are written
// as small hour offsets to keep the timelines readable.
func at(h int) time.Time {
	return base.Add(time.Duration(h) * time.Hour)
}

func trip(from, to string, departs, arrives time.Time, status domain.TripStatus) domain.Trip {
	return domain.Trip{
		ID:              uuid.New(),
		VehicleID:       uuid.New(),
		DepartureCode:   from,
		DestinationCode: to,
		DepartsAt:       departs,
		ArrivesAt:       arrives,
		Status:          status,
	}
}

// ---- Active ----------------------------------------------------------------

func TestActive_FiltersCancelledAndSorts(t *testing.T) {
	t1 := trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled)
	t2 := trip("LAX", "ORD", at(16), at(20), domain.StatusScheduled)
	cancelled := trip("JFK", "ORD", at(5), at(8), domain.StatusCancelled)

	got := timeline.Active([]domain.Trip{t2, cancelled, t1})

	require.Len(t, got, 2)
	assert.Equal(t, t1.ID, got[0].ID)
	assert.Equal(t, t2.ID, got[1].ID)
}

func TestActive_DoesNotMutateInput(t *testing.T) {
	t1 := trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled)
	t2 := trip("LAX", "ORD", at(16), at(20), domain.StatusScheduled)
	in := []domain.Trip{t2, t1}

	timeline.Active(in)

	assert.Equal(t, t2.ID, in[0].ID, "input order must be preserved")
}

// ---- LocationAt ------------------------------------------------------------

func TestLocationAt_NoTrips_Home(t *testing.T) {
	// A vehicle with no trips is at its home location at every instant.
	for _, h := range []int{-100, 0, 100} {
		pos := timeline.LocationAt("JFK", nil, at(h))
		assert.False(t, pos.InTransit)
		assert.Equal(t, "JFK", pos.LocationCode)
	}
}

func TestLocationAt_BeforeFirstDeparture_Home(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled),
	})

	pos := timeline.LocationAt("JFK", trips, at(9))

	assert.False(t, pos.InTransit)
	assert.Equal(t, "JFK", pos.LocationCode)
}

func TestLocationAt_InsideWindow_InTransit(t *testing.T) {
	tr := trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled)
	trips := timeline.Active([]domain.Trip{tr})

	// The window is half-open: in transit at departure, arrived at arrival.
	for _, h := range []int{10, 12, 14} {
		pos := timeline.LocationAt("JFK", trips, at(h))
		require.True(t, pos.InTransit, "expected in transit at hour %d", h)
		assert.Equal(t, tr.ID, pos.Trip.ID)
	}

	pos := timeline.LocationAt("JFK", trips, at(15))
	assert.False(t, pos.InTransit)
	assert.Equal(t, "LAX", pos.LocationCode)
}

func TestLocationAt_BetweenTrips_PriorDestination(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusCompleted),
		trip("LAX", "ORD", at(20), at(24), domain.StatusScheduled),
	})

	pos := timeline.LocationAt("JFK", trips, at(17))

	assert.False(t, pos.InTransit)
	assert.Equal(t, "LAX", pos.LocationCode)
}

func TestLocationAt_WalksWholeTimeline(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(1), at(6), domain.StatusCompleted),
		trip("LAX", "ORD", at(8), at(12), domain.StatusCompleted),
		trip("ORD", "DFW", at(14), at(16), domain.StatusScheduled),
	})

	pos := timeline.LocationAt("JFK", trips, at(13))
	assert.Equal(t, "ORD", pos.LocationCode)

	pos = timeline.LocationAt("JFK", trips, at(15))
	require.True(t, pos.InTransit)
	assert.Equal(t, "DFW", pos.Trip.DestinationCode)

	pos = timeline.LocationAt("JFK", trips, at(100))
	assert.Equal(t, "DFW", pos.LocationCode)
}

func TestLocationAt_CancelledTripsInvisible(t *testing.T) {
	all := []domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusCancelled),
	}

	pos := timeline.LocationAt("JFK", timeline.Active(all), at(12))

	assert.False(t, pos.InTransit, "a cancelled trip must not put the vehicle in transit")
	assert.Equal(t, "JFK", pos.LocationCode)
}

// A trip departing strictly inside a prior trip's travel window is schedule
// corruption. The resolver must not follow it: only a successor departing at
// or after the prior arrival counts. (The system this was modelled on
// silently followed such trips due to a filter bug.)
func TestLocationAt_OverlappingSuccessorNotFollowed(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(12), domain.StatusCompleted),
		trip("ORD", "DFW", at(11), at(15), domain.StatusScheduled), // overlaps the first
	})

	pos := timeline.LocationAt("JFK", trips, at(13))

	assert.False(t, pos.InTransit)
	assert.Equal(t, "LAX", pos.LocationCode, "the overlapping trip must be ignored")
}

// Booking an alternative proposal produces a leg departing at the exact
// instant the prior leg arrives. Such back-to-back successors are genuine and
// must be followed, or the vehicle would read as resting at the turnaround
// point for the whole second leg and could be double-booked.
func TestLocationAt_BackToBackSuccessorFollowed(t *testing.T) {
	second := trip("JFK", "LAX", at(15), at(20), domain.StatusScheduled)
	trips := timeline.Active([]domain.Trip{
		trip("LAX", "JFK", at(10), at(15), domain.StatusScheduled),
		second,
	})

	pos := timeline.LocationAt("LAX", trips, at(17))

	require.True(t, pos.InTransit, "mid-flight on the back-to-back leg")
	assert.Equal(t, second.ID, pos.Trip.ID)

	// At the turnaround instant itself the vehicle is already on the second
	// leg, not resting at JFK.
	pos = timeline.LocationAt("LAX", trips, at(15))
	require.True(t, pos.InTransit)
	assert.Equal(t, second.ID, pos.Trip.ID)
}

func TestLocationAt_GenuineSuccessorFollowed(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(12), domain.StatusCompleted),
		trip("LAX", "ORD", at(13), at(15), domain.StatusScheduled),
	})

	pos := timeline.LocationAt("JFK", trips, at(14))

	require.True(t, pos.InTransit)
	assert.Equal(t, "ORD", pos.Trip.DestinationCode)
}

// ---- NextAtPlace -----------------------------------------------------------

func TestNextAtPlace_AlreadyThere(t *testing.T) {
	got, ok := timeline.NextAtPlace("JFK", nil, "JFK", at(10))

	require.True(t, ok)
	assert.Equal(t, at(10), got)
}

func TestNextAtPlace_ReturnsEarliestArrival(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled),
		trip("LAX", "JFK", at(16), at(20), domain.StatusScheduled),
		trip("JFK", "LAX", at(22), at(26), domain.StatusScheduled),
		trip("LAX", "JFK", at(28), at(32), domain.StatusScheduled),
	})

	// At hour 11 the vehicle is mid-flight to LAX; it is next at JFK when
	// the first return leg arrives.
	got, ok := timeline.NextAtPlace("JFK", trips, "JFK", at(11))

	require.True(t, ok)
	assert.Equal(t, at(20), got)
}

func TestNextAtPlace_NeverReturns(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled),
	})

	_, ok := timeline.NextAtPlace("JFK", trips, "JFK", at(11))

	assert.False(t, ok, "no trip ever brings the vehicle back to JFK")
}

func TestNextAtPlace_CancelledReturnIgnored(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled),
		trip("LAX", "JFK", at(16), at(20), domain.StatusCancelled),
	})

	_, ok := timeline.NextAtPlace("JFK", trips, "JFK", at(11))

	assert.False(t, ok)
}

// ---- DepartsExactlyAt ------------------------------------------------------

func TestDepartsExactlyAt(t *testing.T) {
	trips := timeline.Active([]domain.Trip{
		trip("JFK", "LAX", at(10), at(15), domain.StatusScheduled),
	})

	assert.True(t, timeline.DepartsExactlyAt(trips, at(10)))
	assert.False(t, timeline.DepartsExactlyAt(trips, at(10).Add(time.Second)))
	assert.False(t, timeline.DepartsExactlyAt(nil, at(10)))
}
