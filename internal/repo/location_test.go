package repo_test

import (
	"context"
	"sort"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetbook/internal/domain"
	"fleetbook/internal/repo"
	"fleetbook/testutil"
)

// testTx opens a transaction against the test database that is rolled back
// when the test finishes, giving free per-test isolation. All repos in a test
// are constructed over the same transaction so they see each other's writes.
func testTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		// Rollback discards all changes made during the test — no cleanup SQL needed.
		_ = tx.Rollback(context.Background())
	})
	return tx
}

func TestLocationRepo_GetByCode(t *testing.T) {
	r := repo.NewLocationRepo(testTx(t))
	ctx := context.Background()

	got, err := r.GetByCode(ctx, "JFK")

	require.NoError(t, err)
	assert.Equal(t, "JFK", got.Code)
	assert.Equal(t, "New York John F. Kennedy", got.Name)
	assert.InDelta(t, 40.6413, got.Lat, 1e-9)
	assert.InDelta(t, -73.7781, got.Lng, 1e-9)
	assert.False(t, got.CreatedAt.IsZero(), "CreatedAt should be set by DB")
}

func TestLocationRepo_GetByCode_NotFound(t *testing.T) {
	r := repo.NewLocationRepo(testTx(t))

	_, err := r.GetByCode(context.Background(), "ZZZ")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocationRepo_List(t *testing.T) {
	r := repo.NewLocationRepo(testTx(t))

	got, err := r.List(context.Background())

	require.NoError(t, err)
	require.GreaterOrEqual(t, len(got), 8, "seed migration inserts eight locations")

	codes := make([]string, len(got))
	for i, l := range got {
		codes[i] = l.Code
	}
	assert.True(t, sort.StringsAreSorted(codes), "locations must come back in code order")
	assert.Contains(t, codes, "JFK")
	assert.Contains(t, codes, "SEA")
}
