package booking

import (
	"testing"
	"time"

	"bjorkvang/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkBooking(id string, start, end time.Time, status string, spaces ...string) *models.Booking {
	return &models.Booking{ID: id, Start: start, End: end, Status: status, Spaces: spaces}
}

func TestFindConflictHalfOpen(t *testing.T) {
	base := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	existing := []*models.Booking{
		mkBooking("a", base, base.Add(4*time.Hour), models.StatusConfirmed),
	}

	// Overlapping window conflicts.
	c := FindConflict(base.Add(2*time.Hour), base.Add(6*time.Hour), nil, existing)
	require.NotNil(t, c)
	assert.Equal(t, "a", c.ID)

	// Back-to-back does not: [18,22) then [22,02).
	assert.Nil(t, FindConflict(base.Add(4*time.Hour), base.Add(8*time.Hour), nil, existing))
	assert.Nil(t, FindConflict(base.Add(-4*time.Hour), base, nil, existing))

	// Containment conflicts both ways.
	assert.NotNil(t, FindConflict(base.Add(time.Hour), base.Add(2*time.Hour), nil, existing))
	assert.NotNil(t, FindConflict(base.Add(-time.Hour), base.Add(6*time.Hour), nil, existing))
}

func TestFindConflictSpaces(t *testing.T) {
	base := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	existing := []*models.Booking{
		mkBooking("a", base, base.Add(4*time.Hour), models.StatusConfirmed, "storsalen"),
	}

	// Disjoint spaces can share the window.
	assert.Nil(t, FindConflict(base, base.Add(4*time.Hour), []string{"kjøkken"}, existing))

	// Same space conflicts.
	assert.NotNil(t, FindConflict(base, base.Add(4*time.Hour), []string{"storsalen"}, existing))

	// An empty set means the entire venue on either side.
	assert.NotNil(t, FindConflict(base, base.Add(4*time.Hour), nil, existing))
	wholeVenue := []*models.Booking{
		mkBooking("b", base, base.Add(4*time.Hour), models.StatusConfirmed),
	}
	assert.NotNil(t, FindConflict(base, base.Add(4*time.Hour), []string{"kjøkken"}, wholeVenue))
}

func TestFindConflictRejectedNeverBlocks(t *testing.T) {
	base := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	existing := []*models.Booking{
		mkBooking("a", base, base.Add(4*time.Hour), models.StatusRejected),
	}

	assert.Nil(t, FindConflict(base, base.Add(4*time.Hour), nil, existing))
}

func TestFindConflictBlockedBlocks(t *testing.T) {
	base := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	existing := []*models.Booking{
		mkBooking("hold", base, base.Add(4*time.Hour), models.StatusBlocked),
	}

	c := FindConflict(base.Add(time.Hour), base.Add(2*time.Hour), nil, existing)
	require.NotNil(t, c)
	assert.Equal(t, "hold", c.ID)
}

func TestFindConflictSkipsMalformed(t *testing.T) {
	base := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	existing := []*models.Booking{
		nil,
		mkBooking("zero", time.Time{}, time.Time{}, models.StatusConfirmed),
		mkBooking("inverted", base.Add(4*time.Hour), base, models.StatusConfirmed),
	}

	assert.Nil(t, FindConflict(base, base.Add(4*time.Hour), nil, existing))
}

func TestFindConflictReturnsFirst(t *testing.T) {
	base := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	existing := []*models.Booking{
		mkBooking("first", base, base.Add(4*time.Hour), models.StatusPending),
		mkBooking("second", base, base.Add(4*time.Hour), models.StatusConfirmed),
	}

	c := FindConflict(base, base.Add(time.Hour), nil, existing)
	require.NotNil(t, c)
	assert.Equal(t, "first", c.ID)
}
