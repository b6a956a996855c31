package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bjorkvang/internal/booking"
	"bjorkvang/internal/database"
	"bjorkvang/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *booking.Normalizer {
	return booking.NewNormalizer(booking.NewStatusEngine(models.PolicyBoard, "", 0), 0)
}

func testBooking(start time.Time, hours int, spaces ...string) *models.Booking {
	return &models.Booking{
		Start: start,
		End:   start.Add(time.Duration(hours) * time.Hour),
		Requester: models.Requester{
			Name:  "Kari Nordmann",
			Email: "kari@example.com",
		},
		Spaces: spaces,
		Status: models.StatusPending,
	}
}

func TestMemoryStoreCreateAndConflict(t *testing.T) {
	store, err := NewMemoryStore("", testNormalizer())
	require.NoError(t, err)
	ctx := context.Background()

	start := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	first := testBooking(start, 4, "storsalen")
	require.NoError(t, store.CreateBookingWithLock(ctx, first))
	require.NotEmpty(t, first.ID)

	second := testBooking(start.Add(time.Hour), 4, "storsalen")
	err = store.CreateBookingWithLock(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrConflict)

	var cErr *database.ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, first.ID, cErr.BookingID)

	// Disjoint space, same window.
	require.NoError(t, store.CreateBookingWithLock(ctx, testBooking(start, 4, "kjøkken")))

	list, err := store.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryStorePersistence(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "bookings.json")
	ctx := context.Background()

	store, err := NewMemoryStore(statePath, testNormalizer())
	require.NoError(t, err)

	start := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	b := testBooking(start, 4, "storsalen")
	require.NoError(t, store.CreateBookingWithLock(ctx, b))
	require.NoError(t, store.UpdateBookingStatus(ctx, b.ID, models.StatusApproved))

	// A fresh store reads the same collection back.
	reloaded, err := NewMemoryStore(statePath, testNormalizer())
	require.NoError(t, err)

	got, err := reloaded.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Start.Equal(start))
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, []string{"storsalen"}, got.Spaces)
	// The decision bumped the version; a restart must not reset it.
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryStoreDropsCorruptRecords(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "bookings.json")
	state := `[
		{"id": "good", "start": "2026-10-10T18:00:00Z", "end": "2026-10-10T22:00:00Z",
		 "name": "Kari", "email": "kari@example.com", "status": "pending"},
		{"id": "bad", "start": "not a date", "name": "Ola", "email": "ola@example.com"},
		{"id": "worse", "name": "Per"}
	]`
	require.NoError(t, os.WriteFile(statePath, []byte(state), 0o644))

	store, err := NewMemoryStore(statePath, testNormalizer())
	require.NoError(t, err)

	list, err := store.ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].ID)
}

func TestMemoryStoreVersionedUpdate(t *testing.T) {
	store, err := NewMemoryStore("", testNormalizer())
	require.NoError(t, err)
	ctx := context.Background()

	b := testBooking(time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC), 4)
	require.NoError(t, store.CreateBooking(ctx, b))

	require.NoError(t, store.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusApproved))
	err = store.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusRejected)
	assert.ErrorIs(t, err, database.ErrConcurrentModification)

	got, err := store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, int64(2), got.Version)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store, err := NewMemoryStore("", testNormalizer())
	require.NoError(t, err)
	ctx := context.Background()

	b := testBooking(time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC), 4)
	require.NoError(t, store.CreateBooking(ctx, b))

	got, err := store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	got.Status = models.StatusRejected

	again, err := store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)
}

func TestMemoryOutbox(t *testing.T) {
	outbox := NewMemoryOutbox()
	ctx := context.Background()

	n := &models.Notification{Kind: models.NotifyBoardRequest, BookingID: "abc", Recipient: "styret@example.com"}
	require.NoError(t, outbox.CreateNotification(ctx, n))
	require.NotZero(t, n.ID)

	pending, err := outbox.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	got, err := outbox.GetNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	_, err = outbox.GetNotification(ctx, 999)
	assert.ErrorIs(t, err, database.ErrNotFound)

	future := time.Now().Add(time.Hour)
	require.NoError(t, outbox.UpdateNotificationStatus(ctx, n.ID, "retry", "smtp timeout", &future))
	pending, err = outbox.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, outbox.UpdateNotificationStatus(ctx, n.ID, "sent", "", nil))
	pending, err = outbox.GetPendingNotifications(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	assert.ErrorIs(t, outbox.UpdateNotificationStatus(ctx, 999, "sent", "", nil), database.ErrNotFound)
}
