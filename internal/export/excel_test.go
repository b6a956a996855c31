package export

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	"bjorkvang/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubBookings struct {
	daily map[string][]*models.Booking
}

func (s *stubBookings) Submit(ctx context.Context, raw map[string]any) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookings) Approve(ctx context.Context, id string) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookings) Reject(ctx context.Context, id string) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookings) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return nil, nil
}
func (s *stubBookings) ListAdmin(ctx context.Context) ([]*models.Booking, error) { return nil, nil }
func (s *stubBookings) ListPublic(ctx context.Context) ([]models.PublicEntry, error) {
	return nil, nil
}
func (s *stubBookings) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	return s.daily, nil
}

type stubSpaces struct {
	spaces []models.Space
}

func (s *stubSpaces) GetActiveSpaces() []models.Space { return s.spaces }
func (s *stubSpaces) GetSpaceByName(name string) (*models.Space, bool) {
	for i := range s.spaces {
		if s.spaces[i].Name == name {
			return &s.spaces[i], true
		}
	}
	return nil, false
}

func TestExportBookings(t *testing.T) {
	start := time.Date(2026, 10, 10, 18, 0, 0, 0, time.UTC)
	bookings := &stubBookings{
		daily: map[string][]*models.Booking{
			"2026-10-10": {
				{
					ID: "a", Start: start, End: start.Add(4 * time.Hour),
					Requester: models.Requester{Name: "Kari Nordmann"},
					EventType: "bursdag",
					Spaces:    []string{"Storsalen"},
					Status:    models.StatusPending,
				},
				{
					ID: "b", Start: start.Add(5 * time.Hour), End: start.Add(6 * time.Hour),
					Requester: models.Requester{Name: "Ola Hansen"},
					Status:    models.StatusRejected,
				},
			},
		},
	}
	spaces := &stubSpaces{spaces: []models.Space{
		{ID: 1, Name: "Storsalen", SortOrder: 1, IsActive: true},
		{ID: 2, Name: "Kjøkken", SortOrder: 2, IsActive: true},
	}}

	logger := zerolog.New(io.Discard)
	exporter := NewExporter(bookings, spaces, t.TempDir(), &logger)

	path, err := exporter.ExportBookings(context.Background(),
		time.Date(2026, 10, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookinger")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Contains(t, rows[0][0], "Periode")

	// The pending booking lands in the Storsalen row; the rejected one
	// does not occupy anything.
	storsalen, err := f.GetCellValue("Bookinger", "C3")
	require.NoError(t, err)
	assert.Contains(t, storsalen, "Kari Nordmann")
	assert.NotContains(t, storsalen, "Ola Hansen")

	kitchen, err := f.GetCellValue("Bookinger", "C4")
	require.NoError(t, err)
	assert.Equal(t, "Ledig", kitchen)
}
