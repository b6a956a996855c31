package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"bjorkvang/internal/booking"
	"bjorkvang/internal/database"
	"bjorkvang/internal/domain"
	"bjorkvang/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is the single-writer in-memory booking collection used when
// no sqlite path is configured. With a state file set it mirrors the
// client-local variant: the whole collection is read on load and the file
// is rewritten after every successful mutation. Corrupt persisted records
// are dropped silently during load.
type MemoryStore struct {
	mu         sync.Mutex
	bookings   []*models.Booking
	byID       map[string]*models.Booking
	statePath  string
	normalizer *booking.Normalizer
	newID      func() string
	now        func() time.Time
}

func NewMemoryStore(statePath string, normalizer *booking.Normalizer) (*MemoryStore, error) {
	s := &MemoryStore{
		byID:       make(map[string]*models.Booking),
		statePath:  statePath,
		normalizer: normalizer,
		newID:      uuid.NewString,
		now:        time.Now,
	}

	if statePath != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SetClock overrides the time source, for tests.
func (s *MemoryStore) SetClock(clock domain.Clock) {
	if clock != nil {
		s.now = clock.Now
	}
}

// SetIDGenerator overrides the id source, for tests.
func (s *MemoryStore) SetIDGenerator(gen domain.IDGenerator) {
	if gen != nil {
		s.newID = gen.NewID
	}
}

func (s *MemoryStore) load() error {
	data, err := os.ReadFile(s.statePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}

	for _, rec := range records {
		b := s.normalizer.Normalize(booking.RawRequest(rec))
		if b == nil {
			// Corrupt record, filtered on load.
			continue
		}
		if b.ID == "" {
			b.ID = s.newID()
		}
		if b.Version == 0 {
			b.Version = 1
		}
		s.bookings = append(s.bookings, b)
		s.byID[b.ID] = b
	}
	return nil
}

// persist rewrites the full serialized collection. Caller holds the lock.
func (s *MemoryStore) persist() error {
	if s.statePath == "" {
		return nil
	}

	records := make([]booking.RawRequest, 0, len(s.bookings))
	for _, b := range s.bookings {
		records = append(records, booking.ToRecord(b))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(s.statePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(b)
}

// CreateBookingWithLock holds the store mutex across check and insert so
// overlapping submissions serialize.
func (s *MemoryStore) CreateBookingWithLock(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conflicting := booking.FindConflict(b.Start, b.End, b.Spaces, s.bookings); conflicting != nil {
		return &database.ConflictError{
			BookingID: conflicting.ID,
			Start:     conflicting.Start,
			End:       conflicting.End,
		}
	}
	return s.insert(b)
}

// insert appends a copy; the caller-supplied record is never mutated
// beyond receiving its assigned identity.
func (s *MemoryStore) insert(b *models.Booking) error {
	now := s.now()
	if b.ID == "" {
		b.ID = s.newID()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Version = 1

	stored := *b
	s.bookings = append(s.bookings, &stored)
	s.byID[stored.ID] = &stored
	return s.persist()
}

func (s *MemoryStore) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *MemoryStore) UpdateBookingStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return database.ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = s.now()
	b.Version++
	return s.persist()
}

func (s *MemoryStore) UpdateBookingStatusWithVersion(ctx context.Context, id string, fromVersion int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok || b.Version != fromVersion {
		return database.ErrConcurrentModification
	}
	b.Status = status
	b.UpdatedAt = s.now()
	b.Version++
	return s.persist()
}

func (s *MemoryStore) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (s *MemoryStore) GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Booking
	for _, b := range s.bookings {
		if b.Overlaps(start, end) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	bookings, err := s.GetBookingsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	daily := make(map[string][]*models.Booking)
	for _, b := range bookings {
		dateKey := b.Start.Format("2006-01-02")
		daily[dateKey] = append(daily[dateKey], b)
	}
	return daily, nil
}
