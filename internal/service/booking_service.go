package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bjorkvang/internal/booking"
	"bjorkvang/internal/database"
	"bjorkvang/internal/domain"
	"bjorkvang/internal/events"
	"bjorkvang/internal/models"
	"bjorkvang/internal/view"

	"github.com/rs/zerolog"
)

// ErrMailNotConfigured means the board policy cannot notify anyone.
// Not user-correctable; surfaces as a 5xx.
var ErrMailNotConfigured = errors.New("notification addresses are not configured")

// BookingService runs the admission pipeline and the approval lifecycle.
// One Submit call is one atomic admission: validate, normalize,
// conflict-check and persist happen without interleaving thanks to the
// repository's locked create.
type BookingService struct {
	repo           domain.Repository
	notifyQueue    domain.NotifyQueue
	eventBus       domain.EventPublisher
	cache          domain.CalendarCache
	builder        *view.Builder
	validator      *booking.Validator
	normalizer     *booking.Normalizer
	engine         *booking.StatusEngine
	clock          domain.Clock
	maxBookingDays int
	logger         *zerolog.Logger
}

type Options struct {
	Repo           domain.Repository
	NotifyQueue    domain.NotifyQueue
	EventBus       domain.EventPublisher
	Cache          domain.CalendarCache
	Builder        *view.Builder
	Validator      *booking.Validator
	Normalizer     *booking.Normalizer
	Engine         *booking.StatusEngine
	Clock          domain.Clock
	MaxBookingDays int
	Logger         *zerolog.Logger
}

func NewBookingService(opts Options) *BookingService {
	if opts.MaxBookingDays <= 0 {
		opts.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if opts.Clock == nil {
		opts.Clock = domain.ClockFunc(time.Now)
	}
	return &BookingService{
		repo:           opts.Repo,
		notifyQueue:    opts.NotifyQueue,
		eventBus:       opts.EventBus,
		cache:          opts.Cache,
		builder:        opts.Builder,
		validator:      opts.Validator,
		normalizer:     opts.Normalizer,
		engine:         opts.Engine,
		clock:          opts.Clock,
		maxBookingDays: opts.MaxBookingDays,
		logger:         opts.Logger,
	}
}

// ValidateBookingDate rejects starts in the past and starts beyond the
// booking horizon.
func (s *BookingService) ValidateBookingDate(start time.Time) error {
	now := s.clock.Now()
	if start.Before(now.AddDate(0, 0, -1)) {
		return database.ErrPastDate
	}

	maxDate := now.AddDate(0, 0, s.maxBookingDays)
	if start.After(maxDate) {
		return database.ErrDateTooFar
	}

	return nil
}

// Submit admits one raw request: validate, normalize, conflict-check,
// persist. No partial state survives a failure; notification trouble
// after the insert never rolls the booking back.
func (s *BookingService) Submit(ctx context.Context, raw map[string]any) (*models.Booking, error) {
	fields, err := s.validator.Validate(booking.RawRequest(raw))
	if err != nil {
		return nil, err
	}

	b := s.normalizer.FromFields(fields)

	if err := s.ValidateBookingDate(b.Start); err != nil {
		return nil, err
	}

	if s.engine.Policy() == models.PolicyBoard && !s.boardConfigured() {
		return nil, ErrMailNotConfigured
	}

	if err := s.repo.CreateBookingWithLock(ctx, b); err != nil {
		if errors.Is(err, database.ErrConflict) {
			s.publishEvent(events.EventBookingConflict, b)
		}
		return nil, err
	}

	eventType := events.EventBookingReceived
	if b.Status == models.StatusConfirmed {
		eventType = events.EventBookingConfirmed
	}
	s.publishEvent(eventType, b)
	s.invalidateCache(ctx)

	if s.engine.Policy() == models.PolicyBoard {
		s.enqueue(ctx, models.NotifyBoardRequest, b, s.builder.BoardRequestEmail(b))
	}
	s.enqueue(ctx, models.NotifyRequesterReceipt, b, s.builder.ReceiptEmail(b))

	return b, nil
}

// Approve transitions a pending booking to approved and notifies the
// requester. Terminal states stay terminal.
func (s *BookingService) Approve(ctx context.Context, id string) (*models.Booking, error) {
	return s.decide(ctx, id, models.StatusApproved, events.EventBookingApproved)
}

// Reject transitions a pending booking to rejected and notifies the
// requester.
func (s *BookingService) Reject(ctx context.Context, id string) (*models.Booking, error) {
	return s.decide(ctx, id, models.StatusRejected, events.EventBookingRejected)
}

func (s *BookingService) decide(ctx context.Context, id, target, eventType string) (*models.Booking, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.engine.CanTransition(b.Status, target) {
		return nil, database.ErrInvalidTransition
	}

	if err := s.repo.UpdateBookingStatusWithVersion(ctx, id, b.Version, target); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishEvent(eventType, updated)
	s.invalidateCache(ctx)
	s.enqueue(ctx, models.NotifyRequesterDecided, updated,
		s.builder.DecisionEmail(updated, target == models.StatusApproved))

	return updated, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListAdmin returns the full projection, no masking.
func (s *BookingService) ListAdmin(ctx context.Context) ([]*models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// ListPublic returns the masked projection, served from the calendar
// cache when warm.
func (s *BookingService) ListPublic(ctx context.Context) ([]models.PublicEntry, error) {
	if s.cache != nil {
		if payload, ok, err := s.cache.GetPublicCalendar(ctx); err == nil && ok {
			var entries []models.PublicEntry
			if err := json.Unmarshal(payload, &entries); err == nil {
				return entries, nil
			}
		}
	}

	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	entries := view.PublicCalendar(bookings)

	if s.cache != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.cache.SetPublicCalendar(ctx, payload); err != nil {
				s.logger.Warn().Err(err).Msg("calendar cache write failed")
			}
		}
	}

	return entries, nil
}

func (s *BookingService) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	return s.repo.GetDailyBookings(ctx, start, end)
}

func (s *BookingService) boardConfigured() bool {
	return s.builder != nil && s.builder.From != "" && len(s.builder.BoardTo) > 0
}

func (s *BookingService) publishEvent(eventType string, b *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: b.ID,
		Status:    b.Status,
		Start:     b.Start,
		End:       b.End,
		Spaces:    b.Spaces,
		EventType: b.EventType,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", b.ID).Msg("publish event error")
	}
}

func (s *BookingService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("calendar cache invalidation failed")
	}
}

func (s *BookingService) enqueue(ctx context.Context, kind string, b *models.Booking, msg *models.Message) {
	if s.notifyQueue == nil || msg == nil || len(msg.To) == 0 || msg.To[0] == "" {
		return
	}

	if err := s.notifyQueue.Enqueue(ctx, kind, b.ID, msg); err != nil {
		s.logger.Error().Err(err).Str("booking_id", b.ID).Str("kind", kind).Msg("notification enqueue error")
	}
}
