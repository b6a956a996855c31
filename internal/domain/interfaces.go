package domain

import (
	"context"
	"time"

	"bjorkvang/internal/models"
)

// Repository is the authoritative booking collection. Create with the
// conflict gate, read, status-mutate and list; bookings are never
// deleted by normal flow.
type Repository interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	CreateBookingWithLock(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, status string) error
	UpdateBookingStatusWithVersion(ctx context.Context, id string, fromVersion int64, status string) error
	ListBookings(ctx context.Context) ([]*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
}

// OutboxRepository persists queued notification jobs.
type OutboxRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetNotification(ctx context.Context, id int64) (*models.Notification, error)
	GetPendingNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	UpdateNotificationStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// NotificationSender delivers one email-like message. The transport
// behind it (SMTP, vendor API) is a deployment concern.
type NotificationSender interface {
	Send(ctx context.Context, msg *models.Message) error
}

// NotifyQueue accepts notification jobs for asynchronous delivery.
type NotifyQueue interface {
	Enqueue(ctx context.Context, kind, bookingID string, msg *models.Message) error
}

// CalendarCache caches the rendered public calendar and rate-limits
// public submissions.
type CalendarCache interface {
	GetPublicCalendar(ctx context.Context) ([]byte, bool, error)
	SetPublicCalendar(ctx context.Context, payload []byte) error
	Invalidate(ctx context.Context) error
	CheckRateLimit(ctx context.Context, clientKey string, limit int, window time.Duration) (bool, error)
}

// EventPublisher fans booking lifecycle events out to subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Clock abstracts the time source so admission decisions are testable.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// IDGenerator mints opaque booking identifiers.
type IDGenerator interface {
	NewID() string
}

// IDFunc adapts a function to the IDGenerator interface.
type IDFunc func() string

func (f IDFunc) NewID() string { return f() }

// BookingService is the admission and lifecycle facade the HTTP layer
// talks to.
type BookingService interface {
	Submit(ctx context.Context, raw map[string]any) (*models.Booking, error)
	Approve(ctx context.Context, id string) (*models.Booking, error)
	Reject(ctx context.Context, id string) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListAdmin(ctx context.Context) ([]*models.Booking, error)
	ListPublic(ctx context.Context) ([]models.PublicEntry, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
}

// SpaceService resolves the venue's bookable areas.
type SpaceService interface {
	GetActiveSpaces() []models.Space
	GetSpaceByName(name string) (*models.Space, bool)
}
