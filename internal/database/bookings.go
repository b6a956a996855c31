package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bjorkvang/internal/booking"
	"bjorkvang/internal/models"
)

const bookingColumns = `id, start, end, requester_name, requester_email, requester_phone,
                 event_type, spaces, services, attendees, message, status,
                 created_at, updated_at, version`

const timeLayout = time.RFC3339

// errCorruptRecord marks a persisted row whose time window cannot be
// recovered. Such rows are dropped on load, never surfaced or blocking.
var errCorruptRecord = errors.New("corrupt booking record")

func joinList(values []string) string {
	return strings.Join(values, ", ")
}

// CreateBooking inserts a booking without the conflict gate. Used for
// admin holds and for records that were already admitted elsewhere.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	return db.insertBooking(ctx, db.DB, b)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) insertBooking(ctx context.Context, ex execer, b *models.Booking) error {
	query := `INSERT INTO bookings (
				id, start, end, requester_name, requester_email, requester_phone,
				event_type, spaces, services, attendees, message, status,
				created_at, updated_at, version
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := db.now()
	id := b.ID
	if id == "" {
		id = db.newID()
	}
	_, err := ex.ExecContext(ctx, query,
		id,
		b.Start.UTC().Format(timeLayout),
		b.End.UTC().Format(timeLayout),
		b.Requester.Name,
		b.Requester.Email,
		b.Requester.Phone,
		b.EventType,
		joinList(b.Spaces),
		joinList(b.Services),
		b.Attendees,
		b.Message,
		b.Status,
		now,
		now,
		1,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	b.Version = 1
	return nil
}

// CreateBookingWithLock runs the conflict check and the insert inside a
// single transaction so two near-simultaneous overlapping submissions
// cannot both succeed.
func (db *DB) CreateBookingWithLock(ctx context.Context, b *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Re-run the conflict check inside the transaction
	queryOverlap := `SELECT ` + bookingColumns + `
              FROM bookings
              WHERE start < ? AND end > ? AND status != ?
              ORDER BY created_at ASC`
	rows, err := tx.QueryContext(ctx, queryOverlap,
		b.End.UTC().Format(timeLayout), b.Start.UTC().Format(timeLayout), models.StatusRejected)
	if err != nil {
		return fmt.Errorf("failed to check conflicts in tx: %w", err)
	}
	existing, err := db.scanBookings(rows)
	if err != nil {
		return err
	}

	if conflicting := booking.FindConflict(b.Start, b.End, b.Spaces, existing); conflicting != nil {
		return &ConflictError{BookingID: conflicting.ID, Start: conflicting.Start, End: conflicting.End}
	}

	// 2. Insert the booking
	if err := db.insertBooking(ctx, tx, b); err != nil {
		return err
	}

	return tx.Commit()
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if errors.Is(err, errCorruptRecord) {
		// Dropped on load, so it reads as absent.
		db.logger.Warn().Err(err).Str("booking_id", id).Msg("dropping corrupt booking record")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, status, db.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id string, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`
	result, err := db.ExecContext(ctx, query, status, db.now(), id, fromVersion)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// ListBookings returns every booking in store iteration order
// (creation order).
func (db *DB) ListBookings(ctx context.Context) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at ASC, id ASC`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return db.scanBookings(rows)
}

func (db *DB) GetBookingsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + `
              FROM bookings WHERE start < ? AND end > ? ORDER BY start ASC`
	rows, err := db.QueryContext(ctx, query,
		endDate.UTC().Format(timeLayout), startDate.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by date range: %w", err)
	}
	return db.scanBookings(rows)
}

// GetDailyBookings groups a date range by day key for the export grid.
func (db *DB) GetDailyBookings(ctx context.Context, startDate, endDate time.Time) (map[string][]*models.Booking, error) {
	bookings, err := db.GetBookingsByDateRange(ctx, startDate, endDate)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var startStr, endStr string
	var phone, eventType, spacesStr, servicesStr, message sql.NullString
	var attendees sql.NullInt64
	err := row.Scan(
		&b.ID, &startStr, &endStr,
		&b.Requester.Name, &b.Requester.Email, &phone,
		&eventType, &spacesStr, &servicesStr, &attendees, &message,
		&b.Status, &b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}

	// An unparsable DATETIME column scans as the zero time, a mangled
	// TEXT one fails the parse. Both mean the window is unrecoverable.
	b.Start, err = time.Parse(timeLayout, startStr)
	if err != nil || b.Start.IsZero() {
		return nil, fmt.Errorf("booking %s start %q: %w", b.ID, startStr, errCorruptRecord)
	}
	b.End, err = time.Parse(timeLayout, endStr)
	if err != nil || b.End.IsZero() {
		return nil, fmt.Errorf("booking %s end %q: %w", b.ID, endStr, errCorruptRecord)
	}

	b.Requester.Phone = phone.String
	b.EventType = eventType.String
	b.Message = message.String
	b.Attendees = int(attendees.Int64)
	b.Spaces = booking.ParseList(spacesStr.String)
	b.Services = booking.ParseList(servicesStr.String)
	return b, nil
}

func (db *DB) scanBookings(rows *sql.Rows) ([]*models.Booking, error) {
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if errors.Is(err, errCorruptRecord) {
			db.logger.Warn().Err(err).Msg("dropping corrupt booking record")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
