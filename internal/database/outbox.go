package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bjorkvang/internal/models"
)

// The outbox keeps notification jobs durable across restarts so a mail
// transport failure never costs an admitted booking its emails.

func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (kind, booking_id, recipient, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := db.now()
	result, err := db.ExecContext(ctx, query,
		n.Kind,
		n.BookingID,
		n.Recipient,
		n.Payload,
		n.Status,
		n.RetryCount,
		n.LastError,
		now,
		n.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	n.CreatedAt = now

	return nil
}

// GetNotification reads a single outbox row. The worker re-checks it
// before sending so a job queued through both redis and the poll only
// goes out once.
func (db *DB) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	query := `SELECT id, kind, booking_id, recipient, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM notifications WHERE id = ?`
	var n models.Notification
	err := db.QueryRowContext(ctx, query, id).Scan(
		&n.ID, &n.Kind, &n.BookingID, &n.Recipient, &n.Payload, &n.Status,
		&n.RetryCount, &n.LastError, &n.CreatedAt, &n.ProcessedAt, &n.NextRetryAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

func (db *DB) GetPendingNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	query := `SELECT id, kind, booking_id, recipient, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM notifications
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, db.now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID, &n.Kind, &n.BookingID, &n.Recipient, &n.Payload, &n.Status,
			&n.RetryCount, &n.LastError, &n.CreatedAt, &n.ProcessedAt, &n.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (db *DB) UpdateNotificationStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []any
	now := db.now()

	switch status {
	case "retry":
		query = `UPDATE notifications SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []any{status, errMsg, nextRetryAt, id}
	case "sent", "failed":
		query = `UPDATE notifications SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []any{status, errMsg, nextRetryAt, &now, id}
	default:
		query = `UPDATE notifications SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []any{status, errMsg, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update notification status: %w", err)
	}
	return nil
}
