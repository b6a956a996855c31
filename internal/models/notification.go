package models

import "time"

// Notification kinds persisted in the outbox.
const (
	NotifyBoardRequest     = "board_request"
	NotifyRequesterReceipt = "requester_receipt"
	NotifyRequesterDecided = "requester_decided"
)

// Notification is a queued email job in the outbox table. A booking is
// admitted regardless of whether its notifications ever get delivered.
type Notification struct {
	ID          int64      `json:"id"`
	Kind        string     `json:"kind"`
	BookingID   string     `json:"booking_id"`
	Recipient   string     `json:"recipient"`
	Payload     string     `json:"payload"`
	Status      string     `json:"status"` // pending, retry, sent, failed
	RetryCount  int        `json:"retry_count"`
	LastError   *string    `json:"last_error"`
	CreatedAt   time.Time  `json:"created_at"`
	ProcessedAt *time.Time `json:"processed_at"`
	NextRetryAt *time.Time `json:"next_retry_at"`
}
