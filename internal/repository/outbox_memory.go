package repository

import (
	"context"
	"sync"
	"time"

	"bjorkvang/internal/database"
	"bjorkvang/internal/models"
)

// MemoryOutbox keeps notification jobs in memory. Used when the sqlite
// store is off; jobs do not survive a restart.
type MemoryOutbox struct {
	mu     sync.Mutex
	nextID int64
	jobs   map[int64]*models.Notification
}

func NewMemoryOutbox() *MemoryOutbox {
	return &MemoryOutbox{nextID: 1, jobs: make(map[int64]*models.Notification)}
}

func (o *MemoryOutbox) CreateNotification(ctx context.Context, n *models.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	n.ID = o.nextID
	o.nextID++
	n.Status = "pending"
	n.CreatedAt = time.Now()

	stored := *n
	o.jobs[n.ID] = &stored
	return nil
}

func (o *MemoryOutbox) GetNotification(ctx context.Context, id int64) (*models.Notification, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (o *MemoryOutbox) GetPendingNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := time.Now()
	out := make([]models.Notification, 0, limit)
	for _, job := range o.jobs {
		if len(out) >= limit {
			break
		}
		if job.Status != "pending" && job.Status != "retry" {
			continue
		}
		if job.NextRetryAt != nil && job.NextRetryAt.After(now) {
			continue
		}
		out = append(out, *job)
	}
	return out, nil
}

func (o *MemoryOutbox) UpdateNotificationStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[id]
	if !ok {
		return database.ErrNotFound
	}

	job.Status = status
	if errMsg != "" {
		msg := errMsg
		job.LastError = &msg
	}
	switch status {
	case "retry":
		job.RetryCount++
		job.NextRetryAt = nextRetryAt
	case "sent", "failed":
		now := time.Now()
		job.ProcessedAt = &now
		job.NextRetryAt = nil
	}
	return nil
}
