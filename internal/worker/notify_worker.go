package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bjorkvang/internal/domain"
	"bjorkvang/internal/metrics"
	"bjorkvang/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotifyWorker drains the notification outbox and hands each job to the
// configured sender. Delivery failures retry with exponential backoff;
// exhausted jobs are marked failed and pushed to the redis dead-letter
// list. A booking stays admitted no matter what happens here.
type NotifyWorker struct {
	outbox        domain.OutboxRepository
	sender        domain.NotificationSender
	redis         *redis.Client
	backoff       BackoffSchedule
	queue         chan models.Notification
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// NewNotifyWorker builds a worker with sane defaults.
func NewNotifyWorker(outbox domain.OutboxRepository, sender domain.NotificationSender, redisClient *redis.Client, backoff BackoffSchedule, logger *zerolog.Logger) *NotifyWorker {
	if backoff.MaxAttempts == 0 {
		backoff.MaxAttempts = 5
	}
	if backoff.Base == 0 {
		backoff.Base = 2 * time.Second
	}
	if backoff.Cap == 0 {
		backoff.Cap = 1 * time.Minute
	}

	return &NotifyWorker{
		outbox:        outbox,
		sender:        sender,
		redis:         redisClient,
		backoff:       backoff,
		queue:         make(chan models.Notification, models.NotifyQueueSize),
		redisQueueKey: "notify:queue",
		deadLetterKey: "notify:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// Enqueue persists the job to the outbox and schedules it via redis or
// the in-memory queue.
func (w *NotifyWorker) Enqueue(ctx context.Context, kind, bookingID string, msg *models.Message) error {
	if kind == "" {
		return errors.New("notification kind is required")
	}
	if msg == nil || len(msg.To) == 0 {
		return errors.New("notification recipient is required")
	}

	payloadBytes, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	notification := models.Notification{
		Kind:      kind,
		BookingID: bookingID,
		Recipient: msg.To[0],
		Payload:   string(payloadBytes),
		Status:    "pending",
	}

	if err := w.outbox.CreateNotification(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, notification); err != nil {
			w.logger.Warn().Err(err).Msg("redis push failed, fallback to memory queue")
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- notification:
	default:
		w.logger.Warn().Int64("notification_id", notification.ID).Msg("in-memory queue full, job left to polling")
	}

	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *NotifyWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("notify worker started")
	defer w.logger.Info().Msg("notify worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if n, ok := w.tryLocalQueue(); ok {
			w.process(ctx, &n)
			continue
		}

		if n, ok := w.tryRedis(ctx); ok {
			w.process(ctx, &n)
			continue
		}

		jobs, err := w.outbox.GetPendingNotifications(ctx, w.batchSize)
		if err != nil {
			w.logger.Error().Err(err).Msg("fetch pending notifications")
			time.Sleep(w.pollInterval)
			continue
		}
		if len(jobs) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range jobs {
			w.process(ctx, &jobs[i])
		}
	}
}

func (w *NotifyWorker) tryLocalQueue() (models.Notification, bool) {
	select {
	case n := <-w.queue:
		return n, true
	default:
		return models.Notification{}, false
	}
}

func (w *NotifyWorker) tryRedis(ctx context.Context) (models.Notification, bool) {
	if w.redis == nil {
		return models.Notification{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.Notification{}, false
		}
		w.logger.Error().Err(err).Msg("redis BRPOP error")
		return models.Notification{}, false
	}
	if len(res) != 2 {
		return models.Notification{}, false
	}
	var n models.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		w.logger.Error().Err(err).Msg("decode redis notification")
		return models.Notification{}, false
	}
	return n, true
}

func (w *NotifyWorker) process(ctx context.Context, n *models.Notification) {
	// The same job can arrive twice, once over redis and once from the
	// outbox poll. The outbox row is authoritative: re-read it and skip
	// anything already delivered or written off.
	current, err := w.outbox.GetNotification(ctx, n.ID)
	if err != nil {
		// The row stays pending, so the next poll retries it.
		w.logger.Warn().Err(err).Int64("notification_id", n.ID).Msg("notification lookup failed")
		return
	}
	if current.Status != "pending" && current.Status != "retry" {
		return
	}
	n = current

	var msg models.Message
	if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil {
		w.fail(ctx, n, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.sender.Send(ctx, &msg); err != nil {
		w.retryOrFail(ctx, n, err)
		return
	}

	metrics.IncNotification("sent")
	if err := w.outbox.UpdateNotificationStatus(ctx, n.ID, "sent", "", nil); err != nil {
		w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("mark sent")
	}
}

func (w *NotifyWorker) retryOrFail(ctx context.Context, n *models.Notification, cause error) {
	attempt := n.RetryCount + 1
	if attempt >= w.backoff.MaxAttempts {
		metrics.IncNotification("failed")
		if err := w.outbox.UpdateNotificationStatus(ctx, n.ID, "failed", cause.Error(), nil); err != nil {
			w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("mark failed")
		}
		w.pushDeadLetter(ctx, n)
		return
	}

	metrics.IncNotification("retry")
	nextTime := time.Now().Add(w.backoff.Delay(attempt))
	if err := w.outbox.UpdateNotificationStatus(ctx, n.ID, "retry", cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("mark retry")
	}
}

func (w *NotifyWorker) fail(ctx context.Context, n *models.Notification, cause error) {
	metrics.IncNotification("failed")
	if err := w.outbox.UpdateNotificationStatus(ctx, n.ID, "failed", cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("mark failed")
	}
	w.pushDeadLetter(ctx, n)
}

func (w *NotifyWorker) pushRedis(ctx context.Context, n models.Notification) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *NotifyWorker) pushDeadLetter(ctx context.Context, n *models.Notification) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("encode deadletter")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("notification_id", n.ID).Msg("deadletter push")
	}
}
