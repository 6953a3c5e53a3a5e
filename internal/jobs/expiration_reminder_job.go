package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"exchange/internal/core/domain/model/order"
	"exchange/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// reminderOrdersReader is the read side the reminder sweep needs.
type reminderOrdersReader interface {
	GetDueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]*order.Order, error)
}

// ExpirationReminderJob emits a reminder event for orders approaching their
// state deadline. Runs every minute; each order/deadline pair is reminded at
// most once per process lifetime, so a restart may repeat a reminder and
// downstream consumers must tolerate duplicates.
type ExpirationReminderJob struct {
	reader    reminderOrdersReader
	publisher ports.OrderEventPublisher
	lead      time.Duration
	cron      *cron.Cron
	logger    *slog.Logger

	mu       sync.Mutex
	reminded map[string]time.Time
}

// NewExpirationReminderJob creates the reminder job with the given lead time
// before the deadline.
func NewExpirationReminderJob(
	reader reminderOrdersReader,
	publisher ports.OrderEventPublisher,
	lead time.Duration,
	logger *slog.Logger,
) *ExpirationReminderJob {
	return &ExpirationReminderJob{
		reader:    reader,
		publisher: publisher,
		lead:      lead,
		cron:      cron.New(),
		logger:    logger.With("component", "expiration_reminder_job"),
		reminded:  make(map[string]time.Time),
	}
}

// Start begins the reminder sweep, running every minute.
func (j *ExpirationReminderJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", func() {
		j.sweep(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiration reminder job started (running every minute)")
	return nil
}

// Stop stops the reminder sweep.
func (j *ExpirationReminderJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Expiration reminder job stopped")
}

func (j *ExpirationReminderJob) sweep(ctx context.Context) {
	now := time.Now().UTC()
	j.pruneReminded(now)

	due, err := j.reader.GetDueForReminder(ctx, now, j.lead)
	if err != nil {
		j.logger.ErrorContext(ctx, "Reminder sweep failed", "error", err)
		return
	}

	for _, aggregate := range due {
		expiresAt := aggregate.StateExpiresAt()
		if expiresAt == nil {
			continue
		}

		key := aggregate.ID().String() + "/" + expiresAt.Format(time.RFC3339)
		if !j.markReminded(key, *expiresAt) {
			continue
		}

		event := ports.OrderExpirationReminderEvent{
			OrderID:        aggregate.ID().String(),
			Code:           aggregate.Code().String(),
			State:          aggregate.State().String(),
			StateExpiresAt: *expiresAt,
			ReminderAt:     now,
		}
		if err = j.publisher.PublishExpirationReminder(ctx, event); err != nil {
			j.unmarkReminded(key)
			j.logger.ErrorContext(ctx, "Failed to publish expiration reminder",
				"order_id", aggregate.ID().String(), "error", err)
		}
	}
}

func (j *ExpirationReminderJob) markReminded(key string, deadline time.Time) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.reminded[key]; ok {
		return false
	}
	j.reminded[key] = deadline
	return true
}

// pruneReminded evicts entries whose deadline has passed. A lapsed deadline
// falls outside every future reminder window, so the entry can never
// suppress another publish and only holds memory.
func (j *ExpirationReminderJob) pruneReminded(now time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for key, deadline := range j.reminded {
		if deadline.Before(now) {
			delete(j.reminded, key)
		}
	}
}

func (j *ExpirationReminderJob) unmarkReminded(key string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.reminded, key)
}
