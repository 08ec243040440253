// Package notifier delivers due reminders. One notification fires per
// reminder across the whole fleet: a short-lived Redis lock keyed by reminder
// ID keeps concurrent instances from double-firing before the
// notification_sent flag lands.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"comphub/internal/platform/metrics"
	"comphub/internal/reminder/models"
	id "comphub/pkg/domain"
)

// Source lists due reminders and records delivered ones.
type Source interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	MarkNotified(ctx context.Context, reminderID id.ReminderID, at time.Time) error
}

// Locker claims a per-reminder delivery lock. Satisfied by the go-redis
// client; a nil Locker disables locking for single-instance deployments.
type Locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Sink receives the notification itself. The default sink writes structured
// log lines, which downstream log shippers turn into alerts.
type Sink interface {
	Notify(ctx context.Context, reminder models.Reminder) error
}

const (
	defaultBatchSize = 50
	defaultLockTTL   = 10 * time.Minute
)

// Notifier periodically scans for due reminders and fires each one once.
type Notifier struct {
	source    Source
	locker    Locker
	sink      Sink
	interval  time.Duration
	batchSize int
	lockTTL   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures a Notifier.
type Option func(*Notifier)

func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) { n.logger = logger }
}

func WithBatchSize(size int) Option {
	return func(n *Notifier) { n.batchSize = size }
}

func WithSink(sink Sink) Option {
	return func(n *Notifier) { n.sink = sink }
}

func WithLockTTL(ttl time.Duration) Option {
	return func(n *Notifier) { n.lockTTL = ttl }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// New creates a reminder Notifier.
func New(source Source, locker Locker, interval time.Duration, opts ...Option) *Notifier {
	n := &Notifier{
		source:    source,
		locker:    locker,
		interval:  interval,
		batchSize: defaultBatchSize,
		lockTTL:   defaultLockTTL,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.sink == nil {
		n.sink = logSink{logger: n.logger}
	}
	return n
}

// Run scans until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.scan(ctx); err != nil {
				n.logger.ErrorContext(ctx, "reminder scan failed", "error", err.Error())
			}
		}
	}
}

func (n *Notifier) scan(ctx context.Context) error {
	now := time.Now().UTC()
	due, err := n.source.ListDue(ctx, now, n.batchSize)
	if err != nil {
		return err
	}

	for _, reminder := range due {
		if !n.claim(ctx, reminder.ID) {
			continue
		}
		if err := n.sink.Notify(ctx, reminder); err != nil {
			n.logger.ErrorContext(ctx, "reminder delivery failed",
				"reminder_id", reminder.ID.String(),
				"error", err.Error(),
			)
			continue
		}
		if err := n.source.MarkNotified(ctx, reminder.ID, now); err != nil {
			n.logger.ErrorContext(ctx, "failed to mark reminder notified",
				"reminder_id", reminder.ID.String(),
				"error", err.Error(),
			)
		}
		n.metrics.IncReminderFired()
	}
	return nil
}

// claim takes the per-reminder lock. Lock errors count as not claimed; the
// reminder stays due and a later scan retries it.
func (n *Notifier) claim(ctx context.Context, reminderID id.ReminderID) bool {
	if n.locker == nil {
		return true
	}
	ok, err := n.locker.SetNX(ctx, "reminder:notify:"+reminderID.String(), 1, n.lockTTL).Result()
	if err != nil {
		n.logger.ErrorContext(ctx, "reminder lock failed",
			"reminder_id", reminderID.String(),
			"error", err.Error(),
		)
		return false
	}
	return ok
}

type logSink struct {
	logger *slog.Logger
}

func (s logSink) Notify(ctx context.Context, reminder models.Reminder) error {
	s.logger.InfoContext(ctx, "reminder due",
		"reminder_id", reminder.ID.String(),
		"comp_id", reminder.CompID.String(),
		"team_id", reminder.TeamID.String(),
		"assigned_to", reminder.AssignedTo.String(),
		"title", reminder.Title,
		"remind_at", reminder.RemindAt,
	)
	return nil
}
