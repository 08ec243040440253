package outbox

import (
	"context"
	"log/slog"
	"time"

	"comphub/internal/history"
	"comphub/internal/platform/metrics"
)

//go:generate mockgen -source=worker.go -destination=mocks/outbox_mock.go -package=mocks

// Source fetches staged rows and records which ones were handed off.
type Source interface {
	FetchUnpublished(ctx context.Context, limit int) ([]history.OutboxRow, error)
	MarkPublished(ctx context.Context, rowIDs []int64, at time.Time) error
}

// Publisher hands one row to the broker.
type Publisher interface {
	Publish(ctx context.Context, row history.OutboxRow) error
}

const defaultBatchSize = 100

// Worker polls the outbox table and publishes pending rows in order. A row
// that fails to publish stays pending and blocks later rows, preserving
// per-table ordering; the next tick retries from the failure point.
type Worker struct {
	source    Source
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

func WithLogger(logger *slog.Logger) WorkerOption {
	return func(w *Worker) { w.logger = logger }
}

func WithMetrics(m *metrics.Metrics) WorkerOption {
	return func(w *Worker) { w.metrics = m }
}

func WithBatchSize(n int) WorkerOption {
	return func(w *Worker) { w.batchSize = n }
}

// NewWorker creates a polling outbox worker.
func NewWorker(source Source, publisher Publisher, interval time.Duration, opts ...WorkerOption) *Worker {
	w := &Worker{
		source:    source,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err.Error())
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	rows, err := w.source.FetchUnpublished(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	published := make([]int64, 0, len(rows))
	for _, row := range rows {
		if err := w.publisher.Publish(ctx, row); err != nil {
			w.metrics.IncOutboxFailure()
			w.logger.ErrorContext(ctx, "outbox publish failed",
				"outbox_id", row.ID,
				"event_id", row.EventID.String(),
				"error", err.Error(),
			)
			break
		}
		w.metrics.IncOutboxPublished()
		published = append(published, row.ID)
	}
	if len(published) == 0 {
		return nil
	}
	return w.source.MarkPublished(ctx, published, time.Now().UTC())
}
