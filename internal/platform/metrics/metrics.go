package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EventsLogged     *prometheus.CounterVec
	DiffsWritten     prometheus.Counter
	AuditLogFailures *prometheus.CounterVec
	OutboxPublished  prometheus.Counter
	OutboxFailures   prometheus.Counter
	RemindersFired   prometheus.Counter
	RequestLatency   *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EventsLogged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comphub_history_events_logged_total",
			Help: "History events persisted, labeled by event type",
		}, []string{"event_type"}),
		DiffsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "comphub_history_diffs_written_total",
			Help: "Field-level diffs persisted alongside events",
		}),
		AuditLogFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "comphub_history_log_failures_total",
			Help: "Event log write failures, labeled blocking or best_effort",
		}, []string{"mode"}),
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "comphub_history_outbox_published_total",
			Help: "Outbox rows published to the history topic",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "comphub_history_outbox_failures_total",
			Help: "Outbox publish attempts that failed",
		}),
		RemindersFired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "comphub_reminder_deliveries_total",
			Help: "Due reminders delivered by the notifier",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "comphub_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// IncEventLogged records one persisted event of the given type.
func (m *Metrics) IncEventLogged(eventType string) {
	if m == nil {
		return
	}
	m.EventsLogged.WithLabelValues(eventType).Inc()
}

// AddDiffsWritten records n persisted diffs.
func (m *Metrics) AddDiffsWritten(n int) {
	if m == nil {
		return
	}
	m.DiffsWritten.Add(float64(n))
}

// IncAuditLogFailure records a failed event log write. Mode is "blocking" for
// call sites that surface the failure and "best_effort" for those that swallow it.
func (m *Metrics) IncAuditLogFailure(mode string) {
	if m == nil {
		return
	}
	m.AuditLogFailures.WithLabelValues(mode).Inc()
}

// IncOutboxPublished records one outbox row handed to the broker.
func (m *Metrics) IncOutboxPublished() {
	if m == nil {
		return
	}
	m.OutboxPublished.Inc()
}

// IncOutboxFailure records one failed outbox publish attempt.
func (m *Metrics) IncOutboxFailure() {
	if m == nil {
		return
	}
	m.OutboxFailures.Inc()
}

// IncReminderFired records one reminder delivered to its sink.
func (m *Metrics) IncReminderFired() {
	if m == nil {
		return
	}
	m.RemindersFired.Inc()
}
