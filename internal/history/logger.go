package history

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"comphub/internal/platform/metrics"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Store persists events. Append must write the event and all its diffs in a
// single transaction: on error, no row from the attempt may remain visible.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]Event, error)
}

// Logger is the sole entry point for appending to the audit trail.
//
// Preconditions for LogEvent: the caller has already durably committed the
// underlying domain mutation. The logger never performs the domain write
// itself, which bounds the failure window to "mutation succeeded, audit
// missing", never the reverse.
type Logger struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Logger.
type Option func(*Logger)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Logger) { l.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Logger) { l.metrics = m }
}

// NewLogger constructs a Logger over the given store.
func NewLogger(store Store, opts ...Option) *Logger {
	l := &Logger{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("comphub/history"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogEvent validates and atomically persists one event with its diffs.
//
// The supplied actor must match the authenticated caller identity in ctx;
// a mismatch is rejected so authorship cannot be forged by a confused call
// site. On any error, no event and no diff from this call exist afterward.
func (l *Logger) LogEvent(ctx context.Context, entry Entry) error {
	ctx, span := l.tracer.Start(ctx, "history.LogEvent",
		trace.WithAttributes(attribute.String("event_type", string(entry.Type))))
	defer span.End()

	if err := validateEntry(entry); err != nil {
		return err
	}
	if err := validateActor(ctx, entry.ActorUserID); err != nil {
		return err
	}

	event := Event{
		ID:          id.NewEventID(),
		CompID:      entry.CompID,
		TeamID:      entry.TeamID,
		Type:        entry.Type,
		Summary:     entry.Summary,
		ActorUserID: entry.ActorUserID,
		CreatedAt:   requestcontext.Now(ctx),
	}
	for _, d := range entry.Diffs {
		event.Diffs = append(event.Diffs, Diff{
			EventID:    event.ID,
			FieldLabel: d.FieldLabel,
			OldValue:   d.OldValue,
			NewValue:   d.NewValue,
		})
	}

	if err := l.store.Append(ctx, event); err != nil {
		span.RecordError(err)
		l.logger.ErrorContext(ctx, "history event append failed",
			"request_id", requestcontext.RequestID(ctx),
			"comp_id", entry.CompID.String(),
			"event_type", string(entry.Type),
			"error", err.Error(),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to log history event")
	}

	l.metrics.IncEventLogged(string(entry.Type))
	l.metrics.AddDiffsWritten(len(entry.Diffs))
	return nil
}

// ListEvents returns the comp's audit trail, most recent first, each event
// carrying its diffs for the expandable before/after view.
func (l *Logger) ListEvents(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]Event, error) {
	if compID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	if teamID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	events, err := l.store.ListByComp(ctx, teamID, compID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list history events")
	}
	return events, nil
}

func validateEntry(entry Entry) error {
	if entry.CompID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	if entry.TeamID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "team id is required")
	}
	if !entry.Type.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown event type %q", string(entry.Type))
	}
	if strings.TrimSpace(entry.Summary) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "event summary is required")
	}
	for i, d := range entry.Diffs {
		if strings.TrimSpace(d.FieldLabel) == "" {
			return dErrors.Newf(dErrors.CodeInvalidInput, "diff %d has an empty field label", i)
		}
	}
	return nil
}

func validateActor(ctx context.Context, actor id.UserID) error {
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "actor user id is required")
	}
	caller := requestcontext.UserID(ctx)
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity missing")
	}
	if caller != actor {
		return dErrors.New(dErrors.CodeForbidden, "actor does not match authenticated caller")
	}
	return nil
}
