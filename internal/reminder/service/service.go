// Package service implements comp reminder mutations and their audit flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"comphub/internal/history"
	"comphub/internal/platform/metrics"
	"comphub/internal/reminder/models"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

// Store defines reminder persistence operations.
type Store interface {
	Insert(ctx context.Context, reminder models.Reminder) error
	Update(ctx context.Context, reminder models.Reminder) error
	GetByID(ctx context.Context, teamID id.TeamID, reminderID id.ReminderID) (models.Reminder, error)
	ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.Reminder, error)
}

// Auditor records history events. Satisfied by *history.Logger.
type Auditor interface {
	LogEvent(ctx context.Context, entry history.Entry) error
}

// Service orchestrates reminder mutations.
type Service struct {
	store   Store
	auditor Auditor
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a reminder Service.
func New(store Store, auditor Auditor, opts ...Option) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReminderInput carries the raw reminder fields. A nil assignee
// defaults to the caller.
type CreateReminderInput struct {
	Title      string
	AssignedTo *id.UserID
	RemindAt   time.Time
	Notes      *string
}

// CreateReminder inserts a pending reminder and logs a reminder_created event
// carrying the title and remind-at instant.
func (s *Service) CreateReminder(ctx context.Context, compID id.CompID, input CreateReminderInput) (models.Reminder, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.Reminder{}, err
	}
	if compID.IsNil() {
		return models.Reminder{}, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Reminder{}, dErrors.New(dErrors.CodeInvalidInput, "reminder title is required")
	}
	if input.RemindAt.IsZero() {
		return models.Reminder{}, dErrors.New(dErrors.CodeInvalidInput, "remind_at is required")
	}

	assignee := actor
	if input.AssignedTo != nil && !input.AssignedTo.IsNil() {
		assignee = *input.AssignedTo
	}

	now := requestcontext.Now(ctx)
	remindAt := input.RemindAt.UTC()
	reminder := models.Reminder{
		ID:         id.NewReminderID(),
		CompID:     compID,
		TeamID:     teamID,
		Title:      title,
		AssignedTo: assignee,
		RemindAt:   remindAt,
		Notes:      trimmedOrNil(input.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  actor,
		UpdatedBy:  actor,
	}
	if err := s.store.Insert(ctx, reminder); err != nil {
		return models.Reminder{}, s.translateStoreErr(err, "failed to save reminder")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventReminderCreated,
		Summary:     fmt.Sprintf("Reminder created: %q for %s", title, remindAt.Format("2006-01-02")),
		ActorUserID: actor,
		Diffs: []history.DiffInput{
			{FieldLabel: "Title", NewValue: &title},
			{FieldLabel: "Remind At", NewValue: history.Stringify(remindAt)},
		},
	}
	if err := s.logBlocking(ctx, entry); err != nil {
		return reminder, err
	}
	return reminder, nil
}

// CompleteReminder marks a pending reminder done and logs the transition.
// Completing a completed reminder is a conflict.
func (s *Service) CompleteReminder(ctx context.Context, compID id.CompID, reminderID id.ReminderID) (models.Reminder, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.Reminder{}, err
	}
	if compID.IsNil() || reminderID.IsNil() {
		return models.Reminder{}, dErrors.New(dErrors.CodeInvalidInput, "comp id and reminder id are required")
	}

	reminder, err := s.store.GetByID(ctx, teamID, reminderID)
	if err != nil {
		return models.Reminder{}, s.translateStoreErr(err, "failed to load reminder")
	}
	if reminder.CompID != compID {
		return models.Reminder{}, dErrors.New(dErrors.CodeNotFound, "reminder not found")
	}
	if !reminder.Pending() {
		return models.Reminder{}, dErrors.New(dErrors.CodeConflict, "reminder is already completed")
	}

	now := requestcontext.Now(ctx)
	reminder.CompletedAt = &now
	reminder.UpdatedAt = now
	reminder.UpdatedBy = actor
	if err := s.store.Update(ctx, reminder); err != nil {
		return models.Reminder{}, s.translateStoreErr(err, "failed to save reminder")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventReminderCompleted,
		Summary:     fmt.Sprintf("Reminder completed: %q", reminder.Title),
		ActorUserID: actor,
		Diffs: []history.DiffInput{
			{FieldLabel: "Status", OldValue: strPtr("pending"), NewValue: strPtr("completed")},
		},
	}
	if err := s.logBlocking(ctx, entry); err != nil {
		return reminder, err
	}
	return reminder, nil
}

// ListReminders returns the comp's reminders, pending before completed.
func (s *Service) ListReminders(ctx context.Context, compID id.CompID) ([]models.Reminder, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if compID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	reminders, err := s.store.ListByComp(ctx, teamID, compID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list reminders")
	}
	return reminders, nil
}

func (s *Service) logBlocking(ctx context.Context, entry history.Entry) error {
	if err := s.auditor.LogEvent(ctx, entry); err != nil {
		s.metrics.IncAuditLogFailure("blocking")
		return dErrors.Wrap(err, dErrors.CodeInternal, "saved, but recording the change history failed")
	}
	return nil
}

func (s *Service) translateStoreErr(err error, message string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "reminder not found")
	case errors.Is(err, sentinel.ErrPermissionDenied):
		return dErrors.New(dErrors.CodeForbidden, "you don't have edit access to this comp")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}

func callerIdentity(ctx context.Context) (id.UserID, id.TeamID, error) {
	actor := requestcontext.UserID(ctx)
	teamID := requestcontext.TeamID(ctx)
	if actor.IsNil() || teamID.IsNil() {
		return id.UserID{}, id.TeamID{}, dErrors.New(dErrors.CodeUnauthorized, "caller identity missing")
	}
	return actor, teamID, nil
}

func strPtr(s string) *string { return &s }

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
