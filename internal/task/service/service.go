// Package service implements comp task mutations and their audit flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"comphub/internal/history"
	"comphub/internal/platform/metrics"
	"comphub/internal/task/models"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

// Store defines task persistence operations.
type Store interface {
	Insert(ctx context.Context, task models.Task) error
	Update(ctx context.Context, task models.Task) error
	GetByID(ctx context.Context, teamID id.TeamID, taskID id.TaskID) (models.Task, error)
	ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.Task, error)
}

// Auditor records history events. Satisfied by *history.Logger.
type Auditor interface {
	LogEvent(ctx context.Context, entry history.Entry) error
}

// Service orchestrates task mutations.
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

// New creates a task Service.
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

// CreateTaskInput carries the raw task fields. Priority defaults to medium
// and a nil assignee defaults to the caller.
type CreateTaskInput struct {
	Title      string
	AssignedTo *id.UserID
	Priority   string
	Notes      *string
}

// CreateTask inserts an open task and logs a task_created event carrying the
// title and priority.
func (s *Service) CreateTask(ctx context.Context, compID id.CompID, input CreateTaskInput) (models.Task, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.Task{}, err
	}
	if compID.IsNil() {
		return models.Task{}, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Task{}, dErrors.New(dErrors.CodeInvalidInput, "task title is required")
	}

	priority := models.PriorityMedium
	if input.Priority != "" {
		priority, err = models.ParsePriority(input.Priority)
		if err != nil {
			return models.Task{}, err
		}
	}
	assignee := actor
	if input.AssignedTo != nil && !input.AssignedTo.IsNil() {
		assignee = *input.AssignedTo
	}

	now := requestcontext.Now(ctx)
	task := models.Task{
		ID:         id.NewTaskID(),
		CompID:     compID,
		TeamID:     teamID,
		Title:      title,
		AssignedTo: assignee,
		Priority:   priority,
		Status:     models.StatusOpen,
		Notes:      trimmedOrNil(input.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  actor,
		UpdatedBy:  actor,
	}
	if err := s.store.Insert(ctx, task); err != nil {
		return models.Task{}, s.translateStoreErr(err, "failed to save task")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventTaskCreated,
		Summary:     fmt.Sprintf("Task created: %q", title),
		ActorUserID: actor,
		Diffs: []history.DiffInput{
			{FieldLabel: "Title", NewValue: &title},
			{FieldLabel: "Priority", NewValue: strPtr(string(priority))},
		},
	}
	if err := s.logBlocking(ctx, entry); err != nil {
		return task, err
	}
	return task, nil
}

// CompleteTask moves an open task to completed and logs the transition.
// Completing a completed task is a conflict.
func (s *Service) CompleteTask(ctx context.Context, compID id.CompID, taskID id.TaskID) (models.Task, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.Task{}, err
	}
	if compID.IsNil() || taskID.IsNil() {
		return models.Task{}, dErrors.New(dErrors.CodeInvalidInput, "comp id and task id are required")
	}

	task, err := s.store.GetByID(ctx, teamID, taskID)
	if err != nil {
		return models.Task{}, s.translateStoreErr(err, "failed to load task")
	}
	if task.CompID != compID {
		return models.Task{}, dErrors.New(dErrors.CodeNotFound, "task not found")
	}
	if task.Status == models.StatusCompleted {
		return models.Task{}, dErrors.New(dErrors.CodeConflict, "task is already completed")
	}

	now := requestcontext.Now(ctx)
	task.Status = models.StatusCompleted
	task.CompletedAt = &now
	task.UpdatedAt = now
	task.UpdatedBy = actor
	if err := s.store.Update(ctx, task); err != nil {
		return models.Task{}, s.translateStoreErr(err, "failed to save task")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventTaskCompleted,
		Summary:     fmt.Sprintf("Task completed: %q", task.Title),
		ActorUserID: actor,
		Diffs: []history.DiffInput{
			{FieldLabel: "Status", OldValue: strPtr("open"), NewValue: strPtr("completed")},
		},
	}
	if err := s.logBlocking(ctx, entry); err != nil {
		return task, err
	}
	return task, nil
}

// ListTasks returns the comp's tasks, open before completed.
func (s *Service) ListTasks(ctx context.Context, compID id.CompID) ([]models.Task, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if compID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	tasks, err := s.store.ListByComp(ctx, teamID, compID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list tasks")
	}
	return tasks, nil
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
		return dErrors.New(dErrors.CodeNotFound, "task not found")
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
