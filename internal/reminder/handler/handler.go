// Package handler exposes the comp reminder endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"comphub/internal/platform/metrics"
	"comphub/internal/platform/middleware"
	"comphub/internal/reminder/models"
	"comphub/internal/reminder/service"
	"comphub/internal/transport/http/shared"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Service defines the reminder operations the handler needs.
type Service interface {
	CreateReminder(ctx context.Context, compID id.CompID, input service.CreateReminderInput) (models.Reminder, error)
	CompleteReminder(ctx context.Context, compID id.CompID, reminderID id.ReminderID) (models.Reminder, error)
	ListReminders(ctx context.Context, compID id.CompID) ([]models.Reminder, error)
}

// Handler handles reminder endpoints.
type Handler struct {
	logger       *slog.Logger
	reminders    Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a reminder Handler.
func New(
	reminders Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		reminders:    reminders,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the reminder routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/lease-comps/{compID}/reminders", h.handleList)
		r.Post("/lease-comps/{compID}/reminders", h.handleCreate)
		r.Post("/lease-comps/{compID}/reminders/{reminderID}/complete", h.handleComplete)
	})
}

type createRequest struct {
	Title      string  `json:"title"`
	AssignedTo *string `json:"assigned_to"`
	RemindAt   string  `json:"remind_at"`
	Notes      *string `json:"notes"`
}

type reminderResponse struct {
	ID               string     `json:"id"`
	LeaseCompID      string     `json:"lease_comp_id"`
	TeamID           string     `json:"team_id"`
	Title            string     `json:"title"`
	AssignedTo       string     `json:"assigned_to"`
	RemindAt         time.Time  `json:"remind_at"`
	Notes            *string    `json:"notes"`
	CompletedAt      *time.Time `json:"completed_at"`
	NotificationSent bool       `json:"notification_sent"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	CreatedBy        string     `json:"created_by"`
	UpdatedBy        string     `json:"updated_by"`
}

func toReminderResponse(rem models.Reminder) reminderResponse {
	return reminderResponse{
		ID:               rem.ID.String(),
		LeaseCompID:      rem.CompID.String(),
		TeamID:           rem.TeamID.String(),
		Title:            rem.Title,
		AssignedTo:       rem.AssignedTo.String(),
		RemindAt:         rem.RemindAt,
		Notes:            rem.Notes,
		CompletedAt:      rem.CompletedAt,
		NotificationSent: rem.NotificationSent,
		CreatedAt:        rem.CreatedAt,
		UpdatedAt:        rem.UpdatedAt,
		CreatedBy:        rem.CreatedBy.String(),
		UpdatedBy:        rem.UpdatedBy.String(),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	input := service.CreateReminderInput{
		Title: req.Title,
		Notes: req.Notes,
	}
	if req.RemindAt != "" {
		remindAt, err := time.Parse(time.RFC3339, req.RemindAt)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "remind_at must be an RFC 3339 timestamp"))
			return
		}
		input.RemindAt = remindAt
	}
	if req.AssignedTo != nil {
		assignee, err := id.ParseUserID(*req.AssignedTo)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		input.AssignedTo = &assignee
	}

	reminder, err := h.reminders.CreateReminder(ctx, compID, input)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create reminder")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toReminderResponse(reminder))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	reminderID, err := id.ParseReminderID(chi.URLParam(r, "reminderID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	reminder, err := h.reminders.CompleteReminder(ctx, compID, reminderID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to complete reminder")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toReminderResponse(reminder))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	reminders, err := h.reminders.ListReminders(ctx, compID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list reminders")
		return
	}
	out := make([]reminderResponse, 0, len(reminders))
	for _, reminder := range reminders {
		out = append(out, toReminderResponse(reminder))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"reminders": out})
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, message string) {
	if dErrors.Is(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, message,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteError(w, err)
}
