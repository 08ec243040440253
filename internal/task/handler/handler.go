// Package handler exposes the comp task endpoints.
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
	"comphub/internal/task/models"
	"comphub/internal/task/service"
	"comphub/internal/transport/http/shared"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Service defines the task operations the handler needs.
type Service interface {
	CreateTask(ctx context.Context, compID id.CompID, input service.CreateTaskInput) (models.Task, error)
	CompleteTask(ctx context.Context, compID id.CompID, taskID id.TaskID) (models.Task, error)
	ListTasks(ctx context.Context, compID id.CompID) ([]models.Task, error)
}

// Handler handles task endpoints.
type Handler struct {
	logger       *slog.Logger
	tasks        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a task Handler.
func New(
	tasks Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		tasks:        tasks,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the task routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/lease-comps/{compID}/tasks", h.handleList)
		r.Post("/lease-comps/{compID}/tasks", h.handleCreate)
		r.Post("/lease-comps/{compID}/tasks/{taskID}/complete", h.handleComplete)
	})
}

type createRequest struct {
	Title      string  `json:"title"`
	AssignedTo *string `json:"assigned_to"`
	Priority   string  `json:"priority"`
	Notes      *string `json:"notes"`
}

type taskResponse struct {
	ID          string     `json:"id"`
	LeaseCompID string     `json:"lease_comp_id"`
	TeamID      string     `json:"team_id"`
	Title       string     `json:"title"`
	AssignedTo  string     `json:"assigned_to"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedBy   string     `json:"created_by"`
	UpdatedBy   string     `json:"updated_by"`
}

func toTaskResponse(t models.Task) taskResponse {
	return taskResponse{
		ID:          t.ID.String(),
		LeaseCompID: t.CompID.String(),
		TeamID:      t.TeamID.String(),
		Title:       t.Title,
		AssignedTo:  t.AssignedTo.String(),
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Notes:       t.Notes,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		CreatedBy:   t.CreatedBy.String(),
		UpdatedBy:   t.UpdatedBy.String(),
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
	input := service.CreateTaskInput{
		Title:    req.Title,
		Priority: req.Priority,
		Notes:    req.Notes,
	}
	if req.AssignedTo != nil {
		assignee, err := id.ParseUserID(*req.AssignedTo)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		input.AssignedTo = &assignee
	}

	task, err := h.tasks.CreateTask(ctx, compID, input)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create task")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	taskID, err := id.ParseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	task, err := h.tasks.CompleteTask(ctx, compID, taskID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to complete task")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tasks, err := h.tasks.ListTasks(ctx, compID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list tasks")
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, toTaskResponse(task))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"tasks": out})
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
