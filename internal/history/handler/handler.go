// Package handler exposes the comp history read endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"comphub/internal/history"
	"comphub/internal/platform/metrics"
	"comphub/internal/platform/middleware"
	"comphub/internal/transport/http/shared"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Service defines the history read operations the handler needs.
type Service interface {
	ListEvents(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]history.Event, error)
}

// Handler serves the audit trail view.
type Handler struct {
	logger       *slog.Logger
	service      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a history Handler.
func New(
	service Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the history routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/lease-comps/{compID}/history", h.handleListEvents)
	})
}

// eventResponse is one timeline entry: the summary line plus the expandable
// before/after rows.
type eventResponse struct {
	ID          string         `json:"id"`
	EventType   string         `json:"event_type"`
	Label       string         `json:"label"`
	Summary     string         `json:"summary"`
	ActorUserID string         `json:"actor_user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	Diffs       []diffResponse `json:"diffs"`
}

type diffResponse struct {
	FieldLabel string  `json:"field_label"`
	OldValue   *string `json:"old_value"`
	NewValue   *string `json:"new_value"`
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	teamID := requestcontext.TeamID(ctx)
	if teamID.IsNil() {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	events, err := h.service.ListEvents(ctx, teamID, compID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list history events",
			"request_id", requestID,
			"comp_id", compID.String(),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		resp := eventResponse{
			ID:          e.ID.String(),
			EventType:   string(e.Type),
			Label:       e.Type.Label(),
			Summary:     e.Summary,
			ActorUserID: e.ActorUserID.String(),
			CreatedAt:   e.CreatedAt,
			Diffs:       make([]diffResponse, 0, len(e.Diffs)),
		}
		for _, d := range e.Diffs {
			resp.Diffs = append(resp.Diffs, diffResponse{
				FieldLabel: d.FieldLabel,
				OldValue:   d.OldValue,
				NewValue:   d.NewValue,
			})
		}
		out = append(out, resp)
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": out})
}
