// Package handler exposes the lease option CRUD endpoints.
package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	optionModel "comphub/internal/option/models"
	"comphub/internal/option/service"
	"comphub/internal/platform/metrics"
	"comphub/internal/platform/middleware"
	"comphub/internal/transport/http/shared"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Service defines the option operations the handler needs.
type Service interface {
	Add(ctx context.Context, compID id.CompID, input service.Input) (optionModel.Option, error)
	Edit(ctx context.Context, compID id.CompID, optionID id.OptionID, input service.Input) (optionModel.Option, error)
	Remove(ctx context.Context, compID id.CompID, kind optionModel.Kind, optionID id.OptionID) error
	ListOptions(ctx context.Context, compID id.CompID) ([]optionModel.Option, error)
}

// Handler handles option endpoints.
type Handler struct {
	logger       *slog.Logger
	options      Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates an option Handler.
func New(
	options Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		options:      options,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the option routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/lease-comps/{compID}/options", h.handleList)
		r.Post("/lease-comps/{compID}/options/{kind}", h.handleAdd)
		r.Put("/lease-comps/{compID}/options/{kind}/{optionID}", h.handleEdit)
		r.Delete("/lease-comps/{compID}/options/{kind}/{optionID}", h.handleRemove)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	opts, err := h.options.ListOptions(ctx, compID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list options")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toListResponse(opts))
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	input, err := decodeInput(chi.URLParam(r, "kind"), r.Body)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	opt, err := h.options.Add(ctx, compID, input)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to add option")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toOptionResponse(opt))
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	optionID, err := id.ParseOptionID(chi.URLParam(r, "optionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	input, err := decodeInput(chi.URLParam(r, "kind"), r.Body)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	opt, err := h.options.Edit(ctx, compID, optionID, input)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to edit option")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toOptionResponse(opt))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	kind, err := optionModel.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	optionID, err := id.ParseOptionID(chi.URLParam(r, "optionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.options.Remove(ctx, compID, kind, optionID); err != nil {
		h.writeServiceError(ctx, w, err, "failed to remove option")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeInput picks the request shape for the kind in the URL and builds the
// matching service input.
func decodeInput(rawKind string, body io.Reader) (service.Input, error) {
	kind, err := optionModel.ParseKind(rawKind)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(body)
	switch kind {
	case optionModel.KindRenewal:
		var req renewalRequest
		if err := decoder.Decode(&req); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		return req.toInput(), nil
	case optionModel.KindTermination:
		var req terminationRequest
		if err := decoder.Decode(&req); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		return req.toInput(), nil
	case optionModel.KindExpansion:
		var req expansionRequest
		if err := decoder.Decode(&req); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		return req.toInput(), nil
	default:
		var req purchaseRequest
		if err := decoder.Decode(&req); err != nil {
			return nil, dErrors.New(dErrors.CodeBadRequest, "invalid request body")
		}
		return req.toInput(), nil
	}
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
