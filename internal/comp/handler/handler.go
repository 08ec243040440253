// Package handler exposes the comp CRUD endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	compModel "comphub/internal/comp/models"
	"comphub/internal/comp/service"
	"comphub/internal/platform/metrics"
	"comphub/internal/platform/middleware"
	"comphub/internal/transport/http/shared"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// Service defines the comp operations the handler needs.
type Service interface {
	CreateComp(ctx context.Context, input service.CreateCompInput) (compModel.LeaseComp, error)
	GetComp(ctx context.Context, compID id.CompID) (service.CompDetail, error)
	ListComps(ctx context.Context) ([]compModel.LeaseComp, error)
	UpdateLeaseDetails(ctx context.Context, compID id.CompID, input service.UpdateLeaseDetailsInput) (compModel.LeaseComp, error)
	UpdateConfidentiality(ctx context.Context, compID id.CompID, input service.UpdateConfidentialityInput) (compModel.LeaseComp, error)
}

// Handler handles comp endpoints.
type Handler struct {
	logger       *slog.Logger
	comps        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a comp Handler.
func New(
	comps Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		comps:        comps,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the comp routes with the chi router. Routes go through a
// route group so every module handler can register on one shared mux.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/lease-comps", h.handleCreate)
		r.Get("/lease-comps", h.handleList)
		r.Get("/lease-comps/{compID}", h.handleGet)
		r.Put("/lease-comps/{compID}/details", h.handleUpdateDetails)
		r.Put("/lease-comps/{compID}/confidentiality", h.handleUpdateConfidentiality)
	})
}

type createRequest struct {
	BuildingID      string `json:"building_id"`
	BuildingAddress string `json:"building_address"`
	TenantName      string `json:"tenant_name"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	buildingID, err := id.ParseBuildingID(req.BuildingID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	comp, err := h.comps.CreateComp(ctx, service.CreateCompInput{
		BuildingID:      buildingID,
		BuildingAddress: req.BuildingAddress,
		TenantName:      req.TenantName,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create comp")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toCompResponse(comp))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	comps, err := h.comps.ListComps(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list comps")
		return
	}
	out := make([]compResponse, 0, len(comps))
	for _, comp := range comps {
		out = append(out, toCompResponse(comp))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"comps": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	detail, err := h.comps.GetComp(ctx, compID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load comp")
		return
	}
	resp := toCompResponse(detail.LeaseComp)
	reasons := make([]reasonResponse, 0, len(detail.IncompleteReasons))
	for _, reason := range detail.IncompleteReasons {
		reasons = append(reasons, reasonResponse{Code: string(reason), Label: reason.Label()})
	}
	shared.WriteJSON(w, http.StatusOK, compDetailResponse{
		compResponse:      resp,
		IncompleteReasons: reasons,
		IsComplete:        len(reasons) == 0,
	})
}

func (h *Handler) handleUpdateDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req detailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	comp, err := h.comps.UpdateLeaseDetails(ctx, compID, req.toInput())
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update lease details")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCompResponse(comp))
}

type confidentialityRequest struct {
	InternalAccessLevel string `json:"internal_access_level"`
	ExportDetailLevel   string `json:"export_detail_level"`
}

func (h *Handler) handleUpdateConfidentiality(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req confidentialityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	comp, err := h.comps.UpdateConfidentiality(ctx, compID, service.UpdateConfidentialityInput{
		InternalAccessLevel: req.InternalAccessLevel,
		ExportDetailLevel:   req.ExportDetailLevel,
	})
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update confidentiality")
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCompResponse(comp))
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
