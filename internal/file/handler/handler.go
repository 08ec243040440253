// Package handler exposes the comp file endpoints. Uploads are multipart, so
// this router skips the JSON content-type gate the other modules use.
package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"comphub/internal/file/models"
	"comphub/internal/file/service"
	"comphub/internal/platform/metrics"
	"comphub/internal/platform/middleware"
	"comphub/internal/transport/http/shared"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/requestcontext"
)

// maxUploadBytes caps one upload at 50 MiB.
const maxUploadBytes = 50 << 20

// Service defines the file operations the handler needs.
type Service interface {
	AddFile(ctx context.Context, compID id.CompID, input service.AddFileInput) (models.File, error)
	RemoveFile(ctx context.Context, compID id.CompID, fileID id.FileID) error
	OpenFile(ctx context.Context, compID id.CompID, fileID id.FileID) (models.File, io.ReadCloser, error)
	ListFiles(ctx context.Context, compID id.CompID) ([]models.File, error)
}

// Handler handles file endpoints.
type Handler struct {
	logger       *slog.Logger
	files        Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a file Handler.
func New(
	files Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		files:        files,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the file routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Get("/lease-comps/{compID}/files", h.handleList)
		r.Post("/lease-comps/{compID}/files", h.handleUpload)
		r.Get("/lease-comps/{compID}/files/{fileID}/download", h.handleDownload)
		r.Delete("/lease-comps/{compID}/files/{fileID}", h.handleRemove)
	})
}

type fileResponse struct {
	ID               string    `json:"id"`
	LeaseCompID      string    `json:"lease_comp_id"`
	TeamID           string    `json:"team_id"`
	StoragePath      string    `json:"storage_path"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         *string   `json:"mime_type"`
	SizeBytes        *int64    `json:"size_bytes"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        string    `json:"created_by"`
}

func toFileResponse(f models.File) fileResponse {
	return fileResponse{
		ID:               f.ID.String(),
		LeaseCompID:      f.CompID.String(),
		TeamID:           f.TeamID.String(),
		StoragePath:      f.StoragePath,
		OriginalFilename: f.OriginalFilename,
		MimeType:         f.MimeType,
		SizeBytes:        f.SizeBytes,
		CreatedAt:        f.CreatedAt,
		CreatedBy:        f.CreatedBy.String(),
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	part, header, err := r.FormFile("file")
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "multipart field 'file' is required"))
		return
	}
	defer part.Close()

	input := service.AddFileInput{
		Filename: header.Filename,
		Content:  part,
	}
	if ct := header.Header.Get("Content-Type"); ct != "" {
		input.MimeType = &ct
	}

	file, err := h.files.AddFile(ctx, compID, input)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to upload file")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toFileResponse(file))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	fileID, err := id.ParseFileID(chi.URLParam(r, "fileID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	file, rc, err := h.files.OpenFile(ctx, compID, fileID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to download file")
		return
	}
	defer rc.Close()

	contentType := "application/octet-stream"
	if file.MimeType != nil {
		contentType = *file.MimeType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename=`+strconv.Quote(file.OriginalFilename))
	if file.SizeBytes != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(*file.SizeBytes, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.ErrorContext(ctx, "file download aborted",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	fileID, err := id.ParseFileID(chi.URLParam(r, "fileID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.files.RemoveFile(ctx, compID, fileID); err != nil {
		h.writeServiceError(ctx, w, err, "failed to remove file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	compID, err := id.ParseCompID(chi.URLParam(r, "compID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	files, err := h.files.ListFiles(ctx, compID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list files")
		return
	}
	out := make([]fileResponse, 0, len(files))
	for _, file := range files {
		out = append(out, toFileResponse(file))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"files": out})
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
