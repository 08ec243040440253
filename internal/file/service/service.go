// Package service orchestrates comp file attachments.
//
// Uploads write the blob first, then the metadata row, then the audit event.
// File events carry a summary only; the filename is the whole story, so no
// field diffs are recorded.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"comphub/internal/file/models"
	"comphub/internal/history"
	"comphub/internal/platform/metrics"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

// Store persists file metadata rows.
type Store interface {
	Insert(ctx context.Context, file models.File) error
	GetByID(ctx context.Context, teamID id.TeamID, fileID id.FileID) (models.File, error)
	ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.File, error)
	Delete(ctx context.Context, teamID id.TeamID, fileID id.FileID) error
}

// BlobStore holds the attachment bytes. Paths are opaque to it; the service
// owns the team/comp/file layout.
type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Auditor records history events.
type Auditor interface {
	LogEvent(ctx context.Context, entry history.Entry) error
}

// Service orchestrates file mutations.
type Service struct {
	store   Store
	blobs   BlobStore
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

// New creates a file Service.
func New(store Store, blobs BlobStore, auditor Auditor, opts ...Option) *Service {
	s := &Service{
		store:   store,
		blobs:   blobs,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddFileInput carries one upload.
type AddFileInput struct {
	Filename string
	MimeType *string
	Content  io.Reader
}

// AddFile stores the blob, inserts the metadata row, and logs file_added.
// The blob lands before the row so a failed insert never leaves a row
// pointing at nothing.
func (s *Service) AddFile(ctx context.Context, compID id.CompID, input AddFileInput) (models.File, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.File{}, err
	}
	if compID.IsNil() {
		return models.File{}, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return models.File{}, dErrors.New(dErrors.CodeInvalidInput, "filename is required")
	}
	if input.Content == nil {
		return models.File{}, dErrors.New(dErrors.CodeInvalidInput, "file content is required")
	}

	fileID := id.NewFileID()
	storagePath := fmt.Sprintf("%s/%s/%s-%s", teamID, compID, fileID, filename)

	size, err := s.blobs.Put(ctx, storagePath, input.Content)
	if err != nil {
		return models.File{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload file")
	}

	file := models.File{
		ID:               fileID,
		CompID:           compID,
		TeamID:           teamID,
		StoragePath:      storagePath,
		OriginalFilename: filename,
		MimeType:         input.MimeType,
		SizeBytes:        &size,
		CreatedAt:        requestcontext.Now(ctx),
		CreatedBy:        actor,
	}
	if err := s.store.Insert(ctx, file); err != nil {
		return models.File{}, s.translateStoreErr(err, "failed to save file metadata")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventFileAdded,
		Summary:     fmt.Sprintf("File added: %q", filename),
		ActorUserID: actor,
	}
	if err := s.logBlocking(ctx, entry); err != nil {
		return file, err
	}
	return file, nil
}

// RemoveFile deletes the blob, then the row, then logs file_removed.
func (s *Service) RemoveFile(ctx context.Context, compID id.CompID, fileID id.FileID) error {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	if compID.IsNil() || fileID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "comp id and file id are required")
	}

	file, err := s.store.GetByID(ctx, teamID, fileID)
	if err != nil {
		return s.translateStoreErr(err, "failed to load file")
	}
	if file.CompID != compID {
		return dErrors.New(dErrors.CodeNotFound, "file not found")
	}

	if err := s.blobs.Delete(ctx, file.StoragePath); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete file")
	}
	if err := s.store.Delete(ctx, teamID, fileID); err != nil {
		return s.translateStoreErr(err, "failed to delete file metadata")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventFileRemoved,
		Summary:     fmt.Sprintf("File removed: %q", file.OriginalFilename),
		ActorUserID: actor,
	}
	return s.logBlocking(ctx, entry)
}

// OpenFile returns the metadata row and a reader over the blob. The caller
// closes the reader.
func (s *Service) OpenFile(ctx context.Context, compID id.CompID, fileID id.FileID) (models.File, io.ReadCloser, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.File{}, nil, err
	}
	if compID.IsNil() || fileID.IsNil() {
		return models.File{}, nil, dErrors.New(dErrors.CodeInvalidInput, "comp id and file id are required")
	}

	file, err := s.store.GetByID(ctx, teamID, fileID)
	if err != nil {
		return models.File{}, nil, s.translateStoreErr(err, "failed to load file")
	}
	if file.CompID != compID {
		return models.File{}, nil, dErrors.New(dErrors.CodeNotFound, "file not found")
	}

	rc, err := s.blobs.Open(ctx, file.StoragePath)
	if err != nil {
		return models.File{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to open file")
	}
	return file, rc, nil
}

// ListFiles returns the comp's files, newest first.
func (s *Service) ListFiles(ctx context.Context, compID id.CompID) ([]models.File, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if compID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	files, err := s.store.ListByComp(ctx, teamID, compID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list files")
	}
	return files, nil
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
		return dErrors.New(dErrors.CodeNotFound, "file not found")
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
