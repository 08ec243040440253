package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	blobmem "comphub/internal/file/blob/memory"
	"comphub/internal/file/store/memory"
	"comphub/internal/history"
	historymem "comphub/internal/history/store/memory"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

type auditRecorder struct {
	logger  *history.Logger
	failErr error
}

func (a *auditRecorder) LogEvent(ctx context.Context, entry history.Entry) error {
	if a.failErr != nil {
		return a.failErr
	}
	return a.logger.LogEvent(ctx, entry)
}

type ServiceSuite struct {
	suite.Suite
	store     *memory.Store
	blobs     *blobmem.Store
	historySt *historymem.Store
	auditor   *auditRecorder
	service   *Service
	actor     id.UserID
	teamID    id.TeamID
	compID    id.CompID
	ctx       context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.blobs = blobmem.New()
	s.historySt = historymem.New()
	s.auditor = &auditRecorder{logger: history.NewLogger(s.historySt)}
	s.service = New(s.store, s.blobs, s.auditor)

	s.actor = id.UserID(uuid.New())
	s.teamID = id.TeamID(uuid.New())
	s.compID = id.NewCompID()
	s.ctx = requestcontext.WithUserID(context.Background(), s.actor)
	s.ctx = requestcontext.WithTeamID(s.ctx, s.teamID)
}

func (s *ServiceSuite) eventsFor(compID id.CompID) []history.Event {
	events, err := s.historySt.ListByComp(s.ctx, s.teamID, compID)
	s.Require().NoError(err)
	return events
}

func (s *ServiceSuite) upload(filename, content string) id.FileID {
	file, err := s.service.AddFile(s.ctx, s.compID, AddFileInput{
		Filename: filename,
		Content:  strings.NewReader(content),
	})
	s.Require().NoError(err)
	return file.ID
}

func (s *ServiceSuite) TestAddFileStoresBlobAndLogsSummary() {
	mime := "application/pdf"
	file, err := s.service.AddFile(s.ctx, s.compID, AddFileInput{
		Filename: "executed-lease.pdf",
		MimeType: &mime,
		Content:  strings.NewReader("lease bytes"),
	})
	s.Require().NoError(err)

	s.Equal("executed-lease.pdf", file.OriginalFilename)
	s.Require().NotNil(file.SizeBytes)
	s.Equal(int64(len("lease bytes")), *file.SizeBytes)
	s.Contains(file.StoragePath, s.teamID.String()+"/"+s.compID.String()+"/")
	s.Equal(1, s.blobs.Len())

	events := s.eventsFor(s.compID)
	s.Require().Len(events, 1)
	s.Equal(history.EventFileAdded, events[0].Type)
	s.Equal(`File added: "executed-lease.pdf"`, events[0].Summary)
	s.Empty(events[0].Diffs)
}

func (s *ServiceSuite) TestAddFileRequiresFilenameAndContent() {
	_, err := s.service.AddFile(s.ctx, s.compID, AddFileInput{
		Filename: "   ",
		Content:  strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))

	_, err = s.service.AddFile(s.ctx, s.compID, AddFileInput{Filename: "a.txt"})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInvalidInput))
	s.Equal(0, s.blobs.Len())
}

func (s *ServiceSuite) TestAddFileBlobFailureLeavesNoRow() {
	s.blobs.FailPutWith(sentinel.ErrUnavailable)

	_, err := s.service.AddFile(s.ctx, s.compID, AddFileInput{
		Filename: "a.txt",
		Content:  strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInternal))

	files, err := s.service.ListFiles(s.ctx, s.compID)
	s.Require().NoError(err)
	s.Empty(files)
	s.Empty(s.eventsFor(s.compID))
}

func (s *ServiceSuite) TestAddFileSurfacesAuditFailure() {
	s.auditor.failErr = sentinel.ErrUnavailable

	file, err := s.service.AddFile(s.ctx, s.compID, AddFileInput{
		Filename: "a.txt",
		Content:  strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInternal))

	// Blob and row landed before the audit write failed.
	stored, err2 := s.store.GetByID(s.ctx, s.teamID, file.ID)
	s.Require().NoError(err2)
	s.Equal("a.txt", stored.OriginalFilename)
	s.Equal(1, s.blobs.Len())
}

func (s *ServiceSuite) TestRemoveFileDeletesBlobRowAndLogs() {
	fileID := s.upload("old-draft.docx", "draft")

	s.Require().NoError(s.service.RemoveFile(s.ctx, s.compID, fileID))

	s.Equal(0, s.blobs.Len())
	_, err := s.store.GetByID(s.ctx, s.teamID, fileID)
	s.Require().Error(err)

	events := s.eventsFor(s.compID)
	s.Require().Len(events, 2)
	s.Equal(history.EventFileRemoved, events[0].Type)
	s.Equal(`File removed: "old-draft.docx"`, events[0].Summary)
	s.Empty(events[0].Diffs)
}

func (s *ServiceSuite) TestRemoveFileBlobFailureKeepsRow() {
	fileID := s.upload("keep.txt", "x")
	s.blobs.FailDeleteWith(sentinel.ErrUnavailable)

	err := s.service.RemoveFile(s.ctx, s.compID, fileID)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeInternal))

	_, err = s.store.GetByID(s.ctx, s.teamID, fileID)
	s.Require().NoError(err)
	s.Len(s.eventsFor(s.compID), 1)
}

func (s *ServiceSuite) TestRemoveFileWrongCompIsNotFound() {
	fileID := s.upload("a.txt", "x")

	err := s.service.RemoveFile(s.ctx, id.NewCompID(), fileID)
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestOpenFileStreamsBlob() {
	fileID := s.upload("rent-roll.csv", "suite,rent\n101,5400\n")

	file, rc, err := s.service.OpenFile(s.ctx, s.compID, fileID)
	s.Require().NoError(err)
	defer rc.Close()

	s.Equal("rent-roll.csv", file.OriginalFilename)
	data, err := io.ReadAll(rc)
	s.Require().NoError(err)
	s.Equal("suite,rent\n101,5400\n", string(data))
}

func (s *ServiceSuite) TestPermissionDeniedTranslatesToForbidden() {
	s.store.FailInsertWith(sentinel.ErrPermissionDenied)
	_, err := s.service.AddFile(s.ctx, s.compID, AddFileInput{
		Filename: "a.txt",
		Content:  strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestMissingIdentityIsUnauthorized() {
	_, err := s.service.AddFile(context.Background(), s.compID, AddFileInput{
		Filename: "a.txt",
		Content:  strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
}
