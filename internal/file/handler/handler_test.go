package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	blobmem "comphub/internal/file/blob/memory"
	filesvc "comphub/internal/file/service"
	filemem "comphub/internal/file/store/memory"
	"comphub/internal/history"
	historymem "comphub/internal/history/store/memory"
	"comphub/internal/platform/middleware"
	"comphub/pkg/testutil"
)

const bearerToken = "file-test-token"

var (
	testUserID = uuid.New()
	testTeamID = uuid.New()
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != bearerToken {
		return nil, errors.New("invalid token")
	}
	return &middleware.JWTClaims{
		UserID: testUserID.String(),
		TeamID: testTeamID.String(),
	}, nil
}

type fileBody struct {
	ID               string `json:"id"`
	LeaseCompID      string `json:"lease_comp_id"`
	StoragePath      string `json:"storage_path"`
	OriginalFilename string `json:"original_filename"`
	SizeBytes        *int64 `json:"size_bytes"`
}

func TestFilesRequireBearerToken(t *testing.T) {
	router := newFileRouter(t)
	req := testutil.NewRequest(t, http.MethodGet, "/lease-comps/"+uuid.New().String()+"/files")
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestUploadDownloadAndRemoveViaHandlers(t *testing.T) {
	router := newFileRouter(t)
	compID := uuid.New().String()

	rec := uploadFile(t, router, compID, "executed-lease.pdf", "%PDF-1.7 lease body")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 uploading file, got %d: %s", rec.Code, rec.Body.String())
	}
	uploaded := testutil.UnmarshalResponse[fileBody](t, rec)
	if uploaded.OriginalFilename != "executed-lease.pdf" {
		t.Fatalf("unexpected filename: %+v", uploaded)
	}
	if uploaded.SizeBytes == nil || *uploaded.SizeBytes != int64(len("%PDF-1.7 lease body")) {
		t.Fatalf("expected size_bytes for the upload, got %+v", uploaded.SizeBytes)
	}
	if !strings.Contains(uploaded.StoragePath, compID) {
		t.Fatalf("expected comp-scoped storage path, got %s", uploaded.StoragePath)
	}

	downloadPath := "/lease-comps/" + compID + "/files/" + uploaded.ID + "/download"
	downloadReq := testutil.NewRequest(t, http.MethodGet, downloadPath)
	downloadReq.Header.Set("Authorization", "Bearer "+bearerToken)
	downloadRec := testutil.DoRequest(router, downloadReq)
	if downloadRec.Code != http.StatusOK {
		t.Fatalf("expected 200 downloading file, got %d", downloadRec.Code)
	}
	if got := downloadRec.Body.String(); got != "%PDF-1.7 lease body" {
		t.Fatalf("downloaded bytes do not match upload: %q", got)
	}
	if cd := downloadRec.Header().Get("Content-Disposition"); !strings.Contains(cd, "executed-lease.pdf") {
		t.Fatalf("expected attachment disposition with the filename, got %q", cd)
	}

	removeReq := testutil.NewRequest(t, http.MethodDelete, "/lease-comps/"+compID+"/files/"+uploaded.ID)
	removeReq.Header.Set("Authorization", "Bearer "+bearerToken)
	removeRec := testutil.DoRequest(router, removeReq)
	if removeRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 removing file, got %d", removeRec.Code)
	}

	listReq := testutil.NewRequest(t, http.MethodGet, "/lease-comps/"+compID+"/files")
	listReq.Header.Set("Authorization", "Bearer "+bearerToken)
	listRec := testutil.DoRequest(router, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing files, got %d", listRec.Code)
	}
	list := testutil.UnmarshalResponse[struct {
		Files []fileBody `json:"files"`
	}](t, listRec)
	if len(list.Files) != 0 {
		t.Fatalf("expected no files after removal, got %+v", list.Files)
	}
}

func TestUploadWithoutFilePartIsBadRequest(t *testing.T) {
	router := newFileRouter(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("note", "no file here"); err != nil {
		t.Fatalf("failed to build form: %v", err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/lease-comps/"+uuid.New().String()+"/files", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a file part, got %d", rec.Code)
	}
}

func TestDownloadUnknownFileIsNotFound(t *testing.T) {
	router := newFileRouter(t)

	path := "/lease-comps/" + uuid.New().String() + "/files/" + uuid.New().String() + "/download"
	req := testutil.NewRequest(t, http.MethodGet, path)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown file, got %d", rec.Code)
	}
}

func uploadFile(t *testing.T, router http.Handler, compID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, strings.NewReader(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/lease-comps/"+compID+"/files", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	return testutil.DoRequest(router, req)
}

func newFileRouter(t *testing.T) http.Handler {
	t.Helper()
	files := filemem.New()
	blobs := blobmem.New()
	auditLog := history.NewLogger(historymem.New())
	svc := filesvc.New(files, blobs, auditLog)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger, nil, stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}
