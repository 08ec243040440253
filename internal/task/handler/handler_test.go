package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"comphub/internal/history"
	historymem "comphub/internal/history/store/memory"
	"comphub/internal/platform/middleware"
	tasksvc "comphub/internal/task/service"
	taskmem "comphub/internal/task/store/memory"
	"comphub/pkg/testutil"
)

const bearerToken = "task-test-token"

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

func TestTasksRequireBearerToken(t *testing.T) {
	router := newTaskRouter(t)
	req := testutil.NewRequest(t, http.MethodGet, "/lease-comps/"+uuid.New().String()+"/tasks")
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestCreateCompleteAndListTaskViaHandlers(t *testing.T) {
	router := newTaskRouter(t)
	compID := uuid.New().String()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/lease-comps/"+compID+"/tasks", map[string]string{
		"title":    "Verify starting rent",
		"priority": "high",
	})
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating task, got %d: %s", rec.Code, rec.Body.String())
	}

	type taskBody struct {
		ID          string  `json:"id"`
		LeaseCompID string  `json:"lease_comp_id"`
		Title       string  `json:"title"`
		AssignedTo  string  `json:"assigned_to"`
		Priority    string  `json:"priority"`
		Status      string  `json:"status"`
		CompletedAt *string `json:"completed_at"`
	}
	created := testutil.UnmarshalResponse[taskBody](t, rec)
	if created.Title != "Verify starting rent" || created.Priority != "high" {
		t.Fatalf("unexpected task in response: %+v", created)
	}
	if created.Status != "open" {
		t.Fatalf("expected new task to be open, got %s", created.Status)
	}
	if created.AssignedTo != testUserID.String() {
		t.Fatalf("expected task assigned to the caller by default, got %s", created.AssignedTo)
	}

	completeReq := testutil.NewJSONRequest(t, http.MethodPost, "/lease-comps/"+compID+"/tasks/"+created.ID+"/complete", nil)
	completeReq.Header.Set("Authorization", "Bearer "+bearerToken)
	completeRec := testutil.DoRequest(router, completeReq)
	if completeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 completing task, got %d: %s", completeRec.Code, completeRec.Body.String())
	}
	completed := testutil.UnmarshalResponse[taskBody](t, completeRec)
	if completed.Status != "completed" || completed.CompletedAt == nil {
		t.Fatalf("expected completed task with timestamp, got %+v", completed)
	}

	listReq := testutil.NewRequest(t, http.MethodGet, "/lease-comps/"+compID+"/tasks")
	listReq.Header.Set("Authorization", "Bearer "+bearerToken)
	listRec := testutil.DoRequest(router, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing tasks, got %d", listRec.Code)
	}
	list := testutil.UnmarshalResponse[struct {
		Tasks []taskBody `json:"tasks"`
	}](t, listRec)
	if len(list.Tasks) != 1 || list.Tasks[0].ID != created.ID {
		t.Fatalf("expected the created task in the list, got %+v", list.Tasks)
	}
}

func TestCreateTaskRejectsUnknownPriority(t *testing.T) {
	router := newTaskRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/lease-comps/"+uuid.New().String()+"/tasks", map[string]string{
		"title":    "Verify starting rent",
		"priority": "urgent",
	})
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown priority, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCompleteUnknownTaskIsNotFound(t *testing.T) {
	router := newTaskRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost,
		"/lease-comps/"+uuid.New().String()+"/tasks/"+uuid.New().String()+"/complete", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown task, got %d", rec.Code)
	}
}

func newTaskRouter(t *testing.T) http.Handler {
	t.Helper()
	tasks := taskmem.New()
	auditLog := history.NewLogger(historymem.New())
	svc := tasksvc.New(tasks, auditLog)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger, nil, stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}
