package httpapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/google/uuid"

	comphandler "comphub/internal/comp/handler"
	compsvc "comphub/internal/comp/service"
	compmem "comphub/internal/comp/store/memory"
	blobmem "comphub/internal/file/blob/memory"
	filehandler "comphub/internal/file/handler"
	filesvc "comphub/internal/file/service"
	filemem "comphub/internal/file/store/memory"
	"comphub/internal/history"
	historyhandler "comphub/internal/history/handler"
	historymem "comphub/internal/history/store/memory"
	optionhandler "comphub/internal/option/handler"
	optionsvc "comphub/internal/option/service"
	optionmem "comphub/internal/option/store/memory"
	"comphub/internal/platform/middleware"
	reminderhandler "comphub/internal/reminder/handler"
	remindersvc "comphub/internal/reminder/service"
	remindermem "comphub/internal/reminder/store/memory"
	taskhandler "comphub/internal/task/handler"
	tasksvc "comphub/internal/task/service"
	taskmem "comphub/internal/task/store/memory"
	httpapi "comphub/internal/transport/http"
	"comphub/pkg/testutil"
)

const bearerToken = "router-test-token"

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

// newFullRouter wires every module handler onto one shared router, the same
// composition cmd/server uses in production.
func newFullRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	auditLog := history.NewLogger(historymem.New())
	validator := stubValidator{}

	comps := compsvc.New(compmem.New(), auditLog)
	options := optionsvc.New(optionmem.New(), auditLog)
	tasks := tasksvc.New(taskmem.New(), auditLog)
	reminders := remindersvc.New(remindermem.New(), auditLog)
	files := filesvc.New(filemem.New(), blobmem.New(), auditLog)

	return httpapi.NewRouter(
		comphandler.New(comps, logger, nil, validator),
		optionhandler.New(options, logger, nil, validator),
		taskhandler.New(tasks, logger, nil, validator),
		reminderhandler.New(reminders, logger, nil, validator),
		filehandler.New(files, logger, nil, validator),
		historyhandler.New(auditLog, logger, nil, validator),
	)
}

// Registering a second module on the shared router used to panic inside chi
// before any request was served, so the assembly itself is the assertion.
func TestAllModulesRegisterOnOneRouter(t *testing.T) {
	newFullRouter(t)
}

func TestRequestsRouteAcrossModules(t *testing.T) {
	router := newFullRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/lease-comps", map[string]string{
		"building_id": uuid.New().String(),
		"tenant_name": "Initech",
	})
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating comp, got %d: %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}

	req = testutil.NewJSONRequest(t, http.MethodPost, "/lease-comps/"+created.ID+"/tasks", map[string]string{
		"title":    "Confirm signed lease",
		"priority": "high",
	})
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec = testutil.DoRequest(router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating task through shared router, got %d: %s", rec.Code, rec.Body.String())
	}

	for _, path := range []string{
		"/lease-comps/" + created.ID + "/options",
		"/lease-comps/" + created.ID + "/reminders",
		"/lease-comps/" + created.ID + "/files",
		"/lease-comps/" + created.ID + "/history",
	} {
		req = testutil.NewRequest(t, http.MethodGet, path)
		req.Header.Set("Authorization", "Bearer "+bearerToken)
		rec = testutil.DoRequest(router, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 from %s, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}
