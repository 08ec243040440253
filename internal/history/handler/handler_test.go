package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"comphub/internal/history"
	historymem "comphub/internal/history/store/memory"
	"comphub/internal/platform/middleware"
	id "comphub/pkg/domain"
	"comphub/pkg/requestcontext"
)

const bearerToken = "history-test-token"

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

func TestHistoryRequiresBearerToken(t *testing.T) {
	router, _ := newHistoryRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/lease-comps/"+uuid.New().String()+"/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when bearer token missing, got %d", rec.Code)
	}
}

func TestHistoryListsEventsNewestFirst(t *testing.T) {
	router, auditLog := newHistoryRouter(t)
	compID := id.NewCompID()

	before := "pending"
	after := "signed"
	seedEvent(t, auditLog, compID, history.EventCompCreated, "Comp created for 101 Market St", nil)
	seedEvent(t, auditLog, compID, history.EventFieldsEdited, "Lease details updated", []history.DiffInput{
		{FieldLabel: "Lease Status", OldValue: &before, NewValue: &after},
	})

	rec := doGet(t, router, "/lease-comps/"+compID.String()+"/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing history, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Events []struct {
			ID          string    `json:"id"`
			EventType   string    `json:"event_type"`
			Label       string    `json:"label"`
			Summary     string    `json:"summary"`
			ActorUserID string    `json:"actor_user_id"`
			CreatedAt   time.Time `json:"created_at"`
			Diffs       []struct {
				FieldLabel string  `json:"field_label"`
				OldValue   *string `json:"old_value"`
				NewValue   *string `json:"new_value"`
			} `json:"diffs"`
		} `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode history response: %v", err)
	}
	if len(resp.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(resp.Events))
	}
	if resp.Events[0].EventType != "fields_edited" {
		t.Fatalf("expected newest event first, got %s", resp.Events[0].EventType)
	}
	if resp.Events[0].Label == "" {
		t.Fatalf("expected a human label on the event")
	}
	if resp.Events[0].ActorUserID != testUserID.String() {
		t.Fatalf("expected actor %s, got %s", testUserID, resp.Events[0].ActorUserID)
	}
	if len(resp.Events[0].Diffs) != 1 {
		t.Fatalf("expected 1 diff on the edit event, got %d", len(resp.Events[0].Diffs))
	}
	diff := resp.Events[0].Diffs[0]
	if diff.FieldLabel != "Lease Status" || diff.OldValue == nil || *diff.OldValue != "pending" || diff.NewValue == nil || *diff.NewValue != "signed" {
		t.Fatalf("unexpected diff: %+v", diff)
	}
	if resp.Events[1].EventType != "comp_created" {
		t.Fatalf("expected comp_created as the oldest event, got %s", resp.Events[1].EventType)
	}
	if len(resp.Events[1].Diffs) != 0 {
		t.Fatalf("expected no diffs on the creation event, got %d", len(resp.Events[1].Diffs))
	}
}

func TestHistoryForUnknownCompIsEmpty(t *testing.T) {
	router, _ := newHistoryRouter(t)

	rec := doGet(t, router, "/lease-comps/"+uuid.New().String()+"/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for unknown comp, got %d", rec.Code)
	}
	var resp struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode history response: %v", err)
	}
	if len(resp.Events) != 0 {
		t.Fatalf("expected empty timeline, got %d events", len(resp.Events))
	}
}

func TestHistoryRejectsMalformedCompID(t *testing.T) {
	router, _ := newHistoryRouter(t)

	rec := doGet(t, router, "/lease-comps/not-a-uuid/history")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed comp id, got %d", rec.Code)
	}
}

func TestHistoryIsScopedToCallerTeam(t *testing.T) {
	router, auditLog := newHistoryRouter(t)
	compID := id.NewCompID()

	// An event recorded under another team must not leak into this team's view.
	otherTeam := id.TeamID(uuid.New())
	otherUser := id.UserID(uuid.New())
	ctx := requestcontext.WithTeamID(requestcontext.WithUserID(context.Background(), otherUser), otherTeam)
	err := auditLog.LogEvent(ctx, history.Entry{
		CompID:      compID,
		TeamID:      otherTeam,
		Type:        history.EventCompCreated,
		Summary:     "Comp created",
		ActorUserID: otherUser,
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	rec := doGet(t, router, "/lease-comps/"+compID.String()+"/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode history response: %v", err)
	}
	if len(resp.Events) != 0 {
		t.Fatalf("expected no cross-team events, got %d", len(resp.Events))
	}
}

func seedEvent(t *testing.T, auditLog *history.Logger, compID id.CompID, eventType history.EventType, summary string, diffs []history.DiffInput) {
	t.Helper()
	actor := id.UserID(testUserID)
	team := id.TeamID(testTeamID)
	ctx := requestcontext.WithTeamID(requestcontext.WithUserID(context.Background(), actor), team)
	err := auditLog.LogEvent(ctx, history.Entry{
		CompID:      compID,
		TeamID:      team,
		Type:        eventType,
		Summary:     summary,
		ActorUserID: actor,
		Diffs:       diffs,
	})
	if err != nil {
		t.Fatalf("failed to seed %s event: %v", eventType, err)
	}
}

func doGet(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newHistoryRouter(t *testing.T) (http.Handler, *history.Logger) {
	t.Helper()
	auditLog := history.NewLogger(historymem.New())
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(auditLog, logger, nil, stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r, auditLog
}
