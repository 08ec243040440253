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
	optionsvc "comphub/internal/option/service"
	optionmem "comphub/internal/option/store/memory"
	"comphub/internal/platform/middleware"
	"comphub/pkg/testutil"
)

const bearerToken = "option-test-token"

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

type renewalBody struct {
	ID                string   `json:"id"`
	Kind              string   `json:"kind"`
	OptionNumber      int      `json:"option_number"`
	RenewalTermMonths *int64   `json:"renewal_term_months"`
	RateBasis         *string  `json:"rate_basis"`
	PctOfFMV          *float64 `json:"pct_of_fmv"`
}

func TestOptionsRequireBearerToken(t *testing.T) {
	router := newOptionRouter(t)
	req := testutil.NewRequest(t, http.MethodGet, "/lease-comps/"+uuid.New().String()+"/options")
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAddEditAndRemoveRenewalOptionViaHandlers(t *testing.T) {
	router := newOptionRouter(t)
	compID := uuid.New().String()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/lease-comps/"+compID+"/options/renewal", map[string]any{
		"renewal_term_months": 60,
		"rate_basis":          "pct_fmv",
		"pct_of_fmv":          95.0,
	})
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 adding renewal option, got %d: %s", rec.Code, rec.Body.String())
	}
	created := testutil.UnmarshalResponse[renewalBody](t, rec)
	if created.Kind != "renewal" || created.OptionNumber != 1 {
		t.Fatalf("expected first renewal option, got %+v", created)
	}
	if created.RenewalTermMonths == nil || *created.RenewalTermMonths != 60 {
		t.Fatalf("expected 60-month term, got %+v", created.RenewalTermMonths)
	}

	editReq := testutil.NewJSONRequest(t, http.MethodPut,
		"/lease-comps/"+compID+"/options/renewal/"+created.ID, map[string]any{
			"renewal_term_months": 36,
			"rate_basis":          "fmv",
		})
	editReq.Header.Set("Authorization", "Bearer "+bearerToken)
	editRec := testutil.DoRequest(router, editReq)
	if editRec.Code != http.StatusOK {
		t.Fatalf("expected 200 editing option, got %d: %s", editRec.Code, editRec.Body.String())
	}
	edited := testutil.UnmarshalResponse[renewalBody](t, editRec)
	if edited.RenewalTermMonths == nil || *edited.RenewalTermMonths != 36 {
		t.Fatalf("expected edited term of 36 months, got %+v", edited.RenewalTermMonths)
	}
	if edited.OptionNumber != 1 {
		t.Fatalf("expected option number to survive the edit, got %d", edited.OptionNumber)
	}

	listReq := testutil.NewRequest(t, http.MethodGet, "/lease-comps/"+compID+"/options")
	listReq.Header.Set("Authorization", "Bearer "+bearerToken)
	listRec := testutil.DoRequest(router, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing options, got %d", listRec.Code)
	}
	list := testutil.UnmarshalResponse[struct {
		Renewal     []renewalBody `json:"renewal"`
		Termination []renewalBody `json:"termination"`
	}](t, listRec)
	if len(list.Renewal) != 1 || len(list.Termination) != 0 {
		t.Fatalf("expected one renewal option and nothing else, got %+v", list)
	}

	removeReq := testutil.NewRequest(t, http.MethodDelete, "/lease-comps/"+compID+"/options/renewal/"+created.ID)
	removeReq.Header.Set("Authorization", "Bearer "+bearerToken)
	removeRec := testutil.DoRequest(router, removeReq)
	if removeRec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 removing option, got %d", removeRec.Code)
	}
}

func TestAddOptionRejectsUnknownKind(t *testing.T) {
	router := newOptionRouter(t)

	req := testutil.NewJSONRequest(t, http.MethodPost,
		"/lease-comps/"+uuid.New().String()+"/options/sublease", map[string]any{})
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown option kind, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRemoveUnknownOptionIsNotFound(t *testing.T) {
	router := newOptionRouter(t)

	path := "/lease-comps/" + uuid.New().String() + "/options/renewal/" + uuid.New().String()
	req := testutil.NewRequest(t, http.MethodDelete, path)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	rec := testutil.DoRequest(router, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown option, got %d", rec.Code)
	}
}

func newOptionRouter(t *testing.T) http.Handler {
	t.Helper()
	options := optionmem.New()
	auditLog := history.NewLogger(historymem.New())
	svc := optionsvc.New(options, auditLog)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger, nil, stubValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}
