// Package service implements comp mutations and their audit flow.
//
// Every mutation follows the same order: load, snapshot, write, diff, log.
// The domain write always commits before the audit write, so on a logging
// failure the caller sees an error over a mutation that stands. Only comp
// creation treats the audit write as best-effort.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"comphub/internal/comp/models"
	"comphub/internal/history"
	"comphub/internal/platform/metrics"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

// Store defines comp persistence operations.
type Store interface {
	Insert(ctx context.Context, comp models.LeaseComp) error
	Update(ctx context.Context, comp models.LeaseComp) error
	GetByID(ctx context.Context, teamID id.TeamID, compID id.CompID) (models.LeaseComp, error)
	List(ctx context.Context, teamID id.TeamID) ([]models.LeaseComp, error)
}

// Auditor records history events. Satisfied by *history.Logger.
type Auditor interface {
	LogEvent(ctx context.Context, entry history.Entry) error
}

// Service orchestrates comp mutations.
type Service struct {
	store   Store
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

// New creates a comp Service.
func New(store Store, auditor Auditor, opts ...Option) *Service {
	s := &Service{
		store:   store,
		auditor: auditor,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompDetail is a comp plus its derived completeness gaps.
type CompDetail struct {
	models.LeaseComp
	IncompleteReasons []models.Reason
}

// CreateCompInput creates a draft comp against an existing building.
type CreateCompInput struct {
	BuildingID      id.BuildingID
	BuildingAddress string
	TenantName      string
}

// CreateComp inserts a draft comp and records comp_created. The audit write
// is best-effort here and only here: a brand-new comp with a missed creation
// event is preferable to a failed creation, and the gap is visible in logs
// and metrics.
func (s *Service) CreateComp(ctx context.Context, input CreateCompInput) (models.LeaseComp, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return models.LeaseComp{}, err
	}
	if input.BuildingID.IsNil() {
		return models.LeaseComp{}, dErrors.New(dErrors.CodeInvalidInput, "building id is required")
	}

	now := requestcontext.Now(ctx)
	comp := models.LeaseComp{
		ID:                  id.NewCompID(),
		TeamID:              teamID,
		BuildingID:          input.BuildingID,
		Status:              models.CompStatusDraft,
		InternalAccessLevel: models.AccessAllTeam,
		ExportDetailLevel:   models.ExportAllVisible,
		CreatedAt:           now,
		UpdatedAt:           now,
		CreatedBy:           actor,
		UpdatedBy:           actor,
	}
	if tenant := strings.TrimSpace(input.TenantName); tenant != "" {
		normalized := strings.ToLower(tenant)
		comp.TenantNameRaw = &tenant
		comp.TenantNameNormalized = &normalized
	}

	if err := s.store.Insert(ctx, comp); err != nil {
		return models.LeaseComp{}, s.translateStoreErr(err, "failed to create comp")
	}

	if err := s.auditor.LogEvent(ctx, history.Entry{
		CompID:      comp.ID,
		TeamID:      teamID,
		Type:        history.EventCompCreated,
		Summary:     createSummary(input),
		ActorUserID: actor,
	}); err != nil {
		s.metrics.IncAuditLogFailure("best_effort")
		s.logger.ErrorContext(ctx, "comp_created event not recorded",
			"comp_id", comp.ID.String(),
			"error", err.Error(),
		)
	}
	return comp, nil
}

func createSummary(input CreateCompInput) string {
	tenant := strings.TrimSpace(input.TenantName)
	address := strings.TrimSpace(input.BuildingAddress)
	switch {
	case tenant != "" && address != "":
		return fmt.Sprintf("Comp created for %q at %s", tenant, address)
	case tenant != "":
		return fmt.Sprintf("Comp created for %q", tenant)
	case address != "":
		return "Comp created at " + address
	default:
		return "Comp created"
	}
}

// GetComp returns the comp with completeness derived on the fly.
func (s *Service) GetComp(ctx context.Context, compID id.CompID) (CompDetail, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return CompDetail{}, err
	}
	comp, err := s.store.GetByID(ctx, teamID, compID)
	if err != nil {
		return CompDetail{}, s.translateStoreErr(err, "failed to load comp")
	}
	return CompDetail{
		LeaseComp:         comp,
		IncompleteReasons: models.DeriveIncompleteReasons(comp),
	}, nil
}

// ListComps returns the team's comps.
func (s *Service) ListComps(ctx context.Context) ([]models.LeaseComp, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	comps, err := s.store.List(ctx, teamID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list comps")
	}
	return comps, nil
}

// logBlocking records an audit event whose failure must reach the caller.
// The mutation it describes has already committed; the error tells the user
// the save stood but the trail entry is missing.
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
		return dErrors.New(dErrors.CodeNotFound, "comp not found")
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

// valueOrDash renders one side of a diff for summary strings.
func valueOrDash(v *string) string {
	if v == nil {
		return "—"
	}
	return *v
}
