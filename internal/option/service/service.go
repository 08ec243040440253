// Package service implements lease option mutations and their audit flow.
//
// Additions and edits log only when the save changed something; a removal is
// always logged. The removal snapshot is captured before the delete, so the
// audit entry keeps the terms the option had even though the row is gone.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"comphub/internal/history"
	"comphub/internal/option/models"
	"comphub/internal/platform/metrics"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

// Store defines option persistence across the four per-kind tables.
type Store interface {
	Insert(ctx context.Context, opt models.Option) error
	Update(ctx context.Context, opt models.Option) error
	GetByID(ctx context.Context, teamID id.TeamID, kind models.Kind, optionID id.OptionID) (models.Option, error)
	ListByComp(ctx context.Context, teamID id.TeamID, compID id.CompID) ([]models.Option, error)
	Delete(ctx context.Context, teamID id.TeamID, kind models.Kind, optionID id.OptionID) error
	NextNumber(ctx context.Context, teamID id.TeamID, compID id.CompID, kind models.Kind) (int, error)
}

// Auditor records history events. Satisfied by *history.Logger.
type Auditor interface {
	LogEvent(ctx context.Context, entry history.Entry) error
}

// Service orchestrates option mutations.
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

// New creates an option Service.
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

// Input builds one option variant from raw request values.
type Input interface {
	Kind() models.Kind
	build() (models.Option, error)
}

// Add inserts a new option for the comp and logs an option_added event
// carrying one diff per populated field. A save that populates nothing is
// stored but not logged.
func (s *Service) Add(ctx context.Context, compID id.CompID, input Input) (models.Option, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if compID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}

	opt, err := input.build()
	if err != nil {
		return nil, err
	}

	number, err := s.store.NextNumber(ctx, teamID, compID, input.Kind())
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to number the option")
	}

	now := requestcontext.Now(ctx)
	meta := opt.OptionMeta()
	meta.ID = id.NewOptionID()
	meta.CompID = compID
	meta.TeamID = teamID
	meta.Number = number
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.CreatedBy = &actor
	meta.UpdatedBy = &actor

	if err := s.store.Insert(ctx, opt); err != nil {
		return nil, s.translateStoreErr(err, "failed to save option")
	}

	diffs := history.ComputeDiffs(history.Snapshot{}, opt.Snapshot(), opt.Schema())
	if len(diffs) > 0 {
		entry := history.Entry{
			CompID:      compID,
			TeamID:      teamID,
			Type:        history.EventOptionAdded,
			Summary:     fmt.Sprintf("%s option #%d added", opt.Kind().Label(), number),
			ActorUserID: actor,
			Diffs:       diffs,
		}
		if err := s.logBlocking(ctx, entry); err != nil {
			return opt, err
		}
	}
	return opt, nil
}

// Edit replaces an option's fields and logs an option_edited event for the
// changed ones. Identity fields and the option number never change. A save
// that changes nothing logs nothing.
func (s *Service) Edit(ctx context.Context, compID id.CompID, optionID id.OptionID, input Input) (models.Option, error) {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if compID.IsNil() || optionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id and option id are required")
	}

	existing, err := s.store.GetByID(ctx, teamID, input.Kind(), optionID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to load option")
	}
	if existing.OptionMeta().CompID != compID {
		return nil, dErrors.New(dErrors.CodeNotFound, "option not found")
	}
	before := existing.Snapshot()

	opt, err := input.build()
	if err != nil {
		return nil, err
	}
	meta := opt.OptionMeta()
	*meta = *existing.OptionMeta()
	meta.UpdatedAt = requestcontext.Now(ctx)
	meta.UpdatedBy = &actor

	if err := s.store.Update(ctx, opt); err != nil {
		return nil, s.translateStoreErr(err, "failed to save option")
	}

	diffs := history.ComputeDiffs(before, opt.Snapshot(), opt.Schema())
	if len(diffs) == 0 {
		return opt, nil
	}
	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventOptionEdited,
		Summary:     fmt.Sprintf("%s option #%d edited", opt.Kind().Label(), meta.Number),
		ActorUserID: actor,
		Diffs:       diffs,
	}
	if err := s.logBlocking(ctx, entry); err != nil {
		return opt, err
	}
	return opt, nil
}

// Remove deletes an option. The snapshot is taken first and the option_removed
// event records every populated field going to nil, so the history keeps the
// terms the option had when it died.
func (s *Service) Remove(ctx context.Context, compID id.CompID, kind models.Kind, optionID id.OptionID) error {
	actor, teamID, err := callerIdentity(ctx)
	if err != nil {
		return err
	}
	if compID.IsNil() || optionID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "comp id and option id are required")
	}

	opt, err := s.store.GetByID(ctx, teamID, kind, optionID)
	if err != nil {
		return s.translateStoreErr(err, "failed to load option")
	}
	meta := opt.OptionMeta()
	if meta.CompID != compID {
		return dErrors.New(dErrors.CodeNotFound, "option not found")
	}
	before := opt.Snapshot()

	if err := s.store.Delete(ctx, teamID, kind, optionID); err != nil {
		return s.translateStoreErr(err, "failed to remove option")
	}

	entry := history.Entry{
		CompID:      compID,
		TeamID:      teamID,
		Type:        history.EventOptionRemoved,
		Summary:     fmt.Sprintf("%s option #%d removed", kind.Label(), meta.Number),
		ActorUserID: actor,
		Diffs:       history.ComputeDiffs(before, history.Snapshot{}, models.RemovalSchema(opt)),
	}
	return s.logBlocking(ctx, entry)
}

// ListOptions returns every option on the comp, all kinds together.
func (s *Service) ListOptions(ctx context.Context, compID id.CompID) ([]models.Option, error) {
	_, teamID, err := callerIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if compID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "comp id is required")
	}
	opts, err := s.store.ListByComp(ctx, teamID, compID)
	if err != nil {
		return nil, s.translateStoreErr(err, "failed to list options")
	}
	return opts, nil
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
		return dErrors.New(dErrors.CodeNotFound, "option not found")
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
