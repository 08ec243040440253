package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"comphub/internal/comp/models"
	"comphub/internal/comp/store/memory"
	"comphub/internal/history"
	historymem "comphub/internal/history/store/memory"
	id "comphub/pkg/domain"
	dErrors "comphub/pkg/domain-errors"
	"comphub/pkg/platform/sentinel"
	"comphub/pkg/requestcontext"
)

// auditRecorder wraps the history logger so tests can fail the audit write
// independently of the comp store.
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
	store      *memory.Store
	historySt  *historymem.Store
	auditor    *auditRecorder
	service    *Service
	actor      id.UserID
	teamID     id.TeamID
	buildingID id.BuildingID
	ctx        context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.historySt = historymem.New()
	s.auditor = &auditRecorder{logger: history.NewLogger(s.historySt)}
	s.service = New(s.store, s.auditor)

	s.actor = id.UserID(uuid.New())
	s.teamID = id.TeamID(uuid.New())
	s.buildingID = id.BuildingID(uuid.New())
	s.ctx = requestcontext.WithUserID(context.Background(), s.actor)
	s.ctx = requestcontext.WithTeamID(s.ctx, s.teamID)
}

func (s *ServiceSuite) createComp() models.LeaseComp {
	comp, err := s.service.CreateComp(s.ctx, CreateCompInput{
		BuildingID:      s.buildingID,
		BuildingAddress: "100 Industrial Way",
		TenantName:      "Acme Corp",
	})
	s.Require().NoError(err)
	return comp
}

func (s *ServiceSuite) eventsFor(compID id.CompID) []history.Event {
	events, err := s.historySt.ListByComp(s.ctx, s.teamID, compID)
	s.Require().NoError(err)
	return events
}

func strOf(s string) *string { return &s }
func intOf(n int64) *int64   { return &n }

// baselineDetails is an empty full-form save: every detail field nil, which
// matches a freshly created comp exactly.
func baselineDetails() UpdateLeaseDetailsInput {
	return UpdateLeaseDetailsInput{}
}

func (s *ServiceSuite) TestCreateCompLogsCreationEvent() {
	comp := s.createComp()

	s.Equal(models.CompStatusDraft, comp.Status)
	s.Equal("acme corp", *comp.TenantNameNormalized)

	events := s.eventsFor(comp.ID)
	s.Require().Len(events, 1)
	s.Equal(history.EventCompCreated, events[0].Type)
	s.Equal(`Comp created for "Acme Corp" at 100 Industrial Way`, events[0].Summary)
	s.Empty(events[0].Diffs)
}

func (s *ServiceSuite) TestCreateCompSucceedsWhenAuditFails() {
	s.auditor.failErr = sentinel.ErrUnavailable

	comp, err := s.service.CreateComp(s.ctx, CreateCompInput{BuildingID: s.buildingID})
	s.Require().NoError(err)

	stored, err := s.store.GetByID(s.ctx, s.teamID, comp.ID)
	s.Require().NoError(err)
	s.Equal(comp.ID, stored.ID)
	s.Empty(s.eventsFor(comp.ID))
}

func (s *ServiceSuite) TestCreateCompRequiresBuilding() {
	_, err := s.service.CreateComp(s.ctx, CreateCompInput{})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestUpdateDetailsLogsFieldsEdited() {
	comp := s.createComp()

	input := baselineDetails()
	input.LeaseSF = intOf(15000)
	input.RentPSFCents = intOf(1250)

	_, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.Require().NoError(err)

	events := s.eventsFor(comp.ID)
	s.Require().Len(events, 2) // comp_created + fields_edited
	edited := events[0]
	if edited.Type == history.EventCompCreated {
		edited = events[1]
	}
	s.Equal(history.EventFieldsEdited, edited.Type)
	s.Equal("Lease details updated", edited.Summary)
	s.Require().Len(edited.Diffs, 2)
	s.Equal("Lease SF", edited.Diffs[0].FieldLabel)
	s.Nil(edited.Diffs[0].OldValue)
	s.Equal(strOf("15000"), edited.Diffs[0].NewValue)
	s.Equal("Starting Rate", edited.Diffs[1].FieldLabel)
}

func (s *ServiceSuite) TestUpdateDetailsSplitsStatusChange() {
	comp := s.createComp()

	input := baselineDetails()
	input.LeaseStatus = strOf("signed")
	input.RentPSFCents = intOf(1250)

	_, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.Require().NoError(err)

	var statusEvent, editEvent *history.Event
	events := s.historySt.Events()
	for i := range events {
		switch events[i].Type {
		case history.EventStatusChanged:
			statusEvent = &events[i]
		case history.EventFieldsEdited:
			editEvent = &events[i]
		}
	}
	s.Require().NotNil(statusEvent)
	s.Require().NotNil(editEvent)

	s.Equal("Lease Status: — → signed", statusEvent.Summary)
	s.Require().Len(statusEvent.Diffs, 1)
	s.Equal("Lease Status", statusEvent.Diffs[0].FieldLabel)

	s.Require().Len(editEvent.Diffs, 1)
	s.Equal("Starting Rate", editEvent.Diffs[0].FieldLabel)
}

func (s *ServiceSuite) TestUpdateDetailsNoChangesLogsNothing() {
	comp := s.createComp()
	before := len(s.eventsFor(comp.ID))

	_, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, baselineDetails())
	s.Require().NoError(err)
	s.Len(s.eventsFor(comp.ID), before)
}

func (s *ServiceSuite) TestUpdateDetailsNormalizes() {
	comp := s.createComp()

	input := baselineDetails()
	input.LeaseTermMonths = intOf(5000)
	input.LeaseEndDate = strOf("2030-06-03")
	input.OfficePctLease = func() *float64 { v := 250.0; return &v }()

	updated, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.Require().NoError(err)
	s.Equal(int64(1200), *updated.LeaseTermMonths)
	s.Equal(id.Date("2030-06-30"), *updated.LeaseEndDate)
	s.Equal(100.0, *updated.OfficePctLease)
}

func (s *ServiceSuite) TestUpdateDetailsRejectsBadInput() {
	comp := s.createComp()

	input := baselineDetails()
	input.LeaseSF = intOf(-5)
	_, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	input = baselineDetails()
	input.LeaseStatus = strOf("maybe")
	_, err = s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestUpdateDetailsAuditFailureSurfacesButMutationStands() {
	comp := s.createComp()
	s.auditor.failErr = sentinel.ErrUnavailable

	input := baselineDetails()
	input.LeaseSF = intOf(9000)

	_, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	stored, getErr := s.store.GetByID(s.ctx, s.teamID, comp.ID)
	s.Require().NoError(getErr)
	s.Equal(int64(9000), *stored.LeaseSF)
}

func (s *ServiceSuite) TestUpdateDetailsPermissionDeniedIsForbidden() {
	comp := s.createComp()
	s.store.FailUpdateWith(sentinel.ErrPermissionDenied)

	input := baselineDetails()
	input.LeaseSF = intOf(9000)

	_, err := s.service.UpdateLeaseDetails(s.ctx, comp.ID, input)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestUpdateConfidentialitySplitsEvents() {
	comp := s.createComp()

	_, err := s.service.UpdateConfidentiality(s.ctx, comp.ID, UpdateConfidentialityInput{
		InternalAccessLevel: "just_me",
		ExportDetailLevel:   "hide_all",
	})
	s.Require().NoError(err)

	var confEvent, exportEvent *history.Event
	events := s.historySt.Events()
	for i := range events {
		switch events[i].Type {
		case history.EventConfidentialityChanged:
			confEvent = &events[i]
		case history.EventExportLevelChanged:
			exportEvent = &events[i]
		}
	}
	s.Require().NotNil(confEvent)
	s.Require().NotNil(exportEvent)
	s.Equal("Internal Access Level: all_team → just_me", confEvent.Summary)
	s.Equal("Export Detail Level: all_visible → hide_all", exportEvent.Summary)
	s.Len(confEvent.Diffs, 1)
	s.Len(exportEvent.Diffs, 1)
}

func (s *ServiceSuite) TestUpdateConfidentialityUnchangedLevelLogsOneEvent() {
	comp := s.createComp()

	_, err := s.service.UpdateConfidentiality(s.ctx, comp.ID, UpdateConfidentialityInput{
		InternalAccessLevel: "just_me",
		ExportDetailLevel:   "all_visible",
	})
	s.Require().NoError(err)

	var types []history.EventType
	for _, e := range s.historySt.Events() {
		types = append(types, e.Type)
	}
	s.Contains(types, history.EventConfidentialityChanged)
	s.NotContains(types, history.EventExportLevelChanged)
}

func (s *ServiceSuite) TestGetCompDerivesCompleteness() {
	comp := s.createComp()

	detail, err := s.service.GetComp(s.ctx, comp.ID)
	s.Require().NoError(err)
	s.Contains(detail.IncompleteReasons, models.ReasonMissingLeaseSF)
	s.NotContains(detail.IncompleteReasons, models.ReasonMissingTenant)
	s.NotContains(detail.IncompleteReasons, models.ReasonMissingBuilding)
}

func (s *ServiceSuite) TestGetCompOtherTeamIsNotFound() {
	comp := s.createComp()

	otherCtx := requestcontext.WithUserID(context.Background(), s.actor)
	otherCtx = requestcontext.WithTeamID(otherCtx, id.TeamID(uuid.New()))

	_, err := s.service.GetComp(otherCtx, comp.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
