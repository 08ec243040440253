//go:build integration

package postgres_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"comphub/internal/history"
	"comphub/internal/history/store/postgres"
	id "comphub/pkg/domain"
	"comphub/pkg/testutil/containers"
)

type HistoryStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store

	teamID id.TeamID
	userID id.UserID
	compID id.CompID
}

func TestHistoryStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(HistoryStoreSuite))
}

func (s *HistoryStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
}

func (s *HistoryStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "lease_comp_events", "lease_comp_event_diffs", "history_outbox")
	s.Require().NoError(err)
	s.teamID = id.TeamID(uuid.New())
	s.userID = id.UserID(uuid.New())
	s.compID = id.NewCompID()
}

func (s *HistoryStoreSuite) newEvent(eventType history.EventType, summary string, at time.Time, diffs ...history.Diff) history.Event {
	event := history.Event{
		ID:          id.NewEventID(),
		CompID:      s.compID,
		TeamID:      s.teamID,
		Type:        eventType,
		Summary:     summary,
		ActorUserID: s.userID,
		CreatedAt:   at,
	}
	for _, d := range diffs {
		d.EventID = event.ID
		event.Diffs = append(event.Diffs, d)
	}
	return event
}

func (s *HistoryStoreSuite) TestAppendAndListRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	before := "pending"
	after := "signed"
	event := s.newEvent(history.EventFieldsEdited, "Lease details updated", now,
		history.Diff{FieldLabel: "Lease Status", OldValue: &before, NewValue: &after},
		history.Diff{FieldLabel: "Rent PSF", OldValue: nil, NewValue: &after},
	)
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByComp(ctx, s.teamID, s.compID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	got := events[0]
	s.Equal(event.ID, got.ID)
	s.Equal(history.EventFieldsEdited, got.Type)
	s.Equal("Lease details updated", got.Summary)
	s.Equal(s.userID, got.ActorUserID)
	s.Require().Len(got.Diffs, 2)
	s.Equal("Lease Status", got.Diffs[0].FieldLabel)
	s.Require().NotNil(got.Diffs[0].OldValue)
	s.Equal("pending", *got.Diffs[0].OldValue)
	s.Require().NotNil(got.Diffs[0].NewValue)
	s.Equal("signed", *got.Diffs[0].NewValue)
	s.Nil(got.Diffs[1].OldValue)
}

func (s *HistoryStoreSuite) TestListOrdersNewestFirst() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	older := s.newEvent(history.EventCompCreated, "Comp created", base.Add(-time.Hour))
	newer := s.newEvent(history.EventStatusChanged, "Status changed to active", base)
	s.Require().NoError(s.store.Append(ctx, older))
	s.Require().NoError(s.store.Append(ctx, newer))

	events, err := s.store.ListByComp(ctx, s.teamID, s.compID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(newer.ID, events[0].ID)
	s.Equal(older.ID, events[1].ID)
}

func (s *HistoryStoreSuite) TestListIsScopedToTeam() {
	ctx := context.Background()
	event := s.newEvent(history.EventCompCreated, "Comp created", time.Now().UTC())
	s.Require().NoError(s.store.Append(ctx, event))

	events, err := s.store.ListByComp(ctx, id.TeamID(uuid.New()), s.compID)
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *HistoryStoreSuite) TestAppendStagesOutboxRow() {
	ctx := context.Background()
	before := "pending"
	after := "signed"
	event := s.newEvent(history.EventFieldsEdited, "Lease details updated", time.Now().UTC().Truncate(time.Microsecond),
		history.Diff{FieldLabel: "Lease Status", OldValue: &before, NewValue: &after},
	)
	s.Require().NoError(s.store.Append(ctx, event))

	rows, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(event.ID, rows[0].EventID)

	var payload struct {
		EventID   string `json:"event_id"`
		CompID    string `json:"comp_id"`
		TeamID    string `json:"team_id"`
		EventType string `json:"event_type"`
		DiffCount int    `json:"diff_count"`
	}
	s.Require().NoError(json.Unmarshal(rows[0].Payload, &payload))
	s.Equal(event.ID.String(), payload.EventID)
	s.Equal(s.compID.String(), payload.CompID)
	s.Equal(s.teamID.String(), payload.TeamID)
	s.Equal("fields_edited", payload.EventType)
	s.Equal(1, payload.DiffCount)
}

func (s *HistoryStoreSuite) TestMarkPublishedRemovesRowsFromFetch() {
	ctx := context.Background()
	first := s.newEvent(history.EventCompCreated, "Comp created", time.Now().UTC().Add(-time.Minute))
	second := s.newEvent(history.EventTaskCreated, `Task created: "Verify rent"`, time.Now().UTC())
	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))

	rows, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(rows, 2)

	err = s.store.MarkPublished(ctx, []int64{rows[0].ID}, time.Now().UTC())
	s.Require().NoError(err)

	remaining, err := s.store.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(remaining, 1)
	s.Equal(rows[1].ID, remaining[0].ID)
}

func (s *HistoryStoreSuite) TestFetchUnpublishedHonorsLimit() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		event := s.newEvent(history.EventFieldsEdited, "Lease details updated", time.Now().UTC().Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Append(ctx, event))
	}

	rows, err := s.store.FetchUnpublished(ctx, 2)
	s.Require().NoError(err)
	s.Len(rows, 2)
}
