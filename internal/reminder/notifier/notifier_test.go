package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"comphub/internal/reminder/models"
	remindermem "comphub/internal/reminder/store/memory"
	id "comphub/pkg/domain"
)

type fakeLocker struct {
	held map[string]bool
	err  error
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) SetNX(ctx context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if l.err != nil {
		return redis.NewBoolResult(false, l.err)
	}
	if l.held[key] {
		return redis.NewBoolResult(false, nil)
	}
	l.held[key] = true
	return redis.NewBoolResult(true, nil)
}

type captureSink struct {
	delivered []models.Reminder
	err       error
}

func (s *captureSink) Notify(_ context.Context, reminder models.Reminder) error {
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, reminder)
	return nil
}

type NotifierSuite struct {
	suite.Suite
	store  *remindermem.Store
	locker *fakeLocker
	sink   *captureSink
	teamID id.TeamID
	compID id.CompID
	userID id.UserID
}

func TestNotifierSuite(t *testing.T) {
	suite.Run(t, new(NotifierSuite))
}

func (s *NotifierSuite) SetupTest() {
	s.store = remindermem.New()
	s.locker = newFakeLocker()
	s.sink = &captureSink{}
	s.teamID = id.TeamID(uuid.New())
	s.compID = id.NewCompID()
	s.userID = id.UserID(uuid.New())
}

func (s *NotifierSuite) notifier() *Notifier {
	return New(s.store, s.locker, time.Minute, WithSink(s.sink))
}

func (s *NotifierSuite) seed(title string, remindAt time.Time) models.Reminder {
	now := time.Now().UTC()
	reminder := models.Reminder{
		ID:         id.NewReminderID(),
		CompID:     s.compID,
		TeamID:     s.teamID,
		Title:      title,
		AssignedTo: s.userID,
		RemindAt:   remindAt,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  s.userID,
		UpdatedBy:  s.userID,
	}
	s.Require().NoError(s.store.Insert(context.Background(), reminder))
	return reminder
}

func (s *NotifierSuite) TestScanDeliversDueRemindersOnce() {
	due := s.seed("Send renewal notice", time.Now().UTC().Add(-time.Hour))

	s.Require().NoError(s.notifier().scan(context.Background()))

	s.Require().Len(s.sink.delivered, 1)
	s.Equal(due.ID, s.sink.delivered[0].ID)
	s.Equal("Send renewal notice", s.sink.delivered[0].Title)

	// The flag is set, so a second sweep finds nothing.
	s.Require().NoError(s.notifier().scan(context.Background()))
	s.Len(s.sink.delivered, 1)
}

func (s *NotifierSuite) TestScanSkipsFutureReminders() {
	s.seed("Inspect premises", time.Now().UTC().Add(48*time.Hour))

	s.Require().NoError(s.notifier().scan(context.Background()))

	s.Empty(s.sink.delivered)
}

func (s *NotifierSuite) TestScanSkipsCompletedReminders() {
	reminder := s.seed("Chase estoppel", time.Now().UTC().Add(-time.Hour))
	done := time.Now().UTC()
	reminder.CompletedAt = &done
	s.Require().NoError(s.store.Update(context.Background(), reminder))

	s.Require().NoError(s.notifier().scan(context.Background()))

	s.Empty(s.sink.delivered)
}

func (s *NotifierSuite) TestScanSkipsLockedReminders() {
	reminder := s.seed("Confirm TI draw", time.Now().UTC().Add(-time.Hour))
	s.locker.held["reminder:notify:"+reminder.ID.String()] = true

	s.Require().NoError(s.notifier().scan(context.Background()))

	s.Empty(s.sink.delivered)

	// Still due: another instance holds the lock and will mark it.
	due, err := s.store.ListDue(context.Background(), time.Now().UTC(), 10)
	s.Require().NoError(err)
	s.Len(due, 1)
}

func (s *NotifierSuite) TestLockErrorLeavesReminderDue() {
	s.seed("Verify CAM reconciliation", time.Now().UTC().Add(-time.Hour))
	s.locker.err = errors.New("redis: connection refused")

	s.Require().NoError(s.notifier().scan(context.Background()))

	s.Empty(s.sink.delivered)
	due, err := s.store.ListDue(context.Background(), time.Now().UTC(), 10)
	s.Require().NoError(err)
	s.Len(due, 1)
}

func (s *NotifierSuite) TestDeliveryFailureDoesNotMarkNotified() {
	s.seed("Countersign amendment", time.Now().UTC().Add(-time.Hour))
	s.sink.err = errors.New("sink unavailable")

	s.Require().NoError(s.notifier().scan(context.Background()))

	due, err := s.store.ListDue(context.Background(), time.Now().UTC(), 10)
	s.Require().NoError(err)
	s.Len(due, 1)
}

func (s *NotifierSuite) TestNilLockerDelivers() {
	s.seed("Order title search", time.Now().UTC().Add(-time.Hour))
	n := New(s.store, nil, time.Minute, WithSink(s.sink))

	s.Require().NoError(n.scan(context.Background()))

	s.Len(s.sink.delivered, 1)
}

func (s *NotifierSuite) TestBatchSizeLimitsSweep() {
	for i := 0; i < 3; i++ {
		s.seed("Batch reminder", time.Now().UTC().Add(-time.Hour))
	}
	n := New(s.store, s.locker, time.Minute, WithSink(s.sink), WithBatchSize(2))

	s.Require().NoError(n.scan(context.Background()))
	s.Len(s.sink.delivered, 2)

	s.Require().NoError(n.scan(context.Background()))
	s.Len(s.sink.delivered, 3)
}
