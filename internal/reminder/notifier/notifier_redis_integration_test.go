//go:build integration

package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"comphub/internal/reminder/models"
	remindermem "comphub/internal/reminder/store/memory"
	id "comphub/pkg/domain"
	"comphub/pkg/testutil/containers"
)

type RedisLockSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *remindermem.Store
	sink  *captureSink

	teamID id.TeamID
	compID id.CompID
	userID id.UserID
}

func TestRedisLockSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockSuite))
}

func (s *RedisLockSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisLockSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.FlushAll(ctx).Err())
	s.store = remindermem.New()
	s.sink = &captureSink{}
	s.teamID = id.TeamID(uuid.New())
	s.compID = id.NewCompID()
	s.userID = id.UserID(uuid.New())
}

func (s *RedisLockSuite) seedDue(title string) models.Reminder {
	now := time.Now().UTC()
	reminder := models.Reminder{
		ID:         id.NewReminderID(),
		CompID:     s.compID,
		TeamID:     s.teamID,
		Title:      title,
		AssignedTo: s.userID,
		RemindAt:   now.Add(-time.Hour),
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  s.userID,
		UpdatedBy:  s.userID,
	}
	s.Require().NoError(s.store.Insert(context.Background(), reminder))
	return reminder
}

func (s *RedisLockSuite) TestScanClaimsRedisLockBeforeDelivery() {
	ctx := context.Background()
	due := s.seedDue("Send renewal notice")

	n := New(s.store, s.redis.Client, time.Minute, WithSink(s.sink))
	s.Require().NoError(n.scan(ctx))

	s.Require().Len(s.sink.delivered, 1)
	s.Equal(due.ID, s.sink.delivered[0].ID)

	ttl, err := s.redis.Client.TTL(ctx, "reminder:notify:"+due.ID.String()).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisLockSuite) TestHeldLockSkipsReminder() {
	ctx := context.Background()
	due := s.seedDue("Send renewal notice")

	// Another instance already holds the lock for this reminder.
	s.Require().NoError(s.redis.Client.Set(ctx, "reminder:notify:"+due.ID.String(), 1, time.Minute).Err())

	n := New(s.store, s.redis.Client, time.Minute, WithSink(s.sink))
	s.Require().NoError(n.scan(ctx))

	s.Empty(s.sink.delivered)

	// Once the lock expires the reminder is still due and gets delivered.
	s.Require().NoError(s.redis.Client.Del(ctx, "reminder:notify:"+due.ID.String()).Err())
	s.Require().NoError(n.scan(ctx))
	s.Require().Len(s.sink.delivered, 1)
	s.Equal(due.ID, s.sink.delivered[0].ID)
}

func (s *RedisLockSuite) TestTwoNotifiersDeliverEachReminderOnce() {
	ctx := context.Background()
	s.seedDue("Send renewal notice")
	s.seedDue("Confirm TI payout")

	otherSink := &captureSink{}
	// Two notifiers over the same store and Redis, as in a two-replica deploy.
	// The memory store is shared, so without marking each scan would re-deliver;
	// the lock makes the pair deliver each reminder exactly once.
	a := New(s.store, s.redis.Client, time.Minute, WithSink(s.sink))
	b := New(s.store, s.redis.Client, time.Minute, WithSink(otherSink))

	s.Require().NoError(a.scan(ctx))
	s.Require().NoError(b.scan(ctx))

	total := len(s.sink.delivered) + len(otherSink.delivered)
	s.Equal(2, total)
}
