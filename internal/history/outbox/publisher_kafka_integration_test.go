//go:build integration

package outbox_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"comphub/internal/history"
	"comphub/internal/history/outbox"
	id "comphub/pkg/domain"
	"comphub/pkg/testutil/containers"
)

func TestKafkaPublisherRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	const topic = "comp-history-events"

	publisher, err := outbox.NewKafkaPublisher(ctx, []string{broker.Broker}, topic)
	require.NoError(t, err)
	defer publisher.Close()

	// Creating the publisher again must tolerate the existing topic.
	again, err := outbox.NewKafkaPublisher(ctx, []string{broker.Broker}, topic)
	require.NoError(t, err)
	again.Close()

	eventID := id.NewEventID()
	row := history.OutboxRow{
		ID:      1,
		EventID: eventID,
		Payload: []byte(`{"event_type":"fields_edited"}`),
	}
	require.NoError(t, publisher.Publish(ctx, row))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, eventID.String(), string(records[0].Key))
	require.JSONEq(t, `{"event_type":"fields_edited"}`, string(records[0].Value))
}
