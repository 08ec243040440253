package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comphub/internal/history"
	id "comphub/pkg/domain"
)

type fakeSource struct {
	rows      []history.OutboxRow
	published []int64
}

func (f *fakeSource) FetchUnpublished(_ context.Context, limit int) ([]history.OutboxRow, error) {
	if limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeSource) MarkPublished(_ context.Context, rowIDs []int64, _ time.Time) error {
	f.published = append(f.published, rowIDs...)
	return nil
}

type fakePublisher struct {
	failOn    map[int64]error
	delivered []int64
}

func (f *fakePublisher) Publish(_ context.Context, row history.OutboxRow) error {
	if err := f.failOn[row.ID]; err != nil {
		return err
	}
	f.delivered = append(f.delivered, row.ID)
	return nil
}

func row(rowID int64) history.OutboxRow {
	return history.OutboxRow{
		ID:        rowID,
		EventID:   id.EventID(uuid.New()),
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}
}

func TestWorkerDrain(t *testing.T) {
	t.Run("publishes pending rows in order and marks them", func(t *testing.T) {
		source := &fakeSource{rows: []history.OutboxRow{row(1), row(2), row(3)}}
		publisher := &fakePublisher{}
		w := NewWorker(source, publisher, time.Second)

		require.NoError(t, w.drain(context.Background()))
		assert.Equal(t, []int64{1, 2, 3}, publisher.delivered)
		assert.Equal(t, []int64{1, 2, 3}, source.published)
	})

	t.Run("stops at first failure keeping later rows pending", func(t *testing.T) {
		source := &fakeSource{rows: []history.OutboxRow{row(1), row(2), row(3)}}
		publisher := &fakePublisher{failOn: map[int64]error{2: errors.New("broker down")}}
		w := NewWorker(source, publisher, time.Second)

		require.NoError(t, w.drain(context.Background()))
		assert.Equal(t, []int64{1}, publisher.delivered)
		assert.Equal(t, []int64{1}, source.published)
	})

	t.Run("empty outbox is a no-op", func(t *testing.T) {
		source := &fakeSource{}
		publisher := &fakePublisher{}
		w := NewWorker(source, publisher, time.Second)

		require.NoError(t, w.drain(context.Background()))
		assert.Empty(t, publisher.delivered)
		assert.Empty(t, source.published)
	})

	t.Run("respects batch size", func(t *testing.T) {
		source := &fakeSource{rows: []history.OutboxRow{row(1), row(2), row(3)}}
		publisher := &fakePublisher{}
		w := NewWorker(source, publisher, time.Second, WithBatchSize(2))

		require.NoError(t, w.drain(context.Background()))
		assert.Equal(t, []int64{1, 2}, publisher.delivered)
	})
}
