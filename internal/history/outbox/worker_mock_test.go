package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"comphub/internal/history"
	"comphub/internal/history/outbox/mocks"
	id "comphub/pkg/domain"
)

// These tests pin down the exact call sequence of a drain pass: a publish
// failure must stop the batch mid-row, and only rows handed to the broker
// before the failure may be marked published.
func TestDrainStopsAtFirstPublishFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	rows := []history.OutboxRow{
		{ID: 1, EventID: id.NewEventID()},
		{ID: 2, EventID: id.NewEventID()},
		{ID: 3, EventID: id.NewEventID()},
	}
	source.EXPECT().FetchUnpublished(gomock.Any(), defaultBatchSize).Return(rows, nil)
	publisher.EXPECT().Publish(gomock.Any(), rows[0]).Return(nil)
	publisher.EXPECT().Publish(gomock.Any(), rows[1]).Return(errors.New("broker unreachable"))
	// Row 3 is never attempted; only row 1 is stamped.
	source.EXPECT().MarkPublished(gomock.Any(), []int64{1}, gomock.Any()).Return(nil)

	w := NewWorker(source, publisher, time.Minute)
	require.NoError(t, w.drain(context.Background()))
}

func TestDrainFetchFailureSkipsPublishing(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	source.EXPECT().FetchUnpublished(gomock.Any(), defaultBatchSize).Return(nil, errors.New("connection refused"))

	w := NewWorker(source, publisher, time.Minute)
	require.Error(t, w.drain(context.Background()))
}

func TestDrainWithNoRowsMarksNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	source.EXPECT().FetchUnpublished(gomock.Any(), defaultBatchSize).Return(nil, nil)

	w := NewWorker(source, publisher, time.Minute)
	require.NoError(t, w.drain(context.Background()))
}

func TestDrainFirstRowFailureLeavesBatchPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)
	publisher := mocks.NewMockPublisher(ctrl)

	rows := []history.OutboxRow{{ID: 7, EventID: id.NewEventID()}}
	source.EXPECT().FetchUnpublished(gomock.Any(), defaultBatchSize).Return(rows, nil)
	publisher.EXPECT().Publish(gomock.Any(), rows[0]).Return(errors.New("broker unreachable"))
	// MarkPublished must not be called when nothing went out.

	w := NewWorker(source, publisher, time.Minute)
	require.NoError(t, w.drain(context.Background()))
}
