package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
	"github.com/docuflow/ingest-api/internal/mocks"
)

// recordingDispatcher captures dispatched ingestions in order.
type recordingDispatcher struct {
	dispatched []*model.Ingestion
}

func (d *recordingDispatcher) Dispatch(ing *model.Ingestion) {
	d.dispatched = append(d.dispatched, ing)
}

func failedJob(id string, retries, maxRetries int) *model.Ingestion {
	msg := "Ingestion failed: Source unavailable"
	return &model.Ingestion{
		ID:          id,
		OwnerID:     "owner-1",
		Source:      "src",
		Destination: "dest",
		Status:      model.IngestionStatusFailed,
		LastError:   &msg,
		Retries:     retries,
		MaxRetries:  maxRetries,
	}
}

func newRetrierFixture(t *testing.T, repo *mocks.MockIngestionRepository) (*RetrierService, *recordingDispatcher, *[]time.Duration) {
	t.Helper()
	dispatcher := &recordingDispatcher{}
	var sleeps []time.Duration

	svc, err := NewRetrierService(RetrierServiceOptions{
		Repo:       repo,
		Dispatcher: dispatcher,
		Config:     RetrierConfig{BatchLimit: 100, Pacing: time.Second},
		sleep: func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	})
	require.NoError(t, err)
	return svc, dispatcher, &sleeps
}

func TestRetrierService_RequiredDependencies(t *testing.T) {
	_, err := NewRetrierService(RetrierServiceOptions{})
	require.Error(t, err)
}

func TestRetrierService_Sweep_SkipsJobsAtCeiling(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIngestionRepository(ctrl)
	svc, dispatcher, sleeps := newRetrierFixture(t, repo)

	eligible := failedJob("eligible", 2, 3)
	ineligible := failedJob("ineligible", 3, 3)
	repo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.IngestionListOptions) ([]*model.Ingestion, error) {
			require.NotNil(t, opts.Status)
			assert.Equal(t, model.IngestionStatusFailed, *opts.Status)
			return []*model.Ingestion{eligible, ineligible}, nil
		})

	resubmitted := failedJob("eligible", 3, 3)
	resubmitted.Status = model.IngestionStatusPending
	resubmitted.LastError = nil
	repo.EXPECT().Resubmit(gomock.Any(), "eligible").Return(resubmitted, nil)

	n, err := svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, "eligible", dispatcher.dispatched[0].ID)
	assert.Empty(t, *sleeps)
}

func TestRetrierService_Sweep_PacesBetweenDispatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIngestionRepository(ctrl)
	svc, dispatcher, sleeps := newRetrierFixture(t, repo)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).
		Return([]*model.Ingestion{failedJob("a", 0, 3), failedJob("b", 1, 3)}, nil)
	repo.EXPECT().Resubmit(gomock.Any(), "a").Return(failedJob("a", 1, 3), nil)
	repo.EXPECT().Resubmit(gomock.Any(), "b").Return(failedJob("b", 2, 3), nil)

	n, err := svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, dispatcher.dispatched, 2)
	assert.Equal(t, []time.Duration{time.Second}, *sleeps)
}

func TestRetrierService_Sweep_IsolatesPerJobFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIngestionRepository(ctrl)
	svc, dispatcher, _ := newRetrierFixture(t, repo)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).
		Return([]*model.Ingestion{failedJob("a", 0, 3), failedJob("b", 0, 3)}, nil)
	// "a" was retried manually between listing and resubmission.
	repo.EXPECT().Resubmit(gomock.Any(), "a").
		Return(nil, apperrors.NotFound("ingestion a is not in a resubmittable state"))
	repo.EXPECT().Resubmit(gomock.Any(), "b").Return(failedJob("b", 1, 3), nil)

	n, err := svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, dispatcher.dispatched, 1)
	assert.Equal(t, "b", dispatcher.dispatched[0].ID)
}

func TestRetrierService_Sweep_EmptyIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIngestionRepository(ctrl)
	svc, dispatcher, sleeps := newRetrierFixture(t, repo)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)

	n, err := svc.Sweep(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, dispatcher.dispatched)
	assert.Empty(t, *sleeps)
}

func TestRetrierService_Sweep_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIngestionRepository(ctrl)
	svc, _, _ := newRetrierFixture(t, repo)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := svc.Sweep(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list failed ingestions")
}
