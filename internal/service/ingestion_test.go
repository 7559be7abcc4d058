package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/docuflow/ingest-api/internal/core"
	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
	"github.com/docuflow/ingest-api/internal/mocks"
)

func newIngestionFixture(t *testing.T) (*IngestionService, *mocks.MockIngestionRepository, *mocks.MockExecutor, *mocks.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIngestionRepository(ctrl)
	executor := mocks.NewMockExecutor(ctrl)
	users := mocks.NewMockUserRepository(ctrl)

	svc, err := NewIngestionService(IngestionServiceOptions{
		Repo:       repo,
		Executor:   executor,
		Principals: users,
		Config:     IngestionServiceConfig{ExecuteTimeout: 5 * time.Second},
	})
	require.NoError(t, err)
	return svc, repo, executor, users
}

func pendingIngestion(id, ownerID string) *model.Ingestion {
	return &model.Ingestion{
		ID:          id,
		OwnerID:     ownerID,
		Source:      "src",
		Destination: "dest",
		Metadata:    json.RawMessage(`{}`),
		Status:      model.IngestionStatusPending,
		MaxRetries:  3,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func expectUser(users *mocks.MockUserRepository, id string, role auth.Role) {
	users.EXPECT().GetByID(gomock.Any(), id).Return(&model.User{ID: id, Role: role}, nil)
}

func TestIngestionService_RequiredDependencies(t *testing.T) {
	_, err := NewIngestionService(IngestionServiceOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IngestionRepository")
}

func TestIngestionService_Trigger_CreatesPendingAndExecutes(t *testing.T) {
	svc, repo, executor, _ := newIngestionFixture(t)

	created := pendingIngestion("ing-1", "owner-1")
	resultData := json.RawMessage(`{"recordsProcessed":42,"processingTimeMs":1200}`)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateIngestionRequest) (*model.Ingestion, error) {
			assert.Equal(t, "owner-1", req.OwnerID)
			assert.Equal(t, "src", req.Source)
			return created, nil
		})
	repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil)
	executor.EXPECT().
		Execute(gomock.Any(), core.ExecuteRequest{Source: "src", Destination: "dest", Metadata: created.Metadata}).
		Return(&core.ExecutionResult{Success: true, Message: "Data ingestion completed successfully", Data: resultData}, nil)
	repo.EXPECT().MarkCompleted(gomock.Any(), "ing-1", resultData).Return(true, nil)

	ing, err := svc.Trigger(context.Background(), &model.CreateIngestionRequest{
		OwnerID:     "owner-1",
		Source:      "src",
		Destination: "dest",
	})
	require.NoError(t, err)
	assert.Equal(t, model.IngestionStatusPending, ing.Status)
	assert.Equal(t, 0, ing.Retries)
	assert.Nil(t, ing.LastError)

	svc.Wait()
}

func TestIngestionService_Trigger_ExecutorFailureRecordsError(t *testing.T) {
	svc, repo, executor, _ := newIngestionFixture(t)

	created := pendingIngestion("ing-1", "owner-1")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(created, nil)
	repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil)
	executor.EXPECT().
		Execute(gomock.Any(), gomock.Any()).
		Return(&core.ExecutionResult{Success: false, Message: "Ingestion failed: Connection timeout"}, nil)
	repo.EXPECT().MarkFailed(gomock.Any(), "ing-1", "Ingestion failed: Connection timeout").Return(true, nil)

	_, err := svc.Trigger(context.Background(), &model.CreateIngestionRequest{
		OwnerID: "owner-1", Source: "src", Destination: "dest",
	})
	require.NoError(t, err)

	svc.Wait()
}

func TestIngestionService_Trigger_TransportFaultTreatedAsFailure(t *testing.T) {
	svc, repo, executor, _ := newIngestionFixture(t)

	created := pendingIngestion("ing-1", "owner-1")
	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(created, nil)
	repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil)
	executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))
	repo.EXPECT().MarkFailed(gomock.Any(), "ing-1", "Unexpected error: connection refused").Return(true, nil)

	_, err := svc.Trigger(context.Background(), &model.CreateIngestionRequest{
		OwnerID: "owner-1", Source: "src", Destination: "dest",
	})
	require.NoError(t, err)

	svc.Wait()
}

func TestIngestionService_Dispatch_SkipsWhenNoLongerPending(t *testing.T) {
	svc, repo, _, _ := newIngestionFixture(t)

	// The executor must never be called when the pending guard fails.
	repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(false, nil)

	svc.Dispatch(pendingIngestion("ing-1", "owner-1"))
	svc.Wait()
}

func TestIngestionService_GetStatus(t *testing.T) {
	t.Run("owner can read own ingestion", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(pendingIngestion("ing-1", "owner-1"), nil)

		ing, err := svc.GetStatus(context.Background(), "ing-1", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, "ing-1", ing.ID)
	})

	t.Run("admin can read another owner's ingestion", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "admin-1", auth.RoleAdmin)
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(pendingIngestion("ing-1", "owner-1"), nil)

		_, err := svc.GetStatus(context.Background(), "ing-1", "admin-1")
		require.NoError(t, err)
	})

	t.Run("viewer reading another owner's ingestion is forbidden", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "viewer-2", auth.RoleViewer)
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(pendingIngestion("ing-1", "owner-1"), nil)

		_, err := svc.GetStatus(context.Background(), "ing-1", "viewer-2")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("unknown ingestion yields not found", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, apperrors.NotFound("ingestion not found"))

		_, err := svc.GetStatus(context.Background(), "nope", "owner-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unresolvable caller yields not found", func(t *testing.T) {
		svc, _, _, users := newIngestionFixture(t)
		users.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, apperrors.NotFound("user not found"))

		_, err := svc.GetStatus(context.Background(), "ing-1", "ghost")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestIngestionService_List(t *testing.T) {
	t.Run("admin sees all owners", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "admin-1", auth.RoleAdmin)
		repo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, opts model.IngestionListOptions) ([]*model.Ingestion, error) {
				assert.Nil(t, opts.OwnerID)
				return []*model.Ingestion{pendingIngestion("a", "owner-1"), pendingIngestion("b", "owner-2")}, nil
			})

		list, err := svc.List(context.Background(), "admin-1", ListParams{})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("non-admin sees only own", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleEditor)
		repo.EXPECT().
			List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, opts model.IngestionListOptions) ([]*model.Ingestion, error) {
				require.NotNil(t, opts.OwnerID)
				assert.Equal(t, "owner-1", *opts.OwnerID)
				return []*model.Ingestion{pendingIngestion("a", "owner-1")}, nil
			})

		list, err := svc.List(context.Background(), "owner-1", ListParams{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})
}

func TestIngestionService_Retry(t *testing.T) {
	failedIngestion := func(id, ownerID string, retries int) *model.Ingestion {
		ing := pendingIngestion(id, ownerID)
		ing.Status = model.IngestionStatusFailed
		ing.Retries = retries
		msg := "Ingestion failed: Connection timeout"
		ing.LastError = &msg
		return ing
	}

	t.Run("owner retries failed ingestion", func(t *testing.T) {
		svc, repo, executor, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(failedIngestion("ing-1", "owner-1", 0), nil)

		resubmitted := pendingIngestion("ing-1", "owner-1")
		resubmitted.Retries = 1
		repo.EXPECT().Resubmit(gomock.Any(), "ing-1").Return(resubmitted, nil)

		repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil)
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
			Return(&core.ExecutionResult{Success: true}, nil)
		repo.EXPECT().MarkCompleted(gomock.Any(), "ing-1", gomock.Any()).Return(true, nil)

		updated, err := svc.Retry(context.Background(), "ing-1", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, model.IngestionStatusPending, updated.Status)
		assert.Equal(t, 1, updated.Retries)
		assert.Nil(t, updated.LastError)

		svc.Wait()
	})

	t.Run("retry on non-failed status is forbidden and names the status", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		ing := pendingIngestion("ing-1", "owner-1")
		ing.Status = model.IngestionStatusCompleted
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(ing, nil)

		_, err := svc.Retry(context.Background(), "ing-1", "owner-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
		assert.Contains(t, err.Error(), "Cannot retry ingestion with status: completed")
	})

	t.Run("non-owner non-admin retry is forbidden", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "other", auth.RoleEditor)
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(failedIngestion("ing-1", "owner-1", 0), nil)

		_, err := svc.Retry(context.Background(), "ing-1", "other")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("manual retry ignores the retry ceiling", func(t *testing.T) {
		svc, repo, executor, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		// retries == max_retries: the sweep would skip this, manual retry does not.
		repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(failedIngestion("ing-1", "owner-1", 3), nil)

		resubmitted := pendingIngestion("ing-1", "owner-1")
		resubmitted.Retries = 4
		repo.EXPECT().Resubmit(gomock.Any(), "ing-1").Return(resubmitted, nil)

		repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil)
		executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
			Return(&core.ExecutionResult{Success: false, Message: "Ingestion failed: Processing error"}, nil)
		repo.EXPECT().MarkFailed(gomock.Any(), "ing-1", "Ingestion failed: Processing error").Return(true, nil)

		updated, err := svc.Retry(context.Background(), "ing-1", "owner-1")
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Retries)

		svc.Wait()
	})

	t.Run("retry of absent ingestion yields not found", func(t *testing.T) {
		svc, repo, _, users := newIngestionFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, apperrors.NotFound("ingestion not found"))

		_, err := svc.Retry(context.Background(), "nope", "owner-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
