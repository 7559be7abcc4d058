package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
	"github.com/docuflow/ingest-api/internal/mocks"
)

func newDocumentFixture(t *testing.T) (*DocumentService, *mocks.MockDocumentRepository, *mocks.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockDocumentRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)

	svc, err := NewDocumentService(DocumentServiceOptions{Repo: repo, Principals: users})
	require.NoError(t, err)
	return svc, repo, users
}

func sampleDocument(id, ownerID string) *model.Document {
	return &model.Document{
		ID:          id,
		OwnerID:     ownerID,
		FileName:    "report.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		StorageKey:  "docs/" + id,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func TestDocumentService_Create_AssignsCallerAsOwner(t *testing.T) {
	svc, repo, _ := newDocumentFixture(t)

	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateDocumentRequest) (*model.Document, error) {
			assert.Equal(t, "owner-1", req.OwnerID)
			return sampleDocument("doc-1", req.OwnerID), nil
		})

	doc, err := svc.Create(context.Background(), "owner-1", &model.CreateDocumentRequest{
		FileName:   "report.pdf",
		StorageKey: "docs/doc-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", doc.OwnerID)
}

func TestDocumentService_Get_AccessControl(t *testing.T) {
	t.Run("owner allowed", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "doc-1").Return(sampleDocument("doc-1", "owner-1"), nil)

		_, err := svc.Get(context.Background(), "doc-1", "owner-1")
		require.NoError(t, err)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "other", auth.RoleEditor)
		repo.EXPECT().GetByID(gomock.Any(), "doc-1").Return(sampleDocument("doc-1", "owner-1"), nil)

		_, err := svc.Get(context.Background(), "doc-1", "other")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("admin allowed", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "admin-1", auth.RoleAdmin)
		repo.EXPECT().GetByID(gomock.Any(), "doc-1").Return(sampleDocument("doc-1", "owner-1"), nil)

		_, err := svc.Get(context.Background(), "doc-1", "admin-1")
		require.NoError(t, err)
	})
}

func TestDocumentService_List_ScopesByRole(t *testing.T) {
	t.Run("admin lists all owners", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "admin-1", auth.RoleAdmin)
		repo.EXPECT().ListByOwner(gomock.Any(), gomock.Nil()).Return([]*model.Document{sampleDocument("doc-1", "owner-1")}, nil)

		docs, err := svc.List(context.Background(), "admin-1")
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("non-admin lists own only", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "owner-1", auth.RoleViewer)
		repo.EXPECT().
			ListByOwner(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ownerID *string) ([]*model.Document, error) {
				require.NotNil(t, ownerID)
				assert.Equal(t, "owner-1", *ownerID)
				return nil, nil
			})

		_, err := svc.List(context.Background(), "owner-1")
		require.NoError(t, err)
	})
}

func TestDocumentService_UpdateAndDelete(t *testing.T) {
	t.Run("update rewrites metadata for owner", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "doc-1").Return(sampleDocument("doc-1", "owner-1"), nil)

		updated := sampleDocument("doc-1", "owner-1")
		updated.FileName = "report-v2.pdf"
		repo.EXPECT().Update(gomock.Any(), "doc-1", gomock.Any()).Return(updated, nil)

		doc, err := svc.Update(context.Background(), "doc-1", "owner-1", &model.UpdateDocumentRequest{
			FileName:   "report-v2.pdf",
			StorageKey: "docs/doc-1",
		})
		require.NoError(t, err)
		assert.Equal(t, "report-v2.pdf", doc.FileName)
	})

	t.Run("delete forbidden for non-owner", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "other", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "doc-1").Return(sampleDocument("doc-1", "owner-1"), nil)

		err := svc.Delete(context.Background(), "doc-1", "other")
		require.Error(t, err)
		assert.True(t, apperrors.IsForbidden(err))
	})

	t.Run("delete of absent document yields not found", func(t *testing.T) {
		svc, repo, users := newDocumentFixture(t)
		expectUser(users, "owner-1", auth.RoleUser)
		repo.EXPECT().GetByID(gomock.Any(), "nope").Return(nil, apperrors.NotFound("document not found"))

		err := svc.Delete(context.Background(), "nope", "owner-1")
		require.Error(t, err)
		assert.True(t, apperrors.IsNotFound(err))
	})
}
