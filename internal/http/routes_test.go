package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
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
	"github.com/docuflow/ingest-api/internal/service"
)

// memSessionStore is an in-memory core.SessionStore for handler tests.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]auth.Session)}
}

func (s *memSessionStore) Save(_ context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (auth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return auth.Session{}, apperrors.Unauthorized("session not found")
	}
	return sess, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type routerFixture struct {
	handler   http.Handler
	repo      *mocks.MockIngestionRepository
	docs      *mocks.MockDocumentRepository
	users     *mocks.MockUserRepository
	executor  *mocks.MockExecutor
	sessions  *memSessionStore
	ingestSvc *service.IngestionService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockIngestionRepository(ctrl)
	docs := mocks.NewMockDocumentRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	executor := mocks.NewMockExecutor(ctrl)
	sessions := newMemSessionStore()

	ingestSvc, err := service.NewIngestionService(service.IngestionServiceOptions{
		Repo: repo, Executor: executor, Principals: users,
	})
	require.NoError(t, err)
	// In-flight executions must settle before gomock verifies expectations.
	t.Cleanup(ingestSvc.Wait)

	docSvc, err := service.NewDocumentService(service.DocumentServiceOptions{
		Repo: docs, Principals: users,
	})
	require.NoError(t, err)

	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Users: users, Sessions: sessions,
	})
	require.NoError(t, err)

	handler := NewRouter(RouterServices{
		Ingestions: ingestSvc,
		Documents:  docSvc,
		Auth:       authSvc,
	})

	return &routerFixture{
		handler:   handler,
		repo:      repo,
		docs:      docs,
		users:     users,
		executor:  executor,
		sessions:  sessions,
		ingestSvc: ingestSvc,
	}
}

// seedSession stores a session and registers the matching user lookup.
func (f *routerFixture) seedSession(t *testing.T, userID string, role auth.Role) *http.Cookie {
	t.Helper()
	sess := auth.Session{
		ID:        "sess-" + userID,
		UserID:    userID,
		Username:  userID,
		Email:     userID + "@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, f.sessions.Save(context.Background(), sess))

	f.users.EXPECT().GetByID(gomock.Any(), userID).
		Return(&model.User{ID: userID, Username: userID, Role: role}, nil).
		AnyTimes()

	return &http.Cookie{Name: "session_id", Value: sess.ID}
}

func (f *routerFixture) do(method, path string, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func pendingIngestionFor(owner string) *model.Ingestion {
	return &model.Ingestion{
		ID:          "ing-1",
		OwnerID:     owner,
		Source:      "s3://bucket/raw",
		Destination: "warehouse.events",
		Metadata:    json.RawMessage(`{}`),
		Status:      model.IngestionStatusPending,
		MaxRetries:  3,
	}
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	f := newRouterFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/ingestions"},
		{http.MethodGet, "/api/ingestions"},
		{http.MethodGet, "/api/ingestions/ing-1"},
		{http.MethodPost, "/api/ingestions/ing-1/retry"},
		{http.MethodGet, "/api/documents"},
	} {
		rec := f.do(tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestIngestionHandlers_Trigger(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.seedSession(t, "user-1", auth.RoleUser)

	ing := pendingIngestionFor("user-1")
	f.repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateIngestionRequest) (*model.Ingestion, error) {
			assert.Equal(t, "user-1", req.OwnerID)
			assert.Equal(t, "s3://bucket/raw", req.Source)
			return ing, nil
		})

	// The background execution may or may not finish inside the test body.
	f.repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil).AnyTimes()
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(&core.ExecutionResult{Success: true, Message: "Data ingestion completed successfully"}, nil).
		AnyTimes()
	f.repo.EXPECT().MarkCompleted(gomock.Any(), "ing-1", gomock.Any()).Return(true, nil).AnyTimes()

	rec := f.do(http.MethodPost, "/api/ingestions",
		`{"source":"s3://bucket/raw","destination":"warehouse.events"}`, cookie)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var got model.Ingestion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ing-1", got.ID)
	assert.Equal(t, model.IngestionStatusPending, got.Status)
}

func TestIngestionHandlers_Trigger_ValidatesBody(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.seedSession(t, "user-1", auth.RoleUser)

	rec := f.do(http.MethodPost, "/api/ingestions", `{"source":"only-a-source"}`, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "destination is required")
}

func TestIngestionHandlers_GetStatus(t *testing.T) {
	t.Run("owner sees own ingestion", func(t *testing.T) {
		f := newRouterFixture(t)
		cookie := f.seedSession(t, "user-1", auth.RoleUser)

		f.repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(pendingIngestionFor("user-1"), nil)

		rec := f.do(http.MethodGet, "/api/ingestions/ing-1", "", cookie)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		f := newRouterFixture(t)
		cookie := f.seedSession(t, "user-2", auth.RoleViewer)

		f.repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(pendingIngestionFor("user-1"), nil)

		rec := f.do(http.MethodGet, "/api/ingestions/ing-1", "", cookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown ingestion is 404", func(t *testing.T) {
		f := newRouterFixture(t)
		cookie := f.seedSession(t, "user-1", auth.RoleUser)

		f.repo.EXPECT().GetByID(gomock.Any(), "nope").
			Return(nil, apperrors.NotFoundf("ingestion %s not found", "nope"))

		rec := f.do(http.MethodGet, "/api/ingestions/nope", "", cookie)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestIngestionHandlers_List(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.seedSession(t, "user-1", auth.RoleUser)

	f.repo.EXPECT().
		List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.IngestionListOptions) ([]*model.Ingestion, error) {
			require.NotNil(t, opts.OwnerID)
			assert.Equal(t, "user-1", *opts.OwnerID)
			require.NotNil(t, opts.Status)
			assert.Equal(t, model.IngestionStatusFailed, *opts.Status)
			assert.Equal(t, 10, opts.Limit)
			return nil, nil
		})

	rec := f.do(http.MethodGet, "/api/ingestions?status=failed&limit=10", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestIngestionHandlers_List_RejectsBadQuery(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.seedSession(t, "user-1", auth.RoleUser)

	rec := f.do(http.MethodGet, "/api/ingestions?status=sideways", "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/ingestions?limit=-5", "", cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestionHandlers_Retry(t *testing.T) {
	t.Run("retries a failed ingestion", func(t *testing.T) {
		f := newRouterFixture(t)
		cookie := f.seedSession(t, "user-1", auth.RoleUser)

		failed := pendingIngestionFor("user-1")
		failed.Status = model.IngestionStatusFailed
		f.repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(failed, nil)

		resubmitted := pendingIngestionFor("user-1")
		resubmitted.Retries = 1
		f.repo.EXPECT().Resubmit(gomock.Any(), "ing-1").Return(resubmitted, nil)

		f.repo.EXPECT().MarkInProgress(gomock.Any(), "ing-1").Return(true, nil).AnyTimes()
		f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).
			Return(&core.ExecutionResult{Success: true}, nil).AnyTimes()
		f.repo.EXPECT().MarkCompleted(gomock.Any(), "ing-1", gomock.Any()).Return(true, nil).AnyTimes()

		rec := f.do(http.MethodPost, "/api/ingestions/ing-1/retry", "", cookie)
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

		var got model.Ingestion
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 1, got.Retries)
	})

	t.Run("non-failed ingestion is forbidden", func(t *testing.T) {
		f := newRouterFixture(t)
		cookie := f.seedSession(t, "user-1", auth.RoleUser)

		completed := pendingIngestionFor("user-1")
		completed.Status = model.IngestionStatusCompleted
		f.repo.EXPECT().GetByID(gomock.Any(), "ing-1").Return(completed, nil)

		rec := f.do(http.MethodPost, "/api/ingestions/ing-1/retry", "", cookie)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Cannot retry ingestion with status: completed")
	})
}

func TestAuthHandlers_LoginFlow(t *testing.T) {
	f := newRouterFixture(t)

	user := &model.User{ID: "user-1", Username: "alice", Email: "alice@example.com", Role: auth.RoleUser}
	f.users.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateUserRequest) (*model.User, error) {
			user.PasswordHash = req.PasswordHash
			return user, nil
		})
	f.users.EXPECT().GetByUsername(gomock.Any(), "alice").
		DoAndReturn(func(context.Context, string) (*model.User, error) { return user, nil })

	rec := f.do(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")

	rec = f.do(http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session_id" {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)

	f.users.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil).AnyTimes()
	rec = f.do(http.MethodGet, "/api/auth/me", "", sessionCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	rec = f.do(http.MethodPost, "/api/auth/logout", "", sessionCookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/api/auth/me", "", sessionCookie)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlers_LoginRejectsBadPassword(t *testing.T) {
	f := newRouterFixture(t)

	f.users.EXPECT().GetByUsername(gomock.Any(), "alice").
		Return(nil, apperrors.NotFound("user not found"))

	rec := f.do(http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"whatever-this-is"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid username or password")
}

func TestDocumentHandlers_CRUD(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.seedSession(t, "user-1", auth.RoleUser)

	doc := &model.Document{
		ID: "doc-1", OwnerID: "user-1", FileName: "report.pdf",
		ContentType: "application/pdf", SizeBytes: 1024, StorageKey: "docs/doc-1",
	}

	f.docs.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateDocumentRequest) (*model.Document, error) {
			assert.Equal(t, "user-1", req.OwnerID)
			return doc, nil
		})
	rec := f.do(http.MethodPost, "/api/documents",
		`{"file_name":"report.pdf","content_type":"application/pdf","size_bytes":1024,"storage_key":"docs/doc-1"}`,
		cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	f.docs.EXPECT().GetByID(gomock.Any(), "doc-1").Return(doc, nil)
	rec = f.do(http.MethodGet, "/api/documents/doc-1", "", cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.docs.EXPECT().GetByID(gomock.Any(), "doc-1").Return(doc, nil)
	f.docs.EXPECT().Delete(gomock.Any(), "doc-1").Return(nil)
	rec = f.do(http.MethodDelete, "/api/documents/doc-1", "", cookie)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
