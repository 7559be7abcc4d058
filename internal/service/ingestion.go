package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/docuflow/ingest-api/internal/core"
	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// defaultExecuteTimeout bounds a single downstream execution. A job whose
// executor call exceeds this is failed rather than left in_progress forever.
const defaultExecuteTimeout = 2 * time.Minute

// IngestionServiceConfig groups tuning knobs for IngestionService.
type IngestionServiceConfig struct {
	ExecuteTimeout time.Duration
}

// IngestionServiceOptions groups dependencies for IngestionService.
type IngestionServiceOptions struct {
	Repo       core.IngestionRepository // Required: ingestion repository
	Executor   core.Executor            // Required: downstream executor
	Principals core.PrincipalResolver   // Required: caller role lookup
	Config     IngestionServiceConfig
	Logger     *slog.Logger // Optional: structured logger
}

// IngestionService orchestrates the ingestion job lifecycle: it creates jobs,
// dispatches their execution asynchronously, and gates caller-facing reads and
// retries behind the owner-or-admin predicate.
type IngestionService struct {
	repo       core.IngestionRepository
	executor   core.Executor
	principals core.PrincipalResolver
	cfg        IngestionServiceConfig
	logger     *slog.Logger
	wg         sync.WaitGroup
}

// NewIngestionService constructs a new IngestionService.
func NewIngestionService(opts IngestionServiceOptions) (*IngestionService, error) {
	if opts.Repo == nil {
		return nil, errors.New("IngestionRepository is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("Executor is required")
	}
	if opts.Principals == nil {
		return nil, errors.New("PrincipalResolver is required")
	}
	if opts.Config.ExecuteTimeout <= 0 {
		opts.Config.ExecuteTimeout = defaultExecuteTimeout
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "ingestion_service")
	}

	return &IngestionService{
		repo:       opts.Repo,
		executor:   opts.Executor,
		principals: opts.Principals,
		cfg:        opts.Config,
		logger:     logger,
	}, nil
}

// MustNewIngestionService constructs a new IngestionService and panics on error.
func MustNewIngestionService(opts IngestionServiceOptions) *IngestionService {
	svc, err := NewIngestionService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create IngestionService: %v", err))
	}
	return svc
}

// Trigger creates a new ingestion in pending status and dispatches its
// execution in the background. It returns the created record immediately;
// the eventual outcome is observable through GetStatus.
func (s *IngestionService) Trigger(ctx context.Context, req *model.CreateIngestionRequest) (*model.Ingestion, error) {
	ing, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create ingestion: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "ingestion triggered",
			"id", ing.ID, "owner_id", ing.OwnerID, "source", ing.Source, "destination", ing.Destination)
	}

	s.Dispatch(ing)
	return ing, nil
}

// GetStatus returns the ingestion if the caller owns it or holds the admin
// role. An unresolvable caller yields NotFound; a resolvable caller without
// access yields Forbidden.
func (s *IngestionService) GetStatus(ctx context.Context, id, callerID string) (*model.Ingestion, error) {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ingestion %s: %w", id, err)
	}

	if !caller.CanAccessResourceOwnedBy(ing.OwnerID) {
		return nil, apperrors.Forbidden("you do not have access to this ingestion")
	}
	return ing, nil
}

// ListParams scopes a listing request. Status filters optionally; pagination
// is normalized by the repository.
type ListParams struct {
	Status *model.IngestionStatus
	Limit  int
	Offset int
}

// List returns ingestions newest first. Admin callers see all owners' jobs;
// everyone else sees only their own.
func (s *IngestionService) List(ctx context.Context, callerID string, params ListParams) ([]*model.Ingestion, error) {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return nil, err
	}

	opts := model.IngestionListOptions{
		Status: params.Status,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if !caller.Role.IsAdmin() {
		owner := caller.UserID
		opts.OwnerID = &owner
	}

	list, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list ingestions: %w", err)
	}
	return list, nil
}

// Retry resubmits a failed ingestion and dispatches a fresh execution. Only
// failed jobs are retryable, and only by their owner or an admin. The retry
// ceiling is deliberately not checked here: an authorized caller may keep
// retrying past max_retries, which only bounds the automatic sweep.
func (s *IngestionService) Retry(ctx context.Context, id, callerID string) (*model.Ingestion, error) {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return nil, err
	}

	ing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get ingestion %s: %w", id, err)
	}

	if !ing.Retryable() {
		return nil, apperrors.Forbiddenf("Cannot retry ingestion with status: %s", ing.Status)
	}
	if !caller.CanAccessResourceOwnedBy(ing.OwnerID) {
		return nil, apperrors.Forbidden("you do not have access to this ingestion")
	}

	updated, err := s.repo.Resubmit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resubmit ingestion %s: %w", id, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "ingestion resubmitted",
			"id", updated.ID, "retries", updated.Retries, "caller_id", callerID)
	}

	s.Dispatch(updated)
	return updated, nil
}

// Dispatch launches the asynchronous execution of a pending ingestion. It
// never returns an error: every outcome of the execution path is recorded on
// the ingestion record and logged, not propagated.
func (s *IngestionService) Dispatch(ing *model.Ingestion) {
	if ing == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(ing)
	}()
}

// Wait blocks until all in-flight executions have finished. Intended for
// graceful shutdown and tests.
func (s *IngestionService) Wait() {
	s.wg.Wait()
}

// execute runs the pending→in_progress→{completed|failed} leg of the
// lifecycle. It is detached from any request context; the executor call is
// bounded by the configured timeout instead.
func (s *IngestionService) execute(ing *model.Ingestion) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ExecuteTimeout)
	defer cancel()

	started, err := s.repo.MarkInProgress(ctx, ing.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to mark ingestion in progress", "id", ing.ID, "error", err)
		}
		return
	}
	if !started {
		// Someone else already dispatched this job; the state guard makes
		// double dispatch a no-op.
		if s.logger != nil {
			s.logger.DebugContext(ctx, "ingestion no longer pending, skipping execution", "id", ing.ID)
		}
		return
	}

	res, err := s.executor.Execute(ctx, core.ExecuteRequest{
		Source:      ing.Source,
		Destination: ing.Destination,
		Metadata:    ing.Metadata,
	})
	switch {
	case err != nil:
		s.recordFailure(ctx, ing.ID, "Unexpected error: "+err.Error())
	case res == nil:
		s.recordFailure(ctx, ing.ID, "Unexpected error: executor returned no result")
	case !res.Success:
		s.recordFailure(ctx, ing.ID, res.Message)
	default:
		s.recordSuccess(ctx, ing.ID, res)
	}
}

func (s *IngestionService) recordSuccess(ctx context.Context, id string, res *core.ExecutionResult) {
	mctx, cancel := s.recordContext(ctx)
	defer cancel()

	ok, err := s.repo.MarkCompleted(mctx, id, res.Data)
	if s.logger == nil {
		return
	}
	switch {
	case err != nil:
		s.logger.ErrorContext(mctx, "failed to mark ingestion completed", "id", id, "error", err)
	case !ok:
		s.logger.WarnContext(mctx, "ingestion not in progress at completion", "id", id)
	default:
		s.logger.InfoContext(mctx, "ingestion completed", "id", id)
	}
}

func (s *IngestionService) recordFailure(ctx context.Context, id, msg string) {
	mctx, cancel := s.recordContext(ctx)
	defer cancel()

	ok, err := s.repo.MarkFailed(mctx, id, msg)
	if s.logger == nil {
		return
	}
	switch {
	case err != nil:
		s.logger.ErrorContext(mctx, "failed to mark ingestion failed", "id", id, "error", err)
	case !ok:
		s.logger.WarnContext(mctx, "ingestion not in progress at failure", "id", id)
	default:
		s.logger.InfoContext(mctx, "ingestion failed", "id", id, "error_message", msg)
	}
}

// recordContext derives a context for persisting an outcome. The parent may
// already be expired (executor timeout), so cancellation is stripped and a
// short fresh deadline applied.
func (s *IngestionService) recordContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
}

// resolvePrincipal looks up the caller's stored account and derives the
// acting principal from it.
func (s *IngestionService) resolvePrincipal(ctx context.Context, callerID string) (auth.Principal, error) {
	user, err := s.principals.GetByID(ctx, callerID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("resolve principal %s: %w", callerID, err)
	}
	return auth.Principal{UserID: user.ID, Role: user.Role}, nil
}
