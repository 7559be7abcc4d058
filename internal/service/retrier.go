package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuflow/ingest-api/internal/core"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

const (
	defaultSweepBatchLimit = 200
	defaultDispatchPacing  = time.Second
)

// ingestionDispatcher is the minimal behavior the retrier needs from the
// orchestrator: hand a pending ingestion to the asynchronous execution path.
type ingestionDispatcher interface {
	Dispatch(ing *model.Ingestion)
}

// RetrierConfig groups tuning knobs for RetrierService.
type RetrierConfig struct {
	// BatchLimit caps how many failed ingestions one sweep examines.
	BatchLimit int
	// Pacing is the delay inserted between successive dispatches within a
	// sweep, to avoid bursting the downstream dependency.
	Pacing time.Duration
}

// RetrierServiceOptions groups dependencies for RetrierService.
type RetrierServiceOptions struct {
	Repo       core.IngestionRepository // Required: ingestion repository
	Dispatcher ingestionDispatcher      // Required: execution dispatch
	Config     RetrierConfig
	Logger     *slog.Logger // Optional: structured logger

	// sleep is injectable for deterministic tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// RetrierService resubmits failed ingestions that still have retry budget.
// It acts with system-level authority: no caller authorization applies, but
// unlike manual retry it honors the max_retries ceiling.
type RetrierService struct {
	repo       core.IngestionRepository
	dispatcher ingestionDispatcher
	cfg        RetrierConfig
	logger     *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRetrierService constructs a new RetrierService.
func NewRetrierService(opts RetrierServiceOptions) (*RetrierService, error) {
	if opts.Repo == nil {
		return nil, errors.New("IngestionRepository is required")
	}
	if opts.Dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if opts.Config.BatchLimit <= 0 {
		opts.Config.BatchLimit = defaultSweepBatchLimit
	}
	if opts.Config.Pacing <= 0 {
		opts.Config.Pacing = defaultDispatchPacing
	}
	if opts.sleep == nil {
		opts.sleep = func(ctx context.Context, d time.Duration) error {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				return nil
			}
		}
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "retrier_service")
	}

	return &RetrierService{
		repo:       opts.Repo,
		dispatcher: opts.Dispatcher,
		cfg:        opts.Config,
		logger:     logger,
		sleep:      opts.sleep,
	}, nil
}

// Sweep performs one pass over failed ingestions: those with retries below
// their ceiling are resubmitted and dispatched, paced apart. One ingestion's
// resubmission failure never aborts the rest of the sweep. Returns how many
// ingestions were resubmitted.
func (s *RetrierService) Sweep(ctx context.Context, now time.Time) (int, error) {
	failed := model.IngestionStatusFailed
	list, err := s.repo.List(ctx, model.IngestionListOptions{
		Status: &failed,
		Limit:  s.cfg.BatchLimit,
	})
	if err != nil {
		return 0, fmt.Errorf("list failed ingestions: %w", err)
	}

	resubmitted := 0
	for _, ing := range list {
		if !ing.RetryBudgetLeft() {
			continue
		}

		if resubmitted > 0 {
			if sleepErr := s.sleep(ctx, s.cfg.Pacing); sleepErr != nil {
				return resubmitted, sleepErr
			}
		}

		updated, resubmitErr := s.repo.Resubmit(ctx, ing.ID)
		if resubmitErr != nil {
			// The job may have been retried manually or completed since the
			// listing; skip it and keep sweeping.
			if s.logger != nil {
				level := slog.LevelWarn
				if apperrors.IsNotFound(resubmitErr) {
					level = slog.LevelDebug
				}
				s.logger.Log(ctx, level, "failed to resubmit ingestion",
					"id", ing.ID, "error", resubmitErr)
			}
			continue
		}

		s.dispatcher.Dispatch(updated)
		resubmitted++
	}

	if s.logger != nil && resubmitted > 0 {
		s.logger.InfoContext(ctx, "retry sweep resubmitted ingestions",
			"count", resubmitted, "swept_at", now)
	}
	return resubmitted, nil
}
