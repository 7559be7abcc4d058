// Package retrier provides the adapter that drives the auto-retry sweep on a
// fixed cadence.
package retrier

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docuflow/ingest-api/internal/core"
)

const defaultInterval = 60 * time.Second

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Sweeper  core.RetrySweeper // Required: the retry sweep implementation
	Interval time.Duration     // Optional: sweep cadence, defaults to 60s
	Logger   *slog.Logger      // Optional: structured logger
}

// Runner calls the sweeper at the configured interval until its context is
// canceled. Sweeps run sequentially on the loop goroutine, so a slow sweep
// simply delays the next tick; overlapping sweeps cannot happen.
type Runner struct {
	sweeper  core.RetrySweeper
	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a new retry sweep runner with the given options.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Sweeper == nil {
		return nil, errors.New("sweeper is required")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "retrier_runner")
	}

	return &Runner{
		sweeper:  opts.Sweeper,
		interval: opts.Interval,
		logger:   logger,
	}, nil
}

// Run starts the sweep loop and runs until the context is canceled, which is
// reported as a clean nil return.
func (r *Runner) Run(ctx context.Context) error {
	if r.logger != nil {
		r.logger.InfoContext(ctx, "starting retry sweep runner", "interval", r.interval)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if r.logger != nil {
				r.logger.InfoContext(ctx, "retry sweep runner stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()

		case now := <-ticker.C:
			start := time.Now()
			resubmitted, err := r.sweeper.Sweep(ctx, now)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				// Keep sweeping on errors; one bad sweep must not stop the loop.
				if r.logger != nil {
					r.logger.ErrorContext(ctx, "retry sweep failed", "error", err)
				}
				continue
			}
			if resubmitted > 0 && r.logger != nil {
				r.logger.InfoContext(ctx, "retry sweep finished",
					"resubmitted", resubmitted, "elapsed", time.Since(start))
			}
		}
	}
}
