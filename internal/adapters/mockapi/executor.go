// Package mockapi provides a simulated downstream executor. It stands in for
// the real ingestion backend in development and load testing: calls take a
// bounded random amount of time and fail a fixed fraction of the time with a
// message drawn from a small catalog.
package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/docuflow/ingest-api/internal/core"
)

// failureReasons is the catalog of simulated downstream failures.
var failureReasons = []string{
	"Connection timeout",
	"Source unavailable",
	"Destination unreachable",
	"Invalid data format",
	"Processing error",
}

const (
	defaultMinLatency  = 1 * time.Second
	defaultMaxLatency  = 5 * time.Second
	defaultSuccessRate = 0.8
)

// Options holds the dependencies and tuning knobs for the simulated executor.
type Options struct {
	// MinLatency and MaxLatency bound the simulated response time.
	MinLatency time.Duration
	MaxLatency time.Duration
	// SuccessRate is the probability in [0,1] that an execution succeeds.
	// Zero means "use the default"; to always fail, set a negative value.
	SuccessRate float64
	Logger      *slog.Logger

	// randFloat and sleep are injectable for deterministic tests.
	randFloat func() float64
	sleep     func(ctx context.Context, d time.Duration) error
}

// Executor simulates the downstream ingestion backend.
type Executor struct {
	opts Options
}

// NewExecutor creates a simulated executor, applying defaults for unset options.
func NewExecutor(opts Options) *Executor {
	if opts.MinLatency <= 0 {
		opts.MinLatency = defaultMinLatency
	}
	if opts.MaxLatency < opts.MinLatency {
		opts.MaxLatency = defaultMaxLatency
	}
	if opts.SuccessRate == 0 {
		opts.SuccessRate = defaultSuccessRate
	}
	if opts.randFloat == nil {
		opts.randFloat = rand.Float64
	}
	if opts.sleep == nil {
		opts.sleep = sleepCtx
	}
	return &Executor{opts: opts}
}

// successData is the payload returned on successful execution.
type successData struct {
	RecordsProcessed int   `json:"recordsProcessed"`
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// Execute simulates one downstream ingestion call. The only error it returns
// is the context's, when the caller gives up before the simulated latency
// elapses; simulated failures come back as a Success=false result.
func (e *Executor) Execute(ctx context.Context, req core.ExecuteRequest) (*core.ExecutionResult, error) {
	latency := e.latency()
	if err := e.opts.sleep(ctx, latency); err != nil {
		return nil, err
	}

	if e.opts.randFloat() >= e.opts.SuccessRate {
		reason := failureReasons[int(e.opts.randFloat()*float64(len(failureReasons)))%len(failureReasons)]
		if e.opts.Logger != nil {
			e.opts.Logger.DebugContext(ctx, "simulated execution failed",
				"source", req.Source, "destination", req.Destination, "reason", reason)
		}
		return &core.ExecutionResult{
			Success: false,
			Message: "Ingestion failed: " + reason,
		}, nil
	}

	data, err := json.Marshal(successData{
		RecordsProcessed: int(e.opts.randFloat() * 1000),
		ProcessingTimeMs: latency.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal result data: %w", err)
	}

	if e.opts.Logger != nil {
		e.opts.Logger.DebugContext(ctx, "simulated execution succeeded",
			"source", req.Source, "destination", req.Destination, "latency", latency)
	}
	return &core.ExecutionResult{
		Success: true,
		Message: "Data ingestion completed successfully",
		Data:    data,
	}, nil
}

// latency picks a uniformly distributed duration in [MinLatency, MaxLatency].
func (e *Executor) latency() time.Duration {
	window := e.opts.MaxLatency - e.opts.MinLatency
	if window <= 0 {
		return e.opts.MinLatency
	}
	return e.opts.MinLatency + time.Duration(e.opts.randFloat()*float64(window))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
