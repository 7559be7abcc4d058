// Package core defines the port interfaces that services depend on.
// Implementations live in internal/data and internal/adapters.
package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
)

// IngestionRepository persists ingestion jobs and applies guarded lifecycle
// updates. Each status-changing method is atomic at the single-record level
// and enforces its WHERE-status guard in the store, so no two callers can
// race the same transition.
type IngestionRepository interface {
	// Create inserts a new ingestion in pending status with zero retries.
	Create(ctx context.Context, req *model.CreateIngestionRequest) (*model.Ingestion, error)

	// GetByID returns the ingestion or a NotFound error.
	GetByID(ctx context.Context, id string) (*model.Ingestion, error)

	// List returns ingestions matching the options, newest first.
	List(ctx context.Context, opts model.IngestionListOptions) ([]*model.Ingestion, error)

	// MarkInProgress transitions pending→in_progress. Returns false if the
	// ingestion was not in pending status.
	MarkInProgress(ctx context.Context, id string) (bool, error)

	// MarkCompleted transitions in_progress→completed, stamps completed_at,
	// and merges the executor result into metadata under the "result" key.
	// Returns false if the ingestion was not in in_progress status.
	MarkCompleted(ctx context.Context, id string, result json.RawMessage) (bool, error)

	// MarkFailed transitions in_progress→failed and records the error message.
	// Returns false if the ingestion was not in in_progress status.
	MarkFailed(ctx context.Context, id, errMsg string) (bool, error)

	// Resubmit transitions failed→pending, increments retries, and clears the
	// error. Returns the updated ingestion, or a NotFound error if the job is
	// absent or no longer failed.
	Resubmit(ctx context.Context, id string) (*model.Ingestion, error)
}

// ExecuteRequest carries the unit of work handed to the downstream executor.
type ExecuteRequest struct {
	Source      string
	Destination string
	Metadata    json.RawMessage
}

// ExecutionResult is the downstream executor's three-field outcome contract.
type ExecutionResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Executor performs the actual unit of work for an ingestion. It may return a
// structured failure (Success=false) or a transport-level error; callers must
// treat both the same way.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (*ExecutionResult, error)
}

// RetrySweeper resubmits failed ingestions that still have retry budget.
// Implemented by the retrier service; driven by the retrier runner's ticker.
type RetrySweeper interface {
	// Sweep performs one pass and returns how many ingestions it resubmitted.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// PrincipalResolver resolves a user id to the stored account, primarily to
// learn the caller's role. Returns a NotFound error for unknown ids.
// UserRepository satisfies this via GetByID.
type PrincipalResolver interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// SessionStore persists server-side sessions. Implementations signal a
// missing or expired session with an error the auth service maps to
// Unauthorized.
type SessionStore interface {
	Save(ctx context.Context, sess auth.Session) error
	Get(ctx context.Context, id string) (auth.Session, error)
	Delete(ctx context.Context, id string) error
}

// DocumentRepository persists document metadata records.
type DocumentRepository interface {
	Create(ctx context.Context, req *model.CreateDocumentRequest) (*model.Document, error)
	GetByID(ctx context.Context, id string) (*model.Document, error)
	ListByOwner(ctx context.Context, ownerID *string) ([]*model.Document, error)
	Update(ctx context.Context, id string, req *model.UpdateDocumentRequest) (*model.Document, error)
	Delete(ctx context.Context, id string) error
}
