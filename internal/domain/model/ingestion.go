// Package model defines the core data types and structures used throughout the ingest system.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// IngestionStatus represents the current status of an ingestion job.
type IngestionStatus string

const (
	// IngestionStatusPending indicates an ingestion is waiting to be dispatched.
	IngestionStatusPending IngestionStatus = "pending"
	// IngestionStatusInProgress indicates an ingestion is currently executing downstream.
	IngestionStatusInProgress IngestionStatus = "in_progress"
	// IngestionStatusCompleted indicates an ingestion finished successfully.
	IngestionStatusCompleted IngestionStatus = "completed"
	// IngestionStatusFailed indicates an ingestion failed to complete.
	IngestionStatusFailed IngestionStatus = "failed"
)

// Valid returns true if the IngestionStatus is valid.
func (s IngestionStatus) Valid() bool {
	return s == IngestionStatusPending || s == IngestionStatusInProgress ||
		s == IngestionStatusCompleted || s == IngestionStatusFailed
}

// Terminal returns true if no transition leads out of the status.
// Failed is not terminal: a failed ingestion may be resubmitted.
func (s IngestionStatus) Terminal() bool {
	return s == IngestionStatusCompleted
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// The only legal paths are pending→in_progress, in_progress→{completed,failed},
// and failed→pending (resubmission).
func (s IngestionStatus) CanTransitionTo(next IngestionStatus) bool {
	switch s {
	case IngestionStatusPending:
		return next == IngestionStatusInProgress
	case IngestionStatusInProgress:
		return next == IngestionStatusCompleted || next == IngestionStatusFailed
	case IngestionStatusFailed:
		return next == IngestionStatusPending
	case IngestionStatusCompleted:
		return false
	default:
		return false
	}
}

// Ingestion represents one unit of ingestion work tracked through the lifecycle.
type Ingestion struct {
	ID          string          `json:"id"                     db:"id"`
	OwnerID     string          `json:"owner_id"               db:"owner_id"`
	Source      string          `json:"source"                 db:"source"`
	Destination string          `json:"destination"            db:"destination"`
	Metadata    json.RawMessage `json:"metadata"               db:"metadata"`
	Status      IngestionStatus `json:"status"                 db:"status"`
	LastError   *string         `json:"last_error,omitempty"   db:"last_error"`
	Retries     int             `json:"retries"                db:"retries"`
	MaxRetries  int             `json:"max_retries"            db:"max_retries"`
	CreatedAt   time.Time       `json:"created_at"             db:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt   time.Time       `json:"updated_at"             db:"updated_at"`
}

// Retryable returns true if the ingestion is in a state that allows resubmission.
func (i *Ingestion) Retryable() bool {
	return i.Status == IngestionStatusFailed
}

// RetryBudgetLeft returns true if the ingestion has not yet exhausted its
// automatic retry ceiling. Manual retry by an authorized caller ignores this.
func (i *Ingestion) RetryBudgetLeft() bool {
	return i.Retries < i.MaxRetries
}

// maxFieldLength bounds source and destination strings.
const maxFieldLength = 255

// CreateIngestionRequest represents a request to create a new ingestion job.
type CreateIngestionRequest struct {
	OwnerID     string          `json:"owner_id"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	MaxRetries  int             `json:"max_retries,omitempty"`
}

// Validate validates the CreateIngestionRequest fields.
func (r *CreateIngestionRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return errors.New("owner id is required")
	}
	if strings.TrimSpace(r.Source) == "" {
		return errors.New("source is required")
	}
	if len(r.Source) > maxFieldLength {
		return fmt.Errorf("source must be at most %d characters", maxFieldLength)
	}
	if strings.TrimSpace(r.Destination) == "" {
		return errors.New("destination is required")
	}
	if len(r.Destination) > maxFieldLength {
		return fmt.Errorf("destination must be at most %d characters", maxFieldLength)
	}
	if r.MaxRetries < 0 {
		return errors.New("max retries must be >= 0")
	}
	return nil
}

// IngestionListOptions filters and scopes ingestion listings.
// A nil OwnerID returns ingestions for all owners (admin view); results are
// always ordered by creation time descending.
type IngestionListOptions struct {
	OwnerID *string
	Status  *IngestionStatus
	Limit   int
	Offset  int
}
