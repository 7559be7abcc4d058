package model

import (
	"errors"
	"strings"
	"time"
)

// Document represents an uploaded document record. The blob itself lives in
// external storage; StorageKey locates it.
type Document struct {
	ID          string    `json:"id"           db:"id"`
	OwnerID     string    `json:"owner_id"     db:"owner_id"`
	FileName    string    `json:"file_name"    db:"file_name"`
	ContentType string    `json:"content_type" db:"content_type"`
	SizeBytes   int64     `json:"size_bytes"   db:"size_bytes"`
	StorageKey  string    `json:"storage_key"  db:"storage_key"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// CreateDocumentRequest represents a request to record an uploaded document.
type CreateDocumentRequest struct {
	OwnerID     string `json:"owner_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"storage_key"`
}

// Validate validates the CreateDocumentRequest fields.
func (r *CreateDocumentRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return errors.New("owner id is required")
	}
	if strings.TrimSpace(r.FileName) == "" {
		return errors.New("file name is required")
	}
	if r.SizeBytes < 0 {
		return errors.New("size must be >= 0")
	}
	if strings.TrimSpace(r.StorageKey) == "" {
		return errors.New("storage key is required")
	}
	return nil
}

// UpdateDocumentRequest carries replacement file metadata for an existing
// document. Ownership never changes on update.
type UpdateDocumentRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	StorageKey  string `json:"storage_key"`
}

// Validate validates the UpdateDocumentRequest fields.
func (r *UpdateDocumentRequest) Validate() error {
	if strings.TrimSpace(r.FileName) == "" {
		return errors.New("file name is required")
	}
	if r.SizeBytes < 0 {
		return errors.New("size must be >= 0")
	}
	if strings.TrimSpace(r.StorageKey) == "" {
		return errors.New("storage key is required")
	}
	return nil
}
