package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docuflow/ingest-api/internal/core"
	"github.com/docuflow/ingest-api/internal/domain/auth"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// DocumentServiceOptions groups dependencies for DocumentService.
type DocumentServiceOptions struct {
	Repo       core.DocumentRepository // Required: document repository
	Principals core.PrincipalResolver  // Required: caller role lookup
	Logger     *slog.Logger            // Optional: structured logger
}

// DocumentService manages document metadata records with the same
// owner-or-admin access policy as ingestions.
type DocumentService struct {
	repo       core.DocumentRepository
	principals core.PrincipalResolver
	logger     *slog.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(opts DocumentServiceOptions) (*DocumentService, error) {
	if opts.Repo == nil {
		return nil, errors.New("DocumentRepository is required")
	}
	if opts.Principals == nil {
		return nil, errors.New("PrincipalResolver is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "document_service")
	}

	return &DocumentService{
		repo:       opts.Repo,
		principals: opts.Principals,
		logger:     logger,
	}, nil
}

// Create records a document owned by the caller.
func (s *DocumentService) Create(ctx context.Context, callerID string, req *model.CreateDocumentRequest) (*model.Document, error) {
	if req == nil {
		return nil, apperrors.Validation("create document request is required")
	}
	req.OwnerID = callerID

	doc, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "document created", "id", doc.ID, "owner_id", doc.OwnerID, "file_name", doc.FileName)
	}
	return doc, nil
}

// Get returns the document if the caller owns it or holds the admin role.
func (s *DocumentService) Get(ctx context.Context, id, callerID string) (*model.Document, error) {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return nil, err
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	if !caller.CanAccessResourceOwnedBy(doc.OwnerID) {
		return nil, apperrors.Forbidden("you do not have access to this document")
	}
	return doc, nil
}

// List returns documents newest first. Admin callers see all owners'
// documents; everyone else sees only their own.
func (s *DocumentService) List(ctx context.Context, callerID string) ([]*model.Document, error) {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return nil, err
	}

	var owner *string
	if !caller.Role.IsAdmin() {
		owner = &caller.UserID
	}

	docs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Update replaces the file metadata of a document the caller may access.
func (s *DocumentService) Update(ctx context.Context, id, callerID string, req *model.UpdateDocumentRequest) (*model.Document, error) {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return nil, err
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	if !caller.CanAccessResourceOwnedBy(doc.OwnerID) {
		return nil, apperrors.Forbidden("you do not have access to this document")
	}

	updated, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("update document %s: %w", id, err)
	}
	return updated, nil
}

// Delete removes a document the caller may access.
func (s *DocumentService) Delete(ctx context.Context, id, callerID string) error {
	caller, err := s.resolvePrincipal(ctx, callerID)
	if err != nil {
		return err
	}

	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get document %s: %w", id, err)
	}
	if !caller.CanAccessResourceOwnedBy(doc.OwnerID) {
		return apperrors.Forbidden("you do not have access to this document")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "document deleted", "id", id, "caller_id", callerID)
	}
	return nil
}

func (s *DocumentService) resolvePrincipal(ctx context.Context, callerID string) (auth.Principal, error) {
	user, err := s.principals.GetByID(ctx, callerID)
	if err != nil {
		return auth.Principal{}, fmt.Errorf("resolve principal %s: %w", callerID, err)
	}
	return auth.Principal{UserID: user.ID, Role: user.Role}, nil
}
