package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docuflow/ingest-api/internal/data/pgxutil"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// DocumentRepo provides database operations for document metadata records.
type DocumentRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewDocumentRepo creates a new DocumentRepo with real time provider.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewDocumentRepoWithTimeProvider creates a new DocumentRepo with a custom time provider (useful for tests).
func NewDocumentRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *DocumentRepo {
	return &DocumentRepo{DB: db, timeProvider: tp}
}

const documentColumns = `id, owner_id, file_name, content_type, size_bytes, storage_key, created_at, updated_at`

// Create inserts a new document metadata record.
func (r *DocumentRepo) Create(ctx context.Context, req *model.CreateDocumentRequest) (*model.Document, error) {
	if req == nil {
		return nil, errors.New("create document request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	now := r.timeProvider.Now().UTC()
	var out model.Document
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO documents (id, owner_id, file_name, content_type, size_bytes, storage_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING `+documentColumns,
			uuid.NewString(),
			req.OwnerID,
			strings.TrimSpace(req.FileName),
			req.ContentType,
			req.SizeBytes,
			req.StorageKey,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Document])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("create document: %w", err))
	}
	return &out, nil
}

// GetByID retrieves a document by ID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*model.Document, error) {
	var out model.Document
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Document])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("document %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get document by id: %w", err))
	}
	return &out, nil
}

// ListByOwner retrieves documents newest first. A nil ownerID lists all
// owners' documents (admin view).
func (r *DocumentRepo) ListByOwner(ctx context.Context, ownerID *string) ([]*model.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY created_at DESC`
	var args []any
	if ownerID != nil {
		query = `SELECT ` + documentColumns + ` FROM documents WHERE owner_id = $1 ORDER BY created_at DESC`
		args = append(args, *ownerID)
	}

	var rowsOut []model.Document
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Document])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list documents: %w", err))
	}

	res := make([]*model.Document, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// Update replaces the file metadata of an existing document.
func (r *DocumentRepo) Update(ctx context.Context, id string, req *model.UpdateDocumentRequest) (*model.Document, error) {
	if req == nil {
		return nil, errors.New("update document request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	var out model.Document
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE documents
			SET file_name = $2, content_type = $3, size_bytes = $4, storage_key = $5, updated_at = $6
			WHERE id = $1
			RETURNING `+documentColumns,
			id,
			strings.TrimSpace(req.FileName),
			req.ContentType,
			req.SizeBytes,
			req.StorageKey,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Document])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("document %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("update document: %w", err))
	}
	return &out, nil
}

// Delete removes a document record. Returns a NotFound error if no row matched.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return apperrors.MapDBError(fmt.Errorf("delete document: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NotFoundf("document %s not found", id)
	}
	return nil
}
