package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/docuflow/ingest-api/internal/data/pgxutil"
	"github.com/docuflow/ingest-api/internal/domain/model"
	apperrors "github.com/docuflow/ingest-api/internal/errors"
)

// defaultMaxRetries is applied when a create request does not specify a
// positive retry ceiling.
const defaultMaxRetries = 3

// IngestionRepoConfig holds configuration options for the ingestion repository.
type IngestionRepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// IngestionRepo provides database operations for ingestion jobs. All
// status-changing methods enforce their lifecycle guard in the UPDATE's WHERE
// clause, so concurrent callers cannot double-apply a transition.
type IngestionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewIngestionRepo creates a new IngestionRepo with the given database connection and configuration.
func NewIngestionRepo(db *sql.DB, cfg IngestionRepoConfig) *IngestionRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &IngestionRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const ingestionColumns = `
  id,
  owner_id,
  source,
  destination,
  metadata,
  status,
  last_error,
  retries,
  max_retries,
  created_at,
  completed_at,
  updated_at
`

// Create inserts a new ingestion in pending status with zero retries.
func (r *IngestionRepo) Create(ctx context.Context, req *model.CreateIngestionRequest) (*model.Ingestion, error) {
	if req == nil {
		return nil, errors.New("create ingestion request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	maxRetries := defaultMaxRetries
	if req.MaxRetries > 0 {
		maxRetries = req.MaxRetries
	}

	meta := []byte(`{}`)
	if len(req.Metadata) > 0 {
		meta = req.Metadata
	}

	now := r.timeProvider.Now().UTC()
	var out model.Ingestion
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO ingestions (
				id, owner_id, source, destination, metadata, status, retries, max_retries, created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, 'pending', 0, $6, $7, $7
			) RETURNING `+ingestionColumns,
			uuid.NewString(),
			req.OwnerID,
			strings.TrimSpace(req.Source),
			strings.TrimSpace(req.Destination),
			meta,
			maxRetries,
			now,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Ingestion])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("create ingestion: %w", err))
	}
	return &out, nil
}

// GetByID retrieves an ingestion by ID.
func (r *IngestionRepo) GetByID(ctx context.Context, id string) (*model.Ingestion, error) {
	var out model.Ingestion
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+ingestionColumns+` FROM ingestions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Ingestion])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("ingestion %s not found", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("get ingestion by id: %w", err))
	}
	return &out, nil
}

// List retrieves ingestions matching the options, newest first.
func (r *IngestionRepo) List(ctx context.Context, opts model.IngestionListOptions) ([]*model.Ingestion, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		conds []string
		args  []any
	)
	if opts.OwnerID != nil {
		args = append(args, *opts.OwnerID)
		conds = append(conds, "owner_id = $"+strconv.Itoa(len(args)))
	}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + ingestionColumns + ` FROM ingestions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY created_at DESC LIMIT $" + strconv.Itoa(len(args))
	args = append(args, offset)
	query += " OFFSET $" + strconv.Itoa(len(args))

	var rowsOut []model.Ingestion
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Ingestion])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(fmt.Errorf("list ingestions: %w", err))
	}

	res := make([]*model.Ingestion, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// MarkInProgress transitions pending→in_progress. Returns false if the
// ingestion was not in pending status.
func (r *IngestionRepo) MarkInProgress(ctx context.Context, id string) (bool, error) {
	return r.guardedUpdate(ctx, `
		UPDATE ingestions
		SET status = 'in_progress', updated_at = $2
		WHERE id = $1 AND status = 'pending'
	`, id, r.timeProvider.Now().UTC())
}

// MarkCompleted transitions in_progress→completed, stamps completed_at, and
// merges the executor result into metadata under the "result" key.
func (r *IngestionRepo) MarkCompleted(ctx context.Context, id string, result json.RawMessage) (bool, error) {
	var res any
	if len(result) > 0 {
		res = []byte(result)
	}
	return r.guardedUpdate(ctx, `
		UPDATE ingestions
		SET status = 'completed',
		    completed_at = $2,
		    updated_at = $2,
		    metadata = CASE
		      WHEN $3::jsonb IS NULL THEN metadata
		      ELSE metadata || jsonb_build_object('result', $3::jsonb)
		    END
		WHERE id = $1 AND status = 'in_progress'
	`, id, r.timeProvider.Now().UTC(), res)
}

// MarkFailed transitions in_progress→failed and records the error message.
func (r *IngestionRepo) MarkFailed(ctx context.Context, id, errMsg string) (bool, error) {
	return r.guardedUpdate(ctx, `
		UPDATE ingestions
		SET status = 'failed', last_error = $3, updated_at = $2
		WHERE id = $1 AND status = 'in_progress'
	`, id, r.timeProvider.Now().UTC(), errMsg)
}

// guardedUpdate executes a status-guarded UPDATE and reports whether exactly
// one row was touched.
func (r *IngestionRepo) guardedUpdate(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, apperrors.MapDBError(fmt.Errorf("update ingestion status: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 && r.logger != nil {
		r.logger.DebugContext(ctx, "ingestion status updated", "rows", n)
	}
	return n > 0, nil
}

// Resubmit transitions failed→pending, increments retries, and clears the
// last error. Returns a NotFound error if the ingestion is absent or no
// longer in failed status.
func (r *IngestionRepo) Resubmit(ctx context.Context, id string) (*model.Ingestion, error) {
	var out model.Ingestion
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE ingestions
			SET status = 'pending',
			    retries = retries + 1,
			    last_error = NULL,
			    updated_at = $2
			WHERE id = $1 AND status = 'failed'
			RETURNING `+ingestionColumns,
			id, r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Ingestion])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("ingestion %s is not in a resubmittable state", id)
		}
		return nil, apperrors.MapDBError(fmt.Errorf("resubmit ingestion: %w", err))
	}
	return &out, nil
}
