// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/briefly/internal/core/summary"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/database/schema"
	"github.com/taibuivan/briefly/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new generation request repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var requestColumns = strings.Join([]string{
	schema.GenerationRequest.ID, schema.GenerationRequest.BookID, schema.GenerationRequest.RequestedBy,
	schema.GenerationRequest.Status, schema.GenerationRequest.Settings, schema.GenerationRequest.SourceURL,
	schema.GenerationRequest.SourceText, schema.GenerationRequest.ResultSummaryID,
	schema.GenerationRequest.ErrorMessage, schema.GenerationRequest.CreatedAt, schema.GenerationRequest.UpdatedAt,
}, ", ")

func scanRequest(row pgx.Row) (*Request, error) {
	r := &Request{}
	err := row.Scan(
		&r.ID, &r.BookID, &r.RequestedBy, &r.Status, &r.Settings, &r.SourceURL,
		&r.SourceText, &r.ResultSummaryID, &r.ErrorMessage, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

func (repository *PostgresRepository) Create(context context.Context, r *Request) error {
	g := schema.GenerationRequest
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s
	`,
		g.Table, g.ID, g.BookID, g.RequestedBy, g.Status, g.Settings, g.SourceURL, g.SourceText, g.CreatedAt, g.UpdatedAt,
		g.CreatedAt, g.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		r.ID, r.BookID, r.RequestedBy, r.Status, r.Settings, r.SourceURL, r.SourceText,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Book").WithCause(err)
		}
		return dberr.Wrap(err, "create_generation_request")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		requestColumns, schema.GenerationRequest.Table, schema.GenerationRequest.ID,
	)

	r, err := scanRequest(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Generation request", "get_generation_request")
	}
	return r, nil
}

func (repository *PostgresRepository) List(context context.Context, status Status, limit, offset int) ([]*Request, int, error) {
	g := schema.GenerationRequest
	where := fmt.Sprintf(`WHERE ($1::text = '' OR %s = $1::text)`, g.Status)

	var total int
	count := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, g.Table, where)
	if err := repository.pool.QueryRow(context, count, string(status)).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_generation_requests")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s DESC LIMIT $2 OFFSET $3`,
		requestColumns, g.Table, where, g.CreatedAt,
	)
	rows, err := repository.pool.Query(context, query, string(status), limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_generation_requests")
	}
	defer rows.Close()

	requests := []*Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_generation_request")
		}
		requests = append(requests, r)
	}
	return requests, total, dberr.Wrap(rows.Err(), "list_generation_requests")
}

/*
ClaimPending moves the oldest pending request to processing.

Description: The inner SELECT takes a row lock with SKIP LOCKED so that
concurrent workers pick different rows instead of queueing on the same one.
The partial index on (book_id, created_at) WHERE status = 'pending' serves it.
*/
func (repository *PostgresRepository) ClaimPending(context context.Context, bookID string) (*Request, error) {
	g := schema.GenerationRequest
	query := fmt.Sprintf(`
		UPDATE %s SET %s = '%s', %s = NOW()
		WHERE %s = (
			SELECT %s FROM %s
			WHERE %s = '%s' AND ($1::text = '' OR %s::text = $1::text)
			ORDER BY %s
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s
	`,
		g.Table, g.Status, StatusProcessing, g.UpdatedAt,
		g.ID,
		g.ID, g.Table,
		g.Status, StatusPending, g.BookID,
		g.CreatedAt,
		requestColumns,
	)

	r, err := scanRequest(repository.pool.QueryRow(context, query, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, dberr.Wrap(err, "claim_generation_request")
	}
	return r, nil
}

/*
Complete writes the generated summary and closes the request.

Description: The request row is locked first and must still be processing.
The summary, its insights and the status change commit together; any error
rolls all of them back so no orphan summary is left behind.
*/
func (repository *PostgresRepository) Complete(context context.Context, requestID string, result *summary.Summary) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_complete_generation")
	}
	defer func() { _ = transaction.Rollback(context) }()

	g := schema.GenerationRequest

	// ── 1. Lock the request ───────────────────────────────────────────────
	var status Status
	lock := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`, g.Status, g.Table, g.ID)
	if err := transaction.QueryRow(context, lock, requestID).Scan(&status); err != nil {
		return dberr.NotFoundAs(err, "Generation request", "lock_generation_request")
	}
	if status != StatusProcessing {
		return apperr.Conflict(fmt.Sprintf("Generation request is %s", status))
	}

	// ── 2. Insert summary and insights ────────────────────────────────────
	if err := summary.InsertTx(context, transaction, result); err != nil {
		return err
	}

	// ── 3. Close the request ──────────────────────────────────────────────
	update := fmt.Sprintf(`
		UPDATE %s SET %s = '%s', %s = $2, %s = NULL, %s = NOW()
		WHERE %s = $1
	`,
		g.Table, g.Status, StatusCompleted, g.ResultSummaryID, g.ErrorMessage, g.UpdatedAt,
		g.ID,
	)
	if _, err := transaction.Exec(context, update, requestID, result.ID); err != nil {
		return dberr.Wrap(err, "complete_generation_request")
	}

	return dberr.Wrap(transaction.Commit(context), "commit_complete_generation")
}

func (repository *PostgresRepository) Fail(context context.Context, requestID, message string) error {
	g := schema.GenerationRequest
	query := fmt.Sprintf(`
		UPDATE %s SET %s = '%s', %s = $2, %s = NOW()
		WHERE %s = $1 AND %s = '%s'
	`,
		g.Table, g.Status, StatusFailed, g.ErrorMessage, g.UpdatedAt,
		g.ID, g.Status, StatusProcessing,
	)

	tag, err := repository.pool.Exec(context, query, requestID, message)
	if err != nil {
		return dberr.Wrap(err, "fail_generation_request")
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("Generation request is not processing")
	}
	return nil
}
