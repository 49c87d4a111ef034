// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/database/schema"
	"github.com/taibuivan/briefly/internal/platform/dberr"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new summary repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Query Fragments

// selectSummary projects a summary joined with its book (b) and author (a).
var selectSummary = fmt.Sprintf(`
	SELECT s.%s, s.%s, b.%s, b.%s, a.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s
	FROM %s s
	JOIN %s b ON b.%s = s.%s
	LEFT JOIN %s a ON a.%s = b.%s
`,
	schema.CoreSummary.ID, schema.CoreSummary.BookID, schema.CoreBook.Title, schema.CoreBook.CoverImageURL,
	schema.CoreAuthor.Name, schema.CoreSummary.Title, schema.CoreSummary.Subtitle, schema.CoreSummary.TextContent,
	schema.CoreSummary.ReadingTime, schema.CoreSummary.AudioURL, schema.CoreSummary.AudioDuration,
	schema.CoreSummary.IsPremium, schema.CoreSummary.IsPublished, schema.CoreSummary.Version,
	schema.CoreSummary.CreatedBy, schema.CoreSummary.CreatedAt, schema.CoreSummary.UpdatedAt,
	schema.CoreSummary.Table,
	schema.CoreBook.Table, schema.CoreBook.ID, schema.CoreSummary.BookID,
	schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreBook.AuthorID,
)

func scanSummary(row pgx.Row) (*Summary, error) {
	s := &Summary{}
	err := row.Scan(
		&s.ID, &s.BookID, &s.BookTitle, &s.CoverImageURL, &s.AuthorName, &s.Title, &s.Subtitle, &s.TextContent,
		&s.ReadingTime, &s.AudioURL, &s.AudioDuration, &s.IsPremium, &s.IsPublished, &s.Version,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func collectSummaries(rows pgx.Rows, action string) ([]*Summary, error) {
	defer rows.Close()

	summaries := []*Summary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		summaries = append(summaries, s)
	}
	return summaries, dberr.Wrap(rows.Err(), action)
}

// # Reads

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Summary, error) {
	query := selectSummary + fmt.Sprintf(` WHERE s.%s = $1`, schema.CoreSummary.ID)

	s, err := scanSummary(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Summary", "get_summary")
	}

	insightsQuery := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.CoreKeyInsight.ID, schema.CoreKeyInsight.Title, schema.CoreKeyInsight.Content, schema.CoreKeyInsight.OrderIndex,
		schema.CoreKeyInsight.Table, schema.CoreKeyInsight.SummaryID, schema.CoreKeyInsight.OrderIndex,
	)

	rows, err := repository.pool.Query(context, insightsQuery, id)
	if err != nil {
		return nil, dberr.Wrap(err, "list_key_insights")
	}
	defer rows.Close()

	s.Insights = []*Insight{}
	for rows.Next() {
		insight := &Insight{}
		if err := rows.Scan(&insight.ID, &insight.Title, &insight.Content, &insight.OrderIndex); err != nil {
			return nil, dberr.Wrap(err, "scan_key_insight")
		}
		s.Insights = append(s.Insights, insight)
	}
	return s, dberr.Wrap(rows.Err(), "list_key_insights")
}

func (repository *PostgresRepository) ListForBook(context context.Context, bookID string, includeDrafts bool) ([]*Summary, error) {
	query := selectSummary + fmt.Sprintf(` WHERE s.%s = $1 AND (s.%s OR $2) ORDER BY s.%s DESC`,
		schema.CoreSummary.BookID, schema.CoreSummary.IsPublished, schema.CoreSummary.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, bookID, includeDrafts)
	if err != nil {
		return nil, dberr.Wrap(err, "list_book_summaries")
	}
	return collectSummaries(rows, "list_book_summaries")
}

/*
Search runs the ranked advanced search.

Description: The clause from [buildSearch] only contains placeholders; limit
and offset are appended as two more bound arguments.
*/
func (repository *PostgresRepository) Search(context context.Context, filter SearchFilter, limit, offset int) ([]*Summary, int, error) {
	clause := buildSearch(filter)

	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s s WHERE %s`, schema.CoreSummary.Table, clause.where)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, clause.args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_search_results")
	}

	args := append(clause.args, limit, offset)
	query := selectSummary + fmt.Sprintf(` WHERE %s ORDER BY %s DESC, s.%s DESC LIMIT $%s OFFSET $%s`,
		clause.where, clause.rank, schema.CoreSummary.CreatedAt,
		strconv.Itoa(len(args)-1), strconv.Itoa(len(args)),
	)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "search_summaries")
	}

	summaries, err := collectSummaries(rows, "search_summaries")
	return summaries, total, err
}

// # Writes

func (repository *PostgresRepository) Create(context context.Context, s *Summary) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_summary")
	}
	defer transaction.Rollback(context)

	if err := InsertTx(context, transaction, s); err != nil {
		return err
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_summary")
	}
	return nil
}

/*
InsertTx writes a summary row and its insights inside an open transaction.

Description: Shared with the generation worker, which inserts the summary in
the same transaction that completes its request. Insights without an id get one.
*/
func InsertTx(context context.Context, transaction pgx.Tx, s *Summary) error {
	c := schema.CoreSummary
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		c.Table, c.ID, c.BookID, c.Title, c.Subtitle, c.TextContent, c.ReadingTime, c.IsPremium, c.IsPublished,
		c.Version, c.CreatedBy, c.CreatedAt, c.UpdatedAt,
		c.Version, c.CreatedAt, c.UpdatedAt,
	)

	err := transaction.QueryRow(context, query,
		s.ID, s.BookID, s.Title, s.Subtitle, s.TextContent, s.ReadingTime, s.IsPremium, s.IsPublished, s.CreatedBy,
	).Scan(&s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_summary")
	}

	if len(s.Insights) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		schema.CoreKeyInsight.Table, schema.CoreKeyInsight.ID, schema.CoreKeyInsight.SummaryID,
		schema.CoreKeyInsight.Title, schema.CoreKeyInsight.Content, schema.CoreKeyInsight.OrderIndex,
	)

	batch := &pgx.Batch{}
	for _, insight := range s.Insights {
		if insight.ID == "" {
			insight.ID = uuid.New()
		}
		batch.Queue(insert, insight.ID, s.ID, insight.Title, insight.Content, insight.OrderIndex)
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return dberr.Wrap(err, "insert_key_insights")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, s *Summary) error {
	c := schema.CoreSummary
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = %s + 1, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		c.Table, c.Title, c.Subtitle, c.TextContent, c.ReadingTime, c.IsPremium, c.Version, c.Version, c.UpdatedAt,
		c.ID,
		c.Version, c.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, s.ID, s.Title, s.Subtitle, s.TextContent, s.ReadingTime, s.IsPremium).
		Scan(&s.Version, &s.UpdatedAt)
	if err != nil {
		return dberr.NotFoundAs(err, "Summary", "update_summary")
	}
	return nil
}

func (repository *PostgresRepository) SetPublished(context context.Context, id string, published bool) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.CoreSummary.Table, schema.CoreSummary.IsPublished, schema.CoreSummary.UpdatedAt, schema.CoreSummary.ID,
	)
	return repository.execOne(context, "set_summary_published", query, id, published)
}

func (repository *PostgresRepository) SetAudio(context context.Context, id, audioURL string, durationSeconds int) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = NOW() WHERE %s = $1`,
		schema.CoreSummary.Table, schema.CoreSummary.AudioURL, schema.CoreSummary.AudioDuration,
		schema.CoreSummary.UpdatedAt, schema.CoreSummary.ID,
	)
	return repository.execOne(context, "set_summary_audio", query, id, audioURL, durationSeconds)
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreSummary.Table, schema.CoreSummary.ID)
	return repository.execOne(context, "delete_summary", query, id)
}

// execOne runs a single-row mutation and reports NotFound when nothing matched.
func (repository *PostgresRepository) execOne(context context.Context, action, query string, args ...any) error {
	tag, err := repository.pool.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, action)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Summary")
	}
	return nil
}
