// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/database/schema"
	"github.com/taibuivan/briefly/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new book repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Query Fragments

// selectBook projects a book row with its author name and an aggregated
// category array, aliased b (books) and a (authors).
var selectBook = fmt.Sprintf(`
	SELECT b.%s, b.%s, b.%s, b.%s, b.%s, a.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s,
	       COALESCE((
	           SELECT json_agg(json_build_object('id', c.%s, 'name', c.%s, 'slug', c.%s) ORDER BY c.%s)
	           FROM %s bc
	           JOIN %s c ON c.%s = bc.%s
	           WHERE bc.%s = b.%s
	       ), '[]'::json)
	FROM %s b
	LEFT JOIN %s a ON a.%s = b.%s
`,
	schema.CoreBook.ID, schema.CoreBook.Title, schema.CoreBook.Description, schema.CoreBook.CoverImageURL,
	schema.CoreBook.AuthorID, schema.CoreAuthor.Name, schema.CoreBook.PublishedYear, schema.CoreBook.ISBN,
	schema.CoreBook.Language, schema.CoreBook.PageCount, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
	schema.CoreCategory.ID, schema.CoreCategory.Name, schema.CoreCategory.Slug, schema.CoreCategory.Name,
	schema.CoreBookCategory.Table,
	schema.CoreCategory.Table, schema.CoreCategory.ID, schema.CoreBookCategory.CategoryID,
	schema.CoreBookCategory.BookID, schema.CoreBook.ID,
	schema.CoreBook.Table,
	schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreBook.AuthorID,
)

func scanBook(row pgx.Row) (*Book, error) {
	b := &Book{}
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &b.CoverImageURL, &b.AuthorID, &b.AuthorName,
		&b.PublishedYear, &b.ISBN, &b.Language, &b.PageCount, &b.CreatedAt, &b.UpdatedAt,
		&b.Categories,
	)
	return b, err
}

// # Reads

func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		placeholder := "$" + strconv.Itoa(len(args))
		conditions = append(conditions, fmt.Sprintf("(b.%s ILIKE %s OR a.%s ILIKE %s)",
			schema.CoreBook.Title, placeholder, schema.CoreAuthor.Name, placeholder))
	}

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM %s bc JOIN %s c ON c.%s = bc.%s
			WHERE bc.%s = b.%s AND c.%s = $%d)`,
			schema.CoreBookCategory.Table, schema.CoreCategory.Table, schema.CoreCategory.ID,
			schema.CoreBookCategory.CategoryID, schema.CoreBookCategory.BookID, schema.CoreBook.ID,
			schema.CoreCategory.Slug, len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	// ── 1. Total ──
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s b LEFT JOIN %s a ON a.%s = b.%s%s`,
		schema.CoreBook.Table, schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreBook.AuthorID, where)

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}

	// ── 2. Page ──
	query := fmt.Sprintf(`%s%s ORDER BY b.%s DESC, b.%s DESC LIMIT $%d OFFSET $%d`,
		selectBook, where, schema.CoreBook.CreatedAt, schema.CoreBook.ID, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, b)
	}

	return books, total, dberr.Wrap(rows.Err(), "list_books")
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Book, error) {
	query := fmt.Sprintf(`%s WHERE b.%s = $1`, selectBook, schema.CoreBook.ID)

	b, err := scanBook(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Book", "get_book")
	}
	return b, nil
}

// # Writes

/*
Create persists a new book and its category links.

Description: The row and its links share one transaction so a failed link never
leaves a book without the categories its creator asked for.
*/
func (repository *PostgresRepository) Create(context context.Context, book *Book, categoryIDs []string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_book")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`,
		schema.CoreBook.Table,
		schema.CoreBook.ID, schema.CoreBook.Title, schema.CoreBook.Description, schema.CoreBook.CoverImageURL,
		schema.CoreBook.AuthorID, schema.CoreBook.PublishedYear, schema.CoreBook.ISBN, schema.CoreBook.Language,
		schema.CoreBook.PageCount, schema.CoreBook.CreatedAt, schema.CoreBook.UpdatedAt,
	)

	if _, err := transaction.Exec(context, query,
		book.ID, book.Title, book.Description, book.CoverImageURL, book.AuthorID,
		book.PublishedYear, book.ISBN, book.Language, book.PageCount,
	); err != nil {
		return dberr.Wrap(err, "create_book")
	}

	if err := linkCategories(context, transaction, book.ID, categoryIDs); err != nil {
		return apperr.CategoryLinkFailed(err)
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_create_book")
	}
	return nil
}

func (repository *PostgresRepository) Update(context context.Context, book *Book, categoryIDs *[]string) error {
	transaction, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_update_book")
	}
	defer transaction.Rollback(context)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = NOW()
		WHERE %s = $1
	`,
		schema.CoreBook.Table,
		schema.CoreBook.Title, schema.CoreBook.Description, schema.CoreBook.CoverImageURL, schema.CoreBook.AuthorID,
		schema.CoreBook.PublishedYear, schema.CoreBook.ISBN, schema.CoreBook.Language, schema.CoreBook.PageCount,
		schema.CoreBook.UpdatedAt, schema.CoreBook.ID,
	)

	tag, err := transaction.Exec(context, query,
		book.ID, book.Title, book.Description, book.CoverImageURL, book.AuthorID,
		book.PublishedYear, book.ISBN, book.Language, book.PageCount,
	)
	if err != nil {
		return dberr.Wrap(err, "update_book")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}

	if categoryIDs != nil {
		clearQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreBookCategory.Table, schema.CoreBookCategory.BookID)
		if _, err := transaction.Exec(context, clearQuery, book.ID); err != nil {
			return dberr.Wrap(err, "clear_book_categories")
		}
		if err := linkCategories(context, transaction, book.ID, *categoryIDs); err != nil {
			return apperr.CategoryLinkFailed(err)
		}
	}

	if err := transaction.Commit(context); err != nil {
		return dberr.Wrap(err, "commit_update_book")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreBook.Table, schema.CoreBook.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}
	return nil
}

// # Helpers

// linkCategories queues one insert per category on the caller's transaction.
func linkCategories(context context.Context, transaction pgx.Tx, bookID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`,
		schema.CoreBookCategory.Table, schema.CoreBookCategory.BookID, schema.CoreBookCategory.CategoryID)

	batch := &pgx.Batch{}
	for _, categoryID := range categoryIDs {
		batch.Queue(query, bookID, categoryID)
	}

	if err := transaction.SendBatch(context, batch).Close(); err != nil {
		return fmt.Errorf("postgres: failed to link categories: %w", err)
	}
	return nil
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}
