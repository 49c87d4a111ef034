// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"time"

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

// NewPostgresRepository creates a new library repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Query Fragments

// cardColumns projects a [Card] from summaries (s), books (b) and authors (a).
var cardColumns = fmt.Sprintf(`s.%s, s.%s, s.%s, s.%s, s.%s, b.%s, b.%s, b.%s, a.%s`,
	schema.CoreSummary.ID, schema.CoreSummary.Title, schema.CoreSummary.ReadingTime,
	schema.CoreSummary.IsPremium, schema.CoreSummary.AudioURL,
	schema.CoreBook.ID, schema.CoreBook.Title, schema.CoreBook.CoverImageURL,
	schema.CoreAuthor.Name,
)

// cardJoins joins the card tables onto an alias whose summary_id column is given.
func cardJoins(summaryColumn string) string {
	return fmt.Sprintf(`
		JOIN %s s ON s.%s = %s
		JOIN %s b ON b.%s = s.%s
		LEFT JOIN %s a ON a.%s = b.%s
	`,
		schema.CoreSummary.Table, schema.CoreSummary.ID, summaryColumn,
		schema.CoreBook.Table, schema.CoreBook.ID, schema.CoreSummary.BookID,
		schema.CoreAuthor.Table, schema.CoreAuthor.ID, schema.CoreBook.AuthorID,
	)
}

func (card *Card) targets() []any {
	return []any{
		&card.SummaryID, &card.Title, &card.ReadingTime, &card.IsPremium, &card.AudioURL,
		&card.BookID, &card.BookTitle, &card.CoverImageURL, &card.AuthorName,
	}
}

// # Progress

/*
RecordProgress upserts the (user, summary) row.

Description: The whole write is one INSERT ... ON CONFLICT statement so two
concurrent updates for the same pair cannot interleave. last_read_at takes
the greater of the stored and the new timestamp.
*/
func (repository *PostgresRepository) RecordProgress(context context.Context, userID, summaryID string, progress float64, completed bool) (*Progress, error) {
	h := schema.LibraryReadingHistory
	query := fmt.Sprintf(`
		INSERT INTO %s AS existing (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (%s, %s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = GREATEST(existing.%s, EXCLUDED.%s)
		RETURNING %s, %s, %s::float8, %s, %s
	`,
		h.Table, h.UserID, h.SummaryID, h.Progress, h.Completed, h.LastReadAt,
		h.UserID, h.SummaryID,
		h.Progress, h.Progress,
		h.Completed, h.Completed,
		h.LastReadAt, h.LastReadAt, h.LastReadAt,
		h.UserID, h.SummaryID, h.Progress, h.Completed, h.LastReadAt,
	)

	row := &Progress{}
	err := repository.pool.QueryRow(context, query, userID, summaryID, progress, completed).
		Scan(&row.UserID, &row.SummaryID, &row.Progress, &row.Completed, &row.LastReadAt)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return nil, apperr.NotFound("Summary").WithCause(err)
		}
		return nil, dberr.Wrap(err, "record_progress")
	}
	return row, nil
}

func (repository *PostgresRepository) History(context context.Context, userID string, limit int) ([]*HistoryEntry, error) {
	h := schema.LibraryReadingHistory
	query := fmt.Sprintf(`
		SELECT %s, h.%s::float8, h.%s, h.%s
		FROM %s h
		%s
		WHERE h.%s = $1
		ORDER BY h.%s DESC
		LIMIT $2
	`,
		cardColumns, h.Progress, h.Completed, h.LastReadAt,
		h.Table,
		cardJoins("h."+h.SummaryID),
		h.UserID,
		h.LastReadAt,
	)

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "list_history")
	}
	defer rows.Close()

	entries := []*HistoryEntry{}
	for rows.Next() {
		entry := &HistoryEntry{}
		targets := append(entry.Card.targets(), &entry.Progress, &entry.Completed, &entry.LastReadAt)
		if err := rows.Scan(targets...); err != nil {
			return nil, dberr.Wrap(err, "scan_history")
		}
		entries = append(entries, entry)
	}
	return entries, dberr.Wrap(rows.Err(), "list_history")
}

func (repository *PostgresRepository) Stats(context context.Context, userID string, monthStart time.Time) (*Stats, error) {
	h := schema.LibraryReadingHistory
	query := fmt.Sprintf(`
		SELECT
			COUNT(*) FILTER (WHERE h.%s),
			COALESCE(ROUND(SUM(s.%s * h.%s / 100)), 0)::int,
			COUNT(*) FILTER (WHERE h.%s AND h.%s >= $2)
		FROM %s h
		JOIN %s s ON s.%s = h.%s
		WHERE h.%s = $1
	`,
		h.Completed,
		schema.CoreSummary.ReadingTime, h.Progress,
		h.Completed, h.LastReadAt,
		h.Table,
		schema.CoreSummary.Table, schema.CoreSummary.ID, h.SummaryID,
		h.UserID,
	)

	stats := &Stats{}
	err := repository.pool.QueryRow(context, query, userID, monthStart).
		Scan(&stats.TotalSummariesRead, &stats.TotalMinutesRead, &stats.SummariesThisMonth)
	if err != nil {
		return nil, dberr.Wrap(err, "reading_stats")
	}
	return stats, nil
}

// # Bookmarks

func (repository *PostgresRepository) DeleteBookmark(context context.Context, userID, summaryID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.LibraryBookmark.Table, schema.LibraryBookmark.UserID, schema.LibraryBookmark.SummaryID,
	)

	tag, err := repository.pool.Exec(context, query, userID, summaryID)
	if err != nil {
		return false, dberr.Wrap(err, "delete_bookmark")
	}
	return tag.RowsAffected() > 0, nil
}

func (repository *PostgresRepository) InsertBookmark(context context.Context, userID, summaryID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())`,
		schema.LibraryBookmark.Table, schema.LibraryBookmark.UserID, schema.LibraryBookmark.SummaryID,
		schema.LibraryBookmark.CreatedAt,
	)

	if _, err := repository.pool.Exec(context, query, userID, summaryID); err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Summary").WithCause(err)
		}
		return dberr.Wrap(err, "insert_bookmark")
	}
	return nil
}

func (repository *PostgresRepository) ListBookmarks(context context.Context, userID string) ([]*Bookmark, error) {
	k := schema.LibraryBookmark
	query := fmt.Sprintf(`
		SELECT %s, k.%s
		FROM %s k
		%s
		WHERE k.%s = $1
		ORDER BY k.%s DESC
	`,
		cardColumns, k.CreatedAt,
		k.Table,
		cardJoins("k."+k.SummaryID),
		k.UserID,
		k.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_bookmarks")
	}
	defer rows.Close()

	bookmarks := []*Bookmark{}
	for rows.Next() {
		bookmark := &Bookmark{}
		if err := rows.Scan(append(bookmark.Card.targets(), &bookmark.CreatedAt)...); err != nil {
			return nil, dberr.Wrap(err, "scan_bookmark")
		}
		bookmarks = append(bookmarks, bookmark)
	}
	return bookmarks, dberr.Wrap(rows.Err(), "list_bookmarks")
}

// # Collections

// selectCollection projects a collection (c) with its item count.
var selectCollection = fmt.Sprintf(`
	SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
		(SELECT COUNT(*) FROM %s i WHERE i.%s = c.%s)::int
	FROM %s c
`,
	schema.LibraryCollection.ID, schema.LibraryCollection.UserID, schema.LibraryCollection.Name,
	schema.LibraryCollection.Description, schema.LibraryCollection.IsPublic,
	schema.LibraryCollection.CreatedAt, schema.LibraryCollection.UpdatedAt,
	schema.LibraryCollectionItem.Table, schema.LibraryCollectionItem.CollectionID, schema.LibraryCollection.ID,
	schema.LibraryCollection.Table,
)

func scanCollection(row pgx.Row) (*Collection, error) {
	c := &Collection{}
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.IsPublic, &c.CreatedAt, &c.UpdatedAt, &c.ItemCount)
	return c, err
}

func (repository *PostgresRepository) ListCollections(context context.Context, userID string) ([]*Collection, error) {
	query := selectCollection + fmt.Sprintf(` WHERE c.%s = $1 ORDER BY c.%s DESC`,
		schema.LibraryCollection.UserID, schema.LibraryCollection.UpdatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_collections")
	}
	defer rows.Close()

	collections := []*Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_collection")
		}
		collections = append(collections, c)
	}
	return collections, dberr.Wrap(rows.Err(), "list_collections")
}

func (repository *PostgresRepository) FindCollection(context context.Context, id string) (*Collection, error) {
	query := selectCollection + fmt.Sprintf(` WHERE c.%s = $1`, schema.LibraryCollection.ID)

	c, err := scanCollection(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Collection", "get_collection")
	}
	return c, nil
}

func (repository *PostgresRepository) CollectionItems(context context.Context, id string) ([]*Card, error) {
	i := schema.LibraryCollectionItem
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s i
		%s
		WHERE i.%s = $1
		ORDER BY i.%s DESC
	`,
		cardColumns,
		i.Table,
		cardJoins("i."+i.SummaryID),
		i.CollectionID,
		i.AddedAt,
	)

	rows, err := repository.pool.Query(context, query, id)
	if err != nil {
		return nil, dberr.Wrap(err, "list_collection_items")
	}
	defer rows.Close()

	cards := []*Card{}
	for rows.Next() {
		card := &Card{}
		if err := rows.Scan(card.targets()...); err != nil {
			return nil, dberr.Wrap(err, "scan_collection_item")
		}
		cards = append(cards, card)
	}
	return cards, dberr.Wrap(rows.Err(), "list_collection_items")
}

func (repository *PostgresRepository) CreateCollection(context context.Context, c *Collection) error {
	s := schema.LibraryCollection
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s
	`,
		s.Table, s.ID, s.UserID, s.Name, s.Description, s.IsPublic, s.CreatedAt, s.UpdatedAt,
		s.CreatedAt, s.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, c.ID, c.UserID, c.Name, c.Description, c.IsPublic).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_collection")
}

func (repository *PostgresRepository) UpdateCollection(context context.Context, c *Collection) error {
	s := schema.LibraryCollection
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		s.Table, s.Name, s.Description, s.IsPublic, s.UpdatedAt,
		s.ID,
		s.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, c.ID, c.Name, c.Description, c.IsPublic).Scan(&c.UpdatedAt)
	if err != nil {
		return dberr.NotFoundAs(err, "Collection", "update_collection")
	}
	return nil
}

func (repository *PostgresRepository) DeleteCollection(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.LibraryCollection.Table, schema.LibraryCollection.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_collection")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Collection")
	}
	return nil
}

/*
AddItem links a summary to a collection.

Description: The insert and the collection's updated_at bump run in one
transaction. Re-adding an existing pair is absorbed by ON CONFLICT DO NOTHING.
*/
func (repository *PostgresRepository) AddItem(context context.Context, collectionID, summaryID string) error {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_add_item")
	}
	defer func() { _ = tx.Rollback(context) }()

	i := schema.LibraryCollectionItem
	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())
		ON CONFLICT (%s, %s) DO NOTHING
	`,
		i.Table, i.CollectionID, i.SummaryID, i.AddedAt,
		i.CollectionID, i.SummaryID,
	)
	if _, err := tx.Exec(context, insert, collectionID, summaryID); err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.NotFound("Summary").WithCause(err)
		}
		return dberr.Wrap(err, "add_collection_item")
	}

	if err := touchCollection(context, tx, collectionID); err != nil {
		return err
	}

	return dberr.Wrap(tx.Commit(context), "commit_add_item")
}

func (repository *PostgresRepository) RemoveItem(context context.Context, collectionID, summaryID string) error {
	tx, err := repository.pool.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_remove_item")
	}
	defer func() { _ = tx.Rollback(context) }()

	remove := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.LibraryCollectionItem.Table, schema.LibraryCollectionItem.CollectionID, schema.LibraryCollectionItem.SummaryID,
	)
	tag, err := tx.Exec(context, remove, collectionID, summaryID)
	if err != nil {
		return dberr.Wrap(err, "remove_collection_item")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Collection item")
	}

	if err := touchCollection(context, tx, collectionID); err != nil {
		return err
	}

	return dberr.Wrap(tx.Commit(context), "commit_remove_item")
}

func touchCollection(context context.Context, tx pgx.Tx, collectionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1`,
		schema.LibraryCollection.Table, schema.LibraryCollection.UpdatedAt, schema.LibraryCollection.ID,
	)
	_, err := tx.Exec(context, query, collectionID)
	return dberr.Wrap(err, "touch_collection")
}
