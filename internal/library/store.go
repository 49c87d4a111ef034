// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"time"
)

// Repository defines the data access contract for the reader's library.
type Repository interface {

	// # Progress

	/*
		RecordProgress upserts the (user, summary) row in a single statement.

		Returns:
		  - *Progress: The stored row
		  - error: apperr NotFound when the summary does not exist
	*/
	RecordProgress(context context.Context, userID, summaryID string, progress float64, completed bool) (*Progress, error)

	History(context context.Context, userID string, limit int) ([]*HistoryEntry, error)

	// Stats counts completed rows, their weighted minutes, and those completed since monthStart.
	Stats(context context.Context, userID string, monthStart time.Time) (*Stats, error)

	// # Bookmarks

	// DeleteBookmark reports whether a row was removed.
	DeleteBookmark(context context.Context, userID, summaryID string) (bool, error)

	// InsertBookmark returns apperr Conflict on a duplicate pair.
	InsertBookmark(context context.Context, userID, summaryID string) error

	ListBookmarks(context context.Context, userID string) ([]*Bookmark, error)

	// # Collections

	ListCollections(context context.Context, userID string) ([]*Collection, error)
	FindCollection(context context.Context, id string) (*Collection, error)
	CollectionItems(context context.Context, id string) ([]*Card, error)
	CreateCollection(context context.Context, collection *Collection) error
	UpdateCollection(context context.Context, collection *Collection) error
	DeleteCollection(context context.Context, id string) error

	// AddItem is idempotent.
	AddItem(context context.Context, collectionID, summaryID string) error
	RemoveItem(context context.Context, collectionID, summaryID string) error
}
