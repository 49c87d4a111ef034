// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import "context"

// Repository defines the data access contract for summaries and their insights.
type Repository interface {

	// FindByID returns the summary joined with book and author, insights included.
	FindByID(context context.Context, id string) (*Summary, error)

	// ListForBook returns the summaries of a book, newest first, without insights.
	ListForBook(context context.Context, bookID string, includeDrafts bool) ([]*Summary, error)

	/*
		Search runs the advanced search over published summaries.

		Returns:
		  - []*Summary: The requested page, ranked
		  - int: Total matches
		  - error: Storage failures
	*/
	Search(context context.Context, filter SearchFilter, limit, offset int) ([]*Summary, int, error)

	// Create inserts a summary and its insights in one transaction.
	Create(context context.Context, summary *Summary) error

	// Update writes the editable fields and increments the version.
	Update(context context.Context, summary *Summary) error

	SetPublished(context context.Context, id string, published bool) error
	SetAudio(context context.Context, id, audioURL string, durationSeconds int) error
	Delete(context context.Context, id string) error
}
