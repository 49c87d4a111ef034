// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for the book catalogue.
type Repository interface {

	/*
		List returns a filtered, paginated slice of books and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Title/author substring and category slug)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Book: Books with author name and categories resolved
		  - int: Total count of records matching the filter
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	/*
		FindByID returns the book joined with its author name and categories.

		Returns:
		  - *Book: The hydrated entity
		  - error: apperr NotFound if missing
	*/
	FindByID(context context.Context, id string) (*Book, error)

	/*
		Create inserts the book and its category links in one transaction.

		Parameters:
		  - context: context.Context
		  - book: *Book (ID already assigned)
		  - categoryIDs: []string (May be empty)

		Returns:
		  - error: apperr CATEGORY_LINK_FAILED when a link cannot be written;
		    nothing is persisted in that case
	*/
	Create(context context.Context, book *Book, categoryIDs []string) error

	/*
		Update persists the book's mutable columns. A non-nil categoryIDs
		replaces the existing links within the same transaction.
	*/
	Update(context context.Context, book *Book, categoryIDs *[]string) error

	Delete(context context.Context, id string) error
}
