// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import "context"

// Repository defines the data access contract for authors.
type Repository interface {
	List(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error)
	FindByID(context context.Context, id string) (*Author, error)

	/*
		FindByName returns the oldest author whose name matches case-insensitively.

		Returns:
		  - *Author: The matching author
		  - error: apperr NotFound if no author carries that name
	*/
	FindByName(context context.Context, name string) (*Author, error)

	Create(context context.Context, author *Author) error
	Update(context context.Context, author *Author) error
}
