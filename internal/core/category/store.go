// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// Repository defines the data access contract for categories.
type Repository interface {
	// ListAll returns every category ordered by name.
	ListAll(context context.Context) ([]*Category, error)
	FindBySlug(context context.Context, slug string) (*Category, error)
	Create(context context.Context, category *Category) error
}
