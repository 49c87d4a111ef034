// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "time"

// Category groups books by subject (e.g. "Productivity", "Psychology").
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	ParentID    *string   `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateInput is the validated payload for a new category.
// Slug is derived from Name when left empty.
type CreateInput struct {
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	ParentID    *string `json:"parent_id"`
}

const (
	FieldName     = "name"
	FieldSlug     = "slug"
	FieldImageURL = "image_url"
	FieldParentID = "parent_id"
)
