// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import "time"

// Author represents the writer of one or more books in the catalogue.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive substring match on name
}

// CreateInput is the validated payload for a new author.
type CreateInput struct {
	Name     string  `json:"name"`
	Bio      *string `json:"bio"`
	ImageURL *string `json:"image_url"`
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	Name     *string `json:"name"`
	Bio      *string `json:"bio"`
	ImageURL *string `json:"image_url"`
}

// Global field names for validation
const (
	FieldName     = "name"
	FieldBio      = "bio"
	FieldImageURL = "image_url"
)

const (
	maxNameLength = 200
	maxBioLength  = 5000
)
