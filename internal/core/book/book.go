// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"time"

	"github.com/taibuivan/briefly/internal/platform/apperr"
)

// Book is a catalogue entry. Readers consume its summaries, not the book itself.
type Book struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   *string       `json:"description"`
	CoverImageURL *string       `json:"cover_image_url"`
	AuthorID      *string       `json:"author_id"`
	AuthorName    *string       `json:"author_name"`
	PublishedYear *int          `json:"published_year"`
	ISBN          *string       `json:"isbn"`
	Language      string        `json:"language"`
	PageCount     *int          `json:"page_count"`
	Categories    []CategoryRef `json:"categories"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CategoryRef is the compact category shape embedded in a [Book].
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Filter holds the parameters for a paginated book listing.
type Filter struct {
	Query        string // Title or author name substring
	CategorySlug string
}

// CreateInput is the validated payload of the admin create operation.
type CreateInput struct {
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	AuthorName    *string  `json:"author_name"`
	PublishedYear *int     `json:"published_year"`
	ISBN          *string  `json:"isbn"`
	Language      string   `json:"language"`
	PageCount     *int     `json:"page_count"`
	CoverImageURL *string  `json:"cover_image_url"`
	CategoryIDs   []string `json:"category_ids"`
}

// UpdateInput is a partial update. A non-nil CategoryIDs replaces the links.
type UpdateInput struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	AuthorName    *string   `json:"author_name"`
	PublishedYear *int      `json:"published_year"`
	ISBN          *string   `json:"isbn"`
	Language      *string   `json:"language"`
	PageCount     *int      `json:"page_count"`
	CoverImageURL *string   `json:"cover_image_url"`
	CategoryIDs   *[]string `json:"category_ids"`
}

// Cover is an uploaded cover image awaiting storage.
type Cover struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CreateResult carries the created book and any best-effort step that failed.
type CreateResult struct {
	Book     *Book           `json:"book"`
	Warnings apperr.Warnings `json:"warnings"`
}

// Global field names for validation
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldAuthorName    = "author_name"
	FieldPublishedYear = "published_year"
	FieldISBN          = "isbn"
	FieldLanguage      = "language"
	FieldPageCount     = "page_count"
	FieldCoverImageURL = "cover_image_url"
	FieldCategoryIDs   = "category_ids"
	FieldCover         = "cover"
)

const (
	defaultLanguage = "en"
	coverFolder     = "covers"

	coverCleanupTimeout = 10 * time.Second
)
