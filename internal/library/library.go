// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library holds everything a reader keeps about summaries: reading
progress and history, bookmarks, and named collections.

# Invariants

  - Progress is a percentage in [0, 100]; out-of-range values are rejected,
    never clamped. One row per (user, summary); last_read_at never moves back.
  - A bookmark toggle is idempotent under races: a concurrent insert of the
    same pair reports bookmarked = true instead of failing.
  - Adding a summary to a collection twice is a no-op.
*/
package library

import "time"

// # Domain Entities

// Card is the compact summary projection shown in library lists.
type Card struct {
	SummaryID     string  `json:"summary_id"`
	Title         string  `json:"title"`
	ReadingTime   int     `json:"reading_time"`
	IsPremium     bool    `json:"is_premium"`
	AudioURL      *string `json:"audio_url"`
	BookID        string  `json:"book_id"`
	BookTitle     string  `json:"book_title"`
	CoverImageURL *string `json:"cover_image_url"`
	AuthorName    *string `json:"author_name"`
}

// Progress is one reading history row.
type Progress struct {
	UserID     string    `json:"user_id"`
	SummaryID  string    `json:"summary_id"`
	Progress   float64   `json:"progress"`
	Completed  bool      `json:"completed"`
	LastReadAt time.Time `json:"last_read_at"`
}

// HistoryEntry is a reading history row joined with its summary card.
type HistoryEntry struct {
	Card
	Progress   float64   `json:"progress"`
	Completed  bool      `json:"completed"`
	LastReadAt time.Time `json:"last_read_at"`
}

// Bookmark is a bookmarked summary card.
type Bookmark struct {
	Card
	CreatedAt time.Time `json:"created_at"`
}

// ToggleResult reports the bookmark state after a toggle.
type ToggleResult struct {
	Bookmarked bool `json:"bookmarked"`
}

// Stats aggregates a reader's completed reading.
type Stats struct {
	TotalSummariesRead int `json:"total_summaries_read"`
	TotalMinutesRead   int `json:"total_minutes_read"`
	SummariesThisMonth int `json:"summaries_this_month"`
}

// Collection is a named list of summaries owned by one reader.
type Collection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"is_public"`
	ItemCount   int       `json:"item_count"`
	Items       []*Card   `json:"items,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProgressInput is the payload of a progress update.
type ProgressInput struct {
	Progress *float64 `json:"progress"`
}

// CollectionInput creates a collection.
type CollectionInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	IsPublic    bool    `json:"is_public"`
}

// CollectionUpdate is a partial collection update.
type CollectionUpdate struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// Field names for validation
const (
	FieldProgress    = "progress"
	FieldName        = "name"
	FieldDescription = "description"
	FieldLimit       = "limit"
)

const (
	defaultHistoryLimit  = 20
	maxHistoryLimit      = 100
	maxCollectionName    = 100
	maxCollectionDetails = 500
)
