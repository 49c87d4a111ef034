// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package summary

import (
	"time"

	"github.com/taibuivan/briefly/internal/platform/apperr"
)

// Summary is a condensed rendition of a book, optionally narrated.
type Summary struct {
	ID            string     `json:"id"`
	BookID        string     `json:"book_id"`
	BookTitle     string     `json:"book_title"`
	CoverImageURL *string    `json:"cover_image_url"`
	AuthorName    *string    `json:"author_name"`
	Title         string     `json:"title"`
	Subtitle      *string    `json:"subtitle"`
	TextContent   string     `json:"text_content"`
	ReadingTime   int        `json:"reading_time"`
	AudioURL      *string    `json:"audio_url"`
	AudioDuration *int       `json:"audio_duration"`
	IsPremium     bool       `json:"is_premium"`
	IsPublished   bool       `json:"is_published"`
	Version       int        `json:"version"`
	CreatedBy     *string    `json:"created_by"`
	Insights      []*Insight `json:"key_insights,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Insight is one ordered key point of a summary.
type Insight struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	OrderIndex int    `json:"order_index"`
}

// Preview is what a caller without a subscription sees of a premium summary.
type Preview struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Subtitle    *string `json:"subtitle"`
	ReadingTime int     `json:"reading_time"`
	Preview     string  `json:"preview"`
}

// SearchFilter holds the advanced search parameters. Every value reaches the
// database as a bound parameter.
type SearchFilter struct {
	Query          string
	Categories     []string
	ReadingTimeMax *int
	AudioOnly      bool

	// IncludePremium is the client's request; ExcludePremium is what the
	// service resolved from it and the caller's subscription.
	IncludePremium bool
	ExcludePremium bool
}

// InsightInput is one key insight of a create payload.
type InsightInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateInput is the validated payload for a new summary.
type CreateInput struct {
	BookID      string         `json:"book_id"`
	Title       string         `json:"title"`
	Subtitle    *string        `json:"subtitle"`
	TextContent string         `json:"text_content"`
	ReadingTime *int           `json:"reading_time"`
	IsPremium   *bool          `json:"is_premium"`
	Insights    []InsightInput `json:"key_insights"`
}

// UpdateInput is a partial update. Changing the content bumps the version.
type UpdateInput struct {
	Title       *string `json:"title"`
	Subtitle    *string `json:"subtitle"`
	TextContent *string `json:"text_content"`
	ReadingTime *int    `json:"reading_time"`
	IsPremium   *bool   `json:"is_premium"`
}

// NarrationResult carries the summary after a narration attempt.
type NarrationResult struct {
	Summary  *Summary        `json:"summary"`
	Warnings apperr.Warnings `json:"warnings"`
}

// Field names for validation
const (
	FieldBookID         = "book_id"
	FieldTitle          = "title"
	FieldSubtitle       = "subtitle"
	FieldTextContent    = "text_content"
	FieldReadingTime    = "reading_time"
	FieldInsights       = "key_insights"
	FieldReadingTimeMax = "reading_time_max"
)

const (
	defaultReadingTime = 15
	maxReadingTime     = 600
	maxTitleLength     = 300
	maxInsights        = 20
	audioFolder        = "audio"
)
