// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package generation drafts summaries with an AI text generator.

An administrator files a request for a book; a worker process claims it and
writes an unpublished premium summary. Requests move strictly forward:

	pending -> processing -> completed | failed

Terminal requests are never touched again and failures are not retried.

# Delivery

Creating a request publishes the book id on a redis stream. The stream only
wakes workers up: the pending row in PostgreSQL is the source of truth, and a
periodic poll picks up requests whose wake-up was lost.
*/
package generation

import (
	"time"

	"github.com/taibuivan/briefly/internal/platform/apperr"
)

// Status is the lifecycle state of a [Request].
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether status is one of the known states.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the request can no longer change.
func (status Status) Terminal() bool {
	return status == StatusCompleted || status == StatusFailed
}

// Settings tunes the generated summary.
type Settings struct {
	ReadingTime *int   `json:"reading_time,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

// Request is one generation job.
type Request struct {
	ID              string    `json:"id"`
	BookID          string    `json:"book_id"`
	RequestedBy     string    `json:"requested_by"`
	Status          Status    `json:"status"`
	Settings        Settings  `json:"settings"`
	SourceURL       *string   `json:"source_url"`
	SourceText      *string   `json:"source_text,omitempty"`
	ResultSummaryID *string   `json:"result_summary_id"`
	ErrorMessage    *string   `json:"error_message"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateInput is the payload of a new request.
type CreateInput struct {
	BookID     string   `json:"book_id"`
	Settings   Settings `json:"settings"`
	SourceURL  *string  `json:"source_url"`
	SourceText *string  `json:"source_text"`
}

// CreateResult is a created request plus the best-effort steps that failed.
type CreateResult struct {
	Request  *Request        `json:"request"`
	Warnings apperr.Warnings `json:"warnings"`
}

// Field names for validation
const (
	FieldBookID      = "book_id"
	FieldReadingTime = "settings.reading_time"
	FieldTone        = "settings.tone"
	FieldSourceURL   = "source_url"
	FieldSourceText  = "source_text"
	FieldStatus      = "status"
)

const (
	defaultReadingTime = 15
	maxReadingTime     = 600
	maxToneLength      = 50

	// promptSourceLimit caps how much source text is quoted in the prompt.
	promptSourceLimit = 2000

	// maxInsights caps the key insights extracted from one completion.
	maxInsights = 7

	// maxErrorMessage bounds what is stored in error_message.
	maxErrorMessage = 1000
)
