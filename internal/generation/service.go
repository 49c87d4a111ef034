// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package generation

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// FailureRecorder counts best-effort steps that failed.
type FailureRecorder interface {
	RecordBestEffortFailure(step string)
}

type noopRecorder struct{}

func (noopRecorder) RecordBestEffortFailure(string) {}

const maxSourceText = 200000

// Service files and inspects generation requests.
type Service struct {
	repo      Repository
	books     BookReader
	publisher Publisher
	metrics   FailureRecorder
	logger    *slog.Logger
}

// NewService constructs a generation [Service]. A nil publisher leaves new
// requests to the worker's poll.
func NewService(repo Repository, books BookReader, publisher Publisher, metrics FailureRecorder, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{repo: repo, books: books, publisher: publisher, metrics: metrics, logger: logger}
}

/*
CreateRequest files a pending request and wakes the workers.

Description: The row is committed before the wake-up is published. A failed
publish does not fail the call: the request stays pending, the worker poll
picks it up, and the caller gets a QUEUE_PUBLISH_FAILED warning.

Parameters:
  - context: context.Context
  - requestedBy: string (Admin user id)
  - input: CreateInput

Returns:
  - *CreateResult: The pending request and any warnings
  - error: ValidationError, or NotFound when the book does not exist
*/
func (service *Service) CreateRequest(context context.Context, requestedBy string, input CreateInput) (*CreateResult, error) {

	// ── 1. Validation ─────────────────────────────────────────────────────
	input.BookID = strings.ToLower(strings.TrimSpace(input.BookID))
	input.Settings.Tone = strings.TrimSpace(input.Settings.Tone)

	validator := &validate.Validator{}
	validator.Required(FieldBookID, input.BookID).UUID(FieldBookID, input.BookID)
	if input.Settings.ReadingTime != nil {
		validator.Range(FieldReadingTime, *input.Settings.ReadingTime, 1, maxReadingTime)
	}
	validator.MaxLen(FieldTone, input.Settings.Tone, maxToneLength)
	if input.SourceURL != nil {
		validator.URL(FieldSourceURL, *input.SourceURL)
	}
	if input.SourceText != nil {
		validator.MaxLen(FieldSourceText, *input.SourceText, maxSourceText)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.books.FindByID(context, input.BookID); err != nil {
		return nil, err
	}

	// ── 2. Persist ────────────────────────────────────────────────────────
	request := &Request{
		ID:          uuid.New(),
		BookID:      input.BookID,
		RequestedBy: requestedBy,
		Status:      StatusPending,
		Settings:    input.Settings,
		SourceURL:   input.SourceURL,
		SourceText:  input.SourceText,
	}
	if err := service.repo.Create(context, request); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "generation_requested",
		slog.String("request_id", request.ID),
		slog.String("book_id", request.BookID),
		slog.String("requested_by", requestedBy),
	)

	// ── 3. Wake the workers ───────────────────────────────────────────────
	var warnings apperr.Warnings
	if service.publisher != nil {
		if err := service.publisher.Publish(context, request.BookID); err != nil {
			service.metrics.RecordBestEffortFailure("generation_enqueue")
			service.logger.WarnContext(context, "generation_publish_failed",
				slog.String("request_id", request.ID), slog.Any("error", err))
			warnings.Add(apperr.WarnQueuePublishFailed, "The request will be picked up by the next worker poll")
		}
	}

	return &CreateResult{Request: request, Warnings: warnings.OrEmpty()}, nil
}

// GetRequest returns one request.
func (service *Service) GetRequest(context context.Context, id string) (*Request, error) {
	return service.repo.FindByID(context, id)
}

// ListRequests lists requests, optionally filtered by status.
func (service *Service) ListRequests(context context.Context, status Status, limit, offset int) ([]*Request, int, error) {
	if status != "" && !status.Valid() {
		return nil, 0, validate.RequiredError(FieldStatus, "Must be one of: pending, processing, completed, failed")
	}
	return service.repo.List(context, status, limit, offset)
}
