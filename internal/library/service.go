// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/pointer"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// Service implements progress tracking, bookmarks and collections.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a library [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// # Progress

/*
RecordProgress stores how far a reader got through a summary.

Parameters:
  - context: context.Context
  - userID: string
  - summaryID: string
  - input: ProgressInput

Returns:
  - *Progress: The stored row; Completed is set once progress reaches 100
  - error: ValidationError for values outside [0, 100], NotFound for unknown summaries
*/
func (service *Service) RecordProgress(context context.Context, userID, summaryID string, input ProgressInput) (*Progress, error) {
	validator := &validate.Validator{}
	validator.UUID("summary_id", summaryID)
	if input.Progress == nil {
		validator.Custom(FieldProgress, true, "This field is required")
	} else {
		validator.Between(FieldProgress, *input.Progress, 0, 100)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	progress := *input.Progress
	return service.repo.RecordProgress(context, userID, summaryID, progress, progress >= 100)
}

// History returns the most recently read summaries, newest first.
func (service *Service) History(context context.Context, userID string, limit int) ([]*HistoryEntry, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if err := (&validate.Validator{}).Range(FieldLimit, limit, 1, maxHistoryLimit).Err(); err != nil {
		return nil, err
	}
	return service.repo.History(context, userID, limit)
}

// Stats aggregates the reader's completed summaries; the month starts in UTC.
func (service *Service) Stats(context context.Context, userID string) (*Stats, error) {
	now := service.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return service.repo.Stats(context, userID, monthStart)
}

// # Bookmarks

/*
ToggleBookmark flips the bookmark state of a summary for the reader.

Description: A row is deleted when present, inserted otherwise. When two
toggles race, the losing insert hits the primary key; that means the pair is
bookmarked, so the duplicate is reported as bookmarked = true.
*/
func (service *Service) ToggleBookmark(context context.Context, userID, summaryID string) (*ToggleResult, error) {
	if err := (&validate.Validator{}).UUID("summary_id", summaryID).Err(); err != nil {
		return nil, err
	}

	// ── 1. Remove an existing bookmark ────────────────────────────────────
	removed, err := service.repo.DeleteBookmark(context, userID, summaryID)
	if err != nil {
		return nil, err
	}
	if removed {
		return &ToggleResult{Bookmarked: false}, nil
	}

	// ── 2. Otherwise create it ────────────────────────────────────────────
	if err := service.repo.InsertBookmark(context, userID, summaryID); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			service.logger.DebugContext(context, "bookmark_toggle_race",
				slog.String("user_id", userID), slog.String("summary_id", summaryID))
			return &ToggleResult{Bookmarked: true}, nil
		}
		return nil, err
	}
	return &ToggleResult{Bookmarked: true}, nil
}

// Bookmarks lists the reader's bookmarks, newest first.
func (service *Service) Bookmarks(context context.Context, userID string) ([]*Bookmark, error) {
	return service.repo.ListBookmarks(context, userID)
}

// # Collections

// Collections lists the reader's collections with item counts.
func (service *Service) Collections(context context.Context, userID string) ([]*Collection, error) {
	return service.repo.ListCollections(context, userID)
}

/*
Collection returns one collection with its items.

Description: Owners always see their collections. Other callers, including
anonymous ones (empty callerID), only see public collections; a private
collection is reported as missing rather than forbidden.
*/
func (service *Service) Collection(context context.Context, callerID, id string) (*Collection, error) {
	collection, err := service.repo.FindCollection(context, id)
	if err != nil {
		return nil, err
	}
	if collection.UserID != callerID && !collection.IsPublic {
		return nil, apperr.NotFound("Collection")
	}

	items, err := service.repo.CollectionItems(context, id)
	if err != nil {
		return nil, err
	}
	collection.Items = items
	return collection, nil
}

func (service *Service) CreateCollection(context context.Context, userID string, input CollectionInput) (*Collection, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateCollection(input.Name, input.Description); err != nil {
		return nil, err
	}

	collection := &Collection{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		IsPublic:    input.IsPublic,
	}
	if err := service.repo.CreateCollection(context, collection); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "collection_created",
		slog.String("collection_id", collection.ID), slog.String("user_id", userID))
	return collection, nil
}

func (service *Service) UpdateCollection(context context.Context, userID, id string, input CollectionUpdate) (*Collection, error) {
	collection, err := service.owned(context, userID, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(pointer.Fallback(input.Name, collection.Name))
	description := collection.Description
	if input.Description != nil {
		description = input.Description
	}
	if err := validateCollection(name, description); err != nil {
		return nil, err
	}

	collection.Name = name
	collection.Description = description
	collection.IsPublic = pointer.Fallback(input.IsPublic, collection.IsPublic)

	if err := service.repo.UpdateCollection(context, collection); err != nil {
		return nil, err
	}
	return collection, nil
}

func (service *Service) DeleteCollection(context context.Context, userID, id string) error {
	if _, err := service.owned(context, userID, id); err != nil {
		return err
	}
	return service.repo.DeleteCollection(context, id)
}

// AddItem adds a summary to the reader's collection. Adding it twice is a no-op.
func (service *Service) AddItem(context context.Context, userID, id, summaryID string) error {
	if err := (&validate.Validator{}).UUID("summary_id", summaryID).Err(); err != nil {
		return err
	}
	if _, err := service.owned(context, userID, id); err != nil {
		return err
	}
	return service.repo.AddItem(context, id, summaryID)
}

func (service *Service) RemoveItem(context context.Context, userID, id, summaryID string) error {
	if _, err := service.owned(context, userID, id); err != nil {
		return err
	}
	return service.repo.RemoveItem(context, id, summaryID)
}

// owned loads a collection the caller may mutate. Private collections of
// other readers stay invisible; public ones are visible but read-only.
func (service *Service) owned(context context.Context, userID, id string) (*Collection, error) {
	collection, err := service.repo.FindCollection(context, id)
	if err != nil {
		return nil, err
	}
	if collection.UserID == userID {
		return collection, nil
	}
	if collection.IsPublic {
		return nil, apperr.Forbidden("Only the owner can modify this collection")
	}
	return nil, apperr.NotFound("Collection")
}

func validateCollection(name string, description *string) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, maxCollectionName)
	if description != nil {
		validator.MaxLen(FieldDescription, *description, maxCollectionDetails)
	}
	return validator.Err()
}
