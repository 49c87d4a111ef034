// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/briefly/internal/core/author"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/storage"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/pointer"
	"github.com/taibuivan/briefly/pkg/slice"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// # Collaborators

// AuthorResolver turns a free-text author name into an author record.
type AuthorResolver interface {
	FindOrCreateByName(context context.Context, name string) (*author.Author, error)
}

// FailureRecorder counts best-effort steps that failed.
type FailureRecorder interface {
	RecordBestEffortFailure(step string)
}

type noopRecorder struct{}

func (noopRecorder) RecordBestEffortFailure(string) {}

// # Service Layer

// Service orchestrates catalogue reads and the admin content mutations.
type Service struct {
	repo    Repository
	authors AuthorResolver
	objects storage.ObjectStore
	metrics FailureRecorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs a new book [Service].
//
// objects may be nil when no storage driver is configured; cover uploads then
// degrade to a warning.
func NewService(repo Repository, authors AuthorResolver, objects storage.ObjectStore, metrics FailureRecorder, logger *slog.Logger) *Service {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{
		repo:    repo,
		authors: authors,
		objects: objects,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// # Book Lookups

func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.CategorySlug = strings.ToLower(strings.TrimSpace(filter.CategorySlug))
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetBook(context context.Context, id string) (*Book, error) {
	return service.repo.FindByID(context, id)
}

// # Admin Mutations

/*
CreateBook registers a new book in the catalogue.

Description: The operation composes four steps:
  - a supplied cover is uploaded first; a failed upload is reported as a
    warning and the book is created without a cover
  - a supplied author name is resolved case-insensitively, or created
  - the book row is inserted
  - category links are inserted in the same transaction as the row

Parameters:
  - context: context.Context
  - input: CreateInput
  - cover: *Cover (Optional uploaded image)

Returns:
  - *CreateResult: The joined book plus warnings from best-effort steps
  - error: Validation, author resolution, storage, or CATEGORY_LINK_FAILED
*/
func (service *Service) CreateBook(context context.Context, input CreateInput, cover *Cover) (*CreateResult, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Language == "" {
		input.Language = defaultLanguage
	}
	input.CategoryIDs = normaliseIDs(input.CategoryIDs)

	// ── 1. Validation ──
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, 300)
	service.validateFields(validator, input.Description, input.AuthorName, input.PublishedYear, input.ISBN, &input.Language, input.PageCount, input.CoverImageURL)
	for _, id := range input.CategoryIDs {
		validator.UUID(FieldCategoryIDs, id)
	}
	if cover != nil {
		validator.Custom(FieldCover, !storage.IsImage(cover.ContentType), "Must be an image")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	result := &CreateResult{Warnings: apperr.Warnings{}}

	book := &Book{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		CoverImageURL: input.CoverImageURL,
		PublishedYear: input.PublishedYear,
		ISBN:          input.ISBN,
		Language:      input.Language,
		PageCount:     input.PageCount,
	}
	if book.PublishedYear == nil {
		year := service.now().Year()
		book.PublishedYear = &year
	}

	// ── 2. Cover (best effort) ──
	var coverKey string
	if cover != nil {
		if coverURL, objectPath, ok := service.uploadCover(context, book.ID, cover, &result.Warnings); ok {
			book.CoverImageURL = &coverURL
			coverKey = objectPath
		}
	}

	stored := false
	defer func() {
		if coverKey != "" && !stored {
			service.discardCover(context, book.ID, coverKey)
		}
	}()

	// ── 3. Author ──
	if !pointer.Blank(input.AuthorName) {
		resolved, err := service.authors.FindOrCreateByName(context, *input.AuthorName)
		if err != nil {
			return nil, err
		}
		book.AuthorID = &resolved.ID
	}

	// ── 4. Book row + category links ──
	if err := service.repo.Create(context, book, input.CategoryIDs); err != nil {
		if apperr.HasCode(err, apperr.CodeCategoryLinkFailed) {
			service.logger.WarnContext(context, "book_category_link_failed",
				slog.String("book_id", book.ID),
				slog.Any("error", apperr.As(err).Cause),
			)
		}
		return nil, err
	}
	stored = true

	created, err := service.repo.FindByID(context, book.ID)
	if err != nil {
		return nil, err
	}
	result.Book = created

	service.logger.InfoContext(context, "book_created",
		slog.String("book_id", book.ID),
		slog.Int("categories", len(input.CategoryIDs)),
		slog.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (service *Service) UpdateBook(context context.Context, id string, input UpdateInput) (*Book, error) {
	validator := &validate.Validator{}
	if input.Title != nil {
		*input.Title = strings.TrimSpace(*input.Title)
		validator.Required(FieldTitle, *input.Title).MaxLen(FieldTitle, *input.Title, 300)
	}
	service.validateFields(validator, input.Description, input.AuthorName, input.PublishedYear, input.ISBN, input.Language, input.PageCount, input.CoverImageURL)

	var categoryIDs *[]string
	if input.CategoryIDs != nil {
		normalised := normaliseIDs(*input.CategoryIDs)
		for _, categoryID := range normalised {
			validator.UUID(FieldCategoryIDs, categoryID)
		}
		categoryIDs = &normalised
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	book, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Description != nil {
		book.Description = input.Description
	}
	if input.PublishedYear != nil {
		book.PublishedYear = input.PublishedYear
	}
	if input.ISBN != nil {
		book.ISBN = input.ISBN
	}
	if input.Language != nil {
		book.Language = *input.Language
	}
	if input.PageCount != nil {
		book.PageCount = input.PageCount
	}
	if input.CoverImageURL != nil {
		book.CoverImageURL = input.CoverImageURL
	}
	if input.AuthorName != nil {
		if strings.TrimSpace(*input.AuthorName) == "" {
			book.AuthorID = nil
		} else {
			resolved, err := service.authors.FindOrCreateByName(context, *input.AuthorName)
			if err != nil {
				return nil, err
			}
			book.AuthorID = &resolved.ID
		}
	}

	if err := service.repo.Update(context, book, categoryIDs); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "book_updated", slog.String("book_id", id))
	return service.repo.FindByID(context, id)
}

func (service *Service) DeleteBook(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.WarnContext(context, "book_deleted", slog.String("book_id", id))
	return nil
}

// # Helpers

// uploadCover stores the cover and returns its public URL and object key. It
// reports false (plus a warning) on failure.
func (service *Service) uploadCover(context context.Context, bookID string, cover *Cover, warnings *apperr.Warnings) (string, string, bool) {
	if service.objects == nil {
		warnings.Add(apperr.WarnCoverUploadFailed, "Object storage is not configured; the book was created without a cover")
		service.metrics.RecordBestEffortFailure("cover_upload")
		return "", "", false
	}

	objectPath := storage.ObjectKey(coverFolder+"/"+bookID, cover.Filename, cover.ContentType)
	coverURL, err := service.objects.Upload(context, objectPath, bytes.NewReader(cover.Data), int64(len(cover.Data)), cover.ContentType)
	if err != nil {
		service.logger.WarnContext(context, "cover_upload_failed",
			slog.String("book_id", bookID),
			slog.Any("error", err),
		)
		warnings.Add(apperr.WarnCoverUploadFailed, "The cover image could not be uploaded; the book was created without a cover")
		service.metrics.RecordBestEffortFailure("cover_upload")
		return "", "", false
	}
	return coverURL, objectPath, true
}

// discardCover removes a cover whose book was never stored. A failed delete
// is logged with the key so the object can be cleaned up by hand.
func (service *Service) discardCover(requestContext context.Context, bookID, objectPath string) {
	deleteContext, cancel := context.WithTimeout(context.WithoutCancel(requestContext), coverCleanupTimeout)
	defer cancel()

	if err := service.objects.Delete(deleteContext, objectPath); err != nil {
		service.logger.ErrorContext(requestContext, "cover_orphaned",
			slog.String("book_id", bookID),
			slog.String("object_path", objectPath),
			slog.Any("error", err),
		)
		return
	}
	service.logger.InfoContext(requestContext, "cover_discarded", slog.String("book_id", bookID))
}

func (service *Service) validateFields(validator *validate.Validator, description, authorName *string, publishedYear *int, isbn, language *string, pageCount *int, coverURL *string) {
	if description != nil {
		validator.MaxLen(FieldDescription, *description, 10000)
	}
	if authorName != nil {
		validator.MaxLen(FieldAuthorName, *authorName, 200)
	}
	if publishedYear != nil {
		validator.Range(FieldPublishedYear, *publishedYear, 0, service.now().Year()+1)
	}
	if isbn != nil {
		validator.MaxLen(FieldISBN, *isbn, 20)
	}
	if language != nil {
		validator.Required(FieldLanguage, *language).MaxLen(FieldLanguage, *language, 8)
	}
	if pageCount != nil {
		validator.Custom(FieldPageCount, *pageCount <= 0, "Must be a positive number")
	}
	if coverURL != nil && *coverURL != "" {
		validator.URL(FieldCoverImageURL, *coverURL)
	}
}

// normaliseIDs lowercases, trims and de-duplicates identifiers, keeping order.
func normaliseIDs(ids []string) []string {
	cleaned := slice.Map(ids, func(id string) string {
		return strings.ToLower(strings.TrimSpace(id))
	})
	return slice.Unique(slice.Filter(cleaned, func(id string) bool { return id != "" }))
}
