// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/uuid"
)

// Service orchestrates author lookups and curation.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new author [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.List(context, filter, limit, offset)
}

func (service *Service) GetAuthor(context context.Context, id string) (*Author, error) {
	return service.repo.FindByID(context, id)
}

func (service *Service) CreateAuthor(context context.Context, input CreateInput) (*Author, error) {
	input.Name = strings.TrimSpace(input.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, maxNameLength)
	validateOptional(validator, input.Bio, input.ImageURL)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	author := &Author{
		ID:       uuid.New(),
		Name:     input.Name,
		Bio:      input.Bio,
		ImageURL: input.ImageURL,
	}

	if err := service.repo.Create(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_created", slog.String("author_id", author.ID), slog.String("name", author.Name))
	return author, nil
}

func (service *Service) UpdateAuthor(context context.Context, id string, input UpdateInput) (*Author, error) {
	validator := &validate.Validator{}
	if input.Name != nil {
		*input.Name = strings.TrimSpace(*input.Name)
		validator.Required(FieldName, *input.Name).MaxLen(FieldName, *input.Name, maxNameLength)
	}
	validateOptional(validator, input.Bio, input.ImageURL)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	author, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		author.Name = *input.Name
	}
	if input.Bio != nil {
		author.Bio = input.Bio
	}
	if input.ImageURL != nil {
		author.ImageURL = input.ImageURL
	}

	if err := service.repo.Update(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_updated", slog.String("author_id", author.ID))
	return author, nil
}

/*
FindOrCreateByName resolves a free-text author name to an author record.

Description: The lookup is case-insensitive ("jane austen" resolves to "Jane Austen").
When nothing matches, a new author is created with the name as given.

Parameters:
  - context: context.Context
  - name: string (Trimmed before use)

Returns:
  - *Author: The existing or newly created author
  - error: Validation failures for blank names, storage failures otherwise
*/
func (service *Service) FindOrCreateByName(context context.Context, name string) (*Author, error) {
	name = strings.TrimSpace(name)

	validator := &validate.Validator{}
	if err := validator.Required(FieldName, name).MaxLen(FieldName, name, maxNameLength).Err(); err != nil {
		return nil, err
	}

	// ── 1. Existing author ──
	existing, err := service.repo.FindByName(context, name)
	if err == nil {
		return existing, nil
	}
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	// ── 2. New author ──
	return service.CreateAuthor(context, CreateInput{Name: name})
}

func validateOptional(validator *validate.Validator, bio, imageURL *string) {
	if bio != nil {
		validator.MaxLen(FieldBio, *bio, maxBioLength)
	}
	if imageURL != nil && *imageURL != "" {
		validator.URL(FieldImageURL, *imageURL)
	}
}
