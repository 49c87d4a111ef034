// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/dberr"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/slug"
	"github.com/taibuivan/briefly/pkg/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListCategories(context context.Context) ([]*Category, error) {
	return service.repo.ListAll(context)
}

func (service *Service) GetCategory(context context.Context, categorySlug string) (*Category, error) {
	return service.repo.FindBySlug(context, strings.ToLower(categorySlug))
}

func (service *Service) CreateCategory(context context.Context, input CreateInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" {
		input.Slug = slug.From(input.Name)
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 100)
	validator.Required(FieldSlug, input.Slug).Slug(FieldSlug, input.Slug).MaxLen(FieldSlug, input.Slug, 100)
	if input.ImageURL != nil && *input.ImageURL != "" {
		validator.URL(FieldImageURL, *input.ImageURL)
	}
	if input.ParentID != nil {
		validator.UUID(FieldParentID, *input.ParentID)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}

	category := &Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		ParentID:    input.ParentID,
	}

	if err := service.repo.Create(context, category); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apperr.Conflict("A category with this slug already exists").WithCause(err)
		}
		return nil, err
	}

	service.logger.Info("category_created", slog.String("category_id", category.ID), slog.String("slug", category.Slug))
	return category, nil
}
