// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/core/category"
	"github.com/taibuivan/briefly/internal/platform/apperr"
)

type memoryRepository struct {
	created []*category.Category
	err     error
}

func (repository *memoryRepository) ListAll(context.Context) ([]*category.Category, error) {
	return repository.created, nil
}

func (repository *memoryRepository) FindBySlug(_ context.Context, slug string) (*category.Category, error) {
	for _, c := range repository.created {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, apperr.NotFound("Category")
}

func (repository *memoryRepository) Create(_ context.Context, c *category.Category) error {
	if repository.err != nil {
		return repository.err
	}
	repository.created = append(repository.created, c)
	return nil
}

func newService(repo *memoryRepository) *category.Service {
	return category.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestCreateCategory_DerivesSlug verifies the slug falls back to the normalised name.
*/
func TestCreateCategory_DerivesSlug(t *testing.T) {
	repo := &memoryRepository{}

	created, err := newService(repo).CreateCategory(context.Background(), category.CreateInput{Name: "Self Improvement & Growth"})
	require.NoError(t, err)

	assert.Equal(t, "self-improvement-growth", created.Slug)

	found, err := newService(repo).GetCategory(context.Background(), "SELF-IMPROVEMENT-GROWTH")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

/*
TestCreateCategory_Validation rejects malformed slugs and parent ids.
*/
func TestCreateCategory_Validation(t *testing.T) {
	parent := "not-a-uuid"
	_, err := newService(&memoryRepository{}).CreateCategory(context.Background(), category.CreateInput{
		Name:     "Business",
		Slug:     "Bad Slug",
		ParentID: &parent,
	})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Len(t, appErr.Details, 2)
}

/*
TestCreateCategory_DuplicateSlug maps the unique violation to a conflict.
*/
func TestCreateCategory_DuplicateSlug(t *testing.T) {
	repo := &memoryRepository{err: apperr.Conflict("Resource already exists")}

	_, err := newService(repo).CreateCategory(context.Background(), category.CreateInput{Name: "Business"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}
