// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/core/author"
	"github.com/taibuivan/briefly/internal/platform/apperr"
)

type memoryRepository struct {
	authors []*author.Author
	creates int
}

func (repository *memoryRepository) List(_ context.Context, _ author.Filter, _, _ int) ([]*author.Author, int, error) {
	return repository.authors, len(repository.authors), nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*author.Author, error) {
	for _, a := range repository.authors {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Author")
}

func (repository *memoryRepository) FindByName(_ context.Context, name string) (*author.Author, error) {
	for _, a := range repository.authors {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return nil, apperr.NotFound("Author")
}

func (repository *memoryRepository) Create(_ context.Context, a *author.Author) error {
	repository.creates++
	repository.authors = append(repository.authors, a)
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, a *author.Author) error {
	for i, existing := range repository.authors {
		if existing.ID == a.ID {
			repository.authors[i] = a
			return nil
		}
	}
	return apperr.NotFound("Author")
}

func newService(repo *memoryRepository) *author.Service {
	return author.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestFindOrCreateByName_ReusesExisting verifies the lookup ignores case.
*/
func TestFindOrCreateByName_ReusesExisting(t *testing.T) {
	repo := &memoryRepository{authors: []*author.Author{{ID: "a-1", Name: "Jane Austen"}}}

	found, err := newService(repo).FindOrCreateByName(context.Background(), "  jane austen ")
	require.NoError(t, err)

	assert.Equal(t, "a-1", found.ID)
	assert.Zero(t, repo.creates)
}

/*
TestFindOrCreateByName_CreatesMissing verifies an unknown name yields a new author.
*/
func TestFindOrCreateByName_CreatesMissing(t *testing.T) {
	repo := &memoryRepository{}

	created, err := newService(repo).FindOrCreateByName(context.Background(), "Cal Newport")
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Cal Newport", created.Name)
	assert.Equal(t, 1, repo.creates)
}

/*
TestFindOrCreateByName_RejectsBlank ensures whitespace never becomes an author.
*/
func TestFindOrCreateByName_RejectsBlank(t *testing.T) {
	_, err := newService(&memoryRepository{}).FindOrCreateByName(context.Background(), "   ")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestUpdateAuthor_Partial verifies nil fields keep their stored values.
*/
func TestUpdateAuthor_Partial(t *testing.T) {
	bio := "Essayist"
	repo := &memoryRepository{authors: []*author.Author{{ID: "a-1", Name: "Old", Bio: &bio}}}

	name := "New"
	updated, err := newService(repo).UpdateAuthor(context.Background(), "a-1", author.UpdateInput{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "Essayist", *updated.Bio)
}

/*
TestCreateAuthor_InvalidImage rejects relative image URLs.
*/
func TestCreateAuthor_InvalidImage(t *testing.T) {
	image := "/images/x.png"
	_, err := newService(&memoryRepository{}).CreateAuthor(context.Background(), author.CreateInput{Name: "A", ImageURL: &image})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Equal(t, author.FieldImageURL, appErr.Details[0].Field)
}
