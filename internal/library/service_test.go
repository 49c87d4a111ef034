// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/library"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/pkg/pointer"
)

const (
	reader    = "0190a3c4-0000-7000-8000-000000000001"
	stranger  = "0190a3c4-0000-7000-8000-000000000002"
	summaryA  = "0190a3c4-0000-7000-8000-0000000000a1"
	summaryB  = "0190a3c4-0000-7000-8000-0000000000b2"
	missingID = "0190a3c4-0000-7000-8000-0000000000ff"
)

// # Fakes

type pair struct{ user, summary string }

type memoryRepository struct {
	mu          sync.Mutex
	summaries   map[string]bool
	progress    map[pair]*library.Progress
	bookmarks   map[pair]time.Time
	collections map[string]*library.Collection
	items       map[string][]string

	// racingInsert makes the next InsertBookmark fail as if a concurrent
	// request inserted the same pair first.
	racingInsert bool
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		summaries:   map[string]bool{summaryA: true, summaryB: true},
		progress:    map[pair]*library.Progress{},
		bookmarks:   map[pair]time.Time{},
		collections: map[string]*library.Collection{},
		items:       map[string][]string{},
	}
}

func (repository *memoryRepository) RecordProgress(_ context.Context, userID, summaryID string, progress float64, completed bool) (*library.Progress, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if !repository.summaries[summaryID] {
		return nil, apperr.NotFound("Summary")
	}
	row := &library.Progress{UserID: userID, SummaryID: summaryID, Progress: progress, Completed: completed, LastReadAt: time.Now()}
	repository.progress[pair{userID, summaryID}] = row
	return row, nil
}

func (repository *memoryRepository) History(_ context.Context, userID string, limit int) ([]*library.HistoryEntry, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	entries := []*library.HistoryEntry{}
	for key, row := range repository.progress {
		if key.user == userID && len(entries) < limit {
			entries = append(entries, &library.HistoryEntry{Card: library.Card{SummaryID: key.summary}, Progress: row.Progress})
		}
	}
	return entries, nil
}

func (repository *memoryRepository) Stats(context.Context, string, time.Time) (*library.Stats, error) {
	return &library.Stats{}, nil
}

func (repository *memoryRepository) DeleteBookmark(_ context.Context, userID, summaryID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	key := pair{userID, summaryID}
	if _, ok := repository.bookmarks[key]; !ok {
		return false, nil
	}
	delete(repository.bookmarks, key)
	return true, nil
}

func (repository *memoryRepository) InsertBookmark(_ context.Context, userID, summaryID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if !repository.summaries[summaryID] {
		return apperr.NotFound("Summary")
	}
	key := pair{userID, summaryID}
	if repository.racingInsert {
		repository.racingInsert = false
		repository.bookmarks[key] = time.Now()
	}
	if _, ok := repository.bookmarks[key]; ok {
		return apperr.Conflict("Resource already exists")
	}
	repository.bookmarks[key] = time.Now()
	return nil
}

func (repository *memoryRepository) ListBookmarks(_ context.Context, userID string) ([]*library.Bookmark, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	bookmarks := []*library.Bookmark{}
	for key, at := range repository.bookmarks {
		if key.user == userID {
			bookmarks = append(bookmarks, &library.Bookmark{Card: library.Card{SummaryID: key.summary}, CreatedAt: at})
		}
	}
	return bookmarks, nil
}

func (repository *memoryRepository) ListCollections(_ context.Context, userID string) ([]*library.Collection, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	collections := []*library.Collection{}
	for _, c := range repository.collections {
		if c.UserID == userID {
			copied := *c
			copied.ItemCount = len(repository.items[c.ID])
			collections = append(collections, &copied)
		}
	}
	return collections, nil
}

func (repository *memoryRepository) FindCollection(_ context.Context, id string) (*library.Collection, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	c, ok := repository.collections[id]
	if !ok {
		return nil, apperr.NotFound("Collection")
	}
	copied := *c
	copied.ItemCount = len(repository.items[id])
	return &copied, nil
}

func (repository *memoryRepository) CollectionItems(_ context.Context, id string) ([]*library.Card, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	cards := []*library.Card{}
	for _, summaryID := range repository.items[id] {
		cards = append(cards, &library.Card{SummaryID: summaryID})
	}
	return cards, nil
}

func (repository *memoryRepository) CreateCollection(_ context.Context, c *library.Collection) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	copied := *c
	repository.collections[c.ID] = &copied
	return nil
}

func (repository *memoryRepository) UpdateCollection(_ context.Context, c *library.Collection) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	copied := *c
	repository.collections[c.ID] = &copied
	return nil
}

func (repository *memoryRepository) DeleteCollection(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	delete(repository.collections, id)
	delete(repository.items, id)
	return nil
}

func (repository *memoryRepository) AddItem(_ context.Context, collectionID, summaryID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if !repository.summaries[summaryID] {
		return apperr.NotFound("Summary")
	}
	for _, existing := range repository.items[collectionID] {
		if existing == summaryID {
			return nil
		}
	}
	repository.items[collectionID] = append(repository.items[collectionID], summaryID)
	return nil
}

func (repository *memoryRepository) RemoveItem(_ context.Context, collectionID, summaryID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	items := repository.items[collectionID]
	for index, existing := range items {
		if existing == summaryID {
			repository.items[collectionID] = append(items[:index], items[index+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Collection item")
}

func newService() (*library.Service, *memoryRepository) {
	repo := newMemoryRepository()
	return library.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

// # Tests

/*
TestService_RecordProgress covers the accepted range and completion flag.
*/
func TestService_RecordProgress(t *testing.T) {
	tests := []struct {
		name      string
		progress  *float64
		summary   string
		code      string
		completed bool
	}{
		{"start", pointer.To(0.0), summaryA, "", false},
		{"midway", pointer.To(42.5), summaryA, "", false},
		{"finished", pointer.To(100.0), summaryA, "", true},
		{"negative", pointer.To(-1.0), summaryA, apperr.CodeValidation, false},
		{"over_hundred", pointer.To(100.01), summaryA, apperr.CodeValidation, false},
		{"missing", nil, summaryA, apperr.CodeValidation, false},
		{"malformed_summary", pointer.To(10.0), "not-a-uuid", apperr.CodeValidation, false},
		{"unknown_summary", pointer.To(10.0), missingID, apperr.CodeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo := newService()

			row, err := service.RecordProgress(context.Background(), reader, tt.summary, library.ProgressInput{Progress: tt.progress})
			if tt.code != "" {
				assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
				assert.Empty(t, repo.progress)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, *tt.progress, row.Progress)
			assert.Equal(t, tt.completed, row.Completed)
		})
	}
}

/*
TestService_History_Limit rejects limits outside 1..100.
*/
func TestService_History_Limit(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.RecordProgress(ctx, reader, summaryA, library.ProgressInput{Progress: pointer.To(10.0)})
	require.NoError(t, err)

	history, err := service.History(ctx, reader, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	_, err = service.History(ctx, reader, 101)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestService_ToggleBookmark flips the state and absorbs a racing insert.
*/
func TestService_ToggleBookmark(t *testing.T) {
	ctx := context.Background()

	t.Run("flip", func(t *testing.T) {
		service, _ := newService()

		first, err := service.ToggleBookmark(ctx, reader, summaryA)
		require.NoError(t, err)
		assert.True(t, first.Bookmarked)

		second, err := service.ToggleBookmark(ctx, reader, summaryA)
		require.NoError(t, err)
		assert.False(t, second.Bookmarked)

		bookmarks, err := service.Bookmarks(ctx, reader)
		require.NoError(t, err)
		assert.Empty(t, bookmarks)
	})

	t.Run("duplicate_insert", func(t *testing.T) {
		service, repo := newService()
		repo.racingInsert = true

		result, err := service.ToggleBookmark(ctx, reader, summaryA)
		require.NoError(t, err)
		assert.True(t, result.Bookmarked)
		assert.Len(t, repo.bookmarks, 1)
	})

	t.Run("unknown_summary", func(t *testing.T) {
		service, _ := newService()

		_, err := service.ToggleBookmark(ctx, reader, missingID)
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

/*
TestService_Collections walks a collection through its lifecycle.
*/
func TestService_Collections(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	_, err := service.CreateCollection(ctx, reader, library.CollectionInput{Name: "   "})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	created, err := service.CreateCollection(ctx, reader, library.CollectionInput{Name: " Favourites ", Description: pointer.To("Best of")})
	require.NoError(t, err)
	assert.Equal(t, "Favourites", created.Name)
	assert.False(t, created.IsPublic)

	require.NoError(t, service.AddItem(ctx, reader, created.ID, summaryA))
	require.NoError(t, service.AddItem(ctx, reader, created.ID, summaryA))
	require.NoError(t, service.AddItem(ctx, reader, created.ID, summaryB))

	err = service.AddItem(ctx, reader, created.ID, missingID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	listed, err := service.Collections(ctx, reader)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 2, listed[0].ItemCount)

	updated, err := service.UpdateCollection(ctx, reader, created.ID, library.CollectionUpdate{IsPublic: pointer.To(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, "Favourites", updated.Name)
	assert.Equal(t, "Best of", pointer.Val(updated.Description))

	require.NoError(t, service.RemoveItem(ctx, reader, created.ID, summaryB))
	err = service.RemoveItem(ctx, reader, created.ID, summaryB)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	full, err := service.Collection(ctx, reader, created.ID)
	require.NoError(t, err)
	require.Len(t, full.Items, 1)
	assert.Equal(t, summaryA, full.Items[0].SummaryID)

	require.NoError(t, service.DeleteCollection(ctx, reader, created.ID))
	_, err = service.Collection(ctx, reader, created.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestService_CollectionVisibility checks what other readers can see and change.
*/
func TestService_CollectionVisibility(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	private, err := service.CreateCollection(ctx, reader, library.CollectionInput{Name: "Private"})
	require.NoError(t, err)
	public, err := service.CreateCollection(ctx, reader, library.CollectionInput{Name: "Public", IsPublic: true})
	require.NoError(t, err)

	_, err = service.Collection(ctx, "", private.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound), "anonymous must not see private collections")

	_, err = service.Collection(ctx, stranger, private.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	shared, err := service.Collection(ctx, "", public.ID)
	require.NoError(t, err)
	assert.Equal(t, "Public", shared.Name)

	err = service.AddItem(ctx, stranger, public.ID, summaryA)
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))

	err = service.DeleteCollection(ctx, stranger, private.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
