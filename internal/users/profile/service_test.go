// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/users/profile"
)

// # Fakes

type memoryRepository struct {
	mu       sync.Mutex
	profiles map[string]*profile.Profile
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{profiles: map[string]*profile.Profile{}}
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*profile.Profile, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	found, ok := repository.profiles[id]
	if !ok {
		return nil, apperr.NotFound("Profile")
	}
	copied := *found
	return &copied, nil
}

func (repository *memoryRepository) FindByUsername(_ context.Context, username string) (*profile.Profile, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, p := range repository.profiles {
		if p.Username == username {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Profile")
}

func (repository *memoryRepository) taken(id, username string) bool {
	for _, p := range repository.profiles {
		if p.ID != id && p.Username == username {
			return true
		}
	}
	return false
}

func (repository *memoryRepository) Create(_ context.Context, p *profile.Profile) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.profiles[p.ID]; ok {
		return false, nil
	}
	if repository.taken(p.ID, p.Username) {
		return false, apperr.Conflict("Username is already taken")
	}
	copied := *p
	repository.profiles[p.ID] = &copied
	return true, nil
}

func (repository *memoryRepository) Update(_ context.Context, p *profile.Profile) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.taken(p.ID, p.Username) {
		return apperr.Conflict("Username is already taken")
	}
	copied := *p
	repository.profiles[p.ID] = &copied
	return nil
}

func (repository *memoryRepository) SetAvatar(_ context.Context, id, avatarURL string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.profiles[id].AvatarURL = &avatarURL
	return nil
}

type fakeObjects struct {
	err  error
	keys []string
}

func (store *fakeObjects) Upload(_ context.Context, objectPath string, _ io.Reader, _ int64, _ string) (string, error) {
	if store.err != nil {
		return "", store.err
	}
	store.keys = append(store.keys, objectPath)
	return "https://cdn.briefly.app/" + objectPath, nil
}

func (store *fakeObjects) Delete(context.Context, string) error { return nil }

func newService(repo profile.Repository, objects *fakeObjects) *profile.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if objects == nil {
		return profile.NewService(repo, nil, logger)
	}
	return profile.NewService(repo, objects, logger)
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

// # Tests

/*
TestGetProfile_LazyCreation derives the username from the email and keeps it unique.
*/
func TestGetProfile_LazyCreation(t *testing.T) {
	repo := newMemoryRepository()
	service := newService(repo, nil)
	ctx := context.Background()

	first, err := service.GetProfile(ctx, "user-1", "Jane.Doe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe", first.Username)
	assert.NotNil(t, first.Preferences)

	again, err := service.GetProfile(ctx, "user-1", "other@example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane-doe", again.Username)

	second, err := service.GetProfile(ctx, "user-2", "jane.doe@another.org")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(second.Username, "jane-doe-"))
	assert.Len(t, second.Username, len("jane-doe-")+4)

	short, err := service.GetProfile(ctx, "user-3", "x@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(short.Username, "reader-"))
}

/*
TestUpdateProfile validates fields and reports username clashes.
*/
func TestUpdateProfile(t *testing.T) {
	repo := newMemoryRepository()
	service := newService(repo, nil)
	ctx := context.Background()

	_, err := service.GetProfile(ctx, "user-1", "jane@example.com")
	require.NoError(t, err)
	_, err = service.GetProfile(ctx, "user-2", "john@example.com")
	require.NoError(t, err)

	username := " Jane-Reads "
	bio := "Reads on the train."
	updated, err := service.UpdateProfile(ctx, "user-1", "", profile.UpdateInput{
		Username:    &username,
		Bio:         &bio,
		Preferences: &map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jane-reads", updated.Username)
	assert.Equal(t, "dark", updated.Preferences["theme"])

	tests := []struct {
		name  string
		input profile.UpdateInput
		code  string
	}{
		{"short_username", profile.UpdateInput{Username: ptr("ab")}, apperr.CodeValidation},
		{"bad_chars", profile.UpdateInput{Username: ptr("jane doe!")}, apperr.CodeValidation},
		{"long_bio", profile.UpdateInput{Bio: ptr(strings.Repeat("b", 501))}, apperr.CodeValidation},
		{"taken", profile.UpdateInput{Username: ptr("john")}, apperr.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.UpdateProfile(ctx, "user-1", "", tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

/*
TestSetAvatar covers the required upload and its failure modes.
*/
func TestSetAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("uploaded", func(t *testing.T) {
		objects := &fakeObjects{}
		service := newService(newMemoryRepository(), objects)

		updated, err := service.SetAvatar(ctx, "user-1", "jane@example.com", &profile.Avatar{
			Filename: "me.png", ContentType: "image/png", Data: pngHeader,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.AvatarURL)
		assert.Contains(t, *updated.AvatarURL, "avatars/user-1/")
	})

	t.Run("storage_failure", func(t *testing.T) {
		service := newService(newMemoryRepository(), &fakeObjects{err: errors.New("bucket offline")})

		_, err := service.SetAvatar(ctx, "user-1", "jane@example.com", &profile.Avatar{
			Filename: "me.png", ContentType: "image/png", Data: pngHeader,
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeUpstreamUnavailable))
	})

	t.Run("not_an_image", func(t *testing.T) {
		service := newService(newMemoryRepository(), &fakeObjects{})

		_, err := service.SetAvatar(ctx, "user-1", "jane@example.com", &profile.Avatar{
			Filename: "me.txt", ContentType: "text/plain", Data: []byte("hello"),
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})

	t.Run("too_large", func(t *testing.T) {
		service := newService(newMemoryRepository(), &fakeObjects{})

		_, err := service.SetAvatar(ctx, "user-1", "jane@example.com", &profile.Avatar{
			Filename: "me.png", ContentType: "image/png", Data: make([]byte, 2<<20+1),
		})
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})
}

func ptr(value string) *string { return &value }
