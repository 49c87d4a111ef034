// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/constants"
	"github.com/taibuivan/briefly/internal/platform/storage"
	"github.com/taibuivan/briefly/internal/platform/validate"
	"github.com/taibuivan/briefly/pkg/slug"
	"github.com/taibuivan/briefly/pkg/uuid"
)

var errStorageDisabled = errors.New("profile: object storage is not configured")

// Service implements the profile use cases.
type Service struct {
	repo    Repository
	objects storage.ObjectStore
	logger  *slog.Logger
}

// NewService constructs a profile [Service]. objects may be nil, in which
// case avatar uploads report the storage as unavailable.
func NewService(repo Repository, objects storage.ObjectStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, objects: objects, logger: logger}
}

/*
GetProfile returns the caller's profile, creating it on first access.

Description: The username is derived from the local part of the email. When
it is taken, a short random suffix is appended and the insert retried.

Parameters:
  - context: context.Context
  - userID: string (Provider user id)
  - email: string (Used only on first access)

Returns:
  - *Profile: The stored profile
  - error: Storage failures, or Conflict after exhausting the retries
*/
func (service *Service) GetProfile(context context.Context, userID, email string) (*Profile, error) {
	existing, err := service.repo.FindByID(context, userID)
	if err == nil {
		return existing, nil
	}
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	base := usernameFrom(email)
	candidate := base

	for attempt := 0; attempt < createAttempts; attempt++ {
		profile := &Profile{ID: userID, Username: candidate, Preferences: map[string]any{}}

		_, err := service.repo.Create(context, profile)
		if err == nil {
			break
		}
		if !apperr.HasCode(err, apperr.CodeConflict) {
			return nil, err
		}
		candidate = withSuffix(base)
	}

	created, err := service.repo.FindByID(context, userID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Conflict("Could not allocate a username")
		}
		return nil, err
	}

	service.logger.InfoContext(context, "profile_created",
		slog.String("user_id", userID),
		slog.String("username", created.Username),
	)
	return created, nil
}

/*
UpdateProfile applies a validated partial update to the caller's profile.

Returns:
  - *Profile: The updated profile
  - error: ValidationError, or Conflict when the username is taken
*/
func (service *Service) UpdateProfile(context context.Context, userID, email string, input UpdateInput) (*Profile, error) {
	validator := &validate.Validator{}
	if input.Username != nil {
		*input.Username = strings.ToLower(strings.TrimSpace(*input.Username))
		validator.
			MinLen(FieldUsername, *input.Username, minUsernameLength).
			MaxLen(FieldUsername, *input.Username, maxUsernameLength).
			Slug(FieldUsername, *input.Username)
	}
	if input.FullName != nil {
		validator.MaxLen(FieldFullName, *input.FullName, maxFullNameLength)
	}
	if input.Bio != nil {
		validator.MaxLen(FieldBio, *input.Bio, maxBioLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	profile, err := service.GetProfile(context, userID, email)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		profile.Username = *input.Username
	}
	if input.FullName != nil {
		profile.FullName = input.FullName
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}
	if input.Preferences != nil {
		profile.Preferences = *input.Preferences
		if profile.Preferences == nil {
			profile.Preferences = map[string]any{}
		}
	}

	if err := service.repo.Update(context, profile); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, userID)
}

/*
SetAvatar uploads a new avatar and records its URL.

Description: Unlike book covers the upload is the whole point of the call, so
any storage failure fails the request.

Returns:
  - *Profile: The profile with its new avatar_url
  - error: ValidationError for bad files, UpstreamUnavailable for storage failures
*/
func (service *Service) SetAvatar(context context.Context, userID, email string, avatar *Avatar) (*Profile, error) {
	if avatar == nil || len(avatar.Data) == 0 {
		return nil, validate.RequiredError(FieldFile, "An image file is required")
	}
	if len(avatar.Data) > constants.MaxAvatarBytes {
		return nil, validate.RequiredError(FieldFile, "Avatar exceeds 2 MiB")
	}
	if !storage.IsImage(avatar.ContentType) {
		return nil, validate.RequiredError(FieldFile, "Avatar must be an image")
	}

	if _, err := service.GetProfile(context, userID, email); err != nil {
		return nil, err
	}

	if service.objects == nil {
		return nil, apperr.UpstreamUnavailable("storage", errStorageDisabled)
	}

	objectPath := storage.ObjectKey(avatarFolder+"/"+userID, avatar.Filename, avatar.ContentType)
	avatarURL, err := service.objects.Upload(context, objectPath, bytes.NewReader(avatar.Data), int64(len(avatar.Data)), avatar.ContentType)
	if err != nil {
		service.logger.ErrorContext(context, "avatar_upload_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, apperr.UpstreamUnavailable("storage", err)
	}

	if err := service.repo.SetAvatar(context, userID, avatarURL); err != nil {
		return nil, err
	}
	return service.repo.FindByID(context, userID)
}

// GetPublicProfile looks up another reader by username.
func (service *Service) GetPublicProfile(context context.Context, username string) (*Profile, error) {
	profile, err := service.repo.FindByUsername(context, strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	profile.Preferences = nil
	return profile, nil
}

// # Username Derivation

// usernameFrom turns "Jane.Doe+news@example.com" into "jane-doe-news".
func usernameFrom(email string) string {
	local, _, _ := strings.Cut(email, "@")
	username := slug.Truncate(slug.From(local), maxUsernameLength-5)
	if len(username) < minUsernameLength {
		return withSuffix("reader")
	}
	return username
}

// withSuffix appends four characters of a fresh uuid.
func withSuffix(base string) string {
	id := uuid.New()
	return base + "-" + id[len(id)-4:]
}
