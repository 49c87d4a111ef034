// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile manages the public face of a reader: username, name, avatar,
bio and free-form reading preferences.

Identity itself lives at the identity provider; a profile row is keyed by the
provider user id and is created lazily the first time the caller asks for it.
*/
package profile

import (
	"context"
	"time"
)

// # Domain Entities

// Profile represents the reader-facing data attached to a provider user id.
type Profile struct {
	ID          string         `json:"id"`
	Username    string         `json:"username"`
	FullName    *string        `json:"full_name"`
	AvatarURL   *string        `json:"avatar_url"`
	Bio         *string        `json:"bio"`
	Preferences map[string]any `json:"preferences"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UpdateInput is a partial profile update; nil fields are left untouched.
type UpdateInput struct {
	Username    *string         `json:"username"`
	FullName    *string         `json:"full_name"`
	Bio         *string         `json:"bio"`
	Preferences *map[string]any `json:"preferences"`
}

// Avatar is an uploaded avatar image.
type Avatar struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Field names for validation
const (
	FieldUsername = "username"
	FieldFullName = "full_name"
	FieldBio      = "bio"
	FieldFile     = "file"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	maxFullNameLength = 100
	maxBioLength      = 500
	avatarFolder      = "avatars"

	// createAttempts bounds the username suffix retries of a lazy creation.
	createAttempts = 5
)

// # Repository Contracts

// Repository defines the persistence contract for profiles.
type Repository interface {
	FindByID(context context.Context, id string) (*Profile, error)
	FindByUsername(context context.Context, username string) (*Profile, error)

	/*
		Create inserts a new profile unless one already exists for the id.

		Returns:
		  - bool: false when a row with the same id was already present
		  - error: apperr Conflict when the username is taken
	*/
	Create(context context.Context, profile *Profile) (bool, error)

	Update(context context.Context, profile *Profile) error
	SetAvatar(context context.Context, id, avatarURL string) error
}
