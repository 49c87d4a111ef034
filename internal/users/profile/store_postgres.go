// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/database/schema"
	"github.com/taibuivan/briefly/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new profile repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var selectColumns = strings.Join(schema.UsersProfile.Columns(), ", ")

func scanProfile(row pgx.Row) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.AvatarURL, &p.Bio, &p.Preferences, &p.CreatedAt, &p.UpdatedAt)
	if p.Preferences == nil {
		p.Preferences = map[string]any{}
	}
	return p, err
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.UsersProfile.Table, schema.UsersProfile.ID,
	)

	p, err := scanProfile(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Profile", "get_profile")
	}
	return p, nil
}

func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		selectColumns, schema.UsersProfile.Table, schema.UsersProfile.Username,
	)

	p, err := scanProfile(repository.pool.QueryRow(context, query, username))
	if err != nil {
		return nil, dberr.NotFoundAs(err, "Profile", "get_profile_by_username")
	}
	return p, nil
}

/*
Create inserts the profile row.

Description: ON CONFLICT (id) DO NOTHING makes a concurrent lazy creation of
the same user a no-op. A username clash still raises unique_violation, which
is reported as Conflict so the caller can retry with another name.
*/
func (repository *PostgresRepository) Create(context context.Context, p *Profile) (bool, error) {
	s := schema.UsersProfile
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (%s) DO NOTHING
	`,
		s.Table, s.ID, s.Username, s.FullName, s.AvatarURL, s.Bio, s.Preferences, s.CreatedAt, s.UpdatedAt,
		s.ID,
	)

	tag, err := repository.pool.Exec(context, query, p.ID, p.Username, p.FullName, p.AvatarURL, p.Bio, p.Preferences)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return false, apperr.Conflict("Username is already taken").WithCause(err)
		}
		return false, dberr.Wrap(err, "create_profile")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) Update(context context.Context, p *Profile) error {
	s := schema.UsersProfile
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
	`,
		s.Table, s.Username, s.FullName, s.Bio, s.Preferences, s.UpdatedAt,
		s.ID,
	)

	tag, err := repository.pool.Exec(context, query, p.ID, p.Username, p.FullName, p.Bio, p.Preferences)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict("Username is already taken").WithCause(err)
		}
		return dberr.Wrap(err, "update_profile")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}
	return nil
}

func (repository *PostgresRepository) SetAvatar(context context.Context, id, avatarURL string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UsersProfile.Table, schema.UsersProfile.AvatarURL, schema.UsersProfile.UpdatedAt, schema.UsersProfile.ID,
	)

	tag, err := repository.pool.Exec(context, query, id, avatarURL)
	if err != nil {
		return dberr.Wrap(err, "set_profile_avatar")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}
	return nil
}
