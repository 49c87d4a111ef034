// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dashboard aggregates a reader's home screen in one call.

Each part is owned by another package; this one only fans the reads out
concurrently and fails the whole call when any part fails.
*/
package dashboard

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/briefly/internal/billing"
	"github.com/taibuivan/briefly/internal/library"
	"github.com/taibuivan/briefly/internal/users/profile"
)

const recentHistory = 10

// Dashboard is the reader's home screen.
type Dashboard struct {
	Profile       *profile.Profile        `json:"profile"`
	Subscription  *billing.Status         `json:"subscription"`
	RecentHistory []*library.HistoryEntry `json:"recent_history"`
	Bookmarks     []*library.Bookmark     `json:"bookmarks"`
	Collections   []*library.Collection   `json:"collections"`
	Stats         *library.Stats          `json:"stats"`
}

// ProfileReader loads (and lazily creates) the caller's profile.
type ProfileReader interface {
	GetProfile(context context.Context, userID, email string) (*profile.Profile, error)
}

// StatusReader derives the caller's subscription status.
type StatusReader interface {
	Status(context context.Context, userID string) (*billing.Status, error)
}

// LibraryReader exposes the reader's library.
type LibraryReader interface {
	History(context context.Context, userID string, limit int) ([]*library.HistoryEntry, error)
	Bookmarks(context context.Context, userID string) ([]*library.Bookmark, error)
	Collections(context context.Context, userID string) ([]*library.Collection, error)
	Stats(context context.Context, userID string) (*library.Stats, error)
}

// Service builds dashboards.
type Service struct {
	profiles ProfileReader
	billing  StatusReader
	library  LibraryReader
	logger   *slog.Logger
}

// NewService constructs a dashboard [Service].
func NewService(profiles ProfileReader, billing StatusReader, library LibraryReader, logger *slog.Logger) *Service {
	return &Service{profiles: profiles, billing: billing, library: library, logger: logger}
}

/*
Build loads every part of the dashboard concurrently.

Returns:
  - *Dashboard: All parts populated
  - error: The first failing part; the others are cancelled
*/
func (service *Service) Build(context context.Context, userID, email string) (*Dashboard, error) {
	group, groupContext := errgroup.WithContext(context)
	dashboard := &Dashboard{}

	group.Go(func() (err error) {
		dashboard.Profile, err = service.profiles.GetProfile(groupContext, userID, email)
		return err
	})
	group.Go(func() (err error) {
		dashboard.Subscription, err = service.billing.Status(groupContext, userID)
		return err
	})
	group.Go(func() (err error) {
		dashboard.RecentHistory, err = service.library.History(groupContext, userID, recentHistory)
		return err
	})
	group.Go(func() (err error) {
		dashboard.Bookmarks, err = service.library.Bookmarks(groupContext, userID)
		return err
	})
	group.Go(func() (err error) {
		dashboard.Collections, err = service.library.Collections(groupContext, userID)
		return err
	})
	group.Go(func() (err error) {
		dashboard.Stats, err = service.library.Stats(groupContext, userID)
		return err
	})

	if err := group.Wait(); err != nil {
		service.logger.WarnContext(context, "dashboard_build_failed", slog.String("user_id", userID), slog.Any("error", err))
		return nil, err
	}
	return dashboard, nil
}
