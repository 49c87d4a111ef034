// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/billing"
	"github.com/taibuivan/briefly/internal/dashboard"
	"github.com/taibuivan/briefly/internal/library"
	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/ctxutil"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/users/profile"
)

type fakeProfiles struct{}

func (fakeProfiles) GetProfile(_ context.Context, userID, _ string) (*profile.Profile, error) {
	return &profile.Profile{ID: userID, Username: "reader"}, nil
}

type fakeStatus struct{ err error }

func (status fakeStatus) Status(context.Context, string) (*billing.Status, error) {
	if status.err != nil {
		return nil, status.err
	}
	return &billing.Status{HasActiveSubscription: true, DaysRemaining: 12}, nil
}

type fakeLibrary struct {
	historyLimit int
}

func (lib *fakeLibrary) History(_ context.Context, _ string, limit int) ([]*library.HistoryEntry, error) {
	lib.historyLimit = limit
	return []*library.HistoryEntry{{Progress: 40}}, nil
}

func (lib *fakeLibrary) Bookmarks(context.Context, string) ([]*library.Bookmark, error) {
	return []*library.Bookmark{{}}, nil
}

func (lib *fakeLibrary) Collections(context.Context, string) ([]*library.Collection, error) {
	return []*library.Collection{{Name: "Favourites", ItemCount: 3}}, nil
}

func (lib *fakeLibrary) Stats(context.Context, string) (*library.Stats, error) {
	return &library.Stats{TotalSummariesRead: 4, TotalMinutesRead: 55, SummariesThisMonth: 1}, nil
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

/*
TestService_Build assembles every part.
*/
func TestService_Build(t *testing.T) {
	lib := &fakeLibrary{}
	service := dashboard.NewService(fakeProfiles{}, fakeStatus{}, lib, discard())

	result, err := service.Build(context.Background(), "user-1", "reader@briefly.app")
	require.NoError(t, err)

	assert.Equal(t, "user-1", result.Profile.ID)
	assert.True(t, result.Subscription.HasActiveSubscription)
	assert.Len(t, result.RecentHistory, 1)
	assert.Equal(t, 10, lib.historyLimit)
	assert.Len(t, result.Bookmarks, 1)
	assert.Equal(t, 3, result.Collections[0].ItemCount)
	assert.Equal(t, 55, result.Stats.TotalMinutesRead)
}

/*
TestService_Build_AnyFailureFails surfaces the failing part.
*/
func TestService_Build_AnyFailureFails(t *testing.T) {
	service := dashboard.NewService(fakeProfiles{}, fakeStatus{err: apperr.ServiceUnavailable("cache")}, &fakeLibrary{}, discard())

	result, err := service.Build(context.Background(), "user-1", "")
	assert.Nil(t, result)
	assert.True(t, apperr.IsAppError(err))
}

/*
TestHandler_Dashboard requires a caller and renders the data envelope.
*/
func TestHandler_Dashboard(t *testing.T) {
	service := dashboard.NewService(fakeProfiles{}, fakeStatus{}, &fakeLibrary{}, discard())
	router := chi.NewRouter()
	router.Mount("/dashboard", dashboard.NewHandler(service).Routes())

	anonymous := httptest.NewRecorder()
	router.ServeHTTP(anonymous, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "user-1", Role: string(sec.RoleMember)}))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data struct {
			Stats library.Stats `json:"stats"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, 4, body.Data.Stats.TotalSummariesRead)
}
