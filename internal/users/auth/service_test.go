// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/middleware"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/users/auth"
)

type fixture struct {
	verifier *sec.Verifier
	service  *auth.Service
	redis    *miniredis.Miniredis
	router   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	verifier, err := sec.NewVerifier("top-secret", "", "authenticated")
	require.NoError(t, err)

	service := auth.NewService(verifier, auth.NewRevocationStore(client), slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(service))
	router.Mount("/auth", auth.NewHandler(service).Routes())

	return &fixture{verifier: verifier, service: service, redis: server, router: router}
}

func (f *fixture) call(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(method, path, nil)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestLogout_RevokesToken verifies a signed-out token no longer resolves a session.
*/
func TestLogout_RevokesToken(t *testing.T) {
	f := newFixture(t)

	token, err := f.verifier.SignToken("user-1", "reader@briefly.app", sec.RoleMember, time.Hour)
	require.NoError(t, err)

	session := f.call(t, http.MethodGet, "/auth/session", token)
	assert.Equal(t, http.StatusOK, session.Code)
	assert.Contains(t, session.Body.String(), `"email":"reader@briefly.app"`)

	logout := f.call(t, http.MethodPost, "/auth/logout", token)
	assert.Equal(t, http.StatusNoContent, logout.Code)

	claims, err := f.verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.True(t, f.redis.Exists("auth:revoked:"+claims.TokenID()))
	assert.InDelta(t, time.Hour.Seconds(), f.redis.TTL("auth:revoked:"+claims.TokenID()).Seconds(), 5)

	after := f.call(t, http.MethodGet, "/auth/session", token)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

/*
TestSession_RequiresToken rejects anonymous and forged callers.
*/
func TestSession_RequiresToken(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.call(t, http.MethodGet, "/auth/session", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.call(t, http.MethodGet, "/auth/session", "forged").Code)
}

/*
TestVerifyToken_StoreDown fails closed when the deny-list is unreachable.
*/
func TestVerifyToken_StoreDown(t *testing.T) {
	f := newFixture(t)

	token, err := f.verifier.SignToken("user-1", "", sec.RoleMember, time.Hour)
	require.NoError(t, err)

	f.redis.Close()

	_, err = f.service.VerifyToken(context.Background(), token)
	assert.True(t, apperr.HasCode(err, apperr.CodeUpstreamUnavailable))
}
