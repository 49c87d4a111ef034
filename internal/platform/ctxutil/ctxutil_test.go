// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/briefly/internal/platform/ctxutil"
	"github.com/taibuivan/briefly/internal/platform/sec"
)

/*
TestRequestID verifies that the correlation value round-trips.
*/
func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	ctx = ctxutil.WithRequestID(ctx, "0190a000-0000-7000-8000-00000000abcd")
	assert.Equal(t, "0190a000-0000-7000-8000-00000000abcd", ctxutil.GetRequestID(ctx))
}

/*
TestLogger verifies the fallback to the default logger.
*/
func TestLogger(t *testing.T) {
	ctx := context.Background()
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))

	requestLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx = ctxutil.WithLogger(ctx, requestLogger)
	assert.Same(t, requestLogger, ctxutil.GetLogger(ctx))

	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctxutil.WithLogger(context.Background(), nil)))
}

/*
TestCaller covers anonymous and authenticated sessions.
*/
func TestCaller(t *testing.T) {
	tests := []struct {
		name       string
		claims     *sec.AuthClaims
		wantID     string
		wantAdmin  bool
		wantCaller bool
	}{
		{"anonymous", nil, "", false, false},
		{"member", &sec.AuthClaims{UserID: "reader-1", Role: string(sec.RoleMember)}, "reader-1", false, true},
		{"admin", &sec.AuthClaims{UserID: "editor-1", Role: string(sec.RoleAdmin)}, "editor-1", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.claims != nil {
				ctx = ctxutil.WithAuthUser(ctx, tt.claims)
			}

			caller := ctxutil.GetAuthUser(ctx)
			assert.Equal(t, tt.wantCaller, caller != nil)
			assert.Equal(t, tt.wantAdmin, caller.IsAdmin())
			assert.Equal(t, tt.wantID, ctxutil.CallerID(ctx))
		})
	}
}
