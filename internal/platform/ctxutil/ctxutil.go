// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil carries per-request values in [context.Context].
//
// The request context is the only place a caller's session lives. Middleware
// attaches the correlation id, the request logger and the verified claims;
// handlers and services read them back explicitly. Nothing is kept in
// package state.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/briefly/internal/platform/sec"
)

// Keys are distinct empty struct types, so no other package can collide
// with them and lookups never allocate.
type (
	requestIDKey struct{}
	loggerKey    struct{}
	callerKey    struct{}
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the correlation value, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default] so
// that background jobs and tests can call it unconditionally.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// # Caller Session

// WithAuthUser attaches the verified caller. A nil claims value keeps the
// request anonymous.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, callerKey{}, claims)
}

// GetAuthUser returns the verified caller. A nil result means the caller is
// anonymous.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(callerKey{}).(*sec.AuthClaims)
	return claims
}

// CallerID returns the caller's user id, or "" for anonymous requests.
func CallerID(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}
