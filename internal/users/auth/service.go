// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth resolves the caller session from identity provider tokens.

Sign-up, sign-in and refresh happen at the identity provider. This package
verifies the access tokens it issues, keeps a deny-list of tokens that signed
out early, and exposes the session endpoints.
*/
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/sec"
)

// TokenVerifier checks the signature and validity of a raw token.
type TokenVerifier interface {
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// Service implements the identity resolver used by the authentication middleware.
type Service struct {
	verifier TokenVerifier
	revoked  RevocationStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the auth [Service]. revoked may be nil, which disables sign-out.
func NewService(verifier TokenVerifier, revoked RevocationStore, logger *slog.Logger) *Service {
	return &Service{
		verifier: verifier,
		revoked:  revoked,
		logger:   logger,
		now:      time.Now,
	}
}

/*
VerifyToken resolves a bearer token into the caller session.

Description: A token is rejected when its signature or lifetime is invalid,
or when it was signed out. A deny-list outage fails closed.

Returns:
  - *sec.AuthClaims: The authenticated caller
  - error: apperr Unauthorized, or UpstreamUnavailable when the deny-list cannot be read
*/
func (service *Service) VerifyToken(context context.Context, token string) (*sec.AuthClaims, error) {
	claims, err := service.verifier.VerifyToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token").WithCause(err)
	}

	if service.revoked == nil {
		return claims, nil
	}

	revoked, err := service.revoked.IsRevoked(context, claims.TokenID())
	if err != nil {
		service.logger.ErrorContext(context, "token_revocation_check_failed", slog.Any("error", err))
		return nil, apperr.UpstreamUnavailable("session store", err)
	}
	if revoked {
		return nil, apperr.Unauthorized("Session has been signed out")
	}

	return claims, nil
}

// Logout puts the caller's token on the deny-list for the rest of its lifetime.
func (service *Service) Logout(context context.Context, claims *sec.AuthClaims) error {
	if service.revoked == nil {
		return apperr.UpstreamUnavailable("session store", errors.New("auth: revocation store is not configured"))
	}

	remaining := claims.Remaining(service.now())
	if remaining <= 0 {
		return nil
	}

	if err := service.revoked.Revoke(context, claims.TokenID(), remaining); err != nil {
		return apperr.UpstreamUnavailable("session store", err)
	}

	service.logger.InfoContext(context, "session_signed_out",
		slog.String("user_id", claims.UserID),
		slog.Duration("remaining", remaining),
	)
	return nil
}
