// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides identity primitives shared by the HTTP layer.
//
// # Architecture
//
// Sign-up, sign-in and token rotation belong to the external identity provider.
// This package only verifies the access tokens it issues (HS256 with the project
// secret) and turns them into [AuthClaims] that the rest of the service treats as
// the caller's session.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("sec: invalid token")

// AuthClaims represents the payload of an identity provider access token.
//
// UserID and Role are derived after verification so that handlers never need
// to know the provider's claim layout.
type AuthClaims struct {
	jwt.RegisteredClaims

	Email       string      `json:"email"`
	SessionID   string      `json:"session_id,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata"`

	UserID string `json:"-"`
	Role   string `json:"-"`
}

// AppMetadata holds provider-managed attributes. Only the role is consulted.
type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

// TokenID returns a stable identifier for revocation purposes.
//
// Tokens without a jti fall back to the provider session id, then to subject+iat.
func (claims *AuthClaims) TokenID() string {
	if claims.ID != "" {
		return claims.ID
	}
	if claims.SessionID != "" {
		return claims.SessionID
	}
	var issuedAt int64
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Unix()
	}
	return claims.Subject + ":" + strconv.FormatInt(issuedAt, 10)
}

// Remaining returns how long the token stays valid.
func (claims *AuthClaims) Remaining(now time.Time) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Sub(now)
}

// IsAdmin reports whether the caller holds the admin role.
func (claims *AuthClaims) IsAdmin() bool {
	return claims != nil && UserRole(claims.Role) == RoleAdmin
}

// Verifier checks identity provider tokens using a shared HS256 secret.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier creates a new Verifier. Empty issuer or audience disables that check.
func NewVerifier(secret, issuer, audience string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("sec: token secret is required")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer, audience: audience}, nil
}

// VerifyToken checks the signature and validity of a JWT string.
func (verifier *Verifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if verifier.issuer != "" {
		options = append(options, jwt.WithIssuer(verifier.issuer))
	}
	if verifier.audience != "" {
		options = append(options, jwt.WithAudience(verifier.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return verifier.secret, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims.UserID = claims.Subject
	claims.Role = string(ParseRole(claims.AppMetadata.Role))

	return claims, nil
}

// SignToken issues a token the verifier accepts. It exists for local tooling
// and tests; production tokens come from the identity provider.
func (verifier *Verifier) SignToken(userID, email string, role UserRole, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    verifier.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Email:       email,
		AppMetadata: AppMetadata{Role: string(role)},
	}
	if verifier.audience != "" {
		claims.Audience = jwt.ClaimStrings{verifier.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(verifier.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}
