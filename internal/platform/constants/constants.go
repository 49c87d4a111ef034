// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token audiences and revocation keys.
  - Content: Limits applied to uploads and generated content.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "briefly-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID      = "X-Request-ID"
	HeaderXRealIP         = "X-Real-IP"
	HeaderXForwardedFor   = "X-Forwarded-For"
	HeaderOrigin          = "Origin"
	HeaderStripeSignature = "Stripe-Signature"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Content Limits

const (
	// MaxCoverBytes bounds book cover uploads.
	MaxCoverBytes = 5 << 20

	// MaxAvatarBytes bounds profile avatar uploads.
	MaxAvatarBytes = 2 << 20

	// MaxWebhookBytes bounds payment provider webhook payloads.
	MaxWebhookBytes = 1 << 20

	// MaxSourceBytes bounds documents fetched as generation sources.
	MaxSourceBytes = 20 << 20

	// SourceFetchTimeout bounds how long fetching a generation source may take.
	SourceFetchTimeout = 30 * time.Second

	// PreviewLength is the number of characters of a premium body shown to
	// callers without access.
	PreviewLength = 280
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixRevokedToken       = "auth:revoked:"
	RedisPrefixSubscriptionStatus = "billing:status:"
)
