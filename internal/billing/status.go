// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/constants"
)

// StatusProvider derives a user's subscription status, caching it in redis.
//
// The cache is an optimisation only: a redis failure falls back to the
// database and is logged, never returned.
type StatusProvider struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewStatusProvider creates a [StatusProvider]. A nil cache or zero ttl disables caching.
func NewStatusProvider(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *StatusProvider {
	return &StatusProvider{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func statusKey(userID string) string {
	return constants.RedisPrefixSubscriptionStatus + userID
}

/*
Status returns the subscription status of userID.

Returns:
  - *Status: has_active_subscription is false for users who never subscribed
  - error: Storage failures
*/
func (provider *StatusProvider) Status(context context.Context, userID string) (*Status, error) {

	// ── 1. Cache ──
	if cached, ok := provider.fromCache(context, userID); ok {
		return cached, nil
	}

	// ── 2. Store ──
	subscription, err := provider.repo.CurrentSubscription(context, userID)
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	status := provider.derive(subscription)
	provider.toCache(context, userID, status)

	return status, nil
}

// HasActiveSubscription implements the entitlement status reader.
func (provider *StatusProvider) HasActiveSubscription(context context.Context, userID string) (bool, error) {
	status, err := provider.Status(context, userID)
	if err != nil {
		return false, err
	}
	return status.HasActiveSubscription, nil
}

// Invalidate drops the cached status of userID.
func (provider *StatusProvider) Invalidate(context context.Context, userID string) {
	if provider.cache == nil || userID == "" {
		return
	}
	if err := provider.cache.Del(context, statusKey(userID)).Err(); err != nil {
		provider.logger.WarnContext(context, "subscription_cache_invalidate_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

func (provider *StatusProvider) derive(subscription *Subscription) *Status {
	now := provider.now()
	if !isActive(subscription, now) {
		return &Status{}
	}

	return &Status{
		HasActiveSubscription: true,
		PlanName:              subscription.PlanName,
		DaysRemaining:         daysUntil(*subscription.CurrentPeriodEnd, now),
		CurrentPeriodEnd:      subscription.CurrentPeriodEnd,
		CancelAtPeriodEnd:     subscription.CancelAtPeriodEnd,
	}
}

// daysUntil counts started days, so any time left on the last day counts as one.
func daysUntil(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

func (provider *StatusProvider) fromCache(context context.Context, userID string) (*Status, bool) {
	if provider.cache == nil || provider.ttl <= 0 {
		return nil, false
	}

	raw, err := provider.cache.Get(context, statusKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			provider.logger.WarnContext(context, "subscription_cache_read_failed", slog.Any("error", err))
		}
		return nil, false
	}

	status := &Status{}
	if err := json.Unmarshal(raw, status); err != nil {
		return nil, false
	}

	// A cached active status must not outlive its period, and the day count
	// is as of now rather than as of the cache write.
	if status.HasActiveSubscription && status.CurrentPeriodEnd != nil {
		now := provider.now()
		if !status.CurrentPeriodEnd.After(now) {
			return nil, false
		}
		status.DaysRemaining = daysUntil(*status.CurrentPeriodEnd, now)
	}
	return status, true
}

func (provider *StatusProvider) toCache(context context.Context, userID string, status *Status) {
	if provider.cache == nil || provider.ttl <= 0 {
		return
	}

	raw, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := provider.cache.Set(context, statusKey(userID), raw, provider.ttl).Err(); err != nil {
		provider.logger.WarnContext(context, "subscription_cache_write_failed", slog.Any("error", err))
	}
}
