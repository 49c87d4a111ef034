// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/payment"
	"github.com/taibuivan/briefly/internal/platform/sec"
	"github.com/taibuivan/briefly/internal/platform/validate"
)

// WebhookRecorder counts relayed deliveries by outcome.
type WebhookRecorder interface {
	RecordWebhook(eventType, outcome string)
}

// Webhook outcomes.
const (
	outcomeApplied   = "applied"
	outcomeDuplicate = "duplicate"
	outcomeIgnored   = "ignored"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

var errProviderDisabled = errors.New("billing: payment provider is not configured")

// Service orchestrates plans, checkout, cancellation and the webhook relay.
type Service struct {
	repo        Repository
	status      *StatusProvider
	provider    payment.Provider
	metrics     WebhookRecorder
	frontendURL string
	logger      *slog.Logger
}

// NewService creates the billing [Service]. provider may be nil when billing
// is not configured; provider-backed operations then fail as unavailable.
func NewService(repo Repository, status *StatusProvider, provider payment.Provider, metrics WebhookRecorder, frontendURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		status:      status,
		provider:    provider,
		metrics:     metrics,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// # Plans & Status

func (service *Service) ListPlans(context context.Context) ([]*Plan, error) {
	return service.repo.ListActivePlans(context)
}

func (service *Service) Status(context context.Context, userID string) (*Status, error) {
	return service.status.Status(context, userID)
}

// # Checkout

/*
CreateCheckout starts a hosted checkout for the caller.

Description: A customer id from an earlier subscription is reused so the
provider keeps one customer per user. The user and plan ids travel as
subscription metadata and come back on the webhook.

Returns:
  - *CheckoutSession: The URL to redirect to
  - error: NotFound for unknown/inactive plans, UpstreamUnavailable for provider failures
*/
func (service *Service) CreateCheckout(context context.Context, caller *sec.AuthClaims, input CheckoutInput) (*CheckoutSession, error) {
	input.PlanID = strings.ToLower(strings.TrimSpace(input.PlanID))
	if err := (&validate.Validator{}).Required(FieldPlanID, input.PlanID).UUID(FieldPlanID, input.PlanID).Err(); err != nil {
		return nil, err
	}

	if service.provider == nil {
		return nil, apperr.UpstreamUnavailable("payment", errProviderDisabled)
	}

	plan, err := service.repo.FindPlan(context, input.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, apperr.NotFound("Plan")
	}

	customerID, err := service.repo.CustomerID(context, caller.UserID)
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, err
	}

	amount, interval := plan.PriceMonthly, payment.IntervalMonth
	if input.Yearly {
		amount, interval = plan.PriceYearly, payment.IntervalYear
	}

	url, err := service.provider.CreateCheckout(context, payment.CheckoutInput{
		UserID:      caller.UserID,
		Email:       caller.Email,
		CustomerID:  customerID,
		PlanID:      plan.ID,
		PlanName:    plan.Name,
		AmountCents: amount,
		Currency:    "usd",
		Interval:    interval,
		SuccessURL:  service.frontendURL + "/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   service.frontendURL + "/subscription/cancel",
	})
	if err != nil {
		return nil, apperr.UpstreamUnavailable("payment", err)
	}

	service.logger.InfoContext(context, "checkout_session_created",
		slog.String("user_id", caller.UserID),
		slog.String("plan_id", plan.ID),
		slog.String("interval", interval),
	)
	return &CheckoutSession{URL: url}, nil
}

// # Cancellation

/*
CancelSubscription schedules the caller's active subscription to end with the
current period. The provider is told first; the local flag follows.
*/
func (service *Service) CancelSubscription(context context.Context, userID string) (*Status, error) {
	if service.provider == nil {
		return nil, apperr.UpstreamUnavailable("payment", errProviderDisabled)
	}

	subscription, err := service.repo.CurrentSubscription(context, userID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Active subscription")
		}
		return nil, err
	}
	if !isActive(subscription, service.status.now()) {
		return nil, apperr.NotFound("Active subscription")
	}

	if _, err := service.provider.CancelAtPeriodEnd(context, subscription.SubscriptionID); err != nil {
		return nil, apperr.UpstreamUnavailable("payment", err)
	}

	if err := service.repo.MarkCancelAtPeriodEnd(context, subscription.ID); err != nil {
		return nil, err
	}
	service.status.Invalidate(context, userID)

	service.logger.InfoContext(context, "subscription_cancel_scheduled",
		slog.String("user_id", userID),
		slog.String("subscription_id", subscription.SubscriptionID),
	)
	return service.status.Status(context, userID)
}

// # Webhook Relay

/*
HandleWebhook verifies and relays one provider event into the subscription table.

Description: The event id is recorded in the delivery ledger in the same
transaction as the mutation, so a redelivered event reports duplicate and
changes nothing. Unknown event types are acknowledged and ignored.

Parameters:
  - context: context.Context
  - payload: []byte (Raw request body, as signed)
  - signature: string (Signature header)

Returns:
  - *WebhookResult: {received, duplicate}
  - error: ValidationError for bad signatures or unresolvable users/plans
*/
func (service *Service) HandleWebhook(context context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if service.provider == nil {
		return nil, apperr.UpstreamUnavailable("payment", errProviderDisabled)
	}

	// ── 1. Verification ──
	if signature == "" {
		return nil, apperr.ValidationError("Missing webhook signature")
	}
	event, err := service.provider.ParseEvent(payload, signature)
	if err != nil {
		service.record("unknown", outcomeRejected)
		return nil, apperr.ValidationError("Invalid webhook signature").WithCause(err)
	}

	// ── 2. Translation ──
	change, err := service.changeFor(context, event)
	if err != nil {
		service.record(event.Type, outcomeFailed)
		service.logger.WarnContext(context, "webhook_event_rejected",
			slog.String("event_id", event.ID),
			slog.String("event_type", event.Type),
			slog.Any("error", err),
		)
		return nil, err
	}

	// ── 3. Ledger + mutation ──
	userID, duplicate, err := service.repo.ApplyWebhook(context, event.ID, event.Type, change)
	if err != nil {
		service.record(event.Type, outcomeFailed)
		return nil, err
	}

	switch {
	case duplicate:
		service.record(event.Type, outcomeDuplicate)
	case change == nil:
		service.record(event.Type, outcomeIgnored)
	default:
		service.record(event.Type, outcomeApplied)
		service.status.Invalidate(context, userID)
	}

	service.logger.InfoContext(context, "webhook_event_processed",
		slog.String("event_id", event.ID),
		slog.String("event_type", event.Type),
		slog.Bool("duplicate", duplicate),
	)
	return &WebhookResult{Received: true, Duplicate: duplicate}, nil
}

// changeFor maps a provider event to the subscription change it implies.
func (service *Service) changeFor(context context.Context, event *payment.Event) (*Change, error) {
	switch event.Type {
	case payment.EventSubscriptionCreated, payment.EventSubscriptionUpdated:
		if event.Subscription == nil {
			return nil, apperr.ValidationError("Subscription payload missing")
		}
		return service.subscriptionChange(context, event.Subscription)

	case payment.EventSubscriptionDeleted:
		if event.Subscription == nil {
			return nil, apperr.ValidationError("Subscription payload missing")
		}
		canceled := StatusCanceled
		return &Change{SubscriptionID: event.Subscription.ID, Status: &canceled}, nil

	case payment.EventPaymentSucceeded:
		if event.SubscriptionID == "" {
			return nil, nil
		}
		current, err := service.provider.FetchSubscription(context, event.SubscriptionID)
		if err != nil {
			return nil, apperr.UpstreamUnavailable("payment", err)
		}
		return &Change{
			SubscriptionID: event.SubscriptionID,
			Status:         &current.Status,
			PeriodStart:    &current.CurrentPeriodStart,
			PeriodEnd:      &current.CurrentPeriodEnd,
		}, nil

	case payment.EventPaymentFailed:
		if event.SubscriptionID == "" {
			return nil, nil
		}
		pastDue := StatusPastDue
		return &Change{SubscriptionID: event.SubscriptionID, Status: &pastDue}, nil
	}

	return nil, nil
}

// subscriptionChange resolves the owning user and plan of a provider subscription.
func (service *Service) subscriptionChange(context context.Context, sub *payment.Subscription) (*Change, error) {

	// User: metadata first, then an earlier row for the same customer
	userID := sub.Metadata["user_id"]
	if userID == "" && sub.CustomerID != "" {
		resolved, err := service.repo.UserByCustomer(context, sub.CustomerID)
		if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, err
		}
		userID = resolved
	}
	if userID == "" {
		return nil, apperr.ValidationError("No user found for this subscription")
	}

	// Plan: metadata first, then the default plan by name
	var (
		plan *Plan
		err  error
	)
	if planID := sub.Metadata["plan_id"]; planID != "" {
		plan, err = service.repo.FindPlan(context, planID)
	} else {
		plan, err = service.repo.FindPlanByName(context, DefaultPlanName)
	}
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.ValidationError("No matching plan found")
		}
		return nil, err
	}

	start, end := sub.CurrentPeriodStart, sub.CurrentPeriodEnd
	row := &Subscription{
		UserID:             userID,
		PlanID:             &plan.ID,
		Status:             sub.Status,
		SubscriptionID:     sub.ID,
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if sub.CustomerID != "" {
		customerID := sub.CustomerID
		row.CustomerID = &customerID
	}
	return &Change{Upsert: row}, nil
}

func (service *Service) record(eventType, outcome string) {
	if service.metrics != nil {
		service.metrics.RecordWebhook(eventType, outcome)
	}
}
