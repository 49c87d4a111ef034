// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeProvider implements [Provider] with Stripe.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProvider creates a provider bound to a secret API key.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProvider{api: api, webhookSecret: webhookSecret}
}

// ParseEvent implements [Provider].
func (provider *StripeProvider) ParseEvent(payload []byte, signatureHeader string) (*Event, error) {
	return parseStripeEvent(payload, signatureHeader, provider.webhookSecret)
}

// parseStripeEvent is separated from the client so it can be exercised
// without network access.
func parseStripeEvent(payload []byte, signatureHeader, secret string) (*Event, error) {
	raw, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	event := &Event{ID: raw.ID, Type: string(raw.Type)}
	if raw.Data == nil {
		return event, nil
	}

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var subscription stripe.Subscription
		if err := json.Unmarshal(raw.Data.Raw, &subscription); err != nil {
			return nil, fmt.Errorf("payment: decode subscription: %w", err)
		}
		event.Subscription = fromStripeSubscription(&subscription)
		event.CustomerID = event.Subscription.CustomerID

	case EventPaymentSucceeded, EventPaymentFailed:
		var invoice stripe.Invoice
		if err := json.Unmarshal(raw.Data.Raw, &invoice); err != nil {
			return nil, fmt.Errorf("payment: decode invoice: %w", err)
		}
		if invoice.Subscription != nil {
			event.SubscriptionID = invoice.Subscription.ID
		}
		if invoice.Customer != nil {
			event.CustomerID = invoice.Customer.ID
		}
		event.CustomerEmail = invoice.CustomerEmail
	}

	return event, nil
}

// FetchSubscription implements [Provider].
func (provider *StripeProvider) FetchSubscription(context context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = context

	subscription, err := provider.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("payment: get subscription %s: %w", subscriptionID, err)
	}
	return fromStripeSubscription(subscription), nil
}

// CancelAtPeriodEnd implements [Provider].
func (provider *StripeProvider) CancelAtPeriodEnd(context context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{CancelAtPeriodEnd: stripe.Bool(true)}
	params.Context = context

	subscription, err := provider.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("payment: cancel subscription %s: %w", subscriptionID, err)
	}
	return fromStripeSubscription(subscription), nil
}

// CreateCheckout implements [Provider].
func (provider *StripeProvider) CreateCheckout(context context.Context, input CheckoutInput) (string, error) {
	currency := input.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	metadata := map[string]string{"user_id": input.UserID, "plan_id": input.PlanID}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(input.PlanName),
				},
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String(input.Interval),
				},
				UnitAmount: stripe.Int64(input.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(input.SuccessURL),
		CancelURL:         stripe.String(input.CancelURL),
		ClientReferenceID: stripe.String(input.UserID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	params.Context = context
	params.AddMetadata("user_id", input.UserID)
	params.AddMetadata("plan_id", input.PlanID)

	// Reuse the provider customer when one is known, otherwise let checkout create it
	if input.CustomerID != "" {
		params.Customer = stripe.String(input.CustomerID)
	} else if input.Email != "" {
		params.CustomerEmail = stripe.String(input.Email)
	}

	session, err := provider.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("payment: create checkout session: %w", err)
	}
	return session.URL, nil
}

func fromStripeSubscription(subscription *stripe.Subscription) *Subscription {
	result := &Subscription{
		ID:                 subscription.ID,
		Status:             string(subscription.Status),
		CurrentPeriodStart: unixTime(subscription.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(subscription.CurrentPeriodEnd),
		CancelAtPeriodEnd:  subscription.CancelAtPeriodEnd,
		Metadata:           subscription.Metadata,
	}
	if subscription.Customer != nil {
		result.CustomerID = subscription.Customer.ID
	}
	return result
}

func unixTime(seconds int64) time.Time {
	if seconds == 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
