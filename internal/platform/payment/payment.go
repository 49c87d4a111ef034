// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package payment is the boundary to the payment provider.

Briefly never owns payment state. It asks the provider for checkout sessions and
cancellations, and relays the provider's signed webhook events into local
subscription rows. Everything here is expressed in provider-neutral types so the
billing domain does not import the provider SDK.
*/
package payment

import (
	"context"
	"errors"
	"time"
)

// Event types relayed into the subscription table.
const (
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventPaymentSucceeded    = "invoice.payment_succeeded"
	EventPaymentFailed       = "invoice.payment_failed"
)

// Checkout intervals.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("payment: invalid webhook signature")

// Subscription is the provider's view of a recurring subscription.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	Metadata           map[string]string
}

// Event is a verified webhook delivery.
type Event struct {
	ID   string
	Type string

	// Subscription is set for customer.subscription.* events.
	Subscription *Subscription

	// SubscriptionID, CustomerID and CustomerEmail are set for invoice.* events.
	SubscriptionID string
	CustomerID     string
	CustomerEmail  string
}

// CheckoutInput describes a hosted checkout session for one plan.
type CheckoutInput struct {
	UserID      string
	Email       string
	CustomerID  string
	PlanID      string
	PlanName    string
	AmountCents int64
	Currency    string
	Interval    string
	SuccessURL  string
	CancelURL   string
}

// Provider is the payment provider contract used by the billing domain.
type Provider interface {

	/*
		ParseEvent verifies the signature header and decodes the payload.

		Returns:
		  - *Event: The verified event
		  - error: ErrInvalidSignature or a decoding error
	*/
	ParseEvent(payload []byte, signatureHeader string) (*Event, error)

	// FetchSubscription reads the current state of a subscription.
	FetchSubscription(context context.Context, subscriptionID string) (*Subscription, error)

	// CancelAtPeriodEnd schedules cancellation at the end of the paid period.
	CancelAtPeriodEnd(context context.Context, subscriptionID string) (*Subscription, error)

	// CreateCheckout starts a hosted checkout and returns its URL.
	CreateCheckout(context context.Context, input CheckoutInput) (string, error)
}
