// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import "time"

// Subscription statuses as reported by the payment provider.
const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// DefaultPlanName is used when a provider subscription carries no plan reference.
const DefaultPlanName = "Premium"

const providerStripe = "stripe"

// Plan is a purchasable subscription tier. Prices are in cents.
type Plan struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	PriceMonthly int64    `json:"price_monthly"`
	PriceYearly  int64    `json:"price_yearly"`
	Features     []string `json:"features"`
	IsActive     bool     `json:"is_active"`
}

// Subscription is the local mirror of a provider subscription.
type Subscription struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	PlanID             *string    `json:"plan_id"`
	PlanName           *string    `json:"plan_name"`
	Status             string     `json:"status"`
	PaymentProvider    string     `json:"payment_provider"`
	CustomerID         *string    `json:"customer_id"`
	SubscriptionID     string     `json:"subscription_id"`
	CurrentPeriodStart *time.Time `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Status is the derived subscription view consumed by entitlement checks and clients.
type Status struct {
	HasActiveSubscription bool       `json:"has_active_subscription"`
	PlanName              *string    `json:"plan_name"`
	DaysRemaining         int        `json:"days_remaining"`
	CurrentPeriodEnd      *time.Time `json:"current_period_end"`
	CancelAtPeriodEnd     bool       `json:"cancel_at_period_end"`
}

// Change describes the subscription mutation carried by one webhook event.
// Exactly one of Upsert or SubscriptionID is set; a nil *Change mutates nothing.
type Change struct {
	Upsert *Subscription

	SubscriptionID string
	Status         *string
	PeriodStart    *time.Time
	PeriodEnd      *time.Time
}

// CheckoutInput is the validated payload of a checkout request.
type CheckoutInput struct {
	PlanID string `json:"plan_id"`
	Yearly bool   `json:"yearly"`
}

// CheckoutSession is returned to the client to redirect to hosted checkout.
type CheckoutSession struct {
	URL string `json:"url"`
}

// WebhookResult acknowledges a relayed webhook delivery.
type WebhookResult struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
}

const FieldPlanID = "plan_id"

// isActive applies the entitlement definition of an active subscription.
func isActive(subscription *Subscription, now time.Time) bool {
	if subscription == nil || subscription.CurrentPeriodEnd == nil {
		return false
	}
	if subscription.Status != StatusActive && subscription.Status != StatusTrialing {
		return false
	}
	return subscription.CurrentPeriodEnd.After(now)
}
