// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package billing

import "context"

// Repository defines the data access contract for plans and subscriptions.
type Repository interface {
	ListActivePlans(context context.Context) ([]*Plan, error)
	FindPlan(context context.Context, id string) (*Plan, error)
	FindPlanByName(context context.Context, name string) (*Plan, error)

	/*
		CurrentSubscription returns the user's subscription with the latest
		period end, joined with its plan name.

		Returns:
		  - *Subscription: The most relevant row, whatever its status
		  - error: apperr NotFound if the user never subscribed
	*/
	CurrentSubscription(context context.Context, userID string) (*Subscription, error)

	// CustomerID returns the most recent provider customer id known for the user.
	CustomerID(context context.Context, userID string) (string, error)

	// UserByCustomer resolves a provider customer id to the subscribing user.
	UserByCustomer(context context.Context, customerID string) (string, error)

	// MarkCancelAtPeriodEnd flags the row identified by its local id.
	MarkCancelAtPeriodEnd(context context.Context, id string) error

	/*
		ApplyWebhook records eventID in the delivery ledger and applies change in
		the same transaction.

		Parameters:
		  - context: context.Context
		  - eventID: string (Provider event id, the idempotency key)
		  - eventType: string
		  - change: *Change (nil records the delivery only)

		Returns:
		  - string: The affected user id, empty when nothing changed
		  - bool: true when the event was already recorded; nothing is mutated then
		  - error: Storage failures
	*/
	ApplyWebhook(context context.Context, eventID, eventType string, change *Change) (string, bool, error)
}
