// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package entitlement decides whether a caller may read a piece of content.

The rule is evaluated in order:

 1. Unpublished content only exists for admins; everyone else gets NotFound.
 2. Free content is readable by anyone.
 3. Premium content requires a signed-in caller.
 4. Premium content requires an active subscription.

The evaluator holds no per-call state and is safe for concurrent use. It performs
at most one subscription status read per evaluation.
*/
package entitlement

import (
	"context"

	"github.com/taibuivan/briefly/internal/platform/apperr"
	"github.com/taibuivan/briefly/internal/platform/sec"
)

// Decision is the outcome of an entitlement evaluation.
type Decision string

const (
	Allow            Decision = "ALLOW"
	DenyLogin        Decision = "DENY_LOGIN"
	DenySubscription Decision = "DENY_SUBSCRIPTION"
)

// Item is the part of a content record the rule looks at.
type Item struct {
	Published bool
	Premium   bool
}

// StatusReader reports whether a user currently holds an active subscription.
type StatusReader interface {
	HasActiveSubscription(context context.Context, userID string) (bool, error)
}

// DecisionRecorder counts decisions.
type DecisionRecorder interface {
	RecordEntitlement(decision string)
}

// Evaluator applies the entitlement rule.
type Evaluator struct {
	status  StatusReader
	metrics DecisionRecorder
}

// NewEvaluator creates an [Evaluator]. metrics may be nil.
func NewEvaluator(status StatusReader, metrics DecisionRecorder) *Evaluator {
	return &Evaluator{status: status, metrics: metrics}
}

/*
Evaluate decides whether caller may read item.

Parameters:
  - context: context.Context
  - caller: *sec.AuthClaims (nil for anonymous callers)
  - item: Item

Returns:
  - Decision: ALLOW, DENY_LOGIN or DENY_SUBSCRIPTION
  - error: apperr.NotFound for unpublished content seen by non-admins, or a
    subscription status failure
*/
func (evaluator *Evaluator) Evaluate(context context.Context, caller *sec.AuthClaims, item Item) (Decision, error) {
	decision, err := evaluator.decide(context, caller, item)
	if err == nil && evaluator.metrics != nil {
		evaluator.metrics.RecordEntitlement(string(decision))
	}
	return decision, err
}

func (evaluator *Evaluator) decide(context context.Context, caller *sec.AuthClaims, item Item) (Decision, error) {
	// Admins preview drafts; published premium content still needs a subscription.
	if !item.Published {
		if caller.IsAdmin() {
			return Allow, nil
		}
		return "", apperr.NotFound("Summary")
	}

	if !item.Premium {
		return Allow, nil
	}

	if caller == nil {
		return DenyLogin, nil
	}

	active, err := evaluator.status.HasActiveSubscription(context, caller.UserID)
	if err != nil {
		return "", err
	}
	if !active {
		return DenySubscription, nil
	}
	return Allow, nil
}

// Err maps a denial onto the error returned to the client. It returns nil for [Allow].
func (decision Decision) Err() error {
	switch decision {
	case DenyLogin:
		return apperr.LoginRequired()
	case DenySubscription:
		return apperr.SubscriptionRequired()
	}
	return nil
}
