// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func signedHeader(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

/*
TestParseStripeEvent_Subscription decodes a signed subscription event.
*/
func TestParseStripeEvent_Subscription(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "customer.subscription.updated",
		"data": {"object": {
			"id": "sub_1",
			"object": "subscription",
			"customer": "cus_1",
			"status": "active",
			"current_period_start": 1700000000,
			"current_period_end": 1702592000,
			"cancel_at_period_end": false,
			"metadata": {"user_id": "user-1", "plan_id": "plan-1"}
		}}
	}`)

	event, err := parseStripeEvent(payload, signedHeader(payload, testSecret, time.Now()), testSecret)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventSubscriptionUpdated, event.Type)
	require.NotNil(t, event.Subscription)
	assert.Equal(t, "sub_1", event.Subscription.ID)
	assert.Equal(t, "cus_1", event.Subscription.CustomerID)
	assert.Equal(t, "active", event.Subscription.Status)
	assert.Equal(t, time.Unix(1702592000, 0).UTC(), event.Subscription.CurrentPeriodEnd)
	assert.Equal(t, "user-1", event.Subscription.Metadata["user_id"])
}

/*
TestParseStripeEvent_Invoice extracts the subscription reference from invoices.
*/
func TestParseStripeEvent_Invoice(t *testing.T) {
	payload := []byte(`{
		"id": "evt_2",
		"object": "event",
		"type": "invoice.payment_failed",
		"data": {"object": {"id": "in_1", "object": "invoice", "subscription": "sub_9", "customer": "cus_9", "customer_email": "reader@briefly.app"}}
	}`)

	event, err := parseStripeEvent(payload, signedHeader(payload, testSecret, time.Now()), testSecret)
	require.NoError(t, err)

	assert.Equal(t, EventPaymentFailed, event.Type)
	assert.Equal(t, "sub_9", event.SubscriptionID)
	assert.Equal(t, "cus_9", event.CustomerID)
	assert.Equal(t, "reader@briefly.app", event.CustomerEmail)
}

/*
TestParseStripeEvent_BadSignature rejects tampered and stale deliveries.
*/
func TestParseStripeEvent_BadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_3","object":"event","type":"customer.subscription.deleted","data":{"object":{}}}`)

	_, err := parseStripeEvent(payload, signedHeader(payload, "whsec_other", time.Now()), testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = parseStripeEvent(payload, signedHeader(payload, testSecret, time.Now().Add(-time.Hour)), testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = parseStripeEvent(payload, "", testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}
