package schema

// BillingWebhookEventTable represents the 'briefly.webhook_events' table
type BillingWebhookEventTable struct {
	Table      string
	EventID    string
	EventType  string
	ReceivedAt string
}

// BillingWebhookEvent is the schema definition for briefly.webhook_events
var BillingWebhookEvent = BillingWebhookEventTable{
	Table:      "briefly.webhook_events",
	EventID:    "event_id",
	EventType:  "event_type",
	ReceivedAt: "received_at",
}
