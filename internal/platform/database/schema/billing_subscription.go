package schema

// BillingSubscriptionTable represents the 'briefly.subscriptions' table
type BillingSubscriptionTable struct {
	Table              string
	ID                 string
	UserID             string
	PlanID             string
	Status             string
	PaymentProvider    string
	CustomerID         string
	SubscriptionID     string
	CurrentPeriodStart string
	CurrentPeriodEnd   string
	CancelAtPeriodEnd  string
	CreatedAt          string
	UpdatedAt          string
}

// BillingSubscription is the schema definition for briefly.subscriptions
var BillingSubscription = BillingSubscriptionTable{
	Table:              "briefly.subscriptions",
	ID:                 "id",
	UserID:             "user_id",
	PlanID:             "plan_id",
	Status:             "status",
	PaymentProvider:    "payment_provider",
	CustomerID:         "customer_id",
	SubscriptionID:     "subscription_id",
	CurrentPeriodStart: "current_period_start",
	CurrentPeriodEnd:   "current_period_end",
	CancelAtPeriodEnd:  "cancel_at_period_end",
	CreatedAt:          "created_at",
	UpdatedAt:          "updated_at",
}
