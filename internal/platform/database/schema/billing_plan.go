package schema

// BillingPlanTable represents the 'briefly.plans' table
type BillingPlanTable struct {
	Table        string
	ID           string
	Name         string
	Description  string
	PriceMonthly string
	PriceYearly  string
	Features     string
	IsActive     string
}

// BillingPlan is the schema definition for briefly.plans
var BillingPlan = BillingPlanTable{
	Table:        "briefly.plans",
	ID:           "id",
	Name:         "name",
	Description:  "description",
	PriceMonthly: "price_monthly",
	PriceYearly:  "price_yearly",
	Features:     "features",
	IsActive:     "is_active",
}
