package schema

// CoreKeyInsightTable represents the 'briefly.key_insights' table
type CoreKeyInsightTable struct {
	Table      string
	ID         string
	SummaryID  string
	Title      string
	Content    string
	OrderIndex string
}

// CoreKeyInsight is the schema definition for briefly.key_insights
var CoreKeyInsight = CoreKeyInsightTable{
	Table:      "briefly.key_insights",
	ID:         "id",
	SummaryID:  "summary_id",
	Title:      "title",
	Content:    "content",
	OrderIndex: "order_index",
}
