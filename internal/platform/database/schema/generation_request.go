package schema

// GenerationRequestTable represents the 'briefly.generation_requests' table
type GenerationRequestTable struct {
	Table           string
	ID              string
	BookID          string
	RequestedBy     string
	Status          string
	Settings        string
	SourceURL       string
	SourceText      string
	ResultSummaryID string
	ErrorMessage    string
	CreatedAt       string
	UpdatedAt       string
}

// GenerationRequest is the schema definition for briefly.generation_requests
var GenerationRequest = GenerationRequestTable{
	Table:           "briefly.generation_requests",
	ID:              "id",
	BookID:          "book_id",
	RequestedBy:     "requested_by",
	Status:          "status",
	Settings:        "settings",
	SourceURL:       "source_url",
	SourceText:      "source_text",
	ResultSummaryID: "result_summary_id",
	ErrorMessage:    "error_message",
	CreatedAt:       "created_at",
	UpdatedAt:       "updated_at",
}
