package schema

// CoreSummaryTable represents the 'briefly.summaries' table
type CoreSummaryTable struct {
	Table          string
	ID             string
	BookID         string
	Title          string
	Subtitle       string
	TextContent    string
	ReadingTime    string
	AudioURL       string
	AudioDuration  string
	IsPremium      string
	IsPublished    string
	Version        string
	CreatedBy      string
	SearchDocument string
	CreatedAt      string
	UpdatedAt      string
}

// CoreSummary is the schema definition for briefly.summaries
var CoreSummary = CoreSummaryTable{
	Table:          "briefly.summaries",
	ID:             "id",
	BookID:         "book_id",
	Title:          "title",
	Subtitle:       "subtitle",
	TextContent:    "text_content",
	ReadingTime:    "reading_time",
	AudioURL:       "audio_url",
	AudioDuration:  "audio_duration",
	IsPremium:      "is_premium",
	IsPublished:    "is_published",
	Version:        "version",
	CreatedBy:      "created_by",
	SearchDocument: "search_document",
	CreatedAt:      "created_at",
	UpdatedAt:      "updated_at",
}
