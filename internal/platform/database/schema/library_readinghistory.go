package schema

// LibraryReadingHistoryTable represents the 'briefly.reading_history' table
type LibraryReadingHistoryTable struct {
	Table      string
	UserID     string
	SummaryID  string
	Progress   string
	Completed  string
	LastReadAt string
}

// LibraryReadingHistory is the schema definition for briefly.reading_history
var LibraryReadingHistory = LibraryReadingHistoryTable{
	Table:      "briefly.reading_history",
	UserID:     "user_id",
	SummaryID:  "summary_id",
	Progress:   "progress",
	Completed:  "completed",
	LastReadAt: "last_read_at",
}
