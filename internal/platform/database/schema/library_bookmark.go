package schema

// LibraryBookmarkTable represents the 'briefly.bookmarks' table
type LibraryBookmarkTable struct {
	Table     string
	UserID    string
	SummaryID string
	CreatedAt string
}

// LibraryBookmark is the schema definition for briefly.bookmarks
var LibraryBookmark = LibraryBookmarkTable{
	Table:     "briefly.bookmarks",
	UserID:    "user_id",
	SummaryID: "summary_id",
	CreatedAt: "created_at",
}
