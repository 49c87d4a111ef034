package schema

// CoreBookTable represents the 'briefly.books' table
type CoreBookTable struct {
	Table         string
	ID            string
	Title         string
	Description   string
	CoverImageURL string
	AuthorID      string
	PublishedYear string
	ISBN          string
	Language      string
	PageCount     string
	CreatedAt     string
	UpdatedAt     string
}

// CoreBook is the schema definition for briefly.books
var CoreBook = CoreBookTable{
	Table:         "briefly.books",
	ID:            "id",
	Title:         "title",
	Description:   "description",
	CoverImageURL: "cover_image_url",
	AuthorID:      "author_id",
	PublishedYear: "published_year",
	ISBN:          "isbn",
	Language:      "language",
	PageCount:     "page_count",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}
