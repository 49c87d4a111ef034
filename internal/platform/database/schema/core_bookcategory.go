package schema

// CoreBookCategoryTable represents the 'briefly.book_categories' table
type CoreBookCategoryTable struct {
	Table      string
	BookID     string
	CategoryID string
}

// CoreBookCategory is the schema definition for briefly.book_categories
var CoreBookCategory = CoreBookCategoryTable{
	Table:      "briefly.book_categories",
	BookID:     "book_id",
	CategoryID: "category_id",
}
