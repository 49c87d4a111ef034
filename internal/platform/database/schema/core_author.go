package schema

// CoreAuthorTable represents the 'briefly.authors' table
type CoreAuthorTable struct {
	Table     string
	ID        string
	Name      string
	Bio       string
	ImageURL  string
	CreatedAt string
	UpdatedAt string
}

// CoreAuthor is the schema definition for briefly.authors
var CoreAuthor = CoreAuthorTable{
	Table:     "briefly.authors",
	ID:        "id",
	Name:      "name",
	Bio:       "bio",
	ImageURL:  "image_url",
	CreatedAt: "created_at",
	UpdatedAt: "updated_at",
}

func (t CoreAuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.Bio, t.ImageURL, t.CreatedAt, t.UpdatedAt}
}
