package schema

// CoreCategoryTable represents the 'briefly.categories' table
type CoreCategoryTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	ImageURL    string
	ParentID    string
	CreatedAt   string
}

// CoreCategory is the schema definition for briefly.categories
var CoreCategory = CoreCategoryTable{
	Table:       "briefly.categories",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	ImageURL:    "image_url",
	ParentID:    "parent_id",
	CreatedAt:   "created_at",
}

func (t CoreCategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.Description, t.ImageURL, t.ParentID, t.CreatedAt}
}
