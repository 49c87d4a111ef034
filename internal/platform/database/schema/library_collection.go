package schema

// LibraryCollectionTable represents the 'briefly.collections' table
type LibraryCollectionTable struct {
	Table       string
	ID          string
	UserID      string
	Name        string
	Description string
	IsPublic    string
	CreatedAt   string
	UpdatedAt   string
}

// LibraryCollection is the schema definition for briefly.collections
var LibraryCollection = LibraryCollectionTable{
	Table:       "briefly.collections",
	ID:          "id",
	UserID:      "user_id",
	Name:        "name",
	Description: "description",
	IsPublic:    "is_public",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}
