package schema

// LibraryCollectionItemTable represents the 'briefly.collection_items' table
type LibraryCollectionItemTable struct {
	Table        string
	CollectionID string
	SummaryID    string
	AddedAt      string
}

// LibraryCollectionItem is the schema definition for briefly.collection_items
var LibraryCollectionItem = LibraryCollectionItemTable{
	Table:        "briefly.collection_items",
	CollectionID: "collection_id",
	SummaryID:    "summary_id",
	AddedAt:      "added_at",
}
