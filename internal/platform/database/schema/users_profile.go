package schema

// UsersProfileTable represents the 'briefly.profiles' table
type UsersProfileTable struct {
	Table       string
	ID          string
	Username    string
	FullName    string
	AvatarURL   string
	Bio         string
	Preferences string
	CreatedAt   string
	UpdatedAt   string
}

// UsersProfile is the schema definition for briefly.profiles
var UsersProfile = UsersProfileTable{
	Table:       "briefly.profiles",
	ID:          "id",
	Username:    "username",
	FullName:    "full_name",
	AvatarURL:   "avatar_url",
	Bio:         "bio",
	Preferences: "preferences",
	CreatedAt:   "created_at",
	UpdatedAt:   "updated_at",
}

// Columns returns the selectable columns in scan order.
func (t UsersProfileTable) Columns() []string {
	return []string{t.ID, t.Username, t.FullName, t.AvatarURL, t.Bio, t.Preferences, t.CreatedAt, t.UpdatedAt}
}
