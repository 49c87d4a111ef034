// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Catalogue curation, generation requests and all reader capabilities
	RoleAdmin UserRole = "admin"

	// Default role for standard registered readers
	RoleMember UserRole = "member"
)

// ParseRole maps a raw claim to a known role. Unknown values fall back to member.
func ParseRole(raw string) UserRole {
	if UserRole(raw) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale leaves room for intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleMember:
		return 10
	default:
		return 0
	}
}
