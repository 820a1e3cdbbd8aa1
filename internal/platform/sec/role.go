// Copyright (c) 2026 Trailforge. All rights reserved.

package sec

// # User Roles

// Role represents the authorization level granted to an account.
type Role string

const (
	// Default role for standard registered users
	RoleUser Role = "user"

	// Accompanies tours in the field
	RoleGuide Role = "guide"

	// Manages tours and their guide rosters
	RoleLeadGuide Role = "lead-guide"

	// Unrestricted system access
	RoleAdmin Role = "admin"
)

// Roles lists every valid role value, for enum validation on signup.
var Roles = []string{string(RoleUser), string(RoleGuide), string(RoleLeadGuide), string(RoleAdmin)}

// In reports whether the role is a member of the allow-list.
//
// Access control is an explicit allow-set per route, not a numeric
// hierarchy: a guide is not a "lesser admin", the roles gate disjoint
// capabilities (e.g. only plain users may write reviews).
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// Identity is the authenticated caller attached to the request context by
// the protect middleware after full token verification and user resolution.
type Identity struct {
	ID   string
	Role Role
}
