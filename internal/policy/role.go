package policy

import "strings"

// Role is one of the closed set of privilege classes. An unrecognised role
// carries no permissions; decisions never error on it.
type Role string

const (
	// RoleSuperAdmin has unconditional access to every resource.
	RoleSuperAdmin Role = "SUPERADMIN"
	// RoleOwner is scoped to the single project it owns.
	RoleOwner Role = "OWNER"
	// RoleEmployee is scoped to a single active project membership.
	RoleEmployee Role = "EMPLOYEE"
)

// hierarchy orders roles from highest to lowest privilege. It is used only
// for ranking in listings and reports; decisions go through the explicit
// permission tables.
var hierarchy = []Role{RoleSuperAdmin, RoleOwner, RoleEmployee}

// ParseRole normalises a claim value into a Role. Unknown values are
// returned as-is; they resolve to zero permissions downstream.
func ParseRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

// Known reports whether the role belongs to the closed set.
func (r Role) Known() bool {
	for _, known := range hierarchy {
		if r == known {
			return true
		}
	}
	return false
}

// Rank returns the hierarchy position of a role, 0 being the highest
// privilege. Unknown roles rank below every known role. Rank is
// informational only and must never feed an allow/deny decision.
func Rank(role Role) int {
	for i, known := range hierarchy {
		if role == known {
			return i
		}
	}
	return len(hierarchy)
}
