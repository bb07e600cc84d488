// Package models contains data structures for the application's domain models.
package models

import "strings"

// Role is the caller's account category.
type Role string

const (
	// RoleVisitor is an anonymous or unrecognised caller.
	RoleVisitor Role = "visitor"
	// RoleTalent is a performer whose profile is listed on the marketplace.
	RoleTalent Role = "talent"
	// RoleProfessional is an individual casting professional.
	RoleProfessional Role = "professional"
	// RoleCompany is a production company or agency account.
	RoleCompany Role = "company"
	// RoleAdmin is a platform administrator.
	RoleAdmin Role = "admin"
)

// ParseRole normalizes a stored or claimed role. Anything outside the known
// set resolves to RoleVisitor.
func ParseRole(raw string) Role {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleTalent, RoleProfessional, RoleCompany, RoleAdmin, RoleVisitor:
		return r
	case "administrator":
		return RoleAdmin
	default:
		return RoleVisitor
	}
}

// rank orders roles for "at least as privileged as" checks. Professional and
// company share a rank; they are peers, not ordered against each other.
func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleProfessional, RoleCompany:
		return 2
	case RoleTalent:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is at least as privileged as other.
func (r Role) AtLeast(other Role) bool {
	if r == RoleAdmin {
		return true
	}
	if other == RoleAdmin {
		return false
	}
	return r.rank() >= other.rank()
}

// IsSubscriber reports whether the role belongs to the paying account set.
func (r Role) IsSubscriber() bool {
	return r == RoleProfessional || r == RoleCompany
}

// IsAdmin reports whether the role is the administrator role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return ParseRole(string(r)) == r
}
