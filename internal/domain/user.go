package domain

import "time"

// Role enumerates authorization levels for shop accounts. The stored values
// double as the wire representation.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "tecnico"
	RoleAttendant  Role = "atendente"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleAttendant:
		return true
	}
	return false
}

// CanAccess is a pure membership test against the allowed set. An empty
// allowed set means any authenticated role may proceed.
func (r Role) CanAccess(allowed ...Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if r == candidate {
			return true
		}
	}
	return false
}

// User is the domain model for shop operator accounts. Email is stored
// lowercase; deactivation is the soft-delete path.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	Active       bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
