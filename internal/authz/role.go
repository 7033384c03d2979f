package authz

import "fmt"

// Role is the coarse authorization level carried in every access token.
// RoleNone is the implicit state of a request without a credential.
type Role int

const (
	RoleNone   Role = 0
	RoleUser   Role = 1
	RoleAuthor Role = 2
	RoleAdmin  Role = 3
)

// ParseRole converts a persisted integer into a Role.
func ParseRole(v int) (Role, error) {
	switch Role(v) {
	case RoleUser, RoleAuthor, RoleAdmin:
		return Role(v), nil
	default:
		return RoleNone, fmt.Errorf("authz: unknown role %d", v)
	}
}

// String returns the role name used in logs and audit records.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAuthor:
		return "author"
	case RoleAdmin:
		return "admin"
	default:
		return "none"
	}
}

// Valid reports whether the role is one of the three assignable levels.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAuthor || r == RoleAdmin
}
