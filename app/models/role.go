package models

import "strings"

// Role is the caller role asserted by the X-User-Role header or a bearer token.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole lower-cases raw and reports whether it names a known role.
func ParseRole(raw string) (Role, bool) {
	switch role := Role(strings.ToLower(strings.TrimSpace(raw))); role {
	case RoleAdmin, RoleUser:
		return role, true
	}
	return "", false
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }
