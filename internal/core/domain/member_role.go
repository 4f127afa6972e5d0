package domain

import (
	"strings"
	"time"
)

// MemberRole is an entry of the association's role catalog (BENEVOLE, ...)
// that Member.RoleName refers to by name. It is unrelated to the token Role.
type MemberRole struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Role names are stored upper-cased.
const (
	MinRoleNameLength = 2
	MaxRoleNameLength = 30
)

// NormalizeRoleName trims and upper-cases a catalog role name.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
