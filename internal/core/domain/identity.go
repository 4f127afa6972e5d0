package domain

import (
	"strings"
	"time"
)

// Role is the coarse permission tag carried in tokens and compared against route policy.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// MemberStatus is the membership lifecycle state of a Member.
type MemberStatus string

const (
	StatusPendingReview MemberStatus = "INSCRIPTION_TRANSMISE"
	StatusValidated     MemberStatus = "VALIDE"
	StatusCancelled     MemberStatus = "ANNULEE"
)

// DefaultMemberRole is the role reference assigned to self-registered members.
const DefaultMemberRole = "BENEVOLE"

// IsKnown reports whether s is one of the statuses an admin may assign.
func (s MemberStatus) IsKnown() bool {
	switch s {
	case StatusPendingReview, StatusValidated, StatusCancelled:
		return true
	}
	return false
}

// Lockout holds the brute-force protection fields of an account.
type Lockout struct {
	FailedLoginAttempts int        `json:"failed_login_attempts"`
	LockUntil           *time.Time `json:"lock_until,omitempty"`
}

// IsLocked reports whether the lock window is still open at now.
func (l Lockout) IsLocked(now time.Time) bool {
	return l.LockUntil != nil && l.LockUntil.After(now)
}

// Account carries the attributes shared by every identity variant.
type Account struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Lockout      Lockout   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	// Version is bumped on every lockout write and guards compare-and-set updates.
	Version int64 `json:"-"`
}

// Identity is an Admin or a Member capable of authenticating.
type Identity interface {
	Base() *Account
	Role() Role
	isIdentity()
}

// Admin is an identity from the administrator space.
type Admin struct {
	Account
}

func (a *Admin) Base() *Account { return &a.Account }
func (a *Admin) Role() Role     { return RoleAdmin }
func (*Admin) isIdentity()      {}

// Member is an identity from the membership space.
type Member struct {
	Account
	Status   MemberStatus `json:"status"`
	RoleName string       `json:"role_name"`
}

func (m *Member) Base() *Account { return &m.Account }
func (m *Member) Role() Role     { return RoleMember }
func (*Member) isIdentity()      {}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
