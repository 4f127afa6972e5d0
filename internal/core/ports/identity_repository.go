package ports

import (
	"context"

	"github.com/elikia/membership-auth/internal/core/domain"
)

// IdentityRepository resolves identities across the admin and member spaces
// and persists their lockout fields.
type IdentityRepository interface {
	// FindAdminByEmail returns domain.ErrIdentityNotFound when no admin matches.
	FindAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	// FindMemberByEmail returns domain.ErrIdentityNotFound when no member matches.
	FindMemberByEmail(ctx context.Context, email string) (*domain.Member, error)
	// SaveLockout writes only the lockout fields, conditioned on the identity's
	// Version. A stale version yields domain.ErrVersionConflict.
	SaveLockout(ctx context.Context, identity domain.Identity, lockout domain.Lockout) error
}

// AccountRepository manages identity records outside of the login path.
type AccountRepository interface {
	CreateAdmin(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
	CreateMember(ctx context.Context, member *domain.Member) (*domain.Member, error)
	FindMemberByID(ctx context.Context, id string) (*domain.Member, error)
	UpdateMemberProfile(ctx context.Context, id string, status domain.MemberStatus, roleName string) (*domain.Member, error)
}

// RoleRepository stores the member role catalog. Names are unique and
// already normalized by the caller.
type RoleRepository interface {
	// FindRoleByName returns domain.ErrRoleNotFound when no role matches.
	FindRoleByName(ctx context.Context, name string) (*domain.MemberRole, error)
	// FindRoleByID returns domain.ErrRoleNotFound when no role matches.
	FindRoleByID(ctx context.Context, id string) (*domain.MemberRole, error)
	ListRoles(ctx context.Context) ([]domain.MemberRole, error)
	// CreateRole returns domain.ErrRoleExists on a duplicate name.
	CreateRole(ctx context.Context, role *domain.MemberRole) (*domain.MemberRole, error)
	DeleteRole(ctx context.Context, id string) error
}

// LoginEventRepository stores the login audit trail.
type LoginEventRepository interface {
	InsertLoginEvent(ctx context.Context, event *domain.LoginEvent) error
}
