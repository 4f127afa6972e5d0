package ports

import (
	"context"

	"github.com/elikia/membership-auth/internal/core/domain"
)

// LoginResult is the structured outcome of a login attempt. Status mirrors
// the HTTP status the transport layer should answer with.
type LoginResult struct {
	Status  int
	Message string
	Token   string
	Role    domain.Role
	// Reason is nil on success, otherwise one of the domain sentinels.
	Reason error
}

// LoginService decides login attempts. The returned error is reserved for
// infrastructure failures; credential outcomes travel in LoginResult.
type LoginService interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
}

// RegisterInput is the transport-agnostic registration payload.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountService covers registration and admin-side membership management.
type AccountService interface {
	RegisterMember(ctx context.Context, in RegisterInput) (*domain.Member, error)
	CreateAdmin(ctx context.Context, in RegisterInput) (*domain.Admin, error)
	UpdateMember(ctx context.Context, id string, status domain.MemberStatus, roleName string) (*domain.Member, error)
}

// RoleService manages the member role catalog.
type RoleService interface {
	CreateRole(ctx context.Context, name string) (*domain.MemberRole, error)
	ListRoles(ctx context.Context) ([]domain.MemberRole, error)
	GetRole(ctx context.Context, id string) (*domain.MemberRole, error)
	DeleteRole(ctx context.Context, id string) error
}

// LoginAuditor receives decided login attempts. Implementations must not block.
type LoginAuditor interface {
	Record(event domain.LoginEvent)
}

// IdentityLocker serializes login attempts per identity.
type IdentityLocker interface {
	// Lock blocks until the key is held or ctx ends; the returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}
