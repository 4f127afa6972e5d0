package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

// PasswordHasher is the part of CredentialVerifier registration needs.
type PasswordHasher interface {
	Hash(raw string) (string, error)
}

// AccountService implements member registration, admin creation and the
// admin-side membership updates.
type AccountService struct {
	identities ports.IdentityRepository
	accounts   ports.AccountRepository
	roles      ports.RoleRepository
	hasher     PasswordHasher
	log        zerolog.Logger
}

func NewAccountService(
	identities ports.IdentityRepository,
	accounts ports.AccountRepository,
	roles ports.RoleRepository,
	hasher PasswordHasher,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{identities: identities, accounts: accounts, roles: roles, hasher: hasher, log: log}
}

// RegisterMember creates a member awaiting admin validation.
func (s *AccountService) RegisterMember(ctx context.Context, in ports.RegisterInput) (*domain.Member, error) {
	acct, err := s.newAccount(ctx, in)
	if err != nil {
		return nil, err
	}

	member, err := s.accounts.CreateMember(ctx, &domain.Member{
		Account:  *acct,
		Status:   domain.StatusPendingReview,
		RoleName: domain.DefaultMemberRole,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", member.Email).Msg("member registered")
	return member, nil
}

// CreateAdmin creates an administrator account.
func (s *AccountService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (*domain.Admin, error) {
	acct, err := s.newAccount(ctx, in)
	if err != nil {
		return nil, err
	}

	admin, err := s.accounts.CreateAdmin(ctx, &domain.Admin{Account: *acct})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("email", admin.Email).Msg("admin created")
	return admin, nil
}

// UpdateMember sets the membership status and, when non-empty, the role
// reference. The role must exist in the catalog; an unknown member is
// reported before an unknown role.
func (s *AccountService) UpdateMember(ctx context.Context, id string, status domain.MemberStatus, roleName string) (*domain.Member, error) {
	if status != "" && !status.IsKnown() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	roleName = domain.NormalizeRoleName(roleName)
	if status == "" && roleName == "" {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}

	if roleName != "" {
		if _, err := s.accounts.FindMemberByID(ctx, id); err != nil {
			return nil, err
		}
		role, err := s.roles.FindRoleByName(ctx, roleName)
		if err != nil {
			return nil, err
		}
		roleName = role.Name
	}

	member, err := s.accounts.UpdateMemberProfile(ctx, id, status, roleName)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("member_id", id).Str("status", string(member.Status)).Str("role_name", member.RoleName).Msg("member updated")
	return member, nil
}

func (s *AccountService) newAccount(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	return &domain.Account{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ensureEmailFree checks both identity spaces; an email belongs to at most one.
func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	if _, err := s.identities.FindAdminByEmail(ctx, email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return fmt.Errorf("check admin email: %w", err)
	}

	if _, err := s.identities.FindMemberByEmail(ctx, email); err == nil {
		return domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrIdentityNotFound) {
		return fmt.Errorf("check member email: %w", err)
	}
	return nil
}
