package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

// RoleService manages the catalog of roles members can be assigned.
type RoleService struct {
	roles ports.RoleRepository
	log   zerolog.Logger
}

func NewRoleService(roles ports.RoleRepository, log zerolog.Logger) *RoleService {
	return &RoleService{roles: roles, log: log}
}

// EnsureDefaults seeds the role self-registered members receive.
func (s *RoleService) EnsureDefaults(ctx context.Context) error {
	_, err := s.roles.FindRoleByName(ctx, domain.DefaultMemberRole)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return err
	}

	_, err = s.roles.CreateRole(ctx, &domain.MemberRole{Name: domain.DefaultMemberRole, CreatedAt: time.Now().UTC()})
	if err != nil && !errors.Is(err, domain.ErrRoleExists) {
		return fmt.Errorf("seed role %s: %w", domain.DefaultMemberRole, err)
	}
	s.log.Info().Str("role", domain.DefaultMemberRole).Msg("default role seeded")
	return nil
}

func (s *RoleService) CreateRole(ctx context.Context, name string) (*domain.MemberRole, error) {
	name = domain.NormalizeRoleName(name)
	if n := utf8.RuneCountInString(name); n < domain.MinRoleNameLength || n > domain.MaxRoleNameLength {
		return nil, fmt.Errorf("%w: role name must be between %d and %d characters",
			domain.ErrInvalidInput, domain.MinRoleNameLength, domain.MaxRoleNameLength)
	}

	role, err := s.roles.CreateRole(ctx, &domain.MemberRole{Name: name, CreatedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("role", role.Name).Msg("role created")
	return role, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]domain.MemberRole, error) {
	return s.roles.ListRoles(ctx)
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*domain.MemberRole, error) {
	return s.roles.FindRoleByID(ctx, id)
}

// DeleteRole removes a catalog entry. The default member role is kept so
// registration always has a role to assign.
func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.roles.FindRoleByID(ctx, id)
	if err != nil {
		return err
	}
	if role.Name == domain.DefaultMemberRole {
		return fmt.Errorf("%w: role %s cannot be deleted", domain.ErrInvalidInput, role.Name)
	}

	if err := s.roles.DeleteRole(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("role", role.Name).Msg("role deleted")
	return nil
}
