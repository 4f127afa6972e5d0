package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elikia/membership-auth/internal/core/domain"
)

func TestRoleService_EnsureDefaultsIsIdempotent(t *testing.T) {
	repo := newStubRoleRepo()
	svc := NewRoleService(repo, zerolog.Nop())

	require.NoError(t, svc.EnsureDefaults(context.Background()))
	require.NoError(t, svc.EnsureDefaults(context.Background()))

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, domain.DefaultMemberRole, roles[0].Name)
}

func TestRoleService_CreateRole(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo(), zerolog.Nop())

	role, err := svc.CreateRole(context.Background(), "  tresorier ")
	require.NoError(t, err)
	assert.Equal(t, "TRESORIER", role.Name)
	assert.NotEmpty(t, role.ID)
	assert.False(t, role.CreatedAt.IsZero())

	got, err := svc.GetRole(context.Background(), role.ID)
	require.NoError(t, err)
	assert.Equal(t, "TRESORIER", got.Name)

	_, err = svc.CreateRole(context.Background(), "Tresorier")
	assert.ErrorIs(t, err, domain.ErrRoleExists)
}

func TestRoleService_CreateRole_RejectsBadNames(t *testing.T) {
	svc := NewRoleService(newStubRoleRepo(), zerolog.Nop())

	for _, name := range []string{"", "  ", "A", "ABCDEFGHIJKLMNOPQRSTUVWXYZABCDE"} {
		_, err := svc.CreateRole(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "name=%q", name)
	}
}

func TestRoleService_DeleteRole(t *testing.T) {
	repo := newStubRoleRepo(domain.DefaultMemberRole, "SECRETAIRE")
	svc := NewRoleService(repo, zerolog.Nop())

	def, err := repo.FindRoleByName(context.Background(), domain.DefaultMemberRole)
	require.NoError(t, err)
	other, err := repo.FindRoleByName(context.Background(), "SECRETAIRE")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRole(context.Background(), def.ID), domain.ErrInvalidInput)
	require.NoError(t, svc.DeleteRole(context.Background(), other.ID))
	assert.ErrorIs(t, svc.DeleteRole(context.Background(), other.ID), domain.ErrRoleNotFound)

	_, err = svc.GetRole(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)
}
