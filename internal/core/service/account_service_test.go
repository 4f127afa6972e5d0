package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

func newTestAccountService(t *testing.T) (*AccountService, *stubIdentityRepo, *CredentialVerifier) {
	t.Helper()
	repo := newStubIdentityRepo()
	verifier, err := NewCredentialVerifier(bcrypt.MinCost)
	require.NoError(t, err)
	roles := newStubRoleRepo(domain.DefaultMemberRole, "TRESORIER")
	return NewAccountService(repo, repo, roles, verifier, zerolog.Nop()), repo, verifier
}

func TestAccountService_RegisterMember_PendingWithDefaultRole(t *testing.T) {
	svc, repo, verifier := newTestAccountService(t)

	member, err := svc.RegisterMember(context.Background(), ports.RegisterInput{
		FirstName: "Awa",
		LastName:  "Diallo",
		Email:     " Awa@Mail.com",
		Password:  "secret123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, member.ID)
	assert.Equal(t, "awa@mail.com", member.Email)
	assert.Equal(t, domain.StatusPendingReview, member.Status)
	assert.Equal(t, domain.DefaultMemberRole, member.RoleName)
	assert.False(t, member.CreatedAt.IsZero())
	assert.Zero(t, member.Lockout.FailedLoginAttempts)

	stored := repo.member("awa@mail.com")
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, verifier.Matches("secret123", stored.PasswordHash))
}

func TestAccountService_RegisterMember_RejectsEmailUsedByAdmin(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	repo.addAdmin(&domain.Admin{Account: domain.Account{ID: "a1", Email: "boss@mail.com"}})

	_, err := svc.RegisterMember(context.Background(), ports.RegisterInput{Email: "BOSS@mail.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccountService_RegisterMember_RejectsMissingFields(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, err := svc.RegisterMember(context.Background(), ports.RegisterInput{Email: "  ", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.RegisterMember(context.Background(), ports.RegisterInput{Email: "a@mail.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAccountService_CreateAdmin(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	repo.addMember(&domain.Member{Account: domain.Account{ID: "m1", Email: "taken@mail.com"}})

	admin, err := svc.CreateAdmin(context.Background(), ports.RegisterInput{Email: "Root@mail.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "root@mail.com", admin.Email)
	assert.Equal(t, domain.RoleAdmin, admin.Role())

	_, err = svc.CreateAdmin(context.Background(), ports.RegisterInput{Email: "taken@mail.com", Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestAccountService_UpdateMember(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	repo.addMember(&domain.Member{
		Account:  domain.Account{ID: "m1", Email: "m@mail.com"},
		Status:   domain.StatusPendingReview,
		RoleName: domain.DefaultMemberRole,
	})

	updated, err := svc.UpdateMember(context.Background(), "m1", domain.StatusValidated, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidated, updated.Status)
	assert.Equal(t, domain.DefaultMemberRole, updated.RoleName)

	updated, err = svc.UpdateMember(context.Background(), "m1", "", " tresorier ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValidated, updated.Status)
	assert.Equal(t, "TRESORIER", updated.RoleName)
}

func TestAccountService_UpdateMember_Rejections(t *testing.T) {
	svc, _, _ := newTestAccountService(t)

	_, err := svc.UpdateMember(context.Background(), "m1", "SUSPENDUE", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateMember(context.Background(), "m1", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateMember(context.Background(), "missing", domain.StatusCancelled, "")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}

func TestAccountService_UpdateMember_UnknownRole(t *testing.T) {
	svc, repo, _ := newTestAccountService(t)
	repo.addMember(&domain.Member{
		Account:  domain.Account{ID: "m1", Email: "m@mail.com"},
		Status:   domain.StatusPendingReview,
		RoleName: domain.DefaultMemberRole,
	})

	_, err := svc.UpdateMember(context.Background(), "m1", domain.StatusValidated, "PRESIDENT")
	assert.ErrorIs(t, err, domain.ErrRoleNotFound)

	// Nothing is written when the role does not resolve.
	stored := repo.member("m@mail.com")
	assert.Equal(t, domain.StatusPendingReview, stored.Status)
	assert.Equal(t, domain.DefaultMemberRole, stored.RoleName)

	// An unknown member is reported before an unknown role.
	_, err = svc.UpdateMember(context.Background(), "missing", "", "PRESIDENT")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
}
