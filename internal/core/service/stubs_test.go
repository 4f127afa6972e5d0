package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/elikia/membership-auth/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory identity store with versioned lockout writes.
// ---------------------------------------------------------------------------

type stubIdentityRepo struct {
	mu      sync.Mutex
	admins  map[string]*domain.Admin
	members map[string]*domain.Member

	lookups   []string // "admin:<email>" / "member:<email>" in call order
	saves     int
	conflicts int // number of SaveLockout calls that report a conflict before succeeding
	nextID    int
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{
		admins:  make(map[string]*domain.Admin),
		members: make(map[string]*domain.Member),
	}
}

func cloneAccount(a domain.Account) domain.Account {
	if a.Lockout.LockUntil != nil {
		until := *a.Lockout.LockUntil
		a.Lockout.LockUntil = &until
	}
	return a
}

func cloneAdmin(a *domain.Admin) *domain.Admin {
	return &domain.Admin{Account: cloneAccount(a.Account)}
}

func cloneMember(m *domain.Member) *domain.Member {
	clone := *m
	clone.Account = cloneAccount(m.Account)
	return &clone
}

func (r *stubIdentityRepo) addAdmin(a *domain.Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[a.Email] = cloneAdmin(a)
}

func (r *stubIdentityRepo) addMember(m *domain.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[m.Email] = cloneMember(m)
}

func (r *stubIdentityRepo) admin(email string) *domain.Admin {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneAdmin(r.admins[email])
}

func (r *stubIdentityRepo) member(email string) *domain.Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneMember(r.members[email])
}

func (r *stubIdentityRepo) FindAdminByEmail(_ context.Context, email string) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, "admin:"+email)
	a, ok := r.admins[email]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneAdmin(a), nil
}

func (r *stubIdentityRepo) FindMemberByEmail(_ context.Context, email string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups = append(r.lookups, "member:"+email)
	m, ok := r.members[email]
	if !ok {
		return nil, domain.ErrIdentityNotFound
	}
	return cloneMember(m), nil
}

func (r *stubIdentityRepo) SaveLockout(_ context.Context, identity domain.Identity, lockout domain.Lockout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrVersionConflict
	}

	var stored *domain.Account
	switch id := identity.(type) {
	case *domain.Admin:
		if a, ok := r.admins[id.Email]; ok {
			stored = &a.Account
		}
	case *domain.Member:
		if m, ok := r.members[id.Email]; ok {
			stored = &m.Account
		}
	}
	if stored == nil {
		return domain.ErrIdentityNotFound
	}
	if stored.Version != identity.Base().Version {
		return domain.ErrVersionConflict
	}

	stored.Lockout = cloneAccount(domain.Account{Lockout: lockout}).Lockout
	stored.Version++
	r.saves++
	return nil
}

func (r *stubIdentityRepo) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func (r *stubIdentityRepo) CreateAdmin(_ context.Context, a *domain.Admin) (*domain.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.admins[a.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	r.nextID++
	created := cloneAdmin(a)
	created.ID = strconv.Itoa(r.nextID)
	r.admins[created.Email] = created
	return cloneAdmin(created), nil
}

func (r *stubIdentityRepo) CreateMember(_ context.Context, m *domain.Member) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[m.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	r.nextID++
	created := cloneMember(m)
	created.ID = strconv.Itoa(r.nextID)
	r.members[created.Email] = created
	return cloneMember(created), nil
}

func (r *stubIdentityRepo) FindMemberByID(_ context.Context, id string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID == id {
			return cloneMember(m), nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) UpdateMemberProfile(_ context.Context, id string, status domain.MemberStatus, roleName string) (*domain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ID != id {
			continue
		}
		if status != "" {
			m.Status = status
		}
		if roleName != "" {
			m.RoleName = roleName
		}
		return cloneMember(m), nil
	}
	return nil, domain.ErrIdentityNotFound
}

// ---------------------------------------------------------------------------
// In-memory role catalog
// ---------------------------------------------------------------------------

type stubRoleRepo struct {
	mu     sync.Mutex
	roles  map[string]*domain.MemberRole // by id
	nextID int
}

func newStubRoleRepo(names ...string) *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*domain.MemberRole)}
	for _, name := range names {
		_, _ = r.CreateRole(context.Background(), &domain.MemberRole{Name: name})
	}
	return r
}

func (r *stubRoleRepo) FindRoleByName(_ context.Context, name string) (*domain.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindRoleByID(_ context.Context, id string) (*domain.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *stubRoleRepo) ListRoles(context.Context) ([]domain.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.MemberRole, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, *role)
	}
	return out, nil
}

func (r *stubRoleRepo) CreateRole(_ context.Context, role *domain.MemberRole) (*domain.MemberRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return nil, domain.ErrRoleExists
		}
	}
	r.nextID++
	cp := *role
	cp.ID = "r" + strconv.Itoa(r.nextID)
	r.roles[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *stubRoleRepo) DeleteRole(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, id)
	return nil
}

// ---------------------------------------------------------------------------
// Auditor
// ---------------------------------------------------------------------------

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.LoginEvent
}

func (a *recordingAuditor) Record(e domain.LoginEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) recorded() []domain.LoginEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.LoginEvent(nil), a.events...)
}
