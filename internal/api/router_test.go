package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/api/handler"
	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
	"github.com/elikia/membership-auth/internal/core/service"
)

type fixedLogin struct{ result ports.LoginResult }

func (f fixedLogin) Login(context.Context, string, string) (ports.LoginResult, error) {
	return f.result, nil
}

type noAccounts struct{}

func (noAccounts) RegisterMember(context.Context, ports.RegisterInput) (*domain.Member, error) {
	return nil, domain.ErrEmailTaken
}

func (noAccounts) CreateAdmin(_ context.Context, in ports.RegisterInput) (*domain.Admin, error) {
	return &domain.Admin{Account: domain.Account{Email: in.Email}}, nil
}

func (noAccounts) UpdateMember(context.Context, string, domain.MemberStatus, string) (*domain.Member, error) {
	return nil, domain.ErrIdentityNotFound
}

type fixedRoles struct{}

func (fixedRoles) CreateRole(_ context.Context, name string) (*domain.MemberRole, error) {
	return &domain.MemberRole{ID: "r2", Name: domain.NormalizeRoleName(name)}, nil
}

func (fixedRoles) ListRoles(context.Context) ([]domain.MemberRole, error) {
	return []domain.MemberRole{{ID: "r1", Name: domain.DefaultMemberRole}}, nil
}

func (fixedRoles) GetRole(_ context.Context, id string) (*domain.MemberRole, error) {
	if id != "r1" {
		return nil, domain.ErrRoleNotFound
	}
	return &domain.MemberRole{ID: "r1", Name: domain.DefaultMemberRole}, nil
}

func (fixedRoles) DeleteRole(context.Context, string) error { return nil }

func newTestRouter(t *testing.T, health map[string]handler.HealthCheck) (http.Handler, *service.TokenService) {
	t.Helper()
	tokens, err := service.NewTokenService(service.TokenConfig{Secret: "0123456789abcdef0123456789abcdef", Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	reg := prometheus.NewRegistry()
	e := NewRouter(RouterDeps{
		Login:          fixedLogin{ports.LoginResult{Status: http.StatusOK, Message: "MEMBER login successful", Token: "tok", Role: domain.RoleMember}},
		Accounts:       noAccounts{},
		Roles:          fixedRoles{},
		Tokens:         tokens,
		Health:         health,
		Log:            zerolog.Nop(),
		LoginRateLimit: 100,
		Registerer:     reg,
		Gatherer:       reg,
	})
	return e, tokens
}

func serve(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_LoginIsPublic(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := serve(h, http.MethodPost, "/login", `{"email":"m@mail.com","password":"pw"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("token missing: %s", rec.Body.String())
	}
}

func TestRouter_PolicyTable(t *testing.T) {
	h, tokens := newTestRouter(t, nil)

	now := time.Now()
	member, _ := tokens.Issue("m@mail.com", domain.RoleMember, now)
	admin, _ := tokens.Issue("a@mail.com", domain.RoleAdmin, now)

	adminBody := `{"first_name":"Root","last_name":"Admin","email":"root@mail.com","password":"secret123","confirm_password":"secret123"}`

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		token  string
		want   int
	}{
		{"me without token", http.MethodGet, "/me", "", "", http.StatusUnauthorized},
		{"me with garbage token", http.MethodGet, "/me", "", "garbage", http.StatusForbidden},
		{"me with member token", http.MethodGet, "/me", "", member, http.StatusOK},
		{"admin route with member token", http.MethodPost, "/admin/admins", adminBody, member, http.StatusForbidden},
		{"admin route with admin token", http.MethodPost, "/admin/admins", adminBody, admin, http.StatusCreated},
		{"admin route without token", http.MethodPatch, "/admin/members/x", `{"status":"VALIDE"}`, "", http.StatusUnauthorized},
		{"unknown member", http.MethodPatch, "/admin/members/x", `{"status":"VALIDE"}`, admin, http.StatusNotFound},
		{"register conflict", http.MethodPost, "/register", adminBody, "", http.StatusConflict},
		{"roles without token", http.MethodGet, "/admin/roles", "", "", http.StatusUnauthorized},
		{"roles with member token", http.MethodGet, "/admin/roles", "", member, http.StatusForbidden},
		{"roles with admin token", http.MethodGet, "/admin/roles", "", admin, http.StatusOK},
		{"create role", http.MethodPost, "/admin/roles", `{"name":"tresorier"}`, admin, http.StatusCreated},
		{"unknown role", http.MethodGet, "/admin/roles/zz", "", admin, http.StatusNotFound},
		{"delete role as member", http.MethodDelete, "/admin/roles/r1", "", member, http.StatusForbidden},
		{"delete role", http.MethodDelete, "/admin/roles/r1", "", admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.method, tt.path, tt.body, tt.token)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_LoginRateLimited(t *testing.T) {
	tokens, _ := service.NewTokenService(service.TokenConfig{Secret: "0123456789abcdef0123456789abcdef", Lifetime: time.Hour})
	reg := prometheus.NewRegistry()
	h := NewRouter(RouterDeps{
		Login:          fixedLogin{ports.LoginResult{Status: http.StatusUnauthorized, Message: "Incorrect password"}},
		Accounts:       noAccounts{},
		Tokens:         tokens,
		Log:            zerolog.Nop(),
		LoginRateLimit: 1,
		Registerer:     reg,
		Gatherer:       reg,
	})

	limited := false
	for i := 0; i < 10; i++ {
		rec := serve(h, http.MethodPost, "/login", `{"email":"m@mail.com","password":"pw"}`, "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected /login to be rate limited")
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t, map[string]handler.HealthCheck{
		"mongodb": func(context.Context) error { return nil },
		"redis":   func(context.Context) error { return errors.New("connection refused") },
	})

	if rec := serve(h, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("liveness: expected 200, got %d", rec.Code)
	}

	rec := serve(h, http.MethodGet, "/health/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness: expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "connection refused") {
		t.Fatalf("unexpected readiness body: %s", rec.Body.String())
	}

	rec = serve(h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected echo request metrics in exposition")
	}
}
