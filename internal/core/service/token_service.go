package service

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const minSecretLength = 32

// TokenConfig is loaded once at startup and never mutated afterwards.
type TokenConfig struct {
	Secret   string
	Lifetime time.Duration
	Issuer   string
}

// tokenClaims is the signed payload: sub, role, iat, exp, jti and iss.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 session tokens.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	issuer   string
	now      func() time.Time
}

// NewTokenService validates cfg and returns a ready service. A short secret or
// a non-positive lifetime is a configuration error.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if utf8.RuneCountInString(cfg.Secret) < minSecretLength {
		return nil, fmt.Errorf("%w: token secret must be at least %d characters", domain.ErrConfiguration, minSecretLength)
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("%w: token lifetime must be positive", domain.ErrConfiguration)
	}
	return &TokenService{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		issuer:   cfg.Issuer,
		now:      time.Now,
	}, nil
}

// Issue signs a token for subject and role, valid at least over
// [now, now+lifetime). JWT dates are whole seconds: iat is floored and exp is
// rounded up, so a sub-second now widens the window by under a second at
// each end instead of cutting it short.
func (s *TokenService) Issue(subject string, role domain.Role, now time.Time) (string, error) {
	claims := tokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(ceilSecond(now.Add(s.lifetime))),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the token against the current time.
func (s *TokenService) Verify(token string) (*ports.TokenClaims, error) {
	return s.VerifyAt(token, s.now())
}

// VerifyAt checks signature, algorithm and the [iat, exp) window at now.
// Every failure collapses into domain.ErrTokenInvalid.
func (s *TokenService) VerifyAt(token string, now time.Time) (*ports.TokenClaims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	claims := &tokenClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrTokenInvalid
	}
	if claims.IssuedAt == nil || claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}

	return &ports.TokenClaims{
		Subject:   claims.Subject,
		Role:      domain.Role(claims.Role),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ExtractRole returns the role claim of a token that verifies. On an
// unverified token it fails with domain.ErrTokenInvalid instead of guessing.
func (s *TokenService) ExtractRole(token string) (domain.Role, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// ceilSecond rounds t up to the next whole second unless it already is one.
func ceilSecond(t time.Time) time.Time {
	floor := t.Truncate(time.Second)
	if floor.Equal(t) {
		return t
	}
	return floor.Add(time.Second)
}
