package ports

import (
	"time"

	"github.com/elikia/membership-auth/internal/core/domain"
)

// TokenClaims is the verified content of a session token.
type TokenClaims struct {
	Subject   string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(subject string, role domain.Role, now time.Time) (string, error)
}

// TokenVerifier checks session tokens. Every failure is domain.ErrTokenInvalid.
type TokenVerifier interface {
	Verify(token string) (*TokenClaims, error)
	ExtractRole(token string) (domain.Role, error)
}
