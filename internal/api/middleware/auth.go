package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/elikia/membership-auth/internal/api/metrics"
	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

// Context keys set by Gate for downstream handlers.
const (
	ContextSubject = "subject"
	ContextRole    = "role"
)

const bearerPrefix = "Bearer "

const (
	msgHeaderMissing = "Authorization header missing"
	msgInvalidToken  = "Invalid or expired token"
	msgAccessDenied  = "Access denied"
)

// Policy is the access rule declared for one route.
type Policy struct {
	AuthRequired bool
	// RequiredRole is compared by exact match; empty means any authenticated caller.
	RequiredRole domain.Role
}

// Public is the policy of routes that need no token.
var Public = Policy{}

// Authenticated returns a policy requiring a valid token and, if role is
// non-empty, that exact role.
func Authenticated(role domain.Role) Policy {
	return Policy{AuthRequired: true, RequiredRole: role}
}

// Gate enforces p. A missing or malformed header is 401; a token that does
// not verify is 403; a role mismatch is 403. Each rejection is an
// *echo.HTTPError wrapping domain.ErrAuthorizationDenied or domain.ErrTokenInvalid.
func Gate(tokens ports.TokenVerifier, p Policy) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !p.AuthRequired {
			return next
		}
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) || len(header) == len(bearerPrefix) {
				metrics.AuthorizationDeniedTotal.WithLabelValues("missing_header").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, msgHeaderMissing).SetInternal(domain.ErrAuthorizationDenied)
			}

			claims, err := tokens.Verify(header[len(bearerPrefix):])
			if err != nil {
				metrics.AuthorizationDeniedTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusForbidden, msgInvalidToken).SetInternal(err)
			}

			c.Set(ContextSubject, claims.Subject)
			c.Set(ContextRole, claims.Role)

			if p.RequiredRole == "" {
				return next(c)
			}
			return RequireRole(p.RequiredRole)(next)(c)
		}
	}
}
