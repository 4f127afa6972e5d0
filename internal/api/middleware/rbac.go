package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elikia/membership-auth/internal/api/metrics"
	"github.com/elikia/membership-auth/internal/core/domain"
)

// RequireRole enforces an exact, case-sensitive match between the role Gate
// stored on the context and role. A missing role is a mismatch.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, _ := c.Get(ContextRole).(domain.Role)
			if got == "" || got != role {
				metrics.AuthorizationDeniedTotal.WithLabelValues("role_mismatch").Inc()
				return echo.NewHTTPError(http.StatusForbidden, msgAccessDenied).SetInternal(domain.ErrAuthorizationDenied)
			}
			return next(c)
		}
	}
}
