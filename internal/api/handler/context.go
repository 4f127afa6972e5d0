package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elikia/membership-auth/internal/api/middleware"
	"github.com/elikia/membership-auth/internal/core/domain"
)

// ctxIdentity reads the subject and role the Gate middleware stored on the
// context. A missing value means the route was mounted without a gate.
func ctxIdentity(c echo.Context) (string, domain.Role, error) {
	subject, _ := c.Get(middleware.ContextSubject).(string)
	role, _ := c.Get(middleware.ContextRole).(domain.Role)
	if subject == "" || role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
	}
	return subject, role, nil
}
