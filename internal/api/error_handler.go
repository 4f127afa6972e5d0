package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/elikia/membership-auth/internal/api/handler"
	"github.com/elikia/membership-auth/internal/core/domain"
)

// domainStatus maps sentinel errors that can reach the error handler to a
// status and a client-facing message. An empty message echoes err.Error().
var domainStatus = []struct {
	target error
	code   int
	msg    string
}{
	{domain.ErrEmailTaken, http.StatusConflict, "Email already in use"},
	{domain.ErrIdentityNotFound, http.StatusNotFound, "Member not found"},
	{domain.ErrRoleNotFound, http.StatusNotFound, "Role not found"},
	{domain.ErrRoleExists, http.StatusConflict, "Role already exists"},
	{domain.ErrInvalidInput, http.StatusBadRequest, ""},
}

// NewHTTPErrorHandler renders every error as the {code, message} envelope.
// Anything it does not recognise is logged and reported as a bare 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, known := classify(err)
		if !known {
			log.Error().
				Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
				Msg("unhandled error")
		}
		_ = c.JSON(code, handler.NewEnvelope(code, msg))
	}
}

func classify(err error) (int, string, bool) {
	// Gate rejections, bind failures and router 404/405 arrive as *echo.HTTPError.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message), true
	}

	for _, m := range domainStatus {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.msg == "" {
			return m.code, err.Error(), true
		}
		return m.code, m.msg, true
	}
	return http.StatusInternalServerError, "internal server error", false
}
