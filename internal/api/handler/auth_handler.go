package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/elikia/membership-auth/internal/api/metrics"
	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const msgRegistered = "Registration successful. Awaiting admin validation."

type AuthHandler struct {
	login    ports.LoginService
	accounts ports.AccountService
}

func NewAuthHandler(login ports.LoginService, accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{login: login, accounts: accounts}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	FirstName       string `json:"first_name" validate:"required,min=2,max=100"`
	LastName        string `json:"last_name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func (r registerRequest) toInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

type meResponse struct {
	Envelope
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// Login authenticates an admin or member and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      423   {object}  Envelope
// @Failure      429   {object}  Envelope
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error())
	}

	start := time.Now()
	res, err := h.login.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginErrorsTotal.Inc()
		metrics.LoginDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return err
	}

	outcome := outcomeLabel(res.Reason)
	metrics.LoginAttemptsTotal.WithLabelValues(outcome, string(res.Role)).Inc()
	metrics.LoginDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	body := NewEnvelope(res.Status, res.Message)
	body.Token = res.Token
	return c.JSON(res.Status, body)
}

// Register creates a member awaiting admin validation.
//
// @Summary      Register a member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Failure      500   {object}  Envelope
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error())
	}

	if _, err := h.accounts.RegisterMember(c.Request().Context(), req.toInput()); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, msgRegistered)
}

// Me returns the identity carried by the caller's token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	subject, role, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		Envelope: NewEnvelope(http.StatusOK, "ok"),
		Subject:  subject,
		Role:     string(role),
	})
}

func outcomeLabel(reason error) string {
	switch {
	case reason == nil:
		return string(domain.OutcomeSucceeded)
	case errors.Is(reason, domain.ErrAccountLocked):
		return string(domain.OutcomeAccountLocked)
	case errors.Is(reason, domain.ErrAccountNotActive):
		return string(domain.OutcomeAccountNotActive)
	default:
		return string(domain.OutcomeInvalidCredentials)
	}
}
