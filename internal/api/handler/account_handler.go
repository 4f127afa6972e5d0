package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const (
	msgAdminCreated  = "Admin created successfully"
	msgMemberUpdated = "Member updated successfully"
)

// AccountHandler serves the admin-only account management routes.
type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type updateMemberRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=INSCRIPTION_TRANSMISE VALIDE ANNULEE"`
	RoleName string `json:"role_name" validate:"omitempty,min=2,max=30"`
}

type memberResponse struct {
	Envelope
	Member *domain.Member `json:"member"`
}

// CreateAdmin creates an administrator account.
//
// @Summary      Create an admin
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerRequest  true  "Admin details"
// @Success      201   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /admin/admins [post]
func (h *AccountHandler) CreateAdmin(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error())
	}

	if _, err := h.accounts.CreateAdmin(c.Request().Context(), req.toInput()); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, msgAdminCreated)
}

// UpdateMember sets a member's status and role reference.
//
// @Summary      Update a member
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Member id"
// @Param        body  body      updateMemberRequest  true  "Fields to change"
// @Success      200   {object}  memberResponse
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      404   {object}  Envelope  "Member not found or Role not found"
// @Router       /admin/members/{id} [patch]
func (h *AccountHandler) UpdateMember(c echo.Context) error {
	var req updateMemberRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error())
	}

	member, err := h.accounts.UpdateMember(c.Request().Context(), c.Param("id"), domain.MemberStatus(req.Status), req.RoleName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, memberResponse{
		Envelope: NewEnvelope(http.StatusOK, msgMemberUpdated),
		Member:   member,
	})
}
