package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elikia/membership-auth/internal/core/domain"
	"github.com/elikia/membership-auth/internal/core/ports"
)

const (
	msgRoleCreated   = "Role created successfully"
	msgRolesListed   = "Roles retrieved"
	msgRoleFound     = "Role found"
	msgRoleDeleted   = "Role deleted"
	msgRoleNameEmpty = "Role name is required"
)

// RoleHandler serves the admin-only role catalog.
type RoleHandler struct {
	roles ports.RoleService
}

func NewRoleHandler(roles ports.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

type createRoleRequest struct {
	Name string `json:"name" validate:"required,min=2,max=30"`
}

type roleResponse struct {
	Envelope
	Role *domain.MemberRole `json:"role"`
}

type roleListResponse struct {
	Envelope
	Roles []domain.MemberRole `json:"roles"`
}

// Create adds a role to the catalog.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role name"
// @Success      201   {object}  roleResponse
// @Failure      400   {object}  Envelope
// @Failure      401   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Failure      409   {object}  Envelope
// @Router       /admin/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "invalid payload")
	}
	if domain.NormalizeRoleName(req.Name) == "" {
		return respond(c, http.StatusBadRequest, msgRoleNameEmpty)
	}
	if err := c.Validate(&req); err != nil {
		return respond(c, http.StatusBadRequest, err.Error())
	}

	role, err := h.roles.CreateRole(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roleResponse{
		Envelope: NewEnvelope(http.StatusCreated, msgRoleCreated),
		Role:     role,
	})
}

// List returns the whole catalog.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  roleListResponse
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /admin/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roles.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	if roles == nil {
		roles = []domain.MemberRole{}
	}
	return c.JSON(http.StatusOK, roleListResponse{
		Envelope: NewEnvelope(http.StatusOK, msgRolesListed),
		Roles:    roles,
	})
}

// Get returns one role.
//
// @Summary      Get a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  roleResponse
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.roles.GetRole(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleResponse{
		Envelope: NewEnvelope(http.StatusOK, msgRoleFound),
		Role:     role,
	})
}

// Delete removes a role. The default member role cannot be removed.
//
// @Summary      Delete a role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Role id"
// @Success      200  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      401  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /admin/roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.roles.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, msgRoleDeleted)
}
