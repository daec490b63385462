package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/user-admin/internal/api/middleware"
	"github.com/99minutos/user-admin/internal/core/domain"
	"github.com/99minutos/user-admin/internal/core/ports"
)

// UserHandler handles HTTP requests for user administration. Errors are
// returned to the central error handler.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userSummaryResponse
// @Failure      403  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.List(c.Request().Context(), middleware.SessionFrom(c))
	if err != nil {
		return err
	}

	out := make([]userSummaryResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toSummaryResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/users/users.
//
// @Summary      Create a user with a role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      200   {object}  createUserResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/users/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	created, err := h.service.Create(c.Request().Context(), middleware.SessionFrom(c), ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, createUserResponse{
		ID:           created.ID,
		Name:         created.Name,
		Email:        created.Email,
		Role:         string(created.Role),
		Image:        optional(created.Image),
		CreatedAt:    created.CreatedAt,
		LastActiveAt: created.CreatedAt,
	})
}

// Delete handles DELETE /api/users/:id/user.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  deleteUserResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/users/{id}/user [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	res, err := h.service.Delete(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, deleteUserResponse{
		Success:       res.Success,
		Message:       res.Message,
		DeletedUserID: res.DeletedUserID,
	})
}

// UpdateRole handles PUT /api/users/:id/role.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}

	user, err := h.service.UpdateRole(c.Request().Context(), middleware.SessionFrom(c), c.Param("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Activity handles GET /api/users/:id/activity.
//
// @Summary      Audit trail of a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  activityResponse
// @Failure      403  {object}  map[string]string
// @Router       /api/users/{id}/activity [get]
func (h *UserHandler) Activity(c echo.Context) error {
	id := c.Param("id")
	events, err := h.service.Activity(c.Request().Context(), middleware.SessionFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activityResponse{UserID: id, Events: events})
}
