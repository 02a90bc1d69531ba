package handlers

import (
	"net/http"

	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterUserRoutes registers user-related routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.POST("/users", h.Register)
	g.GET("/users/me", h.Me, middleware.RequireAuth)
	g.POST("/users/set_password", h.SetPassword, middleware.RequireAuth)
	g.GET("/users/:id", h.GetUser)
}

func (h *UserHandler) Register(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userService.Register(c.Request().Context(), &req)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	p := parsePagination(c)
	users, total, err := h.userService.ListUsers(c.Request().Context(), getUserIDFromContext(c), p.offset(), p.limit)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, newPage(c, p, total, users))
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.userService.GetUser(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Me returns the authenticated user's profile
func (h *UserHandler) Me(c echo.Context) error {
	user, err := h.userService.Me(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) SetPassword(c echo.Context) error {
	var req models.SetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.userService.SetPassword(c.Request().Context(), getUserIDFromContext(c), &req); err != nil {
		return HandleServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
