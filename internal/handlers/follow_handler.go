package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles subscribe/unsubscribe HTTP requests
type FollowHandler struct {
	relationships *services.RelationshipService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(relationships *services.RelationshipService) *FollowHandler {
	return &FollowHandler{relationships: relationships}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/users/subscriptions", h.Subscriptions, middleware.RequireAuth)
	g.POST("/users/:id/subscribe", h.Subscribe, middleware.RequireAuth)
	g.DELETE("/users/:id/subscribe", h.Unsubscribe, middleware.RequireAuth)
}

// Subscriptions lists the followed authors with their recipes
func (h *FollowHandler) Subscriptions(c echo.Context) error {
	p := parsePagination(c)
	subs, total, err := h.relationships.Subscriptions(c.Request().Context(), getUserIDFromContext(c), recipesLimit(c), p.offset(), p.limit)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, newPage(c, p, total, subs))
}

// Subscribe follows a user
func (h *FollowHandler) Subscribe(c echo.Context) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	sub, err := h.relationships.Follow(c.Request().Context(), getUserIDFromContext(c), targetID, recipesLimit(c))
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe unfollows a user. Not following is not an error.
func (h *FollowHandler) Unsubscribe(c echo.Context) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.relationships.Unfollow(c.Request().Context(), getUserIDFromContext(c), targetID); err != nil {
		return HandleServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit=; zero means no limit
func recipesLimit(c echo.Context) int {
	n, err := strconv.Atoi(c.QueryParam("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
