package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// SavedRecipeHandler handles the favourite and shopping cart toggles
type SavedRecipeHandler struct {
	relationships *services.RelationshipService
}

// NewSavedRecipeHandler creates a new SavedRecipeHandler
func NewSavedRecipeHandler(relationships *services.RelationshipService) *SavedRecipeHandler {
	return &SavedRecipeHandler{relationships: relationships}
}

// RegisterSavedRecipeRoutes registers favourite and cart routes
func (h *SavedRecipeHandler) RegisterSavedRecipeRoutes(g *echo.Group) {
	g.POST("/recipes/:id/favorite", h.add(h.relationships.AddFavourite), middleware.RequireAuth)
	g.DELETE("/recipes/:id/favorite", h.remove(h.relationships.RemoveFavourite), middleware.RequireAuth)
	g.POST("/recipes/:id/shopping_cart", h.add(h.relationships.AddToCart), middleware.RequireAuth)
	g.DELETE("/recipes/:id/shopping_cart", h.remove(h.relationships.RemoveFromCart), middleware.RequireAuth)
}

type addFunc func(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error)
type removeFunc func(ctx context.Context, userID, recipeID uint) error

func (h *SavedRecipeHandler) add(fn addFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		recipeID, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		short, err := fn(c.Request().Context(), getUserIDFromContext(c), recipeID)
		if err != nil {
			return HandleServiceError(err)
		}
		return c.JSON(http.StatusCreated, short)
	}
}

// remove succeeds whether or not the recipe was saved
func (h *SavedRecipeHandler) remove(fn removeFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		recipeID, err := parseIDParam(c, "id")
		if err != nil {
			return err
		}
		if err := fn(c.Request().Context(), getUserIDFromContext(c), recipeID); err != nil {
			return HandleServiceError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
