package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RecipeHandler handles HTTP requests related to recipes
type RecipeHandler struct {
	recipeService   *services.RecipeService
	shoppingService *services.ShoppingListService
}

// NewRecipeHandler creates a new RecipeHandler
func NewRecipeHandler(recipeService *services.RecipeService, shoppingService *services.ShoppingListService) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		shoppingService: shoppingService,
	}
}

// RegisterRecipeRoutes registers recipe-related routes
func (h *RecipeHandler) RegisterRecipeRoutes(g *echo.Group) {
	g.GET("/recipes", h.ListRecipes)
	g.POST("/recipes", h.CreateRecipe, middleware.RequireAuth)
	g.GET("/recipes/download_shopping_cart", h.DownloadShoppingCart, middleware.RequireAuth)
	g.GET("/recipes/:id", h.GetRecipe)
	g.PUT("/recipes/:id", h.UpdateRecipe, middleware.RequireAuth)
	g.PATCH("/recipes/:id", h.UpdateRecipe, middleware.RequireAuth)
	g.DELETE("/recipes/:id", h.DeleteRecipe, middleware.RequireAuth)
}

// ListRecipes lists recipes newest first. Supported filters: author,
// tags (slug, repeatable), is_favorited=1, is_in_shopping_cart=1.
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	query := services.RecipeQuery{
		TagSlugs:         c.QueryParams()["tags"],
		IsFavorited:      c.QueryParam("is_favorited"),
		IsInShoppingCart: c.QueryParam("is_in_shopping_cart"),
	}
	if raw := c.QueryParam("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid author ID")
		}
		query.AuthorID = uint(author)
	}

	p := parsePagination(c)
	recipes, total, err := h.recipeService.ListRecipes(c.Request().Context(), getUserIDFromContext(c), query, p.offset(), p.limit)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, newPage(c, p, total, recipes))
}

func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.recipeService.GetRecipe(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	var req models.RecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipeService.CreateRecipe(c.Request().Context(), getUserIDFromContext(c), &req)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe replaces the recipe, including its full ingredient and tag
// lists, for both PUT and PATCH
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	var req models.RecipeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	recipe, err := h.recipeService.UpdateRecipe(c.Request().Context(), getUserIDFromContext(c), id, &req)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.recipeService.DeleteRecipe(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return HandleServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DownloadShoppingCart sends the aggregated cart as a text attachment
func (h *RecipeHandler) DownloadShoppingCart(c echo.Context) error {
	body, err := h.shoppingService.BuildShoppingList(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return HandleServiceError(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", services.ShoppingListFilename))
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, body)
}
