package handlers

import (
	"net/http"

	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CatalogHandler serves tags and ingredients
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// RegisterCatalogRoutes registers the reference data routes
func (h *CatalogHandler) RegisterCatalogRoutes(g *echo.Group) {
	g.GET("/tags", h.ListTags)
	g.GET("/tags/:id", h.GetTag)
	g.GET("/ingredients", h.SearchIngredients)
	g.GET("/ingredients/:id", h.GetIngredient)
}

func (h *CatalogHandler) ListTags(c echo.Context) error {
	tags, err := h.catalog.ListTags(c.Request().Context())
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *CatalogHandler) GetTag(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	tag, err := h.catalog.GetTag(c.Request().Context(), id)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, tag)
}

// SearchIngredients filters by ?name= prefix
func (h *CatalogHandler) SearchIngredients(c echo.Context) error {
	ingredients, err := h.catalog.SearchIngredients(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, ingredients)
}

func (h *CatalogHandler) GetIngredient(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	ingredient, err := h.catalog.GetIngredient(c.Request().Context(), id)
	if err != nil {
		return HandleServiceError(err)
	}
	return c.JSON(http.StatusOK, ingredient)
}
