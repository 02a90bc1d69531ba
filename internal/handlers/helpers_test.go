package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{services.ErrRecipeNotFound, http.StatusNotFound, "recipe not found"},
		{services.ErrDuplicateIngredient, http.StatusBadRequest, "ingredient already added"},
		{services.ErrSelfFollow, http.StatusBadRequest, "cannot follow yourself"},
		{services.ErrInvalidToken, http.StatusUnauthorized, "invalid or expired token"},
		{services.ErrNotAuthor, http.StatusForbidden, "only the author can change this recipe"},
		{fmt.Errorf("wrapped: %w", services.ErrTagNotFound), http.StatusNotFound, "wrapped: not found: tag not found"},
		{services.ErrInternalServer, http.StatusInternalServerError, "An unexpected error occurred"},
		{errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
		{echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot, "tea"},
	}
	for _, tc := range cases {
		httpErr := HandleServiceError(tc.err)
		assert.Equal(t, tc.status, httpErr.Code, tc.err.Error())
		assert.Equal(t, tc.message, httpErr.Message, tc.err.Error())
	}
}

func TestParsePagination(t *testing.T) {
	e := echo.New()
	for query, want := range map[string]pagination{
		"":                  {page: 1, limit: defaultPageSize},
		"?page=3&limit=10":  {page: 3, limit: 10},
		"?page=0&limit=-2":  {page: 1, limit: defaultPageSize},
		"?page=x&limit=500": {page: 1, limit: maxPageSize},
	} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/recipes"+query, nil), httptest.NewRecorder())
		assert.Equal(t, want, parsePagination(c), query)
	}
}

func TestNewPage_Links(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/users?page=2&limit=1&author=4", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	page := newPage(c, parsePagination(c), 3, []int{7})
	require.NotNil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "http://example.com/api/users?author=4&limit=1&page=3", *page.Next)
	assert.Equal(t, "http://example.com/api/users?author=4&limit=1", *page.Previous)

	last := newPage(c, pagination{page: 3, limit: 1}, 3, []int(nil))
	assert.Nil(t, last.Next)
	assert.NotNil(t, last.Results)
}
