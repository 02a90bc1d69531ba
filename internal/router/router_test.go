package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/tokenstore"
	"github.com/anonto42/cookbook/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

type memoryTokens struct {
	mu     sync.Mutex
	tokens map[string]uint
}

func (m *memoryTokens) Issue(_ context.Context, userID uint) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := fmt.Sprintf("token-%d-%d", userID, len(m.tokens))
	m.tokens[token] = userID
	return token, nil
}

func (m *memoryTokens) Resolve(_ context.Context, token string) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.tokens[token]; ok {
		return id, nil
	}
	return 0, tokenstore.ErrInvalidToken
}

func (m *memoryTokens) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
	return nil
}

type memoryImages struct{}

func (memoryImages) Save(_ context.Context, img *storage.Image) (string, error) {
	return "/media/test" + img.Extension, nil
}

func (memoryImages) Delete(context.Context, string) error { return nil }

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logrus.SetLevel(logrus.PanicLevel)

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))

	e := echo.New()
	require.NoError(t, SetupRoutes(e, Dependencies{
		DB:     db,
		Tokens: &memoryTokens{tokens: make(map[string]uint)},
		Images: memoryImages{},
	}))
	return &testServer{e: e, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload string
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = string(raw)
	}
	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Token "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// signUp registers a user and returns its id and token
func (s *testServer) signUp(t *testing.T, username string) (uint, string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "First",
		"last_name":  "Last",
		"password":   "pass-" + username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var user models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))

	rec = s.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "pass-" + username,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var token struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	return user.ID, token.AuthToken
}

func (s *testServer) seed(t *testing.T) (flour models.Ingredient, tag models.Tag) {
	t.Helper()
	flour = models.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	tag = models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, s.db.Create(&flour).Error)
	require.NoError(t, s.db.Create(&tag).Error)
	return flour, tag
}

func recipeBody(flourID, tagID uint, amount int) map[string]interface{} {
	return map[string]interface{}{
		"ingredients":  []map[string]interface{}{{"id": flourID, "amount": amount}},
		"tags":         []uint{tagID},
		"image":        testImage,
		"name":         "Pancakes",
		"text":         "Mix and fry.",
		"cooking_time": 15,
	}
}

func TestRecipeLifecycleAndShoppingCartDownload(t *testing.T) {
	s := newTestServer(t)
	flour, tag := s.seed(t)
	_, token := s.signUp(t, "chef")

	rec := s.do(t, http.MethodPost, "/api/recipes", token, recipeBody(flour.ID, tag.ID, 200))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var recipe models.RecipeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipe))
	assert.Equal(t, "Pancakes", recipe.Name)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, 200, recipe.Ingredients[0].Amount)

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var short models.RecipeShort
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &short))
	assert.Equal(t, recipe.ID, short.ID)

	rec = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/plain; charset=UTF-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, "attachment; filename=shopping_list.txt", rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "Flour (g) - 200\n", rec.Body.String())

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/shopping_cart", recipe.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/recipes/%d", recipe.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", recipe.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	flour, tag := s.seed(t)
	aliceID, alice := s.signUp(t, "alice")
	bobID, bob := s.signUp(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/recipes", "", recipeBody(flour.ID, tag.ID, 10))
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous create")

	rec = s.do(t, http.MethodGet, "/api/recipes", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown token")

	rec = s.do(t, http.MethodPost, "/api/recipes", alice, recipeBody(flour.ID, tag.ID, 0))
	assert.Equal(t, http.StatusBadRequest, rec.Code, "zero amount")
	assert.Contains(t, rec.Body.String(), "amount must be")

	rec = s.do(t, http.MethodPost, "/api/recipes", alice, recipeBody(flour.ID+50, tag.ID, 10))
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown ingredient")

	rec = s.do(t, http.MethodPost, "/api/recipes", alice, recipeBody(flour.ID, tag.ID, 10))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var recipe models.RecipeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipe))

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/recipes/%d", recipe.ID), bob, recipeBody(flour.ID, tag.ID, 20))
	assert.Equal(t, http.StatusForbidden, rec.Code, "non-author update")

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID), bob, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", recipe.ID), bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "duplicate favourite")

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", bobID), bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "self follow")
	assert.Contains(t, rec.Body.String(), "cannot follow yourself")

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe", aliceID), bob, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", aliceID), bob, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d/subscribe", aliceID), bob, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, "missing follow delete is a no-op")

	rec = s.do(t, http.MethodGet, "/api/recipes/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRecipes_FlagsAndPagination(t *testing.T) {
	s := newTestServer(t)
	flour, tag := s.seed(t)
	_, token := s.signUp(t, "chef")

	var ids []uint
	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/api/recipes", token, recipeBody(flour.ID, tag.ID, 10))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var r models.RecipeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
		ids = append(ids, r.ID)
	}
	rec := s.do(t, http.MethodPost, fmt.Sprintf("/api/recipes/%d/favorite", ids[0]), token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var page models.Page[models.RecipeResponse]
	rec = s.do(t, http.MethodGet, "/api/recipes?is_favorited=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, ids[0], page.Results[0].ID)
	assert.True(t, page.Results[0].IsFavorited)

	for _, query := range []string{"?is_favorited=0", "", "?is_favorited=yes"} {
		rec = s.do(t, http.MethodGet, "/api/recipes"+query, token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		assert.Equal(t, int64(3), page.Count, query)
	}

	rec = s.do(t, http.MethodGet, "/api/recipes?limit=2&tags=breakfast", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = models.Page[models.RecipeResponse]{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Contains(t, *page.Next, "tags=breakfast")
	assert.Nil(t, page.Previous)
}

func TestCatalogAndProfileRoutes(t *testing.T) {
	s := newTestServer(t)
	s.seed(t)
	require.NoError(t, s.db.Create(&models.Ingredient{Name: "flax seeds", MeasurementUnit: "g"}).Error)
	require.NoError(t, s.db.Create(&models.Ingredient{Name: "Sugar", MeasurementUnit: "g"}).Error)
	_, token := s.signUp(t, "chef")

	rec := s.do(t, http.MethodGet, "/api/ingredients?name=FL", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ingredients []models.Ingredient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ingredients))
	require.Len(t, ingredients, 2)
	assert.Equal(t, "Flour", ingredients[0].Name)

	rec = s.do(t, http.MethodGet, "/api/tags", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slug":"breakfast"`)

	rec = s.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"chef"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(t, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
