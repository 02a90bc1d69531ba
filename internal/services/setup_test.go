package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/anonto42/cookbook/backend/pkg/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testImage = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func init() {
	logrus.SetLevel(logrus.PanicLevel)
}

// memoryImages is an ImageStore that keeps references in a map
type memoryImages struct {
	mu    sync.Mutex
	next  int
	saved map[string]bool
}

func newMemoryImages() *memoryImages {
	return &memoryImages{saved: make(map[string]bool)}
}

func (m *memoryImages) Save(_ context.Context, img *storage.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	ref := fmt.Sprintf("/media/test-%d%s", m.next, img.Extension)
	m.saved[ref] = true
	return ref, nil
}

func (m *memoryImages) Delete(_ context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, ref)
	return nil
}

func (m *memoryImages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

type testEnv struct {
	db            *gorm.DB
	images        *memoryImages
	recipes       *RecipeService
	relationships *RelationshipService
	shopping      *ShoppingListService
	users         *UserService
	catalog       *CatalogService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	images := newMemoryImages()

	userRepo := repositories.NewPostgresUserRepository(db)
	ingredientRepo := repositories.NewPostgresIngredientRepository(db)
	tagRepo := repositories.NewPostgresTagRepository(db)
	recipeRepo := repositories.NewPostgresRecipeRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	favouriteRepo := repositories.NewPostgresFavouriteRepository(db)
	cartRepo := repositories.NewPostgresCartRepository(db)

	return &testEnv{
		db:            db,
		images:        images,
		recipes:       NewRecipeService(recipeRepo, ingredientRepo, tagRepo, favouriteRepo, cartRepo, followRepo, images),
		relationships: NewRelationshipService(userRepo, recipeRepo, followRepo, favouriteRepo, cartRepo),
		shopping:      NewShoppingListService(cartRepo),
		users:         NewUserService(userRepo, followRepo),
		catalog:       NewCatalogService(ingredientRepo, tagRepo),
	}
}

func (env *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Tester",
		Password:  "x",
	}
	require.NoError(t, env.db.Create(u).Error)
	return u
}

func (env *testEnv) ingredient(t *testing.T, name, unit string) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, env.db.Create(ing).Error)
	return ing
}

func (env *testEnv) tag(t *testing.T, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: slug, Color: "#" + slug, Slug: slug}
	require.NoError(t, env.db.Create(tag).Error)
	return tag
}

func (env *testEnv) recipe(t *testing.T, authorID uint, name string, tags []uint, items ...models.IngredientAmount) *models.RecipeResponse {
	t.Helper()
	resp, err := env.recipes.CreateRecipe(context.Background(), authorID, &models.RecipeRequest{
		Ingredients: items,
		Tags:        tags,
		Image:       testImage,
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 10,
	})
	require.NoError(t, err)
	return resp
}

func (env *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(model).Count(&n).Error)
	return n
}
