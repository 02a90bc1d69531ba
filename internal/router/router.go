package router

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/cookbook/backend/internal/handlers"
	"github.com/anonto42/cookbook/backend/internal/middleware"
	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/anonto42/cookbook/backend/internal/services"
	"github.com/anonto42/cookbook/backend/internal/tokenstore"
	"github.com/anonto42/cookbook/backend/internal/validators"
	"github.com/anonto42/cookbook/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the backends the routes are wired to. Redis, Media and
// Firebase are optional.
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Tokens   tokenstore.Store
	Images   storage.ImageStore
	Media    handlers.ImageOpener
	Firebase services.IDTokenVerifier

	KeyPrefix           string
	LoginRateLimit      int
	LoginRateWindow     time.Duration
	IngredientCacheSize int
}

// Migrate creates or updates the schema for every model
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	logrus.Info("Auto-migrations completed for all models.")
	return nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(e)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	tagRepo := repositories.NewPostgresTagRepository(deps.DB)
	recipeRepo := repositories.NewPostgresRecipeRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	favouriteRepo := repositories.NewPostgresFavouriteRepository(deps.DB)
	cartRepo := repositories.NewPostgresCartRepository(deps.DB)
	ingredientRepo, err := repositories.NewCachedIngredientRepository(
		repositories.NewPostgresIngredientRepository(deps.DB), deps.IngredientCacheSize)
	if err != nil {
		return err
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, deps.Tokens, deps.Firebase)
	userService := services.NewUserService(userRepo, followRepo)
	recipeService := services.NewRecipeService(recipeRepo, ingredientRepo, tagRepo, favouriteRepo, cartRepo, followRepo, deps.Images)
	shoppingService := services.NewShoppingListService(cartRepo)
	relationshipService := services.NewRelationshipService(userRepo, recipeRepo, followRepo, favouriteRepo, cartRepo)
	catalogService := services.NewCatalogService(ingredientRepo, tagRepo)

	// Health check - always accessible
	pingers := map[string]handlers.Pinger{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if deps.Redis != nil {
		pingers["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	e.GET("/health", handlers.HealthCheck(pingers))

	if deps.Media != nil {
		handlers.NewMediaHandler(deps.Media).RegisterMediaRoutes(e)
		logrus.Info("Media routes configured.")
	}

	api := e.Group("/api")
	api.Use(middleware.TokenAuthMiddleware(authService))

	var loginLimit echo.MiddlewareFunc
	if deps.Redis != nil && deps.LoginRateLimit > 0 {
		loginLimit = middleware.RateLimit(deps.Redis, deps.KeyPrefix, deps.LoginRateLimit, deps.LoginRateWindow)
	}
	handlers.NewAuthHandler(authService).RegisterAuthRoutes(api.Group("/auth"), loginLimit)
	logrus.Info("Auth routes configured.")

	handlers.NewUserHandler(userService).RegisterUserRoutes(api)
	handlers.NewFollowHandler(relationshipService).RegisterFollowRoutes(api)
	logrus.Info("User routes configured.")

	handlers.NewCatalogHandler(catalogService).RegisterCatalogRoutes(api)
	logrus.Info("Catalog routes configured.")

	handlers.NewRecipeHandler(recipeService, shoppingService).RegisterRecipeRoutes(api)
	handlers.NewSavedRecipeHandler(relationshipService).RegisterSavedRecipeRoutes(api)
	logrus.Info("Recipe routes configured.")

	logrus.Info("All routes configured.")
	return nil
}
