package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/cookbook/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeFilter narrows a recipe listing. Zero values disable a criterion.
type RecipeFilter struct {
	AuthorID     uint
	TagSlugs     []string
	FavouritedBy uint
	InCartOf     uint
}

// RecipeRepository defines the interface for recipe data operations.
// Create and Update own the recipe's ingredient and tag associations:
// both write the complete submitted sets inside one transaction.
type RecipeRepository interface {
	CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error
	UpdateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error
	DeleteRecipe(ctx context.Context, id uint) error
	GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error)
	ListRecipes(ctx context.Context, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error)
	ListRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error)
}

// PostgresRecipeRepository implements RecipeRepository for PostgreSQL
type PostgresRecipeRepository struct {
	db *gorm.DB
}

// NewPostgresRecipeRepository creates a new PostgresRecipeRepository
func NewPostgresRecipeRepository(db *gorm.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{db: db}
}

func (r *PostgresRecipeRepository) CreateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", mapError(err))
		}
		return attachAssociations(tx, recipe, ingredients, tags)
	})
}

// UpdateRecipe overwrites the scalar fields, then drops every ingredient
// row and tag attachment of the recipe and writes the submitted ones.
func (r *PostgresRecipeRepository) UpdateRecipe(ctx context.Context, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{ID: recipe.ID}).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
			"image":        recipe.Image,
		})
		if res.Error != nil {
			return fmt.Errorf("update recipe %d: %w", recipe.ID, mapError(res.Error))
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredients of recipe %d: %w", recipe.ID, err)
		}
		if err := tx.Model(&models.Recipe{ID: recipe.ID}).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tags of recipe %d: %w", recipe.ID, err)
		}
		return attachAssociations(tx, recipe, ingredients, tags)
	})
}

func attachAssociations(tx *gorm.DB, recipe *models.Recipe, ingredients []models.RecipeIngredient, tags []models.Tag) error {
	if len(ingredients) > 0 {
		rows := make([]models.RecipeIngredient, len(ingredients))
		for i, ing := range ingredients {
			rows[i] = models.RecipeIngredient{
				RecipeID:     recipe.ID,
				IngredientID: ing.IngredientID,
				Amount:       ing.Amount,
			}
		}
		if err := tx.Omit("Ingredient").Create(&rows).Error; err != nil {
			return fmt.Errorf("insert ingredients of recipe %d: %w", recipe.ID, mapError(err))
		}
	}
	if len(tags) > 0 {
		if err := tx.Model(&models.Recipe{ID: recipe.ID}).Association("Tags").Append(tags); err != nil {
			return fmt.Errorf("attach tags to recipe %d: %w", recipe.ID, err)
		}
	}
	return nil
}

func (r *PostgresRecipeRepository) DeleteRecipe(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dep := range []interface{}{&models.RecipeIngredient{}, &models.Favourite{}, &models.Cart{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Recipe{ID: id}).Association("Tags").Clear(); err != nil {
			return err
		}
		res := tx.Delete(&models.Recipe{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRecipeRepository) GetRecipeByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.WithContext(ctx).Scopes(preloadRecipe).First(&recipe, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &recipe, nil
}

func (r *PostgresRecipeRepository) ListRecipes(ctx context.Context, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(r.filterScope(filter)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var recipes []models.Recipe
	err := r.db.WithContext(ctx).
		Scopes(r.filterScope(filter), preloadRecipe).
		Order("recipes.pub_date DESC").Order("recipes.id DESC").
		Offset(offset).Limit(limit).
		Find(&recipes).Error
	return recipes, total, err
}

// ListRecipesByAuthor returns the author's newest recipes. A limit of zero
// or less returns all of them.
func (r *PostgresRecipeRepository) ListRecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	q := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recipes).Error
	return recipes, err
}

func (r *PostgresRecipeRepository) CountRecipesByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

func (r *PostgresRecipeRepository) filterScope(f RecipeFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AuthorID != 0 {
			db = db.Where("recipes.author_id = ?", f.AuthorID)
		}
		if len(f.TagSlugs) > 0 {
			db = db.Where("recipes.id IN (?)", r.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", f.TagSlugs))
		}
		if f.FavouritedBy != 0 {
			db = db.Where("recipes.id IN (?)", r.db.Model(&models.Favourite{}).
				Select("recipe_id").Where("user_id = ?", f.FavouritedBy))
		}
		if f.InCartOf != 0 {
			db = db.Where("recipes.id IN (?)", r.db.Model(&models.Cart{}).
				Select("recipe_id").Where("user_id = ?", f.InCartOf))
		}
		return db
	}
}

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("recipe_ingredients.id") }).
		Preload("Ingredients.Ingredient")
}
