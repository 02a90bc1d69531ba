package repositories

import (
	"context"

	"github.com/anonto42/cookbook/backend/internal/models"
	"gorm.io/gorm"
)

// CartRepository defines the interface for shopping cart operations
type CartRepository interface {
	AddToCart(ctx context.Context, userID, recipeID uint) error
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	IsInCart(ctx context.Context, userID, recipeID uint) (bool, error)
	GetCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	GetCartLines(ctx context.Context, userID uint) ([]models.CartLine, error)
}

// PostgresCartRepository implements CartRepository
type PostgresCartRepository struct {
	db *gorm.DB
}

func NewPostgresCartRepository(db *gorm.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

func (r *PostgresCartRepository) AddToCart(ctx context.Context, userID, recipeID uint) error {
	item := &models.Cart{UserID: userID, RecipeID: recipeID}
	return mapError(r.db.WithContext(ctx).Omit("User", "Recipe").Create(item).Error)
}

func (r *PostgresCartRepository) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Cart{}).Error
}

func (r *PostgresCartRepository) IsInCart(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Cart{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresCartRepository) GetCartRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pluckRecipeIDs(r.db.WithContext(ctx).Model(&models.Cart{}), userID, recipeIDs)
}

// GetCartLines returns every ingredient amount of every recipe in the
// user's cart, in cart order and then ingredient insertion order.
func (r *PostgresCartRepository) GetCartLines(ctx context.Context, userID uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).Table("carts").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, recipe_ingredients.amount AS amount").
		Joins("JOIN recipe_ingredients ON recipe_ingredients.recipe_id = carts.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("carts.user_id = ?", userID).
		Order("carts.id").Order("recipe_ingredients.id").
		Scan(&lines).Error
	return lines, err
}
