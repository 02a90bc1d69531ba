package repositories

import (
	"context"

	"github.com/anonto42/cookbook/backend/internal/models"
	"gorm.io/gorm"
)

// FavouriteRepository defines the interface for favourite operations
type FavouriteRepository interface {
	AddFavourite(ctx context.Context, userID, recipeID uint) error
	RemoveFavourite(ctx context.Context, userID, recipeID uint) error
	IsFavourite(ctx context.Context, userID, recipeID uint) (bool, error)
	GetFavouriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

// PostgresFavouriteRepository implements FavouriteRepository
type PostgresFavouriteRepository struct {
	db *gorm.DB
}

func NewPostgresFavouriteRepository(db *gorm.DB) *PostgresFavouriteRepository {
	return &PostgresFavouriteRepository{db: db}
}

func (r *PostgresFavouriteRepository) AddFavourite(ctx context.Context, userID, recipeID uint) error {
	fav := &models.Favourite{UserID: userID, RecipeID: recipeID}
	return mapError(r.db.WithContext(ctx).Omit("User", "Recipe").Create(fav).Error)
}

func (r *PostgresFavouriteRepository) RemoveFavourite(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.Favourite{}).Error
}

func (r *PostgresFavouriteRepository) IsFavourite(ctx context.Context, userID, recipeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Favourite{}).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Count(&count).Error
	return count > 0, err
}

func (r *PostgresFavouriteRepository) GetFavouriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pluckRecipeIDs(r.db.WithContext(ctx).Model(&models.Favourite{}), userID, recipeIDs)
}

// pluckRecipeIDs reports which of recipeIDs appear for userID in the
// relation table behind q.
func pluckRecipeIDs(q *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	if err := q.Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
