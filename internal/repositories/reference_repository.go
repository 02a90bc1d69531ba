package repositories

import (
	"context"
	"strings"

	"github.com/anonto42/cookbook/backend/internal/models"
	"gorm.io/gorm"
)

// IngredientRepository gives read access to ingredient reference data
type IngredientRepository interface {
	GetIngredientByID(ctx context.Context, id uint) (*models.Ingredient, error)
	GetIngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
	SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
}

// TagRepository gives read access to tags
type TagRepository interface {
	GetTagByID(ctx context.Context, id uint) (*models.Tag, error)
	GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type PostgresIngredientRepository struct {
	db *gorm.DB
}

func NewPostgresIngredientRepository(db *gorm.DB) *PostgresIngredientRepository {
	return &PostgresIngredientRepository{db: db}
}

func (r *PostgresIngredientRepository) GetIngredientByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &ingredient, nil
}

func (r *PostgresIngredientRepository) GetIngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	if len(ids) == 0 {
		return ingredients, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ingredients).Error
	return ingredients, err
}

// SearchIngredients matches names starting with namePrefix, case-insensitively
func (r *PostgresIngredientRepository) SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	q := r.db.WithContext(ctx).Order("name").Order("id")
	if namePrefix != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(namePrefix))+"%")
	}
	err := q.Find(&ingredients).Error
	return ingredients, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

type PostgresTagRepository struct {
	db *gorm.DB
}

func NewPostgresTagRepository(db *gorm.DB) *PostgresTagRepository {
	return &PostgresTagRepository{db: db}
}

func (r *PostgresTagRepository) GetTagByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &tag, nil
}

func (r *PostgresTagRepository) GetTagsByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&tags).Error
	return tags, err
}

func (r *PostgresTagRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.WithContext(ctx).Order("id").Find(&tags).Error
	return tags, err
}
