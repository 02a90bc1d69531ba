package repositories

import (
	"context"

	"github.com/anonto42/cookbook/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, userID, followingID uint) error
	IsFollowing(ctx context.Context, userID, followingID uint) (bool, error)
	GetFollowingIDs(ctx context.Context, userID uint, candidates []uint) (map[uint]bool, error)
	GetFollowing(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow returns ErrDuplicateEntry when the pair already exists
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return mapError(r.db.WithContext(ctx).Omit("User", "Following").Create(follow).Error)
}

// DeleteFollow is a no-op when the pair does not exist
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, userID, followingID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, userID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ? AND following_id = ?", userID, followingID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowingIDs reports which of candidates userID follows
func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint, candidates []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if userID == 0 || len(candidates) == 0 {
		return result, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND following_id IN ?", userID, candidates).
		Pluck("following_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// GetFollowing returns one page of the authors userID follows, oldest
// subscription first, plus their total number.
func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.id").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}
