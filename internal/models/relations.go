package models

import "time"

// Follow means User follows Following
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_following;check:chk_follows_not_self,user_id <> following_id"`
	User        User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	FollowingID uint      `json:"following_id" gorm:"not null;index;uniqueIndex:idx_user_following"`
	Following   User      `json:"-" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at"`
}

// Favourite is a recipe bookmarked by a user
type Favourite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_recipe_favourite"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_user_recipe_favourite"`
	Recipe    Recipe    `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// Cart is a recipe placed in a user's shopping cart
type Cart struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_recipe_cart"`
	User      User      `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	RecipeID  uint      `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_user_recipe_cart"`
	Recipe    Recipe    `json:"-" gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// CartLine is one (ingredient, amount) row reached through a user's cart
type CartLine struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// Page is the paginated list envelope
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
