package models

import "time"

type User struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username  string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName string `json:"first_name" gorm:"size:150"`
	LastName  string `json:"last_name" gorm:"size:150"`
	Password  string `json:"-" gorm:"not null"` // bcrypt hash, empty for Firebase-only accounts
	// FirebaseUID links the account to a Firebase identity
	FirebaseUID *string   `json:"-" gorm:"size:128;uniqueIndex"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=150"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" validate:"required,max=150"`
	CurrentPassword string `json:"current_password" validate:"required,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=150"`
	Password string `json:"password" validate:"required,max=150"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

// UserResponse is a user as seen by the viewer of a request
type UserResponse struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

func (u *User) ToResponse(isSubscribed bool) UserResponse {
	return UserResponse{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
}

// SubscriptionResponse describes a followed author together with their recipes
type SubscriptionResponse struct {
	UserResponse
	Recipes     []RecipeShort `json:"recipes"`
	RecipeCount int64         `json:"recipe_count"`
}
