package services

import (
	"context"
	"errors"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, profiles and password changes
type UserService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
}

func NewUserService(users repositories.UserRepository, follows repositories.FollowRepository) *UserService {
	return &UserService{users: users, follows: follows}
}

func (s *UserService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.UserResponse, error) {
	logCtx := logrus.WithFields(logrus.Fields{"email": req.Email, "username": req.Username})

	exists, err := s.users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check existing user")
		return nil, ErrInternalServer
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logCtx.WithError(err).Error("Failed to hash password")
		return nil, ErrInternalServer
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, ErrUserExists
		}
		logCtx.WithError(err).Error("Failed to create user")
		return nil, ErrInternalServer
	}

	logCtx.WithField("user_id", user.ID).Info("User registered")
	resp := user.ToResponse(false)
	return &resp, nil
}

// GetUser returns the user as seen by viewerID (0 for anonymous)
func (s *UserService) GetUser(ctx context.Context, viewerID, userID uint) (*models.UserResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return nil, ErrInternalServer
	}
	following, err := s.follows.GetFollowingIDs(ctx, viewerID, []uint{userID})
	if err != nil {
		logrus.WithError(err).Error("Failed to load subscriptions")
		return nil, ErrInternalServer
	}
	resp := user.ToResponse(following[userID])
	return &resp, nil
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUser(ctx, userID, userID)
}

func (s *UserService) ListUsers(ctx context.Context, viewerID uint, offset, limit int) ([]models.UserResponse, int64, error) {
	users, total, err := s.users.ListUsers(ctx, offset, limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		return nil, 0, ErrInternalServer
	}
	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	following, err := s.follows.GetFollowingIDs(ctx, viewerID, ids)
	if err != nil {
		logrus.WithError(err).Error("Failed to load subscriptions")
		return nil, 0, ErrInternalServer
	}
	results := make([]models.UserResponse, len(users))
	for i := range users {
		results[i] = users[i].ToResponse(following[users[i].ID])
	}
	return results, total, nil
}

// SetPassword replaces the password after checking the current one
func (s *UserService) SetPassword(ctx context.Context, userID uint, req *models.SetPasswordRequest) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to load user")
		return ErrInternalServer
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		return ErrInternalServer
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to update password")
		return ErrInternalServer
	}
	logrus.WithField("user_id", userID).Info("Password changed")
	return nil
}
