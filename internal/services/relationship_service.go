package services

import (
	"context"
	"errors"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// RelationshipService guards the follow, favourite and cart pairs. Adding
// an existing pair is a conflict, removing a missing pair is a no-op.
type RelationshipService struct {
	users      repositories.UserRepository
	recipes    repositories.RecipeRepository
	follows    repositories.FollowRepository
	favourites repositories.FavouriteRepository
	carts      repositories.CartRepository
}

func NewRelationshipService(
	users repositories.UserRepository,
	recipes repositories.RecipeRepository,
	follows repositories.FollowRepository,
	favourites repositories.FavouriteRepository,
	carts repositories.CartRepository,
) *RelationshipService {
	return &RelationshipService{
		users:      users,
		recipes:    recipes,
		follows:    follows,
		favourites: favourites,
		carts:      carts,
	}
}

// Follow subscribes userID to authorID and returns the author as a
// subscription entry.
func (s *RelationshipService) Follow(ctx context.Context, userID, authorID uint, recipesLimit int) (*models.SubscriptionResponse, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "author_id": authorID})

	author, err := s.lookupUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if userID == authorID {
		logCtx.Warn("Self-follow rejected")
		return nil, ErrSelfFollow
	}
	exists, err := s.follows.IsFollowing(ctx, userID, authorID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check follow")
		return nil, ErrInternalServer
	}
	if exists {
		return nil, ErrAlreadyFollowing
	}

	if err := s.follows.CreateFollow(ctx, &models.Follow{UserID: userID, FollowingID: authorID}); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, ErrAlreadyFollowing
		}
		logCtx.WithError(err).Error("Failed to create follow")
		return nil, ErrInternalServer
	}

	logCtx.Info("User followed author")
	return s.subscription(ctx, author, recipesLimit)
}

// Unfollow removes the subscription if present. The author must exist.
func (s *RelationshipService) Unfollow(ctx context.Context, userID, authorID uint) error {
	if _, err := s.lookupUser(ctx, authorID); err != nil {
		return err
	}
	if err := s.follows.DeleteFollow(ctx, userID, authorID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "author_id": authorID}).Error("Failed to delete follow")
		return ErrInternalServer
	}
	return nil
}

// Subscriptions lists the authors userID follows with up to recipesLimit
// of their newest recipes each (all of them when recipesLimit <= 0).
func (s *RelationshipService) Subscriptions(ctx context.Context, userID uint, recipesLimit, offset, limit int) ([]models.SubscriptionResponse, int64, error) {
	authors, total, err := s.follows.GetFollowing(ctx, userID, offset, limit)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list subscriptions")
		return nil, 0, ErrInternalServer
	}
	results := make([]models.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := s.subscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *sub)
	}
	return results, total, nil
}

func (s *RelationshipService) subscription(ctx context.Context, author *models.User, recipesLimit int) (*models.SubscriptionResponse, error) {
	recipes, err := s.recipes.ListRecipesByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		logrus.WithError(err).WithField("author_id", author.ID).Error("Failed to list author recipes")
		return nil, ErrInternalServer
	}
	count, err := s.recipes.CountRecipesByAuthor(ctx, author.ID)
	if err != nil {
		logrus.WithError(err).WithField("author_id", author.ID).Error("Failed to count author recipes")
		return nil, ErrInternalServer
	}
	short := make([]models.RecipeShort, len(recipes))
	for i := range recipes {
		short[i] = recipes[i].ToShort()
	}
	return &models.SubscriptionResponse{
		UserResponse: author.ToResponse(true),
		Recipes:      short,
		RecipeCount:  count,
	}, nil
}

func (s *RelationshipService) AddFavourite(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	return s.addRecipePair(ctx, "favourite", userID, recipeID, s.favourites.IsFavourite, s.favourites.AddFavourite)
}

func (s *RelationshipService) RemoveFavourite(ctx context.Context, userID, recipeID uint) error {
	return s.removeRecipePair(ctx, "favourite", userID, recipeID, s.favourites.RemoveFavourite)
}

func (s *RelationshipService) AddToCart(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	return s.addRecipePair(ctx, "cart", userID, recipeID, s.carts.IsInCart, s.carts.AddToCart)
}

func (s *RelationshipService) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return s.removeRecipePair(ctx, "cart", userID, recipeID, s.carts.RemoveFromCart)
}

type pairFunc func(ctx context.Context, userID, recipeID uint) error
type pairCheck func(ctx context.Context, userID, recipeID uint) (bool, error)

func (s *RelationshipService) addRecipePair(ctx context.Context, kind string, userID, recipeID uint, exists pairCheck, add pairFunc) (*models.RecipeShort, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID, "relation": kind})

	recipe, err := s.lookupRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	present, err := exists(ctx, userID, recipeID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check relation")
		return nil, ErrInternalServer
	}
	if present {
		return nil, ErrAlreadyAdded
	}
	if err := add(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEntry) {
			return nil, ErrAlreadyAdded
		}
		logCtx.WithError(err).Error("Failed to add relation")
		return nil, ErrInternalServer
	}

	logCtx.Info("Recipe added")
	short := recipe.ToShort()
	return &short, nil
}

func (s *RelationshipService) removeRecipePair(ctx context.Context, kind string, userID, recipeID uint, remove pairFunc) error {
	if _, err := s.lookupRecipe(ctx, recipeID); err != nil {
		return err
	}
	if err := remove(ctx, userID, recipeID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "recipe_id": recipeID, "relation": kind}).Error("Failed to remove relation")
		return ErrInternalServer
	}
	return nil
}

func (s *RelationshipService) lookupUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).WithField("user_id", id).Error("Failed to load user")
		return nil, ErrInternalServer
	}
	return user, nil
}

func (s *RelationshipService) lookupRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		logrus.WithError(err).WithField("recipe_id", id).Error("Failed to load recipe")
		return nil, ErrInternalServer
	}
	return recipe, nil
}
