package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/anonto42/cookbook/backend/pkg/storage"
	"github.com/sirupsen/logrus"
)

// RecipeQuery carries the list filters as received from the client.
// IsFavorited and IsInShoppingCart only apply when they equal 1.
type RecipeQuery struct {
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      string
	IsInShoppingCart string
}

// RecipeService owns recipes and their ingredient/tag associations
type RecipeService struct {
	recipes     repositories.RecipeRepository
	ingredients repositories.IngredientRepository
	tags        repositories.TagRepository
	favourites  repositories.FavouriteRepository
	carts       repositories.CartRepository
	follows     repositories.FollowRepository
	images      storage.ImageStore
}

func NewRecipeService(
	recipes repositories.RecipeRepository,
	ingredients repositories.IngredientRepository,
	tags repositories.TagRepository,
	favourites repositories.FavouriteRepository,
	carts repositories.CartRepository,
	follows repositories.FollowRepository,
	images storage.ImageStore,
) *RecipeService {
	return &RecipeService{
		recipes:     recipes,
		ingredients: ingredients,
		tags:        tags,
		favourites:  favourites,
		carts:       carts,
		follows:     follows,
		images:      images,
	}
}

// CreateRecipe validates the submitted associations, stores the image and
// persists the recipe with exactly the submitted ingredients and tags.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uint, req *models.RecipeRequest) (*models.RecipeResponse, error) {
	logCtx := logrus.WithFields(logrus.Fields{"author_id": authorID, "name": req.Name})

	ingredients, tags, err := s.resolveAssociations(ctx, req)
	if err != nil {
		logCtx.WithError(err).Warn("Recipe rejected")
		return nil, err
	}
	if req.Image == "" {
		return nil, ErrImageRequired
	}
	imageRef, err := s.saveImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Image:       imageRef,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if err := s.recipes.CreateRecipe(ctx, recipe, ingredients, tags); err != nil {
		logCtx.WithError(err).Error("Failed to create recipe")
		s.discardImage(ctx, imageRef)
		return nil, ErrInternalServer
	}

	logCtx.WithField("recipe_id", recipe.ID).Info("Recipe created")
	return s.GetRecipe(ctx, authorID, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields and its whole ingredient and
// tag sets. The image is kept unless a new one is submitted.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, recipeID uint, req *models.RecipeRequest) (*models.RecipeResponse, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": actorID, "recipe_id": recipeID})

	existing, err := s.authorizedRecipe(ctx, actorID, recipeID)
	if err != nil {
		return nil, err
	}
	ingredients, tags, err := s.resolveAssociations(ctx, req)
	if err != nil {
		logCtx.WithError(err).Warn("Recipe update rejected")
		return nil, err
	}

	oldImage := existing.Image
	updated := &models.Recipe{
		ID:          existing.ID,
		Name:        req.Name,
		Image:       oldImage,
		Text:        req.Text,
		CookingTime: req.CookingTime,
	}
	if req.Image != "" {
		if updated.Image, err = s.saveImage(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	if err := s.recipes.UpdateRecipe(ctx, updated, ingredients, tags); err != nil {
		if updated.Image != oldImage {
			s.discardImage(ctx, updated.Image)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		logCtx.WithError(err).Error("Failed to update recipe")
		return nil, ErrInternalServer
	}
	if updated.Image != oldImage {
		s.discardImage(ctx, oldImage)
	}

	logCtx.Info("Recipe updated")
	return s.GetRecipe(ctx, actorID, recipeID)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, recipeID uint) error {
	existing, err := s.authorizedRecipe(ctx, actorID, recipeID)
	if err != nil {
		return err
	}
	if err := s.recipes.DeleteRecipe(ctx, recipeID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRecipeNotFound
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("Failed to delete recipe")
		return ErrInternalServer
	}
	s.discardImage(ctx, existing.Image)
	logrus.WithFields(logrus.Fields{"user_id": actorID, "recipe_id": recipeID}).Info("Recipe deleted")
	return nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, viewerID, recipeID uint) (*models.RecipeResponse, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("Failed to load recipe")
		return nil, ErrInternalServer
	}
	responses, err := s.toResponses(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// ListRecipes returns one page of recipes, newest first, plus the total
// number of recipes matching the query.
func (s *RecipeService) ListRecipes(ctx context.Context, viewerID uint, q RecipeQuery, offset, limit int) ([]models.RecipeResponse, int64, error) {
	filter := repositories.RecipeFilter{
		AuthorID: q.AuthorID,
		TagSlugs: q.TagSlugs,
	}
	if viewerID != 0 {
		if FlagEnabled(q.IsFavorited) {
			filter.FavouritedBy = viewerID
		}
		if FlagEnabled(q.IsInShoppingCart) {
			filter.InCartOf = viewerID
		}
	}

	recipes, total, err := s.recipes.ListRecipes(ctx, filter, offset, limit)
	if err != nil {
		logrus.WithError(err).Error("Failed to list recipes")
		return nil, 0, ErrInternalServer
	}
	responses, err := s.toResponses(ctx, viewerID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// FlagEnabled reports whether a boolean-like query value is the numeric
// sentinel 1. Every other value, including "0", "true" and "", disables
// the filter instead of inverting it.
func FlagEnabled(value string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return err == nil && f == 1
}

func (s *RecipeService) authorizedRecipe(ctx context.Context, actorID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		logrus.WithError(err).WithField("recipe_id", recipeID).Error("Failed to load recipe")
		return nil, ErrInternalServer
	}
	if recipe.AuthorID != actorID {
		logrus.WithFields(logrus.Fields{"user_id": actorID, "recipe_id": recipeID}).Warn("Non-author tried to modify recipe")
		return nil, ErrNotAuthor
	}
	return recipe, nil
}

// resolveAssociations checks a submitted payload before anything is
// written: amounts must be positive, ingredients unique, and every
// ingredient and tag must exist. Repeated tag ids collapse into one.
func (s *RecipeService) resolveAssociations(ctx context.Context, req *models.RecipeRequest) ([]models.RecipeIngredient, []models.Tag, error) {
	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	seen := make(map[uint]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if item.Amount < 1 {
			return nil, nil, ErrInvalidAmount
		}
		if seen[item.ID] {
			return nil, nil, ErrDuplicateIngredient
		}
		seen[item.ID] = true
		ingredientIDs = append(ingredientIDs, item.ID)
	}

	found, err := s.ingredients.GetIngredientsByIDs(ctx, ingredientIDs)
	if err != nil {
		logrus.WithError(err).Error("Failed to load ingredients")
		return nil, nil, ErrInternalServer
	}
	if len(found) != len(ingredientIDs) {
		return nil, nil, ErrIngredientNotFound
	}

	tagIDs := make([]uint, 0, len(req.Tags))
	seenTags := make(map[uint]bool, len(req.Tags))
	for _, id := range req.Tags {
		if !seenTags[id] {
			seenTags[id] = true
			tagIDs = append(tagIDs, id)
		}
	}
	tags, err := s.tags.GetTagsByIDs(ctx, tagIDs)
	if err != nil {
		logrus.WithError(err).Error("Failed to load tags")
		return nil, nil, ErrInternalServer
	}
	if len(tags) != len(tagIDs) {
		return nil, nil, ErrTagNotFound
	}

	ingredients := make([]models.RecipeIngredient, len(req.Ingredients))
	for i, item := range req.Ingredients {
		ingredients[i] = models.RecipeIngredient{IngredientID: item.ID, Amount: item.Amount}
	}
	return ingredients, tags, nil
}

func (s *RecipeService) saveImage(ctx context.Context, dataURI string) (string, error) {
	img, err := storage.DecodeDataURI(dataURI)
	if err != nil {
		logrus.WithError(err).Warn("Rejected recipe image")
		return "", ErrInvalidImage
	}
	ref, err := s.images.Save(ctx, img)
	if err != nil {
		logrus.WithError(err).Error("Failed to store recipe image")
		return "", ErrInternalServer
	}
	return ref, nil
}

func (s *RecipeService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.images.Delete(ctx, ref); err != nil {
		logrus.WithError(err).WithField("image", ref).Warn("Failed to delete recipe image")
	}
}

func (s *RecipeService) toResponses(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]models.RecipeResponse, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favourites, err := s.favourites.GetFavouriteRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		logrus.WithError(err).Error("Failed to load favourites")
		return nil, ErrInternalServer
	}
	inCart, err := s.carts.GetCartRecipeIDs(ctx, viewerID, recipeIDs)
	if err != nil {
		logrus.WithError(err).Error("Failed to load cart")
		return nil, ErrInternalServer
	}
	following, err := s.follows.GetFollowingIDs(ctx, viewerID, authorIDs)
	if err != nil {
		logrus.WithError(err).Error("Failed to load subscriptions")
		return nil, ErrInternalServer
	}

	responses := make([]models.RecipeResponse, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		ingredients := make([]models.RecipeIngredientResponse, len(r.Ingredients))
		for j, ri := range r.Ingredients {
			ingredients[j] = models.RecipeIngredientResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			}
		}
		tags := r.Tags
		if tags == nil {
			tags = []models.Tag{}
		}
		responses[i] = models.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           r.Author.ToResponse(following[r.AuthorID]),
			Ingredients:      ingredients,
			IsFavorited:      favourites[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		}
	}
	return responses, nil
}
