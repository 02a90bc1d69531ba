package services

import (
	"context"
	"errors"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/sirupsen/logrus"
)

// CatalogService serves the read-only tag and ingredient reference data
type CatalogService struct {
	ingredients repositories.IngredientRepository
	tags        repositories.TagRepository
}

func NewCatalogService(ingredients repositories.IngredientRepository, tags repositories.TagRepository) *CatalogService {
	return &CatalogService{ingredients: ingredients, tags: tags}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.tags.ListTags(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to list tags")
		return nil, ErrInternalServer
	}
	return tags, nil
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	tag, err := s.tags.GetTagByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		logrus.WithError(err).WithField("tag_id", id).Error("Failed to load tag")
		return nil, ErrInternalServer
	}
	return tag, nil
}

// SearchIngredients returns ingredients whose name starts with prefix,
// ignoring case. An empty prefix returns all of them.
func (s *CatalogService) SearchIngredients(ctx context.Context, prefix string) ([]models.Ingredient, error) {
	ingredients, err := s.ingredients.SearchIngredients(ctx, prefix)
	if err != nil {
		logrus.WithError(err).WithField("prefix", prefix).Error("Failed to search ingredients")
		return nil, ErrInternalServer
	}
	return ingredients, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	ingredient, err := s.ingredients.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIngredientNotFound
		}
		logrus.WithError(err).WithField("ingredient_id", id).Error("Failed to load ingredient")
		return nil, ErrInternalServer
	}
	return ingredient, nil
}
