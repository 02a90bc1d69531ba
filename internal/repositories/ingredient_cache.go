package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/cookbook/backend/internal/models"
	lru "github.com/hashicorp/golang-lru"
)

// CachedIngredientRepository serves ingredient lookups by id from an LRU
// cache. Ingredients are immutable, so entries never go stale.
type CachedIngredientRepository struct {
	next  IngredientRepository
	cache *lru.Cache
}

func NewCachedIngredientRepository(next IngredientRepository, size int) (*CachedIngredientRepository, error) {
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create ingredient cache: %w", err)
	}
	return &CachedIngredientRepository{next: next, cache: cache}, nil
}

func (r *CachedIngredientRepository) GetIngredientByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	if v, ok := r.cache.Get(id); ok {
		ing := v.(models.Ingredient)
		return &ing, nil
	}
	ing, err := r.next.GetIngredientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, *ing)
	return ing, nil
}

func (r *CachedIngredientRepository) GetIngredientsByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	found := make([]models.Ingredient, 0, len(ids))
	var missing []uint
	for _, id := range ids {
		if v, ok := r.cache.Get(id); ok {
			found = append(found, v.(models.Ingredient))
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return found, nil
	}
	fetched, err := r.next.GetIngredientsByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, ing := range fetched {
		r.cache.Add(ing.ID, ing)
	}
	return append(found, fetched...), nil
}

func (r *CachedIngredientRepository) SearchIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	return r.next.SearchIngredients(ctx, namePrefix)
}
