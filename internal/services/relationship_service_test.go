package services

import (
	"context"
	"testing"

	"github.com/anonto42/cookbook/backend/internal/models"
	"github.com/anonto42/cookbook/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	flour := env.ingredient(t, "Flour", "g")
	tag := env.tag(t, "bread")
	env.recipe(t, bob.ID, "Old", []uint{tag.ID}, models.IngredientAmount{ID: flour.ID, Amount: 1})
	newest := env.recipe(t, bob.ID, "New", []uint{tag.ID}, models.IngredientAmount{ID: flour.ID, Amount: 1})

	sub, err := env.relationships.Follow(ctx, alice.ID, bob.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(2), sub.RecipeCount)
	require.Len(t, sub.Recipes, 1)
	assert.Equal(t, newest.ID, sub.Recipes[0].ID)

	_, err = env.relationships.Follow(ctx, alice.ID, bob.ID, 0)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.relationships.Follow(ctx, alice.ID, alice.ID, 0)
	assert.ErrorIs(t, err, ErrSelfFollow)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.relationships.Follow(ctx, alice.ID, bob.ID+100, 0)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Equal(t, int64(1), env.count(t, &models.Follow{}))
}

func TestUnfollow_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	require.NoError(t, env.relationships.Unfollow(ctx, alice.ID, bob.ID), "missing follow is a no-op")

	_, err := env.relationships.Follow(ctx, alice.ID, bob.ID, 0)
	require.NoError(t, err)
	require.NoError(t, env.relationships.Unfollow(ctx, alice.ID, bob.ID))
	require.NoError(t, env.relationships.Unfollow(ctx, alice.ID, bob.ID))
	assert.Zero(t, env.count(t, &models.Follow{}))

	assert.ErrorIs(t, env.relationships.Unfollow(ctx, alice.ID, bob.ID+100), ErrUserNotFound)
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	_, err := env.relationships.Follow(ctx, alice.ID, carol.ID, 0)
	require.NoError(t, err)
	_, err = env.relationships.Follow(ctx, alice.ID, bob.ID, 0)
	require.NoError(t, err)

	subs, total, err := env.relationships.Subscriptions(ctx, alice.ID, 0, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, subs, 2)
	assert.Equal(t, carol.ID, subs[0].ID)
	assert.Equal(t, bob.ID, subs[1].ID)
	assert.Empty(t, subs[0].Recipes)
	assert.NotNil(t, subs[0].Recipes)

	user, err := env.users.GetUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, user.IsSubscribed)
	user, err = env.users.GetUser(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, user.IsSubscribed)
}

func TestFavouriteAndCartToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	flour := env.ingredient(t, "Flour", "g")
	tag := env.tag(t, "bread")
	recipe := env.recipe(t, alice.ID, "Bread", []uint{tag.ID}, models.IngredientAmount{ID: flour.ID, Amount: 1})

	short, err := env.relationships.AddFavourite(ctx, alice.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RecipeShort{ID: recipe.ID, Name: "Bread", Image: recipe.Image, CookingTime: recipe.CookingTime}, *short)

	_, err = env.relationships.AddFavourite(ctx, alice.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyAdded)

	_, err = env.relationships.AddToCart(ctx, alice.ID, recipe.ID)
	require.NoError(t, err)
	_, err = env.relationships.AddToCart(ctx, alice.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = env.relationships.AddToCart(ctx, alice.ID, recipe.ID+100)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	got, err := env.recipes.GetRecipe(ctx, alice.ID, recipe.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFavorited)
	assert.True(t, got.IsInShoppingCart)

	for i := 0; i < 2; i++ {
		require.NoError(t, env.relationships.RemoveFavourite(ctx, alice.ID, recipe.ID))
		require.NoError(t, env.relationships.RemoveFromCart(ctx, alice.ID, recipe.ID))
	}
	assert.Zero(t, env.count(t, &models.Favourite{}))
	assert.Zero(t, env.count(t, &models.Cart{}))
}

// staleFollows and staleCarts report no existing pair, so the insert is
// the first place a concurrent duplicate can surface.
type staleFollows struct{ repositories.FollowRepository }

func (staleFollows) IsFollowing(context.Context, uint, uint) (bool, error) { return false, nil }

type staleCarts struct{ repositories.CartRepository }

func (staleCarts) IsInCart(context.Context, uint, uint) (bool, error) { return false, nil }

type staleFavourites struct{ repositories.FavouriteRepository }

func (staleFavourites) IsFavourite(context.Context, uint, uint) (bool, error) { return false, nil }

func TestDuplicateInsertAfterStaleCheck(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	flour := env.ingredient(t, "Flour", "g")
	tag := env.tag(t, "bread")
	recipe := env.recipe(t, bob.ID, "Bread", []uint{tag.ID}, models.IngredientAmount{ID: flour.ID, Amount: 1})

	require.NoError(t, env.db.Create(&models.Follow{UserID: alice.ID, FollowingID: bob.ID}).Error)
	require.NoError(t, env.db.Create(&models.Cart{UserID: alice.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, env.db.Create(&models.Favourite{UserID: alice.ID, RecipeID: recipe.ID}).Error)

	relationships := NewRelationshipService(
		repositories.NewPostgresUserRepository(env.db),
		repositories.NewPostgresRecipeRepository(env.db),
		staleFollows{repositories.NewPostgresFollowRepository(env.db)},
		staleFavourites{repositories.NewPostgresFavouriteRepository(env.db)},
		staleCarts{repositories.NewPostgresCartRepository(env.db)},
	)

	_, err := relationships.Follow(ctx, alice.ID, bob.ID, 0)
	assert.ErrorIs(t, err, ErrAlreadyFollowing)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = relationships.AddToCart(ctx, alice.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyAdded)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = relationships.AddFavourite(ctx, alice.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyAdded)

	assert.Equal(t, int64(1), env.count(t, &models.Follow{}))
	assert.Equal(t, int64(1), env.count(t, &models.Cart{}))
	assert.Equal(t, int64(1), env.count(t, &models.Favourite{}))
}
