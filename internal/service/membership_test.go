package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/models"
)

func TestAddFavorite(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")
	author := createTestUser(t, db, "cook")
	recipe := createTestRecipe(t, db, author, "Borscht")

	summary, err := svc.AddFavorite(context.Background(), user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, summary.ID)
	assert.Equal(t, "Borscht", summary.Name)
	assert.Equal(t, 30, summary.CookingTime)
}

func TestAddFavoriteUnknownRecipe(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")

	_, err := svc.AddFavorite(context.Background(), user.ID, randomID())
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestAddFavoriteTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")
	author := createTestUser(t, db, "cook")
	recipe := createTestRecipe(t, db, author, "Borscht")

	_, err := svc.AddFavorite(context.Background(), user.ID, recipe.ID)
	require.NoError(t, err)
	_, err = svc.AddFavorite(context.Background(), user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrAlreadyAdded)

	var count int64
	db.Model(&models.Favorite{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRemoveFavoriteMissing(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")
	author := createTestUser(t, db, "cook")
	recipe := createTestRecipe(t, db, author, "Borscht")

	err := svc.RemoveFavorite(context.Background(), user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotAdded)
}

func TestRemoveFavoriteTwice(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")
	author := createTestUser(t, db, "cook")
	recipe := createTestRecipe(t, db, author, "Borscht")

	_, err := svc.AddFavorite(context.Background(), user.ID, recipe.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFavorite(context.Background(), user.ID, recipe.ID))
	err = svc.RemoveFavorite(context.Background(), user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotAdded)
}

func TestAddRemoveAddRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")
	author := createTestUser(t, db, "cook")
	recipe := createTestRecipe(t, db, author, "Borscht")

	ctx := context.Background()
	_, err := svc.AddToCart(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFromCart(ctx, user.ID, recipe.ID))

	var count int64
	db.Model(&models.ShoppingCartEntry{}).Count(&count)
	assert.EqualValues(t, 0, count)

	_, err = svc.AddToCart(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	db.Model(&models.ShoppingCartEntry{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestFavoriteAndCartAreIndependent(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db)
	user := createTestUser(t, db, "fan")
	author := createTestUser(t, db, "cook")
	recipe := createTestRecipe(t, db, author, "Borscht")

	ctx := context.Background()
	_, err := svc.AddFavorite(ctx, user.ID, recipe.ID)
	require.NoError(t, err)

	// The same recipe can still enter the cart, and leaving the cart does
	// not touch the favorite.
	_, err = svc.AddToCart(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RemoveFromCart(ctx, user.ID, recipe.ID))

	var count int64
	db.Model(&models.Favorite{}).Count(&count)
	assert.EqualValues(t, 1, count)
}
