package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingListAggregatesAcrossRecipes(t *testing.T) {
	db := newTestDB(t)
	svc := NewShoppingListService(db)
	user := createTestUser(t, db, "shopper")

	flour := createTestIngredient(t, db, "Flour", "г")
	sugar := createTestIngredient(t, db, "Sugar", "г")

	recipeA := createTestRecipe(t, db, user, "Recipe A",
		ingredientAmount{flour, 200},
		ingredientAmount{sugar, 50},
	)
	recipeB := createTestRecipe(t, db, user, "Recipe B",
		ingredientAmount{flour, 100},
	)
	addToCart(t, db, user, recipeA)
	addToCart(t, db, user, recipeB)

	body, err := svc.Build(context.Background(), user.ID)
	require.NoError(t, err)

	want := "Список покупок:\nFlour 300г\nSugar 50г\n"
	assert.Equal(t, want, string(body))
}

func TestShoppingListEmptyCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewShoppingListService(db)
	user := createTestUser(t, db, "emptycart")

	body, err := svc.Build(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Список покупок:\n", string(body))
}

func TestShoppingListDeterministic(t *testing.T) {
	db := newTestDB(t)
	svc := NewShoppingListService(db)

	author := createTestUser(t, db, "author")
	salt := createTestIngredient(t, db, "Salt", "г")
	milk := createTestIngredient(t, db, "Milk", "мл")
	egg := createTestIngredient(t, db, "Egg", "шт")
	recipe := createTestRecipe(t, db, author, "Pancakes",
		ingredientAmount{milk, 500},
		ingredientAmount{egg, 3},
		ingredientAmount{salt, 5},
	)

	// Two users with identical carts must get byte-identical documents.
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	addToCart(t, db, alice, recipe)
	addToCart(t, db, bob, recipe)

	first, err := svc.Build(context.Background(), alice.ID)
	require.NoError(t, err)
	second, err := svc.Build(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Repeated invocations for the same user too.
	again, err := svc.Build(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// Sorted by name: Egg, Milk, Salt.
	assert.Equal(t, "Список покупок:\nEgg 3шт\nMilk 500мл\nSalt 5г\n", string(first))
}

func TestShoppingListIgnoresOtherUsersCarts(t *testing.T) {
	db := newTestDB(t)
	svc := NewShoppingListService(db)

	author := createTestUser(t, db, "chef")
	butter := createTestIngredient(t, db, "Butter", "г")
	recipe := createTestRecipe(t, db, author, "Toast", ingredientAmount{butter, 20})

	other := createTestUser(t, db, "other")
	addToCart(t, db, other, recipe)

	me := createTestUser(t, db, "me")
	body, err := svc.Build(context.Background(), me.ID)
	require.NoError(t, err)
	assert.Equal(t, "Список покупок:\n", string(body))
}
