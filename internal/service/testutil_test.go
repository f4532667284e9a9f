package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platefeed/backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	)
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestTag(t *testing.T, db *gorm.DB, slug string) *models.Tag {
	t.Helper()
	tag := models.Tag{Name: slug, Color: "#" + slug[:min(len(slug), 6)], Slug: slug}
	require.NoError(t, db.Create(&tag).Error)
	return &tag
}

func createTestIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(&ingredient).Error)
	return &ingredient
}

type ingredientAmount struct {
	ingredient *models.Ingredient
	amount     int
}

func createTestRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, items ...ingredientAmount) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		Name:        name,
		Text:        "test recipe",
		CookingTime: 30,
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Create(&recipe).Error)
	for _, item := range items {
		row := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ingredient.ID,
			Amount:       item.amount,
		}
		require.NoError(t, db.Create(&row).Error)
	}
	return &recipe
}

func addToCart(t *testing.T, db *gorm.DB, user *models.User, recipe *models.Recipe) {
	t.Helper()
	require.NoError(t, db.Create(&models.ShoppingCartEntry{
		UserID:   user.ID,
		RecipeID: recipe.ID,
	}).Error)
}

func randomID() uuid.UUID {
	return uuid.New()
}
