package database

import (
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// AutoMigrate applies the GORM schema for every model. Tests run it against
// sqlite and cmd/api runs it at startup when AUTO_MIGRATE=1. Production
// schemas are managed by cmd/migrate and the SQL files under migrations/.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
	)
}
