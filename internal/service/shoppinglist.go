package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
)

// ShoppingListHeader is the first line of every exported list.
const ShoppingListHeader = "Список покупок:"

// ShoppingListFilename is the attachment name used by the download endpoint.
const ShoppingListFilename = "shopping_cart.txt"

// ShoppingListService aggregates ingredient amounts across every recipe in a
// user's cart and renders the flat-text shopping list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

type shoppingListRow struct {
	Name            string
	MeasurementUnit string
	Total           int
}

// Build returns the rendered list. Amounts are summed per
// (name, measurement_unit) group and groups are ordered by name ascending,
// so output is byte-identical for identical cart contents. An empty cart
// yields just the header line.
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var rows []shoppingListRow
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(ShoppingListHeader + "\n")
	for _, row := range rows {
		// Unit is concatenated to the amount without a separator.
		fmt.Fprintf(&buf, "%s %d%s\n", row.Name, row.Total, row.MeasurementUnit)
	}
	return buf.Bytes(), nil
}
