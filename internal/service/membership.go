package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// MembershipService implements the favorite and shopping cart toggles. Both
// sets share the same contract: Add fails with ErrRecipeNotFound when the
// recipe is missing and ErrAlreadyAdded on a duplicate; Remove fails with
// ErrNotAdded when no membership row exists.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

func (s *MembershipService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	return s.add(ctx, userID, recipeID, func() interface{} {
		return &models.Favorite{UserID: userID, RecipeID: recipeID}
	})
}

func (s *MembershipService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, userID, recipeID, &models.Favorite{})
}

func (s *MembershipService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) (*types.RecipeSummary, error) {
	return s.add(ctx, userID, recipeID, func() interface{} {
		return &models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	})
}

func (s *MembershipService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.remove(ctx, userID, recipeID, &models.ShoppingCartEntry{})
}

// add inserts the membership row and returns the recipe summary. The unique
// index on (user_id, recipe_id) decides the winner of concurrent duplicate
// adds; the loser surfaces ErrAlreadyAdded, never a server fault.
func (s *MembershipService) add(ctx context.Context, userID, recipeID uuid.UUID, newRow func() interface{}) (*types.RecipeSummary, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(newRow()).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyAdded
		}
		return nil, err
	}

	return &types.RecipeSummary{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		CookingTime: recipe.CookingTime,
	}, nil
}

func (s *MembershipService) remove(ctx context.Context, userID, recipeID uuid.UUID, model interface{}) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotAdded
	}
	return nil
}
