package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// ImageStore uploads an inline base64 image and returns its public URL.
type ImageStore interface {
	UploadBase64(ctx context.Context, data string) (string, error)
}

// RecipeService handles recipe CRUD. Create and update run in a single
// transaction so a reader never observes a recipe without its tag and
// ingredient rows.
type RecipeService struct {
	db     *gorm.DB
	images ImageStore
}

func NewRecipeService(db *gorm.DB, images ImageStore) *RecipeService {
	return &RecipeService{db: db, images: images}
}

// RecipeFilter narrows List results. Favorited/InCart only apply when a
// viewer is present.
type RecipeFilter struct {
	TagSlugs  []string
	AuthorID  *uuid.UUID
	Favorited bool
	InCart    bool
	Page      int
	Limit     int
}

func (s *RecipeService) Create(ctx context.Context, authorID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	if err := validateRecipeRequest(req); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.checkIngredientsExist(ctx, req.Ingredients); err != nil {
		return nil, err
	}

	imageURL, err := s.uploadImage(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		ImageURL:    imageURL,
		AuthorID:    authorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Append(tags); err != nil {
			return err
		}
		return insertIngredientRows(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &authorID)
}

func (s *RecipeService) Update(ctx context.Context, userID, recipeID uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrNotRecipeAuthor
	}

	if err := validateRecipeRequest(req); err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, req.Tags)
	if err != nil {
		return nil, err
	}
	if err := s.checkIngredientsExist(ctx, req.Ingredients); err != nil {
		return nil, err
	}

	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime
	if req.Image != "" {
		imageURL, err := s.uploadImage(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		recipe.ImageURL = imageURL
	}

	// Full replace of both association sets, never an incremental diff.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&recipe).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertIngredientRows(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, recipe.ID, &userID)
}

func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	if recipe.AuthorID != userID {
		return ErrNotRecipeAuthor
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

func (s *RecipeService) Get(ctx context.Context, recipeID uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", recipeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	resp := s.toResponse(ctx, &recipe, viewer)
	return &resp, nil
}

// List returns recipes newest first, filtered and paginated.
func (s *RecipeService) List(ctx context.Context, viewer *uuid.UUID, filter RecipeFilter) (*types.Page[types.RecipeResponse], error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if len(filter.TagSlugs) > 0 {
		// Subquery instead of a join so a recipe matching several of the
		// requested slugs still yields one row and Count stays valid.
		tagged := s.db.WithContext(ctx).
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if viewer != nil && filter.Favorited {
		query = query.Joins("JOIN favorites ON favorites.recipe_id = recipes.id AND favorites.user_id = ?", *viewer)
	}
	if viewer != nil && filter.InCart {
		query = query.Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id AND shopping_cart_entries.user_id = ?", *viewer)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").
		Scopes(Paginate(filter.Page, filter.Limit)).
		Find(&recipes).Error
	if err != nil {
		return nil, err
	}

	results := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, s.toResponse(ctx, &recipes[i], viewer))
	}
	return &types.Page[types.RecipeResponse]{Count: count, Results: results}, nil
}

func (s *RecipeService) toResponse(ctx context.Context, recipe *models.Recipe, viewer *uuid.UUID) types.RecipeResponse {
	resp := types.RecipeResponse{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Image:       recipe.ImageURL,
		Text:        recipe.Text,
		CookingTime: recipe.CookingTime,
		Author:      UserToResponse(&recipe.Author),
		Tags:        make([]types.TagResponse, 0, len(recipe.Tags)),
		Ingredients: make([]types.RecipeIngredientResponse, 0, len(recipe.Ingredients)),
	}
	for _, tag := range recipe.Tags {
		resp.Tags = append(resp.Tags, types.TagResponse{
			ID:    tag.ID,
			Name:  tag.Name,
			Color: tag.Color,
			Slug:  tag.Slug,
		})
	}
	for _, row := range recipe.Ingredients {
		resp.Ingredients = append(resp.Ingredients, types.RecipeIngredientResponse{
			ID:              row.IngredientID,
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}
	if viewer != nil {
		db := s.db.WithContext(ctx)
		resp.Author.IsSubscribed = isSubscribed(db, *viewer, recipe.AuthorID)
		var n int64
		db.Model(&models.Favorite{}).
			Where("user_id = ? AND recipe_id = ?", *viewer, recipe.ID).Count(&n)
		resp.IsFavorited = n > 0
		n = 0
		db.Model(&models.ShoppingCartEntry{}).
			Where("user_id = ? AND recipe_id = ?", *viewer, recipe.ID).Count(&n)
		resp.IsInShoppingCart = n > 0
	}
	return resp
}

func (s *RecipeService) uploadImage(ctx context.Context, data string) (string, error) {
	if data == "" || s.images == nil {
		return "", nil
	}
	return s.images.UploadBase64(ctx, data)
}

func (s *RecipeService) resolveTags(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ErrTagNotFound
	}
	return tags, nil
}

func (s *RecipeService) checkIngredientsExist(ctx context.Context, items []types.IngredientAmount) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return err
	}
	if n != int64(len(ids)) {
		return ErrIngredientNotFound
	}
	return nil
}

func insertIngredientRows(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	for _, item := range items {
		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// validateRecipeRequest enforces the submission rules before any write:
// non-empty distinct tag list, non-empty ingredient list with distinct ids,
// and amount/cooking-time bounds.
func validateRecipeRequest(req *types.RecipeRequest) error {
	if req.CookingTime < models.MinCookingTime || req.CookingTime > models.MaxCookingTime {
		return &ValidationError{Message: fmt.Sprintf(
			"cooking_time must be between %d and %d minutes",
			models.MinCookingTime, models.MaxCookingTime)}
	}

	if len(req.Tags) == 0 {
		return &ValidationError{Message: "at least one tag is required"}
	}
	seenTags := make(map[uuid.UUID]struct{}, len(req.Tags))
	for _, id := range req.Tags {
		if _, dup := seenTags[id]; dup {
			return &ValidationError{Message: "tags must be unique"}
		}
		seenTags[id] = struct{}{}
	}

	if len(req.Ingredients) == 0 {
		return &ValidationError{Message: "at least one ingredient is required"}
	}
	seenIngredients := make(map[uuid.UUID]struct{}, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if _, dup := seenIngredients[item.ID]; dup {
			return &ValidationError{Message: "ingredients must be unique"}
		}
		seenIngredients[item.ID] = struct{}{}
		if item.Amount < models.MinIngredientAmount || item.Amount > models.MaxIngredientAmount {
			return &ValidationError{Message: fmt.Sprintf(
				"ingredient amount must be between %d and %d",
				models.MinIngredientAmount, models.MaxIngredientAmount)}
		}
	}
	return nil
}
