package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

// FollowService maintains the follower → author graph.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// Subscribe adds the edge and returns the author's enriched profile.
// recipesLimit caps the embedded recipe list; zero means unlimited.
func (s *FollowService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionResponse, error) {
	if followerID == authorID {
		return nil, ErrSelfFollow
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	edge := models.Follow{FollowerID: followerID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyFollowing
		}
		return nil, err
	}

	return s.buildSubscription(ctx, &author, recipesLimit)
}

func (s *FollowService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFollowing
	}
	return nil
}

// Subscriptions lists every author the user follows, oldest edge first, each
// enriched the same way as Subscribe's response.
func (s *FollowService) Subscriptions(ctx context.Context, followerID uuid.UUID, page, limit, recipesLimit int) (*types.Page[types.SubscriptionResponse], error) {
	base := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.follower_id = ?", followerID)

	var count int64
	if err := base.Count(&count).Error; err != nil {
		return nil, err
	}

	var authors []models.User
	if err := base.Order("follows.created_at ASC").Scopes(Paginate(page, limit)).Find(&authors).Error; err != nil {
		return nil, err
	}

	results := make([]types.SubscriptionResponse, 0, len(authors))
	for i := range authors {
		sub, err := s.buildSubscription(ctx, &authors[i], recipesLimit)
		if err != nil {
			return nil, err
		}
		results = append(results, *sub)
	}
	return &types.Page[types.SubscriptionResponse]{Count: count, Results: results}, nil
}

func (s *FollowService) buildSubscription(ctx context.Context, author *models.User, recipesLimit int) (*types.SubscriptionResponse, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Recipe{}).Where("author_id = ?", author.ID).Count(&count).Error; err != nil {
		return nil, err
	}

	query := db.Where("author_id = ?", author.ID).Order("created_at DESC")
	if recipesLimit > 0 {
		query = query.Limit(recipesLimit)
	}
	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}

	resp := types.SubscriptionResponse{
		UserResponse: UserToResponse(author),
		Recipes:      make([]types.RecipeSummary, 0, len(recipes)),
		RecipesCount: count,
	}
	resp.IsSubscribed = true
	for _, r := range recipes {
		resp.Recipes = append(resp.Recipes, types.RecipeSummary{
			ID:          r.ID,
			Name:        r.Name,
			Image:       r.ImageURL,
			CookingTime: r.CookingTime,
		})
	}
	return &resp, nil
}
