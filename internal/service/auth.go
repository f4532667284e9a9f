package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/types"
)

const tokenTTL = 24 * time.Hour

// AuthService issues and validates JWT bearer tokens. Logged-out tokens are
// denylisted in Redis until they expire on their own.
type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		redis:     redisClient,
		jwtSecret: jwtSecret,
	}
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: user.Username})
}

// Logout denylists the token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, denylistKey(tokenString), "1", tokenTTL).Err()
}

func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  claims.UserID.String(),
		"username": claims.Username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	})
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	if s.redis != nil {
		exists, err := s.redis.Exists(context.Background(), denylistKey(tokenString)).Result()
		if err == nil && exists > 0 {
			return nil, errors.New("token has been revoked")
		}
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("invalid user id in token")
	}

	username, _ := claims["username"].(string)
	return &types.TokenClaims{UserID: userID, Username: username}, nil
}

// GetUser returns one user profile with is_subscribed relative to the viewer.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := UserToResponse(&user)
	if viewer != nil {
		resp.IsSubscribed = isSubscribed(s.db.WithContext(ctx), *viewer, user.ID)
	}
	return &resp, nil
}

// ListUsers returns profiles newest-last, paginated.
func (s *AuthService) ListUsers(ctx context.Context, viewer *uuid.UUID, page, limit int) (*types.Page[types.UserResponse], error) {
	var users []models.User
	var count int64

	q := s.db.WithContext(ctx).Model(&models.User{})
	if err := q.Count(&count).Error; err != nil {
		return nil, err
	}
	if err := q.Order("created_at ASC").Scopes(Paginate(page, limit)).Find(&users).Error; err != nil {
		return nil, err
	}

	results := make([]types.UserResponse, 0, len(users))
	for i := range users {
		resp := UserToResponse(&users[i])
		if viewer != nil {
			resp.IsSubscribed = isSubscribed(s.db.WithContext(ctx), *viewer, users[i].ID)
		}
		results = append(results, resp)
	}
	return &types.Page[types.UserResponse]{Count: count, Results: results}, nil
}

// UserToResponse maps a user row to its public profile shape.
func UserToResponse(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func isSubscribed(db *gorm.DB, follower, author uuid.UUID) bool {
	var n int64
	db.Model(&models.Follow{}).
		Where("follower_id = ? AND author_id = ?", follower, author).
		Count(&n)
	return n > 0
}

func denylistKey(token string) string {
	return fmt.Sprintf("auth:denylist:%s", token)
}
