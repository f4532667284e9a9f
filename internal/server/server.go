package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// New wires services and handlers and builds the server. s3Config may be nil,
// in which case submitted images are ignored.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, s3Config *config.S3Config) *Server {
	authService := service.NewAuthService(db, redisClient, cfg.JWTSecret)
	followService := service.NewFollowService(db)
	membershipService := service.NewMembershipService(db)
	shoppingListService := service.NewShoppingListService(db)
	catalogService := service.NewCatalogService(db)

	var images service.ImageStore
	if s3Config != nil {
		images = service.NewImageService(s3Config)
	}
	recipeService := service.NewRecipeService(db, images)

	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewUserHandler(authService, followService),
		api.NewRecipeHandler(recipeService, membershipService, shoppingListService, authService),
		api.NewCatalogHandler(catalogService),
	)

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
