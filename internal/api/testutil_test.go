package api_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platefeed/backend/internal/api"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/middleware"
	"github.com/platefeed/backend/internal/models"
	"github.com/platefeed/backend/internal/router"
	"github.com/platefeed/backend/internal/service"
	"github.com/platefeed/backend/internal/types"
)

type testEnv struct {
	Router *gin.Engine
	DB     *gorm.DB
	Auth   *service.AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	authService := service.NewAuthService(db, nil, "test-secret")
	engine := router.SetupRouter(
		api.NewAuthHandler(authService),
		api.NewUserHandler(authService, service.NewFollowService(db)),
		api.NewRecipeHandler(
			service.NewRecipeService(db, nil),
			service.NewMembershipService(db),
			service.NewShoppingListService(db),
			authService,
		),
		api.NewCatalogHandler(service.NewCatalogService(db)),
	)

	return &testEnv{Router: engine, DB: db, Auth: authService}
}

// createUserAndToken registers a user directly and returns a valid token.
func (env *testEnv) createUserAndToken(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "x",
	}
	require.NoError(t, env.DB.Create(&user).Error)

	token, err := env.Auth.GenerateToken(&types.TokenClaims{UserID: user.ID, Username: username})
	require.NoError(t, err)
	return user.ID, token
}

func (env *testEnv) createRecipe(t *testing.T, authorID uuid.UUID, name string) *models.Recipe {
	t.Helper()
	recipe := models.Recipe{
		Name:        name,
		Text:        "test",
		CookingTime: 15,
		ImageURL:    "https://img.example.com/" + name + ".jpg",
		AuthorID:    authorID,
	}
	require.NoError(t, env.DB.Create(&recipe).Error)
	return &recipe
}

// performRequest makes an HTTP request against the test router. Token may be
// empty for anonymous calls.
func (env *testEnv) performRequest(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var _ middleware.TokenValidator = (*service.AuthService)(nil)
