package api_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefeed/backend/internal/types"
)

func TestRegisterAndLoginFlow(t *testing.T) {
	env := setupTestEnv(t)

	w := env.performRequest(t, http.MethodPost, "/api/auth/register", "", types.RegisterRequest{
		Email:     "anna@example.com",
		Username:  "anna",
		FirstName: "Anna",
		LastName:  "K",
		Password:  "correct horse battery staple",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "anna", body["username"])
	assert.NotContains(t, body, "password")

	w = env.performRequest(t, http.MethodPost, "/api/auth/login", "", types.LoginRequest{
		Email:    "anna@example.com",
		Password: "correct horse battery staple",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, ok := decodeBody(t, w)["auth_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)

	w = env.performRequest(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anna", decodeBody(t, w)["username"])
}

func TestRegisterDuplicateConflicts(t *testing.T) {
	env := setupTestEnv(t)

	req := types.RegisterRequest{
		Email:     "anna@example.com",
		Username:  "anna",
		FirstName: "Anna",
		LastName:  "K",
		Password:  "correct horse battery staple",
	}
	w := env.performRequest(t, http.MethodPost, "/api/auth/register", "", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.performRequest(t, http.MethodPost, "/api/auth/register", "", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginBadCredentials(t *testing.T) {
	env := setupTestEnv(t)

	w := env.performRequest(t, http.MethodPost, "/api/auth/login", "", types.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeRequiresAuth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.performRequest(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubscribeLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	authorID, _ := env.createUserAndToken(t, "author")
	followerID, token := env.createUserAndToken(t, "follower")
	env.createRecipe(t, authorID, "Borscht")

	path := "/api/users/" + authorID.String() + "/subscribe"

	w := env.performRequest(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["is_subscribed"])
	assert.EqualValues(t, 1, body["recipes_count"])

	w = env.performRequest(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Subscribing to yourself is a client error.
	w = env.performRequest(t, http.MethodPost, "/api/users/"+followerID.String()+"/subscribe", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.performRequest(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.performRequest(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribeUnknownUser(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.createUserAndToken(t, "follower")

	w := env.performRequest(t, http.MethodPost, "/api/users/"+uuid.NewString()+"/subscribe", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionsList(t *testing.T) {
	env := setupTestEnv(t)
	firstID, _ := env.createUserAndToken(t, "writer1")
	secondID, _ := env.createUserAndToken(t, "writer2")
	_, token := env.createUserAndToken(t, "reader")

	for _, authorID := range []uuid.UUID{firstID, secondID} {
		w := env.performRequest(t, http.MethodPost, "/api/users/"+authorID.String()+"/subscribe", token, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.performRequest(t, http.MethodGet, "/api/users/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])
	results, ok := body["results"].([]interface{})
	require.True(t, ok)
	assert.Len(t, results, 2)
}

func TestListUsersAnonymous(t *testing.T) {
	env := setupTestEnv(t)
	env.createUserAndToken(t, "anna")
	env.createUserAndToken(t, "boris")

	w := env.performRequest(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["count"])
}
