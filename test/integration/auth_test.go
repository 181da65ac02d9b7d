package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repo "github.com/packvote/api/internal/adapters/repository/postgres"
	"github.com/packvote/api/internal/core/domain"
)

type authFlowResponse struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int    `json:"expires_in"`
	} `json:"tokens"`
}

func TestRegisterLoginFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// 1. Register
	var registered authFlowResponse
	resp := app.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "ana@example.com",
		"name":     "Ana",
		"password": "s3cret-pass",
	}, &registered)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ana@example.com", registered.User.Email)
	assert.NotEmpty(t, registered.Tokens.AccessToken)
	assert.NotEmpty(t, registered.Tokens.RefreshToken)
	assert.Equal(t, "bearer", registered.Tokens.TokenType)

	// 2. Duplicate email is rejected
	resp = app.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "ana@example.com",
		"name":     "Ana Again",
		"password": "another-pass",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	// 3. Login with the right password
	var loggedIn authFlowResponse
	resp = app.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "s3cret-pass",
	}, &loggedIn)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	// 4. Wrong password
	resp = app.doJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "ana@example.com",
		"password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// 5. Access token works against a protected endpoint
	var me struct {
		Email string `json:"email"`
	}
	resp = app.doJSON(t, "GET", "/api/users/me", loggedIn.Tokens.AccessToken, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ana@example.com", me.Email)
}

func TestRefreshAndLogout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	var registered authFlowResponse
	resp := app.doJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"email":    "bob@example.com",
		"name":     "Bob",
		"password": "s3cret-pass",
	}, &registered)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// 1. Refresh issues a fresh access token
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	resp = app.doJSON(t, "POST", "/api/auth/refresh", "", map[string]string{
		"refresh_token": registered.Tokens.RefreshToken,
	}, &refreshed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, refreshed.AccessToken)

	// 2. Logout revokes the refresh token
	resp = app.doJSON(t, "POST", "/api/auth/logout", "", map[string]string{
		"refresh_token": registered.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.doJSON(t, "POST", "/api/auth/refresh", "", map[string]string{
		"refresh_token": registered.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// 3. Garbage refresh tokens are rejected
	resp = app.doJSON(t, "POST", "/api/auth/refresh", "", map[string]string{
		"refresh_token": "garbage",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDuplicateEmailHitsUniqueConstraint(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	// Two concurrent registrations can both pass the service's existence
	// check; the second insert must then surface the unique violation as
	// ErrEmailTaken rather than a raw database error.
	userRepo := repo.NewUserRepository(app.DB)
	ctx := context.Background()

	first := &domain.User{Email: "carol@example.com", Name: "Carol", PasswordHash: "hash", IsActive: true}
	require.NoError(t, userRepo.Create(ctx, first))

	second := &domain.User{Email: "carol@example.com", Name: "Carol Again", PasswordHash: "hash", IsActive: true}
	err := userRepo.Create(ctx, second)
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	resp := app.doJSON(t, "GET", "/api/trips", "", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = app.doJSON(t, "GET", "/api/users/me", "not-a-jwt", nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
