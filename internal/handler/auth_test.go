package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The full session lifecycle: signup, login, authenticated request,
// refresh, logout, and rejection once the token is gone.
func TestSessionLifecycle(t *testing.T) {
	api := newTestAPI(t)

	// Signup.
	rec := apiRequest(t, api, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "a long password",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created["id"])
	assert.NotContains(t, created, "passwordHash", "hash must never leave the server")
	assert.NotContains(t, created, "password")

	// Login: access token in the body, refresh token in an HttpOnly cookie.
	rec = apiRequest(t, api, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "a long password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Access string `json:"access"`
	}
	decodeBody(t, rec, &login)
	require.NotEmpty(t, login.Access)

	cookies := rec.Result().Cookies()
	var refreshCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == "refresh" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie, "login must set the refresh cookie")
	assert.True(t, refreshCookie.HttpOnly)
	assert.True(t, refreshCookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, refreshCookie.SameSite)
	assert.NotEmpty(t, refreshCookie.Value)

	// The access token authenticates requests.
	rec = apiRequest(t, api, http.MethodGet, "/api/auth/current", nil, login.Access)
	require.Equal(t, http.StatusOK, rec.Code)

	var current map[string]any
	decodeBody(t, rec, &current)
	assert.Equal(t, "alice@example.com", current["email"])

	// The refresh cookie mints a new access token.
	rec = apiRequest(t, api, http.MethodGet, "/api/auth/refresh", nil, "", refreshCookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var refreshed struct {
		Access string `json:"access"`
	}
	decodeBody(t, rec, &refreshed)
	require.NotEmpty(t, refreshed.Access)

	rec = apiRequest(t, api, http.MethodGet, "/api/auth/current", nil, refreshed.Access)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Logout clears the cookie.
	rec = apiRequest(t, api, http.MethodPost, "/api/auth/logout", nil, login.Access)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh" {
			cleared = c
		}
	}
	require.NotNil(t, cleared, "logout must clear the refresh cookie")
	assert.Less(t, cleared.MaxAge, 0)
	assert.Empty(t, cleared.Value)

	// Anonymous requests stay rejected.
	rec = apiRequest(t, api, http.MethodGet, "/api/auth/current", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignup_ValidationErrorsAreFieldKeyed(t *testing.T) {
	api := newTestAPI(t)

	rec := apiRequest(t, api, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "",
		"email":    "not-an-email",
		"password": "short",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fields map[string]string
	decodeBody(t, rec, &fields)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestSignup_DuplicateEmailIs400(t *testing.T) {
	api := newTestAPI(t)

	signupAndLogin(t, api, "alice", "alice@example.com")

	rec := apiRequest(t, api, http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "a long password",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fields map[string]string
	decodeBody(t, rec, &fields)
	assert.Equal(t, "email already exists", fields["email"])
}

func TestLogin_BadCredentials(t *testing.T) {
	api := newTestAPI(t)

	signupAndLogin(t, api, "alice", "alice@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{"wrong password", "alice@example.com"},
		{"unknown email", "nobody@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := apiRequest(t, api, http.MethodPost, "/api/auth/login", map[string]string{
				"email":    tt.email,
				"password": "wrong password",
			}, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var fields map[string]string
			decodeBody(t, rec, &fields)
			assert.Equal(t,
				"no active account found with the provided credentials",
				fields["credentials"])
		})
	}
}

func TestRefresh_MissingTokenIsServerError(t *testing.T) {
	api := newTestAPI(t)

	rec := apiRequest(t, api, http.MethodGet, "/api/auth/refresh", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRefresh_GarbageTokenRejected(t *testing.T) {
	api := newTestAPI(t)

	rec := apiRequest(t, api, http.MethodGet, "/api/auth/refresh", nil, "", &http.Cookie{
		Name:  "refresh",
		Value: "not-a-jwt",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// The Authorization scheme is case-insensitive on refresh, same as on
// protected routes.
func TestRefresh_LowercaseBearerScheme(t *testing.T) {
	api := newTestAPI(t)

	signupAndLogin(t, api, "alice", "alice@example.com")

	rec := apiRequest(t, api, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "a long password",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var refreshToken string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh" {
			refreshToken = c.Value
		}
	}
	require.NotEmpty(t, refreshToken)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.Header.Set("Authorization", "bearer "+refreshToken)
	got := httptest.NewRecorder()
	api.ServeHTTP(got, req)

	require.Equal(t, http.StatusOK, got.Code, got.Body.String())

	var refreshed struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.NewDecoder(got.Body).Decode(&refreshed))
	assert.NotEmpty(t, refreshed.Access)
}

// An access token in the refresh slot must not mint new access tokens.
func TestRefresh_AccessTokenRejected(t *testing.T) {
	api := newTestAPI(t)

	access := signupAndLogin(t, api, "alice", "alice@example.com")

	rec := apiRequest(t, api, http.MethodGet, "/api/auth/refresh", nil, "", &http.Cookie{
		Name:  "refresh",
		Value: access,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
