package api

import (
	"net/http"
	"testing"
	"time"

	"bookverse/internal/domain"
	"bookverse/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidation(t *testing.T) {
	r, _ := newTestServer(t)

	cases := []struct {
		name string
		body gin.H
	}{
		{"missing fields", gin.H{"email": "a@b.com", "password": "password123", "confirmPassword": "password123"}},
		{"password mismatch", gin.H{"name": "A", "email": "a@b.com", "password": "password123", "confirmPassword": "password124"}},
		{"short password", gin.H{"name": "A", "email": "a@b.com", "password": "short", "confirmPassword": "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r, db := newTestServer(t)
	registerUser(t, r, "Alice", "alice@example.com", "password123")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", gin.H{
		"name":            "Alice Again",
		"email":           "alice@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// The stored credential is a hash, never the plaintext
	var user domain.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	assert.NotEqual(t, "password123", user.Password)
	assert.NotEmpty(t, user.Password)
}

func TestLoginWrongPassword(t *testing.T) {
	r, _ := newTestServer(t)
	registerUser(t, r, "Bob", "bob@example.com", "password123")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "bob@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	r, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLoginIssuesSessionForSameUser(t *testing.T) {
	r, db := newTestServer(t)
	ck, user := newSession(t, r, db, "carol@example.com")

	// The cookie must be inaccessible to page scripts
	assert.True(t, ck.HttpOnly)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)

	var profile struct {
		ID       uint   `json:"id"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	decodeBody(t, w, &profile)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "carol@example.com", profile.Email)
	assert.Empty(t, profile.Password) // Hash is never serialized
}

func TestSessionMissingToken(t *testing.T) {
	r, _ := newTestServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "Unauthorized! Please log in.", body["error"])
}

func TestSessionExpiredVsMalformed(t *testing.T) {
	r, db := newTestServer(t)
	_, user := newSession(t, r, db, "dave@example.com")

	expired, err := utils.GenerateJWT(user.ID, testSecret, -time.Minute)
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/api/auth/me", nil, &http.Cookie{Name: "auth_token", Value: expired})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "Session expired. Please log in again.", body["error"])

	w = doJSON(t, r, http.MethodGet, "/api/auth/me", nil, &http.Cookie{Name: "auth_token", Value: "not-a-token"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	decodeBody(t, w, &body)
	assert.Equal(t, "Invalid token. Please log in again.", body["error"])
}

func TestLogoutClearsCookie(t *testing.T) {
	r, db := newTestServer(t)
	ck, _ := newSession(t, r, db, "erin@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/auth/logout", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)

	for _, c := range w.Result().Cookies() {
		if c.Name == "auth_token" {
			assert.Empty(t, c.Value)
			assert.Negative(t, c.MaxAge)
			return
		}
	}
	t.Fatal("logout did not clear the session cookie")
}
