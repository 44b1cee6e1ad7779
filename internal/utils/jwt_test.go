package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret"

func TestGenerateAndParseJWT(t *testing.T) {
	token, err := GenerateJWT(42, secret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseJWTExpired(t *testing.T) {
	token, err := GenerateJWT(42, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, secret)
	require.Error(t, err)
	// Expiry must be distinguishable from other parse failures
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseJWTMalformed(t *testing.T) {
	_, err := ParseJWT("definitely-not-a-jwt", secret)
	require.Error(t, err)
	assert.False(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(42, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseJWT(token, "some-other-secret")
	require.Error(t, err)
	assert.False(t, errors.Is(err, jwt.ErrTokenExpired))
}
