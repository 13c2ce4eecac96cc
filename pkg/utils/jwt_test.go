package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestSignAndValidateToken(t *testing.T) {
	token, err := SignToken(testSecret, "u1", "a@b.com", "Ann", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "Ann", claims.Name)
}

func TestValidateTokenRejects(t *testing.T) {
	expired, err := SignToken(testSecret, "u1", "a@b.com", "", -time.Minute)
	require.NoError(t, err)

	good, err := SignToken(testSecret, "u1", "a@b.com", "", time.Hour)
	require.NoError(t, err)

	noEmail, err := SignToken(testSecret, "u1", "", "", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(expired, testSecret)
	assert.Error(t, err)
	_, err = ValidateToken(good, "other-secret")
	assert.Error(t, err)
	_, err = ValidateToken(noEmail, testSecret)
	assert.Error(t, err)
	_, err = ValidateToken("not-a-token", testSecret)
	assert.Error(t, err)
}

func TestValidateTokenFallsBackToSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":   "u-sub",
		"email": "a@b.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	parsed, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-sub", parsed.UserID)
}
