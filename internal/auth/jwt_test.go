package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator() *JWTAuthenticator {
	return NewJWTAuthenticator(
		"access-secret", "refresh-secret",
		"shop", "shop",
		15*time.Minute, 24*time.Hour,
	)
}

func TestGenerateAndValidateTokens(t *testing.T) {
	a := newTestAuthenticator()

	access, refresh, err := a.GenerateTokens(7, RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	tok, err := a.ValidateAccessToken(access)
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.EqualValues(t, 7, claims["sub"])
	assert.Equal(t, RoleAdmin, claims["role"])

	rtok, err := a.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	require.True(t, rtok.Valid)
}

func TestValidateRejectsCrossSecretTokens(t *testing.T) {
	a := newTestAuthenticator()

	access, refresh, err := a.GenerateTokens(7, RoleCustomer)
	require.NoError(t, err)

	// Access secret must not validate refresh tokens and vice versa.
	_, err = a.ValidateAccessToken(refresh)
	assert.Error(t, err)
	_, err = a.ValidateRefreshToken(access)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a := NewJWTAuthenticator(
		"access-secret", "refresh-secret",
		"shop", "shop",
		-time.Minute, -time.Minute,
	)

	access, _, err := a.GenerateTokens(1, RoleCustomer)
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	a := newTestAuthenticator()
	other := NewJWTAuthenticator("another-secret", "another-refresh", "shop", "shop", time.Hour, time.Hour)

	access, _, err := other.GenerateTokens(1, RoleCustomer)
	require.NoError(t, err)

	_, err = a.ValidateAccessToken(access)
	assert.Error(t, err)
}
