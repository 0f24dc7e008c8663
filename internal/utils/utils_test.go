package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := "test-secret"
	access, err := NewAccessToken(secret, "u1@conf.example", "ATTENDEE", 15)
	require.NoError(t, err)
	require.NotEmpty(t, access.Token)

	parsed, err := jwt.Parse(access.Token, func(tok *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "u1@conf.example", claims["sub"])
	require.Equal(t, "ATTENDEE", claims["role"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	access, err := NewAccessToken("secret-a", "u1@conf.example", "ATTENDEE", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(access.Token, func(tok *jwt.Token) (any, error) {
		return []byte("secret-b"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.Error(t, err)
}

func TestAccessCodeHashing(t *testing.T) {
	hash, err := HashAccessCode("wk-7pq-f2m", bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, VerifyAccessCode(hash, "wk-7pq-f2m"))
	require.False(t, VerifyAccessCode(hash, "wk-7pq-f2n"))
	require.False(t, VerifyAccessCode("not-a-hash", "wk-7pq-f2m"))
}
