package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(4242)
	require.NoError(t, err)

	id, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)
}

func TestParseJWTRejects(t *testing.T) {
	SetJWTSecret("test-secret")

	sign := func(secret string, claims jwt.MapClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	future := time.Now().Add(time.Hour).Unix()

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign("other", jwt.MapClaims{"user_id": 1, "exp": future}),
		"expired":      sign("test-secret", jwt.MapClaims{"user_id": 1, "exp": time.Now().Add(-time.Hour).Unix()}),
		"no expiry":    sign("test-secret", jwt.MapClaims{"user_id": 1}),
		"not yet":      sign("test-secret", jwt.MapClaims{"user_id": 1, "exp": future, "nbf": future}),
		"no subject":   sign("test-secret", jwt.MapClaims{"exp": future}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJWT(token)
			assert.Error(t, err)
		})
	}
}
