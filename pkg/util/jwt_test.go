package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("s3cret", "ops@example.com", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, "confession-api", claims.Issuer)
}

func TestValidateJWT_Rejects(t *testing.T) {
	good, err := GenerateJWT("s3cret", "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateJWT("s3cret", "ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWT("other", good)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = ValidateJWT("s3cret", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = ValidateJWT("", good)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = GenerateJWT("", "ops", RoleAdmin, time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = ValidateJWT("s3cret", "not.a.token")
	assert.Error(t, err)
}
