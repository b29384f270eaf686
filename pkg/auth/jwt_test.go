package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/pkg/auth"
)

func TestGenerateAndValidate(t *testing.T) {
	config.Set("JWT_SECRET", "test-secret")

	token, err := auth.GenerateToken("ops-dashboard", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "ops-dashboard", claims.Subject)

	role, err := auth.RoleFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}

func TestGenerateRequiresRole(t *testing.T) {
	_, err := auth.GenerateToken("x", "", time.Hour)
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	config.Set("JWT_SECRET", "one")
	token, err := auth.GenerateToken("x", "user", time.Hour)
	require.NoError(t, err)

	config.Set("JWT_SECRET", "two")
	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateRejectsExpired(t *testing.T) {
	config.Set("JWT_SECRET", "test-secret")

	claims := auth.Claims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	config.Set("JWT_SECRET", "test-secret")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{Role: "admin"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.Error(t, err)
}
