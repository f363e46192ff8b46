package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateAndParse(t *testing.T) {
	// Arrange
	svc, err := NewJWTService("test-secret-key", 1)
	require.NoError(t, err)

	// Act
	token, err := svc.GenerateToken(42, "admin")
	require.NoError(t, err)
	claims, err := svc.ParseToken(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTService_ParseToken_WrongSecret(t *testing.T) {
	// Arrange
	issuer, err := NewJWTService("secret-one", 1)
	require.NoError(t, err)
	verifier, err := NewJWTService("secret-two", 1)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(42, "player")
	require.NoError(t, err)

	// Act
	_, err = verifier.ParseToken(token)

	// Assert
	assert.Error(t, err)
}

func TestJWTService_ParseToken_Garbage(t *testing.T) {
	svc, err := NewJWTService("test-secret-key", 1)
	require.NoError(t, err)

	_, err = svc.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestNewJWTService_EmptySecret(t *testing.T) {
	_, err := NewJWTService("", 1)
	assert.Error(t, err)
}
