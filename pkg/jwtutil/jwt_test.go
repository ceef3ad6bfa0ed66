package jwtutil

import (
	"testing"

	"taskpoints-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1}
}

func TestGenerateAndValidateToken(t *testing.T) {
	Initialize(testConfig())

	token, err := GenerateToken("uid-1", "dev@acme.com")
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "dev@acme.com", claims.Email)
	assert.False(t, claims.ProfileComplete)
	assert.Empty(t, claims.CompanyID)
}

func TestGenerateTokenWithProfile(t *testing.T) {
	Initialize(testConfig())

	token, err := GenerateTokenWithProfile("uid-2", "mgr@acme.com", "acme", "Acme", "manager", false)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acme", claims.CompanyID)
	assert.Equal(t, "Acme", claims.CompanyName)
	assert.Equal(t, "manager", claims.Role)
	assert.True(t, claims.ProfileComplete)
	assert.False(t, claims.IsSuperAdmin)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	Initialize(testConfig())
	token, err := GenerateToken("uid-3", "x@acme.com")
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "another-key", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	Initialize(testConfig())
	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}
