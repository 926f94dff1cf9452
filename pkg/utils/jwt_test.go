package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "ai-content-gateway")

	token, err := m.GenerateToken("acc-1", "cluster-1", "user@example.com", "user", time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.AccountID)
	assert.Equal(t, "cluster-1", claims.ClusterID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "ai-content-gateway", claims.Issuer)
}

func TestJWTWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a", "ai-content-gateway")
	token, err := m.GenerateToken("acc-1", "", "user@example.com", "user", time.Hour)
	require.NoError(t, err)

	other := NewJWTManager("secret-b", "ai-content-gateway")
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	m := NewJWTManager("test-secret", "ai-content-gateway")
	token, err := m.GenerateToken("acc-1", "", "user@example.com", "user", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.Error(t, err)
}
