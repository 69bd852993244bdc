package jwthelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	key := []byte("test-signing-key")

	raw, err := GenerateToken(key, "user-42", "go-test")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := ParseToken(key, raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "go-test", claims.UserAgent)
}

func TestParseTokenRejectsWrongKey(t *testing.T) {
	raw, err := GenerateToken([]byte("key-one"), "user-42", "go-test")
	require.NoError(t, err)

	_, err = ParseToken([]byte("key-two"), raw)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken([]byte("key"), "not-a-jwt")
	assert.Error(t, err)
}
