package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret123456")

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)
	assert.NotEqual(t, "Secret123456", hash)
}

func TestHashPassword_DifferentSalts(t *testing.T) {
	hash1, err := HashPassword("Secret123456")
	require.NoError(t, err)
	hash2, err := HashPassword("Secret123456")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "two hashes of the same password must not match")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123456")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("Secret123456", hash))
	assert.False(t, VerifyPassword("WrongPassword", hash))
	assert.False(t, VerifyPassword("", hash))
	assert.False(t, VerifyPassword("Secret123456", "not-a-hash"))
}
