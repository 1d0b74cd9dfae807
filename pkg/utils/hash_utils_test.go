package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	// bcrypt 每次加盐，两次哈希结果不同但都能通过校验
	hash2, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)

	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.True(t, CheckPasswordHash("secret123", hash2))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.False(t, CheckPasswordHash("secret123", "not-a-hash"))
}
