package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_VerifiesOriginal(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected a bcrypt hash, got %q", hash)

	assert.True(t, CompareHashAndPassword(hash, "s3cret-password"))
	assert.False(t, CompareHashAndPassword(hash, "wrong-password"))
}

func TestHashPassword_SaltsEachCall(t *testing.T) {
	h1, err := HashPassword("same-input")
	require.NoError(t, err)
	h2, err := HashPassword("same-input")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestCompareHashAndPassword_BadHash(t *testing.T) {
	assert.False(t, CompareHashAndPassword("not-a-hash", "whatever"))
	assert.False(t, CompareHashAndPassword("", "whatever"))
}
