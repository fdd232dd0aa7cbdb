package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher()

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotContains(t, hash, "correct horse")

	assert.NoError(t, hasher.Compare(hash, "correct horse battery staple"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong password"), ErrWrongPassword)
}

func TestBcryptHasherUniqueSalts(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher()

	first, err := hasher.Hash("password123")
	require.NoError(t, err)
	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasherCorruptHash(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher()

	err := hasher.Compare("not-a-bcrypt-hash", "password123")
	assert.Error(t, err)
}

func TestNewResetToken(t *testing.T) {
	t.Parallel()

	raw, hash, expires, err := NewResetToken()
	require.NoError(t, err)

	// 32 random bytes, hex encoded.
	assert.Len(t, raw, 64)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, raw, hash)
	assert.Equal(t, hash, HashResetToken(raw))
	assert.False(t, expires.IsZero())

	// Tokens are single-use and unpredictable.
	raw2, _, _, err := NewResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)

	assert.False(t, strings.ContainsAny(raw, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
}

func TestHashResetTokenDeterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HashResetToken("abc"), HashResetToken("abc"))
	assert.NotEqual(t, HashResetToken("abc"), HashResetToken("abd"))
}
