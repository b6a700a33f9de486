package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministicForSameSalt(t *testing.T) {
	h := Argon2{}
	salt, err := h.NewSalt()
	require.NoError(t, err)

	first := h.Hash("pw1!", salt)
	second := h.Hash("pw1!", salt)
	assert.Equal(t, first, second)
	assert.Len(t, first, 32)
}

func TestHashDiffersAcrossSaltsAndPasswords(t *testing.T) {
	h := Argon2{}
	saltA, err := h.NewSalt()
	require.NoError(t, err)
	saltB, err := h.NewSalt()
	require.NoError(t, err)

	assert.NotEqual(t, saltA, saltB)
	assert.NotEqual(t, h.Hash("pw1!", saltA), h.Hash("pw1!", saltB))
	assert.NotEqual(t, h.Hash("pw1!", saltA), h.Hash("pw2!", saltA))
}

func TestNewSaltSize(t *testing.T) {
	salt, err := Argon2{}.NewSalt()
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)
}
