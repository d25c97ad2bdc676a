package bcrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbcrypt "golang.org/x/crypto/bcrypt"
)

func TestHashCompare(t *testing.T) {
	h := New(xbcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	ok, err := h.Compare(hash, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_IsSalted(t *testing.T) {
	h := New(xbcrypt.MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCompare_CorruptHash(t *testing.T) {
	_, err := New(xbcrypt.MinCost).Compare("not-a-hash", "x")
	assert.Error(t, err)
}

func TestNew_ClampsInvalidCost(t *testing.T) {
	assert.Equal(t, xbcrypt.DefaultCost, New(100).cost)
}
