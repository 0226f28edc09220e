package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	v, err := New("correct horse")
	require.NoError(t, err)

	sealed, err := v.Seal("ghp_secret")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "ghp_secret")

	plain, err := v.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", plain)

	again, err := v.Seal("ghp_secret")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")
}

func TestOpenWithWrongKey(t *testing.T) {
	a, err := New("one")
	require.NoError(t, err)
	b, err := New("two")
	require.NoError(t, err)

	sealed, err := a.Seal("token")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)

	_, err = a.Open("not base64 !!")
	assert.Error(t, err)

	_, err = a.Open("")
	assert.Error(t, err)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrNoKey)
}
