package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZ85RoundTrip(t *testing.T) {
	src := []byte{0x86, 0x4F, 0xD2, 0x6F, 0xB5, 0x59, 0xF7, 0x5B}
	encoded := Z85Encode(src)
	assert.Len(t, encoded, 10)

	decoded, err := Z85Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, src, decoded)
}

func TestZ85RejectsBadLength(t *testing.T) {
	_, err := Z85Decode("abc")
	assert.Error(t, err)
}

func TestKeyPairCacheIsStablePerKernel(t *testing.T) {
	cache := newKeyPairCache()

	a, err := cache.Get("kernel-a")
	require.NoError(t, err)
	again, err := cache.Get("kernel-a")
	require.NoError(t, err)
	assert.Equal(t, a, again)

	b, err := cache.Get("kernel-b")
	require.NoError(t, err)
	assert.NotEqual(t, a.Public, b.Public)

	cache.Forget("kernel-a")
	fresh, err := cache.Get("kernel-a")
	require.NoError(t, err)
	assert.NotEqual(t, a.Public, fresh.Public)
}
