package bitvec

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumWords(t *testing.T) {
	for _, tc := range []struct {
		bits  int64
		words int64
	}{
		{1, 1},
		{64, 1},
		{65, 2},
		{128, 2},
		{129, 3},
	} {
		n, err := NumWords(tc.bits)
		require.NoError(t, err)
		assert.Equal(t, tc.words, n, "bits=%d", tc.bits)
	}

	_, err := NumWords(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = NumWords(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestHeap_SetUnsetGet(t *testing.T) {
	v, err := NewHeap(200)
	require.NoError(t, err)
	defer v.Close()

	assert.Equal(t, int64(200), v.BitSize())
	assert.Equal(t, int64(0), v.Cardinality())

	// Set returns true only on the 0->1 transition.
	assert.True(t, v.Set(1))
	assert.False(t, v.Set(1))
	assert.True(t, v.Set(2))
	assert.True(t, v.Set(199))
	assert.Equal(t, int64(3), v.Cardinality())

	assert.True(t, v.Get(1))
	assert.True(t, v.Get(2))
	assert.False(t, v.Get(3))

	// Unset is symmetric.
	assert.True(t, v.Unset(1))
	assert.False(t, v.Unset(1))
	assert.False(t, v.Get(1))
	assert.Equal(t, int64(2), v.Cardinality())
}

func TestHeap_CardinalityMatchesPopcount(t *testing.T) {
	v, err := NewHeap(512)
	require.NoError(t, err)
	defer v.Close()

	for i := int64(0); i < 512; i += 3 {
		v.Set(i)
	}
	for i := int64(0); i < 512; i += 9 {
		v.Unset(i)
	}

	var popcount int64
	for _, w := range v.data {
		popcount += int64(bits.OnesCount64(w))
	}
	assert.Equal(t, popcount, v.Cardinality())
}

func TestHeap_Clear(t *testing.T) {
	v, err := NewHeap(128)
	require.NoError(t, err)
	defer v.Close()

	v.Set(0)
	v.Set(127)
	v.Clear()

	assert.Equal(t, int64(0), v.Cardinality())
	assert.False(t, v.Get(0))
	assert.False(t, v.Get(127))
}

func TestHeap_PutAll(t *testing.T) {
	a, err := NewHeap(128)
	require.NoError(t, err)
	b, err := NewHeap(128)
	require.NoError(t, err)

	a.Set(1)
	a.Set(64)
	b.Set(64)
	b.Set(100)

	require.NoError(t, a.PutAll(b))
	assert.True(t, a.Get(1))
	assert.True(t, a.Get(64))
	assert.True(t, a.Get(100))
	assert.Equal(t, int64(3), a.Cardinality())

	// Bitwise OR is idempotent.
	require.NoError(t, a.PutAll(b))
	assert.Equal(t, int64(3), a.Cardinality())
}

func TestHeap_PutAll_Incompatible(t *testing.T) {
	a, err := NewHeap(128)
	require.NoError(t, err)
	short, err := NewHeap(64)
	require.NoError(t, err)
	off, err := NewOffHeap(128)
	require.NoError(t, err)
	defer off.Close()

	assert.ErrorIs(t, a.PutAll(short), ErrIncompatible)
	assert.ErrorIs(t, a.PutAll(off), ErrIncompatible)
	assert.ErrorIs(t, a.PutAll(nil), ErrIncompatible)
	assert.ErrorIs(t, a.PutAll((*Heap)(nil)), ErrIncompatible)
}

func TestNewHeap_InvalidSize(t *testing.T) {
	_, err := NewHeap(0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}
