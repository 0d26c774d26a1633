package bloomgo

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCuckooFilter_InsertLookupRemove(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(10_000).FalsePositiveRate(0.01).Build()
	require.NoError(t, err)
	defer f.Close()

	rng := newTestRand()
	items := randomItems(t, rng, 10_000)

	for _, item := range items {
		require.True(t, f.Put(item), "put %q", item)
	}
	assert.Equal(t, int64(len(items)), f.Count())

	for _, item := range items {
		require.True(t, f.MightContain(item), "lookup %q", item)
	}

	for _, item := range items {
		// Removal of an item whose fingerprint collided with another
		// insertion may fail; the count below bounds the damage.
		f.Remove(item)
	}

	stillContained := 0
	for _, item := range items {
		if f.MightContain(item) {
			stillContained++
		}
	}
	assert.LessOrEqual(t, float64(stillContained)/float64(len(items)), 0.01,
		"%d items still contained after removal", stillContained)
}

func TestCuckooFilter_RemoveMissing(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(100).Build()
	require.NoError(t, err)
	defer f.Close()

	removed, err := f.Remove([]byte("never inserted"))
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, f.Count())
}

func TestCuckooFilter_RemoveDecrementsCount(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(100).Build()
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.Put([]byte("a")))
	require.True(t, f.Put([]byte("b")))
	assert.Equal(t, int64(2), f.Count())

	removed, err := f.Remove([]byte("a"))
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, int64(1), f.Count())
	assert.False(t, f.MightContain([]byte("a")))
	assert.True(t, f.MightContain([]byte("b")))
}

func TestCuckooFilter_AltIndexInvolution(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(10_000).FalsePositiveRate(0.01).Build()
	require.NoError(t, err)
	defer f.Close()

	rng := rand.New(rand.NewPCG(37, 0))
	tagMask := (uint64(1) << f.bitsPerTag) - 1
	for trial := 0; trial < 10_000; trial++ {
		b := rng.Int64N(f.numBuckets)
		tag := rng.Uint64()&tagMask + 1 // never the empty sentinel
		alt := f.altIndex(b, tag)
		require.GreaterOrEqual(t, alt, int64(0))
		require.Less(t, alt, f.numBuckets)
		require.Equal(t, b, f.altIndex(alt, tag), "bucket %d tag %#x", b, tag)
	}
}

func TestCuckooFilter_FingerprintNeverZero(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(100).Build()
	require.NoError(t, err)
	defer f.Close()

	for hash := uint64(0); hash < 1<<16; hash += 97 {
		assert.NotZero(t, f.fingerprint(hash))
	}
}

func TestCuckooFilter_ReportsFullWhenOverloaded(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(64).Build()
	require.NoError(t, err)
	defer f.Close()

	rng := newTestRand()
	items := randomItems(t, rng, 2000)

	failures := 0
	for _, item := range items {
		if !f.Put(item) {
			failures++
		}
	}
	assert.Greater(t, failures, 0, "overfilled filter never reported capacity exhaustion")
	// Count only tracks accepted items.
	assert.Equal(t, int64(len(items)-failures), f.Count())
}

func TestCuckooFilter_MergeUnsupported(t *testing.T) {
	a, err := Cuckoo().ExpectedItems(100).Build()
	require.NoError(t, err)
	defer a.Close()
	b, err := Cuckoo().ExpectedItems(100).Build()
	require.NoError(t, err)
	defer b.Close()

	assert.ErrorIs(t, a.MergeInPlace(b), ErrUnsupportedOperation)
}

func TestCuckooFilter_Clear(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(100).Build()
	require.NoError(t, err)
	defer f.Close()

	f.Put([]byte("gone"))
	f.Clear()
	assert.False(t, f.MightContain([]byte("gone")))
	assert.Zero(t, f.Count())
	assert.Zero(t, f.ExpectedFpp())
}

func TestCuckooFilter_Sizing(t *testing.T) {
	for _, tc := range []struct {
		fpp       float64
		perBucket int
	}{
		{0.1, 2},
		{0.01, 2},
		{0.002, 4},
		{0.0001, 4},
		{0.00001, 8},
		{0.000001, 8},
	} {
		assert.Equal(t, tc.perBucket, optimalTagsPerBucket(tc.fpp), "fpp=%v", tc.fpp)
	}

	// Bucket counts are always even so the alternate-index mapping stays
	// an involution.
	for _, n := range []int64{1, 10, 1000, 10_000, 12_345} {
		for _, b := range []int{2, 4, 8} {
			assert.Zero(t, optimalNumBuckets(n, b)%2)
		}
	}
}

func TestCuckooFilter_ExpectedFppGrowsWithLoad(t *testing.T) {
	f, err := Cuckoo().ExpectedItems(10_000).FalsePositiveRate(0.01).Build()
	require.NoError(t, err)
	defer f.Close()

	assert.Zero(t, f.ExpectedFpp())

	rng := newTestRand()
	for _, item := range randomItems(t, rng, 5000) {
		f.Put(item)
	}
	fpp := f.ExpectedFpp()
	assert.Greater(t, fpp, 0.0)
	assert.Less(t, fpp, 0.02)
}
