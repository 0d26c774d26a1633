package bloomgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStableFilter_Accuracy(t *testing.T) {
	f, err := Stable().ExpectedItems(10_000).FalsePositiveRate(0.01).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer f.Close()

	rng := newTestRand()
	items := randomItems(t, rng, 100_000)
	inserted, probes := items[:10_000], items[10_000:]

	for _, item := range inserted {
		f.Put(item)
	}

	falsePositives := 0
	for _, item := range probes {
		if f.MightContain(item) {
			falsePositives++
		}
	}
	rate := float64(falsePositives) / float64(len(probes))
	assert.LessOrEqual(t, rate, 0.02, "measured false-positive rate %f", rate)
}

func TestStableFilter_PutSaturatesTargets(t *testing.T) {
	f, err := Stable().ExpectedItems(1000).FalsePositiveRate(0.01).BitsPerBucket(4).Build()
	require.NoError(t, err)
	defer f.Close()

	item := []byte("streamed")
	require.True(t, f.Put(item))

	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)
	for _, h := range hashes {
		idx := int64(h % uint64(f.numBuckets))
		assert.Equal(t, f.maxBucketValue(), f.buckets.ReadTag(idx, 0))
	}
	assert.True(t, f.MightContain(item))
}

func TestStableFilter_DecrementTouchesAtMostP(t *testing.T) {
	f, err := Stable().ExpectedItems(1000).FalsePositiveRate(0.01).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer f.Close()

	rng := newTestRand()
	for _, item := range randomItems(t, rng, 200) {
		f.Put(item)
	}

	before := make([]uint64, f.numBuckets)
	for i := int64(0); i < f.numBuckets; i++ {
		before[i] = f.buckets.ReadTag(i, 0)
	}

	f.Put([]byte("one more"))

	decremented := int64(0)
	for i := int64(0); i < f.numBuckets; i++ {
		after := f.buckets.ReadTag(i, 0)
		if after < before[i] {
			require.Equal(t, before[i]-1, after, "bucket %d dropped by more than one", i)
			decremented++
		}
	}
	assert.LessOrEqual(t, decremented, f.decrements)
}

func TestStableFilter_RemoveUnsupported(t *testing.T) {
	f, err := Stable().ExpectedItems(100).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Remove([]byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestStableFilter_Merge(t *testing.T) {
	a, err := Stable().ExpectedItems(1000).FalsePositiveRate(0.01).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer a.Close()
	b, err := Stable().ExpectedItems(1000).FalsePositiveRate(0.01).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer b.Close()

	b.Put([]byte("from b"))
	require.NoError(t, a.MergeInPlace(b))
	assert.True(t, a.MightContain([]byte("from b")))
}

func TestStableFilter_MergeIncompatible(t *testing.T) {
	a, err := Stable().ExpectedItems(1000).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer a.Close()
	small, err := Stable().ExpectedItems(100).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer small.Close()

	assert.ErrorIs(t, a.MergeInPlace(small), ErrIncompatibleMerge)
	assert.ErrorIs(t, a.MergeInPlace(nil), ErrIncompatibleMerge)
}

func TestStableFilter_ExpectedFpp(t *testing.T) {
	f, err := Stable().ExpectedItems(10_000).FalsePositiveRate(0.01).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer f.Close()

	fpp := f.ExpectedFpp()
	assert.Greater(t, fpp, 0.0)
	assert.Less(t, fpp, 1.0)
}

func TestStableFilter_Clear(t *testing.T) {
	f, err := Stable().ExpectedItems(100).BitsPerBucket(8).Build()
	require.NoError(t, err)
	defer f.Close()

	f.Put([]byte("gone"))
	f.Clear()
	assert.False(t, f.MightContain([]byte("gone")))
}
