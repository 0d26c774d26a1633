package bloomgo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilders_InvalidArguments(t *testing.T) {
	var errArg *ErrInvalidArgument

	t.Run("fpp out of range", func(t *testing.T) {
		for _, fpp := range []float64{0, -0.1, 1, 1.5} {
			_, err := Classic().ExpectedItems(100).FalsePositiveRate(fpp).Build()
			assert.ErrorAs(t, err, &errArg, "fpp=%v", fpp)
		}
	})

	t.Run("non-positive capacity", func(t *testing.T) {
		_, err := Classic().FalsePositiveRate(0.01).Build()
		assert.ErrorAs(t, err, &errArg)
		_, err = Cuckoo().ExpectedItems(-1).Build()
		assert.ErrorAs(t, err, &errArg)
	})

	t.Run("file with on-heap backing", func(t *testing.T) {
		_, err := Classic().ExpectedItems(100).FileMapped("/tmp/x.bloom").Build()
		assert.ErrorAs(t, err, &errArg)
	})

	t.Run("stable bits per bucket out of range", func(t *testing.T) {
		for _, bits := range []int{0, -1, 64, 100} {
			_, err := Stable().ExpectedItems(100).BitsPerBucket(bits).Build()
			assert.ErrorAs(t, err, &errArg, "bits=%d", bits)
		}
	})

	t.Run("cuckoo fpp below minimum", func(t *testing.T) {
		_, err := Cuckoo().ExpectedItems(100).FalsePositiveRate(1e-20).Build()
		assert.ErrorAs(t, err, &errArg)
	})

	t.Run("scalable fill ratio out of range", func(t *testing.T) {
		for _, p := range []float64{0, 1, 2} {
			_, err := Scalable().GrowthHint(100).FillRatio(p).Build()
			assert.ErrorAs(t, err, &errArg, "ratio=%v", p)
		}
	})
}

func TestBuilders_Immutable(t *testing.T) {
	base := Classic().ExpectedItems(100)
	tight := base.FalsePositiveRate(0.001)
	loose := base.FalsePositiveRate(0.1)

	a, err := tight.Build()
	require.NoError(t, err)
	defer a.Close()
	b, err := loose.Build()
	require.NoError(t, err)
	defer b.Close()

	assert.Greater(t, a.BitSize(), b.BitSize())
}

func TestBuilders_OffHeapBacking(t *testing.T) {
	f, err := Classic().ExpectedItems(1000).OffHeap(true).Build()
	require.NoError(t, err)

	f.Put([]byte("off-heap"))
	assert.True(t, f.MightContain([]byte("off-heap")))
	require.NoError(t, f.Close())
}

func TestBuilders_FileMappedPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classic.bloom")
	rng := newTestRand()
	items := randomItems(t, rng, 500)

	f, err := Classic().
		ExpectedItems(1000).
		FalsePositiveRate(0.01).
		OffHeap(true).
		FileMapped(path).
		Build()
	require.NoError(t, err)
	for _, item := range items {
		f.Put(item)
	}
	require.NoError(t, f.Close())

	// Rebuilding with identical parameters restores the stored state.
	restored, err := Classic().
		ExpectedItems(1000).
		FalsePositiveRate(0.01).
		OffHeap(true).
		FileMapped(path).
		Build()
	require.NoError(t, err)
	defer restored.Close()

	for _, item := range items {
		assert.True(t, restored.MightContain(item))
	}
}

func TestBuilders_FileMappedCuckooRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuckoo.bloom")

	f, err := Cuckoo().ExpectedItems(1000).OffHeap(true).FileMapped(path).Build()
	require.NoError(t, err)
	require.True(t, f.Put([]byte("persisted")))
	require.NoError(t, f.Close())

	restored, err := Cuckoo().ExpectedItems(1000).OffHeap(true).FileMapped(path).Build()
	require.NoError(t, err)
	defer restored.Close()

	assert.True(t, restored.MightContain([]byte("persisted")))
	removed, err := restored.Remove([]byte("persisted"))
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestBuilders_AlternativeHashers(t *testing.T) {
	for name, hasher := range map[string]Hasher{
		"murmur32": Murmur32,
		"xx64":     XX64,
	} {
		t.Run(name, func(t *testing.T) {
			f, err := Classic().ExpectedItems(1000).HashFunction(hasher).Build()
			require.NoError(t, err)
			defer f.Close()

			rng := newTestRand()
			items := randomItems(t, rng, 1000)
			for _, item := range items {
				f.Put(item)
			}
			for _, item := range items {
				require.True(t, f.MightContain(item))
			}
		})
	}
}

func TestBuilders_MetricsWiring(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	f, err := Classic().ExpectedItems(100).Metrics(metrics).Build()
	require.NoError(t, err)
	defer f.Close()

	f.Put([]byte("m"))
	f.MightContain([]byte("m"))
	f.MightContain([]byte("absent"))

	assert.Equal(t, int64(1), metrics.PutCount.Load())
	assert.Equal(t, int64(1), metrics.PutAdded.Load())
	assert.Equal(t, int64(2), metrics.ContainsCount.Load())
	assert.Equal(t, int64(1), metrics.ContainsHits.Load())
}
