package bloomgo

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/bloomgo/internal/bucket"
	"github.com/hupe1980/bloomgo/internal/stripe"
)

// StableFilter implements the stable bloom filter of Deng and Rafiei
// ("Approximately Detecting Duplicates for Streaming Data using Stable
// Bloom Filters"). Every insertion first decrements a few counter buckets
// to evict stale information, then saturates the item's k target buckets.
// The false-positive rate converges to a configurable stable point instead
// of creeping towards 1, at the cost of false negatives for stale items.
type StableFilter struct {
	buckets       *bucket.Set
	k             int
	numBuckets    int64
	bitsPerBucket int
	decrements    int64
	hasher        Hasher
	stripes       stripe.Set
	logger        *Logger
	metrics       MetricsCollector
}

var _ Filter = (*StableFilter)(nil)

func newStableFilter(buckets *bucket.Set, numBuckets int64, bitsPerBucket int, decrements int64, k int, hasher Hasher, logger *Logger, metrics MetricsCollector) *StableFilter {
	logger.Debug("stable filter created",
		"hash_functions", k, "buckets", numBuckets,
		"bits_per_bucket", bitsPerBucket, "decrements", decrements)
	return &StableFilter{
		buckets:       buckets,
		k:             k,
		numBuckets:    numBuckets,
		bitsPerBucket: bitsPerBucket,
		decrements:    decrements,
		hasher:        hasher,
		logger:        logger,
		metrics:       metrics,
	}
}

// maxBucketValue is the saturation value 2^bitsPerBucket - 1.
func (f *StableFilter) maxBucketValue() uint64 {
	return (uint64(1) << f.bitsPerBucket) - 1
}

// Put implements Filter. It always returns true: target buckets are
// overwritten with the saturation value regardless of previous content.
func (f *StableFilter) Put(item []byte) bool {
	start := time.Now()
	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)

	// Make room for new values.
	f.decrement()

	maxVal := f.maxBucketValue()
	for _, h := range hashes {
		idx := int64(h % uint64(f.numBuckets))
		f.stripes.Lock(idx)
		f.buckets.WriteTag(idx, 0, maxVal)
		f.stripes.Unlock(idx)
	}
	f.metrics.RecordPut(time.Since(start), true)
	return true
}

// decrement lowers a random cell and decrements-1 adjacent cells by one.
// This is faster than generating that many random numbers; the picks are
// not independent, but each cell still has probability P/m of being
// touched per insertion, so the stable-point analysis holds.
func (f *StableFilter) decrement() {
	pivot := rand.Int64N(f.numBuckets)
	for j := int64(0); j < f.decrements; j++ {
		idx := (pivot + j) % f.numBuckets
		f.stripes.Lock(idx)
		if v := f.buckets.ReadTag(idx, 0); v != 0 {
			f.buckets.WriteTag(idx, 0, v-1)
		}
		f.stripes.Unlock(idx)
	}
}

// MightContain implements Filter: true iff all k target buckets are
// nonzero.
func (f *StableFilter) MightContain(item []byte) bool {
	start := time.Now()
	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)

	hit := true
	for _, h := range hashes {
		idx := int64(h % uint64(f.numBuckets))
		f.stripes.RLock(idx)
		v := f.buckets.ReadTag(idx, 0)
		f.stripes.RUnlock(idx)
		if v == 0 {
			hit = false
			break
		}
	}
	f.metrics.RecordContains(time.Since(start), hit)
	return hit
}

// Remove implements Filter. Stale entries age out through decrements
// instead.
func (f *StableFilter) Remove([]byte) (bool, error) {
	return false, ErrUnsupportedOperation
}

// Clear implements Filter.
func (f *StableFilter) Clear() {
	f.stripes.LockAll()
	defer f.stripes.UnlockAll()
	f.buckets.Clear()
}

// MergeInPlace implements Filter. Operands must both be stable filters
// with equal bit size and hash count.
func (f *StableFilter) MergeInPlace(other Filter) error {
	o, ok := other.(*StableFilter)
	if !ok || o == nil {
		return incompatibleMergef("operand is not a stable filter")
	}
	if f.buckets.SizeInBits() != o.buckets.SizeInBits() {
		return incompatibleMergef("bit sizes differ: %d vs %d", f.buckets.SizeInBits(), o.buckets.SizeInBits())
	}
	if f.k != o.k {
		return incompatibleMergef("hash counts differ: %d vs %d", f.k, o.k)
	}

	f.stripes.LockAll()
	defer f.stripes.UnlockAll()
	if err := f.buckets.PutAll(o.buckets); err != nil {
		return incompatibleMergef("%v", err)
	}
	return nil
}

// ExpectedFpp implements Filter: (1 - stablePoint)^k.
func (f *StableFilter) ExpectedFpp() float64 {
	return math.Pow(1-f.stablePoint(), float64(f.k))
}

// stablePoint returns the limit of the expected fraction of zero buckets
// as the number of iterations goes to infinity.
func (f *StableFilter) stablePoint() float64 {
	subDenom := float64(f.decrements) * (1/float64(f.k) - 1/float64(f.numBuckets))
	base := 1 / (1 + 1/subDenom)
	return math.Pow(base, float64(f.maxBucketValue()))
}

// Close implements Filter.
func (f *StableFilter) Close() error {
	return f.buckets.Close()
}

// optimalDecrements inverts the stable-point equation for the target
// false-positive rate. Values that come out non-positive are clamped to 1.
func optimalDecrements(numBuckets int64, k, bitsPerBucket int, fpp float64) int64 {
	maxVal := float64((uint64(1) << bitsPerBucket) - 1)
	subDenom := math.Pow(1-math.Pow(fpp, 1/float64(k)), 1/maxVal)
	denom := (1/subDenom - 1) * (1/float64(k) - 1/float64(numBuckets))
	p := int64(1 / denom)
	if p <= 0 {
		p = 1
	}
	return p
}
