package bloomgo

import (
	"math"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/hupe1980/bloomgo/internal/bucket"
	"github.com/hupe1980/bloomgo/internal/stripe"
)

// maxKickNum bounds the eviction chain before the filter reports itself
// full.
const maxKickNum = 500

// altIndexSeed mixes tags into bucket offsets. The constant comes from the
// murmur hashing family; any sufficiently large odd constant would do.
const altIndexSeed = 0x5bd1e995

// CuckooFilter stores short fingerprints in two-choice buckets with an
// eviction chain, after Fan, Andersen, Kaminsky and Mitzenmacher ("Cuckoo
// Filter: Practically Better Than Bloom"). Unlike the bloom variants it
// supports removal: an inserted and not-removed item is found in its
// primary or alternate bucket as long as no Put has reported the filter
// full.
type CuckooFilter struct {
	table      *bucket.Set
	bitsPerTag int
	numBuckets int64
	perBucket  int
	hasher     Hasher
	stripes    stripe.Set
	count      atomic.Int64
	logger     *Logger
	metrics    MetricsCollector
}

var _ Filter = (*CuckooFilter)(nil)

func newCuckooFilter(table *bucket.Set, bitsPerTag int, numBuckets int64, perBucket int, hasher Hasher, logger *Logger, metrics MetricsCollector) *CuckooFilter {
	logger.Debug("cuckoo filter created",
		"buckets", numBuckets, "tags_per_bucket", perBucket, "bits_per_tag", bitsPerTag)
	return &CuckooFilter{
		table:      table,
		bitsPerTag: bitsPerTag,
		numBuckets: numBuckets,
		perBucket:  perBucket,
		hasher:     hasher,
		logger:     logger,
		metrics:    metrics,
	}
}

// Count returns the number of items currently stored.
func (f *CuckooFilter) Count() int64 {
	return f.count.Load()
}

// Put implements Filter. It tries the primary bucket, then walks the
// eviction chain from the alternate bucket for up to maxKickNum kicks.
// A false return means the filter has exceeded its usable capacity; the
// fingerprint displaced by the last kick is then dropped from the table.
func (f *CuckooFilter) Put(item []byte) bool {
	start := time.Now()
	bucketIdx, tag := f.index(item)

	f.stripes.Lock(bucketIdx)
	added := f.table.Append(bucketIdx, tag)
	f.stripes.Unlock(bucketIdx)

	if !added {
		added = f.putInAlt(bucketIdx, tag)
	}
	if added {
		f.count.Add(1)
	} else {
		f.logger.Warn("cuckoo filter exceeded capacity", "count", f.count.Load())
		f.metrics.RecordEvictionFailure(f.count.Load())
	}
	f.metrics.RecordPut(time.Since(start), added)
	return added
}

// putInAlt walks the eviction chain starting at the alternate bucket. Each
// step holds only the stripe of the bucket it mutates, so concurrent
// walkers interleave; every relocated tag remains reachable through the
// primary/alternate pair of the item it fingerprints.
func (f *CuckooFilter) putInAlt(bucketIdx int64, tag uint64) bool {
	altIdx := f.altIndex(bucketIdx, tag)
	for kick := 0; kick < maxKickNum; kick++ {
		f.stripes.Lock(altIdx)
		if f.table.Append(altIdx, tag) {
			f.stripes.Unlock(altIdx)
			return true
		}
		pos := rand.IntN(f.perBucket)
		evicted := f.table.ReadTag(altIdx, pos)
		f.table.WriteTag(altIdx, pos, tag)
		f.stripes.Unlock(altIdx)

		tag = evicted
		altIdx = f.altIndex(altIdx, evicted)
	}
	return false
}

// MightContain implements Filter: the tag is searched in the primary, then
// the alternate bucket.
func (f *CuckooFilter) MightContain(item []byte) bool {
	start := time.Now()
	bucketIdx, tag := f.index(item)

	f.stripes.RLock(bucketIdx)
	hit := f.table.CheckTag(bucketIdx, tag) != -1
	f.stripes.RUnlock(bucketIdx)

	if !hit {
		altIdx := f.altIndex(bucketIdx, tag)
		f.stripes.RLock(altIdx)
		hit = f.table.CheckTag(altIdx, tag) != -1
		f.stripes.RUnlock(altIdx)
	}
	f.metrics.RecordContains(time.Since(start), hit)
	return hit
}

// Remove implements Filter. It clears one slot holding the fingerprint in
// the primary or alternate bucket. Append stores a fingerprint at most once
// per bucket, so two insertions of the same fingerprint into one bucket
// share a slot; removing one of them clears it and leaves a false negative
// for the other, which the design accepts.
func (f *CuckooFilter) Remove(item []byte) (bool, error) {
	start := time.Now()
	bucketIdx, tag := f.index(item)

	removed := f.removeTag(bucketIdx, tag)
	if !removed {
		removed = f.removeTag(f.altIndex(bucketIdx, tag), tag)
	}
	if removed {
		f.count.Add(-1)
	}
	f.metrics.RecordRemove(time.Since(start), removed)
	return removed, nil
}

func (f *CuckooFilter) removeTag(bucketIdx int64, tag uint64) bool {
	f.stripes.Lock(bucketIdx)
	defer f.stripes.Unlock(bucketIdx)
	pos := f.table.CheckTag(bucketIdx, tag)
	if pos == -1 {
		return false
	}
	f.table.DeleteTag(bucketIdx, pos)
	return true
}

// Clear implements Filter.
func (f *CuckooFilter) Clear() {
	f.stripes.LockAll()
	defer f.stripes.UnlockAll()
	f.table.Clear()
	f.count.Store(0)
}

// MergeInPlace implements Filter. Cuckoo tables cannot be merged: a plain
// OR of slots would corrupt bucket occupancy.
func (f *CuckooFilter) MergeInPlace(Filter) error {
	return ErrUnsupportedOperation
}

// ExpectedFpp implements Filter: 1 - ((2^t-2)/(2^t-1))^(2*b*load).
func (f *CuckooFilter) ExpectedFpp() float64 {
	load := float64(f.count.Load()) / (float64(f.numBuckets) * float64(f.perBucket))
	t := math.Pow(2, float64(f.bitsPerTag))
	return 1 - math.Pow((t-2)/(t-1), 2*float64(f.perBucket)*load)
}

// Close implements Filter.
func (f *CuckooFilter) Close() error {
	return f.table.Close()
}

// index derives the primary bucket and fingerprint for an item.
func (f *CuckooFilter) index(item []byte) (int64, uint64) {
	hashes := make([]uint64, 2)
	f.hasher.Hashes(item, hashes)
	return int64(hashes[0] % uint64(f.numBuckets)), f.fingerprint(hashes[1])
}

// fingerprint masks the low bitsPerTag bits of the hash, re-mixing while
// the result is zero so the empty-slot sentinel is never stored.
func (f *CuckooFilter) fingerprint(hash uint64) uint64 {
	mask := (uint64(1) << f.bitsPerTag) - 1
	tag := hash & mask
	for tag == 0 {
		hash = remix32(hash)
		tag = hash & mask
	}
	return tag
}

// altIndex maps a bucket and tag to the tag's other admissible bucket.
// The offset is an odd multiple applied with a parity-dependent sign, so
// the function is an involution: altIndex(altIndex(b, t), t) == b for the
// even bucket counts the builder produces.
func (f *CuckooFilter) altIndex(bucketIdx int64, tag uint64) int64 {
	hash2 := int64((tag * altIndexSeed) & indexMask)
	return floorMod(protectedSum(bucketIdx, parsign(bucketIdx)*odd(hash2), f.numBuckets), f.numBuckets)
}

func parsign(i int64) int64 {
	if i&1 == 0 {
		return 1
	}
	return -1
}

func odd(i int64) int64 {
	return i | 1
}

// protectedSum adds offset to index, first reducing index by mod until the
// sum cannot overflow.
func protectedSum(index, offset, mod int64) int64 {
	for !canSum(index, offset) {
		index -= mod
	}
	return index + offset
}

func canSum(a, b int64) bool {
	return (a^b) < 0 || (a^(a+b)) >= 0
}

func floorMod(x, m int64) int64 {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// Cuckoo sizing, derived from the target false-positive rate.

const (
	maxTagsPerBucket = 8
	minTagsPerBucket = 2

	// minCuckooFpp is the lowest admissible target rate, 2^-60.
	minCuckooFpp = 1.0 / (1 << 60)
)

func optimalTagsPerBucket(fpp float64) int {
	switch {
	case fpp <= 0.00001:
		return maxTagsPerBucket
	case fpp <= 0.002:
		return maxTagsPerBucket / 2
	default:
		return minTagsPerBucket
	}
}

// optimalCuckooLoadFactor returns the admissible load for a bucket width:
// fuller buckets tolerate higher loads before eviction chains blow up.
func optimalCuckooLoadFactor(perBucket int) float64 {
	switch perBucket {
	case 2:
		return 0.84
	case 4:
		return 0.955
	default:
		return 0.98
	}
}

func optimalBitsPerTag(fpp float64, perBucket int) int {
	return int(math.Ceil(math.Log2(1/fpp+3) / optimalCuckooLoadFactor(perBucket)))
}

// optimalNumBuckets keeps the historical sizing of this family: the
// division is biased up by one before rounding to the next even count.
func optimalNumBuckets(n int64, perBucket int) int64 {
	needed := int64(math.Ceil(float64(n) / optimalCuckooLoadFactor(perBucket)))
	return evenCeil(divide(needed, int64(perBucket)))
}

// divide biases the quotient up by one. Not a true ceiling; kept as-is for
// sizing compatibility.
func divide(p, q int64) int64 {
	return p/q + 1
}

func evenCeil(n int64) int64 {
	return (n + 1) / 2 * 2
}
