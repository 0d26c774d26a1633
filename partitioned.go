package bloomgo

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/hupe1980/bloomgo/internal/bitvec"
	"github.com/hupe1980/bloomgo/internal/stripe"
)

// PartitionedFilter is a bloom filter whose bit vector is split into k
// equal slices, one per hash function; each item occupies exactly one bit
// per slice. The uniform per-item bit count makes its fill ratio a usable
// growth signal, which is why the scalable filter builds on it.
type PartitionedFilter struct {
	bits      bitvec.BitVector
	k         int
	sliceSize int64
	hasher    Hasher
	stripes   stripe.Set
	numItems  atomic.Int64
	logger    *Logger
	metrics   MetricsCollector
}

var _ Filter = (*PartitionedFilter)(nil)

func newPartitionedFilter(bits bitvec.BitVector, k int, sliceSize int64, hasher Hasher, logger *Logger, metrics MetricsCollector) *PartitionedFilter {
	logger.Debug("partitioned filter created",
		"hash_functions", k, "bits", bits.BitSize(), "slice_size", sliceSize)
	return &PartitionedFilter{
		bits:      bits,
		k:         k,
		sliceSize: sliceSize,
		hasher:    hasher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Put implements Filter. Slice i receives bit i*sliceSize + hash_i mod
// sliceSize; all k bits are always written.
func (f *PartitionedFilter) Put(item []byte) bool {
	start := time.Now()
	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)

	changed := false
	for i, h := range hashes {
		idx := int64(i)*f.sliceSize + int64(h%uint64(f.sliceSize))
		f.stripes.Lock(idx)
		if f.bits.Set(idx) {
			changed = true
		}
		f.stripes.Unlock(idx)
	}
	if changed {
		f.numItems.Add(1)
	}
	f.metrics.RecordPut(time.Since(start), changed)
	return changed
}

// MightContain implements Filter.
func (f *PartitionedFilter) MightContain(item []byte) bool {
	start := time.Now()
	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)

	hit := true
	for i, h := range hashes {
		idx := int64(i)*f.sliceSize + int64(h%uint64(f.sliceSize))
		f.stripes.RLock(idx)
		set := f.bits.Get(idx)
		f.stripes.RUnlock(idx)
		if !set {
			hit = false
			break
		}
	}
	f.metrics.RecordContains(time.Since(start), hit)
	return hit
}

// Remove implements Filter.
func (f *PartitionedFilter) Remove([]byte) (bool, error) {
	return false, ErrUnsupportedOperation
}

// EstimatedFillRatio estimates the consumed fraction of the active slice:
// 1 - e^(-numItems/sliceSize).
func (f *PartitionedFilter) EstimatedFillRatio() float64 {
	return 1 - math.Exp(-float64(f.numItems.Load())/float64(f.sliceSize))
}

// NumItems returns the number of insertions that changed at least one bit.
func (f *PartitionedFilter) NumItems() int64 {
	return f.numItems.Load()
}

// Clear implements Filter.
func (f *PartitionedFilter) Clear() {
	f.stripes.LockAll()
	defer f.stripes.UnlockAll()
	f.bits.Clear()
	f.numItems.Store(0)
}

// MergeInPlace implements Filter. Operands must both be partitioned
// filters with equal bit size and hash count.
func (f *PartitionedFilter) MergeInPlace(other Filter) error {
	o, ok := other.(*PartitionedFilter)
	if !ok || o == nil {
		return incompatibleMergef("operand is not a partitioned filter")
	}
	if f.BitSize() != o.BitSize() {
		return incompatibleMergef("bit sizes differ: %d vs %d", f.BitSize(), o.BitSize())
	}
	if f.k != o.k {
		return incompatibleMergef("hash counts differ: %d vs %d", f.k, o.k)
	}

	f.stripes.LockAll()
	defer f.stripes.UnlockAll()
	if err := f.bits.PutAll(o.bits); err != nil {
		return incompatibleMergef("%v", err)
	}
	f.numItems.Add(o.numItems.Load())
	return nil
}

// ExpectedFpp implements Filter.
func (f *PartitionedFilter) ExpectedFpp() float64 {
	return math.Pow(float64(f.bits.Cardinality())/float64(f.bits.BitSize()), float64(f.k))
}

// NumHashFunctions returns k.
func (f *PartitionedFilter) NumHashFunctions() int {
	return f.k
}

// BitSize returns the size of the underlying bit vector.
func (f *PartitionedFilter) BitSize() int64 {
	return f.bits.BitSize()
}

// Close implements Filter.
func (f *PartitionedFilter) Close() error {
	return f.bits.Close()
}
