package bloomgo

import (
	"math"
	"time"

	"github.com/hupe1980/bloomgo/internal/bitvec"
	"github.com/hupe1980/bloomgo/internal/stripe"
)

// ClassicFilter is the textbook bloom filter: k bits per item over a single
// bit vector. It admits no false negatives and does not support removal.
type ClassicFilter struct {
	bits    bitvec.BitVector
	k       int
	hasher  Hasher
	stripes stripe.Set
	logger  *Logger
	metrics MetricsCollector
}

var _ Filter = (*ClassicFilter)(nil)

func newClassicFilter(bits bitvec.BitVector, k int, hasher Hasher, logger *Logger, metrics MetricsCollector) *ClassicFilter {
	logger.Debug("classic filter created", "hash_functions", k, "bits", bits.BitSize())
	return &ClassicFilter{
		bits:    bits,
		k:       k,
		hasher:  hasher,
		logger:  logger,
		metrics: metrics,
	}
}

// Put implements Filter. It sets the k target bits and reports whether any
// bit transitioned.
func (f *ClassicFilter) Put(item []byte) bool {
	start := time.Now()
	bitSize := uint64(f.bits.BitSize())
	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)

	changed := false
	for _, h := range hashes {
		idx := int64(h % bitSize)
		f.stripes.Lock(idx)
		if f.bits.Set(idx) {
			changed = true
		}
		f.stripes.Unlock(idx)
	}
	f.metrics.RecordPut(time.Since(start), changed)
	return changed
}

// MightContain implements Filter. It short-circuits on the first unset bit.
func (f *ClassicFilter) MightContain(item []byte) bool {
	start := time.Now()
	bitSize := uint64(f.bits.BitSize())
	hashes := make([]uint64, f.k)
	f.hasher.Hashes(item, hashes)

	hit := true
	for _, h := range hashes {
		idx := int64(h % bitSize)
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

// Remove implements Filter. Classic bloom filters cannot unset shared bits.
func (f *ClassicFilter) Remove([]byte) (bool, error) {
	return false, ErrUnsupportedOperation
}

// Clear implements Filter.
func (f *ClassicFilter) Clear() {
	f.stripes.LockAll()
	defer f.stripes.UnlockAll()
	f.bits.Clear()
}

// MergeInPlace implements Filter. Operands must both be classic filters
// with equal bit size and hash count.
func (f *ClassicFilter) MergeInPlace(other Filter) error {
	o, ok := other.(*ClassicFilter)
	if !ok || o == nil {
		return incompatibleMergef("operand is not a classic filter")
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
	return nil
}

// ExpectedFpp implements Filter: (cardinality/bitSize)^k.
func (f *ClassicFilter) ExpectedFpp() float64 {
	return math.Pow(float64(f.bits.Cardinality())/float64(f.bits.BitSize()), float64(f.k))
}

// NumHashFunctions returns k.
func (f *ClassicFilter) NumHashFunctions() int {
	return f.k
}

// BitSize returns the size of the underlying bit vector.
func (f *ClassicFilter) BitSize() int64 {
	return f.bits.BitSize()
}

// Close implements Filter.
func (f *ClassicFilter) Close() error {
	return f.bits.Close()
}
