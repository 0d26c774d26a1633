// This file implements the fluent builder APIs for creating filters.
// Builders are immutable - each method returns a new builder with the
// updated configuration.

package bloomgo

import (
	"github.com/hupe1980/bloomgo/internal/bitvec"
	"github.com/hupe1980/bloomgo/internal/bucket"
)

// filterOptions carries the settings shared by every variant builder.
type filterOptions struct {
	fpp     float64
	items   int64
	offHeap bool
	path    string
	hasher  Hasher
	logger  *Logger
	metrics MetricsCollector
}

func defaultFilterOptions() filterOptions {
	return filterOptions{
		fpp:     DefaultFpp,
		hasher:  Murmur128,
		logger:  NoopLogger(),
		metrics: NoopMetricsCollector{},
	}
}

func (o filterOptions) validate() error {
	if o.fpp <= 0 || o.fpp >= 1 {
		return invalidArgf("false positive rate", "%v must be in range (0, 1)", o.fpp)
	}
	if o.items <= 0 {
		return invalidArgf("expected items", "%d must be > 0", o.items)
	}
	if o.path != "" && !o.offHeap {
		return invalidArgf("file mapping", "cannot map file %q to an on-heap bit vector", o.path)
	}
	return nil
}

// newBitVector builds the backing selected by the options.
func (o filterOptions) newBitVector(numBits int64) (bitvec.BitVector, error) {
	if o.path != "" {
		return bitvec.OpenFile(o.path, numBits)
	}
	if o.offHeap {
		return bitvec.NewOffHeap(numBits)
	}
	return bitvec.NewHeap(numBits)
}

// =============================================================================
// Classic
// =============================================================================

// Classic returns a builder for a ClassicFilter.
//
// Example:
//
//	f, err := bloomgo.Classic().
//	    ExpectedItems(10_000).
//	    FalsePositiveRate(0.01).
//	    Build()
func Classic() ClassicBuilder {
	return ClassicBuilder{opts: defaultFilterOptions()}
}

// ClassicBuilder is an immutable fluent builder for ClassicFilter.
type ClassicBuilder struct {
	opts filterOptions
}

// FalsePositiveRate sets the target false-positive rate, in (0, 1).
func (b ClassicBuilder) FalsePositiveRate(fpp float64) ClassicBuilder {
	b.opts.fpp = fpp
	return b
}

// ExpectedItems sets the expected number of insertions.
func (b ClassicBuilder) ExpectedItems(n int64) ClassicBuilder {
	b.opts.items = n
	return b
}

// OffHeap selects an off-heap anonymous backing instead of the heap.
func (b ClassicBuilder) OffHeap(offHeap bool) ClassicBuilder {
	b.opts.offHeap = offHeap
	return b
}

// FileMapped maps the filter's bit vector to the file at path. Requires
// OffHeap(true).
func (b ClassicBuilder) FileMapped(path string) ClassicBuilder {
	b.opts.path = path
	return b
}

// HashFunction selects the hasher. Default: Murmur128.
func (b ClassicBuilder) HashFunction(h Hasher) ClassicBuilder {
	b.opts.hasher = h
	return b
}

// Logger sets the logger. Default: NoopLogger().
func (b ClassicBuilder) Logger(l *Logger) ClassicBuilder {
	b.opts.logger = l
	return b
}

// Metrics sets the metrics collector. Default: NoopMetricsCollector.
func (b ClassicBuilder) Metrics(m MetricsCollector) ClassicBuilder {
	b.opts.metrics = m
	return b
}

// Build validates the configuration and creates the filter.
func (b ClassicBuilder) Build() (*ClassicFilter, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	numBits := OptimalNumOfBits(b.opts.items, b.opts.fpp)
	k := OptimalNumOfHashFunctions(b.opts.items, numBits)
	bits, err := b.opts.newBitVector(numBits)
	if err != nil {
		return nil, err
	}
	return newClassicFilter(bits, k, b.opts.hasher, b.opts.logger, b.opts.metrics), nil
}

// =============================================================================
// Partitioned
// =============================================================================

// Partitioned returns a builder for a PartitionedFilter. Partitioned
// filters trade a slightly higher false-positive rate for a uniform
// per-item bit count; they are primarily the building block of the
// scalable filter.
func Partitioned() PartitionedBuilder {
	return PartitionedBuilder{opts: defaultFilterOptions()}
}

// PartitionedBuilder is an immutable fluent builder for PartitionedFilter.
type PartitionedBuilder struct {
	opts filterOptions
}

// FalsePositiveRate sets the target false-positive rate, in (0, 1).
func (b PartitionedBuilder) FalsePositiveRate(fpp float64) PartitionedBuilder {
	b.opts.fpp = fpp
	return b
}

// ExpectedItems sets the expected number of insertions.
func (b PartitionedBuilder) ExpectedItems(n int64) PartitionedBuilder {
	b.opts.items = n
	return b
}

// OffHeap selects an off-heap anonymous backing instead of the heap.
func (b PartitionedBuilder) OffHeap(offHeap bool) PartitionedBuilder {
	b.opts.offHeap = offHeap
	return b
}

// FileMapped maps the filter's bit vector to the file at path. Requires
// OffHeap(true).
func (b PartitionedBuilder) FileMapped(path string) PartitionedBuilder {
	b.opts.path = path
	return b
}

// HashFunction selects the hasher. Default: Murmur128.
func (b PartitionedBuilder) HashFunction(h Hasher) PartitionedBuilder {
	b.opts.hasher = h
	return b
}

// Logger sets the logger. Default: NoopLogger().
func (b PartitionedBuilder) Logger(l *Logger) PartitionedBuilder {
	b.opts.logger = l
	return b
}

// Metrics sets the metrics collector. Default: NoopMetricsCollector.
func (b PartitionedBuilder) Metrics(m MetricsCollector) PartitionedBuilder {
	b.opts.metrics = m
	return b
}

// Build validates the configuration and creates the filter.
func (b PartitionedBuilder) Build() (*PartitionedFilter, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	numBits := OptimalNumOfBits(b.opts.items, b.opts.fpp)
	k := OptimalNumOfHashFunctions(b.opts.items, numBits)
	// Align to a multiple of k so every slice has equal size.
	numBits = (numBits + int64(k) - 1) / int64(k) * int64(k)
	sliceSize := numBits / int64(k)
	bits, err := b.opts.newBitVector(numBits)
	if err != nil {
		return nil, err
	}
	return newPartitionedFilter(bits, k, sliceSize, b.opts.hasher, b.opts.logger, b.opts.metrics), nil
}

// =============================================================================
// Stable
// =============================================================================

// Stable returns a builder for a StableFilter. Use it to deduplicate
// unbounded streams with bounded memory; larger BitsPerBucket values suit
// larger gaps between duplicate items.
func Stable() StableBuilder {
	return StableBuilder{opts: defaultFilterOptions(), bitsPerBucket: 1}
}

// StableBuilder is an immutable fluent builder for StableFilter.
type StableBuilder struct {
	opts          filterOptions
	bitsPerBucket int
}

// FalsePositiveRate sets the target stable false-positive rate, in (0, 1).
func (b StableBuilder) FalsePositiveRate(fpp float64) StableBuilder {
	b.opts.fpp = fpp
	return b
}

// ExpectedItems sets the expected number of in-flight items.
func (b StableBuilder) ExpectedItems(n int64) StableBuilder {
	b.opts.items = n
	return b
}

// BitsPerBucket sets the counter width in bits, in (0, 64). Default: 1.
func (b StableBuilder) BitsPerBucket(bits int) StableBuilder {
	b.bitsPerBucket = bits
	return b
}

// OffHeap selects an off-heap anonymous backing instead of the heap.
func (b StableBuilder) OffHeap(offHeap bool) StableBuilder {
	b.opts.offHeap = offHeap
	return b
}

// FileMapped maps the filter's bit vector to the file at path. Requires
// OffHeap(true).
func (b StableBuilder) FileMapped(path string) StableBuilder {
	b.opts.path = path
	return b
}

// HashFunction selects the hasher. Default: Murmur128.
func (b StableBuilder) HashFunction(h Hasher) StableBuilder {
	b.opts.hasher = h
	return b
}

// Logger sets the logger. Default: NoopLogger().
func (b StableBuilder) Logger(l *Logger) StableBuilder {
	b.opts.logger = l
	return b
}

// Metrics sets the metrics collector. Default: NoopMetricsCollector.
func (b StableBuilder) Metrics(m MetricsCollector) StableBuilder {
	b.opts.metrics = m
	return b
}

// Build validates the configuration and creates the filter.
func (b StableBuilder) Build() (*StableFilter, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	if b.bitsPerBucket <= 0 || b.bitsPerBucket >= 64 {
		return nil, invalidArgf("bits per bucket", "%d must be in range (0, 64)", b.bitsPerBucket)
	}

	numBuckets := OptimalNumOfBits(b.opts.items, b.opts.fpp)
	k := OptimalNumOfHashFunctions(b.opts.items, numBuckets)
	decrements := optimalDecrements(numBuckets, k, b.bitsPerBucket, b.opts.fpp)

	bits, err := b.opts.newBitVector(numBuckets * int64(b.bitsPerBucket))
	if err != nil {
		return nil, err
	}
	buckets, err := bucket.New(b.bitsPerBucket, 1, numBuckets, bits)
	if err != nil {
		bits.Close()
		return nil, invalidArgf("bucket layout", "%v", err)
	}
	return newStableFilter(buckets, numBuckets, b.bitsPerBucket, decrements, k,
		b.opts.hasher, b.opts.logger, b.opts.metrics), nil
}

// =============================================================================
// Cuckoo
// =============================================================================

// Cuckoo returns a builder for a CuckooFilter, the only variant that
// supports removal.
func Cuckoo() CuckooBuilder {
	return CuckooBuilder{opts: defaultFilterOptions()}
}

// CuckooBuilder is an immutable fluent builder for CuckooFilter.
type CuckooBuilder struct {
	opts filterOptions
}

// FalsePositiveRate sets the target false-positive rate, in [2^-60, 1).
func (b CuckooBuilder) FalsePositiveRate(fpp float64) CuckooBuilder {
	b.opts.fpp = fpp
	return b
}

// ExpectedItems sets the expected number of stored items.
func (b CuckooBuilder) ExpectedItems(n int64) CuckooBuilder {
	b.opts.items = n
	return b
}

// OffHeap selects an off-heap anonymous backing instead of the heap.
func (b CuckooBuilder) OffHeap(offHeap bool) CuckooBuilder {
	b.opts.offHeap = offHeap
	return b
}

// FileMapped maps the filter's bit vector to the file at path. Requires
// OffHeap(true).
func (b CuckooBuilder) FileMapped(path string) CuckooBuilder {
	b.opts.path = path
	return b
}

// HashFunction selects the hasher. Default: Murmur128.
func (b CuckooBuilder) HashFunction(h Hasher) CuckooBuilder {
	b.opts.hasher = h
	return b
}

// Logger sets the logger. Default: NoopLogger().
func (b CuckooBuilder) Logger(l *Logger) CuckooBuilder {
	b.opts.logger = l
	return b
}

// Metrics sets the metrics collector. Default: NoopMetricsCollector.
func (b CuckooBuilder) Metrics(m MetricsCollector) CuckooBuilder {
	b.opts.metrics = m
	return b
}

// Build validates the configuration and creates the filter.
func (b CuckooBuilder) Build() (*CuckooFilter, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	if b.opts.fpp < minCuckooFpp {
		return nil, invalidArgf("false positive rate", "%v is below the minimum %v", b.opts.fpp, minCuckooFpp)
	}

	perBucket := optimalTagsPerBucket(b.opts.fpp)
	numBuckets := optimalNumBuckets(b.opts.items, perBucket)
	bitsPerTag := optimalBitsPerTag(b.opts.fpp, perBucket)

	bits, err := b.opts.newBitVector(int64(bitsPerTag) * int64(perBucket) * numBuckets)
	if err != nil {
		return nil, err
	}
	table, err := bucket.New(bitsPerTag, perBucket, numBuckets, bits)
	if err != nil {
		bits.Close()
		return nil, invalidArgf("bucket layout", "%v", err)
	}
	return newCuckooFilter(table, bitsPerTag, numBuckets, perBucket,
		b.opts.hasher, b.opts.logger, b.opts.metrics), nil
}

// =============================================================================
// Scalable
// =============================================================================

// DefaultFillRatio is the fill threshold at which a scalable filter grows.
// It also tightens each new member's false-positive target.
const DefaultFillRatio = 0.5

// Scalable returns a builder for a ScalableFilter.
func Scalable() ScalableBuilder {
	return ScalableBuilder{opts: defaultFilterOptions(), pratio: DefaultFillRatio}
}

// ScalableBuilder is an immutable fluent builder for ScalableFilter.
type ScalableBuilder struct {
	opts   filterOptions
	pratio float64
}

// FalsePositiveRate sets the compound target false-positive rate, in (0, 1).
func (b ScalableBuilder) FalsePositiveRate(fpp float64) ScalableBuilder {
	b.opts.fpp = fpp
	return b
}

// GrowthHint sets the per-member capacity: every member is sized for this
// many items.
func (b ScalableBuilder) GrowthHint(n int64) ScalableBuilder {
	b.opts.items = n
	return b
}

// FillRatio sets the fill threshold triggering growth, in (0, 1). The same
// ratio tightens each new member's false-positive target so the compound
// rate stays near the configured one. Default: DefaultFillRatio.
func (b ScalableBuilder) FillRatio(p float64) ScalableBuilder {
	b.pratio = p
	return b
}

// OffHeap selects off-heap anonymous backings for all members.
func (b ScalableBuilder) OffHeap(offHeap bool) ScalableBuilder {
	b.opts.offHeap = offHeap
	return b
}

// HashFunction selects the hasher. Default: Murmur128.
func (b ScalableBuilder) HashFunction(h Hasher) ScalableBuilder {
	b.opts.hasher = h
	return b
}

// Logger sets the logger. Default: NoopLogger().
func (b ScalableBuilder) Logger(l *Logger) ScalableBuilder {
	b.opts.logger = l
	return b
}

// Metrics sets the metrics collector. Default: NoopMetricsCollector.
func (b ScalableBuilder) Metrics(m MetricsCollector) ScalableBuilder {
	b.opts.metrics = m
	return b
}

// Build validates the configuration and creates the filter with its first
// member.
func (b ScalableBuilder) Build() (*ScalableFilter, error) {
	if err := b.opts.validate(); err != nil {
		return nil, err
	}
	if b.pratio <= 0 || b.pratio >= 1 {
		return nil, invalidArgf("fill ratio", "%v must be in range (0, 1)", b.pratio)
	}
	return newScalableFilter(b.opts.fpp, b.pratio, b.opts.items, b.opts.offHeap,
		b.opts.hasher, b.opts.logger, b.opts.metrics)
}
