package bloomgo

import (
	"sync"
	"sync/atomic"
	"time"
)

// ScalableFilter grows a cascade of partitioned filters as data arrives,
// after Almeida, Baquero, Preguica and Hutchison ("Scalable Bloom
// Filters"). When the active member's estimated fill ratio reaches the
// configured threshold, a fresh member with a tightened false-positive
// target is pushed to the front; queries consult every member.
type ScalableFilter struct {
	fpp      float64
	pratio   float64
	hint     int64
	offHeap  bool
	hasher   Hasher
	logger   *Logger
	metrics  MetricsCollector
	growMu  sync.Mutex
	members atomic.Pointer[[]*PartitionedFilter] // newest first
}

var _ Filter = (*ScalableFilter)(nil)

func newScalableFilter(fpp, pratio float64, hint int64, offHeap bool, hasher Hasher, logger *Logger, metrics MetricsCollector) (*ScalableFilter, error) {
	f := &ScalableFilter{
		fpp:     fpp,
		pratio:  pratio,
		hint:    hint,
		offHeap: offHeap,
		hasher:  hasher,
		logger:  logger,
		metrics: metrics,
	}
	first, err := f.newMember(0)
	if err != nil {
		return nil, err
	}
	members := []*PartitionedFilter{first}
	f.members.Store(&members)
	return f, nil
}

// newMember builds the partitioned filter for the given cascade level. The
// target rate tightens geometrically so the compound rate stays close to
// the configured one.
func (f *ScalableFilter) newMember(level int) (*PartitionedFilter, error) {
	fpp := f.fpp * powInt(f.pratio, level)
	return Partitioned().
		ExpectedItems(f.hint).
		FalsePositiveRate(fpp).
		OffHeap(f.offHeap).
		HashFunction(f.hasher).
		Logger(f.logger).
		Build()
}

func (f *ScalableFilter) head() *PartitionedFilter {
	return (*f.members.Load())[0]
}

// Put implements Filter. The growth decision is double-checked under the
// instance mutex; the member slice is replaced wholesale so readers never
// observe a partially published member.
func (f *ScalableFilter) Put(item []byte) bool {
	start := time.Now()
	if f.head().EstimatedFillRatio() >= f.pratio {
		if !f.grow() {
			f.metrics.RecordPut(time.Since(start), false)
			return false
		}
	}
	added := f.head().Put(item)
	f.metrics.RecordPut(time.Since(start), added)
	return added
}

func (f *ScalableFilter) grow() bool {
	f.growMu.Lock()
	defer f.growMu.Unlock()

	cur := *f.members.Load()
	if cur[0].EstimatedFillRatio() < f.pratio {
		return true // another writer grew first
	}
	member, err := f.newMember(len(cur))
	if err != nil {
		f.logger.Error("cannot enlarge scalable filter", "error", err)
		return false
	}
	next := make([]*PartitionedFilter, 0, len(cur)+1)
	next = append(next, member)
	next = append(next, cur...)
	f.members.Store(&next)
	f.logger.Debug("scalable filter grew", "members", len(next))
	f.metrics.RecordGrow(len(next))
	return true
}

// MightContain implements Filter: true on the first member that reports a
// hit.
func (f *ScalableFilter) MightContain(item []byte) bool {
	start := time.Now()
	hit := false
	for _, member := range *f.members.Load() {
		if member.MightContain(item) {
			hit = true
			break
		}
	}
	f.metrics.RecordContains(time.Since(start), hit)
	return hit
}

// Remove implements Filter.
func (f *ScalableFilter) Remove([]byte) (bool, error) {
	return false, ErrUnsupportedOperation
}

// NumMembers returns the current cascade depth.
func (f *ScalableFilter) NumMembers() int {
	return len(*f.members.Load())
}

// ExpectedFpp implements Filter: 1 - prod(1 - fpp_i) over all members.
func (f *ScalableFilter) ExpectedFpp() float64 {
	compound := 1.0
	for _, member := range *f.members.Load() {
		compound *= 1 - member.ExpectedFpp()
	}
	return 1 - compound
}

// Clear implements Filter. Every member but the oldest is closed and
// released; the survivor is cleared in place.
func (f *ScalableFilter) Clear() {
	f.growMu.Lock()
	defer f.growMu.Unlock()

	cur := *f.members.Load()
	survivor := cur[len(cur)-1]
	for _, member := range cur[:len(cur)-1] {
		if err := member.Close(); err != nil {
			f.logger.Error("cannot close scalable filter member", "error", err)
		}
	}
	members := []*PartitionedFilter{survivor}
	f.members.Store(&members)
	survivor.Clear()
}

// MergeInPlace implements Filter. Cascades of differing depth and geometry
// cannot be merged.
func (f *ScalableFilter) MergeInPlace(Filter) error {
	return ErrUnsupportedOperation
}

// Close implements Filter. It closes every member; the first error is
// returned after all members have been released.
func (f *ScalableFilter) Close() error {
	f.growMu.Lock()
	defer f.growMu.Unlock()

	var firstErr error
	for _, member := range *f.members.Load() {
		if err := member.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	empty := []*PartitionedFilter{}
	f.members.Store(&empty)
	return firstErr
}

// powInt is x^n for small non-negative n.
func powInt(x float64, n int) float64 {
	p := 1.0
	for i := 0; i < n; i++ {
		p *= x
	}
	return p
}
