package bloomgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordPut is called after each insertion. added reports whether the
	// filter state changed (cuckoo: whether the item was accepted).
	RecordPut(duration time.Duration, added bool)

	// RecordContains is called after each membership query.
	RecordContains(duration time.Duration, hit bool)

	// RecordRemove is called after each removal on filters that support it.
	RecordRemove(duration time.Duration, removed bool)

	// RecordGrow is called when a scalable filter adds a member.
	// members is the new member count.
	RecordGrow(members int)

	// RecordEvictionFailure is called when a cuckoo eviction chain gives
	// up. count is the filter's item count at that moment.
	RecordEvictionFailure(count int64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordPut(time.Duration, bool)      {}
func (NoopMetricsCollector) RecordContains(time.Duration, bool) {}
func (NoopMetricsCollector) RecordRemove(time.Duration, bool)   {}
func (NoopMetricsCollector) RecordGrow(int)                     {}
func (NoopMetricsCollector) RecordEvictionFailure(int64)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	PutCount         atomic.Int64
	PutAdded         atomic.Int64
	PutTotalNanos    atomic.Int64
	ContainsCount    atomic.Int64
	ContainsHits     atomic.Int64
	RemoveCount      atomic.Int64
	RemoveRemoved    atomic.Int64
	GrowCount        atomic.Int64
	EvictionFailures atomic.Int64
}

// RecordPut implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPut(duration time.Duration, added bool) {
	b.PutCount.Add(1)
	b.PutTotalNanos.Add(duration.Nanoseconds())
	if added {
		b.PutAdded.Add(1)
	}
}

// RecordContains implements MetricsCollector.
func (b *BasicMetricsCollector) RecordContains(_ time.Duration, hit bool) {
	b.ContainsCount.Add(1)
	if hit {
		b.ContainsHits.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(_ time.Duration, removed bool) {
	b.RemoveCount.Add(1)
	if removed {
		b.RemoveRemoved.Add(1)
	}
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(int) {
	b.GrowCount.Add(1)
}

// RecordEvictionFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvictionFailure(int64) {
	b.EvictionFailures.Add(1)
}
