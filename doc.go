// Package bloomgo provides a family of approximate set-membership filters
// backed by a shared bit-level storage layer.
//
// # Variants
//
//	// CLASSIC — k bits per item in one vector, no false negatives.
//	f, _ := bloomgo.Classic().ExpectedItems(10_000).FalsePositiveRate(0.01).Build()
//
//	// CUCKOO — fingerprint storage with two-choice hashing, supports Remove.
//	f, _ := bloomgo.Cuckoo().ExpectedItems(10_000).FalsePositiveRate(0.01).Build()
//
//	// STABLE — bounded steady-state false-positive rate for unbounded
//	// streams, at the cost of false negatives.
//	f, _ := bloomgo.Stable().ExpectedItems(10_000).BitsPerBucket(8).Build()
//
//	// SCALABLE — a cascade of partitioned filters added on fill, for data
//	// sets of unknown size.
//	f, _ := bloomgo.Scalable().GrowthHint(10_000).FalsePositiveRate(0.01).Build()
//
// # Storage
//
// Every filter owns a bit vector with one of three backings: heap-resident
// words (the default), off-heap anonymous memory, or an off-heap read-write
// file mapping:
//
//	f, _ := bloomgo.Classic().
//	    ExpectedItems(1_000_000).
//	    OffHeap(true).
//	    FileMapped("/var/lib/app/seen.bloom").
//	    Build()
//
// A file-mapped filter persists its bit state through the OS page cache;
// reopening the same file with the same parameters restores it. The file
// holds the raw little-endian word array with no header, so the caller is
// responsible for reconstructing the build parameters.
//
// # Concurrency
//
// All filter operations are safe for concurrent use. Bit-level access is
// guarded by 32 striped read-write locks; membership queries take the read
// side, insertions and removals the write side, and bulk operations
// (Clear, MergeInPlace) acquire all stripes as a global barrier.
//
// # Accuracy
//
// Filters are approximate by design. Classic, partitioned and scalable
// filters never report false negatives; the stable filter trades false
// negatives for a bounded false-positive rate; the cuckoo filter may
// produce false negatives when an item is removed whose fingerprint
// collided with another insertion, or after a Put has reported the filter
// full, since the eviction chain then drops one stored fingerprint.
package bloomgo
