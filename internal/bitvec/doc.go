// Package bitvec implements the addressable bit vectors backing all filter
// variants.
//
// Architecture:
//   - 64-bit word layout: bit i lives in word i>>6 at position i&63
//   - Single-bit mutations use atomic word operations, so concurrent
//     writers striped over different bits never corrupt a shared word
//   - Cardinality is tracked with an atomic counter and recomputed from
//     the raw words after bulk operations (merge, file reopen)
//
// Three backings are provided:
//   - Heap: an ordinary Go slice, Close is a no-op
//   - OffHeap: an anonymous mapping outside the Go heap
//   - OffHeap (file): a shared read-write file mapping; the on-disk format
//     is the raw little-endian word array with no header
package bitvec
