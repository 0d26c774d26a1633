// Package mmap provides read-write memory mappings for the off-heap bit
// vector backings.
//
// # Overview
//
// Two kinds of mappings are supported:
//
//   - File mappings: OpenFile extends the file to the requested length and
//     maps it shared and writable. Mutations land in the page cache and are
//     persisted by the OS; reopening the same file restores the stored
//     state.
//   - Anonymous mappings: MapAnon returns zeroed memory outside the Go
//     heap, used for off-heap bit vectors without a backing file.
//
// # Platform Support
//
// The package provides a unified API across platforms:
//
//   - Unix (Linux, macOS, BSD): Uses mmap(2) with madvise(2) for access hints
//   - Windows: Uses CreateFileMapping/MapViewOfFile and VirtualAlloc
//     (madvise is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close() is idempotent and
// protected by atomic operations. Callers must ensure no goroutines access
// Bytes() after Close() returns.
package mmap
