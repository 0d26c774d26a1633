package bitvec

import (
	"unsafe"

	"github.com/hupe1980/bloomgo/internal/mmap"
)

// OffHeap is a bit vector living in an anonymous or file-backed memory
// mapping outside the Go heap. Anonymous and file-backed vectors share the
// same word layout and merge freely as long as their sizes match.
type OffHeap struct {
	wordvec
	m *mmap.Mapping
}

var _ BitVector = (*OffHeap)(nil)

// NewOffHeap allocates a zeroed bit vector of numBits bits in an anonymous
// mapping.
func NewOffHeap(numBits int64) (*OffHeap, error) {
	n, err := NumWords(numBits)
	if err != nil {
		return nil, err
	}
	m, err := mmap.MapAnon(int(n) * 8)
	if err != nil {
		return nil, err
	}
	v := &OffHeap{m: m}
	v.data = wordsOf(m.Bytes())
	v.numBits = numBits
	return v, nil
}

// OpenFile maps the file at path as a bit vector of numBits bits. The file
// is created or extended as needed; bits already stored in the file are
// preserved and the cardinality is recomputed from them.
func OpenFile(path string, numBits int64) (*OffHeap, error) {
	n, err := NumWords(numBits)
	if err != nil {
		return nil, err
	}
	m, err := mmap.OpenFile(path, int(n)*8)
	if err != nil {
		return nil, err
	}
	// Filter access is hash-distributed.
	_ = m.Advise(mmap.AccessRandom)

	v := &OffHeap{m: m}
	v.data = wordsOf(m.Bytes())
	v.numBits = numBits
	v.recount()
	return v, nil
}

// PutAll implements BitVector.
func (v *OffHeap) PutAll(other BitVector) error {
	o, ok := other.(*OffHeap)
	if !ok || o == nil {
		return ErrIncompatible
	}
	if v.numBits != o.numBits {
		return ErrIncompatible
	}
	v.or(&o.wordvec)
	return nil
}

// Sync flushes a file-backed vector to disk. No-op for anonymous vectors.
func (v *OffHeap) Sync() error {
	return v.m.Sync()
}

// Close unmaps the memory and closes the backing file if any. Idempotent.
// The vector must not be accessed afterwards.
func (v *OffHeap) Close() error {
	v.data = nil
	return v.m.Close()
}

// wordsOf reinterprets a mapped byte slice as 64-bit words. Mappings are
// page-aligned, which satisfies the alignment required for atomic access.
func wordsOf(b []byte) []uint64 {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), len(b)/8)
}
