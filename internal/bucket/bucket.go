// Package bucket provides a logical view over a bit vector that packs
// fixed-width tags into fixed-capacity buckets. The cuckoo filter stores
// fingerprints in multi-slot buckets; the stable filter uses single-slot
// buckets as small saturating counters.
//
// The tag value 0 is reserved and means "empty slot". Writers must never
// store tag 0; the cuckoo filter enforces this by re-mixing fingerprints.
package bucket

import (
	"errors"

	"github.com/hupe1980/bloomgo/internal/bitvec"
)

var (
	// ErrInvalidLayout is returned when the tag geometry is out of range or
	// the underlying bit vector is too small for it.
	ErrInvalidLayout = errors.New("bucket: invalid bucket layout")
)

// Set packs numBuckets buckets of tagsPerBucket slots, each slot holding a
// tag of bitsPerTag bits, into a bit vector. Tags are stored big-endian
// within their slot.
type Set struct {
	bits          bitvec.BitVector
	bitsPerTag    int
	tagsPerBucket int
	numBuckets    int64
}

// New validates the layout and wraps the bit vector. The vector must hold
// at least bitsPerTag*tagsPerBucket*numBuckets bits.
func New(bitsPerTag, tagsPerBucket int, numBuckets int64, bits bitvec.BitVector) (*Set, error) {
	if bitsPerTag < 1 || bitsPerTag > 63 || tagsPerBucket < 1 || numBuckets <= 0 {
		return nil, ErrInvalidLayout
	}
	if bits.BitSize() < int64(bitsPerTag)*int64(tagsPerBucket)*numBuckets {
		return nil, ErrInvalidLayout
	}
	return &Set{
		bits:          bits,
		bitsPerTag:    bitsPerTag,
		tagsPerBucket: tagsPerBucket,
		numBuckets:    numBuckets,
	}, nil
}

// startPos returns the index of the first bit of the given slot.
func (s *Set) startPos(bucketIdx int64, posInBucket int) int64 {
	return bucketIdx*int64(s.tagsPerBucket)*int64(s.bitsPerTag) + int64(posInBucket)*int64(s.bitsPerTag)
}

// ReadTag returns the tag stored in the given slot.
func (s *Set) ReadTag(bucketIdx int64, posInBucket int) uint64 {
	start := s.startPos(bucketIdx, posInBucket)
	var tag uint64
	mask := uint64(1) << (s.bitsPerTag - 1)
	for i := start; i < start+int64(s.bitsPerTag); i++ {
		if s.bits.Get(i) {
			tag |= mask
		}
		mask >>= 1
	}
	return tag
}

// WriteTag overwrites the given slot with tag.
func (s *Set) WriteTag(bucketIdx int64, posInBucket int, tag uint64) {
	start := s.startPos(bucketIdx, posInBucket)
	mask := uint64(1) << (s.bitsPerTag - 1)
	for i := start; i < start+int64(s.bitsPerTag); i++ {
		if tag&mask == 0 {
			s.bits.Unset(i)
		} else {
			s.bits.Set(i)
		}
		mask >>= 1
	}
}

// DeleteTag clears the given slot.
func (s *Set) DeleteTag(bucketIdx int64, posInBucket int) {
	s.WriteTag(bucketIdx, posInBucket, 0)
}

// CheckTag scans the bucket and returns the first position holding tag,
// or -1 if the tag is not present.
func (s *Set) CheckTag(bucketIdx int64, tag uint64) int {
	for pos := 0; pos < s.tagsPerBucket; pos++ {
		if s.ReadTag(bucketIdx, pos) == tag {
			return pos
		}
	}
	return -1
}

// FreePos returns the first empty slot in the bucket, or -1 if the bucket
// is full.
func (s *Set) FreePos(bucketIdx int64) int {
	return s.CheckTag(bucketIdx, 0)
}

// Append stores tag in the first free slot of the bucket. If the tag is
// already present the call is a no-op and reports success. Returns false
// when the bucket is full.
func (s *Set) Append(bucketIdx int64, tag uint64) bool {
	if s.CheckTag(bucketIdx, tag) != -1 {
		return true
	}
	pos := s.FreePos(bucketIdx)
	if pos == -1 {
		return false
	}
	s.WriteTag(bucketIdx, pos, tag)
	return true
}

// NumBuckets returns the number of buckets.
func (s *Set) NumBuckets() int64 {
	return s.numBuckets
}

// TagsPerBucket returns the number of slots per bucket.
func (s *Set) TagsPerBucket() int {
	return s.tagsPerBucket
}

// BitsPerTag returns the tag width in bits.
func (s *Set) BitsPerTag() int {
	return s.bitsPerTag
}

// SizeInBits returns the size of the underlying bit vector.
func (s *Set) SizeInBits() int64 {
	return s.bits.BitSize()
}

// PutAll merges other into this set via the underlying bit vectors.
func (s *Set) PutAll(other *Set) error {
	return s.bits.PutAll(other.bits)
}

// Clear zeroes every bucket.
func (s *Set) Clear() {
	s.bits.Clear()
}

// Close releases the underlying bit vector.
func (s *Set) Close() error {
	return s.bits.Close()
}
