package bloomgo

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
)

// Hasher populates hashes with len(hashes) non-negative 64-bit values
// derived from item, such that different items map to effectively
// independent indices.
type Hasher interface {
	Hashes(item []byte, hashes []uint64)
}

// indexMask clears the sign bit so every emitted value is directly usable
// as a modulo operand.
const indexMask = 0x7FFF_FFFF_FFFF_FFFF

// Murmur128 is the default hasher. It computes a single 128-bit murmur3
// hash (h1, h2) of the item and emits h1 + i*h2 masked positive — the
// Kirsch-Mitzenmacher double-hashing construction.
var Murmur128 Hasher = murmur128{}

// Murmur128Seed returns a 128-bit murmur3 hasher with a non-zero seed.
func Murmur128Seed(seed uint32) Hasher {
	return murmur128{seed: seed}
}

type murmur128 struct {
	seed uint32
}

func (m murmur128) Hashes(item []byte, hashes []uint64) {
	h1, h2 := murmur3.SeedSum128(uint64(m.seed), uint64(m.seed), item)
	combined := h1
	for i := range hashes {
		hashes[i] = combined & indexMask
		combined += h2
	}
}

// Murmur32 derives indices from two 32-bit murmur3 rounds, the second
// seeded with the first. Negative combinations are bit-flipped positive.
// Kept for compatibility with 32-bit producers; Murmur128 is the default.
var Murmur32 Hasher = murmur32{}

type murmur32 struct{}

func (murmur32) Hashes(item []byte, hashes []uint64) {
	h1 := int32(murmur3.SeedSum32(0, item))
	h2 := int32(murmur3.SeedSum32(uint32(h1), item))
	for i := range hashes {
		combined := h1 + int32(i+1)*h2
		if combined < 0 {
			combined = ^combined
		}
		hashes[i] = uint64(combined)
	}
}

// XX64 derives indices from XXH64: h1 hashes the item, h2 re-hashes h1,
// and the pair feeds the same double-hashing combination as Murmur128.
var XX64 Hasher = xx64{}

type xx64 struct{}

func (xx64) Hashes(item []byte, hashes []uint64) {
	h1 := xxhash.Sum64(item)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], h1)
	h2 := xxhash.Sum64(buf[:])
	combined := h1
	for i := range hashes {
		hashes[i] = combined & indexMask
		combined += h2
	}
}

// remix32 feeds a 64-bit hash through a seeded 32-bit murmur3 round. The
// cuckoo filter uses it to re-derive fingerprints that masked to zero.
func remix32(hash uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], hash)
	return uint64(murmur3.SeedSum32(17, buf[:]))
}
