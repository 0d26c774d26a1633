// Package stripe provides the fixed 32-way striped read-write locks
// guarding the filters' bit-level operations.
package stripe

import "sync"

// Count is the number of stripes. It must be a power of two so that the
// stripe of an index can be derived with a mask instead of a modulo.
const Count = 32

const mask = Count - 1

// Set is a fixed array of read-write locks. The stripe for bit or bucket
// index i is i & 31, so contention is proportional to collisions on the
// same stripe while parallelism is bounded by Count.
//
// The zero value is ready to use.
type Set struct {
	locks [Count]sync.RWMutex
}

// Lock acquires the write side of the stripe covering index i.
func (s *Set) Lock(i int64) {
	s.locks[i&mask].Lock()
}

// Unlock releases the write side of the stripe covering index i.
func (s *Set) Unlock(i int64) {
	s.locks[i&mask].Unlock()
}

// RLock acquires the read side of the stripe covering index i.
func (s *Set) RLock(i int64) {
	s.locks[i&mask].RLock()
}

// RUnlock releases the read side of the stripe covering index i.
func (s *Set) RUnlock(i int64) {
	s.locks[i&mask].RUnlock()
}

// LockAll acquires the write side of every stripe in ascending order,
// forming a global barrier for bulk operations (clear, merge).
func (s *Set) LockAll() {
	for i := 0; i < Count; i++ {
		s.locks[i].Lock()
	}
}

// UnlockAll releases every stripe in descending order.
func (s *Set) UnlockAll() {
	for i := Count - 1; i >= 0; i-- {
		s.locks[i].Unlock()
	}
}
