package bloomgo

// Filter is the common interface implemented by every variant.
//
// Put and MightContain never return errors; approximate behavior under
// concurrent mutation is part of the contract. Remove and MergeInPlace
// return ErrUnsupportedOperation on variants that do not support them.
type Filter interface {
	// Put inserts item and reports whether the filter state changed.
	// A cuckoo filter reports false when its eviction chain gave up.
	Put(item []byte) bool

	// MightContain reports whether item is possibly in the set. A false
	// result is definitive for variants without false negatives.
	MightContain(item []byte) bool

	// Remove deletes item if the variant supports removal.
	Remove(item []byte) (bool, error)

	// Clear zeroes the filter under a global write barrier.
	Clear()

	// MergeInPlace ORs other into this filter. Operands must be the same
	// variant with identical geometry, else ErrIncompatibleMerge.
	MergeInPlace(other Filter) error

	// ExpectedFpp estimates the current false-positive probability from
	// the filter's fill state.
	ExpectedFpp() float64

	// Close releases the filter's storage. Idempotent.
	Close() error
}

// PutString inserts a string item. Empty strings are ignored.
func PutString(f Filter, item string) bool {
	if item == "" {
		return false
	}
	return f.Put([]byte(item))
}

// ContainsString queries a string item. Empty strings are never contained.
func ContainsString(f Filter, item string) bool {
	if item == "" {
		return false
	}
	return f.MightContain([]byte(item))
}

// RemoveString removes a string item on variants that support removal.
func RemoveString(f Filter, item string) (bool, error) {
	if item == "" {
		return false, nil
	}
	return f.Remove([]byte(item))
}
