package bitvec

// Heap is a bit vector backed by an ordinary Go slice.
type Heap struct {
	wordvec
}

var _ BitVector = (*Heap)(nil)

// NewHeap allocates a zeroed heap-resident bit vector of numBits bits.
func NewHeap(numBits int64) (*Heap, error) {
	n, err := NumWords(numBits)
	if err != nil {
		return nil, err
	}
	h := &Heap{}
	h.data = make([]uint64, n)
	h.numBits = numBits
	return h, nil
}

// PutAll implements BitVector.
func (h *Heap) PutAll(other BitVector) error {
	o, ok := other.(*Heap)
	if !ok || o == nil {
		return ErrIncompatible
	}
	if h.numBits != o.numBits {
		return ErrIncompatible
	}
	h.or(&o.wordvec)
	return nil
}

// Close implements BitVector. Heap memory is reclaimed by the garbage
// collector, so this is a no-op.
func (h *Heap) Close() error {
	return nil
}
