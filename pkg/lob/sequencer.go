package lob

import "sync/atomic"

// OrderID uniquely identifies an order within a venue. IDs are
// strictly increasing in issuance order and never reused; they carry
// no other semantics and exist purely to correlate fills.
type OrderID uint64

// Sequencer issues order IDs. Implementations must be safe for
// concurrent use without coordination with the book locks.
type Sequencer interface {
	NextOrderID() OrderID
}

// AtomicSequencer issues IDs from a single shared counter. Wait-free:
// NextOrderID never blocks and never fails.
type AtomicSequencer struct {
	counter atomic.Uint64
}

// NewSequencer returns a sequencer whose first issued ID is 1.
func NewSequencer() *AtomicSequencer {
	return &AtomicSequencer{}
}

func (s *AtomicSequencer) NextOrderID() OrderID {
	return OrderID(s.counter.Add(1))
}
