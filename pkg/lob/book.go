package lob

import (
	"errors"
	"sort"
	"sync"
)

// Sweep precondition failures. Validation runs before any mutation, so
// a Take that returns one of these leaves the book completely
// unchanged.
var (
	ErrZeroQuantity    = errors.New("cannot take zero quantity")
	ErrEmptyBook       = errors.New("empty book")
	ErrNotEnoughVolume = errors.New("not enough volume in book")
)

// SideBook holds one side's price levels, best price first: descending
// for bids, ascending for asks. Each side carries its own lock, so an
// ask-side sweep and a bid-side sweep may run in parallel while calls
// on the same side are fully serialized. Price-time priority is only
// guaranteed within one side's serialization boundary; nothing orders
// operations across sides, so cross-side invariants (the book never
// crossing, for instance) are not enforced here.
type SideBook struct {
	mu     sync.Mutex
	side   Side
	levels []*PriceLevel
	volume int64
}

// NewSideBook returns an empty book for the given side.
func NewSideBook(side Side) *SideBook {
	return &SideBook{
		side:   side,
		levels: make([]*PriceLevel, 0, 64),
	}
}

// Side returns which side this book holds.
func (b *SideBook) Side() Side {
	return b.side
}

// Top returns the best price by the side's comparator, or false when
// no levels rest.
func (b *SideBook) Top() (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.levels) == 0 {
		return 0, false
	}
	return b.levels[0].Price, true
}

// Depth returns the number of distinct price levels.
func (b *SideBook) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.levels)
}

// Volume returns the total resting volume across all levels. It is
// maintained incrementally, never recomputed.
func (b *SideBook) Volume() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volume
}

// Make queues the order at price, creating the level if absent.
func (b *SideBook) Make(price int64, o *RestingOrder) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.volume += o.Remaining

	if lvl := b.find(price); lvl != nil {
		lvl.Make(o)
		return
	}

	lvl := newPriceLevel(price)
	lvl.Make(o)
	b.levels = append(b.levels, lvl)
	sort.Slice(b.levels, b.less)
}

// Take sweeps up to qty from the best price down. Fill events come
// back best-price-first, then time-priority within each level. Levels
// drained to zero volume are pruned, preserving the order of
// survivors.
func (b *SideBook) Take(qty int64) ([]FillEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.validateTake(qty); err != nil {
		return nil, err
	}

	fills := make([]FillEvent, 0, 8)
	remaining := qty

	for _, lvl := range b.levels {
		lvlFills, left := lvl.Take(remaining)
		fills = append(fills, lvlFills...)
		remaining = left
		if remaining == 0 {
			break
		}
	}

	b.volume -= qty - remaining

	kept := b.levels[:0]
	for _, lvl := range b.levels {
		if lvl.Volume > 0 {
			kept = append(kept, lvl)
		}
	}
	b.levels = kept

	return fills, nil
}

// LevelSnapshot is a read-only view of one price level.
type LevelSnapshot struct {
	Price  int64
	Volume int64
	Orders int
}

// Levels returns a best-first snapshot of the side for market-data
// publication. The snapshot is detached from the book.
func (b *SideBook) Levels() []LevelSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]LevelSnapshot, len(b.levels))
	for i, lvl := range b.levels {
		out[i] = LevelSnapshot{Price: lvl.Price, Volume: lvl.Volume, Orders: lvl.Len()}
	}
	return out
}

func (b *SideBook) validateTake(qty int64) error {
	switch {
	case qty <= 0:
		return ErrZeroQuantity
	case len(b.levels) == 0:
		return ErrEmptyBook
	case qty > b.volume:
		return ErrNotEnoughVolume
	}
	return nil
}

func (b *SideBook) find(price int64) *PriceLevel {
	for _, lvl := range b.levels {
		if lvl.Price == price {
			return lvl
		}
	}
	return nil
}

func (b *SideBook) less(i, j int) bool {
	if b.side == Buy {
		return b.levels[i].Price > b.levels[j].Price
	}
	return b.levels[i].Price < b.levels[j].Price
}
