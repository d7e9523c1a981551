// Package lob implements a price-time priority limit order book: one
// instrument, two independently locked sides, and a wait-free order ID
// sequencer injected at construction.
package lob

import (
	"errors"
	"fmt"
)

// Reserved placement rejections. No code path produces them yet: both
// depend on crossing/time-in-force validation whose product semantics
// (reject a crossing limit outright vs execute it as a marketable
// limit) are still undecided.
var (
	ErrTimeInForce   = errors.New("time in force not satisfied")
	ErrCrossedSpread = errors.New("order crosses the spread")
)

// OrderBook owns both sides of one instrument's book plus the
// sequencer that stamps incoming requests. One instance per traded
// instrument.
type OrderBook struct {
	bids *SideBook
	asks *SideBook
	seq  Sequencer
}

// OrderResult reports the ID assigned to a request and, for market
// orders, the fills the sweep produced.
type OrderResult struct {
	OrderID OrderID
	Fills   []FillEvent
}

// New builds an empty book around the given sequencer. Books sharing
// one sequencer share an ID space; books given independent sequencers
// get independent ID spaces.
func New(seq Sequencer) *OrderBook {
	return &OrderBook{
		bids: NewSideBook(Buy),
		asks: NewSideBook(Sell),
		seq:  seq,
	}
}

// Place is the sole mutating entry point. Every request is stamped
// with a fresh ID before routing, so the ID is available for
// correlation regardless of outcome. Limit orders rest on their own
// side; market orders sweep the opposite side, and a failed sweep
// propagates to the caller wrapped around the take error.
func (ob *OrderBook) Place(req OrderRequest) (OrderResult, error) {
	id := ob.seq.NextOrderID()

	switch req.Kind {
	case Limit:
		ob.sideBook(req.Side).Make(req.Price, newRestingOrder(req.Qty, id))
		return OrderResult{OrderID: id}, nil

	case Market:
		fills, err := ob.sideBook(req.Side.Opposite()).Take(req.Qty)
		if err != nil {
			return OrderResult{}, fmt.Errorf("market order %d: %w", id, err)
		}
		return OrderResult{OrderID: id, Fills: fills}, nil

	default:
		return OrderResult{}, fmt.Errorf("unknown order kind %d", req.Kind)
	}
}

// Bids exposes the bid side for snapshot reads (Top, Depth, Volume,
// Levels). Not part of the matching path.
func (ob *OrderBook) Bids() *SideBook {
	return ob.bids
}

// Asks exposes the ask side for snapshot reads.
func (ob *OrderBook) Asks() *SideBook {
	return ob.asks
}

func (ob *OrderBook) sideBook(s Side) *SideBook {
	if s == Buy {
		return ob.bids
	}
	return ob.asks
}
