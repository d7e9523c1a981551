// Package engine is the request-handling layer around the matching
// core: it keeps the registry of listed markets, validates incoming
// orders, drives the per-market books, and fans executed trades out to
// the journal and live subscribers.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jmoon-dev/matchd/pkg/lob"
	"github.com/jmoon-dev/matchd/pkg/storage"
)

var (
	ErrMarketNotFound = errors.New("market not found")
	ErrInvalidOrder   = errors.New("invalid order")
)

// TradePublisher receives executed trades for fan-out to live
// subscribers. Implementations must not block.
type TradePublisher interface {
	PublishTrade(t storage.TradeRecord)
}

type listing struct {
	market *Market
	book   *lob.OrderBook
}

// Engine routes order flow to per-market books. All books share the
// one injected sequencer, so order IDs are unique venue-wide.
type Engine struct {
	mu       sync.RWMutex
	listings map[string]*listing

	seq     lob.Sequencer
	journal *storage.TradeJournal
	pub     TradePublisher
	log     *zap.SugaredLogger
}

// New builds an engine around a sequencer and a trade journal. journal
// and pub may be nil (tests, tooling); trades are then only logged.
func New(seq lob.Sequencer, journal *storage.TradeJournal, log *zap.SugaredLogger) *Engine {
	return &Engine{
		listings: make(map[string]*listing),
		seq:      seq,
		journal:  journal,
		log:      log,
	}
}

// SetPublisher installs the live trade feed. Must be called before
// serving traffic.
func (e *Engine) SetPublisher(pub TradePublisher) {
	e.pub = pub
}

// RegisterMarket lists a market and creates its empty book.
func (e *Engine) RegisterMarket(m *Market) error {
	if m == nil {
		return fmt.Errorf("cannot register nil market")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.listings[m.Symbol]; exists {
		return fmt.Errorf("market %s already registered", m.Symbol)
	}

	e.listings[m.Symbol] = &listing{market: m, book: lob.New(e.seq)}
	e.log.Infow("market_registered", "symbol", m.Symbol, "tick_size", m.TickSize, "lot_size", m.LotSize)
	return nil
}

// Markets returns all listed markets.
func (e *Engine) Markets() []*Market {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*Market, 0, len(e.listings))
	for _, l := range e.listings {
		out = append(out, l.market)
	}
	return out
}

// Book returns the order book for symbol.
func (e *Engine) Book(symbol string) (*lob.OrderBook, error) {
	l, err := e.listing(symbol)
	if err != nil {
		return nil, err
	}
	return l.book, nil
}

// Market returns the market parameters for symbol.
func (e *Engine) Market(symbol string) (*Market, error) {
	l, err := e.listing(symbol)
	if err != nil {
		return nil, err
	}
	return l.market, nil
}

// PlaceOrder validates the request against the market's parameters and
// hands it to the book. Fills from a market-order sweep are journaled
// and published before the result returns.
func (e *Engine) PlaceOrder(symbol string, req lob.OrderRequest) (lob.OrderResult, error) {
	l, err := e.listing(symbol)
	if err != nil {
		return lob.OrderResult{}, err
	}

	if err := l.market.ValidateOrder(req); err != nil {
		return lob.OrderResult{}, fmt.Errorf("%w: %s", ErrInvalidOrder, err)
	}

	res, err := l.book.Place(req)
	if err != nil {
		e.log.Infow("order_rejected",
			"symbol", symbol, "side", req.Side.String(), "kind", req.Kind.String(),
			"qty", req.Qty, "err", err)
		return lob.OrderResult{}, err
	}

	e.log.Infow("order_placed",
		"symbol", symbol, "order_id", uint64(res.OrderID),
		"side", req.Side.String(), "kind", req.Kind.String(),
		"price", req.Price, "qty", req.Qty, "fills", len(res.Fills))

	if len(res.Fills) > 0 {
		e.recordFills(symbol, res.OrderID, res.Fills)
	}

	return res, nil
}

func (e *Engine) recordFills(symbol string, taker lob.OrderID, fills []lob.FillEvent) {
	now := time.Now().UnixMilli()

	for _, f := range fills {
		t := storage.TradeRecord{
			ID:      uuid.NewString(),
			Symbol:  symbol,
			TakerID: uint64(taker),
			MakerID: uint64(f.OrderID),
			Price:   f.Price,
			Qty:     f.Qty,
			Ts:      now,
		}

		if e.journal != nil {
			if err := e.journal.Append(&t); err != nil {
				// The match already happened; losing one journal write
				// must not roll it back.
				e.log.Errorw("trade_journal_append_failed", "symbol", symbol, "err", err)
			}
		}
		if e.pub != nil {
			e.pub.PublishTrade(t)
		}
	}
}

func (e *Engine) listing(symbol string) (*listing, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	l, exists := e.listings[symbol]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	return l, nil
}
