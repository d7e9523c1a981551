package engine

import (
	"fmt"

	"github.com/jmoon-dev/matchd/pkg/lob"
)

// MarketStatus is the trading status of a listed instrument.
type MarketStatus int8

const (
	Active MarketStatus = iota
	Paused
	Closed
)

func (ms MarketStatus) String() string {
	switch ms {
	case Active:
		return "Active"
	case Paused:
		return "Paused"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Market holds the static trading parameters for one listed
// instrument. Prices are integer ticks, quantities integer lots.
type Market struct {
	Symbol     string
	BaseAsset  string
	QuoteAsset string
	Status     MarketStatus

	TickSize     int64
	LotSize      int64
	MinOrderSize int64
	MaxOrderSize int64
}

// NewMarket lists a market with conservative defaults: unit tick and
// lot, order sizes between 1 and 1,000,000 lots.
func NewMarket(symbol, base, quote string) *Market {
	return &Market{
		Symbol:       symbol,
		BaseAsset:    base,
		QuoteAsset:   quote,
		Status:       Active,
		TickSize:     1,
		LotSize:      1,
		MinOrderSize: 1,
		MaxOrderSize: 1_000_000,
	}
}

// ValidateOrder checks an incoming request against the market's
// parameters before it reaches the book. Market orders carry no price,
// so price checks apply to limit orders only.
func (m *Market) ValidateOrder(req lob.OrderRequest) error {
	if m.Status != Active {
		return fmt.Errorf("market %s is %s", m.Symbol, m.Status)
	}

	if req.Qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", req.Qty)
	}
	if req.Qty%m.LotSize != 0 {
		return fmt.Errorf("quantity %d not a multiple of lot size %d", req.Qty, m.LotSize)
	}
	if req.Qty < m.MinOrderSize {
		return fmt.Errorf("quantity %d below minimum order size %d", req.Qty, m.MinOrderSize)
	}
	if req.Qty > m.MaxOrderSize {
		return fmt.Errorf("quantity %d exceeds maximum order size %d", req.Qty, m.MaxOrderSize)
	}

	if req.Kind == lob.Limit {
		if req.Price <= 0 {
			return fmt.Errorf("price must be positive, got %d", req.Price)
		}
		if req.Price%m.TickSize != 0 {
			return fmt.Errorf("price %d not a multiple of tick size %d", req.Price, m.TickSize)
		}
	}

	return nil
}
