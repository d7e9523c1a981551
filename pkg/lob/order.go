package lob

// Side selects which book an order belongs to and the price priority
// on that book: higher is better for bids, lower is better for asks.
type Side int8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the side a market order sweeps.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderKind tags the OrderRequest variant.
type OrderKind int8

const (
	Limit OrderKind = iota
	Market
)

func (k OrderKind) String() string {
	switch k {
	case Limit:
		return "limit"
	case Market:
		return "market"
	default:
		return "unknown"
	}
}

// OrderRequest is the transient input to Place. A Limit request rests
// at Price on its own side; a Market request sweeps the opposite side
// and ignores Price.
type OrderRequest struct {
	Kind  OrderKind
	Side  Side
	Price int64
	Qty   int64
}

// LimitOrder builds a resting (maker) request.
func LimitOrder(price int64, side Side, qty int64) OrderRequest {
	return OrderRequest{Kind: Limit, Side: side, Price: price, Qty: qty}
}

// MarketOrder builds an aggressive (taker) request with no price limit.
func MarketOrder(side Side, qty int64) OrderRequest {
	return OrderRequest{Kind: Market, Side: side, Qty: qty}
}

// RestingOrder tracks a maker order queued at a price level. It is
// owned exclusively by that level's queue for its whole lifetime;
// Remaining only ever decreases and stays within [0, Size].
type RestingOrder struct {
	ID        OrderID
	Size      int64
	Remaining int64
}

func newRestingOrder(size int64, id OrderID) *RestingOrder {
	return &RestingOrder{ID: id, Size: size, Remaining: size}
}

// take consumes up to qty from the order. It returns the quantity
// actually filled, the order's new remaining size, and the portion of
// qty left unmet.
func (o *RestingOrder) take(qty int64) (filled, remaining, unmet int64) {
	switch {
	case o.Remaining == 0:
		return 0, 0, qty
	case qty >= o.Remaining:
		filled = o.Remaining
		o.Remaining = 0
		return filled, 0, qty - filled
	default:
		o.Remaining -= qty
		return qty, o.Remaining, 0
	}
}
