package api

// API request/response types for REST endpoints and WebSocket messages

// ==============================
// REST Types
// ==============================

// SubmitOrderRequest is the body of POST /api/v1/orders.
type SubmitOrderRequest struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`  // "buy" or "sell"
	Type   string `json:"type"`  // "limit" or "market"
	Price  int64  `json:"price"` // ignored for market orders
	Qty    int64  `json:"qty"`
}

// SubmitOrderResponse reports the assigned order ID and any fills a
// market order's sweep produced.
type SubmitOrderResponse struct {
	OrderID uint64     `json:"orderId"`
	Fills   []FillInfo `json:"fills,omitempty"`
}

// FillInfo is one maker fill as seen by the taker.
type FillInfo struct {
	MakerID uint64 `json:"makerId"`
	Price   int64  `json:"price"`
	Qty     int64  `json:"qty"`
}

// MarketInfo represents a market's static configuration.
type MarketInfo struct {
	Symbol       string `json:"symbol"`
	BaseAsset    string `json:"baseAsset"`
	QuoteAsset   string `json:"quoteAsset"`
	Status       string `json:"status"`
	TickSize     int64  `json:"tickSize"`
	LotSize      int64  `json:"lotSize"`
	MinOrderSize int64  `json:"minOrderSize"`
	MaxOrderSize int64  `json:"maxOrderSize"`
}

// OrderbookSnapshot represents current orderbook state.
type OrderbookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"` // sorted high to low
	Asks      []PriceLevel `json:"asks"` // sorted low to high
	BidVolume int64        `json:"bidVolume"`
	AskVolume int64        `json:"askVolume"`
	Timestamp int64        `json:"timestamp"` // unix milliseconds
}

// PriceLevel is one aggregated level of the book.
type PriceLevel struct {
	Price  int64 `json:"price"`
	Size   int64 `json:"size"`
	Orders int   `json:"orders"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSMessage is the base structure for all WebSocket messages.
type WSMessage struct {
	Type string      `json:"type"` // "trade"
	Data interface{} `json:"data"`
}

// WSSubscribeRequest is a client subscription change.
type WSSubscribeRequest struct {
	Op       string   `json:"op"` // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"`
}
