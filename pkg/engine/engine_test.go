package engine

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/jmoon-dev/matchd/pkg/lob"
	"github.com/jmoon-dev/matchd/pkg/storage"
)

type capturingPublisher struct {
	trades []storage.TradeRecord
}

func (p *capturingPublisher) PublishTrade(t storage.TradeRecord) {
	p.trades = append(p.trades, t)
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(lob.NewSequencer(), nil, zap.NewNop().Sugar())
	if err := e.RegisterMarket(NewMarket("BTC-USDT", "BTC", "USDT")); err != nil {
		t.Fatalf("register market: %v", err)
	}
	return e
}

func TestRegisterMarketRejectsDuplicates(t *testing.T) {
	e := newTestEngine(t)
	if err := e.RegisterMarket(NewMarket("BTC-USDT", "BTC", "USDT")); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if len(e.Markets()) != 1 {
		t.Fatalf("markets = %d, want 1", len(e.Markets()))
	}
}

func TestPlaceOrderUnknownMarket(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.PlaceOrder("DOGE-USDT", lob.LimitOrder(10, lob.Buy, 1))
	if !errors.Is(err, ErrMarketNotFound) {
		t.Fatalf("err = %v, want ErrMarketNotFound", err)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	e := newTestEngine(t)
	m, err := e.Market("BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	m.TickSize = 5
	m.LotSize = 10
	m.MinOrderSize = 10
	m.MaxOrderSize = 1000

	tests := []struct {
		name    string
		req     lob.OrderRequest
		wantErr bool
	}{
		{name: "valid limit", req: lob.LimitOrder(100, lob.Buy, 50)},
		{name: "valid market", req: lob.MarketOrder(lob.Buy, 50), wantErr: true}, // empty book, but validation passes; see below
		{name: "zero qty", req: lob.LimitOrder(100, lob.Buy, 0), wantErr: true},
		{name: "off-lot qty", req: lob.LimitOrder(100, lob.Buy, 55), wantErr: true},
		{name: "below min size", req: lob.LimitOrder(100, lob.Buy, 0), wantErr: true},
		{name: "above max size", req: lob.LimitOrder(100, lob.Buy, 2000), wantErr: true},
		{name: "zero price limit", req: lob.LimitOrder(0, lob.Sell, 50), wantErr: true},
		{name: "off-tick price", req: lob.LimitOrder(103, lob.Sell, 50), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.PlaceOrder("BTC-USDT", tt.req)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	// Parameter violations must surface as ErrInvalidOrder; the market
	// order above fails deeper, in the sweep, and must not.
	_, err = e.PlaceOrder("BTC-USDT", lob.LimitOrder(103, lob.Sell, 50))
	if !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("off-tick err = %v, want ErrInvalidOrder", err)
	}
	_, err = e.PlaceOrder("BTC-USDT", lob.MarketOrder(lob.Sell, 500))
	if errors.Is(err, ErrInvalidOrder) {
		t.Errorf("sweep failure misreported as ErrInvalidOrder: %v", err)
	}
	if !errors.Is(err, lob.ErrNotEnoughVolume) {
		t.Errorf("sweep failure = %v, want lob.ErrNotEnoughVolume", err)
	}
}

func TestPausedMarketRejectsOrders(t *testing.T) {
	e := newTestEngine(t)
	m, _ := e.Market("BTC-USDT")
	m.Status = Paused

	_, err := e.PlaceOrder("BTC-USDT", lob.LimitOrder(100, lob.Buy, 10))
	if !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("err = %v, want ErrInvalidOrder", err)
	}
}

func TestPlaceOrderJournalsAndPublishesFills(t *testing.T) {
	journal, err := storage.OpenJournal(t.TempDir())
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer journal.Close()

	e := New(lob.NewSequencer(), journal, zap.NewNop().Sugar())
	if err := e.RegisterMarket(NewMarket("BTC-USDT", "BTC", "USDT")); err != nil {
		t.Fatal(err)
	}
	pub := &capturingPublisher{}
	e.SetPublisher(pub)

	if _, err := e.PlaceOrder("BTC-USDT", lob.LimitOrder(100, lob.Sell, 50)); err != nil {
		t.Fatal(err)
	}
	if _, err := e.PlaceOrder("BTC-USDT", lob.LimitOrder(101, lob.Sell, 50)); err != nil {
		t.Fatal(err)
	}

	res, err := e.PlaceOrder("BTC-USDT", lob.MarketOrder(lob.Buy, 75))
	if err != nil {
		t.Fatalf("market buy: %v", err)
	}
	if len(res.Fills) != 2 {
		t.Fatalf("fills = %d, want 2", len(res.Fills))
	}

	if len(pub.trades) != 2 {
		t.Fatalf("published %d trades, want 2", len(pub.trades))
	}
	for i, tr := range pub.trades {
		if tr.TakerID != uint64(res.OrderID) {
			t.Errorf("trade %d taker = %d, want %d", i, tr.TakerID, res.OrderID)
		}
		if tr.Symbol != "BTC-USDT" {
			t.Errorf("trade %d symbol = %q", i, tr.Symbol)
		}
		if tr.ID == "" {
			t.Errorf("trade %d missing id", i)
		}
	}
	if pub.trades[0].Price != 100 || pub.trades[0].Qty != 50 {
		t.Errorf("first trade = %+v, want price 100 qty 50", pub.trades[0])
	}
	if pub.trades[1].Price != 101 || pub.trades[1].Qty != 25 {
		t.Errorf("second trade = %+v, want price 101 qty 25", pub.trades[1])
	}

	if got := journal.LastSeq(); got != 2 {
		t.Errorf("journal seq = %d, want 2", got)
	}
}

func TestBooksShareIDSpaceAcrossMarkets(t *testing.T) {
	e := newTestEngine(t)
	if err := e.RegisterMarket(NewMarket("ETH-USDT", "ETH", "USDT")); err != nil {
		t.Fatal(err)
	}

	a, err := e.PlaceOrder("BTC-USDT", lob.LimitOrder(100, lob.Buy, 1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.PlaceOrder("ETH-USDT", lob.LimitOrder(100, lob.Buy, 1))
	if err != nil {
		t.Fatal(err)
	}
	if a.OrderID == b.OrderID {
		t.Fatalf("markets issued duplicate order ID %d", a.OrderID)
	}
}
