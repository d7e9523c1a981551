// Package api is the HTTP face of the venue: order submission, market
// data snapshots, and a WebSocket trade feed.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/jmoon-dev/matchd/pkg/engine"
	"github.com/jmoon-dev/matchd/pkg/lob"
	"github.com/jmoon-dev/matchd/pkg/storage"
)

// Server handles REST API and WebSocket connections.
type Server struct {
	engine *engine.Engine
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

// NewServer wires the REST routes and the WebSocket hub around the
// engine. Install it as the engine's trade publisher to make trades
// reach subscribers.
func NewServer(eng *engine.Engine, log *zap.SugaredLogger) *Server {
	s := &Server{
		engine: eng,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{symbol}/orderbook", s.handleGetOrderbook).Methods("GET")
	api.HandleFunc("/orders", s.handleSubmitOrder).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	})
	return c.Handler(s.router)
}

// Hub exposes the WebSocket hub so the caller can run its loop.
func (s *Server) Hub() *Hub {
	return s.hub
}

// PublishTrade implements engine.TradePublisher: executed trades go
// out on the trades@SYMBOL channel.
func (s *Server) PublishTrade(t storage.TradeRecord) {
	s.hub.BroadcastToChannel("trades@"+t.Symbol, WSMessage{Type: "trade", Data: t})
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	markets := s.engine.Markets()

	response := make([]MarketInfo, len(markets))
	for i, m := range markets {
		response[i] = marketInfo(m)
	}
	respondJSON(w, response)
}

func (s *Server) handleGetOrderbook(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	book, err := s.engine.Book(symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, "market not found", symbol)
		return
	}

	response := OrderbookSnapshot{
		Symbol:    symbol,
		Bids:      priceLevels(book.Bids().Levels()),
		Asks:      priceLevels(book.Asks().Levels()),
		BidVolume: book.Bids().Volume(),
		AskVolume: book.Asks().Volume(),
		Timestamp: time.Now().UnixMilli(),
	}
	respondJSON(w, response)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	orderReq, err := toOrderRequest(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
		return
	}

	res, err := s.engine.PlaceOrder(req.Symbol, orderReq)
	if err != nil {
		s.respondPlaceError(w, err)
		return
	}

	fills := make([]FillInfo, len(res.Fills))
	for i, f := range res.Fills {
		fills[i] = FillInfo{MakerID: uint64(f.OrderID), Price: f.Price, Qty: f.Qty}
	}
	respondJSON(w, SubmitOrderResponse{OrderID: uint64(res.OrderID), Fills: fills})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// respondPlaceError maps the engine/book error taxonomy onto HTTP
// statuses. Sweep precondition failures are well-formed requests the
// book cannot satisfy right now, hence 422.
func (s *Server) respondPlaceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrMarketNotFound):
		respondError(w, http.StatusNotFound, "market not found", err.Error())
	case errors.Is(err, engine.ErrInvalidOrder):
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
	case errors.Is(err, lob.ErrZeroQuantity),
		errors.Is(err, lob.ErrEmptyBook),
		errors.Is(err, lob.ErrNotEnoughVolume):
		respondError(w, http.StatusUnprocessableEntity, "order rejected", err.Error())
	default:
		s.log.Errorw("place_order_failed", "err", err)
		respondError(w, http.StatusInternalServerError, "internal error", "")
	}
}

// ==============================
// Helpers
// ==============================

func toOrderRequest(req SubmitOrderRequest) (lob.OrderRequest, error) {
	var side lob.Side
	switch req.Side {
	case "buy":
		side = lob.Buy
	case "sell":
		side = lob.Sell
	default:
		return lob.OrderRequest{}, errors.New("side must be \"buy\" or \"sell\"")
	}

	switch req.Type {
	case "limit":
		return lob.LimitOrder(req.Price, side, req.Qty), nil
	case "market":
		return lob.MarketOrder(side, req.Qty), nil
	default:
		return lob.OrderRequest{}, errors.New("type must be \"limit\" or \"market\"")
	}
}

func marketInfo(m *engine.Market) MarketInfo {
	return MarketInfo{
		Symbol:       m.Symbol,
		BaseAsset:    m.BaseAsset,
		QuoteAsset:   m.QuoteAsset,
		Status:       m.Status.String(),
		TickSize:     m.TickSize,
		LotSize:      m.LotSize,
		MinOrderSize: m.MinOrderSize,
		MaxOrderSize: m.MaxOrderSize,
	}
}

func priceLevels(levels []lob.LevelSnapshot) []PriceLevel {
	out := make([]PriceLevel, len(levels))
	for i, lvl := range levels {
		out[i] = PriceLevel{Price: lvl.Price, Size: lvl.Volume, Orders: lvl.Orders}
	}
	return out
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
	}
}

func respondError(w http.ResponseWriter, status int, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: msg, Detail: detail})
}
