// Package mockserver provides a mock Binance USDⓈ-M futures server for testing.
// It implements the REST endpoints the grid gateway calls and the book ticker
// and user data WebSocket streams.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// unknownOrderCode mirrors Binance's "Unknown order sent." error code.
const unknownOrderCode = -2011

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

// Order represents a resting or finished limit order.
type Order struct {
	OrderID     int64
	Symbol      string
	Side        string
	ReduceOnly  bool
	Quantity    float64
	Price       float64
	AvgPrice    float64
	ExecutedQty float64
	Status      OrderStatus
	TimeInForce string
	CreatedAt   time.Time
}

// Quote is the best bid and ask of a symbol.
type Quote struct {
	Bid float64
	Ask float64
}

// ServerConfig holds configuration for the mock server.
type ServerConfig struct {
	// Quotes seeds the initial best bid/ask per symbol.
	Quotes map[string]Quote
}

// MockFuturesServer provides a mock Binance futures server for testing.
type MockFuturesServer struct {
	mu sync.RWMutex

	// HTTP server
	httpServer *http.Server
	listener   net.Listener

	// WebSocket upgrader
	upgrader websocket.Upgrader

	// State management
	orders     map[int64]*Order
	orderIDSeq int64
	quotes     map[string]Quote
	listenKeys map[string]bool

	// WebSocket connections, guarded by wsMu for both membership and writes
	wsMu        sync.Mutex
	userStreams map[*websocket.Conn]bool
	bookStreams map[*websocket.Conn]string
}

// NewMockFuturesServer creates a new mock futures server.
func NewMockFuturesServer(config ServerConfig) *MockFuturesServer {
	server := &MockFuturesServer{
		mu: sync.RWMutex{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		orders:      make(map[int64]*Order),
		orderIDSeq:  1000,
		quotes:      make(map[string]Quote),
		listenKeys:  make(map[string]bool),
		wsMu:        sync.Mutex{},
		userStreams: make(map[*websocket.Conn]bool),
		bookStreams: make(map[*websocket.Conn]string),
		httpServer:  nil,
		listener:    nil,
	}

	for symbol, quote := range config.Quotes {
		server.quotes[symbol] = quote
	}

	return server
}

// Start starts the mock server on the given address.
// If address is empty or ":0", a random available port is used.
func (s *MockFuturesServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	router := mux.NewRouter()

	// REST API endpoints
	router.HandleFunc("/fapi/v1/order", s.handleCreateOrder).Methods(http.MethodPost)
	router.HandleFunc("/fapi/v1/order", s.handleCancelOrder).Methods(http.MethodDelete)
	router.HandleFunc("/fapi/v1/allOpenOrders", s.handleCancelAllOrders).Methods(http.MethodDelete)
	router.HandleFunc("/fapi/v1/listenKey", s.handleStartUserStream).Methods(http.MethodPost)
	router.HandleFunc("/fapi/v1/listenKey", s.handleKeepaliveUserStream).Methods(http.MethodPut)
	router.HandleFunc("/fapi/v1/listenKey", s.handleCloseUserStream).Methods(http.MethodDelete)

	// WebSocket endpoint: either <symbol>@bookTicker or a listen key
	router.HandleFunc("/ws/{stream}", s.handleWebSocket)

	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop stops the mock server.
func (s *MockFuturesServer) Stop() error {
	s.wsMu.Lock()
	for conn := range s.userStreams {
		conn.Close()
	}
	for conn := range s.bookStreams {
		conn.Close()
	}
	s.userStreams = make(map[*websocket.Conn]bool)
	s.bookStreams = make(map[*websocket.Conn]string)
	s.wsMu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *MockFuturesServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// BaseURL returns the REST base URL for the server.
func (s *MockFuturesServer) BaseURL() string {
	return "http://" + s.Address()
}

// WebSocketURL returns the WebSocket base URL, including the /ws prefix.
func (s *MockFuturesServer) WebSocketURL() string {
	return "ws://" + s.Address() + "/ws"
}

// SetQuote publishes a new best bid/ask. Resting orders the quote crosses are
// filled at their limit price before the quote is streamed.
func (s *MockFuturesServer) SetQuote(symbol string, bid, ask float64) {
	s.mu.Lock()
	s.quotes[symbol] = Quote{Bid: bid, Ask: ask}

	var filled []Order
	for _, order := range s.sortedOrders() {
		if order.Symbol != symbol || order.Status != OrderStatusNew {
			continue
		}

		if crosses(order, bid, ask) {
			s.fill(order, order.Price)
			filled = append(filled, *order)
		}
	}
	s.mu.Unlock()

	for _, order := range filled {
		s.pushOrderUpdate(order)
	}

	s.pushBookTicker(symbol, bid, ask)
}

// GetOrder returns a copy of an order, or nil if it does not exist.
func (s *MockFuturesServer) GetOrder(orderID int64) *Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil
	}

	copied := *order

	return &copied
}

// Orders returns copies of the orders with the given status, oldest first.
func (s *MockFuturesServer) Orders(status OrderStatus) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []Order
	for _, order := range s.sortedOrders() {
		if order.Status == status {
			orders = append(orders, *order)
		}
	}

	return orders
}

// ActiveListenKeys returns the number of listen keys not yet closed.
func (s *MockFuturesServer) ActiveListenKeys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.listenKeys)
}

// StreamCounts returns the number of connected user data and book ticker streams.
func (s *MockFuturesServer) StreamCounts() (userStreams int, bookStreams int) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	return len(s.userStreams), len(s.bookStreams)
}

// REST Handlers

// handleCreateOrder handles POST /fapi/v1/order
func (s *MockFuturesServer) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	params, err := requestParams(r)
	if err != nil {
		http.Error(w, "Failed to parse parameters", http.StatusBadRequest)
		return
	}

	symbol := params.Get("symbol")
	side := params.Get("side")
	orderType := params.Get("type")
	quantityStr := params.Get("quantity")
	priceStr := params.Get("price")

	if symbol == "" || side == "" || orderType != "LIMIT" || quantityStr == "" || priceStr == "" {
		writeAPIError(w, -1102, "Mandatory parameter was not sent, was empty/null, or malformed.")
		return
	}

	quantity, err := strconv.ParseFloat(quantityStr, 64)
	if err != nil || quantity <= 0 {
		writeAPIError(w, -1013, "Invalid quantity.")
		return
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		writeAPIError(w, -1013, "Invalid price.")
		return
	}

	s.mu.Lock()
	s.orderIDSeq++
	order := &Order{
		OrderID:     s.orderIDSeq,
		Symbol:      symbol,
		Side:        side,
		ReduceOnly:  params.Get("reduceOnly") == "true",
		Quantity:    quantity,
		Price:       price,
		AvgPrice:    0,
		ExecutedQty: 0,
		Status:      OrderStatusNew,
		TimeInForce: params.Get("timeInForce"),
		CreatedAt:   time.Now(),
	}
	s.orders[order.OrderID] = order
	created := *order

	// Marketable limit orders take liquidity at the touch.
	var filled *Order
	if quote, ok := s.quotes[symbol]; ok && crosses(order, quote.Bid, quote.Ask) {
		touch := quote.Ask
		if side == "SELL" {
			touch = quote.Bid
		}

		s.fill(order, touch)
		copied := *order
		filled = &copied
	}
	s.mu.Unlock()

	s.pushOrderUpdate(created)
	if filled != nil {
		s.pushOrderUpdate(*filled)
	}

	writeJSON(w, orderResponse(created))
}

// handleCancelOrder handles DELETE /fapi/v1/order
func (s *MockFuturesServer) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	params, err := requestParams(r)
	if err != nil {
		http.Error(w, "Failed to parse parameters", http.StatusBadRequest)
		return
	}

	orderID, err := strconv.ParseInt(params.Get("orderId"), 10, 64)
	if err != nil {
		writeAPIError(w, -1102, "Mandatory parameter 'orderId' was not sent, was empty/null, or malformed.")
		return
	}

	s.mu.Lock()
	order, ok := s.orders[orderID]
	if !ok || order.Symbol != params.Get("symbol") || order.Status != OrderStatusNew {
		s.mu.Unlock()
		writeAPIError(w, unknownOrderCode, "Unknown order sent.")
		return
	}

	order.Status = OrderStatusCanceled
	cancelled := *order
	s.mu.Unlock()

	s.pushOrderUpdate(cancelled)
	writeJSON(w, orderResponse(cancelled))
}

// handleCancelAllOrders handles DELETE /fapi/v1/allOpenOrders
func (s *MockFuturesServer) handleCancelAllOrders(w http.ResponseWriter, r *http.Request) {
	params, err := requestParams(r)
	if err != nil {
		http.Error(w, "Failed to parse parameters", http.StatusBadRequest)
		return
	}

	symbol := params.Get("symbol")

	s.mu.Lock()
	var cancelled []Order
	for _, order := range s.sortedOrders() {
		if order.Symbol == symbol && order.Status == OrderStatusNew {
			order.Status = OrderStatusCanceled
			cancelled = append(cancelled, *order)
		}
	}
	s.mu.Unlock()

	for _, order := range cancelled {
		s.pushOrderUpdate(order)
	}

	writeJSON(w, map[string]interface{}{
		"code": 200,
		"msg":  "The operation of cancel all open order is done.",
	})
}

// handleStartUserStream handles POST /fapi/v1/listenKey
func (s *MockFuturesServer) handleStartUserStream(w http.ResponseWriter, _ *http.Request) {
	listenKey := strings.ReplaceAll(uuid.New().String(), "-", "")

	s.mu.Lock()
	s.listenKeys[listenKey] = true
	s.mu.Unlock()

	writeJSON(w, map[string]interface{}{"listenKey": listenKey})
}

// handleKeepaliveUserStream handles PUT /fapi/v1/listenKey
func (s *MockFuturesServer) handleKeepaliveUserStream(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]interface{}{})
}

// handleCloseUserStream handles DELETE /fapi/v1/listenKey
func (s *MockFuturesServer) handleCloseUserStream(w http.ResponseWriter, r *http.Request) {
	params, err := requestParams(r)
	if err != nil {
		http.Error(w, "Failed to parse parameters", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if listenKey := params.Get("listenKey"); listenKey != "" {
		delete(s.listenKeys, listenKey)
	} else {
		s.listenKeys = make(map[string]bool)
	}
	s.mu.Unlock()

	writeJSON(w, map[string]interface{}{})
}

// WebSocket Handler

// handleWebSocket serves /ws/<symbol>@bookTicker and /ws/<listenKey>.
func (s *MockFuturesServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	stream := mux.Vars(r)["stream"]

	symbol, isBookTicker := strings.CutSuffix(stream, "@bookTicker")
	if !isBookTicker {
		s.mu.RLock()
		known := s.listenKeys[stream]
		s.mu.RUnlock()

		if !known {
			http.Error(w, "Invalid listen key", http.StatusBadRequest)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	if isBookTicker {
		s.bookStreams[conn] = strings.ToUpper(symbol)
	} else {
		s.userStreams[conn] = true
	}
	s.wsMu.Unlock()

	defer func() {
		s.wsMu.Lock()
		delete(s.userStreams, conn)
		delete(s.bookStreams, conn)
		s.wsMu.Unlock()
		conn.Close()
	}()

	// Block until the client goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *MockFuturesServer) pushBookTicker(symbol string, bid, ask float64) {
	now := time.Now().UnixMilli()
	event := map[string]interface{}{
		"e": "bookTicker",
		"u": now,
		"E": now,
		"T": now,
		"s": symbol,
		"b": strconv.FormatFloat(bid, 'f', -1, 64),
		"B": "10",
		"a": strconv.FormatFloat(ask, 'f', -1, 64),
		"A": "10",
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	for conn, subscribed := range s.bookStreams {
		if subscribed == symbol {
			_ = conn.WriteJSON(event)
		}
	}
}

func (s *MockFuturesServer) pushOrderUpdate(order Order) {
	now := time.Now().UnixMilli()
	event := map[string]interface{}{
		"e": "ORDER_TRADE_UPDATE",
		"E": now,
		"T": now,
		"o": map[string]interface{}{
			"s":  order.Symbol,
			"c":  fmt.Sprintf("mock-%d", order.OrderID),
			"S":  order.Side,
			"o":  "LIMIT",
			"f":  order.TimeInForce,
			"q":  formatFloat(order.Quantity),
			"p":  formatFloat(order.Price),
			"ap": formatFloat(order.AvgPrice),
			"sp": "0",
			"x":  executionType(order.Status),
			"X":  string(order.Status),
			"i":  order.OrderID,
			"l":  formatFloat(order.ExecutedQty),
			"z":  formatFloat(order.ExecutedQty),
			"L":  formatFloat(order.AvgPrice),
			"T":  now,
			"R":  order.ReduceOnly,
			"ps": "BOTH",
		},
	}

	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	for conn := range s.userStreams {
		_ = conn.WriteJSON(event)
	}
}

// fill must be called with s.mu held.
func (s *MockFuturesServer) fill(order *Order, price float64) {
	order.Status = OrderStatusFilled
	order.ExecutedQty = order.Quantity
	order.AvgPrice = price
}

// sortedOrders must be called with s.mu held.
func (s *MockFuturesServer) sortedOrders() []*Order {
	orders := make([]*Order, 0, len(s.orders))
	for _, order := range s.orders {
		orders = append(orders, order)
	}

	slices.SortFunc(orders, func(a, b *Order) int {
		return int(a.OrderID - b.OrderID)
	})

	return orders
}

func crosses(order *Order, bid, ask float64) bool {
	if order.Side == "BUY" {
		return ask > 0 && ask <= order.Price
	}

	return bid > 0 && bid >= order.Price
}

func executionType(status OrderStatus) string {
	switch status {
	case OrderStatusFilled:
		return "TRADE"
	case OrderStatusCanceled:
		return "CANCELED"
	default:
		return "NEW"
	}
}

func orderResponse(order Order) map[string]interface{} {
	return map[string]interface{}{
		"symbol":        order.Symbol,
		"orderId":       order.OrderID,
		"clientOrderId": fmt.Sprintf("mock-%d", order.OrderID),
		"price":         formatFloat(order.Price),
		"origQty":       formatFloat(order.Quantity),
		"executedQty":   formatFloat(order.ExecutedQty),
		"cumQuote":      formatFloat(order.ExecutedQty * order.AvgPrice),
		"avgPrice":      formatFloat(order.AvgPrice),
		"reduceOnly":    order.ReduceOnly,
		"status":        string(order.Status),
		"timeInForce":   order.TimeInForce,
		"type":          "LIMIT",
		"side":          order.Side,
		"positionSide":  "BOTH",
		"updateTime":    time.Now().UnixMilli(),
	}
}

// requestParams merges query string and form body parameters. Binance clients
// send DELETE parameters in the body, which http.Request.ParseForm ignores.
func requestParams(r *http.Request) (url.Values, error) {
	params := r.URL.Query()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}

	for key, values := range form {
		params[key] = values
	}

	return params, nil
}

func writeAPIError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code": code,
		"msg":  msg,
	})
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
