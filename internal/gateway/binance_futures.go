package gateway

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/internal/utils"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"go.uber.org/zap"
)

const (
	// binanceUnknownOrderCode is returned when cancelling an order that is
	// already filled, cancelled or never existed.
	binanceUnknownOrderCode = -2011

	// DefaultListenKeyKeepalive is how often the user data listen key is refreshed.
	// Binance expires idle keys after 60 minutes.
	DefaultListenKeyKeepalive = 30 * time.Minute

	requestTimeout = 10 * time.Second
)

// Service interfaces for mocking the Binance futures API

// FuturesCreateOrderService interface for creating orders.
type FuturesCreateOrderService interface {
	Symbol(symbol string) FuturesCreateOrderService
	Side(side futures.SideType) FuturesCreateOrderService
	Type(orderType futures.OrderType) FuturesCreateOrderService
	TimeInForce(tif futures.TimeInForceType) FuturesCreateOrderService
	Quantity(quantity string) FuturesCreateOrderService
	Price(price string) FuturesCreateOrderService
	ReduceOnly(reduceOnly bool) FuturesCreateOrderService
	Do(ctx context.Context) (*futures.CreateOrderResponse, error)
}

// FuturesCancelOrderService interface for cancelling a single order.
type FuturesCancelOrderService interface {
	Symbol(symbol string) FuturesCancelOrderService
	OrderID(orderID int64) FuturesCancelOrderService
	Do(ctx context.Context) (*futures.CancelOrderResponse, error)
}

// FuturesCancelAllOpenOrdersService interface for cancelling every open order of a symbol.
type FuturesCancelAllOpenOrdersService interface {
	Symbol(symbol string) FuturesCancelAllOpenOrdersService
	Do(ctx context.Context) error
}

// FuturesStartUserStreamService interface for creating a listen key.
type FuturesStartUserStreamService interface {
	Do(ctx context.Context) (string, error)
}

// FuturesListenKeyService interface for keepalive and close of a listen key.
type FuturesListenKeyService interface {
	ListenKey(listenKey string) FuturesListenKeyService
	Do(ctx context.Context) error
}

// FuturesClient abstracts the Binance futures REST client for testing.
type FuturesClient interface {
	NewCreateOrderService() FuturesCreateOrderService
	NewCancelOrderService() FuturesCancelOrderService
	NewCancelAllOpenOrdersService() FuturesCancelAllOpenOrdersService
	NewStartUserStreamService() FuturesStartUserStreamService
	NewKeepaliveUserStreamService() FuturesListenKeyService
	NewCloseUserStreamService() FuturesListenKeyService
}

// OrderTradeEvent is the subset of an ORDER_TRADE_UPDATE user data event the
// gateway needs.
type OrderTradeEvent struct {
	Symbol               string
	OrderID              int64
	Side                 string
	ReduceOnly           bool
	Status               string
	OriginalPrice        string
	AveragePrice         string
	LastFilledPrice      string
	AccumulatedFilledQty string
}

// OrderTradeHandler handles order trade events.
type OrderTradeHandler func(event *OrderTradeEvent)

// ErrorHandler handles websocket errors.
type ErrorHandler func(err error)

// UserDataStreamService abstracts the user data websocket for testing.
type UserDataStreamService interface {
	WsOrderTradeServe(listenKey string, handler OrderTradeHandler, errHandler ErrorHandler) (doneC, stopC chan struct{}, err error)
}

// realFuturesClient wraps the actual futures.Client.
type realFuturesClient struct {
	client *futures.Client
}

func (r *realFuturesClient) NewCreateOrderService() FuturesCreateOrderService {
	return &realCreateOrderService{service: r.client.NewCreateOrderService()}
}

func (r *realFuturesClient) NewCancelOrderService() FuturesCancelOrderService {
	return &realCancelOrderService{service: r.client.NewCancelOrderService()}
}

func (r *realFuturesClient) NewCancelAllOpenOrdersService() FuturesCancelAllOpenOrdersService {
	return &realCancelAllOpenOrdersService{service: r.client.NewCancelAllOpenOrdersService()}
}

func (r *realFuturesClient) NewStartUserStreamService() FuturesStartUserStreamService {
	return &realStartUserStreamService{service: r.client.NewStartUserStreamService()}
}

func (r *realFuturesClient) NewKeepaliveUserStreamService() FuturesListenKeyService {
	return &realKeepaliveUserStreamService{service: r.client.NewKeepaliveUserStreamService()}
}

func (r *realFuturesClient) NewCloseUserStreamService() FuturesListenKeyService {
	return &realCloseUserStreamService{service: r.client.NewCloseUserStreamService()}
}

// Real service wrappers

type realCreateOrderService struct {
	service *futures.CreateOrderService
}

func (s *realCreateOrderService) Symbol(symbol string) FuturesCreateOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCreateOrderService) Side(side futures.SideType) FuturesCreateOrderService {
	s.service = s.service.Side(side)

	return s
}

func (s *realCreateOrderService) Type(orderType futures.OrderType) FuturesCreateOrderService {
	s.service = s.service.Type(orderType)

	return s
}

func (s *realCreateOrderService) TimeInForce(tif futures.TimeInForceType) FuturesCreateOrderService {
	s.service = s.service.TimeInForce(tif)

	return s
}

func (s *realCreateOrderService) Quantity(quantity string) FuturesCreateOrderService {
	s.service = s.service.Quantity(quantity)

	return s
}

func (s *realCreateOrderService) Price(price string) FuturesCreateOrderService {
	s.service = s.service.Price(price)

	return s
}

func (s *realCreateOrderService) ReduceOnly(reduceOnly bool) FuturesCreateOrderService {
	s.service = s.service.ReduceOnly(reduceOnly)

	return s
}

func (s *realCreateOrderService) Do(ctx context.Context) (*futures.CreateOrderResponse, error) {
	return s.service.Do(ctx)
}

type realCancelOrderService struct {
	service *futures.CancelOrderService
}

func (s *realCancelOrderService) Symbol(symbol string) FuturesCancelOrderService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCancelOrderService) OrderID(orderID int64) FuturesCancelOrderService {
	s.service = s.service.OrderID(orderID)

	return s
}

func (s *realCancelOrderService) Do(ctx context.Context) (*futures.CancelOrderResponse, error) {
	return s.service.Do(ctx)
}

type realCancelAllOpenOrdersService struct {
	service *futures.CancelAllOpenOrdersService
}

func (s *realCancelAllOpenOrdersService) Symbol(symbol string) FuturesCancelAllOpenOrdersService {
	s.service = s.service.Symbol(symbol)

	return s
}

func (s *realCancelAllOpenOrdersService) Do(ctx context.Context) error {
	return s.service.Do(ctx)
}

type realStartUserStreamService struct {
	service *futures.StartUserStreamService
}

func (s *realStartUserStreamService) Do(ctx context.Context) (string, error) {
	return s.service.Do(ctx)
}

type realKeepaliveUserStreamService struct {
	service *futures.KeepaliveUserStreamService
}

func (s *realKeepaliveUserStreamService) ListenKey(listenKey string) FuturesListenKeyService {
	s.service = s.service.ListenKey(listenKey)

	return s
}

func (s *realKeepaliveUserStreamService) Do(ctx context.Context) error {
	return s.service.Do(ctx)
}

type realCloseUserStreamService struct {
	service *futures.CloseUserStreamService
}

func (s *realCloseUserStreamService) ListenKey(listenKey string) FuturesListenKeyService {
	s.service = s.service.ListenKey(listenKey)

	return s
}

func (s *realCloseUserStreamService) Do(ctx context.Context) error {
	return s.service.Do(ctx)
}

// realUserDataStream serves the futures user data websocket and forwards
// order trade updates.
type realUserDataStream struct{}

func (realUserDataStream) WsOrderTradeServe(listenKey string, handler OrderTradeHandler, errHandler ErrorHandler) (chan struct{}, chan struct{}, error) {
	return futures.WsUserDataServe(listenKey, func(event *futures.WsUserDataEvent) {
		if event.Event != futures.UserDataEventTypeOrderTradeUpdate {
			return
		}

		update := event.OrderTradeUpdate
		handler(&OrderTradeEvent{
			Symbol:               update.Symbol,
			OrderID:              update.ID,
			Side:                 string(update.Side),
			ReduceOnly:           update.IsReduceOnly,
			Status:               string(update.Status),
			OriginalPrice:        update.OriginalPrice,
			AveragePrice:         update.AveragePrice,
			LastFilledPrice:      update.LastFilledPrice,
			AccumulatedFilledQty: update.AccumulatedFilledQty,
		})
	}, futures.ErrHandler(errHandler))
}

// BinanceFuturesGateway routes order intents to Binance USDⓈ-M futures in
// one-way position mode. Order outcomes arrive through the user data stream.
type BinanceFuturesGateway struct {
	symbol    string
	config    BinanceConfig
	client    FuturesClient
	stream    UserDataStreamService
	queue     *UpdateQueue
	log       *logger.Logger
	keepalive time.Duration

	mu        sync.Mutex
	listenKey string
}

// NewBinanceFuturesGateway creates a gateway backed by the live Binance API.
// If config.Testnet is true, requests go to the futures testnet; config.BaseURL
// takes precedence over both.
func NewBinanceFuturesGateway(symbol string, config BinanceConfig, log *logger.Logger) (*BinanceFuturesGateway, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Testnet {
		futures.UseTestnet = true
	}

	client := futures.NewClient(config.ApiKey, config.SecretKey)
	if config.BaseURL != "" {
		client.BaseURL = config.BaseURL
	}

	return newBinanceFuturesGatewayWithClient(symbol, config, &realFuturesClient{client: client}, realUserDataStream{}, log), nil
}

// newBinanceFuturesGatewayWithClient creates a gateway with custom client and stream.
// This is used for testing with mock clients.
func newBinanceFuturesGatewayWithClient(
	symbol string,
	config BinanceConfig,
	client FuturesClient,
	stream UserDataStreamService,
	log *logger.Logger,
) *BinanceFuturesGateway {
	return &BinanceFuturesGateway{
		symbol:    symbol,
		config:    config.WithDefaults(),
		client:    client,
		stream:    stream,
		queue:     NewUpdateQueue(),
		log:       log.Named("binance"),
		keepalive: DefaultListenKeyKeepalive,
		mu:        sync.Mutex{},
		listenKey: "",
	}
}

// Submit places a GTC limit order. Sell and cover intents are sent reduce-only.
func (b *BinanceFuturesGateway) Submit(intent types.OrderIntent) ([]string, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	side, reduceOnly, err := mapSide(intent.Side)
	if err != nil {
		return nil, err
	}

	quantity := utils.RoundToDecimalPrecision(intent.Size, b.config.QuantityPrecision)
	if quantity <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidOrderIntent,
			"order size %v is too small after rounding to %d decimal places", intent.Size, b.config.QuantityPrecision)
	}

	price := utils.RoundPriceForSide(intent.Price, b.config.PricePrecision, side == futures.SideTypeBuy)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	response, err := b.client.NewCreateOrderService().
		Symbol(b.symbol).
		Side(side).
		Type(futures.OrderTypeLimit).
		TimeInForce(futures.TimeInForceTypeGTC).
		Quantity(utils.FormatDecimal(quantity, b.config.QuantityPrecision)).
		Price(utils.FormatDecimal(price, b.config.PricePrecision)).
		ReduceOnly(reduceOnly).
		Do(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOrderFailed, "failed to place order on Binance", err)
	}

	orderID := strconv.FormatInt(response.OrderID, 10)

	b.log.Info("Binance order placed",
		zap.String("order_id", orderID),
		zap.String("side", string(side)),
		zap.Bool("reduce_only", reduceOnly),
		zap.Float64("price", price),
		zap.Float64("quantity", quantity),
	)

	return []string{orderID}, nil
}

// Cancel cancels an order by id. Orders Binance no longer knows are a no-op.
func (b *BinanceFuturesGateway) Cancel(orderID string) error {
	binanceOrderID, err := strconv.ParseInt(orderID, 10, 64)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid order ID format", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	_, err = b.client.NewCancelOrderService().
		Symbol(b.symbol).
		OrderID(binanceOrderID).
		Do(ctx)
	if err != nil {
		if isUnknownOrder(err) {
			b.log.Debug("Order already gone", zap.String("order_id", orderID))

			return nil
		}

		return errors.Wrap(errors.ErrCodeCancelFailed, "failed to cancel order on Binance", err)
	}

	return nil
}

// CancelAll cancels every open order of the symbol.
func (b *BinanceFuturesGateway) CancelAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := b.client.NewCancelAllOpenOrdersService().Symbol(b.symbol).Do(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeCancelFailed, "failed to cancel orders on Binance", err)
	}

	return nil
}

// Start opens the user data stream and keeps its listen key alive until ctx
// is cancelled.
func (b *BinanceFuturesGateway) Start(ctx context.Context) error {
	listenKey, err := b.client.NewStartUserStreamService().Do(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUserStreamFailed, "failed to create listen key", err)
	}

	doneC, stopC, err := b.stream.WsOrderTradeServe(listenKey, b.handleOrderTrade, b.handleStreamError)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUserStreamFailed, "failed to start user data stream", err)
	}

	b.mu.Lock()
	b.listenKey = listenKey
	b.mu.Unlock()

	go b.keepAlive(ctx, listenKey, doneC, stopC)

	b.log.Info("User data stream started", zap.String("symbol", b.symbol))

	return nil
}

// ListenKey returns the listen key of the running user data stream.
func (b *BinanceFuturesGateway) ListenKey() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.listenKey
}

// Notify returns a channel that signals pending updates.
func (b *BinanceFuturesGateway) Notify() <-chan struct{} {
	return b.queue.Notify()
}

// Drain returns the pending order updates.
func (b *BinanceFuturesGateway) Drain() []types.OrderUpdate {
	return b.queue.Drain()
}

func (b *BinanceFuturesGateway) keepAlive(ctx context.Context, listenKey string, doneC, stopC chan struct{}) {
	ticker := time.NewTicker(b.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(stopC)
			b.closeListenKey(listenKey)

			return
		case <-doneC:
			b.log.Warn("User data stream closed", zap.String("symbol", b.symbol))

			return
		case <-ticker.C:
			if err := b.client.NewKeepaliveUserStreamService().ListenKey(listenKey).Do(ctx); err != nil {
				b.log.Warn("Failed to keep listen key alive", zap.Error(err))
			}
		}
	}
}

func (b *BinanceFuturesGateway) closeListenKey(listenKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := b.client.NewCloseUserStreamService().ListenKey(listenKey).Do(ctx); err != nil {
		b.log.Warn("Failed to close listen key", zap.Error(err))
	}
}

func (b *BinanceFuturesGateway) handleOrderTrade(event *OrderTradeEvent) {
	if event.Symbol != b.symbol {
		return
	}

	update, ok := convertOrderTradeEvent(event)
	if !ok {
		b.log.Debug("Ignoring order event",
			zap.Int64("order_id", event.OrderID),
			zap.String("status", event.Status),
		)

		return
	}

	b.queue.Push(update)
}

func (b *BinanceFuturesGateway) handleStreamError(err error) {
	b.log.Error("User data stream error", zap.Error(err))
}

// convertOrderTradeEvent maps a Binance order event to an order update.
func convertOrderTradeEvent(event *OrderTradeEvent) (types.OrderUpdate, bool) {
	var status types.OrderStatus

	switch futures.OrderStatusType(event.Status) {
	case futures.OrderStatusTypeNew:
		status = types.OrderStatusNew
	case futures.OrderStatusTypePartiallyFilled:
		status = types.OrderStatusPartial
	case futures.OrderStatusTypeFilled:
		status = types.OrderStatusAllTraded
	case futures.OrderStatusTypeCanceled, futures.OrderStatusTypeExpired:
		status = types.OrderStatusCancelled
	case futures.OrderStatusTypeRejected:
		status = types.OrderStatusRejected
	default:
		return types.OrderUpdate{}, false
	}

	var side types.Side

	switch futures.SideType(event.Side) {
	case futures.SideTypeBuy:
		side = types.SideBuy
		if event.ReduceOnly {
			side = types.SideCover
		}
	case futures.SideTypeSell:
		side = types.SideShort
		if event.ReduceOnly {
			side = types.SideSell
		}
	default:
		return types.OrderUpdate{}, false
	}

	filled, _ := strconv.ParseFloat(event.AccumulatedFilledQty, 64)

	return types.OrderUpdate{
		OrderID:    strconv.FormatInt(event.OrderID, 10),
		Side:       side,
		Price:      firstPositive(event.AveragePrice, event.LastFilledPrice, event.OriginalPrice),
		FilledSize: filled,
		Status:     status,
	}, true
}

func firstPositive(values ...string) float64 {
	for _, value := range values {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil && parsed > 0 {
			return parsed
		}
	}

	return 0
}

// mapSide maps an intent side to the Binance side and reduce-only flag.
func mapSide(side types.Side) (futures.SideType, bool, error) {
	switch side {
	case types.SideBuy:
		return futures.SideTypeBuy, false, nil
	case types.SideSell:
		return futures.SideTypeSell, true, nil
	case types.SideShort:
		return futures.SideTypeSell, false, nil
	case types.SideCover:
		return futures.SideTypeBuy, true, nil
	default:
		return "", false, errors.Newf(errors.ErrCodeInvalidOrderIntent, "unsupported order side: %s", side)
	}
}

func isUnknownOrder(err error) bool {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == binanceUnknownOrderCode
	}

	return false
}
