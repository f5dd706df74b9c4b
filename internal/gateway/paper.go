// Package gateway contains the execution venues the grid engine routes order
// intents to: an in-process paper venue and Binance USDⓈ-M futures.
//
// Both venues report order outcomes asynchronously through an UpdateQueue so
// that the engine goroutine is the only one mutating engine state.
package gateway

import (
	"cmp"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"go.uber.org/zap"
)

type paperOrder struct {
	id     string
	intent types.OrderIntent
	seq    uint64
}

// PaperGateway is an in-process venue that rests limit orders and fills them
// in full when the observed quote crosses their price.
type PaperGateway struct {
	mu       sync.Mutex
	symbol   string
	orders   map[string]*paperOrder
	nextSeq  uint64
	lastTick optional.Option[types.Tick]
	queue    *UpdateQueue
	log      *logger.Logger
}

// NewPaperGateway creates a paper venue for one symbol.
func NewPaperGateway(symbol string, log *logger.Logger) *PaperGateway {
	return &PaperGateway{
		mu:       sync.Mutex{},
		symbol:   symbol,
		orders:   make(map[string]*paperOrder),
		nextSeq:  0,
		lastTick: optional.None[types.Tick](),
		queue:    NewUpdateQueue(),
		log:      log.Named("paper"),
	}
}

// Submit rests the order, or fills it at the touch when it is already marketable.
func (p *PaperGateway) Submit(intent types.OrderIntent) ([]string, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	if intent.Symbol != "" && intent.Symbol != p.symbol {
		return nil, errors.Newf(errors.ErrCodeInvalidOrderIntent, "paper gateway trades %s, got %s", p.symbol, intent.Symbol)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextSeq++
	order := &paperOrder{
		id:     uuid.NewString(),
		intent: intent,
		seq:    p.nextSeq,
	}

	p.queue.Push(types.OrderUpdate{
		OrderID:    order.id,
		Side:       intent.Side,
		Price:      intent.Price,
		FilledSize: 0,
		Status:     types.OrderStatusNew,
	})

	if tick, err := p.lastTick.Take(); err == nil {
		if price, ok := marketablePrice(intent, tick); ok {
			p.fill(order, price)

			return []string{order.id}, nil
		}
	}

	p.orders[order.id] = order

	p.log.Debug("Paper order resting",
		zap.String("order_id", order.id),
		zap.String("side", string(intent.Side)),
		zap.Float64("price", intent.Price),
		zap.Float64("size", intent.Size),
	)

	return []string{order.id}, nil
}

// Cancel removes a resting order. Unknown and already filled ids are a no-op.
func (p *PaperGateway) Cancel(orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok {
		return nil
	}

	p.cancel(order)

	return nil
}

// CancelAll removes every resting order.
func (p *PaperGateway) CancelAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, order := range p.sortedOrders() {
		p.cancel(order)
	}

	return nil
}

// OnTick matches resting orders against a new quote. Buy and cover orders
// fill when the ask trades through their price; sell and short orders when
// the bid does. Resting orders fill at their own limit price.
func (p *PaperGateway) OnTick(tick types.Tick) {
	if tick.Symbol != "" && tick.Symbol != p.symbol {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastTick = optional.Some(tick)

	for _, order := range p.sortedOrders() {
		if _, ok := marketablePrice(order.intent, tick); ok {
			delete(p.orders, order.id)
			p.fill(order, order.intent.Price)
		}
	}
}

// Notify returns a channel that signals pending updates.
func (p *PaperGateway) Notify() <-chan struct{} {
	return p.queue.Notify()
}

// Drain returns the pending order updates.
func (p *PaperGateway) Drain() []types.OrderUpdate {
	return p.queue.Drain()
}

// RestingCount returns the number of resting orders.
func (p *PaperGateway) RestingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.orders)
}

func (p *PaperGateway) fill(order *paperOrder, price float64) {
	p.queue.Push(types.OrderUpdate{
		OrderID:    order.id,
		Side:       order.intent.Side,
		Price:      price,
		FilledSize: order.intent.Size,
		Status:     types.OrderStatusAllTraded,
	})

	p.log.Info("Paper order filled",
		zap.String("order_id", order.id),
		zap.String("role", string(order.intent.Role)),
		zap.String("side", string(order.intent.Side)),
		zap.Float64("price", price),
		zap.Float64("size", order.intent.Size),
	)
}

func (p *PaperGateway) cancel(order *paperOrder) {
	delete(p.orders, order.id)

	p.queue.Push(types.OrderUpdate{
		OrderID:    order.id,
		Side:       order.intent.Side,
		Price:      order.intent.Price,
		FilledSize: 0,
		Status:     types.OrderStatusCancelled,
	})
}

func (p *PaperGateway) sortedOrders() []*paperOrder {
	orders := make([]*paperOrder, 0, len(p.orders))
	for _, order := range p.orders {
		orders = append(orders, order)
	}

	slices.SortFunc(orders, func(a, b *paperOrder) int {
		return cmp.Compare(a.seq, b.seq)
	})

	return orders
}

// marketablePrice returns the touch price an order would trade at against tick.
func marketablePrice(intent types.OrderIntent, tick types.Tick) (float64, bool) {
	switch intent.Side {
	case types.SideBuy, types.SideCover:
		if tick.BestAsk > 0 && tick.BestAsk <= intent.Price {
			return tick.BestAsk, true
		}
	case types.SideSell, types.SideShort:
		if tick.BestBid > 0 && tick.BestBid >= intent.Price {
			return tick.BestBid, true
		}
	}

	return 0, false
}
