// Package grid implements the grid-trading order-state engine: a ladder of
// resting entry orders around a moving anchor, a running position, and
// autonomous profit-taking and stop-loss exits with a post-stop cooldown.
//
// The Engine is single-threaded. Exactly one goroutine may call OnTick,
// OnTimer, OnOrderUpdate, Cancel and Stop; order outcomes are expected to
// arrive asynchronously through OnOrderUpdate.
package grid

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-grid/internal/ledger"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"go.uber.org/zap"
)

// Engine coordinates the ledger, the ladder and the exits on market ticks,
// timer ticks and order updates.
type Engine struct {
	symbol  string
	config  Config
	gateway Gateway
	ledger  PositionLedger
	steps   StepPolicy
	book    *OrderBook
	log     *logger.Logger

	quote      optional.Option[types.Tick]
	quoteAge   int
	lastFilled optional.Option[FilledOrder]

	ladderCounter   int
	profitCounter   int
	stopCounter     int
	cooldownCounter int
	cooldownTicks   int
	cooldown        bool

	state State
}

// NewEngine creates an engine with a fresh ledger and the step policy named
// by the config.
func NewEngine(symbol string, config Config, gateway Gateway, log *logger.Logger) (*Engine, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	table, err := config.StepPolicy.Build()
	if err != nil {
		return nil, err
	}

	return NewEngineWithDependencies(symbol, config, gateway, ledger.New(), table, log)
}

// NewEngineWithDependencies creates an engine with an injected ledger and step policy.
func NewEngineWithDependencies(
	symbol string,
	config Config,
	gateway Gateway,
	positionLedger PositionLedger,
	steps StepPolicy,
	log *logger.Logger,
) (*Engine, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if gateway == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "gateway is required")
	}

	if positionLedger == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "position ledger is required")
	}

	if steps == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "step policy is required")
	}

	if log == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "logger is required")
	}

	return &Engine{
		symbol:          symbol,
		config:          config,
		gateway:         gateway,
		ledger:          positionLedger,
		steps:           steps,
		book:            NewOrderBook(),
		log:             log.Named("grid"),
		quote:           optional.None[types.Tick](),
		quoteAge:        0,
		lastFilled:      optional.None[FilledOrder](),
		ladderCounter:   0,
		profitCounter:   0,
		stopCounter:     0,
		cooldownCounter: 0,
		cooldownTicks:   config.CooldownTicks(),
		cooldown:        false,
		state:           StateFlat,
	}, nil
}

// Config returns the effective configuration, defaults applied.
func (e *Engine) Config() Config {
	return e.config
}

// OnTick stores a new quote. In tick trigger mode it also runs flat-state
// placement and the exit checks immediately.
func (e *Engine) OnTick(tick types.Tick) {
	if err := tick.Validate(); err != nil {
		e.log.Warn("Ignoring invalid quote",
			zap.Float64("bid", tick.BestBid),
			zap.Float64("ask", tick.BestAsk),
			zap.Error(err),
		)

		return
	}

	e.quote = optional.Some(tick)
	e.quoteAge = 0

	if e.config.TriggerMode == TriggerModeTick {
		e.tryLeaveCooldown()

		if e.isFlatWithoutEntries() {
			e.placeFlatPair(tick)
		}

		e.checkStop()
		e.checkProfit()
	}

	e.updateState()
}

// OnTimer advances every cadence counter by one and runs the actions whose
// counter reached its threshold.
func (e *Engine) OnTimer() {
	e.quoteAge++

	if e.cooldown {
		e.cooldownCounter++
		e.tryLeaveCooldown()
	}

	e.ladderCounter++
	if e.ladderCounter >= e.config.LadderInterval {
		e.ladderCounter = 0
		e.refreshLadder()
	}

	e.profitCounter++
	if e.profitCounter >= e.config.ProfitInterval {
		e.profitCounter = 0
		e.checkProfit()
	}

	e.stopCounter++
	if e.stopCounter >= e.config.StopInterval {
		e.stopCounter = 0
		e.refreshStops()
	}

	e.updateState()
}

// OnOrderUpdate books any new fill into the ledger and retires the order on
// a terminal status. Updates for ids the engine does not own are ignored.
func (e *Engine) OnOrderUpdate(update types.OrderUpdate) {
	if err := update.Validate(); err != nil {
		e.log.Warn("Ignoring invalid order update",
			zap.String("order_id", update.OrderID),
			zap.Error(err),
		)

		return
	}

	order, ok := e.book.Get(update.OrderID)
	if !ok {
		e.log.Debug("Ignoring update for unknown order",
			zap.String("order_id", update.OrderID),
			zap.String("status", string(update.Status)),
		)

		return
	}

	e.bookFill(order, update)

	if update.Status.IsTerminal() {
		e.book.Remove(order.ID)

		if update.Status == types.OrderStatusAllTraded {
			e.onFilled(order, update)
		} else {
			e.log.Info("Order retired",
				zap.String("order_id", order.ID),
				zap.String("role", string(order.Role)),
				zap.String("status", string(update.Status)),
			)
		}
	}

	e.updateState()
}

// Cancel requests cancellation of a live order. Unknown or already retired
// ids are a no-op.
func (e *Engine) Cancel(orderID string) error {
	order, ok := e.book.Get(orderID)
	if !ok {
		return nil
	}

	return e.cancelOrder(order)
}

// Stop asks the gateway to cancel every live order. Orders stay tracked until
// their terminal updates arrive.
func (e *Engine) Stop() {
	e.log.Info("Stopping grid engine", zap.Int("live_orders", e.book.Len()))
	e.cancelAll()
}

// State returns the current engine state.
func (e *Engine) State() State {
	return e.state
}

// Snapshot returns a read-only view of the engine.
func (e *Engine) Snapshot() Snapshot {
	position := e.ledger.Snapshot()
	long, short := e.book.EntryCounts()

	return Snapshot{
		State:        e.state,
		Position:     position.Position,
		AveragePrice: position.AveragePrice,
		LongEntries:  long,
		ShortEntries: short,
		ProfitOrders: e.book.Count(types.OrderRoleProfit),
		StopOrders:   e.book.Count(types.OrderRoleStop),
		Cooldown:     e.cooldown,
		LastFilled:   e.lastFilled,
	}
}

// LiveOrders returns the live orders of the given roles in submission order.
func (e *Engine) LiveOrders(roles ...types.OrderRole) []RestingOrder {
	live := e.book.Orders(roles...)
	orders := make([]RestingOrder, 0, len(live))

	for _, order := range live {
		orders = append(orders, *order)
	}

	return orders
}

func (e *Engine) bookFill(order *RestingOrder, update types.OrderUpdate) {
	delta := update.FilledSize - order.Filled
	if delta < 0 {
		e.log.Warn("Filled size went backwards",
			zap.String("order_id", order.ID),
			zap.Float64("known", order.Filled),
			zap.Float64("reported", update.FilledSize),
		)

		return
	}

	if delta == 0 {
		return
	}

	average := update.Price
	if average <= 0 {
		average = order.Price
	}

	// update.Price averages the whole cumulative size; book the increment at
	// the price it traded at.
	price := (average*update.FilledSize - order.AverageFillPrice*order.Filled) / delta
	if price <= 0 {
		price = average
	}

	position, err := e.ledger.ApplyFill(order.Side, price, delta)
	if err != nil {
		e.log.Warn("Rejected fill",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)

		return
	}

	order.Filled = update.FilledSize
	order.AverageFillPrice = average

	e.log.Info("Fill booked",
		zap.String("order_id", order.ID),
		zap.String("role", string(order.Role)),
		zap.String("side", string(order.Side)),
		zap.Float64("price", price),
		zap.Float64("size", delta),
		zap.Float64("position", position.Position),
		zap.Float64("average_price", position.AveragePrice),
	)
}

func (e *Engine) onFilled(order *RestingOrder, update types.OrderUpdate) {
	switch {
	case order.Role.IsEntry():
		e.onEntryFill(order, update)
	case order.Role == types.OrderRoleProfit:
		e.onProfitFill(order)
	case order.Role == types.OrderRoleStop:
		e.log.Warn("Stop order filled",
			zap.String("order_id", order.ID),
			zap.Float64("position", e.ledger.Snapshot().Position),
		)
	}
}

// currentQuote returns the last quote unless none arrived yet or it went stale.
func (e *Engine) currentQuote() (types.Tick, bool) {
	tick, err := e.quote.Take()
	if err != nil {
		return types.Tick{}, false
	}

	if e.config.StaleQuoteTicks > 0 && e.quoteAge >= e.config.StaleQuoteTicks {
		return types.Tick{}, false
	}

	return tick, true
}

func (e *Engine) absPosition() float64 {
	return math.Abs(e.ledger.Snapshot().Position)
}

func (e *Engine) isFlatWithoutEntries() bool {
	long, short := e.book.EntryCounts()

	return long == 0 && short == 0 && e.absPosition() < e.config.FixedSize
}

// submit sends an intent and registers every returned id under role.
func (e *Engine) submit(role types.OrderRole, side types.Side, price float64, size float64) bool {
	intent := types.OrderIntent{
		Symbol: e.symbol,
		Side:   side,
		Price:  price,
		Size:   size,
		Role:   role,
	}

	if err := intent.Validate(); err != nil {
		e.log.Warn("Skipping invalid order intent",
			zap.String("role", string(role)),
			zap.Float64("price", price),
			zap.Float64("size", size),
			zap.Error(err),
		)

		return false
	}

	ids, err := e.gateway.Submit(intent)
	if err != nil {
		e.log.Error("Failed to submit order",
			zap.String("role", string(role)),
			zap.String("side", string(side)),
			zap.Float64("price", price),
			zap.Float64("size", size),
			zap.Error(err),
		)

		return false
	}

	for _, id := range ids {
		order := RestingOrder{
			ID:               id,
			Role:             role,
			Side:             side,
			Price:            price,
			Size:             size,
			Filled:           0,
			AverageFillPrice: 0,
			CancelRequested:  false,
			seq:              0,
		}

		if err := e.book.Add(order); err != nil {
			e.log.Error("Failed to track submitted order",
				zap.String("order_id", id),
				zap.Error(err),
			)
		}
	}

	e.log.Info("Order submitted",
		zap.Strings("order_ids", ids),
		zap.String("role", string(role)),
		zap.String("side", string(side)),
		zap.Float64("price", price),
		zap.Float64("size", size),
	)

	return len(ids) > 0
}

func (e *Engine) cancelOrder(order *RestingOrder) error {
	if order.CancelRequested {
		return nil
	}

	if err := e.gateway.Cancel(order.ID); err != nil {
		e.log.Warn("Failed to cancel order",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)

		return errors.Wrapf(errors.ErrCodeCancelFailed, err, "failed to cancel order %s", order.ID)
	}

	order.CancelRequested = true

	return nil
}

func (e *Engine) cancelRoles(roles ...types.OrderRole) {
	for _, order := range e.book.Orders(roles...) {
		_ = e.cancelOrder(order)
	}
}

func (e *Engine) cancelAll() {
	if err := e.gateway.CancelAll(); err != nil {
		e.log.Warn("Failed to cancel all orders", zap.Error(err))

		return
	}

	for _, order := range e.book.Orders(types.OrderRoleLongEntry, types.OrderRoleShortEntry, types.OrderRoleProfit, types.OrderRoleStop) {
		order.CancelRequested = true
	}
}

func (e *Engine) deriveState() State {
	if e.cooldown {
		return StateCooldown
	}

	long, short := e.book.EntryCounts()
	if long > 0 && short > 0 {
		return StateLadderActive
	}

	if e.absPosition() >= e.config.FixedSize {
		return StateOneSided
	}

	return StateFlat
}

func (e *Engine) updateState() {
	next := e.deriveState()
	if next == e.state {
		return
	}

	position := e.ledger.Snapshot()

	e.log.Info("State transition",
		zap.String("from", string(e.state)),
		zap.String("to", string(next)),
		zap.Float64("position", position.Position),
		zap.Float64("average_price", position.AveragePrice),
	)

	e.state = next
}
