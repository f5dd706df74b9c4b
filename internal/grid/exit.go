package grid

import (
	"math"

	"github.com/rxtech-lab/argo-grid/internal/types"
	"go.uber.org/zap"
)

// checkProfit places a single closing order for the whole position once it
// reaches the profit trigger.
func (e *Engine) checkProfit() {
	if e.book.Count(types.OrderRoleProfit) > 0 {
		return
	}

	position := e.ledger.Snapshot()
	absPosition := math.Abs(position.Position)

	if position.IsFlat() || absPosition < e.config.ProfitTriggerPosition() {
		return
	}

	tick, ok := e.currentQuote()
	if !ok {
		return
	}

	if position.Position > 0 {
		price := math.Max(position.AveragePrice+e.config.GridStep, tick.BestAsk*(1+e.config.Epsilon()))
		e.submit(types.OrderRoleProfit, types.SideSell, price, absPosition)

		return
	}

	price := math.Min(position.AveragePrice-e.config.GridStep, tick.BestBid*(1-e.config.Epsilon()))
	e.submit(types.OrderRoleProfit, types.SideCover, price, absPosition)
}

func (e *Engine) onProfitFill(order *RestingOrder) {
	absPosition := e.absPosition()

	e.log.Info("Profit order filled",
		zap.String("order_id", order.ID),
		zap.Float64("position", absPosition),
	)

	if absPosition < e.config.FixedSize {
		e.cancelAll()
	}
}

// refreshStops runs on the stop cadence. Resting stops are cancelled and the
// check waits until they are gone.
func (e *Engine) refreshStops() {
	if e.book.Count(types.OrderRoleStop) > 0 {
		e.cancelRoles(types.OrderRoleStop)

		return
	}

	e.checkStop()
}

// checkStop fires a stop when the position is at its cap and the market has
// moved stop_multiplier grid steps against the anchor.
func (e *Engine) checkStop() {
	if e.book.Count(types.OrderRoleStop) > 0 {
		return
	}

	position := e.ledger.Snapshot()
	absPosition := math.Abs(position.Position)

	if position.IsFlat() || absPosition < e.config.MaxPosition() {
		return
	}

	tick, ok := e.currentQuote()
	if !ok {
		return
	}

	anchor := position.AveragePrice
	if e.config.StopAnchor == StopAnchorLastFill {
		if filled, err := e.lastFilled.Take(); err == nil {
			anchor = filled.Price
		}
	}

	threshold := e.config.StopMultiplier * e.config.GridStep

	var submitted bool

	switch {
	case position.Position > 0 && tick.BestBid < anchor-threshold:
		submitted = e.submit(types.OrderRoleStop, types.SideSell, tick.BestBid, absPosition)
	case position.Position < 0 && tick.BestAsk > anchor+threshold:
		submitted = e.submit(types.OrderRoleStop, types.SideCover, tick.BestAsk, absPosition)
	default:
		return
	}

	if !submitted {
		return
	}

	e.log.Warn("Stop loss triggered",
		zap.Float64("position", position.Position),
		zap.Float64("anchor", anchor),
		zap.Float64("bid", tick.BestBid),
		zap.Float64("ask", tick.BestAsk),
	)

	e.enterCooldown()
	e.cancelRoles(types.OrderRoleLongEntry, types.OrderRoleShortEntry, types.OrderRoleProfit)
}

func (e *Engine) enterCooldown() {
	e.cooldown = true
	e.cooldownCounter = 0

	e.log.Info("Entering cooldown", zap.Int("ticks", e.cooldownTicks))
}

// tryLeaveCooldown releases the cooldown once enough timer ticks have passed
// and, unless configured otherwise, the position is back under one fixed size.
func (e *Engine) tryLeaveCooldown() {
	if !e.cooldown {
		return
	}

	if e.cooldownCounter < e.cooldownTicks {
		return
	}

	if e.config.CooldownExit == CooldownExitElapsedAndFlat && e.absPosition() >= e.config.FixedSize {
		return
	}

	e.cooldown = false
	e.cooldownCounter = 0

	e.log.Info("Leaving cooldown", zap.Float64("position", e.ledger.Snapshot().Position))
}
