package grid

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"go.uber.org/zap"
)

// refreshLadder runs on the ladder cadence. Flat without entries it places
// the straddle; holding a position with a missing side it tears the ladder
// down and rebuilds it around the last fill.
func (e *Engine) refreshLadder() {
	if e.cooldown {
		return
	}

	long, short := e.book.EntryCounts()
	absPosition := e.absPosition()

	if absPosition < e.config.FixedSize {
		switch {
		case long == 0 && short == 0:
			if tick, ok := e.currentQuote(); ok {
				e.placeFlatPair(tick)
			}
		case long == 0 || short == 0:
			e.log.Debug("Cancelling stray entry while flat",
				zap.Int("long_entries", long),
				zap.Int("short_entries", short),
			)
			e.cancelRoles(types.OrderRoleLongEntry, types.OrderRoleShortEntry)
		}

		return
	}

	if long > 0 && short > 0 {
		return
	}

	e.cancelRoles(types.OrderRoleLongEntry, types.OrderRoleShortEntry)

	filled, err := e.lastFilled.Take()
	if err != nil {
		return
	}

	if absPosition >= e.config.MaxPosition() {
		return
	}

	tick, ok := e.currentQuote()
	if !ok {
		return
	}

	e.placeAnchoredPair(filled.Price, absPosition, tick)
}

// placeFlatPair straddles the bid by half a grid step on each side.
func (e *Engine) placeFlatPair(tick types.Tick) {
	if e.cooldown {
		return
	}

	half := e.config.GridStep / 2

	e.log.Info("Placing flat ladder", zap.Float64("bid", tick.BestBid))

	e.submit(types.OrderRoleLongEntry, types.SideBuy, tick.BestBid-half, e.config.FixedSize)
	e.submit(types.OrderRoleShortEntry, types.SideShort, tick.BestBid+half, e.config.FixedSize)
}

// placeAnchoredPair places the next long and short entry step grid levels
// away from the anchor, never crossing the current quote.
func (e *Engine) placeAnchoredPair(anchor float64, absPosition float64, tick types.Tick) {
	step := e.steps.Step(absPosition, e.config.FixedSize)
	distance := float64(step) * e.config.GridStep

	buyPrice := math.Min(anchor-distance, tick.BestBid)
	shortPrice := math.Max(anchor+distance, tick.BestAsk)

	e.log.Info("Placing anchored ladder",
		zap.Float64("anchor", anchor),
		zap.Int("step", step),
		zap.Float64("buy_price", buyPrice),
		zap.Float64("short_price", shortPrice),
	)

	e.submit(types.OrderRoleLongEntry, types.SideBuy, buyPrice, e.config.FixedSize)
	e.submit(types.OrderRoleShortEntry, types.SideShort, shortPrice, e.config.FixedSize)
}

func (e *Engine) onEntryFill(order *RestingOrder, update types.OrderUpdate) {
	price := update.Price
	if price <= 0 {
		price = order.Price
	}

	e.lastFilled = optional.Some(FilledOrder{
		Price: price,
		Side:  order.Side,
	})

	e.cancelRoles(types.OrderRoleLongEntry, types.OrderRoleShortEntry, types.OrderRoleProfit)

	if e.cooldown {
		return
	}

	absPosition := e.absPosition()
	if absPosition < e.config.FixedSize || absPosition >= e.config.MaxPosition() {
		return
	}

	tick, ok := e.currentQuote()
	if !ok {
		return
	}

	e.placeAnchoredPair(price, absPosition, tick)
}
