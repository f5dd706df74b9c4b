// Package ledger tracks a signed net position and its volume-weighted average
// entry price from a sequence of fills.
package ledger

import (
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"github.com/shopspring/decimal"
)

// Ledger is a netting position ledger. The zero value is not usable; call New.
//
// Rules applied on each fill:
//   - from flat, the position opens at the fill price
//   - adding in the same direction blends the average by size
//   - reducing toward zero keeps the average unchanged
//   - crossing zero restarts the average at the fill price for the residual
type Ledger struct {
	position     decimal.Decimal
	averagePrice decimal.Decimal
}

// New returns a flat ledger.
func New() *Ledger {
	return &Ledger{
		position:     decimal.Zero,
		averagePrice: decimal.Zero,
	}
}

// ApplyFill books a fill and returns the resulting snapshot.
// Buy and cover fills add to the position; sell and short fills subtract.
func (l *Ledger) ApplyFill(side types.Side, price float64, size float64) (types.PositionSnapshot, error) {
	if size <= 0 {
		return l.Snapshot(), errors.NewInvalidFillErrorf(size, price, "fill size %v must be positive", size)
	}

	if price <= 0 {
		return l.Snapshot(), errors.NewInvalidFillErrorf(size, price, "fill price %v must be positive", price)
	}

	fillPrice := decimal.NewFromFloat(price)
	delta := decimal.NewFromFloat(size)

	if side.Sign() < 0 {
		delta = delta.Neg()
	}

	next := l.position.Add(delta)

	switch {
	case l.position.IsZero():
		l.averagePrice = fillPrice
	case l.position.Sign() == delta.Sign():
		// weighted blend of prior exposure and the new fill
		notional := l.position.Abs().Mul(l.averagePrice).Add(delta.Abs().Mul(fillPrice))
		l.averagePrice = notional.Div(next.Abs())
	case next.IsZero():
		l.averagePrice = decimal.Zero
	case next.Sign() != l.position.Sign():
		l.averagePrice = fillPrice
	}

	l.position = next

	return l.Snapshot(), nil
}

// Snapshot returns the current position and average price.
func (l *Ledger) Snapshot() types.PositionSnapshot {
	return types.PositionSnapshot{
		Position:     l.position.InexactFloat64(),
		AveragePrice: l.averagePrice.InexactFloat64(),
	}
}
