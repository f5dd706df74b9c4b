package grid

import "github.com/rxtech-lab/argo-grid/internal/types"

// Gateway routes order intents to an execution venue. Calls are
// fire-and-forget: outcomes arrive later through Engine.OnOrderUpdate.
type Gateway interface {
	// Submit places a limit order and returns the ids assigned to it.
	Submit(intent types.OrderIntent) ([]string, error)
	// Cancel requests cancellation of a live order. Cancelling an id that is
	// already terminal or unknown must not fail.
	Cancel(orderID string) error
	// CancelAll requests cancellation of every live order of the symbol.
	CancelAll() error
}

// PositionLedger books fills into a net position.
type PositionLedger interface {
	ApplyFill(side types.Side, price float64, size float64) (types.PositionSnapshot, error)
	Snapshot() types.PositionSnapshot
}
