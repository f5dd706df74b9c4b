package grid

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-grid/internal/types"
)

// State is the coarse phase of the engine.
type State string

const (
	// StateFlat has no meaningful position and no complete ladder.
	StateFlat State = "FLAT"
	// StateLadderActive has both a long and a short entry resting.
	StateLadderActive State = "LADDER_ACTIVE"
	// StateOneSided holds a position while the ladder is missing a side.
	StateOneSided State = "ONE_SIDED"
	// StateCooldown follows a stop until the cooldown is released.
	StateCooldown State = "COOLDOWN"
)

// FilledOrder is the anchor recorded from the most recent entry fill.
type FilledOrder struct {
	Price float64    `json:"price" yaml:"price"`
	Side  types.Side `json:"side" yaml:"side"`
}

// Snapshot is a read-only view of the engine for logging and tests.
type Snapshot struct {
	State        State                        `json:"state" yaml:"state"`
	Position     float64                      `json:"position" yaml:"position"`
	AveragePrice float64                      `json:"average_price" yaml:"average_price"`
	LongEntries  int                          `json:"long_entries" yaml:"long_entries"`
	ShortEntries int                          `json:"short_entries" yaml:"short_entries"`
	ProfitOrders int                          `json:"profit_orders" yaml:"profit_orders"`
	StopOrders   int                          `json:"stop_orders" yaml:"stop_orders"`
	Cooldown     bool                         `json:"cooldown" yaml:"cooldown"`
	LastFilled   optional.Option[FilledOrder] `json:"last_filled" yaml:"last_filled"`
}
