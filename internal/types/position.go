package types

// PositionSnapshot is a consistent read of the position ledger.
type PositionSnapshot struct {
	// Position is the signed net size: positive is long, negative is short.
	Position float64 `yaml:"position" json:"position" csv:"position"`
	// AveragePrice is the volume-weighted entry price of the net position.
	// It is zero when the position is flat.
	AveragePrice float64 `yaml:"average_price" json:"average_price" csv:"average_price"`
}

// IsFlat reports whether the snapshot carries no position.
func (p PositionSnapshot) IsFlat() bool {
	return p.Position == 0
}
