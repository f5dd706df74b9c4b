package types

import (
	"time"

	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// Tick is a top-of-book quote.
type Tick struct {
	Symbol  string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	BestBid float64   `yaml:"best_bid" json:"best_bid" csv:"best_bid"`
	BestAsk float64   `yaml:"best_ask" json:"best_ask" csv:"best_ask"`
	Time    time.Time `yaml:"time" json:"time" csv:"time"`
}

// Validate rejects quotes with a non-positive side.
func (t Tick) Validate() error {
	if t.BestBid <= 0 || t.BestAsk <= 0 {
		return errors.Newf(errors.ErrCodeInvalidTick, "invalid quote: bid=%v ask=%v", t.BestBid, t.BestAsk)
	}

	return nil
}
