// Package feed provides top-of-book quote streams for the grid runner.
package feed

import (
	"context"
	"iter"

	"github.com/rxtech-lab/argo-grid/internal/types"
)

// Feed streams quotes for a single symbol until ctx is cancelled or the
// consumer stops iterating. A non-nil error is yielded with a zero Tick.
type Feed interface {
	Stream(ctx context.Context) iter.Seq2[types.Tick, error]
}
