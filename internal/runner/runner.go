// Package runner hosts a grid engine: it feeds it market quotes, timer ticks
// and order updates from a single goroutine.
package runner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-grid/internal/feed"
	"github.com/rxtech-lab/argo-grid/internal/grid"
	"github.com/rxtech-lab/argo-grid/internal/logger"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"go.uber.org/zap"
)

// Venue is a gateway that reports order outcomes asynchronously.
type Venue interface {
	grid.Gateway
	// Notify signals that updates are waiting to be drained.
	Notify() <-chan struct{}
	// Drain returns the pending updates in arrival order.
	Drain() []types.OrderUpdate
}

// TickObserver is implemented by venues that match orders against quotes.
type TickObserver interface {
	OnTick(tick types.Tick)
}

// Starter is implemented by venues that need a connection before trading.
type Starter interface {
	Start(ctx context.Context) error
}

// Ticker delivers timer ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Recorder receives run metrics. It is called from the run loop, except
// ObserveFeedError which is called from the feed goroutine.
type Recorder interface {
	ObserveOrderUpdate(update types.OrderUpdate)
	ObserveQuote()
	ObserveFeedError()
	ObserveSnapshot(snapshot grid.Snapshot)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOrderUpdate(types.OrderUpdate) {}
func (nopRecorder) ObserveQuote()                        {}
func (nopRecorder) ObserveFeedError()                    {}
func (nopRecorder) ObserveSnapshot(grid.Snapshot)        {}

// TickerFactory creates a Ticker with the given period.
type TickerFactory func(period time.Duration) Ticker

type realTicker struct {
	ticker *time.Ticker
}

func (t *realTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *realTicker) Stop() {
	t.ticker.Stop()
}

// NewTimeTicker is the TickerFactory backed by time.Ticker.
func NewTimeTicker(period time.Duration) Ticker {
	return &realTicker{ticker: time.NewTicker(period)}
}

// Runner drives one engine against one venue and one quote feed.
type Runner struct {
	runID     string
	engine    *grid.Engine
	venue     Venue
	feed      feed.Feed
	newTicker TickerFactory
	recorder  Recorder
	log       *logger.Logger
}

// NewRunner creates a runner using wall-clock timer ticks.
func NewRunner(engine *grid.Engine, venue Venue, quotes feed.Feed, log *logger.Logger) *Runner {
	return NewRunnerWithTicker(engine, venue, quotes, NewTimeTicker, log)
}

// NewRunnerWithTicker creates a runner with a custom timer source.
func NewRunnerWithTicker(engine *grid.Engine, venue Venue, quotes feed.Feed, newTicker TickerFactory, log *logger.Logger) *Runner {
	runID := uuid.New().String()

	return &Runner{
		runID:     runID,
		engine:    engine,
		venue:     venue,
		feed:      quotes,
		newTicker: newTicker,
		recorder:  nopRecorder{},
		log:       &logger.Logger{Logger: log.With(zap.String("run_id", runID))},
	}
}

// WithRecorder reports metrics to recorder. Call it before Run.
func (r *Runner) WithRecorder(recorder Recorder) *Runner {
	r.recorder = recorder

	return r
}

// RunID identifies this run in log output.
func (r *Runner) RunID() string {
	return r.runID
}

// Run blocks until ctx is cancelled or the feed ends. On the way out every
// live order is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if starter, ok := r.venue.(Starter); ok {
		if err := starter.Start(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeUserStreamFailed, "failed to start venue", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticks, feedErr := r.pump(ctx)

	config := r.engine.Config()
	timer := r.newTicker(config.TimerInterval)
	defer timer.Stop()

	observer, _ := r.venue.(TickObserver)

	r.log.Info("Grid runner started",
		zap.Duration("timer_interval", config.TimerInterval),
		zap.Float64("grid_step", config.GridStep),
		zap.Float64("fixed_size", config.FixedSize),
	)

	r.recorder.ObserveSnapshot(r.engine.Snapshot())

	for {
		select {
		case <-ctx.Done():
			r.shutdown()

			return nil
		case <-timer.C():
			r.engine.OnTimer()
		case tick, ok := <-ticks:
			if !ok {
				r.shutdown()

				return *feedErr
			}

			if observer != nil {
				observer.OnTick(tick)
				r.dispatchUpdates()
			}

			r.engine.OnTick(tick)
			r.recorder.ObserveQuote()
		case <-r.venue.Notify():
			r.dispatchUpdates()
		}

		r.recorder.ObserveSnapshot(r.engine.Snapshot())
	}
}

// pump moves quotes from the feed iterator onto a channel. The returned error
// pointer is only valid once the channel is closed.
func (r *Runner) pump(ctx context.Context) (<-chan types.Tick, *error) {
	ticks := make(chan types.Tick)

	var feedErr error

	go func() {
		defer close(ticks)

		for tick, err := range r.feed.Stream(ctx) {
			if err != nil {
				if errors.HasCode(err, errors.ErrCodeFeedStartFailed) {
					feedErr = err

					return
				}

				r.log.Warn("Quote feed error", zap.Error(err))
				r.recorder.ObserveFeedError()

				continue
			}

			select {
			case ticks <- tick:
			case <-ctx.Done():
				return
			}
		}

		if ctx.Err() == nil {
			feedErr = errors.New(errors.ErrCodeFeedDisconnected, "quote feed ended")
		}
	}()

	return ticks, &feedErr
}

func (r *Runner) dispatchUpdates() {
	for _, update := range r.venue.Drain() {
		r.log.Debug("Order update",
			zap.String("order_id", update.OrderID),
			zap.String("status", string(update.Status)),
			zap.Float64("filled_size", update.FilledSize),
		)

		r.engine.OnOrderUpdate(update)
		r.recorder.ObserveOrderUpdate(update)
	}
}

func (r *Runner) shutdown() {
	r.engine.Stop()
	r.dispatchUpdates()

	snapshot := r.engine.Snapshot()
	r.recorder.ObserveSnapshot(snapshot)

	r.log.Info("Grid runner stopped",
		zap.String("state", string(snapshot.State)),
		zap.Float64("position", snapshot.Position),
		zap.Float64("average_price", snapshot.AveragePrice),
	)
}
