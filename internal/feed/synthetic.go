package feed

import (
	"context"
	"iter"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-grid/internal/types"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// SyntheticConfig configures the random-walk quote generator.
type SyntheticConfig struct {
	// InitialPrice is the starting mid price.
	InitialPrice float64 `json:"initial_price" yaml:"initial_price" jsonschema:"title=Initial Price,description=Starting mid price,exclusiveMinimum=0,default=100" validate:"gt=0"`
	// Volatility is the per-tick standard deviation of the log return (0.001 = 0.1%).
	Volatility float64 `json:"volatility" yaml:"volatility" jsonschema:"title=Volatility,description=Per-tick return standard deviation,minimum=0,default=0.001" validate:"gte=0,lt=1"`
	// Spread is the absolute distance between bid and ask.
	Spread float64 `json:"spread" yaml:"spread" jsonschema:"title=Spread,description=Absolute bid/ask spread,minimum=0,default=0.1" validate:"gte=0"`
	// Interval is the time between two quotes.
	Interval time.Duration `json:"interval" yaml:"interval" jsonschema:"title=Interval,description=Time between quotes" validate:"gt=0"`
	// Seed makes the walk reproducible. Zero seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed" jsonschema:"title=Seed,description=Random seed (0 uses the clock)"`
}

// DefaultSyntheticConfig returns a sensible default configuration.
func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		InitialPrice: 100,
		Volatility:   0.001,
		Spread:       0.1,
		Interval:     time.Second,
		Seed:         0,
	}
}

// Validate validates the SyntheticConfig struct.
func (c *SyntheticConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid synthetic feed config", err)
	}

	return nil
}

// SyntheticFeed generates quotes from a geometric Brownian motion around the
// initial price. It is intended for paper trading and tests.
type SyntheticFeed struct {
	mu     sync.Mutex
	symbol string
	config SyntheticConfig
	rng    *rand.Rand
	price  float64
	now    time.Time
}

// NewSyntheticFeed creates a synthetic feed.
func NewSyntheticFeed(symbol string, config SyntheticConfig) (*SyntheticFeed, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &SyntheticFeed{
		mu:     sync.Mutex{},
		symbol: symbol,
		config: config,
		rng:    rand.New(rand.NewSource(seed)),
		price:  config.InitialPrice,
		now:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// Next advances the walk by one step and returns the quote.
func (f *SyntheticFeed) Next() types.Tick {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Box-Muller transform for a standard normal draw
	u1 := 1 - f.rng.Float64()
	u2 := f.rng.Float64()
	z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

	next := f.price * math.Exp(f.config.Volatility*z)
	if next <= f.config.Spread {
		next = f.price
	}

	f.price = next
	f.now = f.now.Add(f.config.Interval)

	half := f.config.Spread / 2

	return types.Tick{
		Symbol:  f.symbol,
		BestBid: roundToDecimals(f.price-half, 4),
		BestAsk: roundToDecimals(f.price+half, 4),
		Time:    f.now,
	}
}

// Stream yields one quote per interval.
func (f *SyntheticFeed) Stream(ctx context.Context) iter.Seq2[types.Tick, error] {
	return func(yield func(types.Tick, error) bool) {
		ticker := time.NewTicker(f.config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !yield(f.Next(), nil) {
					return
				}
			}
		}
	}
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
