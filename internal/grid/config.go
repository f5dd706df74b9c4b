package grid

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// TriggerMode selects whether flat-state placement and exit checks also run
// inline on every market tick.
type TriggerMode string

// CooldownExit selects what ends a post-stop cooldown.
type CooldownExit string

// StopAnchor selects the reference price for the stop-loss trigger.
type StopAnchor string

const (
	// TriggerModeTimer runs every action on its timer cadence only.
	TriggerModeTimer TriggerMode = "timer"
	// TriggerModeTick additionally checks entries and exits on each quote.
	TriggerModeTick TriggerMode = "tick"
)

const (
	// CooldownExitElapsedAndFlat requires the cooldown to elapse and the position to be flat.
	CooldownExitElapsedAndFlat CooldownExit = "elapsed_and_flat"
	// CooldownExitElapsed only requires the cooldown to elapse.
	CooldownExitElapsed CooldownExit = "elapsed"
)

const (
	// StopAnchorLastFill measures adverse excursion from the last entry fill,
	// falling back to the average price before any entry fill.
	StopAnchorLastFill StopAnchor = "last_fill"
	// StopAnchorAverage measures adverse excursion from the average price.
	StopAnchorAverage StopAnchor = "average"
)

// Default configuration values.
const (
	DefaultTimerInterval     = time.Second
	DefaultLadderInterval    = 15
	DefaultProfitInterval    = 15
	DefaultStopInterval      = 60
	DefaultMarketableEpsilon = 0.0001
)

// Config holds the immutable parameters of a grid engine.
type Config struct {
	// GridStep is the price distance between two ladder levels.
	GridStep float64 `json:"grid_step" yaml:"grid_step" jsonschema:"title=Grid Step,description=Price increment between ladder levels,exclusiveMinimum=0" validate:"required,gt=0"`
	// FixedSize is the size of every entry order.
	FixedSize float64 `json:"fixed_size" yaml:"fixed_size" jsonschema:"title=Fixed Size,description=Size of each entry order,exclusiveMinimum=0" validate:"required,gt=0"`
	// MaxPositionMultiple caps the absolute position at MaxPositionMultiple * FixedSize.
	MaxPositionMultiple float64 `json:"max_position_multiple" yaml:"max_position_multiple" jsonschema:"title=Max Position Multiple,description=Maximum absolute position in units of fixed size,exclusiveMinimum=0" validate:"required,gt=0"`
	// ProfitTriggerCount is the absolute position, in units of fixed size, from which a profit order is placed.
	ProfitTriggerCount float64 `json:"profit_trigger_count" yaml:"profit_trigger_count" jsonschema:"title=Profit Trigger Count,description=Position in units of fixed size before taking profit,exclusiveMinimum=0" validate:"required,gt=0"`
	// StopMultiplier is the number of grid steps of adverse move that triggers a stop.
	StopMultiplier float64 `json:"stop_multiplier" yaml:"stop_multiplier" jsonschema:"title=Stop Multiplier,description=Grid steps of adverse move before stopping out,exclusiveMinimum=0" validate:"required,gt=0"`
	// Cooldown is how long entries stay suspended after a stop.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown" jsonschema:"title=Cooldown,description=Pause after a stop loss (nanoseconds in JSON; Go duration string in YAML)" validate:"required,gt=0"`

	// TimerInterval is the period of the host heartbeat.
	TimerInterval time.Duration `json:"timer_interval" yaml:"timer_interval" jsonschema:"title=Timer Interval,description=Heartbeat period" validate:"gte=0"`
	// LadderInterval is the number of timer ticks between ladder refreshes.
	LadderInterval int `json:"ladder_interval" yaml:"ladder_interval" jsonschema:"title=Ladder Interval,description=Timer ticks between ladder refreshes,default=15" validate:"gte=0"`
	// ProfitInterval is the number of timer ticks between profit checks.
	ProfitInterval int `json:"profit_interval" yaml:"profit_interval" jsonschema:"title=Profit Interval,description=Timer ticks between profit checks,default=15" validate:"gte=0"`
	// StopInterval is the number of timer ticks between stop checks.
	StopInterval int `json:"stop_interval" yaml:"stop_interval" jsonschema:"title=Stop Interval,description=Timer ticks between stop checks,default=60" validate:"gte=0"`

	TriggerMode  TriggerMode  `json:"trigger_mode" yaml:"trigger_mode" jsonschema:"title=Trigger Mode,enum=timer,enum=tick,default=timer" validate:"omitempty,oneof=timer tick"`
	CooldownExit CooldownExit `json:"cooldown_exit" yaml:"cooldown_exit" jsonschema:"title=Cooldown Exit,enum=elapsed_and_flat,enum=elapsed,default=elapsed_and_flat" validate:"omitempty,oneof=elapsed_and_flat elapsed"`
	StopAnchor   StopAnchor   `json:"stop_anchor" yaml:"stop_anchor" jsonschema:"title=Stop Anchor,enum=last_fill,enum=average,default=last_fill" validate:"omitempty,oneof=last_fill average"`

	// MarketableEpsilon is the relative offset applied to the opposite quote so
	// that profit orders rest just outside the touch. Nil means the default;
	// zero is a valid setting.
	MarketableEpsilon *float64 `json:"marketable_epsilon,omitempty" yaml:"marketable_epsilon,omitempty" jsonschema:"title=Marketable Epsilon,description=Relative offset from the quote for exit prices,default=0.0001" validate:"omitempty,gte=0,lt=1"`
	// StaleQuoteTicks is the number of timer ticks without a quote after which
	// the last quote is no longer used. Zero disables the check.
	StaleQuoteTicks int `json:"stale_quote_ticks" yaml:"stale_quote_ticks" jsonschema:"title=Stale Quote Ticks,description=Timer ticks before the last quote goes stale (0 disables)" validate:"gte=0"`

	StepPolicy StepPolicyConfig `json:"step_policy" yaml:"step_policy" jsonschema:"title=Step Policy,description=Mapping from position size to grid step multiplier"`
}

// WithDefaults returns a copy of the config with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.TimerInterval <= 0 {
		c.TimerInterval = DefaultTimerInterval
	}

	if c.LadderInterval <= 0 {
		c.LadderInterval = DefaultLadderInterval
	}

	if c.ProfitInterval <= 0 {
		c.ProfitInterval = DefaultProfitInterval
	}

	if c.StopInterval <= 0 {
		c.StopInterval = DefaultStopInterval
	}

	if c.TriggerMode == "" {
		c.TriggerMode = TriggerModeTimer
	}

	if c.CooldownExit == "" {
		c.CooldownExit = CooldownExitElapsedAndFlat
	}

	if c.StopAnchor == "" {
		c.StopAnchor = StopAnchorLastFill
	}

	if c.MarketableEpsilon == nil {
		epsilon := DefaultMarketableEpsilon
		c.MarketableEpsilon = &epsilon
	}

	if c.StepPolicy.Preset == "" && len(c.StepPolicy.Levels) == 0 {
		c.StepPolicy.Preset = StepPresetStandard
	}

	return c
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid grid config", err)
	}

	if c.ProfitTriggerCount > c.MaxPositionMultiple {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"profit_trigger_count %v exceeds max_position_multiple %v", c.ProfitTriggerCount, c.MaxPositionMultiple)
	}

	if _, err := c.StepPolicy.Build(); err != nil {
		return err
	}

	return nil
}

// MaxPosition returns the absolute position cap.
func (c *Config) MaxPosition() float64 {
	return c.MaxPositionMultiple * c.FixedSize
}

// ProfitTriggerPosition returns the absolute position from which profit is taken.
func (c *Config) ProfitTriggerPosition() float64 {
	return c.ProfitTriggerCount * c.FixedSize
}

// Epsilon returns the marketable epsilon, falling back to the default when unset.
func (c *Config) Epsilon() float64 {
	if c.MarketableEpsilon == nil {
		return DefaultMarketableEpsilon
	}

	return *c.MarketableEpsilon
}

// CooldownTicks converts the cooldown duration into timer ticks, rounding up.
func (c *Config) CooldownTicks() int {
	interval := c.TimerInterval
	if interval <= 0 {
		interval = DefaultTimerInterval
	}

	return int(math.Ceil(float64(c.Cooldown) / float64(interval)))
}
