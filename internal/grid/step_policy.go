package grid

import (
	"github.com/rxtech-lab/argo-grid/pkg/errors"
)

// StepPolicy maps the absolute position to a multiple of the grid step used
// when re-anchoring the ladder after a fill. Implementations must be
// monotonically non-decreasing in absPosition.
type StepPolicy interface {
	Step(absPosition, fixedSize float64) int
}

// StepPolicyFunc adapts a plain function to StepPolicy.
type StepPolicyFunc func(absPosition, fixedSize float64) int

// Step implements StepPolicy.
func (f StepPolicyFunc) Step(absPosition, fixedSize float64) int {
	return f(absPosition, fixedSize)
}

// StepPreset names a built-in step table.
type StepPreset string

const (
	// StepPresetStandard is the coarse four-bucket table.
	StepPresetStandard StepPreset = "standard"
	// StepPresetHighFrequency is the finer six-bucket table.
	StepPresetHighFrequency StepPreset = "high_frequency"
)

// StepLevel applies Step while the position is below Below * fixed size.
type StepLevel struct {
	Below float64 `json:"below" yaml:"below" jsonschema:"title=Below,description=Upper bound in units of fixed size (exclusive),exclusiveMinimum=0" validate:"gt=0"`
	Step  int     `json:"step" yaml:"step" jsonschema:"title=Step,description=Grid step multiplier,minimum=1" validate:"gte=1"`
}

// StepTable is a piecewise-constant StepPolicy.
type StepTable struct {
	Levels  []StepLevel
	Default int
}

// Step implements StepPolicy.
func (t StepTable) Step(absPosition, fixedSize float64) int {
	for _, level := range t.Levels {
		if absPosition < level.Below*fixedSize {
			return level.Step
		}
	}

	return t.Default
}

// StandardStepTable returns <3x→1, <5x→2, <7x→4, else 6.
func StandardStepTable() StepTable {
	return StepTable{
		Levels: []StepLevel{
			{Below: 3, Step: 1},
			{Below: 5, Step: 2},
			{Below: 7, Step: 4},
		},
		Default: 6,
	}
}

// HighFrequencyStepTable returns <3x→1, <5x→2, <8x→3, <11x→4, <13x→5, else 6.
func HighFrequencyStepTable() StepTable {
	return StepTable{
		Levels: []StepLevel{
			{Below: 3, Step: 1},
			{Below: 5, Step: 2},
			{Below: 8, Step: 3},
			{Below: 11, Step: 4},
			{Below: 13, Step: 5},
		},
		Default: 6,
	}
}

// StepPolicyConfig is the serialisable form of a step policy. Either Preset or
// Levels must be set; Levels take precedence.
type StepPolicyConfig struct {
	Preset  StepPreset  `json:"preset,omitempty" yaml:"preset,omitempty" jsonschema:"title=Preset,enum=standard,enum=high_frequency" validate:"omitempty,oneof=standard high_frequency"`
	Levels  []StepLevel `json:"levels,omitempty" yaml:"levels,omitempty" jsonschema:"title=Levels,description=Explicit step table" validate:"dive"`
	Default int         `json:"default,omitempty" yaml:"default,omitempty" jsonschema:"title=Default,description=Step once every level is exceeded" validate:"gte=0"`
}

// Build turns the config into a StepTable, checking that it is monotonic.
func (c StepPolicyConfig) Build() (StepTable, error) {
	if len(c.Levels) == 0 {
		switch c.Preset {
		case StepPresetStandard, "":
			return StandardStepTable(), nil
		case StepPresetHighFrequency:
			return HighFrequencyStepTable(), nil
		default:
			return StepTable{}, errors.Newf(errors.ErrCodeInvalidStepPolicy, "unknown step preset %q", c.Preset)
		}
	}

	table := StepTable{
		Levels:  append([]StepLevel(nil), c.Levels...),
		Default: c.Default,
	}

	for i, level := range table.Levels {
		if level.Below <= 0 || level.Step < 1 {
			return StepTable{}, errors.Newf(errors.ErrCodeInvalidStepPolicy, "step level %d is invalid: below=%v step=%d", i, level.Below, level.Step)
		}

		if i == 0 {
			continue
		}

		prev := table.Levels[i-1]
		if level.Below <= prev.Below {
			return StepTable{}, errors.Newf(errors.ErrCodeInvalidStepPolicy, "step level %d: below %v must exceed %v", i, level.Below, prev.Below)
		}

		if level.Step < prev.Step {
			return StepTable{}, errors.Newf(errors.ErrCodeInvalidStepPolicy, "step level %d: step %d decreases from %d", i, level.Step, prev.Step)
		}
	}

	last := table.Levels[len(table.Levels)-1]
	if table.Default == 0 {
		table.Default = last.Step
	}

	if table.Default < last.Step {
		return StepTable{}, errors.Newf(errors.ErrCodeInvalidStepPolicy, "default step %d is below last level step %d", table.Default, last.Step)
	}

	return table, nil
}
