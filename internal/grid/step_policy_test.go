package grid

import (
	"testing"

	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardStepTable(t *testing.T) {
	table := StandardStepTable()

	tests := []struct {
		name        string
		absPosition float64
		expected    int
	}{
		{name: "flat", absPosition: 0, expected: 1},
		{name: "two units", absPosition: 2, expected: 1},
		{name: "three units", absPosition: 3, expected: 2},
		{name: "four units", absPosition: 4.9, expected: 2},
		{name: "five units", absPosition: 5, expected: 4},
		{name: "seven units", absPosition: 7, expected: 6},
		{name: "far beyond", absPosition: 100, expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, table.Step(tt.absPosition, 1))
		})
	}
}

func TestHighFrequencyStepTable(t *testing.T) {
	table := HighFrequencyStepTable()

	tests := []struct {
		absPosition float64
		expected    int
	}{
		{absPosition: 2, expected: 1},
		{absPosition: 3, expected: 2},
		{absPosition: 5, expected: 3},
		{absPosition: 7.9, expected: 3},
		{absPosition: 8, expected: 4},
		{absPosition: 11, expected: 5},
		{absPosition: 13, expected: 6},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, table.Step(tt.absPosition, 1), "position %v", tt.absPosition)
	}
}

func TestStepTableIsMonotonic(t *testing.T) {
	for _, table := range []StepTable{StandardStepTable(), HighFrequencyStepTable()} {
		previous := 0
		for position := 0.0; position <= 20; position += 0.25 {
			step := table.Step(position, 1)
			assert.GreaterOrEqual(t, step, previous, "position %v", position)
			previous = step
		}
	}
}

func TestStepPolicyFunc(t *testing.T) {
	policy := StepPolicyFunc(func(absPosition, fixedSize float64) int {
		return int(absPosition/fixedSize) + 1
	})

	assert.Equal(t, 1, policy.Step(0, 1))
	assert.Equal(t, 3, policy.Step(2, 1))
}

func TestStepPolicyConfigBuild(t *testing.T) {
	tests := []struct {
		name     string
		config   StepPolicyConfig
		wantErr  bool
		expected StepTable
	}{
		{
			name:     "empty defaults to standard",
			config:   StepPolicyConfig{},
			expected: StandardStepTable(),
		},
		{
			name:     "high frequency preset",
			config:   StepPolicyConfig{Preset: StepPresetHighFrequency},
			expected: HighFrequencyStepTable(),
		},
		{
			name:    "unknown preset",
			config:  StepPolicyConfig{Preset: "aggressive"},
			wantErr: true,
		},
		{
			name: "explicit levels with default fallback",
			config: StepPolicyConfig{
				Levels: []StepLevel{{Below: 2, Step: 1}, {Below: 4, Step: 3}},
			},
			expected: StepTable{
				Levels:  []StepLevel{{Below: 2, Step: 1}, {Below: 4, Step: 3}},
				Default: 3,
			},
		},
		{
			name: "explicit levels with default",
			config: StepPolicyConfig{
				Levels:  []StepLevel{{Below: 2, Step: 1}},
				Default: 5,
			},
			expected: StepTable{
				Levels:  []StepLevel{{Below: 2, Step: 1}},
				Default: 5,
			},
		},
		{
			name: "below not increasing",
			config: StepPolicyConfig{
				Levels: []StepLevel{{Below: 4, Step: 1}, {Below: 4, Step: 2}},
			},
			wantErr: true,
		},
		{
			name: "step decreasing",
			config: StepPolicyConfig{
				Levels: []StepLevel{{Below: 2, Step: 3}, {Below: 4, Step: 2}},
			},
			wantErr: true,
		},
		{
			name: "default below last step",
			config: StepPolicyConfig{
				Levels:  []StepLevel{{Below: 2, Step: 3}},
				Default: 2,
			},
			wantErr: true,
		},
		{
			name: "zero step",
			config: StepPolicyConfig{
				Levels: []StepLevel{{Below: 2, Step: 0}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.config.Build()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidStepPolicy))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, table)
		})
	}
}
