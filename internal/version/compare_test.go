package version

import (
	"testing"

	"github.com/rxtech-lab/argo-grid/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersionCompatibility(t *testing.T) {
	tests := []struct {
		name          string
		binaryVersion string
		configVersion string
		expectedCode  errors.ErrorCode
		errorContains string
	}{
		{name: "exact match", binaryVersion: "1.2.0", configVersion: "1.2.0"},
		{name: "binary patch higher", binaryVersion: "1.2.1", configVersion: "1.2.0"},
		{name: "config patch higher", binaryVersion: "1.2.0", configVersion: "1.2.5"},
		{name: "v prefix on config", binaryVersion: "1.2.0", configVersion: "v1.2.0"},
		{name: "v prefix on both", binaryVersion: "v1.2.0", configVersion: "v1.2.0"},
		{name: "prerelease binary", binaryVersion: "1.2.0-alpha", configVersion: "1.2.0"},
		{name: "build metadata", binaryVersion: "1.2.0+build123", configVersion: "1.2.0"},
		{name: "binary is main", binaryVersion: "main", configVersion: "1.3.0"},
		{name: "config is main", binaryVersion: "1.2.0", configVersion: "main"},
		{
			name:          "binary minor higher",
			binaryVersion: "1.3.0",
			configVersion: "1.2.0",
			expectedCode:  errors.ErrCodeVersionMismatch,
			errorContains: "minor version mismatch",
		},
		{
			name:          "binary minor lower",
			binaryVersion: "1.1.0",
			configVersion: "1.2.0",
			expectedCode:  errors.ErrCodeVersionMismatch,
			errorContains: "minor version mismatch",
		},
		{
			name:          "major differs",
			binaryVersion: "2.0.0",
			configVersion: "1.2.0",
			expectedCode:  errors.ErrCodeVersionMismatch,
			errorContains: "major version mismatch",
		},
		{
			name:          "invalid binary version",
			binaryVersion: "not-a-version",
			configVersion: "1.2.0",
			expectedCode:  errors.ErrCodeInvalidVersion,
			errorContains: "invalid binary version",
		},
		{
			name:          "empty config version",
			binaryVersion: "1.2.0",
			configVersion: "",
			expectedCode:  errors.ErrCodeInvalidVersion,
			errorContains: "invalid config version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckVersionCompatibility(tt.binaryVersion, tt.configVersion)

			if tt.errorContains == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, errors.HasCode(err, tt.expectedCode))
		})
	}
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, Version, GetVersion())
}
