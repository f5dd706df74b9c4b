package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	tests := []struct {
		name      string
		quantity  float64
		precision int
		expected  float64
	}{
		{name: "already aligned", quantity: 0.002, precision: 3, expected: 0.002},
		{name: "rounds down", quantity: 0.0029, precision: 3, expected: 0.002},
		{name: "float artifact", quantity: 0.1 + 0.2, precision: 1, expected: 0.3},
		{name: "zero precision", quantity: 2.99, precision: 0, expected: 2},
		{name: "below precision", quantity: 0.0004, precision: 3, expected: 0},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.Equal(tt.expected, RoundToDecimalPrecision(tt.quantity, tt.precision))
		})
	}
}

func (suite *UtilsTestSuite) TestRoundPriceForSide() {
	suite.Equal(99.12, RoundPriceForSide(99.129, 2, true))
	suite.Equal(99.13, RoundPriceForSide(99.121, 2, false))
	suite.Equal(99.5, RoundPriceForSide(99.5, 2, true))
	suite.Equal(99.5, RoundPriceForSide(99.5, 2, false))
}

func (suite *UtilsTestSuite) TestFormatDecimal() {
	suite.Equal("99.50", FormatDecimal(99.5, 2))
	suite.Equal("0.001", FormatDecimal(0.001, 3))
	suite.Equal("100", FormatDecimal(100, 0))
}
