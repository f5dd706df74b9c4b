package utils

import (
	"github.com/shopspring/decimal"
)

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	return decimal.NewFromFloat(quantity).RoundFloor(int32(decimalPrecision)).InexactFloat64()
}

// RoundPriceForSide rounds a limit price to the venue precision without
// moving it toward the opposite side of the book: bids round down, asks up.
func RoundPriceForSide(price float64, decimalPrecision int, buying bool) float64 {
	value := decimal.NewFromFloat(price)
	if buying {
		return value.RoundFloor(int32(decimalPrecision)).InexactFloat64()
	}

	return value.RoundCeil(int32(decimalPrecision)).InexactFloat64()
}

// FormatDecimal renders a value with exactly decimalPrecision decimals.
func FormatDecimal(value float64, decimalPrecision int) string {
	return decimal.NewFromFloat(value).StringFixed(int32(decimalPrecision))
}
