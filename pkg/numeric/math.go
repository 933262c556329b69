// Package numeric provides small float helpers shared by the forecast code.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of values, or 0 when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Blend combines two components with fixed weights.
func Blend(a, weightA, b, weightB float64) float64 {
	return a*weightA + b*weightB
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundInt rounds half away from zero.
func RoundInt(v float64) int64 {
	return int64(math.Round(v))
}

// RoundMoney multiplies quantity by rate and rounds to a whole currency unit.
// The product is taken in decimal so tariffs like 6.5 do not pick up
// binary representation error before rounding.
func RoundMoney(quantity float64, rate decimal.Decimal) int64 {
	return decimal.NewFromFloat(quantity).Mul(rate).Round(0).IntPart()
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
