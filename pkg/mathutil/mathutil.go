// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/fcff-tools/ginzu/pkg/constants"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Used for making logical comparisons.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether a value is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// SanitizeValue replaces a non-finite value with nil so it can be encoded as
// JSON null; finite values are returned as-is.
func SanitizeValue(val float64) interface{} {
	if !IsFinite(val) {
		return nil
	}
	return val
}

// SanitizeSlice applies SanitizeValue to every element of a series.
func SanitizeSlice(vals []float64) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		out[i] = SanitizeValue(v)
	}
	return out
}
