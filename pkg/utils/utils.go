// Package utils provides utility functions for the analytics backend.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// GenerateID generates a unique ID with optional prefix.
func GenerateID(prefix string) string {
	bytes := make([]byte, 16)
	rand.Read(bytes)
	id := hex.EncodeToString(bytes)
	if prefix != "" {
		return fmt.Sprintf("%s_%s", prefix, id)
	}
	return id
}

// GenerateJobID generates a unique optimizer job ID.
func GenerateJobID() string {
	return GenerateID("opt")
}

// FormatSymbol normalizes a ticker symbol.
func FormatSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
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

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Finite maps NaN and Infinity to the fallback value. Every metric that
// leaves the analytics core passes through this boundary.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// RoundStep snaps v onto the grid anchored at min with the given step,
// then rounds away accumulated floating-point drift.
func RoundStep(v, min, step float64) float64 {
	if step <= 0 {
		return v
	}
	n := math.Round((v - min) / step)
	return RoundPlaces(min+n*step, 8)
}

// RoundPlaces rounds v to the given number of decimal places.
func RoundPlaces(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation, 0 for fewer than 2 values.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}

// TailReturns derives simple returns over the last n transitions of a
// value series, skipping non-positive denominators.
func TailReturns(values []float64, n int) []float64 {
	start := len(values) - n - 1
	if start < 0 {
		start = 0
	}
	var returns []float64
	for i := start + 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

// PercentileRank returns the percentage of values strictly below x,
// in [0, 100]. 50 for an empty history.
func PercentileRank(values []float64, x float64) float64 {
	if len(values) == 0 {
		return 50
	}
	below := 0
	for _, v := range values {
		if v < x {
			below++
		}
	}
	return 100 * float64(below) / float64(len(values))
}
