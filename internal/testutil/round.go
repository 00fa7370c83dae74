package testutil

import "math"

// RoundG rounds a weight in kilograms to grams.
func RoundG(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// RoundPct rounds a ratio to hundredths of a percent.
func RoundPct(p float64) float64 {
	return math.Round(p*10000) / 10000
}
