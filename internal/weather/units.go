package weather

import "math"

// Conversions into the Imperial unit system.

func MetersToMiles(m float64) float64 {
	return m / 1609.344
}

func FeetToMiles(ft float64) float64 {
	return ft / 5280
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Percent rounds v to the nearest integer and clamps it to [0,100].
func Percent(v float64) int {
	p := int(math.Round(v))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
