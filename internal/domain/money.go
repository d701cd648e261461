package domain

import "math"

// Fee computes a platform fee on an amount in minor units, rounded to the
// nearest minor unit.
func Fee(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate))
}
