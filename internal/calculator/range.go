package calculator

import (
	"errors"
	"math"
)

// Range returns the highest and lowest of values.
func Range(values []float64) (high, low float64, err error) {
	if len(values) == 0 {
		return 0, 0, errors.New("no values provided")
	}
	high, low = math.Inf(-1), math.Inf(1)
	for _, v := range values {
		high = math.Max(high, v)
		low = math.Min(low, v)
	}
	return high, low, nil
}

// Position returns where current sits within [low, high], from 0 to 1.
func Position(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Max(0, math.Min(1, pos)), nil
}

// ChangePercent is the move from first to last, in percent.
func ChangePercent(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return (last - first) / first * 100
}
