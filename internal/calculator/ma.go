package calculator

import "errors"

// SMA computes the simple moving average of the last period values.
func SMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), nil
}

// SMAOrNil returns the SMA, or nil when the series is too short.
func SMAOrNil(values []float64, period int) *float64 {
	v, err := SMA(values, period)
	if err != nil {
		return nil
	}
	return &v
}
