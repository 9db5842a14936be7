package transport

import "math"

const (
	DefaultDaysRetention = 2
	MaxDaysRetention     = 30
)

// EstimateFee prices a message by started kilobyte and retention day.
// Free messages (paid == false) cost nothing but are kept DefaultDaysRetention days at most.
func EstimateFee(size int, days int, paid bool, feePerKBDay float64) float64 {
	if !paid {
		return 0
	}
	if days <= 0 {
		days = DefaultDaysRetention
	}
	kb := math.Ceil(float64(size) / 1024)
	return kb * float64(days) * feePerKBDay
}

// Retention returns the number of days an envelope is kept by the network.
func Retention(days int, paid bool) int {
	switch {
	case days <= 0:
		return DefaultDaysRetention
	case !paid && days > DefaultDaysRetention:
		return DefaultDaysRetention
	case days > MaxDaysRetention:
		return MaxDaysRetention
	default:
		return days
	}
}
