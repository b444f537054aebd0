package indicator

import (
	"github.com/adaptivex/sectorbot/internal/core"
)

// SMA calculates the simple moving average.
// Returns a slice of length len(prices) - period + 1.
func SMA(prices []float64, period int) []float64 {
	if period < 1 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// SMALast returns the latest moving-average value, or an insufficient-data
// error when the series is shorter than the period. The regime detector
// uses this for the 200-day benchmark average.
func SMALast(prices []float64, period int) (float64, error) {
	sma := SMA(prices, period)
	if len(sma) == 0 {
		return 0, core.ErrInsufficientData
	}
	return sma[len(sma)-1], nil
}
