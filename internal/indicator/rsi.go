package indicator

import (
	"github.com/adaptivex/sectorbot/internal/core"
)

// RSI computes the relative strength index with Wilder smoothing.
// The returned slice is aligned to the input; entries before index
// `period` are zero (not yet defined). When the average loss is zero
// the oscillator is pinned at 100 rather than dividing by zero.
func RSI(closes []float64, period int) ([]float64, error) {
	if period < 1 || len(closes) < period+1 {
		return nil, core.ErrInsufficientData
	}

	n := len(closes)
	rsi := make([]float64, n)

	gains := make([]float64, n-1)
	losses := make([]float64, n-1)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := mean(gains[:period])
	avgLoss := mean(losses[:period])
	rsi[period] = rsiValue(avgGain, avgLoss)

	for i := period; i < n-1; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		rsi[i+1] = rsiValue(avgGain, avgLoss)
	}

	return rsi, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss <= 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
