package indicator

import (
	"github.com/adaptivex/sectorbot/internal/core"
)

// ATR computes the exponentially smoothed average true range series.
// The first bar has no previous close, so its true range is high-low.
func ATR(highs, lows, closes []float64, period int) ([]float64, error) {
	n := len(highs)
	if n != len(lows) || n != len(closes) {
		return nil, core.ErrNoData
	}
	if period < 1 || n < period+1 {
		return nil, core.ErrInsufficientData
	}

	tr := make([]float64, n)
	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		tr[i] = trueRange(highs[i], lows[i], closes[i-1])
	}

	alpha := 2.0 / float64(period+1)
	atr := make([]float64, n)
	atr[0] = tr[0]
	for i := 1; i < n; i++ {
		atr[i] = alpha*tr[i] + (1-alpha)*atr[i-1]
	}
	return atr, nil
}

// ATRPercent returns the latest average true range as a percentage of the
// latest close, the volatility measure used for entry scoring.
func ATRPercent(highs, lows, closes []float64, period int) (float64, error) {
	atr, err := ATR(highs, lows, closes, period)
	if err != nil {
		return 0, err
	}
	last := closes[len(closes)-1]
	if last <= 0 {
		return 0, core.ErrNoData
	}
	return atr[len(atr)-1] / last * 100, nil
}
