package indicator

import (
	"math"

	"github.com/adaptivex/sectorbot/internal/core"
)

// DMI holds the directional movement series. Slices are aligned to the
// input bars; entries before the warm-up window are zero.
type DMI struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX computes the average directional index with its +DI/-DI components.
// Directional movement and true range are smoothed with an exponential
// average of the given period, seeded with simple means. A series shorter
// than two full periods cannot produce a meaningful ADX value.
func ADX(highs, lows, closes []float64, period int) (*DMI, error) {
	n := len(highs)
	if n != len(lows) || n != len(closes) {
		return nil, core.ErrNoData
	}
	if period < 1 || n < 2*period {
		return nil, core.ErrInsufficientData
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)

	for i := 1; i < n; i++ {
		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]

		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}

		tr[i] = trueRange(highs[i], lows[i], closes[i-1])
	}

	alpha := 2.0 / float64(period+1)

	smoothTR := make([]float64, n)
	smoothPlus := make([]float64, n)
	smoothMinus := make([]float64, n)

	smoothTR[period-1] = mean(tr[1:period])
	smoothPlus[period-1] = mean(plusDM[1:period])
	smoothMinus[period-1] = mean(minusDM[1:period])

	for i := period; i < n; i++ {
		smoothTR[i] = alpha*tr[i] + (1-alpha)*smoothTR[i-1]
		smoothPlus[i] = alpha*plusDM[i] + (1-alpha)*smoothPlus[i-1]
		smoothMinus[i] = alpha*minusDM[i] + (1-alpha)*smoothMinus[i-1]
	}

	plusDI := make([]float64, n)
	minusDI := make([]float64, n)
	dx := make([]float64, n)

	for i := period; i < n; i++ {
		if smoothTR[i] > 0 {
			plusDI[i] = 100 * smoothPlus[i] / smoothTR[i]
			minusDI[i] = 100 * smoothMinus[i] / smoothTR[i]
		}
		if sum := plusDI[i] + minusDI[i]; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / sum
		}
	}

	adx := make([]float64, n)
	adx[2*period-1] = mean(dx[period : 2*period])
	for i := 2 * period; i < n; i++ {
		adx[i] = alpha*dx[i] + (1-alpha)*adx[i-1]
	}

	return &DMI{ADX: adx, PlusDI: plusDI, MinusDI: minusDI}, nil
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if v := math.Abs(high - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(low - prevClose); v > tr {
		tr = v
	}
	return tr
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
