// Package sbi computes the smart-buy-indicator entry score: a 0-10
// composite of volatility, trend-slope, and trend-strength components,
// weighted by how many days the current trend has been running.
package sbi

import (
	"math"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/indicator"
)

const (
	// MinBars is the warm-up required before a score is defined.
	MinBars = 20

	// brokenWindow is how recent a bullish-to-bearish flip must be to
	// force the score to zero.
	brokenWindow = 5

	defaultPeriod = 14
	fastRSIPeriod = 4

	// fallbackADX stands in when the series is too short for a real ADX.
	fallbackADX = 20
)

// Components are the individual sub-scores blended into the final value.
type Components struct {
	ATR   int
	Slope int
	ADX   int
}

// Result is the full scoring breakdown for one ticker on one day.
type Result struct {
	Score       int
	Direction   core.TrendDirection
	DaysInTrend int
	ATRPercent  float64
	GapPercent  float64 // today's price-to-line gap, signed
	GapSlope    float64 // gap change versus up to 3 bars earlier
	ADX         float64
	FastBearish bool // RSI(4) below its own trend-flip line
	IsBroken    bool // recent breakdown through the line
	Components  Components
	Snapshot    core.IndicatorSnapshot
}

// Scorer evaluates entry quality from a bar series.
type Scorer struct {
	period  int
	step    float64
	maxStep float64
}

// NewScorer creates a scorer with the standard 14-bar indicator period.
func NewScorer() *Scorer {
	return &Scorer{period: defaultPeriod, step: indicator.PSARStep, maxStep: indicator.PSARMaxStep}
}

// Evaluate scores the latest bar of the series. Series shorter than
// MinBars yield core.ErrInsufficientData rather than a guessed score.
func (s *Scorer) Evaluate(bars []core.Bar) (*Result, error) {
	if len(bars) < MinBars {
		return nil, core.ErrInsufficientData
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	psar, _, err := indicator.PSARWithParams(highs, lows, s.step, s.maxStep)
	if err != nil {
		return nil, err
	}

	last := len(bars) - 1
	direction := trendOf(closes[last], psar[last])
	gapNow := gapPercent(closes[last], psar[last])

	// consecutive bars on the same side of the line, including today
	days := 1
	for i := last - 1; i >= 0; i-- {
		if trendOf(closes[i], psar[i]) != direction {
			break
		}
		days++
	}

	// a bearish flip within the window, off a prior bullish run, is a
	// breakdown and never a buy
	broken := false
	if direction == core.TrendDown && days <= brokenWindow {
		idx := last - days
		if idx >= 0 && trendOf(closes[idx], psar[idx]) == core.TrendUp {
			broken = true
		}
	}

	// gap change versus the same measure up to 3 bars back
	gapSlope := 0.0
	if days >= 2 {
		lookback := days - 1
		if lookback > 3 {
			lookback = 3
		}
		prev := last - lookback
		gapSlope = gapNow - gapPercent(closes[prev], psar[prev])
	}

	atrPct, err := indicator.ATRPercent(highs, lows, closes, s.period)
	if err != nil {
		return nil, err
	}

	adxValue := float64(fallbackADX)
	if dmi, err := indicator.ADX(highs, lows, closes, s.period); err == nil {
		adxValue = dmi.ADX[last]
	}

	rsiValue := 0.0
	if rsi, err := indicator.RSI(closes, s.period); err == nil {
		rsiValue = rsi[last]
	}

	fastBearish := s.fastMomentumBearish(closes)

	comps := Components{
		ATR:   atrScore(days, atrPct),
		Slope: slopeScore(gapSlope),
		ADX:   adxScore(adxValue),
	}

	return &Result{
		Score:       Score(days, atrPct, gapSlope, adxValue, fastBearish, broken),
		Direction:   direction,
		DaysInTrend: days,
		ATRPercent:  atrPct,
		GapPercent:  gapNow,
		GapSlope:    gapSlope,
		ADX:         adxValue,
		FastBearish: fastBearish,
		IsBroken:    broken,
		Components:  comps,
		Snapshot: core.IndicatorSnapshot{
			PSAR:       psar[last],
			ADX:        adxValue,
			RSI:        rsiValue,
			ATRPercent: atrPct,
		},
	}, nil
}

// fastMomentumBearish applies the trend-flip algorithm to the RSI(4)
// series itself. A fast oscillator under its own line is an early
// momentum warning.
func (s *Scorer) fastMomentumBearish(closes []float64) bool {
	rsi, err := indicator.RSI(closes, fastRSIPeriod)
	if err != nil {
		return false
	}
	valid := rsi[fastRSIPeriod:]
	line, _, err := indicator.PSAROnValues(valid, s.step, s.maxStep)
	if err != nil {
		return false
	}
	last := len(valid) - 1
	return valid[last] < line[last]
}

// Score combines the component scores using the day-weighted formula and
// floors the blend to an integer in [0,10]. A broken trend short-circuits
// to zero regardless of the other inputs.
func Score(daysInTrend int, atrPercent, gapSlope, adx float64, fastBearish, isBroken bool) int {
	if isBroken {
		return 0
	}

	atr := float64(atrScore(daysInTrend, atrPercent))
	slope := float64(slopeScore(gapSlope))
	strength := float64(adxScore(adx))

	var score int
	switch {
	case daysInTrend <= 1:
		score = int(atr) // no slope history on the flip day
	case daysInTrend == 2:
		score = int(math.Floor(0.8*atr + 0.2*slope))
	case daysInTrend == 3:
		score = int(math.Floor(0.6*atr + 0.4*slope))
	case daysInTrend <= 5:
		score = int(math.Floor(0.4*atr + 0.4*slope + 0.2*strength))
	default:
		score = int(math.Floor(0.4*slope + 0.3*strength + 0.3*atr))
	}

	if fastBearish && daysInTrend >= 3 {
		score -= 2
	}

	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// atrScore rates volatility against day-dependent thresholds: early in a
// trend more volatility is tolerated, mature trends demand calm.
func atrScore(daysInTrend int, atrPercent float64) int {
	switch {
	case daysInTrend <= 1:
		if atrPercent < 7 {
			return 10
		}
		return 4
	case daysInTrend == 2:
		if atrPercent < 6 {
			return 10
		}
		return 4
	case daysInTrend <= 4:
		if atrPercent < 5 {
			return 10
		}
		return 4
	case daysInTrend == 5:
		switch {
		case atrPercent < 4:
			return 10
		case atrPercent < 5:
			return 8
		case atrPercent < 6:
			return 6
		default:
			return 4
		}
	default:
		switch {
		case atrPercent < 2:
			return 10
		case atrPercent < 2.5:
			return 9
		case atrPercent < 3:
			return 8
		case atrPercent < 4:
			return 7
		case atrPercent < 5:
			return 6
		default:
			return 4
		}
	}
}

// slopeScore rates whether the price-to-line gap is widening or closing.
func slopeScore(gapSlope float64) int {
	switch {
	case gapSlope >= 2:
		return 10
	case gapSlope >= 1:
		return 9
	case gapSlope >= 0.5:
		return 8
	case gapSlope >= -0.5:
		return 7
	case gapSlope >= -1:
		return 5
	case gapSlope >= -2:
		return 3
	default:
		return 1
	}
}

// adxScore rates trend strength.
func adxScore(adx float64) int {
	switch {
	case adx >= 40:
		return 10
	case adx >= 30:
		return 8
	case adx >= 25:
		return 6
	case adx >= 20:
		return 4
	default:
		return 2
	}
}

func trendOf(close, psar float64) core.TrendDirection {
	if close > psar {
		return core.TrendUp
	}
	return core.TrendDown
}

func gapPercent(close, psar float64) float64 {
	if close == 0 {
		return 0
	}
	return (close - psar) / close * 100
}
