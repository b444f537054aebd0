package core

import "time"

// TrendDirection is the side of the trend-flip line price is on.
type TrendDirection int

const (
	TrendUp   TrendDirection = 1
	TrendDown TrendDirection = -1
)

// String returns the conventional bullish/bearish name.
func (d TrendDirection) String() string {
	if d == TrendUp {
		return "bullish"
	}
	return "bearish"
}

// Bar represents one daily candlestick for a ticker.
// Bars are externally supplied, time-ordered, and never mutated.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// TrendState is the running state of the parabolic trend-flip line.
// It evolves one bar at a time and resets its extreme point and
// acceleration factor on every direction flip.
type TrendState struct {
	Direction    TrendDirection
	Value        float64 // current line value
	ExtremePoint float64
	Acceleration float64
}

// TrendEpisode counts consecutive bars since the last trend flip.
// DaysInTrend resets to 1 on the flip bar and is non-decreasing otherwise.
type TrendEpisode struct {
	DaysInTrend int
	Direction   TrendDirection
}

// IndicatorSnapshot holds the derived indicator values at one bar.
type IndicatorSnapshot struct {
	PSAR       float64
	ADX        float64
	RSI        float64
	ATRPercent float64
}

// Bullish reports whether the close is above the trend-flip line.
func (s IndicatorSnapshot) Bullish(close float64) bool {
	return close > s.PSAR
}

// PolicyMode selects the decision-engine behavior for held positions
// and capital allocation.
type PolicyMode string

const (
	// PolicyParentBased exits only on a parent flip and holds children
	// through their own weakness.
	PolicyParentBased PolicyMode = "parent_based"
	// PolicyRotation swaps weak children for stronger siblings.
	PolicyRotation PolicyMode = "rotation"
	// PolicyWeightedRotation rotates and concentrates capital in the
	// strongest-ranked parents.
	PolicyWeightedRotation PolicyMode = "weighted_rotation"
	// PolicyRegimeAware picks one of the above daily from market regime.
	PolicyRegimeAware PolicyMode = "regime_aware"
)

// Valid reports whether the mode is one of the defined policies.
func (m PolicyMode) Valid() bool {
	switch m {
	case PolicyParentBased, PolicyRotation, PolicyWeightedRotation, PolicyRegimeAware:
		return true
	}
	return false
}

// Regime is the daily overall-market classification.
type Regime string

const (
	RegimeBull     Regime = "bull"
	RegimeBear     Regime = "bear"
	RegimeVolatile Regime = "volatile"
)

// ExitReason explains why a position was closed.
type ExitReason string

const (
	ExitParentBearish ExitReason = "parent bearish"
	ExitRotated       ExitReason = "rotated"
	ExitNoRotation    ExitReason = "no rotation available"
	ExitEndOfBacktest ExitReason = "end of backtest"
)
