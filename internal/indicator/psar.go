package indicator

import (
	"github.com/adaptivex/sectorbot/internal/core"
)

// Default parabolic stop-and-reverse parameters.
const (
	PSARStep    = 0.02
	PSARMaxStep = 0.2
)

// PSARStepper computes the parabolic trend-flip line one bar at a time.
// The line trails price, accelerates toward the extreme point while the
// trend persists, and flips sides exactly when price crosses it.
type PSARStepper struct {
	step    float64
	maxStep float64

	state core.TrendState
	bars  int

	// lows/highs of the two most recently processed bars, used to clamp
	// the candidate line so it never enters the prior bars' range
	prevLow1, prevLow2   float64
	prevHigh1, prevHigh2 float64
}

// NewPSARStepper creates a stepper with the given acceleration step and cap.
func NewPSARStepper(step, maxStep float64) *PSARStepper {
	return &PSARStepper{step: step, maxStep: maxStep}
}

// State returns the current trend state. Only meaningful after the first Step.
func (p *PSARStepper) State() core.TrendState {
	return p.state
}

// Step advances the line by one bar and reports whether the trend flipped.
// The first bar initializes an uptrend with the line at the bar's low.
func (p *PSARStepper) Step(high, low float64) (core.TrendState, bool) {
	defer func() {
		p.prevLow2, p.prevLow1 = p.prevLow1, low
		p.prevHigh2, p.prevHigh1 = p.prevHigh1, high
		p.bars++
	}()

	if p.bars == 0 {
		p.state = core.TrendState{
			Direction:    core.TrendUp,
			Value:        low,
			ExtremePoint: high,
			Acceleration: p.step,
		}
		return p.state, false
	}

	prev := p.state
	candidate := prev.Value + prev.Acceleration*(prev.ExtremePoint-prev.Value)

	if prev.Direction == core.TrendUp {
		candidate = minFloat(candidate, p.prevLow1)
		if p.bars >= 2 {
			candidate = minFloat(candidate, p.prevLow2)
		}
		if low < candidate {
			// price crossed the stop: reverse to downtrend
			p.state = core.TrendState{
				Direction:    core.TrendDown,
				Value:        prev.ExtremePoint,
				ExtremePoint: low,
				Acceleration: p.step,
			}
			return p.state, true
		}
		p.state.Value = candidate
		if high > prev.ExtremePoint {
			p.state.ExtremePoint = high
			p.state.Acceleration = minFloat(prev.Acceleration+p.step, p.maxStep)
		}
		return p.state, false
	}

	// downtrend: mirror image
	candidate = maxFloat(candidate, p.prevHigh1)
	if p.bars >= 2 {
		candidate = maxFloat(candidate, p.prevHigh2)
	}
	if high > candidate {
		p.state = core.TrendState{
			Direction:    core.TrendUp,
			Value:        prev.ExtremePoint,
			ExtremePoint: high,
			Acceleration: p.step,
		}
		return p.state, true
	}
	p.state.Value = candidate
	if low < prev.ExtremePoint {
		p.state.ExtremePoint = low
		p.state.Acceleration = minFloat(prev.Acceleration+p.step, p.maxStep)
	}
	return p.state, false
}

// PSAR computes the parabolic trend-flip line for a bar series with the
// default step and cap. It returns one line value and direction per bar.
func PSAR(highs, lows []float64) ([]float64, []core.TrendDirection, error) {
	return PSARWithParams(highs, lows, PSARStep, PSARMaxStep)
}

// PSARWithParams computes the parabolic line with explicit parameters.
func PSARWithParams(highs, lows []float64, step, maxStep float64) ([]float64, []core.TrendDirection, error) {
	if len(highs) != len(lows) {
		return nil, nil, core.ErrNoData
	}
	if len(highs) < 2 {
		return nil, nil, core.ErrInsufficientData
	}

	values := make([]float64, len(highs))
	dirs := make([]core.TrendDirection, len(highs))

	stepper := NewPSARStepper(step, maxStep)
	for i := range highs {
		state, _ := stepper.Step(highs[i], lows[i])
		values[i] = state.Value
		dirs[i] = state.Direction
	}
	return values, dirs, nil
}

// PSAROnValues applies the parabolic algorithm to a single value series,
// such as an oscillator. There is no high/low range, so the line is not
// clamped to prior bars and the initial line sits 2% under the first value.
func PSAROnValues(values []float64, step, maxStep float64) ([]float64, []core.TrendDirection, error) {
	if len(values) < 2 {
		return nil, nil, core.ErrInsufficientData
	}

	line := make([]float64, len(values))
	dirs := make([]core.TrendDirection, len(values))

	state := core.TrendState{
		Direction:    core.TrendUp,
		Value:        values[0] * 0.98,
		ExtremePoint: values[0],
		Acceleration: step,
	}
	line[0] = state.Value
	dirs[0] = state.Direction

	for i := 1; i < len(values); i++ {
		v := values[i]
		candidate := state.Value + state.Acceleration*(state.ExtremePoint-state.Value)

		if state.Direction == core.TrendUp {
			if v < candidate {
				state = core.TrendState{
					Direction:    core.TrendDown,
					Value:        state.ExtremePoint,
					ExtremePoint: v,
					Acceleration: step,
				}
			} else {
				state.Value = candidate
				if v > state.ExtremePoint {
					state.ExtremePoint = v
					state.Acceleration = minFloat(state.Acceleration+step, maxStep)
				}
			}
		} else {
			if v > candidate {
				state = core.TrendState{
					Direction:    core.TrendUp,
					Value:        state.ExtremePoint,
					ExtremePoint: v,
					Acceleration: step,
				}
			} else {
				state.Value = candidate
				if v < state.ExtremePoint {
					state.ExtremePoint = v
					state.Acceleration = minFloat(state.Acceleration+step, maxStep)
				}
			}
		}

		line[i] = state.Value
		dirs[i] = state.Direction
	}
	return line, dirs, nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
