package indicator

import (
	"errors"
	"testing"

	"github.com/adaptivex/sectorbot/internal/core"
)

// riseThenFall builds a series that climbs steadily and then collapses.
// The collapse must produce exactly one flip when price crosses the line.
func riseThenFall(up, down int) (highs, lows []float64) {
	price := 100.0
	for i := 0; i < up; i++ {
		price += 1.0
		highs = append(highs, price+0.5)
		lows = append(lows, price-0.5)
	}
	for i := 0; i < down; i++ {
		price -= 2.0
		highs = append(highs, price+0.5)
		lows = append(lows, price-0.5)
	}
	return highs, lows
}

func TestPSAR_SingleFlipOnReversal(t *testing.T) {
	highs, lows := riseThenFall(30, 15)

	_, dirs, err := PSAR(highs, lows)
	if err != nil {
		t.Fatalf("PSAR: %v", err)
	}

	flips := 0
	for i := 1; i < len(dirs); i++ {
		if dirs[i] != dirs[i-1] {
			flips++
		}
	}
	if flips != 1 {
		t.Errorf("flips = %d, want exactly 1", flips)
	}
	if dirs[0] != core.TrendUp {
		t.Error("series should start in uptrend")
	}
	if dirs[len(dirs)-1] != core.TrendDown {
		t.Error("series should end in downtrend")
	}
}

func TestPSAR_NoFlipWithoutCrossing(t *testing.T) {
	// monotonic rise only: line trails below price, never crossed
	highs, lows := riseThenFall(40, 0)

	_, dirs, err := PSAR(highs, lows)
	if err != nil {
		t.Fatalf("PSAR: %v", err)
	}
	for i, d := range dirs {
		if d != core.TrendUp {
			t.Fatalf("bar %d flipped without a crossing", i)
		}
	}
}

func TestPSARStepper_ResetOnFlip(t *testing.T) {
	highs, lows := riseThenFall(30, 15)

	stepper := NewPSARStepper(PSARStep, PSARMaxStep)
	var before core.TrendState
	for i := range highs {
		state, flipped := stepper.Step(highs[i], lows[i])
		if flipped {
			if state.Acceleration != PSARStep {
				t.Errorf("acceleration after flip = %v, want initial step %v", state.Acceleration, PSARStep)
			}
			if state.ExtremePoint != lows[i] {
				t.Errorf("extreme point after downward flip = %v, want bar low %v", state.ExtremePoint, lows[i])
			}
			if state.Value != before.ExtremePoint {
				t.Errorf("line after flip = %v, want prior extreme point %v", state.Value, before.ExtremePoint)
			}
			return
		}
		before = state
	}
	t.Fatal("expected a flip")
}

func TestPSAR_AccelerationCapped(t *testing.T) {
	highs, lows := riseThenFall(60, 0)

	stepper := NewPSARStepper(PSARStep, PSARMaxStep)
	for i := range highs {
		state, _ := stepper.Step(highs[i], lows[i])
		if state.Acceleration > PSARMaxStep {
			t.Fatalf("acceleration %v exceeds cap at bar %d", state.Acceleration, i)
		}
	}
}

func TestPSAR_LineClampedToPriorLows(t *testing.T) {
	highs, lows := riseThenFall(30, 0)

	values, _, err := PSAR(highs, lows)
	if err != nil {
		t.Fatalf("PSAR: %v", err)
	}
	for i := 2; i < len(values); i++ {
		if values[i] > lows[i-1] || values[i] > lows[i-2] {
			t.Fatalf("bar %d: line %v entered prior bars' range (lows %v, %v)",
				i, values[i], lows[i-1], lows[i-2])
		}
	}
}

func TestPSAR_InsufficientData(t *testing.T) {
	_, _, err := PSAR([]float64{100}, []float64{99})
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestPSAROnValues_BearishBelowLine(t *testing.T) {
	// rising then falling oscillator values
	values := []float64{50, 55, 60, 65, 70, 72, 74, 60, 48, 40, 35}

	line, dirs, err := PSAROnValues(values, PSARStep, PSARMaxStep)
	if err != nil {
		t.Fatalf("PSAROnValues: %v", err)
	}
	last := len(values) - 1
	if dirs[last] != core.TrendDown {
		t.Error("collapsing oscillator should end bearish")
	}
	if values[last] >= line[last] {
		t.Error("bearish oscillator should sit below its line")
	}
}
