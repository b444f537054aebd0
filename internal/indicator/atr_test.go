package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/adaptivex/sectorbot/internal/core"
)

func TestATRPercent_ConstantRange(t *testing.T) {
	// every bar spans exactly 2 points around a flat close of 100
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range highs {
		highs[i], lows[i], closes[i] = 101, 99, 100
	}

	got, err := ATRPercent(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("ATRPercent: %v", err)
	}
	if math.Abs(got-2.0) > 0.01 {
		t.Errorf("ATRPercent = %v, want ~2.0", got)
	}
}

func TestATRPercent_GapsWidenTrueRange(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := range highs {
		base := 100.0
		if i%2 == 0 {
			base = 110.0 // alternating gaps
		}
		highs[i], lows[i], closes[i] = base+1, base-1, base
	}

	got, err := ATRPercent(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("ATRPercent: %v", err)
	}
	if got < 5 {
		t.Errorf("ATRPercent with 10-point gaps = %v, want well above the 2%% bar range", got)
	}
}

func TestATR_InsufficientData(t *testing.T) {
	_, err := ATR([]float64{1, 2}, []float64{1, 2}, []float64{1, 2}, 14)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestSMA_RollingWindow(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	got := SMA(prices, 3)
	want := []float64{2, 3, 4}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("SMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSMALast_InsufficientData(t *testing.T) {
	_, err := SMALast([]float64{1, 2, 3}, 200)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
