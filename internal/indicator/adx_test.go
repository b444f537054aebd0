package indicator

import (
	"errors"
	"testing"

	"github.com/adaptivex/sectorbot/internal/core"
)

func trendingSeries(n int) (highs, lows, closes []float64) {
	price := 100.0
	for i := 0; i < n; i++ {
		price += 1.5
		highs = append(highs, price+1)
		lows = append(lows, price-1)
		closes = append(closes, price)
	}
	return
}

func choppySeries(n int) (highs, lows, closes []float64) {
	for i := 0; i < n; i++ {
		price := 100.0
		if i%2 == 0 {
			price = 101.0
		}
		highs = append(highs, price+1)
		lows = append(lows, price-1)
		closes = append(closes, price)
	}
	return
}

func TestADX_StrongTrendScoresHigh(t *testing.T) {
	highs, lows, closes := trendingSeries(60)

	dmi, err := ADX(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("ADX: %v", err)
	}

	last := len(closes) - 1
	if dmi.ADX[last] < 40 {
		t.Errorf("ADX of persistent trend = %v, want >= 40", dmi.ADX[last])
	}
	if dmi.PlusDI[last] <= dmi.MinusDI[last] {
		t.Errorf("+DI (%v) should dominate -DI (%v) in an uptrend", dmi.PlusDI[last], dmi.MinusDI[last])
	}
}

func TestADX_ChopScoresLow(t *testing.T) {
	highs, lows, closes := choppySeries(60)

	dmi, err := ADX(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("ADX: %v", err)
	}
	if last := dmi.ADX[len(closes)-1]; last > 25 {
		t.Errorf("ADX of chop = %v, want low", last)
	}
}

func TestADX_ZeroDenominatorsDoNotPanic(t *testing.T) {
	// flat series: zero true range and zero directional movement
	highs := make([]float64, 40)
	lows := make([]float64, 40)
	closes := make([]float64, 40)
	for i := range highs {
		highs[i], lows[i], closes[i] = 100, 100, 100
	}

	dmi, err := ADX(highs, lows, closes, 14)
	if err != nil {
		t.Fatalf("ADX: %v", err)
	}
	if dmi.ADX[len(closes)-1] != 0 {
		t.Error("flat series should yield zero ADX, not NaN")
	}
}

func TestADX_InsufficientData(t *testing.T) {
	highs, lows, closes := trendingSeries(20)
	_, err := ADX(highs, lows, closes, 14)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
