package sector

import (
	"errors"
	"testing"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping() Mapping {
	return Mapping{
		"BTC-USD": {Category: "crypto", Children: []string{"MSTR", "COIN", "MARA"}},
		"GLD":     {Category: "metals", Children: []string{"NEM", "GOLD"}},
	}
}

func bars(closes []float64) []core.Bar {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]core.Bar, len(closes))
	for i, c := range closes {
		out[i] = core.Bar{
			Date:  start.AddDate(0, 0, i),
			Open:  c,
			High:  c * 1.01,
			Low:   c * 0.99,
			Close: c,
		}
	}
	return out
}

func rising(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return closes
}

func falling(n int) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 200 - 2*float64(i)
	}
	return closes
}

func TestClassifier_UnknownParentFailsFast(t *testing.T) {
	c := NewClassifier(testMapping())
	_, err := c.State("XRP-USD", bars(rising(60)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrUnknownParent))
}

func TestClassifier_InsufficientData(t *testing.T) {
	c := NewClassifier(testMapping())
	_, err := c.State("BTC-USD", bars(rising(10)))
	assert.True(t, errors.Is(err, core.ErrInsufficientData))
}

func TestClassifier_BullishParent(t *testing.T) {
	c := NewClassifier(testMapping())
	state, err := c.State("BTC-USD", bars(rising(80)))
	require.NoError(t, err)

	assert.True(t, state.IsBullish)
	assert.Equal(t, "crypto", state.Category)
	assert.Equal(t, []string{"MSTR", "COIN", "MARA"}, state.Children)
	assert.Greater(t, state.StrengthScore, 0.0)
	assert.LessOrEqual(t, state.StrengthScore, 100.0)
	assert.Greater(t, state.DaysBullish, 1)
}

func TestClassifier_BearishParentHasZeroStrength(t *testing.T) {
	c := NewClassifier(testMapping())
	state, err := c.State("GLD", bars(falling(80)))
	require.NoError(t, err)

	assert.False(t, state.IsBullish)
	assert.Zero(t, state.StrengthScore)
	assert.Zero(t, state.DaysBullish)
}

func TestRank_DescendingByStrength(t *testing.T) {
	states := map[string]*State{
		"A": {Parent: "A", IsBullish: true, StrengthScore: 40},
		"B": {Parent: "B", IsBullish: true, StrengthScore: 70},
		"C": {Parent: "C", IsBullish: false, StrengthScore: 90}, // bearish: excluded
		"D": {Parent: "D", IsBullish: true, StrengthScore: 55},
	}

	rankings := Rank(states)
	require.Len(t, rankings, 3)
	assert.Equal(t, "B", rankings[0].Parent)
	assert.Equal(t, "D", rankings[1].Parent)
	assert.Equal(t, "A", rankings[2].Parent)
}

func TestWeight_Tiers(t *testing.T) {
	rankings := make([]Ranking, 10)
	for i := range rankings {
		rankings[i] = Ranking{Parent: string(rune('A' + i)), Score: float64(100 - i)}
	}

	assert.Equal(t, 2.0, Weight("A", rankings, true))
	assert.Equal(t, 2.0, Weight("C", rankings, true))
	assert.Equal(t, 1.0, Weight("D", rankings, true))
	assert.Equal(t, 1.0, Weight("H", rankings, true))
	assert.Equal(t, 0.5, Weight("I", rankings, true))
	assert.Equal(t, 0.0, Weight("Z", rankings, true), "non-bullish parent gets nothing")

	assert.Equal(t, 1.0, Weight("Z", rankings, false), "equal weights without weighted allocation")
}

func TestMapping_ParentOf(t *testing.T) {
	m := testMapping()
	parent, info, ok := m.ParentOf("COIN")
	require.True(t, ok)
	assert.Equal(t, "BTC-USD", parent)
	assert.Equal(t, "crypto", info.Category)

	_, _, ok = m.ParentOf("TSLA")
	assert.False(t, ok)
}
