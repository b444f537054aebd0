package strategy

import (
	"testing"

	"github.com/adaptivex/sectorbot/internal/config"
	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T, mutate func(*config.StrategyConfig)) *Engine {
	t.Helper()
	cfg := config.Defaults().Strategy
	cfg.MaxPositions = 4
	cfg.MaxPerSector = 2
	if mutate != nil {
		mutate(&cfg)
	}
	mapping := sector.Mapping{
		"BTC-USD": {Category: "crypto", Children: []string{"MSTR", "COIN", "MARA", "RIOT"}},
		"GLD":     {Category: "metals", Children: []string{"NEM", "GOLD"}},
	}
	return New(cfg, mapping, nil)
}

func bullishState(parent, category string, children []string, strength float64) *sector.State {
	return &sector.State{
		Parent:        parent,
		Category:      category,
		Children:      children,
		IsBullish:     true,
		StrengthScore: strength,
	}
}

func healthMap(m map[string]*Health) HealthFn {
	return func(ticker string) *Health { return m[ticker] }
}

func cryptoDay(policy core.PolicyMode, holdings []Holding, health map[string]*Health) DayContext {
	states := map[string]*sector.State{
		"BTC-USD": bullishState("BTC-USD", "crypto", []string{"MSTR", "COIN", "MARA", "RIOT"}, 80),
		"GLD":     bullishState("GLD", "metals", []string{"NEM", "GOLD"}, 60),
	}
	return DayContext{
		Policy:   policy,
		States:   states,
		Rankings: sector.Rank(states),
		Health:   healthMap(health),
		Holdings: holdings,
	}
}

func TestScanEntries_GateAndMomentumOrder(t *testing.T) {
	e := testEngine(t, nil)
	day := cryptoDay(core.PolicyRotation, nil, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 9, RSI: 55, PSARBullish: true},
		"COIN": {Ticker: "COIN", Parent: "BTC-USD", SBI: 10, RSI: 62, PSARBullish: true},
		"MARA": {Ticker: "MARA", Parent: "BTC-USD", SBI: 8, RSI: 70, PSARBullish: true},  // below entry bar
		"RIOT": {Ticker: "RIOT", Parent: "BTC-USD", SBI: 10, RSI: 48, PSARBullish: true}, // RSI too low
		"NEM":  {Ticker: "NEM", Parent: "GLD", SBI: 9, RSI: 60, PSARBullish: false},      // own trend bearish
		"GOLD": {Ticker: "GOLD", Parent: "GLD", SBI: 9, RSI: 66, PSARBullish: true},
	})

	entries := e.ScanEntries(day)
	require.Len(t, entries, 3)

	// crypto ranks first; COIN (score 162) beats MSTR (145)
	assert.Equal(t, "COIN", entries[0].Ticker)
	assert.Equal(t, "MSTR", entries[1].Ticker)
	assert.Equal(t, "GOLD", entries[2].Ticker)
	assert.Equal(t, "crypto", entries[0].Category)
}

func TestScanEntries_RespectsTotalCap(t *testing.T) {
	e := testEngine(t, func(c *config.StrategyConfig) { c.MaxPositions = 1 })
	day := cryptoDay(core.PolicyRotation, nil, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 10, RSI: 60, PSARBullish: true},
		"COIN": {Ticker: "COIN", Parent: "BTC-USD", SBI: 10, RSI: 70, PSARBullish: true},
	})

	entries := e.ScanEntries(day)
	require.Len(t, entries, 1)
	assert.Equal(t, "COIN", entries[0].Ticker)
}

func TestScanEntries_RespectsSectorCap(t *testing.T) {
	e := testEngine(t, nil) // MaxPerSector = 2
	holdings := []Holding{
		{Ticker: "MARA", Parent: "BTC-USD", Weight: 1},
		{Ticker: "RIOT", Parent: "BTC-USD", Weight: 1},
	}
	day := cryptoDay(core.PolicyRotation, holdings, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 10, RSI: 70, PSARBullish: true},
	})

	entries := e.ScanEntries(day)
	assert.Empty(t, entries, "sector already at capacity")
}

func TestScanEntries_SkipsHeldTickers(t *testing.T) {
	e := testEngine(t, nil)
	holdings := []Holding{{Ticker: "COIN", Parent: "BTC-USD", Weight: 1}}
	day := cryptoDay(core.PolicyRotation, holdings, map[string]*Health{
		"COIN": {Ticker: "COIN", Parent: "BTC-USD", SBI: 10, RSI: 70, PSARBullish: true},
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 9, RSI: 55, PSARBullish: true},
	})

	entries := e.ScanEntries(day)
	require.Len(t, entries, 1)
	assert.Equal(t, "MSTR", entries[0].Ticker)
}

func TestCheckPositions_ParentBearishExitsAllChildren(t *testing.T) {
	e := testEngine(t, nil)
	holdings := []Holding{
		{Ticker: "MSTR", Parent: "BTC-USD", Weight: 1},
		{Ticker: "COIN", Parent: "BTC-USD", Weight: 1},
		{Ticker: "NEM", Parent: "GLD", Weight: 1},
	}
	states := map[string]*sector.State{
		"BTC-USD": {Parent: "BTC-USD", Category: "crypto", Children: []string{"MSTR", "COIN", "MARA", "RIOT"}, IsBullish: false},
		"GLD":     bullishState("GLD", "metals", []string{"NEM", "GOLD"}, 60),
	}
	day := DayContext{
		Policy:   core.PolicyParentBased,
		States:   states,
		Rankings: sector.Rank(states),
		Health:   healthMap(map[string]*Health{"NEM": {Ticker: "NEM", Parent: "GLD", SBI: 5, RSI: 45, PSARBullish: true}}),
		Holdings: holdings,
	}

	rotations, exits := e.CheckPositions(day)
	assert.Empty(t, rotations)
	require.Len(t, exits, 2)
	for _, x := range exits {
		assert.Equal(t, core.ExitParentBearish, x.Reason)
		assert.Contains(t, []string{"MSTR", "COIN"}, x.Ticker)
	}
}

func TestCheckPositions_ParentBasedHoldsThroughWeakness(t *testing.T) {
	e := testEngine(t, nil)
	holdings := []Holding{{Ticker: "MSTR", Parent: "BTC-USD", Weight: 1}}
	day := cryptoDay(core.PolicyParentBased, holdings, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 2, RSI: 30, PSARBullish: false},
	})

	rotations, exits := e.CheckPositions(day)
	assert.Empty(t, rotations)
	assert.Empty(t, exits)
}

func TestCheckPositions_RotatesWeakToStrongSibling(t *testing.T) {
	e := testEngine(t, nil)
	holdings := []Holding{{Ticker: "MSTR", Parent: "BTC-USD", Weight: 2.0}}
	day := cryptoDay(core.PolicyRotation, holdings, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 4, RSI: 35, PSARBullish: true}, // weak: RSI < 40
		"COIN": {Ticker: "COIN", Parent: "BTC-USD", SBI: 8, RSI: 63, PSARBullish: true},
		"MARA": {Ticker: "MARA", Parent: "BTC-USD", SBI: 8, RSI: 58, PSARBullish: true},
	})

	rotations, exits := e.CheckPositions(day)
	assert.Empty(t, exits)
	require.Len(t, rotations, 1)

	rot := rotations[0]
	assert.Equal(t, "MSTR", rot.Close)
	assert.Equal(t, "COIN", rot.Open.Ticker, "higher RSI wins the SBI tie")
	assert.Equal(t, 2.0, rot.Open.Weight, "rotation keeps the closed position's weight")
}

func TestCheckPositions_WeakWithNoCandidateExits(t *testing.T) {
	e := testEngine(t, nil)
	holdings := []Holding{{Ticker: "MSTR", Parent: "BTC-USD", Weight: 1}}
	day := cryptoDay(core.PolicyWeightedRotation, holdings, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 4, RSI: 30, PSARBullish: false},
		"COIN": {Ticker: "COIN", Parent: "BTC-USD", SBI: 6, RSI: 60, PSARBullish: true}, // below rotation bar
	})

	rotations, exits := e.CheckPositions(day)
	assert.Empty(t, rotations)
	require.Len(t, exits, 1)
	assert.Equal(t, core.ExitNoRotation, exits[0].Reason)
}

func TestCheckPositions_RotationTargetsNotReused(t *testing.T) {
	e := testEngine(t, nil)
	holdings := []Holding{
		{Ticker: "MSTR", Parent: "BTC-USD", Weight: 1},
		{Ticker: "MARA", Parent: "BTC-USD", Weight: 1},
	}
	day := cryptoDay(core.PolicyRotation, holdings, map[string]*Health{
		"MSTR": {Ticker: "MSTR", Parent: "BTC-USD", SBI: 3, RSI: 30, PSARBullish: false},
		"MARA": {Ticker: "MARA", Parent: "BTC-USD", SBI: 3, RSI: 32, PSARBullish: false},
		"COIN": {Ticker: "COIN", Parent: "BTC-USD", SBI: 9, RSI: 60, PSARBullish: true},
	})

	rotations, exits := e.CheckPositions(day)
	require.Len(t, rotations, 1, "only one weak position can take the single candidate")
	require.Len(t, exits, 1)
	assert.Equal(t, core.ExitNoRotation, exits[0].Reason)
}
