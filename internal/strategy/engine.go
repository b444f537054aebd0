package strategy

import (
	"sort"

	"github.com/adaptivex/sectorbot/internal/config"
	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/sector"
	"go.uber.org/zap"
)

// Engine evaluates entry, exit, and rotation rules for one day.
type Engine struct {
	cfg     config.StrategyConfig
	mapping sector.Mapping
	logger  *zap.Logger
}

// New creates a decision engine.
func New(cfg config.StrategyConfig, mapping sector.Mapping, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, mapping: mapping, logger: logger}
}

// CheckPositions examines every holding and returns rotations and exits,
// in that priority order per position: a bearish parent forces an exit
// before any weakness check, and weakness checks are skipped entirely in
// the parent-based policy.
func (e *Engine) CheckPositions(day DayContext) ([]Rotation, []Exit) {
	var rotations []Rotation
	var exits []Exit

	// tickers that cannot be rotation targets: everything held today
	// plus anything already chosen as a target
	taken := make(map[string]bool, len(day.Holdings))
	for _, h := range day.Holdings {
		taken[h.Ticker] = true
	}

	holdings := append([]Holding(nil), day.Holdings...)
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Ticker < holdings[j].Ticker })

	for _, holding := range holdings {
		state := day.States[holding.Parent]
		if state == nil || !state.IsBullish {
			exits = append(exits, Exit{Ticker: holding.Ticker, Reason: core.ExitParentBearish})
			continue
		}

		if day.Policy == core.PolicyParentBased {
			continue // hold through child weakness
		}

		health := day.Health(holding.Ticker)
		if health == nil {
			continue // no fresh signal today, keep holding
		}
		if !health.Weak(e.cfg.WeakRSI) {
			continue
		}

		replacement := e.rotationCandidate(state, taken, day.Health)
		if replacement == nil {
			e.logger.Debug("weak position with no rotation candidate",
				zap.String("ticker", holding.Ticker),
				zap.String("parent", holding.Parent),
			)
			exits = append(exits, Exit{Ticker: holding.Ticker, Reason: core.ExitNoRotation})
			continue
		}

		taken[replacement.Ticker] = true
		rotations = append(rotations, Rotation{
			Close: holding.Ticker,
			Open: Entry{
				Ticker:   replacement.Ticker,
				Parent:   state.Parent,
				Category: state.Category,
				SBI:      replacement.SBI,
				RSI:      replacement.RSI,
				Weight:   holding.Weight,
			},
		})
	}

	return rotations, exits
}

// rotationCandidate finds the strongest sibling that clears the rotation
// bar: a lower SBI threshold than entry, but the same trend and momentum
// requirements.
func (e *Engine) rotationCandidate(state *sector.State, taken map[string]bool, healthFn HealthFn) *Health {
	var best *Health
	for _, child := range state.Children {
		if taken[child] {
			continue
		}
		h := healthFn(child)
		if h == nil {
			continue
		}
		if h.SBI < e.cfg.RotationSBI || !h.PSARBullish || h.RSI <= e.cfg.EntryRSI {
			continue
		}
		if best == nil || h.SBI > best.SBI || (h.SBI == best.SBI && h.RSI > best.RSI) {
			best = h
		}
	}
	return best
}

// ScanEntries walks bullish parents in strength order and selects new
// positions up to the remaining total and per-sector capacity. Candidates
// within a sector are ranked by momentum score.
func (e *Engine) ScanEntries(day DayContext) []Entry {
	remaining := e.cfg.MaxPositions - len(day.Holdings)
	if remaining <= 0 {
		return nil
	}

	held := make(map[string]bool, len(day.Holdings))
	inSector := make(map[string]int)
	for _, h := range day.Holdings {
		held[h.Ticker] = true
		inSector[h.Parent]++
	}

	weighted := e.cfg.WeightedAllocation && day.Policy == core.PolicyWeightedRotation

	var entries []Entry
	for _, ranking := range day.Rankings {
		if remaining <= 0 {
			break
		}

		state := day.States[ranking.Parent]
		if state == nil || !state.IsBullish {
			continue
		}

		weight := sector.Weight(ranking.Parent, day.Rankings, weighted)
		if weight <= 0 {
			continue
		}

		maxForParent := e.cfg.MaxPerSector
		if scaled := int(float64(e.cfg.MaxPerSector)*weight) + 1; scaled < maxForParent {
			maxForParent = scaled
		}
		slots := maxForParent - inSector[ranking.Parent]
		if slots <= 0 {
			continue
		}

		candidates := e.entryCandidates(state, held, day.Health)
		if slots > len(candidates) {
			slots = len(candidates)
		}
		if slots > remaining {
			slots = remaining
		}

		for _, h := range candidates[:slots] {
			held[h.Ticker] = true
			inSector[ranking.Parent]++
			remaining--
			entries = append(entries, Entry{
				Ticker:   h.Ticker,
				Parent:   state.Parent,
				Category: state.Category,
				SBI:      h.SBI,
				RSI:      h.RSI,
				Weight:   weight,
			})
		}
	}

	return entries
}

// entryCandidates returns the sector's children that clear the entry gate,
// strongest momentum first.
func (e *Engine) entryCandidates(state *sector.State, held map[string]bool, healthFn HealthFn) []*Health {
	var candidates []*Health
	for _, child := range state.Children {
		if held[child] {
			continue
		}
		h := healthFn(child)
		if h == nil {
			continue
		}
		if h.SBI < e.cfg.EntrySBI || !h.PSARBullish || h.RSI <= e.cfg.EntryRSI {
			continue
		}
		candidates = append(candidates, h)
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := candidates[i].MomentumScore(), candidates[j].MomentumScore()
		if si != sj {
			return si > sj
		}
		return candidates[i].Ticker < candidates[j].Ticker
	})
	return candidates
}
