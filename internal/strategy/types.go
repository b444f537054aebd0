// Package strategy is the per-ticker, per-day decision engine. One engine
// serves all policy modes; the mode only changes how held positions are
// treated, never the entry gate or the parent-bearish exit.
package strategy

import (
	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/sector"
)

// Health is a child ticker's own technical condition for one day.
type Health struct {
	Ticker      string
	Parent      string
	SBI         int
	RSI         float64
	PSARBullish bool
}

// Weak reports whether the ticker fails the hold criteria: its own
// trend-flip line turned bearish or momentum dropped under the weak bar.
func (h Health) Weak(weakRSI float64) bool {
	return !h.PSARBullish || h.RSI < weakRSI
}

// MomentumScore ranks entry candidates; a point of SBI outweighs any
// possible RSI difference.
func (h Health) MomentumScore() float64 {
	return float64(h.SBI)*10 + h.RSI
}

// HealthFn resolves a ticker's health for the current day, or nil when it
// cannot be computed (missing bar, insufficient history).
type HealthFn func(ticker string) *Health

// Holding is the engine's read-only view of an open position.
type Holding struct {
	Ticker string
	Parent string
	Weight float64
}

// DayContext carries everything the engine needs for one trading day.
// The policy here is always concrete: regime-aware mode is resolved to
// one of the other three before the engine runs.
type DayContext struct {
	Policy   core.PolicyMode
	States   map[string]*sector.State
	Rankings []sector.Ranking
	Health   HealthFn
	Holdings []Holding
}

// Entry is a decision to open a position.
type Entry struct {
	Ticker   string
	Parent   string
	Category string
	SBI      int
	RSI      float64
	Weight   float64
}

// Exit is a decision to close a position.
type Exit struct {
	Ticker string
	Reason core.ExitReason
}

// Rotation closes a weak position and opens a stronger sibling at the
// same target weight, leaving the sector's position count unchanged.
type Rotation struct {
	Close string
	Open  Entry
}
