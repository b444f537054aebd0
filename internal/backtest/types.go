package backtest

import (
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
)

// Position is one open holding inside the simulated portfolio.
type Position struct {
	Ticker     string
	Parent     string
	Category   string
	EntryDate  time.Time
	EntryPrice float64
	EntrySBI   int
	Weight     float64
	Shares     float64
	LastPrice  float64 // most recent mark, carried forward over gaps
}

// Value returns the position's worth at its last mark.
func (p Position) Value() float64 {
	return p.LastPrice * p.Shares
}

// Trade is a closed position from entry to exit.
type Trade struct {
	Ticker     string
	Parent     string
	Category   string
	EntryDate  time.Time
	EntryPrice float64
	EntrySBI   int
	Weight     float64
	Shares     float64
	ExitDate   time.Time
	ExitPrice  float64
	ExitReason core.ExitReason
}

// ReturnPct is the trade's percentage return.
func (t Trade) ReturnPct() float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	return (t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100
}

// Profit is the trade's dollar gain or loss.
func (t Trade) Profit() float64 {
	return (t.ExitPrice - t.EntryPrice) * t.Shares
}

// IsWin returns true if the trade was profitable.
func (t Trade) IsWin() bool {
	return t.Profit() > 0
}

// EquityPoint is one day's portfolio snapshot.
type EquityPoint struct {
	Date      time.Time
	Value     float64
	Cash      float64
	Positions int
}

// DrawdownPoint is one day's decline from the running equity peak,
// in percent.
type DrawdownPoint struct {
	Date     time.Time
	Drawdown float64
}

// Metrics holds the summary statistics of a completed run.
type Metrics struct {
	TotalReturn     float64 // percent
	CAGR            float64 // percent, annualized by calendar days
	MaxDrawdown     float64 // percent, from running peak
	Sharpe          float64
	Sortino         float64
	TotalTrades     int
	WinningTrades   int
	LosingTrades    int
	WinRate         float64 // percent
	AvgWinPct       float64
	AvgLossPct      float64
	ProfitFactor    float64
	BenchmarkReturn float64 // percent, buy-and-hold
	Alpha           float64 // strategy return minus benchmark return
}

// Result holds the complete output of one backtest run.
type Result struct {
	RunID         string
	Policy        core.PolicyMode
	StartDate     time.Time
	EndDate       time.Time
	TradingDays   int
	FinalEquity   float64
	EquityCurve   []EquityPoint
	DrawdownCurve []DrawdownPoint
	Trades        []Trade
	Metrics       Metrics
}
