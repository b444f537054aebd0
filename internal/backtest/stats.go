package backtest

import (
	"math"
)

// noLossProfitFactor is reported when a run has gross wins but no
// losing trades.
const noLossProfitFactor = 999.0

// Analyze computes summary statistics from an equity curve, the trade
// log, and the benchmark's buy-and-hold return over the same window.
func Analyze(curve []EquityPoint, trades []Trade, benchmarkReturn float64) Metrics {
	m := Metrics{BenchmarkReturn: benchmarkReturn}
	if len(curve) == 0 {
		return m
	}

	first, last := curve[0].Value, curve[len(curve)-1].Value
	if first > 0 {
		m.TotalReturn = (last - first) / first * 100
	}
	m.CAGR = cagr(curve)
	m.MaxDrawdown = maxDrawdown(curve)
	m.Alpha = m.TotalReturn - benchmarkReturn

	daily := dailyReturns(curve)
	m.Sharpe = sharpe(daily)
	m.Sortino = sortino(daily)

	m.TotalTrades = len(trades)
	var grossWin, grossLoss, winPctSum, lossPctSum float64
	for _, t := range trades {
		profit := t.Profit()
		if t.IsWin() {
			m.WinningTrades++
			grossWin += profit
			winPctSum += t.ReturnPct()
		} else {
			m.LosingTrades++
			grossLoss += -profit
			lossPctSum += t.ReturnPct()
		}
	}
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
	}
	if m.WinningTrades > 0 {
		m.AvgWinPct = winPctSum / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLossPct = lossPctSum / float64(m.LosingTrades)
	}
	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		m.ProfitFactor = noLossProfitFactor
	}

	return m
}

// DrawdownCurve converts an equity curve into per-day percentage
// declines from the running peak.
func DrawdownCurve(curve []EquityPoint) []DrawdownPoint {
	out := make([]DrawdownPoint, len(curve))
	peak := 0.0
	for i, pt := range curve {
		if pt.Value > peak {
			peak = pt.Value
		}
		dd := 0.0
		if peak > 0 {
			dd = (peak - pt.Value) / peak * 100
		}
		out[i] = DrawdownPoint{Date: pt.Date, Drawdown: dd}
	}
	return out
}

// cagr annualizes the total return over elapsed calendar days.
func cagr(curve []EquityPoint) float64 {
	first, last := curve[0], curve[len(curve)-1]
	days := last.Date.Sub(first.Date).Hours() / 24
	if days <= 0 || first.Value <= 0 || last.Value <= 0 {
		return 0
	}
	years := days / 365.25
	return (math.Pow(last.Value/first.Value, 1/years) - 1) * 100
}

// maxDrawdown finds the largest peak-to-trough decline, in percent.
func maxDrawdown(curve []EquityPoint) float64 {
	var maxDD, peak float64
	for _, pt := range curve {
		if pt.Value > peak {
			peak = pt.Value
		}
		if peak > 0 {
			if dd := (peak - pt.Value) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func dailyReturns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	out := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (curve[i].Value-prev)/prev)
	}
	return out
}

// sharpe annualizes mean over sample stdev of daily returns, assuming
// a zero risk-free rate and ~252 trading days.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := meanOf(returns)
	sd := stdevOf(returns, mean)
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(252)
}

// sortino is sharpe computed against the stdev of negative daily
// returns only.
func sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := meanOf(returns)
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0
	}
	sd := stdevOf(downside, meanOf(downside))
	if sd == 0 {
		return 0
	}
	return mean / sd * math.Sqrt(252)
}

func meanOf(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdevOf(xs []float64, mean float64) float64 {
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	return math.Sqrt(variance / float64(len(xs)-1))
}
