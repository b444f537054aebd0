package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adaptivex/sectorbot/internal/config"
	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/marketdata"
	"github.com/adaptivex/sectorbot/internal/metrics"
	"github.com/adaptivex/sectorbot/internal/regime"
	"github.com/adaptivex/sectorbot/internal/sbi"
	"github.com/adaptivex/sectorbot/internal/sector"
	"github.com/adaptivex/sectorbot/internal/strategy"
)

// Backtester replays the decision engine over historical bars. It owns
// the portfolio for the duration of a run; nothing else writes to it.
type Backtester struct {
	cfg        *config.Config
	history    *marketdata.History
	engine     *strategy.Engine
	scorer     *sbi.Scorer
	classifier *sector.Classifier
	detector   *regime.Detector
	logger     *zap.Logger
	registry   *metrics.Registry
}

// New creates a backtester over the given history.
func New(cfg *config.Config, history *marketdata.History, logger *zap.Logger) *Backtester {
	if logger == nil {
		logger = zap.NewNop()
	}
	mapping := cfg.Mapping()
	return &Backtester{
		cfg:        cfg,
		history:    history,
		engine:     strategy.New(cfg.Strategy, mapping, logger),
		scorer:     sbi.NewScorer(),
		classifier: sector.NewClassifier(mapping),
		detector:   regime.NewDetector(cfg.Strategy.VolThreshold, logger),
		logger:     logger,
	}
}

// WithRegistry attaches a metrics registry to the run.
func (b *Backtester) WithRegistry(r *metrics.Registry) *Backtester {
	b.registry = r
	return b
}

// Run simulates the strategy over [start, end] using the benchmark
// ticker's calendar as the master clock. Every decision on day D uses
// only bars dated at or before D.
func (b *Backtester) Run(ctx context.Context, start, end time.Time) (*Result, error) {
	began := time.Now()
	strat := b.cfg.Strategy

	days, err := b.history.TradingDays(strat.BenchmarkTicker, start, end)
	if err != nil {
		return nil, fmt.Errorf("benchmark calendar: %w", err)
	}

	pf := NewPortfolio(strat.InitialCapital)
	mapping := b.cfg.Mapping()
	parents := mapping.Parents()

	// last successfully computed state per parent, carried forward
	// across days where the parent has a data gap
	lastStates := make(map[string]*sector.State, len(parents))
	var trades []Trade

	for i, day := range days {
		select {
		case <-ctx.Done():
			if b.registry != nil {
				b.registry.RecordBacktest("canceled", i, time.Since(began).Seconds())
			}
			return nil, ctx.Err()
		default:
		}

		pf.MarkToMarket(day, b.history.PriceOn)

		policy := b.resolvePolicy(day)
		states := b.sectorStates(parents, day, lastStates)
		health := b.healthFn(day)

		dayCtx := strategy.DayContext{
			Policy:   policy,
			States:   states,
			Rankings: sector.Rank(states),
			Health:   health,
			Holdings: pf.Holdings(),
		}

		rotations, exits := b.engine.CheckPositions(dayCtx)
		for _, x := range exits {
			trade, ok := b.closePosition(pf, x.Ticker, day, x.Reason)
			if ok {
				trades = append(trades, trade)
			}
		}
		for _, rot := range rotations {
			trade, ok := b.closePosition(pf, rot.Close, day, core.ExitRotated)
			if !ok {
				continue
			}
			trades = append(trades, trade)
			// the replacement inherits the closed position's proceeds
			b.openPosition(pf, rot.Open, day, trade.ExitPrice*trade.Shares)
		}

		if i%strat.RebalanceEvery == 0 {
			dayCtx.Holdings = pf.Holdings()
			entries := b.engine.ScanEntries(dayCtx)
			b.enterPositions(pf, entries, day)
		}

		equity := pf.MarkToMarket(day, b.history.PriceOn)
		pf.Record(day, equity)
		if b.registry != nil {
			b.registry.SetOpenPositions(pf.Count())
		}
	}

	// close whatever is still open at the final mark
	last := days[len(days)-1]
	for _, ticker := range pf.Tickers() {
		trade, ok := b.closePosition(pf, ticker, last, core.ExitEndOfBacktest)
		if ok {
			trades = append(trades, trade)
		}
	}

	curve := pf.Curve()
	benchmarkReturn := b.benchmarkReturn(days[0], last)
	result := &Result{
		RunID:         uuid.NewString(),
		Policy:        b.cfg.Policy(),
		StartDate:     days[0],
		EndDate:       last,
		TradingDays:   len(days),
		FinalEquity:   curve[len(curve)-1].Value,
		EquityCurve:   curve,
		DrawdownCurve: DrawdownCurve(curve),
		Trades:        trades,
		Metrics:       Analyze(curve, trades, benchmarkReturn),
	}

	if b.registry != nil {
		b.registry.RecordBacktest("completed", len(days), time.Since(began).Seconds())
	}
	b.logger.Info("backtest complete",
		zap.String("run_id", result.RunID),
		zap.Int("trading_days", result.TradingDays),
		zap.Int("trades", len(trades)),
		zap.Float64("final_equity", result.FinalEquity),
	)
	return result, nil
}

// resolvePolicy maps the configured policy to the concrete policy for
// one day. Regime-aware mode consults the detector and falls back to
// weighted rotation when the index history is too short.
func (b *Backtester) resolvePolicy(day time.Time) core.PolicyMode {
	policy := b.cfg.Policy()
	if policy != core.PolicyRegimeAware {
		return policy
	}

	strat := b.cfg.Strategy
	bars, err := b.history.UpTo(strat.BenchmarkTicker, day)
	if err != nil {
		return core.PolicyWeightedRotation
	}
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	volGauge := 0.0
	if strat.VolGaugeTicker != "" {
		if v, err := b.history.PriceOn(strat.VolGaugeTicker, day); err == nil {
			volGauge = v
		}
	}

	status, err := b.detector.Classify(closes, volGauge)
	if err != nil {
		return core.PolicyWeightedRotation
	}
	return status.Policy
}

// sectorStates classifies every parent as of the given day. A parent
// whose data cannot be classified today keeps its last known state.
func (b *Backtester) sectorStates(parents []string, day time.Time, lastStates map[string]*sector.State) map[string]*sector.State {
	states := make(map[string]*sector.State, len(parents))
	for _, parent := range parents {
		bars, err := b.history.UpTo(parent, day)
		if err == nil {
			if state, serr := b.classifier.State(parent, bars); serr == nil {
				lastStates[parent] = state
			}
		}
		if s := lastStates[parent]; s != nil {
			states[parent] = s
		}
	}
	return states
}

// healthFn builds the engine's lazy per-ticker health resolver for one
// day. A ticker without a fresh bar dated exactly today yields nil, so
// entry and rotation decisions skip it.
func (b *Backtester) healthFn(day time.Time) strategy.HealthFn {
	mapping := b.cfg.Mapping()
	cache := make(map[string]*strategy.Health)
	done := make(map[string]bool)

	return func(ticker string) *strategy.Health {
		if done[ticker] {
			return cache[ticker]
		}
		done[ticker] = true

		bars, err := b.history.UpTo(ticker, day)
		if err != nil || !bars[len(bars)-1].Date.Equal(day) {
			return nil
		}
		if b.registry != nil {
			b.registry.RecordBar()
		}

		res, err := b.scorer.Evaluate(bars)
		if err != nil {
			return nil
		}
		if b.registry != nil {
			b.registry.RecordSignal(res.Direction.String())
		}

		parent, _, ok := mapping.ParentOf(ticker)
		if !ok {
			return nil
		}
		h := &strategy.Health{
			Ticker:      ticker,
			Parent:      parent,
			SBI:         res.Score,
			RSI:         res.Snapshot.RSI,
			PSARBullish: res.Direction == core.TrendUp,
		}
		cache[ticker] = h
		return h
	}
}

// enterPositions sizes and opens the day's selected entries. The
// available cash pool, less the buffer, is split proportional to target
// weight, capped per position and floored at the configured minimum.
func (b *Backtester) enterPositions(pf *Portfolio, entries []strategy.Entry, day time.Time) {
	if len(entries) == 0 {
		return
	}
	strat := b.cfg.Strategy

	available := pf.Cash() * (1 - strat.CashBuffer)
	totalWeight := 0.0
	for _, e := range entries {
		totalWeight += e.Weight
	}
	if totalWeight <= 0 {
		return
	}

	for _, e := range entries {
		value := available * (e.Weight / totalWeight)
		if limit := available * strat.MaxPositionPct * 2; value > limit {
			value = limit
		}
		if value < strat.MinPositionValue {
			continue
		}
		price, err := b.history.PriceOn(e.Ticker, day)
		if err != nil || price <= 0 {
			continue
		}
		if err := pf.Open(Position{
			Ticker:     e.Ticker,
			Parent:     e.Parent,
			Category:   e.Category,
			EntryDate:  day,
			EntryPrice: price,
			EntrySBI:   e.SBI,
			Weight:     e.Weight,
			Shares:     value / price,
		}, value); err != nil {
			b.logger.Warn("entry rejected", zap.String("ticker", e.Ticker), zap.Error(err))
			continue
		}
		if b.registry != nil {
			b.registry.RecordOpen()
		}
	}
}

// openPosition opens a rotation replacement with a fixed cash amount.
func (b *Backtester) openPosition(pf *Portfolio, e strategy.Entry, day time.Time, value float64) {
	price, err := b.history.PriceOn(e.Ticker, day)
	if err != nil || price <= 0 || value <= 0 {
		return
	}
	if err := pf.Open(Position{
		Ticker:     e.Ticker,
		Parent:     e.Parent,
		Category:   e.Category,
		EntryDate:  day,
		EntryPrice: price,
		EntrySBI:   e.SBI,
		Weight:     e.Weight,
		Shares:     value / price,
	}, value); err != nil {
		b.logger.Warn("rotation entry rejected", zap.String("ticker", e.Ticker), zap.Error(err))
		return
	}
	if b.registry != nil {
		b.registry.RecordOpen()
	}
}

// closePosition closes a holding at the day's (carried-forward) price.
// A ticker with no resolvable price at all stays open for another day.
func (b *Backtester) closePosition(pf *Portfolio, ticker string, day time.Time, reason core.ExitReason) (Trade, bool) {
	price, err := b.history.PriceOn(ticker, day)
	if err != nil || price <= 0 {
		b.logger.Warn("exit skipped, no price", zap.String("ticker", ticker), zap.Time("date", day))
		return Trade{}, false
	}
	trade, err := pf.Close(ticker, day, price, reason)
	if err != nil {
		return Trade{}, false
	}
	if b.registry != nil {
		b.registry.RecordClose(string(reason))
	}
	return trade, true
}

// benchmarkReturn computes the buy-and-hold percentage return of the
// benchmark over the run window.
func (b *Backtester) benchmarkReturn(start, end time.Time) float64 {
	first, err1 := b.history.PriceOn(b.cfg.Strategy.BenchmarkTicker, start)
	last, err2 := b.history.PriceOn(b.cfg.Strategy.BenchmarkTicker, end)
	if err1 != nil || err2 != nil || first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}
