package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/strategy"
)

// PriceFn resolves a ticker's closing price on a day, carrying the last
// known close forward over non-trading days.
type PriceFn func(ticker string, date time.Time) (float64, error)

// Portfolio tracks cash, open positions, and the equity curve. The
// simulation driver owns it exclusively.
type Portfolio struct {
	cash      float64
	positions map[string]*Position
	curve     []EquityPoint
}

// NewPortfolio creates a portfolio with all capital in cash.
func NewPortfolio(initialCapital float64) *Portfolio {
	return &Portfolio{
		cash:      initialCapital,
		positions: make(map[string]*Position),
	}
}

// Cash returns uninvested capital.
func (p *Portfolio) Cash() float64 { return p.cash }

// Count returns the number of open positions.
func (p *Portfolio) Count() int { return len(p.positions) }

// Has reports whether a position is open in the ticker.
func (p *Portfolio) Has(ticker string) bool {
	_, ok := p.positions[ticker]
	return ok
}

// Tickers returns open position tickers in sorted order.
func (p *Portfolio) Tickers() []string {
	out := make([]string, 0, len(p.positions))
	for t := range p.positions {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Holdings returns the decision engine's view of the open positions.
func (p *Portfolio) Holdings() []strategy.Holding {
	out := make([]strategy.Holding, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, strategy.Holding{Ticker: pos.Ticker, Parent: pos.Parent, Weight: pos.Weight})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Open buys shares with the given cash amount. The caller has already
// sized the position; Open only enforces the one-position-per-ticker rule.
func (p *Portfolio) Open(pos Position, cost float64) error {
	if _, ok := p.positions[pos.Ticker]; ok {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("position already open in %s", pos.Ticker))
	}
	pos.LastPrice = pos.EntryPrice
	p.cash -= cost
	p.positions[pos.Ticker] = &pos
	return nil
}

// Close sells the full position at the given price and returns the
// completed trade.
func (p *Portfolio) Close(ticker string, date time.Time, price float64, reason core.ExitReason) (Trade, error) {
	pos, ok := p.positions[ticker]
	if !ok {
		return Trade{}, core.WrapError(core.ErrNoData, fmt.Errorf("no open position in %s", ticker))
	}
	p.cash += price * pos.Shares
	delete(p.positions, ticker)
	return Trade{
		Ticker:     pos.Ticker,
		Parent:     pos.Parent,
		Category:   pos.Category,
		EntryDate:  pos.EntryDate,
		EntryPrice: pos.EntryPrice,
		EntrySBI:   pos.EntrySBI,
		Weight:     pos.Weight,
		Shares:     pos.Shares,
		ExitDate:   date,
		ExitPrice:  price,
		ExitReason: reason,
	}, nil
}

// MarkToMarket reprices every open position at the day's close and
// returns total equity. A ticker with no resolvable price keeps its
// previous mark.
func (p *Portfolio) MarkToMarket(date time.Time, price PriceFn) float64 {
	equity := p.cash
	for _, pos := range p.positions {
		if px, err := price(pos.Ticker, date); err == nil && px > 0 {
			pos.LastPrice = px
		}
		equity += pos.Value()
	}
	return equity
}

// Record appends the day's snapshot to the equity curve.
func (p *Portfolio) Record(date time.Time, equity float64) {
	p.curve = append(p.curve, EquityPoint{
		Date:      date,
		Value:     equity,
		Cash:      p.cash,
		Positions: len(p.positions),
	})
}

// Curve returns the recorded equity curve.
func (p *Portfolio) Curve() []EquityPoint { return p.curve }
