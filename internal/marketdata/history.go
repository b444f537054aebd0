// Package marketdata holds daily OHLCV history for the tickers a
// backtest touches and answers point-in-time queries against it.
package marketdata

import (
	"fmt"
	"sort"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
)

// History is an in-memory store of daily bars keyed by ticker.
// Bars for each ticker are kept in ascending date order, which lets
// UpTo answer point-in-time queries without scanning.
type History struct {
	bars map[string][]core.Bar
}

// NewHistory creates an empty store.
func NewHistory() *History {
	return &History{bars: make(map[string][]core.Bar)}
}

// Add registers the bar series for a ticker, sorting it by date and
// rejecting duplicate dates. It replaces any series already stored.
func (h *History) Add(ticker string, bars []core.Bar) error {
	if len(bars) == 0 {
		return core.WrapError(core.ErrNoData, fmt.Errorf("no bars for %s", ticker))
	}
	sorted := make([]core.Bar, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Date.Equal(sorted[i-1].Date) {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("duplicate bar date %s for %s", sorted[i].Date.Format("2006-01-02"), ticker))
		}
	}
	h.bars[ticker] = sorted
	return nil
}

// Has reports whether any bars are stored for the ticker.
func (h *History) Has(ticker string) bool {
	return len(h.bars[ticker]) > 0
}

// Tickers returns the stored tickers in sorted order.
func (h *History) Tickers() []string {
	out := make([]string, 0, len(h.bars))
	for t := range h.bars {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Bars returns the full series for a ticker.
func (h *History) Bars(ticker string) ([]core.Bar, error) {
	bars, ok := h.bars[ticker]
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no history for %s", ticker))
	}
	return bars, nil
}

// UpTo returns all bars for a ticker dated at or before the given day.
// The returned slice shares the store's backing array and must be
// treated as read-only.
func (h *History) UpTo(ticker string, date time.Time) ([]core.Bar, error) {
	bars, ok := h.bars[ticker]
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no history for %s", ticker))
	}
	n := sort.Search(len(bars), func(i int) bool { return bars[i].Date.After(date) })
	if n == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("no bars for %s on or before %s", ticker, date.Format("2006-01-02")))
	}
	return bars[:n], nil
}

// PriceOn returns the closing price for a ticker on a given day,
// carrying the last known close forward across non-trading days.
func (h *History) PriceOn(ticker string, date time.Time) (float64, error) {
	bars, err := h.UpTo(ticker, date)
	if err != nil {
		return 0, core.WrapError(core.ErrMissingPrice, fmt.Errorf("price for %s", ticker))
	}
	return bars[len(bars)-1].Close, nil
}

// TradingDays returns the dates the ticker traded within [start, end].
// A benchmark ticker's trading days serve as the simulation clock.
func (h *History) TradingDays(ticker string, start, end time.Time) ([]time.Time, error) {
	bars, ok := h.bars[ticker]
	if !ok {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no history for %s", ticker))
	}
	days := make([]time.Time, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		days = append(days, b.Date)
	}
	if len(days) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no trading days for %s in range", ticker))
	}
	return days, nil
}
