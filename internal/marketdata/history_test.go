package marketdata

import (
	"testing"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func seqBars(days ...int) []core.Bar {
	bars := make([]core.Bar, 0, len(days))
	for _, d := range days {
		px := 100 + float64(d)
		bars = append(bars, core.Bar{Date: day(d), Open: px, High: px + 1, Low: px - 1, Close: px, Volume: 1000})
	}
	return bars
}

func TestHistoryAdd_SortsOutOfOrderBars(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Add("SPY", seqBars(3, 1, 2)))

	bars, err := h.Bars("SPY")
	require.NoError(t, err)
	assert.Equal(t, day(1), bars[0].Date)
	assert.Equal(t, day(3), bars[2].Date)
}

func TestHistoryAdd_RejectsDuplicateDates(t *testing.T) {
	h := NewHistory()
	err := h.Add("SPY", seqBars(1, 2, 2))
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestHistoryAdd_RejectsEmpty(t *testing.T) {
	h := NewHistory()
	assert.ErrorIs(t, h.Add("SPY", nil), core.ErrNoData)
}

func TestUpTo_ExcludesFutureBars(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Add("SPY", seqBars(1, 2, 3, 4, 5)))

	bars, err := h.UpTo("SPY", day(3))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, day(3), bars[len(bars)-1].Date)
}

func TestUpTo_BeforeFirstBar(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Add("SPY", seqBars(5, 6)))

	_, err := h.UpTo("SPY", day(2))
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestPriceOn_CarriesForwardOverGaps(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Add("MSTR", seqBars(1, 2, 5)))

	// day 3 and 4 did not trade; last close was day 2's
	px, err := h.PriceOn("MSTR", day(4))
	require.NoError(t, err)
	assert.Equal(t, 102.0, px)

	px, err = h.PriceOn("MSTR", day(5))
	require.NoError(t, err)
	assert.Equal(t, 105.0, px)
}

func TestPriceOn_MissingTicker(t *testing.T) {
	h := NewHistory()
	_, err := h.PriceOn("NOPE", day(1))
	assert.ErrorIs(t, err, core.ErrMissingPrice)
}

func TestTradingDays_RespectsRange(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Add("SPY", seqBars(1, 2, 3, 4, 5)))

	days, err := h.TradingDays("SPY", day(2), day(4))
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, day(2), days[0])
	assert.Equal(t, day(4), days[2])
}

func TestTickers_Sorted(t *testing.T) {
	h := NewHistory()
	require.NoError(t, h.Add("SPY", seqBars(1)))
	require.NoError(t, h.Add("GLD", seqBars(1)))
	assert.Equal(t, []string{"GLD", "SPY"}, h.Tickers())
}
