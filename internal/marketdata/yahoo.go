package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
)

const chartBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validTicker matches plain equities (MSTR), crypto pairs (BTC-USD)
// and index symbols (^VIX, ^GSPC).
var validTicker = regexp.MustCompile(`^\^?[A-Za-z0-9]{1,10}(-[A-Za-z]{2,5})?(\.[A-Za-z]{1,4})?$`)

func validateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}
	if len(ticker) > 20 {
		return fmt.Errorf("ticker too long: %s", ticker)
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// YahooClient fetches daily bars from the Yahoo Finance chart API.
type YahooClient struct {
	client  *http.Client
	baseURL string
}

// NewYahooClient creates a client with a sane request timeout.
func NewYahooClient() *YahooClient {
	return &YahooClient{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: chartBaseURL,
	}
}

// FetchDaily fetches daily OHLCV bars for a ticker over [start, end].
// Rows with missing opens are skipped, matching how the chart API
// reports holidays and halts.
func (y *YahooClient) FetchDaily(ctx context.Context, ticker string, start, end time.Time) ([]core.Bar, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		y.baseURL, url.PathEscape(ticker), start.Unix(), end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no data for %s", ticker))
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no quotes for %s", ticker))
	}
	quotes := r.Indicators.Quote[0]

	bars := make([]core.Bar, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if quotes.Open[i] == nil {
			continue // Skip missing data
		}
		var volume int64
		if quotes.Volume[i] != nil {
			volume = int64(*quotes.Volume[i])
		}
		day := time.Unix(int64(ts), 0).UTC()
		bars = append(bars, core.Bar{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:   *quotes.Open[i],
			High:   *quotes.High[i],
			Low:    *quotes.Low[i],
			Close:  *quotes.Close[i],
			Volume: volume,
		})
	}
	if len(bars) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("empty series for %s", ticker))
	}
	return bars, nil
}

// FetchInto fetches daily bars for every ticker and stores them in h.
func (y *YahooClient) FetchInto(ctx context.Context, h *History, tickers []string, start, end time.Time) error {
	for _, t := range tickers {
		if h.Has(t) {
			continue
		}
		bars, err := y.FetchDaily(ctx, t, start, end)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", t, err)
		}
		if err := h.Add(t, bars); err != nil {
			return err
		}
	}
	return nil
}

// Yahoo chart API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int           `json:"timestamp"`
	Indicators chartIndicators `json:"indicators"`
}

type chartIndicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}
