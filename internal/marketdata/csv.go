package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adaptivex/sectorbot/internal/core"
)

// csvHeader is the expected column order. A leading header row is
// detected and skipped.
var csvHeader = []string{"date", "open", "high", "low", "close", "volume"}

// ReadCSV parses daily bars from r. Each row is
// date,open,high,low,close,volume with dates in YYYY-MM-DD form.
func ReadCSV(r io.Reader) ([]core.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	bars := make([]core.Bar, 0, 256)
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		line++
		if line == 1 && strings.EqualFold(rec[0], csvHeader[0]) {
			continue
		}
		if len(rec) < 6 {
			return nil, fmt.Errorf("line %d: expected 6 columns, got %d", line, len(rec))
		}
		bar, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, core.ErrNoData
	}
	return bars, nil
}

func parseBar(rec []string) (core.Bar, error) {
	date, err := time.Parse("2006-01-02", rec[0])
	if err != nil {
		return core.Bar{}, fmt.Errorf("parsing date %q: %w", rec[0], err)
	}
	fields := make([]float64, 4)
	for i := 0; i < 4; i++ {
		fields[i], err = strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return core.Bar{}, fmt.Errorf("parsing %s %q: %w", csvHeader[i+1], rec[i+1], err)
		}
	}
	volume, err := strconv.ParseFloat(rec[5], 64)
	if err != nil {
		return core.Bar{}, fmt.Errorf("parsing volume %q: %w", rec[5], err)
	}
	return core.Bar{
		Date:   date,
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: int64(volume),
	}, nil
}

// LoadCSVFile reads one ticker's bars from a CSV file.
func LoadCSVFile(path string) ([]core.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// LoadCSVDir fills a History from a directory of <TICKER>.csv files.
// The filename stem, upper-cased, becomes the ticker.
func LoadCSVDir(dir string) (*History, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	h := NewHistory()
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		ticker := strings.ToUpper(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		bars, err := LoadCSVFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", e.Name(), err)
		}
		if err := h.Add(ticker, bars); err != nil {
			return nil, err
		}
	}
	if len(h.Tickers()) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no csv files in %s", dir))
	}
	return h, nil
}
