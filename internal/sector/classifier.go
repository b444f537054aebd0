// Package sector classifies parent tickers (broad sector or asset proxies)
// as bullish or bearish and ranks them by strength. A parent's state gates
// whether its child tickers are eligible for positions at all.
package sector

import (
	"fmt"
	"sort"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/indicator"
)

// MinBars is the warm-up required to classify a parent.
const MinBars = 30

// Info describes one parent's place in the sector mapping.
type Info struct {
	Category string
	Children []string
}

// Mapping is the static parent-to-children sector structure, supplied by
// configuration and validated at load time.
type Mapping map[string]Info

// ParentOf returns the parent a child ticker belongs to.
func (m Mapping) ParentOf(child string) (string, Info, bool) {
	for parent, info := range m {
		for _, c := range info.Children {
			if c == child {
				return parent, info, true
			}
		}
	}
	return "", Info{}, false
}

// Parents returns the parent tickers in deterministic order.
func (m Mapping) Parents() []string {
	parents := make([]string, 0, len(m))
	for p := range m {
		parents = append(parents, p)
	}
	sort.Strings(parents)
	return parents
}

// State is a parent's classification for one day, recomputed daily from
// its bar series.
type State struct {
	Parent        string
	Category      string
	Children      []string
	IsBullish     bool
	DaysBullish   int
	GapPercent    float64
	ADX           float64
	RSI           float64
	StrengthScore float64
}

// Ranking pairs a bullish parent with its strength for allocation order.
type Ranking struct {
	Parent string
	Score  float64
}

// Classifier applies the indicator engine to parent tickers.
type Classifier struct {
	mapping Mapping
	period  int
}

// NewClassifier creates a classifier over the given sector mapping.
func NewClassifier(mapping Mapping) *Classifier {
	return &Classifier{mapping: mapping, period: 14}
}

// Mapping returns the sector mapping the classifier was built with.
func (c *Classifier) Mapping() Mapping {
	return c.mapping
}

// State classifies a parent from its bar series. A parent missing from the
// mapping is a configuration mistake and fails fast; a series shorter than
// MinBars yields core.ErrInsufficientData for the caller to handle.
func (c *Classifier) State(parent string, bars []core.Bar) (*State, error) {
	info, ok := c.mapping[parent]
	if !ok {
		return nil, core.WrapError(core.ErrUnknownParent, fmt.Errorf("%q", parent))
	}
	if len(bars) < MinBars {
		return nil, core.ErrInsufficientData
	}

	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	psar, _, err := indicator.PSAR(highs, lows)
	if err != nil {
		return nil, err
	}

	last := len(bars) - 1
	bullish := closes[last] > psar[last]

	state := &State{
		Parent:   parent,
		Category: info.Category,
		Children: info.Children,
	}
	if !bullish {
		return state, nil
	}

	state.IsBullish = true
	state.GapPercent = (closes[last] - psar[last]) / closes[last] * 100

	for i := last; i >= 0; i-- {
		if closes[i] <= psar[i] {
			break
		}
		state.DaysBullish++
	}

	if dmi, err := indicator.ADX(highs, lows, closes, c.period); err == nil {
		state.ADX = dmi.ADX[last]
	}
	state.RSI = 50
	if rsi, err := indicator.RSI(closes, c.period); err == nil {
		state.RSI = rsi[last]
	}

	strength := 2*state.GapPercent + 0.5*state.ADX + 0.3*(state.RSI-50)
	if strength < 0 {
		strength = 0
	}
	if strength > 100 {
		strength = 100
	}
	state.StrengthScore = strength

	return state, nil
}

// Rank orders bullish parents by descending strength. Ties break on the
// parent ticker so the order is stable across runs.
func Rank(states map[string]*State) []Ranking {
	rankings := make([]Ranking, 0, len(states))
	for _, s := range states {
		if s != nil && s.IsBullish {
			rankings = append(rankings, Ranking{Parent: s.Parent, Score: s.StrengthScore})
		}
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Score != rankings[j].Score {
			return rankings[i].Score > rankings[j].Score
		}
		return rankings[i].Parent < rankings[j].Parent
	})
	return rankings
}

// Weight returns a parent's target allocation multiplier. Under weighted
// allocation the top 3 ranked parents get 2x, the next 5 get 1x and the
// remainder 0.5x; parents that are not bullish get nothing. Non-weighted
// policies allocate equally.
func Weight(parent string, rankings []Ranking, weighted bool) float64 {
	if !weighted {
		return 1.0
	}
	for rank, r := range rankings {
		if r.Parent == parent {
			switch {
			case rank < 3:
				return 2.0
			case rank < 8:
				return 1.0
			default:
				return 0.5
			}
		}
	}
	return 0
}
