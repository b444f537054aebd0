// Package regime classifies the overall market day from a broad index and
// a volatility gauge, selecting which decision policy is active.
package regime

import (
	"fmt"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/indicator"
	"go.uber.org/zap"
)

// MABars is the moving-average window the index is measured against.
const MABars = 200

// Status is the day's classification and the policy it selects.
type Status struct {
	Regime     core.Regime
	Policy     core.PolicyMode
	IndexClose float64
	IndexMA    float64
	VolGauge   float64
	Reason     string
}

// Detector maps index and volatility readings to a regime. Thresholds are
// re-evaluated from scratch every day; there is intentionally no hysteresis
// band, so a borderline day can flip the policy. Mode flips are logged.
type Detector struct {
	volThreshold float64
	logger       *zap.Logger
	lastPolicy   core.PolicyMode
}

// NewDetector creates a detector with the given volatility threshold
// (25 in the reference configuration).
func NewDetector(volThreshold float64, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{volThreshold: volThreshold, logger: logger}
}

// Classify determines the regime from the index close series and the
// latest volatility gauge reading. Fewer than MABars index closes yield
// core.ErrInsufficientData; callers fall back to the weighted-rotation
// policy in that case.
func (d *Detector) Classify(indexCloses []float64, volGauge float64) (*Status, error) {
	ma, err := indicator.SMALast(indexCloses, MABars)
	if err != nil {
		return nil, err
	}
	close := indexCloses[len(indexCloses)-1]

	status := &Status{
		IndexClose: close,
		IndexMA:    ma,
		VolGauge:   volGauge,
	}

	switch {
	case close < ma:
		status.Regime = core.RegimeBear
		status.Policy = core.PolicyWeightedRotation
		status.Reason = fmt.Sprintf("index %.0f < %d-day MA %.0f", close, MABars, ma)
	case volGauge > d.volThreshold:
		status.Regime = core.RegimeVolatile
		status.Policy = core.PolicyRotation
		status.Reason = fmt.Sprintf("volatility gauge %.1f > %.0f", volGauge, d.volThreshold)
	default:
		status.Regime = core.RegimeBull
		status.Policy = core.PolicyParentBased
		status.Reason = fmt.Sprintf("index %.0f > %d-day MA %.0f, volatility %.1f", close, MABars, ma, volGauge)
	}

	if d.lastPolicy != "" && d.lastPolicy != status.Policy {
		d.logger.Debug("regime policy flipped",
			zap.String("from", string(d.lastPolicy)),
			zap.String("to", string(status.Policy)),
			zap.String("reason", status.Reason),
		)
	}
	d.lastPolicy = status.Policy

	return status, nil
}
