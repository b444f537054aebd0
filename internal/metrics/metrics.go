package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	barsProcessed  prometheus.Counter
	signalsScored  *prometheus.CounterVec
	tradesOpened   prometheus.Counter
	tradesClosed   *prometheus.CounterVec
	openPositions  prometheus.Gauge
	backtestsTotal *prometheus.CounterVec
	backtestDays   prometheus.Histogram
	runDuration    prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		barsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sectorbot_bars_processed_total",
			Help: "Total number of daily bars consumed by simulations",
		}),
		signalsScored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorbot_signals_scored_total",
				Help: "Total number of entry scores evaluated",
			},
			[]string{"direction"},
		),
		tradesOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sectorbot_trades_opened_total",
			Help: "Total number of simulated positions opened",
		}),
		tradesClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorbot_trades_closed_total",
				Help: "Total number of simulated positions closed",
			},
			[]string{"reason"},
		),
		openPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sectorbot_open_positions",
			Help: "Open positions in the current simulation",
		}),
		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorbot_backtests_total",
				Help: "Total number of backtests",
			},
			[]string{"status"},
		),
		backtestDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sectorbot_backtest_trading_days",
			Help:    "Trading days covered per backtest",
			Buckets: []float64{21, 63, 126, 252, 504, 1260, 2520},
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sectorbot_backtest_duration_seconds",
			Help:    "Backtest wall-clock duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}),
	}

	reg.MustRegister(r.barsProcessed)
	reg.MustRegister(r.signalsScored)
	reg.MustRegister(r.tradesOpened)
	reg.MustRegister(r.tradesClosed)
	reg.MustRegister(r.openPositions)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDays)
	reg.MustRegister(r.runDuration)

	return r
}

// RecordBar records one consumed daily bar.
func (r *Registry) RecordBar() {
	r.barsProcessed.Inc()
}

// RecordSignal records one evaluated entry score.
func (r *Registry) RecordSignal(direction string) {
	r.signalsScored.WithLabelValues(direction).Inc()
}

// RecordOpen records an opened position.
func (r *Registry) RecordOpen() {
	r.tradesOpened.Inc()
}

// RecordClose records a closed position with its exit reason.
func (r *Registry) RecordClose(reason string) {
	r.tradesClosed.WithLabelValues(reason).Inc()
}

// SetOpenPositions sets the current open position count.
func (r *Registry) SetOpenPositions(n int) {
	r.openPositions.Set(float64(n))
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, tradingDays int, durationSeconds float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDays.Observe(float64(tradingDays))
	r.runDuration.Observe(durationSeconds)
}

// Handler returns an HTTP handler exposing the registry in the
// Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
