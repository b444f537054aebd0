package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adaptivex/sectorbot/internal/backtest"
	"github.com/adaptivex/sectorbot/internal/config"
	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/marketdata"
	"github.com/adaptivex/sectorbot/internal/metrics"
	"github.com/adaptivex/sectorbot/internal/state"
	"github.com/adaptivex/sectorbot/internal/storage/archive"
)

var (
	backtestDataDir   string
	backtestFrom      string
	backtestTo        string
	backtestPolicy    string
	backtestSaveState bool
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a sector-rotation backtest",
	Long:  "Replay the decision engine over historical daily bars and show performance statistics",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestDataDir, "data", "", "Directory of <TICKER>.csv bar files (fetched from Yahoo when omitted)")
	backtestCmd.Flags().StringVar(&backtestFrom, "from", "", "Start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestTo, "to", "", "End date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&backtestPolicy, "policy", "", "Override policy mode (parent_based, rotation, weighted_rotation, regime_aware)")
	backtestCmd.Flags().BoolVar(&backtestSaveState, "save-state", false, "Persist positions still open at the end as a snapshot")

	backtestCmd.MarkFlagRequired("from")
	backtestCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fromDate, err := time.Parse("2006-01-02", backtestFrom)
	if err != nil {
		return fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
	}
	toDate, err := time.Parse("2006-01-02", backtestTo)
	if err != nil {
		return fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
	}
	if toDate.Before(fromDate) {
		return fmt.Errorf("end date must be after start date")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if backtestPolicy != "" {
		if !core.PolicyMode(backtestPolicy).Valid() {
			return fmt.Errorf("unknown policy mode %q", backtestPolicy)
		}
		cfg.Strategy.PolicyMode = backtestPolicy
	}

	log := newLogger()
	defer log.Sync()

	history, err := loadHistory(cmd, cfg, fromDate, toDate)
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	if cfg.Metrics.Enabled && cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, registry.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	result, err := backtest.New(cfg, history, log).WithRegistry(registry).Run(cmd.Context(), fromDate, toDate)
	if err != nil {
		return err
	}

	printResult(result)

	if backtestSaveState {
		if err := saveEndState(cmd, cfg, result); err != nil {
			return err
		}
		fmt.Println("\nEnd-of-run positions snapshot saved.")
	}
	return nil
}

// loadHistory reads bars from the data directory, or fetches every
// configured ticker from Yahoo when no directory is given.
func loadHistory(cmd *cobra.Command, cfg *config.Config, from, to time.Time) (*marketdata.History, error) {
	if backtestDataDir != "" {
		return marketdata.LoadCSVDir(backtestDataDir)
	}

	tickers := []string{cfg.Strategy.BenchmarkTicker}
	if cfg.Strategy.VolGaugeTicker != "" {
		tickers = append(tickers, cfg.Strategy.VolGaugeTicker)
	}
	mapping := cfg.Mapping()
	for _, parent := range mapping.Parents() {
		tickers = append(tickers, parent)
		tickers = append(tickers, mapping[parent].Children...)
	}

	// pad the window so indicators are warm on the first trading day
	fetchFrom := from.AddDate(-1, -3, 0)
	history := marketdata.NewHistory()
	if err := marketdata.NewYahooClient().FetchInto(cmd.Context(), history, tickers, fetchFrom, to); err != nil {
		return nil, err
	}
	return history, nil
}

// saveEndState persists the positions force-closed at the end of the
// run, so a live scan can pick them up as its starting book.
func saveEndState(cmd *cobra.Command, cfg *config.Config, result *backtest.Result) error {
	store, err := archive.Open(cfg.Snapshot)
	if err != nil {
		return err
	}
	var positions []state.Position
	for _, t := range result.Trades {
		if t.ExitReason != core.ExitEndOfBacktest {
			continue
		}
		positions = append(positions, state.Position{
			Ticker:     t.Ticker,
			Parent:     t.Parent,
			Category:   t.Category,
			EntryDate:  t.EntryDate,
			EntryPrice: t.EntryPrice,
			EntrySBI:   t.EntrySBI,
			Weight:     t.Weight,
			Shares:     t.Shares,
		})
	}
	return state.NewStore(store).Save(cmd.Context(), positions)
}

func printResult(result *backtest.Result) {
	m := result.Metrics

	fmt.Println("=== sectorbot backtest ===")
	fmt.Printf("Run:        %s\n", result.RunID)
	fmt.Printf("Policy:     %s\n", result.Policy)
	fmt.Printf("Period:     %s to %s (%d trading days)\n",
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"), result.TradingDays)
	fmt.Println()
	fmt.Printf("Final equity:     $%.2f\n", result.FinalEquity)
	fmt.Printf("Total return:     %+.2f%%\n", m.TotalReturn)
	fmt.Printf("CAGR:             %+.2f%%\n", m.CAGR)
	fmt.Printf("Benchmark:        %+.2f%%\n", m.BenchmarkReturn)
	fmt.Printf("Alpha:            %+.2f%%\n", m.Alpha)
	fmt.Printf("Max drawdown:     %.2f%%\n", m.MaxDrawdown)
	fmt.Printf("Sharpe:           %.2f\n", m.Sharpe)
	fmt.Printf("Sortino:          %.2f\n", m.Sortino)
	fmt.Println()
	fmt.Printf("Trades:           %d (%d won / %d lost)\n", m.TotalTrades, m.WinningTrades, m.LosingTrades)
	fmt.Printf("Win rate:         %.1f%%\n", m.WinRate)
	fmt.Printf("Avg win / loss:   %+.2f%% / %+.2f%%\n", m.AvgWinPct, m.AvgLossPct)
	fmt.Printf("Profit factor:    %.2f\n", m.ProfitFactor)

	if len(result.Trades) == 0 {
		return
	}
	fmt.Println("\nTrades:")
	for _, t := range result.Trades {
		fmt.Printf("  %-6s %s -> %s  %+7.2f%%  (%s)\n",
			t.Ticker,
			t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"),
			t.ReturnPct(),
			t.ExitReason,
		)
	}
}
