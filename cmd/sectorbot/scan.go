package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adaptivex/sectorbot/internal/marketdata"
	"github.com/adaptivex/sectorbot/internal/sbi"
	"github.com/adaptivex/sectorbot/internal/sector"
)

var scanDataDir string

var scanCmd = &cobra.Command{
	Use:   "scan [ticker]",
	Short: "Score one ticker's entry quality today",
	Long:  "Compute the latest indicator snapshot and entry-score breakdown for a single ticker",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanDataDir, "data", "", "Directory of <TICKER>.csv bar files (fetched from Yahoo when omitted)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	ticker := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var history *marketdata.History
	if scanDataDir != "" {
		history, err = marketdata.LoadCSVDir(scanDataDir)
	} else {
		now := time.Now()
		history = marketdata.NewHistory()
		err = marketdata.NewYahooClient().FetchInto(cmd.Context(), history, []string{ticker}, now.AddDate(-1, 0, 0), now)
	}
	if err != nil {
		return err
	}

	bars, err := history.Bars(ticker)
	if err != nil {
		return err
	}

	result, err := sbi.NewScorer().Evaluate(bars)
	if err != nil {
		return err
	}

	last := bars[len(bars)-1]
	fmt.Printf("%s  as of %s  close %.2f\n\n", ticker, last.Date.Format("2006-01-02"), last.Close)
	fmt.Printf("Score:          %d / 10\n", result.Score)
	fmt.Printf("Direction:      %s (%d days)\n", result.Direction, result.DaysInTrend)
	fmt.Printf("Trend line:     %.2f (gap %+.2f%%, slope %+.2f)\n", result.Snapshot.PSAR, result.GapPercent, result.GapSlope)
	fmt.Printf("ATR:            %.2f%%\n", result.ATRPercent)
	fmt.Printf("ADX:            %.1f\n", result.ADX)
	fmt.Printf("RSI:            %.1f\n", result.Snapshot.RSI)
	fmt.Printf("Components:     atr=%d slope=%d adx=%d\n", result.Components.ATR, result.Components.Slope, result.Components.ADX)
	if result.FastBearish {
		fmt.Println("Warning:        fast momentum turned bearish")
	}
	if result.IsBroken {
		fmt.Println("Warning:        recent breakdown through the trend line")
	}

	if parent, info, ok := cfg.Mapping().ParentOf(ticker); ok {
		fmt.Printf("\nSector:         %s (%s)\n", parent, info.Category)
		if pbars, err := history.Bars(parent); err == nil {
			if st, err := sector.NewClassifier(cfg.Mapping()).State(parent, pbars); err == nil {
				fmt.Printf("Parent trend:   bullish=%v strength=%.1f\n", st.IsBullish, st.StrengthScore)
			}
		}
	}
	return nil
}
