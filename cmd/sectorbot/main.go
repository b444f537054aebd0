package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adaptivex/sectorbot/internal/config"
	"github.com/adaptivex/sectorbot/internal/logger"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "sectorbot",
	Short: "sectorbot - sector-rotation signal engine and backtester",
	Long: `sectorbot scores trend-following entries on sector parent/child
tickers and simulates rotation strategies against historical data.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

// loadConfig reads the configured file, or the built-in defaults when
// no --config flag is given.
func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Defaults(), nil
	}
	return config.Load(cfgFile)
}

func newLogger() *zap.Logger {
	return logger.Must(debug)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
