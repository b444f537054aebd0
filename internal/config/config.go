package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/adaptivex/sectorbot/internal/core"
	"github.com/adaptivex/sectorbot/internal/sector"
	"github.com/spf13/viper"
)

type Config struct {
	Strategy StrategyConfig           `mapstructure:"strategy"`
	Sectors  map[string]SectorConfig  `mapstructure:"sectors"`
	Snapshot SnapshotConfig           `mapstructure:"snapshot"`
	Metrics  MetricsConfig            `mapstructure:"metrics"`
}

// StrategyConfig holds the decision-engine thresholds and limits.
type StrategyConfig struct {
	PolicyMode         string  `mapstructure:"policy_mode"`
	EntrySBI           int     `mapstructure:"entry_sbi"`
	RotationSBI        int     `mapstructure:"rotation_sbi"`
	EntryRSI           float64 `mapstructure:"entry_rsi"`
	WeakRSI            float64 `mapstructure:"weak_rsi"`
	MaxPositions       int     `mapstructure:"max_positions"`
	MaxPerSector       int     `mapstructure:"max_per_sector"`
	RebalanceEvery     int     `mapstructure:"rebalance_every"` // trading days between entry scans
	WeightedAllocation bool    `mapstructure:"weighted_allocation"`

	// regime detection inputs
	BenchmarkTicker string  `mapstructure:"benchmark_ticker"`
	VolGaugeTicker  string  `mapstructure:"vol_gauge_ticker"`
	VolThreshold    float64 `mapstructure:"vol_threshold"`

	// position sizing
	InitialCapital   float64 `mapstructure:"initial_capital"`
	CashBuffer       float64 `mapstructure:"cash_buffer"`
	MaxPositionPct   float64 `mapstructure:"max_position_pct"`
	MinPositionValue float64 `mapstructure:"min_position_value"`
}

// SectorConfig maps one parent ticker to its category and child tickers.
type SectorConfig struct {
	Category string   `mapstructure:"category"`
	Children []string `mapstructure:"children"`
}

// SnapshotConfig selects where open-positions snapshots are persisted.
type SnapshotConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // for localfs
	S3   S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns a config with the reference thresholds.
func Defaults() *Config {
	return &Config{
		Strategy: StrategyConfig{
			PolicyMode:         string(core.PolicyRegimeAware),
			EntrySBI:           9,
			RotationSBI:        7,
			EntryRSI:           50,
			WeakRSI:            40,
			MaxPositions:       20,
			MaxPerSector:       5,
			RebalanceEvery:     1,
			WeightedAllocation: true,
			BenchmarkTicker:    "SPY",
			VolGaugeTicker:     "^VIX",
			VolThreshold:       25,
			InitialCapital:     10000,
			CashBuffer:         0.05,
			MaxPositionPct:     0.10,
			MinPositionValue:   100,
		},
		Snapshot: SnapshotConfig{
			Type: "localfs",
			Path: "data/state",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	s := c.Strategy

	if !core.PolicyMode(s.PolicyMode).Valid() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown policy_mode %q", s.PolicyMode))
	}
	if s.EntrySBI < 0 || s.EntrySBI > 10 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("entry_sbi must be in [0,10], got %d", s.EntrySBI))
	}
	if s.RotationSBI < 0 || s.RotationSBI > 10 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rotation_sbi must be in [0,10], got %d", s.RotationSBI))
	}
	if s.MaxPositions < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_positions must be positive, got %d", s.MaxPositions))
	}
	if s.MaxPerSector < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_per_sector must be positive, got %d", s.MaxPerSector))
	}
	if s.RebalanceEvery < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("rebalance_every must be positive, got %d", s.RebalanceEvery))
	}
	if s.BenchmarkTicker == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("benchmark_ticker is required"))
	}
	if s.CashBuffer < 0 || s.CashBuffer >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cash_buffer must be in [0,1), got %f", s.CashBuffer))
	}

	for parent, sc := range c.Sectors {
		if parent == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("empty parent ticker in sectors"))
		}
		if sc.Category == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("sector %q has no category", parent))
		}
		if len(sc.Children) == 0 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("sector %q has no children", parent))
		}
	}

	switch c.Snapshot.Type {
	case "", "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown snapshot storage type %q", c.Snapshot.Type))
	}

	return nil
}

// Mapping converts the sectors section into the typed structure the
// classifier consumes.
func (c *Config) Mapping() sector.Mapping {
	m := make(sector.Mapping, len(c.Sectors))
	for parent, sc := range c.Sectors {
		m[parent] = sector.Info{Category: sc.Category, Children: sc.Children}
	}
	return m
}

// Policy returns the configured policy mode.
func (c *Config) Policy() core.PolicyMode {
	return core.PolicyMode(c.Strategy.PolicyMode)
}
