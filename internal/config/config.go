// Package config loads and validates the simulator configuration. Market
// conventions (costs, lot size, position caps) live here rather than as
// literals so the engine can be reused across markets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	InitialCash float64  `yaml:"initial_cash"`
	Universe    []string `yaml:"universe"`

	Costs      CostsConfig      `yaml:"costs"`
	Trading    TradingConfig    `yaml:"trading"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Indicators IndicatorsConfig `yaml:"indicators"`
	Rules      RulesConfig      `yaml:"rules"`
	Signals    SignalsConfig    `yaml:"signals"`
	Collector  CollectorConfig  `yaml:"collector"`
	Data       DataConfig       `yaml:"data"`
}

// CostsConfig is the transaction-cost model. Rates are fractions of the
// traded amount; the stamp tax applies to sells only and market impact only
// above the notional threshold.
type CostsConfig struct {
	CommissionRate  float64 `yaml:"commission_rate"`
	MinCommission   float64 `yaml:"min_commission"`
	StampTaxRate    float64 `yaml:"stamp_tax_rate"`
	TransferFeeRate float64 `yaml:"transfer_fee_rate"`
	SlippageRate    float64 `yaml:"slippage_rate"`
	ImpactFactor    float64 `yaml:"impact_factor"`
	ImpactThreshold float64 `yaml:"impact_threshold"`
}

type TradingConfig struct {
	LotSize             int     `yaml:"lot_size"`
	MaxPositionFraction float64 `yaml:"max_position_fraction"`
}

type MetricsConfig struct {
	RiskFreeRate float64 `yaml:"risk_free_rate"`
	TradingDays  int     `yaml:"trading_days"`
}

type IndicatorsConfig struct {
	BBStdDev        float64 `yaml:"bb_stddev"`
	KDJDPeriod      int     `yaml:"kdj_d_period"`
	MACDFast        int     `yaml:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal"`
	ResistanceQuant float64 `yaml:"resistance_quantile"`
	SupportQuant    float64 `yaml:"support_quantile"`
}

// TechnicalRuleConfig selects one technical rule and its parameters. Only
// the fields relevant to the named rule are read.
type TechnicalRuleConfig struct {
	Name       string        `yaml:"name"`
	Short      int           `yaml:"short"`
	Long       int           `yaml:"long"`
	Period     int           `yaml:"period"`
	Window     int           `yaml:"window"`
	Oversold   float64       `yaml:"oversold"`
	Overbought float64       `yaml:"overbought"`
	Threshold  float64       `yaml:"threshold"`
	Adaptive   bool          `yaml:"adaptive"`
	Filters    FiltersConfig `yaml:"filters"`
}

// FiltersConfig attaches filters to a rule; a zero value disables the
// corresponding filter.
type FiltersConfig struct {
	VolumeConfirmation float64 `yaml:"volume_confirmation"`
	VolatilityMin      float64 `yaml:"volatility_min"`
	VolatilityMax      float64 `yaml:"volatility_max"`
	ADXPeriod          int     `yaml:"adx_period"`
	ADXMin             float64 `yaml:"adx_min"`
	MinStrength        float64 `yaml:"min_strength"`
	MomentumLookback   int     `yaml:"momentum_lookback"`
}

type EventRuleConfig struct {
	Name         string   `yaml:"name"`
	MinAbsScore  float64  `yaml:"min_abs_score"`
	MinDaysAhead int      `yaml:"min_days_ahead"`
	MaxDaysAhead int      `yaml:"max_days_ahead"`
	Strength     float64  `yaml:"strength"`
	Positive     []string `yaml:"positive"`
	Negative     []string `yaml:"negative"`
}

type RulesConfig struct {
	Technical []TechnicalRuleConfig `yaml:"technical"`
	Event     []EventRuleConfig     `yaml:"event"`
}

type SignalsConfig struct {
	// MergePolicy resolves a technical and an event signal landing on the
	// same symbol and day: weighted, technical_first or event_first.
	MergePolicy string `yaml:"merge_policy"`
}

type CollectorConfig struct {
	Enabled        bool `yaml:"enabled"`
	PollSeconds    int  `yaml:"poll_seconds"`
	BackoffSeconds int  `yaml:"backoff_seconds"`
	MaxArticles    int  `yaml:"max_articles"`
}

type DataConfig struct {
	Source   string         `yaml:"source"` // STATIC or ZERODHA
	Exchange string         `yaml:"exchange"`
	Days     int            `yaml:"days"`
	Seed     int64          `yaml:"seed"`
	Tokens   map[string]int `yaml:"tokens"`
	// Benchmark is the index symbol alpha and beta are measured against.
	// Empty leaves them at their neutral values.
	Benchmark string `yaml:"benchmark"`
}

func (c *Config) Validate() error {
	if c.InitialCash <= 0 {
		return fmt.Errorf("initial_cash must be positive, got %.2f", c.InitialCash)
	}
	if len(c.Universe) == 0 {
		return fmt.Errorf("universe cannot be empty")
	}
	if c.Trading.LotSize <= 0 {
		return fmt.Errorf("trading.lot_size must be positive, got %d", c.Trading.LotSize)
	}
	if c.Trading.MaxPositionFraction <= 0 || c.Trading.MaxPositionFraction > 1 {
		return fmt.Errorf("trading.max_position_fraction must be in (0,1], got %.2f", c.Trading.MaxPositionFraction)
	}
	switch c.Signals.MergePolicy {
	case "weighted", "technical_first", "event_first":
	default:
		return fmt.Errorf("signals.merge_policy must be 'weighted', 'technical_first' or 'event_first', got %q", c.Signals.MergePolicy)
	}
	switch c.Data.Source {
	case "STATIC", "ZERODHA":
	default:
		return fmt.Errorf("data.source must be 'STATIC' or 'ZERODHA', got %q", c.Data.Source)
	}
	return nil
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Trading.LotSize == 0 {
		c.Trading.LotSize = 100
	}
	if c.Trading.MaxPositionFraction == 0 {
		c.Trading.MaxPositionFraction = 0.2
	}
	if c.Costs.CommissionRate == 0 {
		c.Costs.CommissionRate = 0.0003
	}
	if c.Costs.MinCommission == 0 {
		c.Costs.MinCommission = 5
	}
	if c.Costs.StampTaxRate == 0 {
		c.Costs.StampTaxRate = 0.001
	}
	if c.Costs.TransferFeeRate == 0 {
		c.Costs.TransferFeeRate = 0.00002
	}
	if c.Costs.SlippageRate == 0 {
		c.Costs.SlippageRate = 0.001
	}
	if c.Costs.ImpactFactor == 0 {
		c.Costs.ImpactFactor = 0.1
	}
	if c.Costs.ImpactThreshold == 0 {
		c.Costs.ImpactThreshold = 100_000
	}
	if c.Metrics.RiskFreeRate == 0 {
		c.Metrics.RiskFreeRate = 0.03
	}
	if c.Metrics.TradingDays == 0 {
		c.Metrics.TradingDays = 252
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2
	}
	if c.Indicators.KDJDPeriod == 0 {
		c.Indicators.KDJDPeriod = 3
	}
	if c.Indicators.MACDFast == 0 {
		c.Indicators.MACDFast = 12
	}
	if c.Indicators.MACDSlow == 0 {
		c.Indicators.MACDSlow = 26
	}
	if c.Indicators.MACDSignal == 0 {
		c.Indicators.MACDSignal = 9
	}
	if c.Indicators.ResistanceQuant == 0 {
		c.Indicators.ResistanceQuant = 0.8
	}
	if c.Indicators.SupportQuant == 0 {
		c.Indicators.SupportQuant = 0.2
	}
	if c.Signals.MergePolicy == "" {
		c.Signals.MergePolicy = "weighted"
	}
	if c.Collector.PollSeconds == 0 {
		c.Collector.PollSeconds = 300
	}
	if c.Collector.BackoffSeconds == 0 {
		c.Collector.BackoffSeconds = 60
	}
	if c.Collector.MaxArticles == 0 {
		c.Collector.MaxArticles = 15
	}
	if c.Data.Source == "" {
		c.Data.Source = "STATIC"
	}
	if c.Data.Days == 0 {
		c.Data.Days = 250
	}
	if c.Data.Seed == 0 {
		c.Data.Seed = 1
	}
}
