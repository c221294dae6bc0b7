// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"
)

// Configuration holds all configuration for one valuation run.
type Configuration struct {
	Company     Company
	Assumptions Assumptions
	Logging     LoggingConfig `yaml:"logging,omitempty"`
	Output      OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Company holds the normalized base-year fundamentals for the company being
// valued, as a data connector would supply them.
type Company struct {
	Name   string `yaml:"name,omitempty"`
	Ticker string `yaml:"ticker,omitempty"`

	Revenues           float64 `yaml:"revenues"`
	EBIT               float64 `yaml:"ebit"`
	BookEquity         float64 `yaml:"bookEquity"`
	BookDebt           float64 `yaml:"bookDebt"`
	Cash               float64 `yaml:"cash"`
	NonOperatingAssets float64 `yaml:"nonOperatingAssets,omitempty"`
	MinorityInterests  float64 `yaml:"minorityInterests,omitempty"`
	SharesOutstanding  float64 `yaml:"sharesOutstanding"`
	StockPrice         float64 `yaml:"stockPrice"`

	EffectiveTaxRate *float64 `yaml:"effectiveTaxRate,omitempty"`
	MarginalTaxRate  *float64 `yaml:"marginalTaxRate,omitempty"`
	RiskFreeRate     *float64 `yaml:"riskFreeRate,omitempty"`

	// RnDExpense is the current-year R&D spend; RnDHistory lists the prior
	// years' spend ordered most recent first.
	RnDExpense float64   `yaml:"rndExpense,omitempty"`
	RnDHistory []float64 `yaml:"rndHistory,omitempty"`

	// OperatingLeaseLiability is the debt value of operating leases, used
	// when lease capitalization is enabled without an explicit lease debt
	// assumption.
	OperatingLeaseLiability float64 `yaml:"operatingLeaseLiability,omitempty"`
}

// OptionGrant describes the outstanding employee-option pool for the
// dilution-adjusted valuation.
type OptionGrant struct {
	StrikePrice   float64 `yaml:"strikePrice"`
	MaturityYears float64 `yaml:"maturityYears"`
	Volatility    float64 `yaml:"volatility"`
	DividendYield float64 `yaml:"dividendYield,omitempty"`
	Outstanding   float64 `yaml:"outstanding"`
}

// Assumptions holds the forward-looking levers and module switches. Pointer
// fields distinguish "not provided" (nil, defaults apply) from an explicit
// zero.
type Assumptions struct {
	RevGrowthY1           *float64
	RevCAGRY2To5          *float64
	MarginY1              *float64
	MarginTarget          *float64
	MarginConvergenceYear *int
	SalesToCapital1To5    *float64
	SalesToCapital6To10   *float64
	RiskfreeRateNow       *float64
	WACCInitial           *float64
	TaxRateEffective      *float64
	TaxRateMarginal       *float64
	MatureMarketERP       *float64

	CapitalizeRnD        bool
	RnDAmortizationYears *int

	CapitalizeOperatingLeases bool
	LeaseDebt                 *float64
	LeaseEBITAdjustment       *float64

	HasEmployeeOptions bool
	OptionsValue       *float64
	Options            *OptionGrant

	HasNOLCarryforward bool
	NOLStartBalance    *float64

	StableWACC           *float64
	PerpetualGrowthRate  *float64
	TaxRateConvergence   bool
	RiskfreeRateAfterY10 *float64
	StableROC            *float64

	FailureProbability      *float64
	DistressProceedsTie     string
	DistressProceedsPercent *float64

	ReinvestmentLagYears *int

	TrappedCash               *float64
	TrappedCashForeignTaxRate *float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory reader, e.g. an uploaded file.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}
