// Package constants provides shared constants for the ginzu valuation application.
package constants

// Forecast horizon constants
const (
	// ForecastYears is the length of the explicit forecast window.
	ForecastYears = 10

	// StableTransitionYears is the number of years over which growth, tax
	// rate, and WACC taper from their year-5 values to their stable values.
	StableTransitionYears = 5
)

// Default assumption values used when neither fetched data nor user
// assumptions supply a figure.
const (
	// DefaultMatureMarketERP is the mature-market equity risk premium added
	// to the risk-free rate when stable WACC is not overridden.
	DefaultMatureMarketERP = 0.0460

	// DefaultRiskFreeRate is the fallback risk-free rate.
	DefaultRiskFreeRate = 0.04

	// DefaultWACCInitial is the fallback cost of capital for years 1-5.
	DefaultWACCInitial = 0.08

	// DefaultEffectiveTaxRate is the fallback effective tax rate.
	DefaultEffectiveTaxRate = 0.20

	// DefaultMarginalTaxRate is the fallback marginal tax rate.
	DefaultMarginalTaxRate = 0.25

	// DefaultRevenueGrowth is the fallback revenue growth assumption.
	DefaultRevenueGrowth = 0.05

	// DefaultMarginConvergenceYear is the fallback year by which operating
	// margin reaches its target.
	DefaultMarginConvergenceYear = 5

	// DefaultSalesToCapital is the fallback sales-to-capital ratio when it
	// cannot be derived from invested capital.
	DefaultSalesToCapital = 1.5

	// DefaultReinvestmentLagYears is the lag between revenue growth and the
	// reinvestment that produces it.
	DefaultReinvestmentLagYears = 1
)

// Option valuation constants
const (
	// OptionValueMaxIterations caps the dilution fixed-point iteration.
	OptionValueMaxIterations = 200

	// OptionValueTolerance is the convergence tolerance on the adjusted
	// stock price.
	OptionValueTolerance = 1e-10
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Validation constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)
