package builder

import (
	"math"
	"testing"

	"github.com/fcff-tools/ginzu/internal/config"
	"github.com/fcff-tools/ginzu/internal/valuation"
	"github.com/fcff-tools/ginzu/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func baseCompany() config.Company {
	return config.Company{
		Name:               "Test Co",
		Ticker:             "TST",
		Revenues:           10000.0,
		EBIT:               1500.0,
		BookEquity:         5000.0,
		BookDebt:           2000.0,
		Cash:               1000.0,
		NonOperatingAssets: 100.0,
		MinorityInterests:  50.0,
		SharesOutstanding:  500.0,
		StockPrice:         40.0,
	}
}

func TestBuildAppliesDefaults(t *testing.T) {
	inputs := Build(nil, baseCompany(), config.Assumptions{})

	assert.Equal(t, constants.DefaultRevenueGrowth, inputs.RevGrowthY1)
	assert.Equal(t, constants.DefaultRevenueGrowth, inputs.RevCAGRY2To5)
	assert.Equal(t, constants.DefaultMarginConvergenceYear, inputs.MarginConvergenceYear)
	assert.Equal(t, constants.DefaultRiskFreeRate, inputs.RiskfreeRateNow)
	assert.Equal(t, constants.DefaultWACCInitial, inputs.WACCInitial)
	assert.Equal(t, constants.DefaultEffectiveTaxRate, inputs.TaxRateEffective)
	assert.Equal(t, constants.DefaultMarginalTaxRate, inputs.TaxRateMarginal)
	assert.Equal(t, constants.DefaultMatureMarketERP, inputs.MatureMarketERP)

	assert.Nil(t, inputs.RnD)
	assert.Nil(t, inputs.OperatingLeases)
	assert.Nil(t, inputs.EmployeeOptions)
	assert.Nil(t, inputs.NOLCarryforward)
	assert.Nil(t, inputs.Failure)
	assert.Nil(t, inputs.TrappedCash)
}

func TestBuildDerivesMarginAndSalesToCapital(t *testing.T) {
	company := baseCompany()
	inputs := Build(nil, company, config.Assumptions{})

	// Invested capital = 5000 + 2000 - 1000 = 6000, so S2C = 10000/6000.
	expectedS2C := 10000.0 / 6000.0
	assert.InDelta(t, expectedS2C, inputs.SalesToCapital1To5, 1e-12)
	assert.InDelta(t, expectedS2C, inputs.SalesToCapital6To10, 1e-12)

	// Current margin = 1500/10000 with no R&D adjustment.
	assert.InDelta(t, 0.15, inputs.MarginY1, 1e-12)
	assert.InDelta(t, 0.15, inputs.MarginTarget, 1e-12)
}

func TestBuildSalesToCapitalFallback(t *testing.T) {
	company := baseCompany()
	company.BookEquity = 0
	company.BookDebt = 0
	company.Cash = 500.0 // invested capital negative

	inputs := Build(nil, company, config.Assumptions{})
	assert.Equal(t, constants.DefaultSalesToCapital, inputs.SalesToCapital1To5)
}

func TestBuildCapitalizesRnD(t *testing.T) {
	company := baseCompany()
	company.RnDExpense = 500.0
	company.RnDHistory = []float64{400.0, 300.0} // padded with zeros to 5 years

	inputs := Build(nil, company, config.Assumptions{CapitalizeRnD: true})
	require.NotNil(t, inputs.RnD)

	// Asset = 500 + 400*4/5 + 300*3/5 = 1000; amortization = (400+300)/5 = 140.
	assert.InDelta(t, 1000.0, inputs.RnD.Asset, 1e-9)
	assert.InDelta(t, 500.0-140.0, inputs.RnD.EBITAdjustment, 1e-9)

	// Book equity grows by the research asset, raising invested capital.
	expectedS2C := 10000.0 / (5000.0 + 1000.0 + 2000.0 - 1000.0)
	assert.InDelta(t, expectedS2C, inputs.SalesToCapital1To5, 1e-12)

	// Derived margin uses R&D-adjusted EBIT.
	assert.InDelta(t, (1500.0+360.0)/10000.0, inputs.MarginY1, 1e-12)
}

func TestBuildDisablesRnDOnBadInputs(t *testing.T) {
	company := baseCompany()
	company.RnDExpense = -500.0 // rejected by the R&D valuer

	inputs := Build(nil, company, config.Assumptions{CapitalizeRnD: true})
	assert.Nil(t, inputs.RnD)
	assert.Equal(t, 5000.0, inputs.BookEquity)
}

func TestBuildRnDAmortizationYearsOverride(t *testing.T) {
	company := baseCompany()
	company.RnDExpense = 300.0
	company.RnDHistory = []float64{200.0}

	inputs := Build(nil, company, config.Assumptions{
		CapitalizeRnD:        true,
		RnDAmortizationYears: intPtr(2),
	})
	require.NotNil(t, inputs.RnD)

	// Asset = 300 + 200*1/2 = 400; amortization = 200/2 = 100.
	assert.InDelta(t, 400.0, inputs.RnD.Asset, 1e-9)
	assert.InDelta(t, 200.0, inputs.RnD.EBITAdjustment, 1e-9)
}

func TestBuildLeaseDebtFallsBackToLiability(t *testing.T) {
	company := baseCompany()
	company.OperatingLeaseLiability = 750.0

	inputs := Build(nil, company, config.Assumptions{CapitalizeOperatingLeases: true})
	require.NotNil(t, inputs.OperatingLeases)
	assert.Equal(t, 750.0, inputs.OperatingLeases.Debt)

	inputs = Build(nil, company, config.Assumptions{
		CapitalizeOperatingLeases: true,
		LeaseDebt:                 floatPtr(900.0),
		LeaseEBITAdjustment:       floatPtr(25.0),
	})
	require.NotNil(t, inputs.OperatingLeases)
	assert.Equal(t, 900.0, inputs.OperatingLeases.Debt)
	assert.Equal(t, 25.0, inputs.OperatingLeases.EBITAdjustment)
}

func TestBuildComputesOptionValue(t *testing.T) {
	company := baseCompany()
	grant := &config.OptionGrant{
		StrikePrice:   40.0,
		MaturityYears: 5.0,
		Volatility:    0.30,
		DividendYield: 0.0,
		Outstanding:   25.0,
	}

	inputs := Build(nil, company, config.Assumptions{
		HasEmployeeOptions: true,
		Options:            grant,
	})
	require.NotNil(t, inputs.EmployeeOptions)

	expected, err := valuation.ComputeOptionValue(valuation.OptionInputs{
		StockPrice:         company.StockPrice,
		StrikePrice:        grant.StrikePrice,
		MaturityYears:      grant.MaturityYears,
		Volatility:         grant.Volatility,
		DividendYield:      grant.DividendYield,
		RiskfreeRate:       constants.DefaultRiskFreeRate,
		OptionsOutstanding: grant.Outstanding,
		SharesOutstanding:  company.SharesOutstanding,
	})
	require.NoError(t, err)
	assert.Greater(t, expected, 0.0)
	assert.InDelta(t, expected, inputs.EmployeeOptions.Value, 1e-12)
}

func TestBuildPrecomputedOptionValueWins(t *testing.T) {
	inputs := Build(nil, baseCompany(), config.Assumptions{
		HasEmployeeOptions: true,
		OptionsValue:       floatPtr(123.45),
		Options:            &config.OptionGrant{StrikePrice: 40, MaturityYears: 5, Volatility: 0.3, Outstanding: 25},
	})
	require.NotNil(t, inputs.EmployeeOptions)
	assert.Equal(t, 123.45, inputs.EmployeeOptions.Value)
}

func TestBuildOptionValuationFailureUsesZero(t *testing.T) {
	company := baseCompany()
	company.SharesOutstanding = 0 // rejected by the option valuer

	inputs := Build(nil, company, config.Assumptions{
		HasEmployeeOptions: true,
		Options:            &config.OptionGrant{StrikePrice: 40, MaturityYears: 5, Volatility: 0.3, Outstanding: 25},
	})
	require.NotNil(t, inputs.EmployeeOptions)
	assert.Equal(t, 0.0, inputs.EmployeeOptions.Value)
}

func TestBuildTaxRateResolutionOrder(t *testing.T) {
	company := baseCompany()
	company.EffectiveTaxRate = floatPtr(0.18)
	company.MarginalTaxRate = floatPtr(0.27)

	// Connector data beats the default.
	inputs := Build(nil, company, config.Assumptions{})
	assert.Equal(t, 0.18, inputs.TaxRateEffective)
	assert.Equal(t, 0.27, inputs.TaxRateMarginal)

	// An explicit assumption beats the connector data.
	inputs = Build(nil, company, config.Assumptions{
		TaxRateEffective: floatPtr(0.15),
		TaxRateMarginal:  floatPtr(0.30),
	})
	assert.Equal(t, 0.15, inputs.TaxRateEffective)
	assert.Equal(t, 0.30, inputs.TaxRateMarginal)
}

func TestBuildFailureAndTrappedCashModules(t *testing.T) {
	inputs := Build(nil, baseCompany(), config.Assumptions{
		FailureProbability:        floatPtr(0.2),
		DistressProceedsPercent:   floatPtr(0.5),
		TrappedCash:               floatPtr(400.0),
		TrappedCashForeignTaxRate: floatPtr(0.10),
		HasNOLCarryforward:        true,
		NOLStartBalance:           floatPtr(250.0),
	})

	require.NotNil(t, inputs.Failure)
	assert.Equal(t, 0.2, inputs.Failure.Probability)
	assert.Equal(t, valuation.ProceedsTieBook, inputs.Failure.ProceedsTie)
	assert.Equal(t, 0.5, inputs.Failure.ProceedsPercent)

	require.NotNil(t, inputs.TrappedCash)
	assert.Equal(t, 400.0, inputs.TrappedCash.Amount)
	assert.Equal(t, 0.10, inputs.TrappedCash.ForeignTaxRate)

	require.NotNil(t, inputs.NOLCarryforward)
	assert.Equal(t, 250.0, inputs.NOLCarryforward.StartBalance)
}

func TestBuildOutputComputes(t *testing.T) {
	inputs := Build(nil, baseCompany(), config.Assumptions{
		RevGrowthY1:  floatPtr(0.10),
		RevCAGRY2To5: floatPtr(0.08),
	})

	outputs, err := valuation.Compute(inputs)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(outputs.EstimatedValuePerShare))
	assert.Greater(t, outputs.EstimatedValuePerShare, 0.0)
}

func TestWarningsFlagSuspiciousInputs(t *testing.T) {
	inputs := Build(nil, baseCompany(), config.Assumptions{
		RevGrowthY1:  floatPtr(12.0), // 1200%, probably meant 12%
		MarginTarget: floatPtr(25.0),
	})

	warnings := Warnings(inputs)
	assert.NotEmpty(t, warnings)
	assert.GreaterOrEqual(t, len(warnings), 2)
}

func TestWarningsCleanInputs(t *testing.T) {
	warnings := Warnings(Build(nil, baseCompany(), config.Assumptions{}))
	assert.Empty(t, warnings)
}
