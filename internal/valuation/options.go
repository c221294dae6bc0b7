package valuation

import (
	"math"

	"github.com/fcff-tools/ginzu/pkg/constants"
)

// OptionInputs holds the parameters of one employee-option grant along with
// the share data needed for the dilution adjustment.
type OptionInputs struct {
	StockPrice         float64
	StrikePrice        float64
	MaturityYears      float64
	Volatility         float64
	DividendYield      float64
	RiskfreeRate       float64
	OptionsOutstanding float64
	SharesOutstanding  float64
}

// ComputeOptionValue returns the aggregate present value of outstanding
// employee options. The options dilute the share value they are priced on,
// so the adjusted stock price
//
//	S' = (S*shares + optionValue*options) / (shares + options)
//
// is circular; it is resolved by a capped fixed-point iteration. The
// iteration is contractive for realistic inputs, so non-convergence within
// the cap is not treated as an error: the last iterate is used.
//
// Returns 0 with no error when options outstanding, maturity, or volatility
// is non-positive; those inputs mean the options carry no value.
func ComputeOptionValue(inputs OptionInputs) (float64, error) {
	if inputs.OptionsOutstanding <= 0 {
		return 0.0, nil
	}
	if inputs.MaturityYears <= 0 {
		return 0.0, nil
	}
	if inputs.Volatility <= 0 {
		return 0.0, nil
	}
	if inputs.SharesOutstanding <= 0 {
		return 0, inputErrorf("shares outstanding must be > 0 for option valuation, got %v", inputs.SharesOutstanding)
	}

	shares := inputs.SharesOutstanding
	options := inputs.OptionsOutstanding

	adjustedPrice := inputs.StockPrice
	for i := 0; i < constants.OptionValueMaxIterations; i++ {
		valuePerOption := BlackScholesCall(adjustedPrice, inputs.StrikePrice, inputs.MaturityYears,
			inputs.Volatility, inputs.RiskfreeRate, inputs.DividendYield)
		totalOptionValue := valuePerOption * options
		next := (inputs.StockPrice*shares + totalOptionValue) / (shares + options)

		if math.Abs(next-adjustedPrice) <= constants.OptionValueTolerance {
			adjustedPrice = next
			break
		}
		adjustedPrice = next
	}

	valuePerOption := BlackScholesCall(adjustedPrice, inputs.StrikePrice, inputs.MaturityYears,
		inputs.Volatility, inputs.RiskfreeRate, inputs.DividendYield)
	return valuePerOption * options, nil
}

// BlackScholesCall prices a European call with continuous dividend yield.
// Degenerate cases: 0 when price or strike is non-positive, intrinsic value
// when maturity or volatility is non-positive.
func BlackScholesCall(stockPrice, strikePrice, maturityYears, volatility, riskfreeRate, dividendYield float64) float64 {
	if stockPrice <= 0 || strikePrice <= 0 {
		return 0.0
	}
	if maturityYears <= 0 || volatility <= 0 {
		return math.Max(stockPrice-strikePrice, 0.0)
	}

	variance := volatility * volatility
	dividendAdjustedRate := riskfreeRate - dividendYield
	timeSqrt := math.Sqrt(maturityYears)

	d1 := (math.Log(stockPrice/strikePrice) + (dividendAdjustedRate+0.5*variance)*maturityYears) /
		(volatility * timeSqrt)
	d2 := d1 - volatility*timeSqrt

	pvStock := math.Exp(-dividendYield*maturityYears) * stockPrice
	pvStrike := math.Exp(-riskfreeRate*maturityYears) * strikePrice

	return pvStock*normCDF(d1) - pvStrike*normCDF(d2)
}

// normCDF is the standard normal CDF via the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
