// Package validation provides pre-run checks on user-facing inputs: hard
// validation of the requested output format and advisory warnings on
// assumption values.
package validation

import (
	"fmt"

	"github.com/fcff-tools/ginzu/pkg/constants"
)

// ValidateOutputFormat checks that the requested output format is supported.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	}
	return fmt.Errorf("expected output format of %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, format)
}

// AssumptionInfo carries the resolved assumption values that warrant a
// sanity check. Warnings are advisory only; hard contract violations are
// rejected by the valuation engine itself.
type AssumptionInfo struct {
	RevGrowthY1           float64
	RevCAGRY2To5          float64
	MarginTarget          float64
	MarginConvergenceYear int
	WACCInitial           float64
	RiskfreeRateNow       float64
	SalesToCapital1To5    float64
	SalesToCapital6To10   float64
}

// ValidateAssumptions returns warnings for assumption values that are legal
// but unusual enough to suggest a data or unit mistake (e.g. percent given
// where a fraction is expected).
func ValidateAssumptions(a AssumptionInfo) []string {
	var warnings []string

	if a.RevGrowthY1 > 1.0 || a.RevCAGRY2To5 > 1.0 {
		warnings = append(warnings, fmt.Sprintf(
			"Revenue growth above 100%% (year 1 %.4f, years 2-5 %.4f) - check whether a fraction was intended",
			a.RevGrowthY1, a.RevCAGRY2To5))
	}

	if a.MarginTarget > 1.0 || a.MarginTarget < -1.0 {
		warnings = append(warnings, fmt.Sprintf(
			"Target operating margin %.4f is outside [-1, 1] - check whether a fraction was intended",
			a.MarginTarget))
	}

	if a.MarginConvergenceYear > constants.ForecastYears {
		warnings = append(warnings, fmt.Sprintf(
			"Margin convergence year %d is beyond the %d-year forecast window - the target margin will not be reached",
			a.MarginConvergenceYear, constants.ForecastYears))
	}

	if a.WACCInitial < a.RiskfreeRateNow {
		warnings = append(warnings, fmt.Sprintf(
			"Initial WACC %.4f is below the risk-free rate %.4f",
			a.WACCInitial, a.RiskfreeRateNow))
	}

	if a.SalesToCapital1To5 > 20 || a.SalesToCapital6To10 > 20 {
		warnings = append(warnings, fmt.Sprintf(
			"Sales-to-capital ratios (%.2f, %.2f) are unusually high - reinvestment may be understated",
			a.SalesToCapital1To5, a.SalesToCapital6To10))
	}

	return warnings
}
