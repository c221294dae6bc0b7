// Package output provides utilities for formatting and displaying valuation results.
package output

import (
	"fmt"
	"math"

	"github.com/fcff-tools/ginzu/internal/valuation"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(name string, outputs *valuation.Outputs) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Valuation for %s ---\n", name)
	fmt.Printf("Year | Revenues        | Margin  | EBIT(1-t)      | Reinvestment   | FCFF           | PV(FCFF)\n")
	fmt.Printf("____ | _____________   | ______  | ____________   | ____________   | ____________   | ____________\n")
	for year := 1; year <= len(outputs.PVFCFF); year++ {
		_, _ = p.Printf("%4d | %15.2f | %6.2f%% | %14.2f | %14.2f | %14.2f | %14.2f\n",
			year,
			outputs.Revenues[year],
			outputs.Margins[year]*100,
			outputs.EBITAfterTax[year],
			outputs.Reinvestment[year-1],
			outputs.FCFF[year-1],
			outputs.PVFCFF[year-1],
		)
	}
	fmt.Printf("\n")
	_, _ = p.Printf("Terminal cash flow:          $%.2f\n", outputs.TerminalCashFlow)
	_, _ = p.Printf("Terminal value:              $%.2f\n", outputs.TerminalValue)
	_, _ = p.Printf("PV of terminal value:        $%.2f\n", outputs.PVTerminalValue)
	_, _ = p.Printf("PV of 10-year cash flows:    $%.2f\n", outputs.PV10Y)
	_, _ = p.Printf("Value of operating assets:   $%.2f\n", outputs.ValueOfOperatingAssets)
	if outputs.ProbabilityOfFailure > 0 {
		_, _ = p.Printf("Probability of failure:      %.2f%%\n", outputs.ProbabilityOfFailure*100)
		_, _ = p.Printf("Proceeds if firm fails:      $%.2f\n", outputs.ProceedsIfFailure)
	}
	_, _ = p.Printf("Value of equity:             $%.2f\n", outputs.ValueOfEquity)
	if outputs.OptionsValue > 0 {
		_, _ = p.Printf("Value of employee options:   $%.2f\n", outputs.OptionsValue)
	}
	_, _ = p.Printf("Value of common equity:      $%.2f\n", outputs.ValueOfEquityCommon)
	_, _ = p.Printf("Estimated value per share:   $%.2f\n", outputs.EstimatedValuePerShare)
	if !math.IsNaN(outputs.PriceAsPercentOfValue) && !math.IsInf(outputs.PriceAsPercentOfValue, 0) {
		_, _ = p.Printf("Price as %% of value:         %.2f%%\n", outputs.PriceAsPercentOfValue*100)
	}
}

// CsvFormat outputs in comma-separated value format, one row per forecast
// year plus the terminal row, followed by the summary scalars.
func CsvFormat(outputs *valuation.Outputs) {
	fmt.Printf(`"year","revenues","growth","margin","ebit","taxRate","ebitAfterTax","reinvestment","fcff","wacc","discountFactor","pvFcff"`)
	fmt.Printf("\n")
	for year := 1; year <= len(outputs.PVFCFF); year++ {
		fmt.Printf(`"%d","%.2f","%.6f","%.6f","%.2f","%.6f","%.2f","%.2f","%.2f","%.6f","%.6f","%.2f"`,
			year,
			outputs.Revenues[year],
			outputs.GrowthRates[year-1],
			outputs.Margins[year],
			outputs.EBIT[year],
			outputs.TaxRates[year],
			outputs.EBITAfterTax[year],
			outputs.Reinvestment[year-1],
			outputs.FCFF[year-1],
			outputs.WACC[year-1],
			outputs.DiscountFactors[year-1],
			outputs.PVFCFF[year-1],
		)
		fmt.Printf("\n")
	}
	terminal := len(outputs.FCFF) - 1
	fmt.Printf(`"terminal","","","","","","","%.2f","%.2f","%.6f","",""`,
		outputs.Reinvestment[terminal], outputs.FCFF[terminal], outputs.WACC[terminal])
	fmt.Printf("\n\n")

	fmt.Printf(`"metric","value"`)
	fmt.Printf("\n")
	summary := []struct {
		metric string
		value  float64
	}{
		{"pv10y", outputs.PV10Y},
		{"terminalValue", outputs.TerminalValue},
		{"pvTerminalValue", outputs.PVTerminalValue},
		{"valueOfOperatingAssets", outputs.ValueOfOperatingAssets},
		{"valueOfEquity", outputs.ValueOfEquity},
		{"optionsValue", outputs.OptionsValue},
		{"valueOfEquityCommon", outputs.ValueOfEquityCommon},
		{"estimatedValuePerShare", outputs.EstimatedValuePerShare},
		{"priceAsPercentOfValue", outputs.PriceAsPercentOfValue},
	}
	for _, row := range summary {
		fmt.Printf(`"%s","%.4f"`, row.metric, row.value)
		fmt.Printf("\n")
	}
}
