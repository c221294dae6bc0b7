package valuation

// RnDCapitalizationInputs holds one company's R&D expense history for
// capitalization. PastYearExpenses is ordered most-recent-prior first and
// must contain exactly AmortizationYears entries.
type RnDCapitalizationInputs struct {
	AmortizationYears  int
	CurrentYearExpense float64
	PastYearExpenses   []float64
}

// MaxAmortizationYears bounds the R&D amortization period.
const MaxAmortizationYears = 10

// ComputeRnDAdjustments converts an R&D expense history into the two scalars
// the engine needs when R&D is capitalized: the value of the research asset
// (the unamortized fraction of each year's spend, with the current year
// always fully unamortized) and the adjustment to reported operating income
// (current spend minus this year's straight-line amortization of past spend).
func ComputeRnDAdjustments(inputs RnDCapitalizationInputs) (asset float64, ebitAdjustment float64, err error) {
	n := inputs.AmortizationYears
	if n <= 0 {
		return 0, 0, inputErrorf("amortization years must be > 0, got %d", n)
	}
	if n > MaxAmortizationYears {
		return 0, 0, inputErrorf("amortization years must be <= %d, got %d", MaxAmortizationYears, n)
	}
	if inputs.CurrentYearExpense < 0 {
		return 0, 0, inputErrorf("current year R&D expense must be >= 0, got %v", inputs.CurrentYearExpense)
	}
	if len(inputs.PastYearExpenses) != n {
		return 0, 0, inputErrorf("past year R&D expenses length mismatch: expected %d for %d amortization years, got %d",
			n, n, len(inputs.PastYearExpenses))
	}

	nFloat := float64(n)
	asset = inputs.CurrentYearExpense
	amortizationThisYear := 0.0

	for i, expense := range inputs.PastYearExpenses {
		if expense < 0 {
			return 0, 0, inputErrorf("past year R&D expenses must all be >= 0, got %v at position %d", expense, i)
		}
		k := float64(i + 1)
		// The oldest year (k = N) is fully amortized and contributes nothing
		// to the asset.
		asset += expense * (nFloat - k) / nFloat
		amortizationThisYear += expense / nFloat
	}

	ebitAdjustment = inputs.CurrentYearExpense - amortizationThisYear
	return asset, ebitAdjustment, nil
}
