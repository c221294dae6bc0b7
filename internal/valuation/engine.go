package valuation

import "github.com/fcff-tools/ginzu/pkg/constants"

// Compute runs the full FCFF valuation pipeline: growth, margin, tax, and
// cost-of-capital schedules over the ten-year forecast window, the NOL-aware
// after-tax earnings series, reinvestment and free cash flow, discounting, a
// Gordon-growth terminal value, and the bridge from operating assets to
// per-share equity value.
//
// Compute is a pure function: it validates eagerly and either returns a
// fully populated Outputs or an *InputError, never a partial result. Safe to
// call concurrently.
func Compute(inputs Inputs) (*Outputs, error) {
	if err := inputs.validate(); err != nil {
		return nil, err
	}

	stableGrowth := inputs.stableGrowthRate()
	terminalTaxRate := inputs.terminalTaxRate()
	stableWACC := inputs.stableWACC()
	baseEBIT := inputs.baseEBIT()

	growthRates := growthSchedule(inputs.RevGrowthY1, inputs.RevCAGRY2To5, stableGrowth)
	revenues := revenueSeries(inputs.RevenuesBase, growthRates)
	margins := marginSchedule(baseEBIT, inputs.RevenuesBase, inputs.MarginY1,
		inputs.MarginTarget, inputs.MarginConvergenceYear)
	ebit := ebitSeries(revenues, margins, baseEBIT)
	taxRates := taxRateSchedule(inputs.TaxRateEffective, terminalTaxRate)

	nolStart := 0.0
	if inputs.NOLCarryforward != nil {
		nolStart = inputs.NOLCarryforward.StartBalance
	}
	nol, ebitAfterTax := ebitAfterTaxWithNOL(ebit, taxRates, nolStart)

	salesToCapital := salesToCapitalSchedule(inputs.SalesToCapital1To5, inputs.SalesToCapital6To10)
	reinvestment := reinvestmentSeries(revenues, salesToCapital, inputs.reinvestmentLagYears(), stableGrowth)

	// Terminal-year figures. The terminal margin equals the year-10 margin.
	revenueTerminal := revenues[10] * (1.0 + stableGrowth)
	ebitTerminal := revenueTerminal * margins[10]
	ebitAfterTaxTerminal := ebitTerminal * (1.0 - terminalTaxRate)

	waccSeries := waccSchedule(inputs.WACCInitial, stableWACC)

	// The stable return on capital defaults to the year-10 cost of capital,
	// so it can only be resolved after the WACC schedule.
	stableROC := waccSeries[9]
	if inputs.StableROC != nil {
		stableROC = *inputs.StableROC
	}

	reinvestmentTerminal, err := terminalReinvestment(stableGrowth, stableROC, ebitAfterTaxTerminal)
	if err != nil {
		return nil, err
	}

	fcff := make([]float64, constants.ForecastYears)
	for y := 1; y <= constants.ForecastYears; y++ {
		fcff[y-1] = ebitAfterTax[y] - reinvestment[y-1]
	}
	fcffTerminal := ebitAfterTaxTerminal - reinvestmentTerminal

	discountFactors := discountFactorSeries(waccSeries)
	pvFCFF := make([]float64, constants.ForecastYears)
	pv10y := 0.0
	for i, cf := range fcff {
		pvFCFF[i] = cf * discountFactors[i]
		pv10y += pvFCFF[i]
	}

	denominator := stableWACC - stableGrowth
	if denominator <= 0 {
		return nil, inputErrorf("stable WACC (%v) must exceed stable growth rate (%v) for a terminal value",
			stableWACC, stableGrowth)
	}
	terminalValue := fcffTerminal / denominator
	pvTerminalValue := terminalValue * discountFactors[constants.ForecastYears-1]
	pvSum := pv10y + pvTerminalValue

	probabilityOfFailure := 0.0
	proceedsIfFailure := 0.0
	if inputs.Failure != nil {
		probabilityOfFailure = inputs.Failure.Probability
		proceedsIfFailure = distressProceeds(inputs.Failure, inputs.BookEquity, inputs.BookDebt, pvSum)
	}
	valueOfOperatingAssets := pvSum*(1.0-probabilityOfFailure) + proceedsIfFailure*probabilityOfFailure

	debt := inputs.BookDebt
	if inputs.OperatingLeases != nil {
		debt += inputs.OperatingLeases.Debt
	}

	cashAdjusted := inputs.Cash
	if inputs.TrappedCash != nil {
		// Repatriation tax on cash held abroad: marginal rate net of the
		// foreign tax already paid.
		cashAdjusted -= inputs.TrappedCash.Amount * (inputs.TaxRateMarginal - inputs.TrappedCash.ForeignTaxRate)
	}

	valueOfEquity := valueOfOperatingAssets - debt - inputs.MinorityInterests +
		cashAdjusted + inputs.NonOperatingAssets

	optionsValue := 0.0
	if inputs.EmployeeOptions != nil {
		optionsValue = inputs.EmployeeOptions.Value
	}
	valueOfEquityCommon := valueOfEquity - optionsValue

	estimatedValuePerShare := valueOfEquityCommon / inputs.SharesOutstanding
	priceAsPercentOfValue := inputs.StockPrice / estimatedValuePerShare

	return &Outputs{
		Revenues:        revenues,
		GrowthRates:     growthRates,
		Margins:         margins,
		EBIT:            ebit,
		TaxRates:        taxRates,
		NOL:             nol,
		EBITAfterTax:    ebitAfterTax,
		Reinvestment:    append(reinvestment, reinvestmentTerminal),
		FCFF:            append(fcff, fcffTerminal),
		WACC:            append(waccSeries, stableWACC),
		DiscountFactors: discountFactors,
		PVFCFF:          pvFCFF,

		PV10Y:            pv10y,
		TerminalCashFlow: fcffTerminal,
		TerminalValue:    terminalValue,
		PVTerminalValue:  pvTerminalValue,
		PVSum:            pvSum,

		ProbabilityOfFailure:   probabilityOfFailure,
		ProceedsIfFailure:      proceedsIfFailure,
		ValueOfOperatingAssets: valueOfOperatingAssets,

		Debt:                   debt,
		CashAdjusted:           cashAdjusted,
		ValueOfEquity:          valueOfEquity,
		OptionsValue:           optionsValue,
		ValueOfEquityCommon:    valueOfEquityCommon,
		EstimatedValuePerShare: estimatedValuePerShare,
		PriceAsPercentOfValue:  priceAsPercentOfValue,
	}, nil
}

// growthSchedule builds the year 1..10 revenue growth rates: year 1 explicit,
// years 2-5 at the CAGR assumption, years 6-10 tapering linearly to the
// stable growth rate so that year 10 lands on it exactly.
func growthSchedule(year1, years2To5, stableGrowth float64) []float64 {
	g := make([]float64, constants.ForecastYears)
	g[0] = year1
	for i := 1; i < 5; i++ {
		g[i] = years2To5
	}

	year5 := g[4]
	decrement := (year5 - stableGrowth) / constants.StableTransitionYears
	for i := 5; i < constants.ForecastYears; i++ {
		step := float64(i - 4) // year 6 is step 1
		g[i] = year5 - decrement*step
	}
	return g
}

// revenueSeries compounds base revenue through the growth schedule,
// returning base year plus years 1..10.
func revenueSeries(base float64, growthRates []float64) []float64 {
	revenues := make([]float64, 0, constants.ForecastYears+1)
	revenues = append(revenues, base)
	current := base
	for _, g := range growthRates {
		current = current * (1.0 + g)
		revenues = append(revenues, current)
	}
	return revenues
}

// marginSchedule interpolates operating margin from the year-1 assumption to
// the target so that the target is hit exactly at the convergence year, then
// holds flat. A convergence year of 1 means the target applies immediately,
// overriding the year-1 assumption. The base-year margin is informational
// only.
func marginSchedule(baseEBIT, baseRevenues, year1, target float64, convergenceYear int) []float64 {
	margins := make([]float64, 0, constants.ForecastYears+1)
	margins = append(margins, baseEBIT/baseRevenues)
	if convergenceYear == 1 {
		margins = append(margins, target)
	} else {
		margins = append(margins, year1)
	}

	slope := (target - year1) / float64(convergenceYear)
	for year := 2; year <= constants.ForecastYears; year++ {
		if year > convergenceYear {
			margins = append(margins, target)
			continue
		}
		margins = append(margins, target-slope*float64(convergenceYear-year))
	}
	return margins
}

func ebitSeries(revenues, margins []float64, baseEBIT float64) []float64 {
	ebit := make([]float64, 0, constants.ForecastYears+1)
	ebit = append(ebit, baseEBIT)
	for year := 1; year <= constants.ForecastYears; year++ {
		ebit = append(ebit, revenues[year]*margins[year])
	}
	return ebit
}

// taxRateSchedule holds the effective rate through year 5, then tapers
// linearly to the terminal rate over years 6-10.
func taxRateSchedule(effectiveRate, terminalRate float64) []float64 {
	taxRates := make([]float64, 0, constants.ForecastYears+1)
	for i := 0; i <= 5; i++ {
		taxRates = append(taxRates, effectiveRate)
	}

	step := (terminalRate - effectiveRate) / constants.StableTransitionYears
	for k := 1; k <= constants.StableTransitionYears; k++ {
		taxRates = append(taxRates, effectiveRate+step*float64(k))
	}
	return taxRates
}

// ebitAfterTaxWithNOL walks the forecast years carrying a running NOL
// balance: losses accrue to the balance, profits are shielded until the
// balance is exhausted, and only the excess over the balance is taxed. The
// base year is taxed directly; the carryforward applies from year 1 on.
func ebitAfterTaxWithNOL(ebit, taxRates []float64, nolStart float64) (nol, ebitAfterTax []float64) {
	nol = make([]float64, 0, constants.ForecastYears+1)
	ebitAfterTax = make([]float64, 0, constants.ForecastYears+1)

	nol = append(nol, nolStart)
	baseAfterTax := ebit[0]
	if ebit[0] > 0 {
		baseAfterTax = ebit[0] * (1.0 - taxRates[0])
	}
	ebitAfterTax = append(ebitAfterTax, baseAfterTax)

	currentNOL := nolStart
	for year := 1; year <= constants.ForecastYears; year++ {
		yearEBIT := ebit[year]

		switch {
		case yearEBIT <= 0:
			ebitAfterTax = append(ebitAfterTax, yearEBIT)
			currentNOL -= yearEBIT // subtracting a negative grows the balance
		case yearEBIT < currentNOL:
			ebitAfterTax = append(ebitAfterTax, yearEBIT)
			currentNOL -= yearEBIT
		default:
			taxableIncome := yearEBIT - currentNOL
			taxes := taxableIncome * taxRates[year]
			ebitAfterTax = append(ebitAfterTax, yearEBIT-taxes)
			currentNOL = 0.0
		}
		nol = append(nol, currentNOL)
	}
	return nol, ebitAfterTax
}

// salesToCapitalSchedule is a step function: the 1-5 ratio for years 1-5 and
// the 6-10 ratio thereafter.
func salesToCapitalSchedule(years1To5, years6To10 float64) []float64 {
	series := make([]float64, constants.ForecastYears)
	for i := range series {
		if i < 5 {
			series[i] = years1To5
		} else {
			series[i] = years6To10
		}
	}
	return series
}

// reinvestmentSeries converts lagged revenue deltas into capital needs via
// the sales-to-capital ratio. With lag L, year y reinvests for the revenue
// added between years y+L-1 and y+L; deltas reaching past year 10 extrapolate
// revenue at the stable growth rate.
func reinvestmentSeries(revenues, salesToCapital []float64, lagYears int, stableGrowth float64) []float64 {
	maxKnownIndex := len(revenues) - 1
	revenueAt := func(index int) float64 {
		if index <= maxKnownIndex {
			return revenues[index]
		}
		extrapolated := revenues[maxKnownIndex]
		for i := 0; i < index-maxKnownIndex; i++ {
			extrapolated *= 1.0 + stableGrowth
		}
		return extrapolated
	}

	reinvestment := make([]float64, constants.ForecastYears)
	for year := 1; year <= constants.ForecastYears; year++ {
		delta := revenueAt(year+lagYears) - revenueAt(year+lagYears-1)
		reinvestment[year-1] = delta / salesToCapital[year-1]
	}
	return reinvestment
}

// waccSchedule holds the initial cost of capital through year 5, then tapers
// linearly to the stable WACC over years 6-10.
func waccSchedule(initial, stable float64) []float64 {
	wacc := make([]float64, 0, constants.ForecastYears)
	for i := 0; i < 5; i++ {
		wacc = append(wacc, initial)
	}

	step := (initial - stable) / constants.StableTransitionYears
	for k := 1; k <= constants.StableTransitionYears; k++ {
		wacc = append(wacc, initial-step*float64(k))
	}
	return wacc
}

// discountFactorSeries is the cumulative product of 1/(1+WACC) across the
// forecast years.
func discountFactorSeries(wacc []float64) []float64 {
	factors := make([]float64, len(wacc))
	cumulative := 1.0
	for i, yearWACC := range wacc {
		cumulative /= 1.0 + yearWACC
		factors[i] = cumulative
	}
	return factors
}

// terminalReinvestment sustains the perpetual growth rate: growing at g with
// a return on capital r requires reinvesting g/r of after-tax earnings.
func terminalReinvestment(stableGrowth, stableROC, ebitAfterTaxTerminal float64) (float64, error) {
	if stableGrowth <= 0 {
		return 0.0, nil
	}
	if stableROC <= 0 {
		return 0, inputErrorf("stable return on capital must be > 0 when stable growth is > 0, got %v", stableROC)
	}
	return (stableGrowth / stableROC) * ebitAfterTaxTerminal, nil
}

// distressProceeds is the assumed recovery in a failure scenario, tied to
// either book capital or going-concern value.
func distressProceeds(failure *FailureModule, bookEquity, bookDebt, pvSum float64) float64 {
	if failure.ProceedsPercent <= 0 {
		return 0.0
	}
	if failure.ProceedsTie == ProceedsTieBook {
		return (bookEquity + bookDebt) * failure.ProceedsPercent
	}
	return pvSum * failure.ProceedsPercent
}
