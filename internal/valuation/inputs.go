// Package valuation implements a ten-year-plus-terminal FCFF discounted cash
// flow valuation, following the structure of the "Simple Ginzu" spreadsheet
// model: explicit forecast of revenue, margin, taxes, and reinvestment over
// ten years, a Gordon-growth terminal value, and a bridge from operating
// assets to per-share equity value.
//
// The package exposes three call contracts: ComputeRnDAdjustments and
// ComputeOptionValue prepare the optional-module scalars, and Compute runs
// the full valuation. All three are pure functions of their inputs.
package valuation

import "github.com/fcff-tools/ginzu/pkg/constants"

// Distress proceeds tie modes: in a failure scenario the distress sale
// recovers a percentage of either book capital or going-concern value.
const (
	ProceedsTieBook  = "book"
	ProceedsTieValue = "value"
)

// RnDModule carries the precomputed R&D capitalization adjustments
// (see ComputeRnDAdjustments). Present only when R&D is capitalized.
type RnDModule struct {
	Asset          float64
	EBITAdjustment float64
}

// LeaseModule carries the debt value and operating-income adjustment from
// capitalizing operating leases. Present only when leases are capitalized.
type LeaseModule struct {
	Debt           float64
	EBITAdjustment float64
}

// OptionsModule carries the precomputed value of outstanding employee options
// (see ComputeOptionValue). Present only when the company has options.
type OptionsModule struct {
	Value float64
}

// NOLModule carries the net-operating-loss carryforward available at the
// start of year 1. Present only when the company has an NOL.
type NOLModule struct {
	StartBalance float64
}

// FailureModule blends a distress-sale outcome into the operating-asset
// value. Present only when a nonzero probability of failure is modeled.
type FailureModule struct {
	Probability     float64
	ProceedsTie     string // ProceedsTieBook or ProceedsTieValue
	ProceedsPercent float64
}

// TrappedCashModule reduces cash by the incremental tax due on repatriating
// cash trapped in foreign subsidiaries.
type TrappedCashModule struct {
	Amount         float64
	ForeignTaxRate float64
}

// Inputs is the full set of assumptions for one valuation. Optional modules
// and overrides are pointers: nil means the module or override is disabled,
// so an enabled switch can never lack its companion value.
type Inputs struct {
	// Base-year figures
	RevenuesBase       float64
	EBITReportedBase   float64
	BookEquity         float64
	BookDebt           float64
	Cash               float64
	NonOperatingAssets float64
	MinorityInterests  float64
	SharesOutstanding  float64
	StockPrice         float64

	// Core forecast levers
	RevGrowthY1           float64
	RevCAGRY2To5          float64
	MarginY1              float64
	MarginTarget          float64
	MarginConvergenceYear int
	SalesToCapital1To5    float64
	SalesToCapital6To10   float64
	RiskfreeRateNow       float64
	WACCInitial           float64
	TaxRateEffective      float64
	TaxRateMarginal       float64

	// MatureMarketERP is added to the resolved risk-free rate to form the
	// stable WACC when StableWACC is not overridden.
	MatureMarketERP float64

	// Optional modules (nil = disabled)
	RnD             *RnDModule
	OperatingLeases *LeaseModule
	EmployeeOptions *OptionsModule
	NOLCarryforward *NOLModule
	Failure         *FailureModule
	TrappedCash     *TrappedCashModule

	// Overrides (nil = use the model's default resolution)
	StableWACC           *float64
	PerpetualGrowthRate  *float64
	RiskfreeRateAfterY10 *float64
	StableROC            *float64
	ReinvestmentLag      *int // 0..3 years

	// TaxRateConvergence keeps the terminal tax rate at the effective rate
	// instead of converging to the marginal rate.
	TaxRateConvergence bool
}

// validate applies the full rejection taxonomy before any schedule is built,
// so a failed call never returns a partially computed result.
func (in *Inputs) validate() error {
	if in.RevenuesBase <= 0 {
		return inputErrorf("base revenues must be > 0, got %v", in.RevenuesBase)
	}
	if in.SharesOutstanding <= 0 {
		return inputErrorf("shares outstanding must be > 0, got %v", in.SharesOutstanding)
	}
	if in.MarginConvergenceYear <= 0 {
		return inputErrorf("margin convergence year must be > 0, got %d", in.MarginConvergenceYear)
	}
	if in.SalesToCapital1To5 <= 0 || in.SalesToCapital6To10 <= 0 {
		return inputErrorf("sales-to-capital ratios must be > 0, got %v (years 1-5) and %v (years 6-10)",
			in.SalesToCapital1To5, in.SalesToCapital6To10)
	}
	if in.ReinvestmentLag != nil {
		lag := *in.ReinvestmentLag
		if lag < 0 || lag > 3 {
			return inputErrorf("reinvestment lag must be one of 0/1/2/3 years, got %d", lag)
		}
	}
	if in.Failure != nil {
		if in.Failure.Probability < 0 || in.Failure.Probability > 1 {
			return inputErrorf("probability of failure must be between 0 and 1, got %v", in.Failure.Probability)
		}
		if in.Failure.ProceedsTie != ProceedsTieBook && in.Failure.ProceedsTie != ProceedsTieValue {
			return inputErrorf("distress proceeds tie must be %q or %q, got %q",
				ProceedsTieBook, ProceedsTieValue, in.Failure.ProceedsTie)
		}
	}
	if in.OperatingLeases != nil && in.OperatingLeases.Debt < 0 {
		return inputErrorf("lease debt must be >= 0, got %v", in.OperatingLeases.Debt)
	}
	if in.RnD != nil && in.RnD.Asset < 0 {
		return inputErrorf("research asset must be >= 0, got %v", in.RnD.Asset)
	}
	if in.EmployeeOptions != nil && in.EmployeeOptions.Value < 0 {
		return inputErrorf("options value must be >= 0, got %v", in.EmployeeOptions.Value)
	}

	// Terminal math is checked here too so that every rejection happens
	// before any schedule is built.
	stableGrowth := in.stableGrowthRate()
	stableWACC := in.stableWACC()
	if stableWACC-stableGrowth <= 0 {
		return inputErrorf("stable WACC (%v) must exceed stable growth rate (%v) for a terminal value",
			stableWACC, stableGrowth)
	}
	if stableGrowth > 0 {
		// The stable ROC fallback is the year-10 WACC, which lands exactly
		// on the stable WACC after the 5-step taper.
		stableROC := stableWACC
		if in.StableROC != nil {
			stableROC = *in.StableROC
		}
		if stableROC <= 0 {
			return inputErrorf("stable return on capital must be > 0 when stable growth is > 0, got %v", stableROC)
		}
	}
	return nil
}

// stableGrowthRate resolves the perpetual growth rate: explicit override,
// else the post-year-10 risk-free rate, else today's risk-free rate.
func (in *Inputs) stableGrowthRate() float64 {
	if in.PerpetualGrowthRate != nil {
		return *in.PerpetualGrowthRate
	}
	if in.RiskfreeRateAfterY10 != nil {
		return *in.RiskfreeRateAfterY10
	}
	return in.RiskfreeRateNow
}

// terminalTaxRate resolves the tax rate applied to terminal-year earnings.
func (in *Inputs) terminalTaxRate() float64 {
	if in.TaxRateConvergence {
		return in.TaxRateEffective
	}
	return in.TaxRateMarginal
}

// stableWACC resolves the terminal cost of capital: explicit override, else
// resolved risk-free rate plus the mature-market equity risk premium.
func (in *Inputs) stableWACC() float64 {
	if in.StableWACC != nil {
		return *in.StableWACC
	}
	riskfree := in.RiskfreeRateNow
	if in.RiskfreeRateAfterY10 != nil {
		riskfree = *in.RiskfreeRateAfterY10
	}
	return riskfree + in.MatureMarketERP
}

// baseEBIT is reported EBIT plus the enabled capitalization adjustments.
func (in *Inputs) baseEBIT() float64 {
	ebit := in.EBITReportedBase
	if in.OperatingLeases != nil {
		ebit += in.OperatingLeases.EBITAdjustment
	}
	if in.RnD != nil {
		ebit += in.RnD.EBITAdjustment
	}
	return ebit
}

// reinvestmentLagYears resolves the lag between revenue growth and the
// reinvestment that produces it.
func (in *Inputs) reinvestmentLagYears() int {
	if in.ReinvestmentLag != nil {
		return *in.ReinvestmentLag
	}
	return constants.DefaultReinvestmentLagYears
}
