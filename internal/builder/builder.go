// Package builder prepares valuation engine inputs from normalized company
// fundamentals and user-supplied assumptions. It is the single place where
// default heuristics are applied and where the optional-module scalars (R&D
// capitalization, employee options) are precomputed, so every call site -
// CLI, server, tests - produces identical inputs from identical data.
package builder

import (
	"github.com/fcff-tools/ginzu/internal/config"
	"github.com/fcff-tools/ginzu/internal/valuation"
	"github.com/fcff-tools/ginzu/pkg/constants"
	"github.com/fcff-tools/ginzu/pkg/validation"
	"go.uber.org/zap"
)

// Build merges company fundamentals with assumptions and applies the default
// heuristics: margins and sales-to-capital derived from the (R&D-adjusted)
// base financials when not supplied, canonical rate defaults otherwise. The
// R&D and option valuers run here, before the engine, because their outputs
// are engine inputs.
func Build(logger *zap.Logger, company config.Company, assumptions config.Assumptions) valuation.Inputs {
	if logger == nil {
		logger = zap.NewNop()
	}

	riskFree := floatOr(company.RiskFreeRate, constants.DefaultRiskFreeRate)
	if assumptions.RiskfreeRateNow != nil {
		riskFree = *assumptions.RiskfreeRateNow
	}

	bookEquity := company.BookEquity

	// R&D capitalization: precompute the research asset and the operating
	// income adjustment. A bad expense history disables the module rather
	// than failing the whole build, matching how a missing module behaves.
	var rndModule *valuation.RnDModule
	if assumptions.CapitalizeRnD {
		amortYears := intOr(assumptions.RnDAmortizationYears, 5)
		past := make([]float64, amortYears)
		for i := 0; i < amortYears && i < len(company.RnDHistory); i++ {
			past[i] = company.RnDHistory[i]
		}

		asset, adjustment, err := valuation.ComputeRnDAdjustments(valuation.RnDCapitalizationInputs{
			AmortizationYears:  amortYears,
			CurrentYearExpense: company.RnDExpense,
			PastYearExpenses:   past,
		})
		if err != nil {
			logger.Warn("R&D capitalization failed, running without it",
				zap.String("op", "builder.Build"),
				zap.Error(err),
			)
		} else {
			rndModule = &valuation.RnDModule{Asset: asset, EBITAdjustment: adjustment}
			// The research asset is part of book capital once capitalized.
			bookEquity += asset
		}
	}

	// Sales-to-capital heuristic: revenue per unit of invested capital.
	investedCapital := bookEquity + company.BookDebt - company.Cash
	salesToCapital := constants.DefaultSalesToCapital
	if investedCapital > 0 && company.Revenues > 0 {
		salesToCapital = company.Revenues / investedCapital
	}

	// Margin heuristic: the current margin on R&D-adjusted EBIT.
	adjustedEBIT := company.EBIT
	if rndModule != nil {
		adjustedEBIT += rndModule.EBITAdjustment
	}
	currentMargin := 0.10
	if company.Revenues > 0 {
		currentMargin = adjustedEBIT / company.Revenues
	}

	var leaseModule *valuation.LeaseModule
	if assumptions.CapitalizeOperatingLeases {
		leaseDebt := company.OperatingLeaseLiability
		if assumptions.LeaseDebt != nil {
			leaseDebt = *assumptions.LeaseDebt
		}
		leaseModule = &valuation.LeaseModule{
			Debt:           leaseDebt,
			EBITAdjustment: floatOr(assumptions.LeaseEBITAdjustment, 0.0),
		}
	}

	// Employee options: use a precomputed value when supplied, otherwise
	// run the dilution-adjusted valuation on the grant parameters.
	var optionsModule *valuation.OptionsModule
	if assumptions.HasEmployeeOptions {
		value := 0.0
		switch {
		case assumptions.OptionsValue != nil:
			value = *assumptions.OptionsValue
		case assumptions.Options != nil:
			computed, err := valuation.ComputeOptionValue(valuation.OptionInputs{
				StockPrice:         company.StockPrice,
				StrikePrice:        assumptions.Options.StrikePrice,
				MaturityYears:      assumptions.Options.MaturityYears,
				Volatility:         assumptions.Options.Volatility,
				DividendYield:      assumptions.Options.DividendYield,
				RiskfreeRate:       riskFree,
				OptionsOutstanding: assumptions.Options.Outstanding,
				SharesOutstanding:  company.SharesOutstanding,
			})
			if err != nil {
				logger.Warn("employee option valuation failed, using zero value",
					zap.String("op", "builder.Build"),
					zap.Error(err),
				)
			} else {
				value = computed
			}
		}
		optionsModule = &valuation.OptionsModule{Value: value}
	}

	var nolModule *valuation.NOLModule
	if assumptions.HasNOLCarryforward {
		nolModule = &valuation.NOLModule{StartBalance: floatOr(assumptions.NOLStartBalance, 0.0)}
	}

	var failureModule *valuation.FailureModule
	if assumptions.FailureProbability != nil {
		tie := assumptions.DistressProceedsTie
		if tie == "" {
			tie = valuation.ProceedsTieBook
		}
		failureModule = &valuation.FailureModule{
			Probability:     *assumptions.FailureProbability,
			ProceedsTie:     tie,
			ProceedsPercent: floatOr(assumptions.DistressProceedsPercent, 0.0),
		}
	}

	var trappedCashModule *valuation.TrappedCashModule
	if assumptions.TrappedCash != nil {
		trappedCashModule = &valuation.TrappedCashModule{
			Amount:         *assumptions.TrappedCash,
			ForeignTaxRate: floatOr(assumptions.TrappedCashForeignTaxRate, 0.0),
		}
	}

	return valuation.Inputs{
		RevenuesBase:       company.Revenues,
		EBITReportedBase:   company.EBIT,
		BookEquity:         bookEquity,
		BookDebt:           company.BookDebt,
		Cash:               company.Cash,
		NonOperatingAssets: company.NonOperatingAssets,
		MinorityInterests:  company.MinorityInterests,
		SharesOutstanding:  company.SharesOutstanding,
		StockPrice:         company.StockPrice,

		RevGrowthY1:           floatOr(assumptions.RevGrowthY1, constants.DefaultRevenueGrowth),
		RevCAGRY2To5:          floatOr(assumptions.RevCAGRY2To5, constants.DefaultRevenueGrowth),
		MarginY1:              floatOr(assumptions.MarginY1, currentMargin),
		MarginTarget:          floatOr(assumptions.MarginTarget, currentMargin),
		MarginConvergenceYear: intOr(assumptions.MarginConvergenceYear, constants.DefaultMarginConvergenceYear),
		SalesToCapital1To5:    floatOr(assumptions.SalesToCapital1To5, salesToCapital),
		SalesToCapital6To10:   floatOr(assumptions.SalesToCapital6To10, salesToCapital),
		RiskfreeRateNow:       riskFree,
		WACCInitial:           floatOr(assumptions.WACCInitial, constants.DefaultWACCInitial),
		TaxRateEffective:      resolveRate(assumptions.TaxRateEffective, company.EffectiveTaxRate, constants.DefaultEffectiveTaxRate),
		TaxRateMarginal:       resolveRate(assumptions.TaxRateMarginal, company.MarginalTaxRate, constants.DefaultMarginalTaxRate),
		MatureMarketERP:       floatOr(assumptions.MatureMarketERP, constants.DefaultMatureMarketERP),

		RnD:             rndModule,
		OperatingLeases: leaseModule,
		EmployeeOptions: optionsModule,
		NOLCarryforward: nolModule,
		Failure:         failureModule,
		TrappedCash:     trappedCashModule,

		StableWACC:           assumptions.StableWACC,
		PerpetualGrowthRate:  assumptions.PerpetualGrowthRate,
		RiskfreeRateAfterY10: assumptions.RiskfreeRateAfterY10,
		StableROC:            assumptions.StableROC,
		ReinvestmentLag:      assumptions.ReinvestmentLagYears,
		TaxRateConvergence:   assumptions.TaxRateConvergence,
	}
}

// Warnings returns advisory messages for resolved inputs that look like unit
// or data mistakes. They never block a run.
func Warnings(in valuation.Inputs) []string {
	return validation.ValidateAssumptions(validation.AssumptionInfo{
		RevGrowthY1:           in.RevGrowthY1,
		RevCAGRY2To5:          in.RevCAGRY2To5,
		MarginTarget:          in.MarginTarget,
		MarginConvergenceYear: in.MarginConvergenceYear,
		WACCInitial:           in.WACCInitial,
		RiskfreeRateNow:       in.RiskfreeRateNow,
		SalesToCapital1To5:    in.SalesToCapital1To5,
		SalesToCapital6To10:   in.SalesToCapital6To10,
	})
}

func floatOr(value *float64, fallback float64) float64 {
	if value != nil {
		return *value
	}
	return fallback
}

func intOr(value *int, fallback int) int {
	if value != nil {
		return *value
	}
	return fallback
}

// resolveRate picks assumption over fetched data over default.
func resolveRate(assumption, data *float64, fallback float64) float64 {
	if assumption != nil {
		return *assumption
	}
	if data != nil {
		return *data
	}
	return fallback
}
