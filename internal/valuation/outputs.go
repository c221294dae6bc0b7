package valuation

// Outputs holds every intermediate series and final scalar from one
// valuation. Series indexed by year: the 11-element series carry the base
// year at index 0 and forecast years 1..10; Reinvestment, FCFF, and WACC
// carry years 1..10 plus a terminal element at index 10; GrowthRates,
// DiscountFactors, and PVFCFF cover years 1..10 only.
type Outputs struct {
	Revenues        []float64 `json:"revenues"`
	GrowthRates     []float64 `json:"growthRates"`
	Margins         []float64 `json:"margins"`
	EBIT            []float64 `json:"ebit"`
	TaxRates        []float64 `json:"taxRates"`
	NOL             []float64 `json:"nol"`
	EBITAfterTax    []float64 `json:"ebitAfterTax"`
	Reinvestment    []float64 `json:"reinvestment"`
	FCFF            []float64 `json:"fcff"`
	WACC            []float64 `json:"wacc"`
	DiscountFactors []float64 `json:"discountFactors"`
	PVFCFF          []float64 `json:"pvFcff"`

	PV10Y            float64 `json:"pv10y"`
	TerminalCashFlow float64 `json:"terminalCashFlow"`
	TerminalValue    float64 `json:"terminalValue"`
	PVTerminalValue  float64 `json:"pvTerminalValue"`
	PVSum            float64 `json:"pvSum"`

	ProbabilityOfFailure   float64 `json:"probabilityOfFailure"`
	ProceedsIfFailure      float64 `json:"proceedsIfFailure"`
	ValueOfOperatingAssets float64 `json:"valueOfOperatingAssets"`

	Debt                   float64 `json:"debt"`
	CashAdjusted           float64 `json:"cashAdjusted"`
	ValueOfEquity          float64 `json:"valueOfEquity"`
	OptionsValue           float64 `json:"optionsValue"`
	ValueOfEquityCommon    float64 `json:"valueOfEquityCommon"`
	EstimatedValuePerShare float64 `json:"estimatedValuePerShare"`
	PriceAsPercentOfValue  float64 `json:"priceAsPercentOfValue"`
}
