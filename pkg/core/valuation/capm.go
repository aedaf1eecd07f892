package valuation

// CAPMInput carries the capital-structure parameters for deriving a
// discount rate. Rates are percentage points, leverage is a ratio.
type CAPMInput struct {
	UnleveredBeta     float64
	RiskFreeRate      float64
	MarketRiskPremium float64
	PreTaxCostOfDebt  float64
	TaxRate           float64 // percentage points
	DebtToEquity      float64
}

// CAPMResult holds the derived rates, percentage points throughout.
type CAPMResult struct {
	LeveredBeta  float64
	CostOfEquity float64
	CostOfDebt   float64 // after tax
	WACC         float64
	WeightDebt   float64
	WeightEquity float64
}

// CalculateWACC relevers beta with the Hamada equation, prices equity
// with CAPM and weights the after-tax cost of debt by the target
// capital structure.
func CalculateWACC(input CAPMInput) CAPMResult {
	tax := input.TaxRate / 100

	leveredBeta := input.UnleveredBeta * (1 + (1-tax)*input.DebtToEquity)
	ke := input.RiskFreeRate + leveredBeta*input.MarketRiskPremium
	kd := input.PreTaxCostOfDebt * (1 - tax)

	wd := input.DebtToEquity / (1 + input.DebtToEquity)
	we := 1.0 / (1 + input.DebtToEquity)

	return CAPMResult{
		LeveredBeta:  leveredBeta,
		CostOfEquity: ke,
		CostOfDebt:   kd,
		WACC:         ke*we + kd*wd,
		WeightDebt:   wd,
		WeightEquity: we,
	}
}
