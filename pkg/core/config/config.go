// Package config loads the analyst-edited valuation assumptions from
// an Hjson file and applies them to snapshots that leave the
// corresponding fields unset.
package config

import (
	"fmt"
	"os"

	"valueinvest/pkg/core/utils"
	"valueinvest/pkg/core/valuation"
	"valueinvest/pkg/models"
)

// Assumptions are the valuation parameters shared across methods. All
// rates are percentage points.
type Assumptions struct {
	AAACorporateYield float64 `json:"aaa_corporate_yield"`
	CostOfCapital     float64 `json:"cost_of_capital"`
	DiscountRate      float64 `json:"discount_rate"`
	TerminalGrowth    float64 `json:"terminal_growth"`
	GrowthRate1to5    float64 `json:"growth_rate_1_5"`
	GrowthRate6to10   float64 `json:"growth_rate_6_10"`

	// Bank methods
	CostOfEquity      float64 `json:"cost_of_equity"`
	SustainableGrowth float64 `json:"sustainable_growth"`

	// Growth methods
	FairPEG  float64 `json:"fair_peg"`
	TargetPE float64 `json:"target_pe"`

	// Optional CAPM block. When Beta is set, the discount rate and
	// cost of capital are derived instead of taken from the flat
	// assumptions above.
	Beta              float64 `json:"beta"`
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium"`
	PreTaxCostOfDebt  float64 `json:"pre_tax_cost_of_debt"`
	TaxRate           float64 `json:"tax_rate"`
	DebtToEquity      float64 `json:"debt_to_equity"`

	// Rating
	RangeMode string `json:"range_mode"` // min-max or quantile

	// News sentiment
	LLMProvider string `json:"llm_provider"` // gemini, deepseek, or empty for keyword-only
	LLMModel    string `json:"llm_model"`
	NewsDays    int    `json:"news_days"`
}

// Defaults mirror the parameters used for mature A-share names.
func Defaults() Assumptions {
	return Assumptions{
		AAACorporateYield: 4.4,
		CostOfCapital:     9.0,
		DiscountRate:      10.0,
		TerminalGrowth:    2.5,
		GrowthRate1to5:    8.0,
		GrowthRate6to10:   4.0,
		CostOfEquity:      10.0,
		SustainableGrowth: 2.0,
		FairPEG:           1.0,
		TargetPE:          18.0,
		RangeMode:         "min-max",
		NewsDays:          30,
	}
}

// Load reads an Hjson assumptions file. Fields absent from the file
// keep their defaults.
func Load(path string) (Assumptions, error) {
	a := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("read assumptions file: %w", err)
	}
	if err := utils.ParseHJSONToStruct(data, &a); err != nil {
		return a, fmt.Errorf("parse assumptions file %s: %w", path, err)
	}
	return a, nil
}

// EngineParams maps the method-level assumptions onto the engine's
// parameter set.
func (a Assumptions) EngineParams() valuation.EngineParams {
	return valuation.EngineParams{
		CostOfEquity:      a.CostOfEquity,
		SustainableGrowth: a.SustainableGrowth,
		FairPEG:           a.FairPEG,
		TargetPE:          a.TargetPE,
	}
}

// Apply fills the snapshot's valuation parameters where the snapshot
// has none of its own. Per-company data always wins over assumptions.
func (a Assumptions) Apply(s *models.Snapshot) {
	if a.Beta > 0 {
		capm := valuation.CalculateWACC(valuation.CAPMInput{
			UnleveredBeta:     a.Beta,
			RiskFreeRate:      a.RiskFreeRate,
			MarketRiskPremium: a.MarketRiskPremium,
			PreTaxCostOfDebt:  a.PreTaxCostOfDebt,
			TaxRate:           a.TaxRate,
			DebtToEquity:      a.DebtToEquity,
		})
		if s.DiscountRate == 0 {
			s.DiscountRate = capm.CostOfEquity
		}
		if s.CostOfCapital == 0 {
			s.CostOfCapital = capm.WACC
		}
	}

	if s.AAACorporateYield == 0 {
		s.AAACorporateYield = a.AAACorporateYield
	}
	if s.CostOfCapital == 0 {
		s.CostOfCapital = a.CostOfCapital
	}
	if s.DiscountRate == 0 {
		s.DiscountRate = a.DiscountRate
	}
	if s.TerminalGrowth == 0 {
		s.TerminalGrowth = a.TerminalGrowth
	}
	if s.GrowthRate1to5 == 0 {
		s.GrowthRate1to5 = a.GrowthRate1to5
	}
	if s.GrowthRate6to10 == 0 {
		s.GrowthRate6to10 = a.GrowthRate6to10
	}
}
