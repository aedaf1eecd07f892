package valuation

import (
	"fmt"

	"valueinvest/pkg/models"
)

// PiotroskiFScore grades fundamental strength with nine binary checks
// across profitability, leverage and efficiency, comparing the current
// year to the prior year. It is a quality screen with no fair value.
type PiotroskiFScore struct{}

func (PiotroskiFScore) Name() string { return "piotroski_f_score" }

func (PiotroskiFScore) IsApplicable(s *models.Snapshot) bool {
	return s.TotalAssets > 0 && s.CurrentPrice > 0
}

func (p PiotroskiFScore) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"total_assets", s.TotalAssets},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(p.Name(), s, missingReason(missing), missing)
	}

	roa := s.ROA()

	type criterion struct {
		name string
		pass bool
	}
	criteria := []criterion{
		{"positive_roa", roa > 0},
		{"positive_ocf", s.OperatingCashFlow > 0},
		{"improving_roa", roa > s.PriorROA},
		{"ocf_exceeds_net_income", s.OperatingCashFlow > s.NetIncome},
		{"lower_debt_ratio", s.DebtRatio() < s.PriorDebtRatio},
		{"higher_current_ratio", s.CurrentRatio() > s.PriorCurrentRatio},
		{"no_dilution", s.SharesOutstanding <= s.PriorSharesOutstanding},
		{"higher_gross_margin", s.GrossMargin > s.PriorGrossMargin},
		{"higher_asset_turnover", s.AssetTurnover() > s.PriorAssetTurnover},
	}

	score := 0
	breakdown := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		point := 0.0
		if c.pass {
			point = 1
			score++
		}
		breakdown[c.name] = point
	}

	var riskLevel, strength string
	switch {
	case score >= 8:
		riskLevel, strength = "Low", "Strong fundamentals across profitability, leverage and efficiency"
	case score >= 6:
		riskLevel, strength = "Low", "Solid fundamentals with minor weak spots"
	case score >= 4:
		riskLevel, strength = "Medium", "Mixed fundamentals, investigate the failing criteria"
	default:
		riskLevel, strength = "High", "Weak fundamentals, elevated risk of further deterioration"
	}

	analysis := []string{
		fmt.Sprintf("F-Score %d/9", score),
		strength,
	}
	for _, c := range criteria {
		if !c.pass {
			analysis = append(analysis, fmt.Sprintf("Failed: %s", c.name))
		}
	}

	confidence := ConfidenceMedium
	if s.PriorROA != 0 || s.PriorDebtRatio != 0 || s.PriorGrossMargin != 0 {
		confidence = ConfidenceHigh
	}

	return Result{
		Method:          p.Name(),
		FairValue:       s.CurrentPrice,
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: 0,
		Verdict:         VerdictPricedIn,
		Details: map[string]interface{}{
			"f_score":    score,
			"max_score":  9,
			"risk_level": riskLevel,
		},
		Components:    breakdown,
		Analysis:      analysis,
		Confidence:    confidence,
		Applicability: Applicable,
	}
}

// Altman Z-Score zone cutoffs for the original public-manufacturer
// model. Scores on a boundary fall in the grey zone.
const (
	altmanDistressCutoff = 1.8
	altmanSafeCutoff     = 3.0
)

// AltmanZScore estimates bankruptcy risk with the classic five-ratio
// weighted sum. Like the F-Score it is a risk metric, not a pricing
// model.
type AltmanZScore struct{}

func (AltmanZScore) Name() string { return "altman_z_score" }

func (AltmanZScore) IsApplicable(s *models.Snapshot) bool {
	return s.TotalAssets > 0 && s.TotalLiabilities > 0 &&
		s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (a AltmanZScore) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"total_assets", s.TotalAssets},
		fieldReq{"total_liabilities", s.TotalLiabilities},
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(a.Name(), s, missingReason(missing), missing)
	}

	workingCapital := s.NetWorkingCapital
	if workingCapital == 0 {
		workingCapital = s.CurrentAssets - s.CurrentLiabilities
	}

	ebit := s.EBIT
	if ebit == 0 && s.OperatingMargin > 0 && s.Revenue > 0 {
		ebit = s.Revenue * s.OperatingMargin / 100
	}

	x1 := workingCapital / s.TotalAssets
	x2 := s.RetainedEarnings / s.TotalAssets
	x3 := ebit / s.TotalAssets
	x4 := s.MarketCap() / s.TotalLiabilities
	x5 := s.Revenue / s.TotalAssets

	z := 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 1.0*x5

	var zone, riskLevel string
	switch {
	case z > altmanSafeCutoff:
		zone, riskLevel = "Safe Zone", "Low"
	case z < altmanDistressCutoff:
		zone, riskLevel = "Distress Zone", "High"
	default:
		zone, riskLevel = "Grey Zone", "Moderate"
	}

	contributions := map[string]float64{
		"x1_working_capital":   1.2 * x1,
		"x2_retained_earnings": 1.4 * x2,
		"x3_ebit":              3.3 * x3,
		"x4_market_leverage":   0.6 * x4,
		"x5_asset_turnover":    1.0 * x5,
	}

	analysis := []string{
		fmt.Sprintf("Z-Score %.2f (%s)", z, zone),
		fmt.Sprintf("Distress below %.1f, safe above %.1f", altmanDistressCutoff, altmanSafeCutoff),
		fmt.Sprintf("X1=%.3f X2=%.3f X3=%.3f X4=%.3f X5=%.3f", x1, x2, x3, x4, x5),
	}
	switch {
	case z < 1.0:
		analysis = append(analysis, "Extremely high distress, investigate before any position")
	case z < altmanDistressCutoff:
		analysis = append(analysis, "Significant financial stress indicated")
	case z <= altmanSafeCutoff:
		analysis = append(analysis, "Grey zone, monitor leverage and operating trends")
	}

	confidence := ConfidenceHigh
	if s.RetainedEarnings == 0 || ebit == 0 {
		confidence = ConfidenceMedium
	}

	return Result{
		Method:          a.Name(),
		FairValue:       s.CurrentPrice,
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: 0,
		Verdict:         VerdictPricedIn,
		Details: map[string]interface{}{
			"z_score":    round2(z),
			"zone":       zone,
			"risk_level": riskLevel,
		},
		Components:    contributions,
		Analysis:      analysis,
		Confidence:    confidence,
		Applicability: Applicable,
	}
}
