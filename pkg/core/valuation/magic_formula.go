package valuation

import (
	"fmt"

	"valueinvest/pkg/models"
)

// MagicFormula screens on Greenblatt's two ratios, earnings yield
// (EBIT/EV) and return on capital (EBIT over net fixed assets plus net
// working capital), and derives a fair price from the required yield.
type MagicFormula struct {
	RequiredEY   float64 // percentage points, default 10
	BenchmarkROC float64 // percentage points, default 25
}

func (MagicFormula) Name() string { return "magic_formula" }

func (m MagicFormula) IsApplicable(s *models.Snapshot) bool {
	hasEBIT := s.EBIT > 0 || (s.OperatingMargin > 0 && s.Revenue > 0)
	return hasEBIT && s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (m MagicFormula) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(m.Name(), s, missingReason(missing), missing)
	}

	requiredEY := m.RequiredEY
	if requiredEY <= 0 {
		requiredEY = 10.0
	}
	benchmarkROC := m.BenchmarkROC
	if benchmarkROC <= 0 {
		benchmarkROC = 25.0
	}

	ebit := s.EBIT
	if ebit <= 0 && s.OperatingMargin > 0 && s.Revenue > 0 {
		ebit = s.Revenue * s.OperatingMargin / 100
	}
	if ebit <= 0 {
		return notApplicableResult(m.Name(), s,
			"EBIT must be positive, directly or via revenue and operating margin", []string{"ebit"})
	}

	ev := s.EnterpriseValue()
	if ev <= 0 {
		return notApplicableResult(m.Name(), s, "enterprise value must be positive", []string{"enterprise_value"})
	}

	investedCapital := s.NetFixedAssets + s.NetWorkingCapital

	earningsYield := ebit / ev * 100
	roc := 0.0
	if investedCapital > 0 {
		roc = ebit / investedCapital * 100
	}

	fairEV := ebit / (requiredEY / 100)
	fairEquity := fairEV - s.NetDebt
	if fairEquity <= 0 {
		return Result{
			Method:       m.Name(),
			FairValue:    0,
			CurrentPrice: s.CurrentPrice,
			Verdict:      VerdictNotApplicable,
			Details: map[string]interface{}{
				"earnings_yield":    round2(earningsYield),
				"return_on_capital": round2(roc),
			},
			Analysis: []string{
				fmt.Sprintf("Earnings yield %.1f%%", earningsYield),
				"Net debt exceeds fair enterprise value, cannot derive a fair price",
			},
			Confidence:    ConfidenceLow,
			Applicability: Limited,
		}
	}
	fair := fairEquity / s.SharesOutstanding

	eyPass := earningsYield >= requiredEY
	rocPass := investedCapital > 0 && roc >= benchmarkROC

	var quality string
	switch {
	case eyPass && rocPass:
		quality = "Passes both criteria, a candidate for the formula"
	case eyPass:
		quality = fmt.Sprintf("Cheap but return on capital (%.1f%%) below benchmark", roc)
	case rocPass:
		quality = fmt.Sprintf("Quality business but earnings yield (%.1f%%) below requirement", earningsYield)
	default:
		quality = "Below both thresholds"
	}

	analysis := []string{
		fmt.Sprintf("Earnings yield %.1f%% vs required %.0f%%: %s", earningsYield, requiredEY, passFail(eyPass)),
		fmt.Sprintf("Return on capital %.1f%% vs benchmark %.0f%%: %s", roc, benchmarkROC, passFail(rocPass)),
		quality,
	}
	if roc > 50 {
		analysis = append(analysis, fmt.Sprintf("Very high ROC (%.0f%%), verify the capital base", roc))
	}
	if earningsYield > 15 {
		analysis = append(analysis, fmt.Sprintf("Very high earnings yield (%.0f%%), check earnings quality", earningsYield))
	}

	confidence := ConfidenceLow
	switch {
	case eyPass && rocPass:
		confidence = ConfidenceHigh
	case eyPass || rocPass:
		confidence = ConfidenceMedium
	}

	applicability := Applicable
	if investedCapital <= 0 {
		applicability = Limited
	}

	low := (ebit/(requiredEY/100+0.03) - s.NetDebt) / s.SharesOutstanding
	if low < 0 {
		low = 0
	}
	high := (ebit/(requiredEY/100-0.03) - s.NetDebt) / s.SharesOutstanding

	return Result{
		Method:          m.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"earnings_yield":    round2(earningsYield),
			"return_on_capital": round2(roc),
			"ebit":              ebit,
			"enterprise_value":  ev,
			"invested_capital":  investedCapital,
		},
		Components: map[string]float64{
			"earnings_yield_pct": earningsYield,
			"roc_pct":            roc,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  applicability,
	}
}

func passFail(pass bool) string {
	if pass {
		return "pass"
	}
	return "fail"
}
