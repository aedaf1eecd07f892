package valuation

import (
	"fmt"
	"math"

	"valueinvest/pkg/models"
)

// GrahamNumber values defensive stocks at sqrt(22.5 x EPS x BVPS), the
// price where P/E x P/B equals Graham's 22.5 ceiling.
type GrahamNumber struct{}

func (GrahamNumber) Name() string { return "graham_number" }

func (GrahamNumber) IsApplicable(s *models.Snapshot) bool {
	return s.EPS > 0 && s.BVPS > 0 && s.CurrentPrice > 0
}

func (g GrahamNumber) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"eps", s.EPS},
		fieldReq{"bvps", s.BVPS},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(g.Name(), s, missingReason(missing), missing)
	}
	if s.EPS <= 0 || s.BVPS <= 0 {
		return notApplicableResult(g.Name(), s, "EPS and BVPS must be positive under the square root", nil)
	}

	fair := math.Sqrt(22.5 * s.EPS * s.BVPS)
	low := math.Sqrt(20.0 * s.EPS * s.BVPS)
	high := math.Sqrt(25.0 * s.EPS * s.BVPS)

	return Result{
		Method:          g.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"formula": "sqrt(22.5 x EPS x BVPS)",
			"eps":     s.EPS,
			"bvps":    s.BVPS,
		},
		Components: map[string]float64{"eps": s.EPS, "bvps": s.BVPS},
		Analysis: []string{
			"Graham's ceiling for defensive investors (P/E x P/B <= 22.5)",
			fmt.Sprintf("Conservative band: %.2f - %.2f", low, high),
		},
		Confidence:     ConfidenceHigh,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  Applicable,
	}
}

// GrahamFormula is Graham's growth formula V = EPS x (8.5 + 2g) x 4.4 / Y
// with g in percentage points and Y the current AAA corporate bond yield.
type GrahamFormula struct {
	// GrowthCap bounds the growth rate fed into the formula; Graham
	// considered projections above 20% unreliable. Zero means 20.
	GrowthCap float64
}

func (GrahamFormula) Name() string { return "graham_formula" }

func (GrahamFormula) IsApplicable(s *models.Snapshot) bool {
	return s.EPS > 0 && s.AAACorporateYield > 0 && s.CurrentPrice > 0
}

func (g GrahamFormula) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"eps", s.EPS},
		fieldReq{"aaa_corporate_yield", s.AAACorporateYield},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(g.Name(), s, missingReason(missing), missing)
	}
	if s.EPS <= 0 {
		return notApplicableResult(g.Name(), s, "EPS must be positive", nil)
	}

	growthCap := g.GrowthCap
	if growthCap == 0 {
		growthCap = 20.0
	}

	growth := s.GrowthRate
	original := growth
	var notes []string
	if growth < 0 {
		growth = 0
		notes = append(notes, fmt.Sprintf("growth rate %.1f%% floored to 0%%", original))
	} else if growth > growthCap {
		growth = growthCap
		notes = append(notes, fmt.Sprintf("growth rate %.1f%% capped to %.1f%% (Graham's max)", original, growthCap))
	}

	basePE := 8.5 + 2*growth
	fair := s.EPS * basePE * 4.4 / s.AAACorporateYield

	low := s.EPS * (8.5 + 2*math.Max(growth-5, 0)) * 4.4 / s.AAACorporateYield
	high := s.EPS * (8.5 + 2*math.Min(growth+5, growthCap)) * 4.4 / s.AAACorporateYield

	analysis := []string{
		"V = (EPS x (8.5 + 2g) x 4.4) / Y",
		fmt.Sprintf("Growth rate used: %.1f%% (input: %.1f%%)", growth, original),
		fmt.Sprintf("Base P/E equivalent: %.1fx", basePE),
	}
	for _, n := range notes {
		analysis = append(analysis, "Note: "+n)
	}

	confidence := ConfidenceHigh
	if original != growth {
		confidence = ConfidenceMedium
	}

	return Result{
		Method:          g.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"growth_rate":     growth,
			"original_growth": original,
			"aaa_yield":       s.AAACorporateYield,
			"base_pe":         basePE,
		},
		Components:     map[string]float64{"eps": s.EPS, "growth_rate": growth},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  Applicable,
	}
}

// NCAV computes Graham's net-net liquidation floor:
// (current assets - total liabilities) / shares outstanding.
type NCAV struct {
	// SafetyMargin is the fraction of NCAV Graham required as a buy
	// target. Zero means the classic 2/3.
	SafetyMargin float64
}

func (NCAV) Name() string { return "ncav" }

func (NCAV) IsApplicable(s *models.Snapshot) bool {
	return s.CurrentAssets > 0 && s.TotalLiabilities != 0 && s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (n NCAV) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"current_assets", s.CurrentAssets},
		fieldReq{"total_liabilities", s.TotalLiabilities},
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(n.Name(), s, missingReason(missing), missing)
	}

	margin := n.SafetyMargin
	if margin == 0 {
		margin = 2.0 / 3.0
	}

	ncavTotal := s.CurrentAssets - s.TotalLiabilities
	perShare := ncavTotal / s.SharesOutstanding
	buyTarget := perShare * margin

	// Liquidation floor haircuts current assets to 85 cents on the unit.
	liquidating := (s.CurrentAssets*0.85 - s.TotalLiabilities) / s.SharesOutstanding

	var analysis []string
	applicability := Applicable
	switch {
	case ncavTotal <= 0:
		analysis = append(analysis,
			"NCAV is negative - possible solvency concerns",
			"Not a net-net candidate")
		applicability = Limited
	case s.CurrentPrice < buyTarget:
		analysis = append(analysis,
			fmt.Sprintf("Net-net opportunity: price below %.0f%% of NCAV", margin*100),
			fmt.Sprintf("Buy target: %.2f", buyTarget))
	case s.CurrentPrice < perShare:
		analysis = append(analysis,
			fmt.Sprintf("Below full NCAV but above the %.0f%% safety margin", margin*100))
	default:
		analysis = append(analysis, "Price above NCAV - no liquidation discount")
	}

	verdict := assess(perShare, s.CurrentPrice)
	if ncavTotal <= 0 {
		verdict = VerdictNotApplicable
	}

	return Result{
		Method:          n.Name(),
		FairValue:       round2(perShare),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(perShare, s.CurrentPrice)),
		Verdict:         verdict,
		Details: map[string]interface{}{
			"formula":           "(current assets - total liabilities) / shares",
			"current_assets":    s.CurrentAssets,
			"total_liabilities": s.TotalLiabilities,
			"ncav_total":        ncavTotal,
		},
		Components: map[string]float64{
			"ncav_per_share":    perShare,
			"buy_target":        buyTarget,
			"liquidating_value": liquidating,
		},
		Analysis:       analysis,
		Confidence:     ConfidenceMedium,
		FairValueRange: &Range{Low: round2(liquidating), Base: round2(perShare), High: round2(perShare)},
		Applicability:  applicability,
	}
}
