package valuation

import (
	"fmt"
	"math"

	"valueinvest/pkg/models"
)

// PEG growth-rate comfort band in percentage points. Outside the band
// the ratio is computed but flagged Limited.
const (
	pegMinGrowth = 5.0
	pegMaxGrowth = 50.0
)

// PEG compares the price-earnings ratio to the growth rate and derives
// an equivalent fair price from a benchmark PEG of 1.
type PEG struct {
	FairPEG float64 // benchmark ratio, default 1.0
}

func (PEG) Name() string { return "peg" }

func (p PEG) IsApplicable(s *models.Snapshot) bool {
	return s.EPS > 0 && s.CurrentPrice > 0 && s.GrowthRate > 0
}

func (p PEG) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"eps", s.EPS},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"growth_rate", s.GrowthRate},
	)
	if len(missing) > 0 {
		return notApplicableResult(p.Name(), s, missingReason(missing), missing)
	}
	if s.EPS <= 0 {
		return notApplicableResult(p.Name(), s, "earnings must be positive for PEG", []string{"eps"})
	}
	if s.GrowthRate <= 0 {
		return notApplicableResult(p.Name(), s,
			fmt.Sprintf("growth rate must be positive (got %.1f%%)", s.GrowthRate), []string{"growth_rate"})
	}

	fairPEG := p.FairPEG
	if fairPEG <= 0 {
		fairPEG = 1.0
	}

	pe := s.PERatio()
	pegRatio := pe / s.GrowthRate
	fairPE := s.GrowthRate * fairPEG
	fair := s.EPS * fairPE

	var pegNote string
	switch {
	case pegRatio < 1.0:
		pegNote = "PEG < 1.0 suggests undervaluation"
	case pegRatio < 1.5:
		pegNote = "PEG 1.0-1.5 suggests fair value"
	case pegRatio < 2.0:
		pegNote = "PEG 1.5-2.0 suggests mild overvaluation"
	default:
		pegNote = "PEG > 2.0 suggests overvaluation"
	}

	analysis := []string{
		fmt.Sprintf("PEG %.2f (P/E %.1f / growth %.1f%%)", pegRatio, pe, s.GrowthRate),
		pegNote,
		fmt.Sprintf("Fair P/E at PEG=%.1f: %.1fx", fairPEG, fairPE),
	}
	if s.GrowthRate < pegMinGrowth {
		analysis = append(analysis, fmt.Sprintf("Low growth (%.1f%%) makes PEG less reliable", s.GrowthRate))
	} else if s.GrowthRate > pegMaxGrowth {
		analysis = append(analysis, fmt.Sprintf("High growth (%.1f%%), sustainability uncertain", s.GrowthRate))
	}

	confidence := ConfidenceLow
	switch {
	case s.GrowthRate >= 5 && s.GrowthRate <= 25:
		confidence = ConfidenceHigh
	case s.GrowthRate <= 40:
		confidence = ConfidenceMedium
	}

	applicability := Applicable
	if s.GrowthRate < pegMinGrowth || s.GrowthRate > pegMaxGrowth {
		applicability = Limited
	}

	return Result{
		Method:          p.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"peg_ratio":   round2(pegRatio),
			"pe_ratio":    round2(pe),
			"growth_rate": s.GrowthRate,
			"fair_peg":    fairPEG,
		},
		Components: map[string]float64{
			"pe_ratio":    pe,
			"growth_rate": s.GrowthRate,
		},
		Analysis:   analysis,
		Confidence: confidence,
		FairValueRange: &Range{
			Low:  round2(s.EPS * s.GrowthRate * 0.8),
			Base: round2(fair),
			High: round2(s.EPS * s.GrowthRate * 1.2),
		},
		Applicability: applicability,
	}
}

// GARP projects EPS forward, applies a target exit multiple, and
// discounts the implied future price back at a required return.
type GARP struct {
	TargetPE       float64 // default 18
	Years          int     // default 5
	RequiredReturn float64 // percentage points, default 12
}

func (GARP) Name() string { return "garp" }

func (g GARP) IsApplicable(s *models.Snapshot) bool {
	return s.EPS > 0 && s.CurrentPrice > 0 && s.GrowthRate > 0
}

func (g GARP) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"eps", s.EPS},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"growth_rate", s.GrowthRate},
	)
	if len(missing) > 0 {
		return notApplicableResult(g.Name(), s, missingReason(missing), missing)
	}
	if s.GrowthRate <= 0 {
		return notApplicableResult(g.Name(), s, "growth rate must be positive for GARP", []string{"growth_rate"})
	}

	targetPE := g.TargetPE
	if targetPE <= 0 {
		targetPE = 18
	}
	years := g.Years
	if years <= 0 {
		years = 5
	}
	requiredReturn := g.RequiredReturn
	if requiredReturn <= 0 {
		requiredReturn = 12.0
	}

	growth := s.GrowthRate / 100
	r := requiredReturn / 100

	futureEPS := s.EPS * math.Pow(1+growth, float64(years))
	futurePrice := futureEPS * targetPE
	fair := futurePrice / math.Pow(1+r, float64(years))

	impliedPE := s.PERatio()
	impliedPEG := 0.0
	if s.GrowthRate > 0 {
		impliedPEG = impliedPE / s.GrowthRate
	}

	upside := premiumDiscount(fair, s.CurrentPrice)
	confidence := ConfidenceLow
	switch {
	case growth > 0 && growth <= 0.25 && upside > 15:
		confidence = ConfidenceHigh
	case upside > 0:
		confidence = ConfidenceMedium
	}

	discFactor := math.Pow(1+r, float64(years))
	low := s.EPS * math.Pow(1+growth*0.8, float64(years)) * targetPE * 0.9 / discFactor
	high := s.EPS * math.Pow(1+growth*1.2, float64(years)) * targetPE * 1.1 / discFactor

	analysis := []string{
		fmt.Sprintf("Projects EPS to %.2f in %d years at %.1f%% growth", futureEPS, years, growth*100),
		fmt.Sprintf("Target exit P/E %.0fx gives future price %.2f", targetPE, futurePrice),
		fmt.Sprintf("Present value at %.0f%% required return: %.2f", r*100, fair),
		fmt.Sprintf("Implied PEG today: %.2f", impliedPEG),
	}

	return Result{
		Method:          g.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(upside),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"target_pe":       targetPE,
			"years":           years,
			"required_return": r * 100,
			"future_eps":      round2(futureEPS),
			"future_price":    round2(futurePrice),
		},
		Components: map[string]float64{
			"current_eps":  s.EPS,
			"future_eps":   futureEPS,
			"future_price": futurePrice,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  Applicable,
	}
}

// RuleOf40 adds revenue growth and operating margin, both in percentage
// points, and checks the sum against a minimum score. It is a quality
// screen, not a pricing model, so fair value echoes the current price.
type RuleOf40 struct {
	MinScore float64 // default 40
}

func (RuleOf40) Name() string { return "rule_of_40" }

func (r RuleOf40) IsApplicable(s *models.Snapshot) bool {
	return s.Revenue > 0 && s.CurrentPrice > 0
}

func (r RuleOf40) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"revenue", s.Revenue},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(r.Name(), s, missingReason(missing), missing)
	}

	minScore := r.MinScore
	if minScore <= 0 {
		minScore = 40.0
	}

	score := s.GrowthRate + s.OperatingMargin
	passes := score >= minScore

	var quality string
	switch {
	case score >= 50:
		quality = "Exceptional: growth plus margin above 50"
	case score >= 40:
		quality = "Passes Rule of 40: sustainable growth profile"
	case score >= 30:
		quality = "Near Rule of 40: monitor for improvement"
	case score >= 20:
		quality = "Below Rule of 40: growth or profitability concerns"
	default:
		quality = "Fails Rule of 40: significant issues"
	}

	analysis := []string{
		fmt.Sprintf("Score %.1f = growth %.1f%% + operating margin %.1f%%", score, s.GrowthRate, s.OperatingMargin),
		quality,
		fmt.Sprintf("Passes threshold %.0f: %v", minScore, passes),
	}
	if s.GrowthRate > 50 && s.OperatingMargin < 0 {
		analysis = append(analysis, "High growth but negative margin, watch the path to profitability")
	} else if s.GrowthRate < 10 && s.OperatingMargin > 30 {
		analysis = append(analysis, "Mature business with strong margins, consider capital-return potential")
	}

	confidence := ConfidenceMedium
	if s.OperatingMargin > 0 && s.GrowthRate > 0 {
		confidence = ConfidenceHigh
	}

	return Result{
		Method:          r.Name(),
		FairValue:       s.CurrentPrice,
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: 0,
		Verdict:         VerdictPricedIn,
		Details: map[string]interface{}{
			"score":            round1(score),
			"growth":           s.GrowthRate,
			"operating_margin": round1(s.OperatingMargin),
			"passes":           passes,
		},
		Components: map[string]float64{
			"revenue_growth":   s.GrowthRate,
			"operating_margin": s.OperatingMargin,
		},
		Analysis:      analysis,
		Confidence:    confidence,
		Applicability: Applicable,
	}
}
