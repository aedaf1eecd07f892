package valuation

import (
	"fmt"
	"math"

	"valueinvest/pkg/models"
)

// GordonDDM values a stock as a perpetuity of growing dividends:
// P = D1 / (r - g) where D1 = D0 * (1 + g).
type GordonDDM struct {
	// RequiredReturn and Growth are percentage points. Zero values fall
	// back to the snapshot's discount rate and dividend growth rate.
	RequiredReturn float64
	Growth         float64
}

func (GordonDDM) Name() string { return "gordon_ddm" }

func (g GordonDDM) IsApplicable(s *models.Snapshot) bool {
	return s.DividendPerShare > 0 && s.CurrentPrice > 0
}

func (g GordonDDM) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"dividend_per_share", s.DividendPerShare},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"discount_rate", pick(g.RequiredReturn, s.DiscountRate)},
	)
	if len(missing) > 0 {
		return notApplicableResult(g.Name(), s, missingReason(missing), missing)
	}

	r := pick(g.RequiredReturn, s.DiscountRate) / 100
	growth := pick(g.Growth, s.DividendGrowthRate) / 100

	if r <= growth {
		return notApplicableResult(g.Name(), s,
			fmt.Sprintf("required return (%.1f%%) must exceed dividend growth (%.1f%%)", r*100, growth*100), nil)
	}

	d1 := s.DividendPerShare * (1 + growth)
	fair := d1 / (r - growth)

	analysis := []string{
		fmt.Sprintf("Gordon growth model: D1=%.2f, r=%.1f%%, g=%.1f%%", d1, r*100, growth*100),
	}
	payout := s.PayoutRatio()
	confidence := ConfidenceMedium
	switch {
	case payout > 0 && payout <= 60 && growth >= 0:
		confidence = ConfidenceHigh
		analysis = append(analysis, fmt.Sprintf("Payout ratio %.0f%% leaves room to sustain the dividend", payout))
	case payout > 100:
		confidence = ConfidenceLow
		analysis = append(analysis, fmt.Sprintf("Payout ratio %.0f%% exceeds earnings, dividend may be cut", payout))
	}

	spread := r - growth
	var rng *Range
	if spread > 0.01 {
		rng = &Range{
			Low:  round2(d1 / (spread + 0.01)),
			Base: round2(fair),
			High: round2(d1 / (spread - 0.01)),
		}
	}

	return Result{
		Method:          g.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"required_return": r * 100,
			"dividend_growth": growth * 100,
			"next_dividend":   round2(d1),
		},
		Components: map[string]float64{
			"d1":     d1,
			"spread": spread,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: rng,
		Applicability:  Applicable,
	}
}

// Defaults for the two-stage dividend model, in percentage points.
const (
	twoStageDefaultGrowth1  = 5.0
	twoStageDefaultYears    = 5
	twoStageDefaultTerminal = 2.0
)

// TwoStageDDM discounts an explicit phase of dividend growth followed by
// a Gordon perpetuity at a lower terminal rate.
type TwoStageDDM struct {
	Growth1        float64 // stage-one growth, percentage points
	Years          int     // stage-one length
	TerminalGrowth float64 // perpetuity growth, percentage points
	RequiredReturn float64 // percentage points
}

func (TwoStageDDM) Name() string { return "two_stage_ddm" }

func (t TwoStageDDM) IsApplicable(s *models.Snapshot) bool {
	return s.DividendPerShare > 0 && s.CurrentPrice > 0
}

func (t TwoStageDDM) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"dividend_per_share", s.DividendPerShare},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"discount_rate", pick(t.RequiredReturn, s.DiscountRate)},
	)
	if len(missing) > 0 {
		return notApplicableResult(t.Name(), s, missingReason(missing), missing)
	}

	g1 := pick(t.Growth1, pick(s.DividendGrowthRate, twoStageDefaultGrowth1)) / 100
	gTerm := pick(t.TerminalGrowth, twoStageDefaultTerminal) / 100
	r := pick(t.RequiredReturn, s.DiscountRate) / 100
	years := t.Years
	if years <= 0 {
		years = twoStageDefaultYears
	}

	if r <= gTerm {
		return notApplicableResult(t.Name(), s,
			fmt.Sprintf("required return (%.1f%%) must exceed terminal growth (%.1f%%)", r*100, gTerm*100), nil)
	}

	var pvStage1 float64
	dividend := s.DividendPerShare
	for year := 1; year <= years; year++ {
		dividend *= 1 + g1
		pvStage1 += dividend / math.Pow(1+r, float64(year))
	}

	terminal := dividend * (1 + gTerm) / (r - gTerm)
	pvTerminal := terminal / math.Pow(1+r, float64(years))
	fair := pvStage1 + pvTerminal

	terminalPct := 0.0
	if fair > 0 {
		terminalPct = pvTerminal / fair * 100
	}

	analysis := []string{
		fmt.Sprintf("Stage one: %.1f%% growth for %d years, then %.1f%% in perpetuity", g1*100, years, gTerm*100),
		fmt.Sprintf("Terminal stage is %.1f%% of fair value", terminalPct),
	}

	confidence := ConfidenceMedium
	if g1 <= 0.10 && s.PayoutRatio() > 0 && s.PayoutRatio() < 80 {
		confidence = ConfidenceHigh
	}

	return Result{
		Method:          t.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"stage1_growth":   g1 * 100,
			"stage1_years":    years,
			"terminal_growth": gTerm * 100,
			"required_return": r * 100,
		},
		Components: map[string]float64{
			"pv_stage1":   pvStage1,
			"pv_terminal": pvTerminal,
		},
		Analysis:      analysis,
		Confidence:    confidence,
		Applicability: Applicable,
	}
}
