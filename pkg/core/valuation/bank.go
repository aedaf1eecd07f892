package valuation

import (
	"fmt"
	"math"

	"valueinvest/pkg/models"
)

// BankPB values financial companies by the justified price-to-book
// multiple: fair P/B = (ROE - g) / (COE - g).
type BankPB struct {
	CostOfEquity      float64 // percentage points, default 10
	SustainableGrowth float64 // percentage points, default 2
}

func (BankPB) Name() string { return "bank_pb" }

func (b BankPB) IsApplicable(s *models.Snapshot) bool {
	return s.BVPS > 0 && s.ROE != 0 && s.CurrentPrice > 0
}

func (b BankPB) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"bvps", s.BVPS},
		fieldReq{"roe", s.ROE},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(b.Name(), s, missingReason(missing), missing)
	}

	coePct := b.CostOfEquity
	if coePct <= 0 {
		coePct = 10.0
	}
	gPct := b.SustainableGrowth
	if gPct == 0 {
		gPct = 2.0
	}

	roe := s.ROE / 100
	coe := coePct / 100
	g := gPct / 100

	if coe <= g {
		return notApplicableResult(b.Name(), s,
			fmt.Sprintf("cost of equity (%.1f%%) must exceed growth (%.1f%%)", coe*100, g*100), nil)
	}

	currentPB := s.PBRatio()
	applicability := Applicable
	var fairPB, fair float64
	var note string
	if roe <= g {
		fairPB = 0
		fair = 0
		note = "ROE at or below growth, the franchise destroys value and should trade below book"
		applicability = Limited
	} else {
		fairPB = (roe - g) / (coe - g)
		fair = s.BVPS * fairPB
		note = fmt.Sprintf("ROE of %.1f%% justifies a fair P/B of %.2fx", roe*100, fairPB)
	}

	analysis := []string{
		fmt.Sprintf("Current P/B %.2fx vs fair P/B %.2fx", currentPB, fairPB),
		note,
		fmt.Sprintf("ROE %.1f%%, cost of equity %.1f%%, growth %.1f%%", roe*100, coe*100, g*100),
	}
	if fairPB > 0 {
		if currentPB < fairPB*0.8 {
			analysis = append(analysis, "Trading at a significant discount to justified P/B")
		} else if currentPB > fairPB*1.2 {
			analysis = append(analysis, "Trading at a premium to justified P/B")
		}
	}

	confidence := ConfidenceLow
	switch {
	case roe > coe:
		confidence = ConfidenceHigh
	case roe > coe*0.8:
		confidence = ConfidenceMedium
	}

	low := 0.0
	if roe-0.02 > g {
		low = s.BVPS * (roe - 0.02 - g) / (coe + 0.02 - g)
	}
	high := s.BVPS
	if roe+0.02 > g && coe-0.02 > g {
		high = s.BVPS * (roe + 0.02 - g) / (coe - 0.02 - g)
	}

	verdict := assess(fair, s.CurrentPrice)
	if fair <= 0 {
		verdict = VerdictOvervalued
	}

	return Result{
		Method:          b.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         verdict,
		Details: map[string]interface{}{
			"formula":            "fair P/B = (ROE - g) / (COE - g)",
			"current_pb":         round2(currentPB),
			"fair_pb":            round2(fairPB),
			"roe":                roe * 100,
			"cost_of_equity":     coe * 100,
			"sustainable_growth": g * 100,
		},
		Components: map[string]float64{
			"current_pb": currentPB,
			"fair_pb":    fairPB,
			"book_value": s.BVPS,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  applicability,
	}
}

// ResidualIncome values a stock as current book value plus the present
// value of excess returns over the cost of equity, with book compounding
// at the retention-implied growth rate and a terminal stage at a decayed
// ROE.
type ResidualIncome struct {
	CostOfEquity float64 // percentage points, default 10
	Years        int     // default 10
	TerminalROE  float64 // percentage points, default 8
	PayoutRatio  float64 // fraction, default 0.6
}

func (ResidualIncome) Name() string { return "residual_income" }

func (ri ResidualIncome) IsApplicable(s *models.Snapshot) bool {
	return s.BVPS > 0 && s.ROE != 0 && s.CurrentPrice > 0
}

func (ri ResidualIncome) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"bvps", s.BVPS},
		fieldReq{"roe", s.ROE},
		fieldReq{"current_price", s.CurrentPrice},
	)
	if len(missing) > 0 {
		return notApplicableResult(ri.Name(), s, missingReason(missing), missing)
	}

	coePct := ri.CostOfEquity
	if coePct <= 0 {
		coePct = 10.0
	}
	years := ri.Years
	if years <= 0 {
		years = 10
	}
	terminalROEPct := ri.TerminalROE
	if terminalROEPct <= 0 {
		terminalROEPct = 8.0
	}
	payout := ri.PayoutRatio
	if payout <= 0 || payout >= 1 {
		payout = 0.6
	}

	roe := s.ROE / 100
	coe := coePct / 100
	terminalROE := terminalROEPct / 100
	sustainableGrowth := roe * (1 - payout)

	pvResidual, endingBook := residualIncomePV(s.BVPS, roe, coe, sustainableGrowth, years)

	terminalResidual := endingBook * (terminalROE - coe)
	terminalValue := 0.0
	terminalNote := fmt.Sprintf("Terminal ROE (%.1f%%) at or below COE (%.1f%%), no terminal value", terminalROE*100, coe*100)
	if terminalResidual > 0 {
		terminalValue = terminalResidual / (coe * math.Pow(1+coe, float64(years)))
		terminalNote = fmt.Sprintf("Terminal value assumes ROE converging to %.1f%%", terminalROE*100)
	}

	fair := s.BVPS + pvResidual + terminalValue

	analysis := []string{
		fmt.Sprintf("Book value %.2f", s.BVPS),
		fmt.Sprintf("PV of residual income years 1-%d: %.2f", years, pvResidual),
		fmt.Sprintf("PV of terminal value: %.2f", terminalValue),
		terminalNote,
	}
	if roe < coe {
		analysis = append(analysis, fmt.Sprintf("Current ROE (%.1f%%) below cost of equity (%.1f%%), value destructive", roe*100, coe*100))
	}
	if fair > 0 && s.BVPS/fair > 0.8 {
		analysis = append(analysis, fmt.Sprintf("Most value (%.0f%%) comes from book, limited earnings power", s.BVPS/fair*100))
	}

	confidence := ConfidenceLow
	switch {
	case roe > coe && terminalROE >= coe*0.9:
		confidence = ConfidenceHigh
	case roe > coe*0.8:
		confidence = ConfidenceMedium
	}

	lowPV, lowBook := residualIncomePV(s.BVPS, roe-0.02, coe+0.02, (roe-0.02)*(1-payout), years)
	low := s.BVPS + lowPV + terminalStage(lowBook, terminalROE, coe+0.02, years)
	highPV, highBook := residualIncomePV(s.BVPS, roe+0.02, coe-0.02, (roe+0.02)*(1-payout), years)
	high := s.BVPS + highPV + terminalStage(highBook, terminalROE, coe-0.02, years)

	applicability := Applicable
	if roe <= 0 {
		applicability = Limited
	}

	return Result{
		Method:          ri.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"formula":            "value = book value + PV(residual income)",
			"years":              years,
			"terminal_roe":       terminalROE * 100,
			"sustainable_growth": sustainableGrowth * 100,
		},
		Components: map[string]float64{
			"book_value":         s.BVPS,
			"residual_income_pv": pvResidual,
			"terminal_value_pv":  terminalValue,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  applicability,
	}
}

// residualIncomePV accumulates discounted excess returns over the
// horizon and returns the book value entering the terminal stage.
func residualIncomePV(bvps, roe, coe, growth float64, years int) (pv, endingBook float64) {
	book := bvps
	for year := 1; year <= years; year++ {
		residual := book * (roe - coe)
		pv += residual / math.Pow(1+coe, float64(year))
		book *= 1 + growth
	}
	return pv, book
}

func terminalStage(endingBook, terminalROE, coe float64, years int) float64 {
	residual := endingBook * (terminalROE - coe)
	if residual <= 0 || coe <= 0 {
		return 0
	}
	return residual / (coe * math.Pow(1+coe, float64(years)))
}
