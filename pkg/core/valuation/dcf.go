package valuation

import (
	"fmt"
	"math"

	"valueinvest/pkg/models"
)

// dcfYears is the explicit projection horizon for the two-phase model.
const dcfYears = 10

// DCF projects free cash flow over ten years in two growth phases,
// discounts each year and a Gordon terminal value, and divides the
// resulting equity value by shares outstanding.
type DCF struct {
	// Optional overrides in percentage points. When zero, the
	// snapshot's own parameters are used.
	Growth1to5     float64
	Growth6to10    float64
	TerminalGrowth float64
	DiscountRate   float64
}

func (DCF) Name() string { return "dcf" }

func (DCF) IsApplicable(s *models.Snapshot) bool {
	return s.FCF > 0 && s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (d DCF) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"fcf", s.FCF},
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"discount_rate", pick(d.DiscountRate, s.DiscountRate)},
		fieldReq{"terminal_growth", pick(d.TerminalGrowth, s.TerminalGrowth)},
		fieldReq{"growth_rate_1_5", pick(d.Growth1to5, s.GrowthRate1to5)},
	)
	if len(missing) > 0 {
		return notApplicableResult(d.Name(), s, missingReason(missing), missing)
	}
	if s.FCF <= 0 {
		return notApplicableResult(d.Name(), s, "free cash flow must be positive for DCF", []string{"fcf"})
	}

	g1 := pick(d.Growth1to5, s.GrowthRate1to5) / 100
	g2 := pick(d.Growth6to10, s.GrowthRate6to10) / 100
	gTerm := pick(d.TerminalGrowth, s.TerminalGrowth) / 100
	r := pick(d.DiscountRate, s.DiscountRate) / 100

	if r <= gTerm {
		return notApplicableResult(d.Name(), s,
			fmt.Sprintf("discount rate (%.1f%%) must exceed terminal growth (%.1f%%)", r*100, gTerm*100), nil)
	}

	pvFCF, fcfYear10 := projectFCF(s.FCF, g1, g2, r)
	terminalValue := fcfYear10 * (1 + gTerm) / (r - gTerm)
	pvTerminal := terminalValue / math.Pow(1+r, dcfYears)

	ev := pvFCF + pvTerminal
	equityValue := ev - s.NetDebt
	fair := equityValue / s.SharesOutstanding

	tvPct := 0.0
	if ev > 0 {
		tvPct = pvTerminal / ev * 100
	}

	low := dcfSensitivity(s.FCF, s.SharesOutstanding, s.NetDebt, g1-0.02, g2-0.01, gTerm-0.005, r+0.02)
	high := dcfSensitivity(s.FCF, s.SharesOutstanding, s.NetDebt, g1+0.02, g2+0.01, gTerm+0.005, r-0.02)

	analysis := []string{
		fmt.Sprintf("10-year two-phase DCF: %.1f%% years 1-5, %.1f%% years 6-10, %.1f%% terminal", g1*100, g2*100, gTerm*100),
		fmt.Sprintf("Terminal value is %.1f%% of enterprise value", tvPct),
	}
	if tvPct > 60 {
		analysis = append(analysis, "Terminal value exceeds 60% of total, sensitive to growth assumptions")
	}

	confidence := ConfidenceHigh
	if tvPct >= 50 {
		confidence = ConfidenceMedium
	}
	if tvPct >= 70 {
		confidence = ConfidenceLow
	}

	return Result{
		Method:          d.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"growth_1_5":         g1 * 100,
			"growth_6_10":        g2 * 100,
			"terminal_growth":    gTerm * 100,
			"discount_rate":      r * 100,
			"terminal_value_pct": tvPct,
		},
		Components: map[string]float64{
			"pv_fcf":           pvFCF,
			"pv_terminal":      pvTerminal,
			"enterprise_value": ev,
			"equity_value":     equityValue,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: &Range{Low: round2(low), Base: round2(fair), High: round2(high)},
		Applicability:  Applicable,
	}
}

// projectFCF grows the base cash flow through the two phases, returning
// the sum of discounted flows and the final-year cash flow.
func projectFCF(fcf, g1, g2, r float64) (pv, year10 float64) {
	projected := fcf
	for year := 1; year <= dcfYears; year++ {
		if year <= 5 {
			projected *= 1 + g1
		} else {
			projected *= 1 + g2
		}
		pv += projected / math.Pow(1+r, float64(year))
	}
	return pv, projected
}

func dcfSensitivity(fcf, shares, netDebt, g1, g2, gTerm, r float64) float64 {
	if r <= gTerm || fcf <= 0 {
		return 0
	}
	pvFCF, year10 := projectFCF(fcf, g1, g2, r)
	terminal := year10 * (1 + gTerm) / (r - gTerm)
	pvTerminal := terminal / math.Pow(1+r, dcfYears)
	value := (pvFCF + pvTerminal - netDebt) / shares
	if value < 0 {
		return 0
	}
	return value
}

// pick returns the override when set, otherwise the fallback.
func pick(override, fallback float64) float64 {
	if override != 0 {
		return override
	}
	return fallback
}

// ReverseDCF searches for the years-1-5 growth rate at which the DCF
// enterprise value matches the market's, reporting the growth the price
// implies instead of a fair value. Years 6-10 growth is held at half the
// stage-one rate, mirroring the forward model's decay.
type ReverseDCF struct{}

const (
	reverseDCFMaxIter   = 200
	reverseDCFGrowthMin = -10.0
	reverseDCFGrowthMax = 100.0
	reverseDCFTolerance = 0.001 // relative EV error
)

func (ReverseDCF) Name() string { return "reverse_dcf" }

func (ReverseDCF) IsApplicable(s *models.Snapshot) bool {
	return s.FCF > 0 && s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (rd ReverseDCF) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"fcf", s.FCF},
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"discount_rate", s.DiscountRate},
		fieldReq{"terminal_growth", s.TerminalGrowth},
	)
	if len(missing) > 0 {
		return notApplicableResult(rd.Name(), s, missingReason(missing), missing)
	}
	if s.FCF <= 0 {
		return notApplicableResult(rd.Name(), s, "free cash flow must be positive", []string{"fcf"})
	}

	gTerm := s.TerminalGrowth / 100
	r := s.DiscountRate / 100
	if r <= gTerm {
		return notApplicableResult(rd.Name(), s, "discount rate must exceed terminal growth", nil)
	}

	targetEquity := s.CurrentPrice * s.SharesOutstanding
	targetEV := targetEquity + s.NetDebt
	if targetEV <= 0 {
		return notApplicableResult(rd.Name(), s, "market enterprise value must be positive", nil)
	}

	low, high := reverseDCFGrowthMin, reverseDCFGrowthMax
	mid := 0.0
	converged := false
	iterations := 0

	for i := 0; i < reverseDCFMaxIter; i++ {
		iterations = i + 1
		mid = (low + high) / 2
		g1 := mid / 100

		impliedEV := impliedEnterpriseValue(s.FCF, g1, g1*0.5, gTerm, r)
		if impliedEV <= 0 {
			low = mid
			continue
		}

		relErr := math.Abs(impliedEV-targetEV) / targetEV
		if relErr < reverseDCFTolerance {
			converged = true
			break
		}
		if impliedEV < targetEV {
			low = mid
		} else {
			high = mid
		}
		if high-low < 1e-6 {
			converged = true
			break
		}
	}

	analysis := []string{
		fmt.Sprintf("Market prices in %.1f%% annual growth for years 1-5", mid),
		fmt.Sprintf("Years 6-10 growth implied at %.1f%%", mid*0.5),
	}
	switch {
	case !converged:
		analysis = append(analysis, fmt.Sprintf("Did not converge within %d iterations", reverseDCFMaxIter))
	case mid < 0:
		analysis = append(analysis, "Market expects contraction, potential value trap or distressed pricing")
	case mid > 30:
		analysis = append(analysis, fmt.Sprintf("High implied growth (%.1f%%), verify sustainability", mid))
	case mid < 5:
		analysis = append(analysis, fmt.Sprintf("Low implied growth (%.1f%%) suggests a mature or declining business", mid))
	}

	confidence := ConfidenceLow
	if converged {
		confidence = ConfidenceMedium
		if mid >= 0 && mid <= 30 {
			confidence = ConfidenceHigh
		}
	}
	applicability := Applicable
	if !converged {
		applicability = Limited
	}

	var rng *Range
	if converged {
		rng = &Range{
			Low:  round2(priceAtGrowth(s, math.Max(mid-5, reverseDCFGrowthMin)/100, gTerm, r)),
			Base: s.CurrentPrice,
			High: round2(priceAtGrowth(s, math.Min(mid+5, reverseDCFGrowthMax)/100, gTerm, r)),
		}
	}

	return Result{
		Method:          rd.Name(),
		FairValue:       s.CurrentPrice,
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: 0,
		Verdict:         VerdictPricedIn,
		Details: map[string]interface{}{
			"implied_growth_1_5":  round1(mid),
			"implied_growth_6_10": round1(mid * 0.5),
			"converged":           converged,
			"iterations":          iterations,
		},
		Components: map[string]float64{
			"target_equity_value": targetEquity,
			"target_ev":           targetEV,
		},
		Analysis:       analysis,
		Confidence:     confidence,
		FairValueRange: rng,
		Applicability:  applicability,
	}
}

func impliedEnterpriseValue(fcf, g1, g2, gTerm, r float64) float64 {
	projected := fcf
	var pv float64
	for year := 1; year <= dcfYears; year++ {
		if year <= 5 {
			projected *= 1 + g1
		} else {
			projected *= 1 + g2
		}
		if projected <= 0 {
			return 0
		}
		pv += projected / math.Pow(1+r, float64(year))
	}
	terminal := projected * (1 + gTerm) / (r - gTerm)
	return pv + terminal/math.Pow(1+r, dcfYears)
}

func priceAtGrowth(s *models.Snapshot, g1, gTerm, r float64) float64 {
	ev := impliedEnterpriseValue(s.FCF, g1, g1*0.5, gTerm, r)
	equity := ev - s.NetDebt
	if equity <= 0 {
		return 0
	}
	return equity / s.SharesOutstanding
}
