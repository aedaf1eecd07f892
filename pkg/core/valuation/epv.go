package valuation

import (
	"fmt"

	"valueinvest/pkg/models"
)

// EPV implements Greenwald earnings power value: normalized earnings
// capitalized at the cost of capital with zero growth assumed, adjusted
// for net debt.
type EPV struct {
	CostOfCapital float64 // percentage points, falls back to snapshot
}

func (EPV) Name() string { return "epv" }

func (e EPV) IsApplicable(s *models.Snapshot) bool {
	return s.EBIT > 0 && s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (e EPV) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"ebit", s.EBIT},
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"cost_of_capital", pick(e.CostOfCapital, s.CostOfCapital)},
	)
	if len(missing) > 0 {
		return notApplicableResult(e.Name(), s, missingReason(missing), missing)
	}
	if s.EBIT <= 0 {
		return notApplicableResult(e.Name(), s, "operating income must be positive for earnings power", []string{"ebit"})
	}

	coc := pick(e.CostOfCapital, s.CostOfCapital) / 100
	taxRate := s.TaxRate / 100
	if taxRate <= 0 || taxRate >= 1 {
		taxRate = 0.25
	}

	nopat := s.EBIT * (1 - taxRate)
	// Maintenance capex is approximated as 70% of total capex; half of
	// the depreciation tax shield is credited back.
	normalized := nopat - 0.7*s.Capex + 0.5*taxRate*s.Depreciation
	if normalized <= 0 {
		return notApplicableResult(e.Name(), s, "normalized earnings are not positive", nil)
	}

	epvOperations := normalized / coc
	equityValue := epvOperations - s.NetDebt
	fair := equityValue / s.SharesOutstanding

	analysis := []string{
		fmt.Sprintf("Earnings power assumes zero growth at %.1f%% cost of capital", coc*100),
		fmt.Sprintf("Normalized earnings %.0f from NOPAT %.0f less maintenance capex", normalized, nopat),
	}
	if fair < s.CurrentPrice {
		analysis = append(analysis, "Price above EPV implies the market is paying for growth")
	}

	return Result{
		Method:          e.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"cost_of_capital": coc * 100,
			"tax_rate":        taxRate * 100,
		},
		Components: map[string]float64{
			"nopat":               nopat,
			"normalized_earnings": normalized,
			"epv_operations":      epvOperations,
			"equity_value":        equityValue,
		},
		Analysis:       analysis,
		Confidence:     ConfidenceMedium,
		FairValueRange: &Range{Low: round2((normalized/(coc+0.01) - s.NetDebt) / s.SharesOutstanding), Base: round2(fair), High: round2((normalized/(coc-0.01) - s.NetDebt) / s.SharesOutstanding)},
		Applicability:  Applicable,
	}
}

// OwnerEarnings applies Buffett's owner-earnings definition, operating
// cash flow less maintenance capex, capitalized like a bond coupon at
// the discount rate less growth.
type OwnerEarnings struct {
	MaintenanceCapexRatio float64 // share of capex treated as maintenance, default 0.7
}

func (OwnerEarnings) Name() string { return "owner_earnings" }

func (o OwnerEarnings) IsApplicable(s *models.Snapshot) bool {
	return s.OperatingCashFlow > 0 && s.SharesOutstanding > 0 && s.CurrentPrice > 0
}

func (o OwnerEarnings) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"operating_cash_flow", s.OperatingCashFlow},
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"discount_rate", s.DiscountRate},
	)
	if len(missing) > 0 {
		return notApplicableResult(o.Name(), s, missingReason(missing), missing)
	}

	ratio := o.MaintenanceCapexRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 0.7
	}

	ownerEarnings := s.OperatingCashFlow - ratio*s.Capex
	if ownerEarnings <= 0 {
		return notApplicableResult(o.Name(), s, "owner earnings are not positive", nil)
	}

	r := s.DiscountRate / 100
	g := s.TerminalGrowth / 100
	if r <= g {
		return notApplicableResult(o.Name(), s, "discount rate must exceed terminal growth", nil)
	}

	perShare := ownerEarnings / s.SharesOutstanding
	fair := perShare * (1 + g) / (r - g)

	yield := 0.0
	if s.CurrentPrice > 0 {
		yield = perShare / s.CurrentPrice * 100
	}

	analysis := []string{
		fmt.Sprintf("Owner earnings %.0f after %.0f%% of capex treated as maintenance", ownerEarnings, ratio*100),
		fmt.Sprintf("Owner earnings yield at current price is %.1f%%", yield),
	}
	if yield >= 10 {
		analysis = append(analysis, "Double-digit owner earnings yield, historically attractive")
	}

	return Result{
		Method:          o.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: round1(premiumDiscount(fair, s.CurrentPrice)),
		Verdict:         assess(fair, s.CurrentPrice),
		Details: map[string]interface{}{
			"maintenance_capex_ratio":    ratio,
			"owner_earnings_per_share":   round2(perShare),
			"owner_earnings_yield":       round1(yield),
			"capitalization_rate_spread": (r - g) * 100,
		},
		Components: map[string]float64{
			"owner_earnings": ownerEarnings,
		},
		Analysis:      analysis,
		Confidence:    ConfidenceMedium,
		Applicability: Applicable,
	}
}
