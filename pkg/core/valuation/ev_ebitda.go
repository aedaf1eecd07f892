package valuation

import (
	"fmt"
	"sort"

	"valueinvest/pkg/models"
)

// PeerMultiple is one comparable company's trading multiple.
type PeerMultiple struct {
	Name     string  `json:"name"`
	EVEBITDA float64 `json:"ev_ebitda"`
}

// EVEBITDA values the company off an enterprise-value multiple of
// EBITDA. With peers it uses the comps median and the 25th-75th
// percentile band; without peers it falls back to a flat benchmark
// multiple. EBITDA is approximated as EBIT plus depreciation.
type EVEBITDA struct {
	Multiple float64 // benchmark when no peers, default 10
	Peers    []PeerMultiple
}

const defaultEVEBITDAMultiple = 10.0

func (EVEBITDA) Name() string { return "ev_ebitda" }

func (EVEBITDA) IsApplicable(s *models.Snapshot) bool {
	return s.SharesOutstanding > 0 && ebitda(s) > 0
}

func ebitda(s *models.Snapshot) float64 {
	e := s.EBIT
	if e == 0 && s.OperatingMargin > 0 && s.Revenue > 0 {
		e = s.Revenue * s.OperatingMargin / 100
	}
	return e + s.Depreciation
}

func (m EVEBITDA) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"shares_outstanding", s.SharesOutstanding},
		fieldReq{"ebit or operating_margin", ebitda(s)},
	)
	if len(missing) > 0 {
		return notApplicableResult(m.Name(), s, missingReason(missing), missing)
	}

	ebitdaVal := ebitda(s)
	if ebitdaVal <= 0 {
		return notApplicableResult(m.Name(), s, "EBITDA is not positive", nil)
	}
	base, low, high := m.multiples()

	perShare := func(multiple float64) float64 {
		equity := ebitdaVal*multiple - s.NetDebt
		if equity < 0 {
			return 0
		}
		return equity / s.SharesOutstanding
	}

	fair := perShare(base)
	analysis := []string{
		fmt.Sprintf("EBITDA %.0f (EBIT plus depreciation)", ebitdaVal),
		fmt.Sprintf("applied EV/EBITDA multiple %.1fx", base),
	}
	if len(m.Peers) > 0 {
		analysis = append(analysis, fmt.Sprintf("multiple from %d peers, band %.1fx to %.1fx", len(m.Peers), low, high))
	}

	if fair <= 0 {
		return Result{
			Method:        m.Name(),
			CurrentPrice:  s.CurrentPrice,
			Verdict:       VerdictNotApplicable,
			Applicability: Limited,
			Confidence:    ConfidenceNA,
			Analysis:      append(analysis, "net debt exceeds implied enterprise value"),
		}
	}

	confidence := ConfidenceLow
	if len(m.Peers) >= 3 {
		confidence = ConfidenceMedium
	}

	return Result{
		Method:          m.Name(),
		FairValue:       round2(fair),
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: premiumDiscount(fair, s.CurrentPrice),
		Verdict:         assess(fair, s.CurrentPrice),
		Applicability:   Applicable,
		Confidence:      confidence,
		FairValueRange: &Range{
			Low:  round2(perShare(low)),
			Base: round2(fair),
			High: round2(perShare(high)),
		},
		Components: map[string]float64{
			"ebitda":           round2(ebitdaVal),
			"multiple":         base,
			"enterprise_value": round2(ebitdaVal * base),
			"net_debt":         s.NetDebt,
		},
		Analysis: analysis,
	}
}

// multiples resolves base, low and high multiples from peers or the
// benchmark. Peer band is the 25th-75th percentile, base the median.
func (m EVEBITDA) multiples() (base, low, high float64) {
	var mults []float64
	for _, p := range m.Peers {
		if p.EVEBITDA > 0 {
			mults = append(mults, p.EVEBITDA)
		}
	}
	if len(mults) == 0 {
		base = pick(m.Multiple, defaultEVEBITDAMultiple)
		return base, base * 0.8, base * 1.2
	}
	sort.Float64s(mults)
	return median(mults), quantile(mults, 0.25), quantile(mults, 0.75)
}
