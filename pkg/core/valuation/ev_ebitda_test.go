package valuation

import (
	"math"
	"testing"

	"valueinvest/pkg/models"
)

func TestEVEBITDABenchmarkMultiple(t *testing.T) {
	s := &models.Snapshot{
		EBIT:              100,
		Depreciation:      20,
		NetDebt:           200,
		SharesOutstanding: 100,
		CurrentPrice:      8,
	}

	res := EVEBITDA{}.Calculate(s)

	// EBITDA = 120, EV = 120*10 = 1200, equity = 1000, per share 10.00
	if math.Abs(res.FairValue-10.00) > 0.01 {
		t.Errorf("expected 10.00, got %f", res.FairValue)
	}
	if res.Verdict != VerdictUndervalued {
		t.Errorf("expected Undervalued, got %s", res.Verdict)
	}
	if res.Confidence != ConfidenceLow {
		t.Errorf("benchmark multiple without peers should be Low confidence, got %s", res.Confidence)
	}
	if res.FairValueRange == nil {
		t.Fatal("expected a fair value range")
	}
	// Band at 8x and 12x: (960-200)/100 and (1440-200)/100.
	if math.Abs(res.FairValueRange.Low-7.60) > 0.01 {
		t.Errorf("expected range low 7.60, got %f", res.FairValueRange.Low)
	}
	if math.Abs(res.FairValueRange.High-12.40) > 0.01 {
		t.Errorf("expected range high 12.40, got %f", res.FairValueRange.High)
	}
	if math.Abs(res.Components["ebitda"]-120) > 1e-9 {
		t.Errorf("expected EBITDA component 120, got %f", res.Components["ebitda"])
	}
}

func TestEVEBITDAPeerComps(t *testing.T) {
	s := &models.Snapshot{
		EBIT:              100,
		Depreciation:      20,
		NetDebt:           200,
		SharesOutstanding: 100,
		CurrentPrice:      11,
	}
	m := EVEBITDA{Peers: []PeerMultiple{
		{Name: "Peer A", EVEBITDA: 13},
		{Name: "Peer B", EVEBITDA: 9},
		{Name: "Peer C", EVEBITDA: 11},
	}}

	res := m.Calculate(s)

	// Sorted multiples 9, 11, 13: median 11, quartiles 10 and 12.
	// Fair = (120*11 - 200)/100 = 11.20
	if math.Abs(res.FairValue-11.20) > 0.01 {
		t.Errorf("expected 11.20, got %f", res.FairValue)
	}
	if res.Confidence != ConfidenceMedium {
		t.Errorf("three peers should lift confidence to Medium, got %s", res.Confidence)
	}
	if math.Abs(res.FairValueRange.Low-10.00) > 0.01 {
		t.Errorf("expected range low 10.00, got %f", res.FairValueRange.Low)
	}
	if math.Abs(res.FairValueRange.High-12.40) > 0.01 {
		t.Errorf("expected range high 12.40, got %f", res.FairValueRange.High)
	}
}

func TestEVEBITDAMarginFallback(t *testing.T) {
	s := &models.Snapshot{
		Revenue:           1000,
		OperatingMargin:   20,
		Depreciation:      50,
		SharesOutstanding: 100,
		CurrentPrice:      24,
	}

	res := EVEBITDA{}.Calculate(s)

	// EBIT approximated as 1000*20% = 200, EBITDA 250, fair 25.00
	if math.Abs(res.FairValue-25.00) > 0.01 {
		t.Errorf("expected 25.00, got %f", res.FairValue)
	}
	if res.Verdict != VerdictFair {
		t.Errorf("expected Fair, got %s", res.Verdict)
	}
}

func TestEVEBITDANetDebtExceedsEV(t *testing.T) {
	s := &models.Snapshot{
		EBIT:              50,
		NetDebt:           600,
		SharesOutstanding: 100,
		CurrentPrice:      5,
	}

	res := EVEBITDA{}.Calculate(s)

	if res.Verdict != VerdictNotApplicable {
		t.Errorf("expected Not-applicable, got %s", res.Verdict)
	}
	if res.Applicability != Limited {
		t.Errorf("expected Limited applicability, got %s", res.Applicability)
	}
	if res.FairValue != 0 {
		t.Errorf("expected zero fair value, got %f", res.FairValue)
	}
}

func TestEVEBITDANegativeEBITDA(t *testing.T) {
	s := &models.Snapshot{
		EBIT:              -80,
		Depreciation:      20,
		SharesOutstanding: 100,
		CurrentPrice:      5,
	}
	if (EVEBITDA{}).IsApplicable(s) {
		t.Error("negative EBITDA should not be applicable")
	}

	res := EVEBITDA{}.Calculate(s)
	if res.Verdict != VerdictNotApplicable {
		t.Errorf("expected Not-applicable, got %s", res.Verdict)
	}
}

func TestEVEBITDAMissingShares(t *testing.T) {
	s := &models.Snapshot{EBIT: 100, CurrentPrice: 5}

	res := EVEBITDA{}.Calculate(s)

	if res.Verdict != VerdictNotApplicable {
		t.Errorf("expected Not-applicable, got %s", res.Verdict)
	}
	if len(res.MissingFields) == 0 {
		t.Error("expected missing fields to be reported")
	}
}
