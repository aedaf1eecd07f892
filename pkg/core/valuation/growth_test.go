package valuation

import (
	"math"
	"testing"

	"valueinvest/pkg/models"
)

func TestPEG(t *testing.T) {
	s := &models.Snapshot{
		EPS:          5,
		CurrentPrice: 60,
		GrowthRate:   15,
	}

	res := PEG{}.Calculate(s)

	// P/E 12, PEG 0.8, fair P/E = 15 at PEG 1 => fair 75
	if math.Abs(res.FairValue-75.0) > 1e-6 {
		t.Errorf("expected 75, got %f", res.FairValue)
	}
	peg, _ := res.Details["peg_ratio"].(float64)
	if math.Abs(peg-0.8) > 1e-6 {
		t.Errorf("expected PEG 0.8, got %f", peg)
	}
	if res.Verdict != VerdictUndervalued {
		t.Errorf("expected Undervalued at 60 vs 75, got %s", res.Verdict)
	}
}

func TestPEGLimitedOutsideGrowthBand(t *testing.T) {
	s := &models.Snapshot{EPS: 5, CurrentPrice: 60, GrowthRate: 60}
	res := PEG{}.Calculate(s)
	if res.Applicability != Limited {
		t.Errorf("growth above 50%% should be Limited, got %s", res.Applicability)
	}

	s.GrowthRate = -3
	res = PEG{}.Calculate(s)
	if res.Verdict != VerdictNotApplicable {
		t.Errorf("negative growth must be Not-applicable, got %s", res.Verdict)
	}
}

func TestGARP(t *testing.T) {
	s := &models.Snapshot{
		EPS:          5,
		CurrentPrice: 70,
		GrowthRate:   10,
	}

	res := GARP{}.Calculate(s)

	// EPS 5 * 1.1^5 * 18 / 1.12^5 = 82.25
	if math.Abs(res.FairValue-82.25) > 0.01 {
		t.Errorf("expected 82.25, got %f", res.FairValue)
	}
	if res.Verdict != VerdictUndervalued {
		t.Errorf("expected Undervalued at 70 vs 82.25, got %s", res.Verdict)
	}
}

func TestRuleOf40(t *testing.T) {
	cases := []struct {
		growth, margin float64
		passes         bool
	}{
		{30, 15, true},  // 45
		{25, 15, true},  // exactly 40
		{10, 20, false}, // 30
		{50, -15, false},
	}
	for _, tc := range cases {
		s := &models.Snapshot{
			Revenue:         1000,
			CurrentPrice:    50,
			GrowthRate:      tc.growth,
			OperatingMargin: tc.margin,
		}
		res := RuleOf40{}.Calculate(s)
		passes, _ := res.Details["passes"].(bool)
		if passes != tc.passes {
			t.Errorf("growth %.0f + margin %.0f: expected passes=%v", tc.growth, tc.margin, tc.passes)
		}
		if res.Verdict != VerdictPricedIn {
			t.Errorf("Rule of 40 is a screen, expected Priced-in, got %s", res.Verdict)
		}
		if res.FairValue != s.CurrentPrice {
			t.Errorf("screen should echo the current price, got %f", res.FairValue)
		}
	}
}
