package models

import (
	"math"
	"testing"
)

func TestSnapshotDerivedRatios(t *testing.T) {
	s := &Snapshot{
		CurrentPrice:       50,
		SharesOutstanding:  100,
		EPS:                5,
		BVPS:               25,
		Revenue:            2000,
		NetIncome:          500,
		FCF:                400,
		TotalAssets:        5000,
		TotalLiabilities:   2000,
		CurrentAssets:      1500,
		CurrentLiabilities: 500,
		NetDebt:            300,
		DividendPerShare:   2,
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"PERatio", s.PERatio(), 10},
		{"PBRatio", s.PBRatio(), 2},
		{"MarketCap", s.MarketCap(), 5000},
		{"EnterpriseValue", s.EnterpriseValue(), 5300},
		{"PayoutRatio", s.PayoutRatio(), 40},
		{"FCFPerShare", s.FCFPerShare(), 4},
		{"ROA", s.ROA(), 10},
		{"DebtRatio", s.DebtRatio(), 0.4},
		{"CurrentRatio", s.CurrentRatio(), 3},
		{"AssetTurnover", s.AssetTurnover(), 0.4},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s: got %f, want %f", c.name, c.got, c.want)
		}
	}
}

func TestSnapshotZeroDenominators(t *testing.T) {
	s := &Snapshot{CurrentPrice: 50, FCF: 100, DividendPerShare: 1}

	checks := []struct {
		name string
		got  float64
	}{
		{"PERatio", s.PERatio()},
		{"PBRatio", s.PBRatio()},
		{"PayoutRatio", s.PayoutRatio()},
		{"FCFPerShare", s.FCFPerShare()},
		{"ROA", s.ROA()},
		{"DebtRatio", s.DebtRatio()},
		{"CurrentRatio", s.CurrentRatio()},
		{"AssetTurnover", s.AssetTurnover()},
	}
	for _, c := range checks {
		if c.got != 0 {
			t.Errorf("%s on empty snapshot: got %f, want 0", c.name, c.got)
		}
	}
}

func TestSnapshotNegativeEPSGuards(t *testing.T) {
	s := &Snapshot{CurrentPrice: 50, EPS: -2, DividendPerShare: 1}
	if s.PERatio() != 0 {
		t.Errorf("PERatio with negative EPS: got %f, want 0", s.PERatio())
	}
	if s.PayoutRatio() != 0 {
		t.Errorf("PayoutRatio with negative EPS: got %f, want 0", s.PayoutRatio())
	}
}
