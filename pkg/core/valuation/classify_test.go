package valuation

import (
	"testing"

	"valueinvest/pkg/models"
)

func TestClassifyCompanyType(t *testing.T) {
	tests := []struct {
		name     string
		snapshot models.Snapshot
		cagr     float64
		override CompanyType
		want     CompanyType
	}{
		{
			name:     "override wins over everything",
			snapshot: models.Snapshot{Ticker: "601398", DividendYield: 5}, // bank ticker
			cagr:     20,
			override: CompanyGrowth,
			want:     CompanyGrowth,
		},
		{
			name:     "utility ticker classifies as dividend",
			snapshot: models.Snapshot{Ticker: "600900"},
			want:     CompanyDividend,
		},
		{
			name:     "utility ticker beats bank yield and growth signals",
			snapshot: models.Snapshot{Ticker: "600900", DividendYield: 1},
			cagr:     25,
			want:     CompanyDividend,
		},
		{
			name:     "bank ticker classifies as bank",
			snapshot: models.Snapshot{Ticker: "600036"},
			want:     CompanyBank,
		},
		{
			name:     "bank ticker beats high dividend yield",
			snapshot: models.Snapshot{Ticker: "601288", DividendYield: 6},
			want:     CompanyBank,
		},
		{
			name:     "high dividend yield classifies as dividend",
			snapshot: models.Snapshot{Ticker: "000333", DividendYield: 4.2},
			cagr:     15,
			want:     CompanyDividend,
		},
		{
			name:     "yield exactly 3 is not a dividend payer",
			snapshot: models.Snapshot{Ticker: "000333", DividendYield: 3},
			want:     CompanyValue,
		},
		{
			name:     "high total return CAGR classifies as growth",
			snapshot: models.Snapshot{Ticker: "300750", DividendYield: 0.5},
			cagr:     18,
			want:     CompanyGrowth,
		},
		{
			name:     "CAGR exactly 10 is not growth",
			snapshot: models.Snapshot{Ticker: "300750"},
			cagr:     10,
			want:     CompanyValue,
		},
		{
			name:     "unremarkable company defaults to value",
			snapshot: models.Snapshot{Ticker: "601668", DividendYield: 2},
			cagr:     4,
			want:     CompanyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyCompanyType(&tt.snapshot, tt.cagr, tt.override)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
