// Package models defines the normalized data entities shared by the
// valuation engine and its collaborators.
package models

// Snapshot is the normalized bundle of one company's fundamentals for a
// single analysis run. It is constructed once by a data-fetching
// collaborator and treated as read-only afterwards: no valuation method
// mutates it.
//
// Unit conventions:
//   - Monetary aggregates (Revenue, NetIncome, FCF, balance-sheet items)
//     share one currency per snapshot, in absolute units (not per share).
//   - Per-share fields (EPS, BVPS, DividendPerShare, CurrentPrice) are in
//     the same currency.
//   - Rate fields (GrowthRate, OperatingMargin, ROE, DiscountRate, ...)
//     are percentage points: 5.0 means 5%.
//
// A zero value means the field is absent. Methods must degrade or mark
// themselves not applicable instead of dividing by a zero field.
type Snapshot struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`

	CurrentPrice      float64 `json:"current_price"`
	SharesOutstanding float64 `json:"shares_outstanding"`

	// Income statement and cash flow
	EPS               float64 `json:"eps"`
	BVPS              float64 `json:"bvps"`
	Revenue           float64 `json:"revenue"`
	NetIncome         float64 `json:"net_income"`
	FCF               float64 `json:"fcf"`
	OperatingCashFlow float64 `json:"operating_cash_flow"`
	EBIT              float64 `json:"ebit"`
	Depreciation      float64 `json:"depreciation"`
	Capex             float64 `json:"capex"`

	// Balance sheet
	CurrentAssets      float64 `json:"current_assets"`
	CurrentLiabilities float64 `json:"current_liabilities"`
	TotalAssets        float64 `json:"total_assets"`
	TotalLiabilities   float64 `json:"total_liabilities"`
	NetDebt            float64 `json:"net_debt"`
	NetWorkingCapital  float64 `json:"net_working_capital"`
	NetFixedAssets     float64 `json:"net_fixed_assets"`
	RetainedEarnings   float64 `json:"retained_earnings"`

	// Ratios and rates (percentage points)
	OperatingMargin float64 `json:"operating_margin"`
	GrossMargin     float64 `json:"gross_margin"`
	TaxRate         float64 `json:"tax_rate"`
	ROE             float64 `json:"roe"`
	GrowthRate      float64 `json:"growth_rate"`

	// Dividends
	DividendPerShare   float64 `json:"dividend_per_share"`
	DividendYield      float64 `json:"dividend_yield"`
	DividendGrowthRate float64 `json:"dividend_growth_rate"`

	// Valuation parameters (set from config or per company type)
	AAACorporateYield float64 `json:"aaa_corporate_yield"`
	CostOfCapital     float64 `json:"cost_of_capital"`
	DiscountRate      float64 `json:"discount_rate"`
	TerminalGrowth    float64 `json:"terminal_growth"`
	GrowthRate1to5    float64 `json:"growth_rate_1_5"`
	GrowthRate6to10   float64 `json:"growth_rate_6_10"`

	// Prior-year counterparts for trend scoring (Piotroski F-Score).
	// Each field uses the unit of the accessor or field it is compared
	// against: PriorROA and PriorGrossMargin are percentage points,
	// PriorDebtRatio, PriorCurrentRatio and PriorAssetTurnover plain
	// ratios.
	PriorROA               float64 `json:"prior_roa"`
	PriorDebtRatio         float64 `json:"prior_debt_ratio"`
	PriorCurrentRatio      float64 `json:"prior_current_ratio"`
	PriorSharesOutstanding float64 `json:"prior_shares_outstanding"`
	PriorGrossMargin       float64 `json:"prior_gross_margin"`
	PriorAssetTurnover     float64 `json:"prior_asset_turnover"`

	Sectors  []string `json:"sectors,omitempty"`
	Exchange string   `json:"exchange,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// PERatio returns price over earnings, or 0 when EPS is not positive.
func (s *Snapshot) PERatio() float64 {
	if s.EPS <= 0 {
		return 0
	}
	return s.CurrentPrice / s.EPS
}

// PBRatio returns price over book value, or 0 when BVPS is not positive.
func (s *Snapshot) PBRatio() float64 {
	if s.BVPS <= 0 {
		return 0
	}
	return s.CurrentPrice / s.BVPS
}

// MarketCap is price times shares outstanding.
func (s *Snapshot) MarketCap() float64 {
	return s.CurrentPrice * s.SharesOutstanding
}

// EnterpriseValue is market cap plus net debt.
func (s *Snapshot) EnterpriseValue() float64 {
	return s.MarketCap() + s.NetDebt
}

// PayoutRatio returns dividend over EPS in percent, or 0 when EPS is not positive.
func (s *Snapshot) PayoutRatio() float64 {
	if s.EPS <= 0 {
		return 0
	}
	return s.DividendPerShare / s.EPS * 100
}

// FCFPerShare returns free cash flow per share, or 0 without a share count.
func (s *Snapshot) FCFPerShare() float64 {
	if s.SharesOutstanding <= 0 {
		return 0
	}
	return s.FCF / s.SharesOutstanding
}

// ROA returns net income over total assets in percent, or 0 without assets.
func (s *Snapshot) ROA() float64 {
	if s.TotalAssets <= 0 {
		return 0
	}
	return s.NetIncome / s.TotalAssets * 100
}

// DebtRatio returns total liabilities over total assets, or 0 without assets.
func (s *Snapshot) DebtRatio() float64 {
	if s.TotalAssets <= 0 {
		return 0
	}
	return s.TotalLiabilities / s.TotalAssets
}

// CurrentRatio returns current assets over current liabilities, or 0
// without current liabilities.
func (s *Snapshot) CurrentRatio() float64 {
	if s.CurrentLiabilities <= 0 {
		return 0
	}
	return s.CurrentAssets / s.CurrentLiabilities
}

// AssetTurnover returns revenue over total assets, or 0 without assets.
func (s *Snapshot) AssetTurnover() float64 {
	if s.TotalAssets <= 0 {
		return 0
	}
	return s.Revenue / s.TotalAssets
}
