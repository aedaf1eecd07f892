package valuation

import "valueinvest/pkg/models"

// CompanyType is the archetype driving method selection.
type CompanyType string

const (
	CompanyDividend CompanyType = "dividend"
	CompanyBank     CompanyType = "bank"
	CompanyGrowth   CompanyType = "growth"
	CompanyValue    CompanyType = "value"
)

// Known A-share utilities that behave like bond proxies.
var utilityTickers = map[string]bool{
	"600900": true, "601985": true, "600011": true, "600795": true,
	"600886": true, "000539": true, "000543": true, "000600": true,
	"001896": true,
}

// Known A-share banks.
var bankTickers = map[string]bool{
	"601398": true, "601288": true, "600036": true, "601166": true,
	"600000": true, "601988": true, "600016": true, "601818": true,
	"600015": true, "601998": true, "002142": true, "600919": true,
	"601229": true, "600908": true, "601838": true,
}

// ClassifyCompanyType assigns an archetype with an ordered priority
// chain: explicit override, known ticker sets, dividend yield, then
// long-window total-return CAGR (percentage points). Anything
// unresolved defaults to value.
func ClassifyCompanyType(s *models.Snapshot, totalReturnCAGR float64, override CompanyType) CompanyType {
	if override != "" {
		return override
	}
	if utilityTickers[s.Ticker] {
		return CompanyDividend
	}
	if bankTickers[s.Ticker] {
		return CompanyBank
	}
	if s.DividendYield > 3 {
		return CompanyDividend
	}
	if totalReturnCAGR > 10 {
		return CompanyGrowth
	}
	return CompanyValue
}
