package valuation

import (
	"fmt"
	"strings"

	"valueinvest/pkg/models"
)

// TrapRiskLevel classifies the overall value-trap risk.
type TrapRiskLevel string

const (
	TrapRiskLow      TrapRiskLevel = "LOW"
	TrapRiskModerate TrapRiskLevel = "MODERATE"
	TrapRiskHigh     TrapRiskLevel = "HIGH"
	TrapRiskCritical TrapRiskLevel = "CRITICAL"
)

// TrapIndicator is a single scored warning signal.
type TrapIndicator struct {
	Category    string  `json:"category"`
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	RiskScore   float64 `json:"risk_score"`
	Description string  `json:"description"`
	IsWarning   bool    `json:"is_warning"`
	IsCritical  bool    `json:"is_critical"`
}

// ValueTrapReport is the detailed detector output behind the Result.
type ValueTrapReport struct {
	Ticker                     string          `json:"ticker"`
	OverallRisk                TrapRiskLevel   `json:"overall_risk"`
	TrapScore                  float64         `json:"trap_score"`
	FinancialHealthScore       float64         `json:"financial_health_score"`
	BusinessDeteriorationScore float64         `json:"business_deterioration_score"`
	MoatErosionScore           float64         `json:"moat_erosion_score"`
	AIVulnerabilityScore       float64         `json:"ai_vulnerability_score"`
	DividendSignalScore        float64         `json:"dividend_signal_score"`
	Indicators                 []TrapIndicator `json:"indicators"`
	Warnings                   []string        `json:"warnings"`
	CriticalIssues             []string        `json:"critical_issues"`
	Recommendation             string          `json:"recommendation"`
}

// IsTrap reports whether the risk level marks a likely value trap.
func (r *ValueTrapReport) IsTrap() bool {
	return r.OverallRisk == TrapRiskHigh || r.OverallRisk == TrapRiskCritical
}

// ShouldAvoid reports whether the stock should be avoided outright.
func (r *ValueTrapReport) ShouldAvoid() bool {
	return r.OverallRisk == TrapRiskCritical
}

// Trends carries externally supplied multi-year trend context. Pointer
// fields are optional; nil means unknown. Trend strings are one of
// "expanding"/"stable"/"compressing" for margins, "improving"/"stable"/
// "declining" for ROE, "growing"/"stable"/"declining" for market share.
type Trends struct {
	RevenueCAGR3Y    *float64
	RevenueCAGR5Y    *float64
	MarginTrend      string
	ROETrend         string
	MarketShareTrend string
}

// aiVulnerableIndustries maps normalized industry labels to a 0-1
// disruption vulnerability.
var aiVulnerableIndustries = []struct {
	pattern string
	vuln    float64
}{
	{"online_education", 0.95},
	{"homework_help", 0.95},
	{"education", 0.9},
	{"edtech", 0.9},
	{"tutoring", 0.85},
	{"content_writing", 0.85},
	{"translation", 0.8},
	{"data_entry", 0.8},
	{"customer_service", 0.75},
	{"legal_services", 0.7},
	{"accounting", 0.65},
	{"saas", 0.65},
	{"software", 0.6},
	{"market_research", 0.6},
	{"advertising", 0.55},
	{"consulting", 0.5},
	{"healthcare", 0.2},
	{"pharmaceuticals", 0.15},
	{"consumer_staples", 0.15},
	{"real_estate", 0.15},
	{"utilities", 0.1},
	{"food_beverage", 0.1},
	{"infrastructure", 0.1},
}

// ValueTrapDetector scores a stock 0-100 across five weighted
// deterioration categories to flag businesses that look cheap but are
// in decline.
type ValueTrapDetector struct {
	Trends                   Trends
	Industry                 string
	AIVulnerabilityOverride  *float64 // 0-1, bypasses the industry map
	LowROEThreshold          float64  // percentage points, default 8
	HighPayoutThreshold      float64  // percentage points, default 80
	ConsecutiveNegativeYears int
}

func (ValueTrapDetector) Name() string { return "value_trap" }

func (ValueTrapDetector) IsApplicable(s *models.Snapshot) bool {
	return s.CurrentPrice > 0 && s.TotalAssets > 0
}

func (d ValueTrapDetector) Calculate(s *models.Snapshot) Result {
	missing := requireFields(
		fieldReq{"current_price", s.CurrentPrice},
		fieldReq{"total_assets", s.TotalAssets},
	)
	if len(missing) > 0 {
		return notApplicableResult(d.Name(), s, missingReason(missing), missing)
	}

	report := d.Detect(s)

	analysis := []string{
		fmt.Sprintf("Trap score %.0f/100 (%s)", report.TrapScore, report.OverallRisk),
		fmt.Sprintf("Financial health %.0f, business %.0f, moat %.0f, AI %.0f, dividend %.0f",
			report.FinancialHealthScore, report.BusinessDeteriorationScore,
			report.MoatErosionScore, report.AIVulnerabilityScore, report.DividendSignalScore),
		report.Recommendation,
	}
	analysis = append(analysis, report.CriticalIssues...)

	confidence := ConfidenceMedium
	if report.TrapScore > 70 || report.TrapScore < 30 {
		confidence = ConfidenceHigh
	}

	return Result{
		Method:          d.Name(),
		FairValue:       s.CurrentPrice,
		CurrentPrice:    s.CurrentPrice,
		PremiumDiscount: 0,
		Verdict:         VerdictPricedIn,
		Details: map[string]interface{}{
			"trap_score":      report.TrapScore,
			"overall_risk":    string(report.OverallRisk),
			"is_trap":         report.IsTrap(),
			"should_avoid":    report.ShouldAvoid(),
			"warnings":        report.Warnings,
			"critical_issues": report.CriticalIssues,
		},
		Components: map[string]float64{
			"financial_health":       report.FinancialHealthScore,
			"business_deterioration": report.BusinessDeteriorationScore,
			"moat_erosion":           report.MoatErosionScore,
			"ai_vulnerability":       report.AIVulnerabilityScore,
			"dividend_signal":        report.DividendSignalScore,
		},
		Analysis:      analysis,
		Confidence:    confidence,
		Applicability: Applicable,
	}
}

// Detect runs the full five-category analysis and returns the detailed
// report.
func (d ValueTrapDetector) Detect(s *models.Snapshot) *ValueTrapReport {
	var indicators []TrapIndicator

	financialScore, inds := d.checkFinancialHealth(s)
	indicators = append(indicators, inds...)

	bizScore, inds := d.checkBusinessDeterioration(s)
	indicators = append(indicators, inds...)

	moatScore, inds := d.checkMoatErosion(s)
	indicators = append(indicators, inds...)

	aiScore, inds := d.checkAIVulnerability(s)
	indicators = append(indicators, inds...)

	divScore, inds := d.checkDividendSignal(s)
	indicators = append(indicators, inds...)

	var warnings, critical []string
	for _, ind := range indicators {
		switch {
		case ind.IsCritical:
			critical = append(critical, fmt.Sprintf("%s: %s", ind.Name, ind.Description))
		case ind.IsWarning:
			warnings = append(warnings, fmt.Sprintf("%s: %s", ind.Name, ind.Description))
		}
	}

	wFinancial, wBusiness, wMoat, wAI, wDividend := 0.30, 0.25, 0.20, 0.15, 0.10
	if s.DividendYield <= 0 {
		// Redistribute the dividend weight when none is paid.
		wDividend = 0
		wFinancial += 0.05
		wBusiness += 0.05
	}

	trapScore := financialScore*wFinancial + bizScore*wBusiness +
		moatScore*wMoat + aiScore*wAI + divScore*wDividend

	var risk TrapRiskLevel
	switch {
	case trapScore >= 75:
		risk = TrapRiskCritical
	case trapScore >= 55:
		risk = TrapRiskHigh
	case trapScore >= 35:
		risk = TrapRiskModerate
	default:
		risk = TrapRiskLow
	}

	return &ValueTrapReport{
		Ticker:                     s.Ticker,
		OverallRisk:                risk,
		TrapScore:                  round1(trapScore),
		FinancialHealthScore:       round1(financialScore),
		BusinessDeteriorationScore: round1(bizScore),
		MoatErosionScore:           round1(moatScore),
		AIVulnerabilityScore:       round1(aiScore),
		DividendSignalScore:        round1(divScore),
		Indicators:                 indicators,
		Warnings:                   warnings,
		CriticalIssues:             critical,
		Recommendation:             trapRecommendation(risk),
	}
}

func trapRecommendation(risk TrapRiskLevel) string {
	switch risk {
	case TrapRiskCritical:
		return "AVOID: multiple critical risk factors, this appears to be a value trap"
	case TrapRiskHigh:
		return "HIGH RISK: only invest with deep understanding of the turnaround case"
	case TrapRiskModerate:
		return "CAUTION: some warning signs, investigate thoroughly before investing"
	default:
		return "LOW RISK: no major value trap indicators, proceed with standard due diligence"
	}
}

func (d ValueTrapDetector) checkFinancialHealth(s *models.Snapshot) (float64, []TrapIndicator) {
	var indicators []TrapIndicator

	if s.TotalAssets <= 0 {
		return 50, []TrapIndicator{{
			Category:    "financial_health",
			Name:        "Total Assets",
			RiskScore:   50,
			Description: "missing asset data",
			IsWarning:   true,
		}}
	}

	totalLiabilities := s.TotalLiabilities
	if totalLiabilities <= 0 {
		totalLiabilities = s.TotalAssets * 0.5
	}

	nwc := s.NetWorkingCapital
	if nwc == 0 && s.CurrentAssets > 0 {
		nwc = s.CurrentAssets - s.CurrentLiabilities
	}
	retained := s.RetainedEarnings
	if retained == 0 {
		retained = (s.TotalAssets - totalLiabilities) * 0.3
	}
	ebit := s.EBIT
	if ebit == 0 && s.OperatingMargin > 0 && s.Revenue > 0 {
		ebit = s.Revenue * s.OperatingMargin / 100
	}

	x1 := nwc / s.TotalAssets
	x2 := retained / s.TotalAssets
	x3 := ebit / s.TotalAssets
	x4 := s.MarketCap() / totalLiabilities
	x5 := s.Revenue / s.TotalAssets
	z := 1.2*x1 + 1.4*x2 + 3.3*x3 + 0.6*x4 + 1.0*x5

	var zRisk float64
	var zDesc string
	var zCritical bool
	switch {
	case z < altmanDistressCutoff:
		zRisk = 95
		zDesc = fmt.Sprintf("Z-Score %.2f in distress zone (<%.1f)", z, altmanDistressCutoff)
		zCritical = true
	case z <= altmanSafeCutoff:
		zRisk = 50
		zDesc = fmt.Sprintf("Z-Score %.2f in grey zone", z)
	default:
		zRisk = 10
		zDesc = fmt.Sprintf("Z-Score %.2f in safe zone (>%.1f)", z, altmanSafeCutoff)
	}
	indicators = append(indicators, TrapIndicator{
		Category:    "financial_health",
		Name:        "Altman Z-Score",
		Value:       z,
		RiskScore:   zRisk,
		Description: zDesc,
		IsWarning:   zRisk >= 50,
		IsCritical:  zCritical,
	})
	score := zRisk

	if s.NetIncome < 0 {
		indicators = append(indicators, TrapIndicator{
			Category:    "financial_health",
			Name:        "Negative Earnings",
			Value:       s.NetIncome,
			RiskScore:   85,
			Description: "net income is negative",
			IsCritical:  true,
		})
		if score < 85 {
			score = 85
		}
	} else if d.ConsecutiveNegativeYears > 0 {
		indicators = append(indicators, TrapIndicator{
			Category:    "financial_health",
			Name:        "Earnings History",
			Value:       float64(d.ConsecutiveNegativeYears),
			RiskScore:   60 + float64(d.ConsecutiveNegativeYears)*10,
			Description: fmt.Sprintf("%d consecutive years of losses", d.ConsecutiveNegativeYears),
			IsWarning:   true,
			IsCritical:  d.ConsecutiveNegativeYears >= 2,
		})
	}

	return score, indicators
}

func (d ValueTrapDetector) checkBusinessDeterioration(s *models.Snapshot) (float64, []TrapIndicator) {
	var indicators []TrapIndicator
	var scores []float64

	switch {
	case d.Trends.RevenueCAGR5Y != nil:
		cagr := *d.Trends.RevenueCAGR5Y
		var risk float64
		var desc string
		var critical bool
		switch {
		case cagr < -5:
			risk, desc, critical = 90, fmt.Sprintf("5Y revenue CAGR %.1f%% (severe decline)", cagr), true
		case cagr < 0:
			risk, desc = 70, fmt.Sprintf("5Y revenue CAGR %.1f%% (declining)", cagr)
		case cagr < 3:
			risk, desc = 40, fmt.Sprintf("5Y revenue CAGR %.1f%% (stagnant)", cagr)
		default:
			risk, desc = 10, fmt.Sprintf("5Y revenue CAGR %.1f%% (healthy)", cagr)
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "business_deterioration",
			Name:        "Revenue Trend (5Y)",
			Value:       cagr,
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 40,
			IsCritical:  critical,
		})
		scores = append(scores, risk)
	case d.Trends.RevenueCAGR3Y != nil:
		cagr := *d.Trends.RevenueCAGR3Y
		risk, desc := 20.0, fmt.Sprintf("3Y revenue CAGR %.1f%%", cagr)
		if cagr < -3 {
			risk, desc = 80, fmt.Sprintf("3Y revenue CAGR %.1f%% (declining)", cagr)
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "business_deterioration",
			Name:        "Revenue Trend (3Y)",
			Value:       cagr,
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 50,
		})
		scores = append(scores, risk)
	}

	if d.Trends.MarginTrend != "" {
		var risk float64
		var desc string
		switch d.Trends.MarginTrend {
		case "compressing":
			risk, desc = 75, "gross margins are compressing"
		case "stable":
			risk, desc = 25, "gross margins are stable"
		default:
			risk, desc = 10, "gross margins are expanding"
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "business_deterioration",
			Name:        "Margin Trend",
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 50,
			IsCritical:  risk >= 70,
		})
		scores = append(scores, risk)
	}

	if s.OperatingMargin > 0 {
		var risk float64
		var desc string
		switch {
		case s.OperatingMargin < 5:
			risk, desc = 70, fmt.Sprintf("low operating margin %.1f%%", s.OperatingMargin)
		case s.OperatingMargin < 10:
			risk, desc = 40, fmt.Sprintf("moderate operating margin %.1f%%", s.OperatingMargin)
		default:
			risk, desc = 15, fmt.Sprintf("healthy operating margin %.1f%%", s.OperatingMargin)
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "business_deterioration",
			Name:        "Operating Margin",
			Value:       s.OperatingMargin,
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 50,
		})
		scores = append(scores, risk)
	}

	if s.FCF < 0 {
		indicators = append(indicators, TrapIndicator{
			Category:    "business_deterioration",
			Name:        "Free Cash Flow",
			Value:       s.FCF,
			RiskScore:   75,
			Description: "negative free cash flow",
			IsWarning:   true,
			IsCritical:  true,
		})
		scores = append(scores, 75)
	}

	return average(scores, 30), indicators
}

func (d ValueTrapDetector) checkMoatErosion(s *models.Snapshot) (float64, []TrapIndicator) {
	var indicators []TrapIndicator
	var scores []float64

	lowROE := d.LowROEThreshold
	if lowROE <= 0 {
		lowROE = 8.0
	}

	if s.ROE > 0 {
		var risk float64
		var desc string
		var warning bool
		switch {
		case s.ROE < lowROE:
			risk, desc, warning = 70, fmt.Sprintf("low ROE %.1f%% (below %.0f%%)", s.ROE, lowROE), true
		case s.ROE < 15:
			risk, desc = 40, fmt.Sprintf("moderate ROE %.1f%%", s.ROE)
		default:
			risk, desc = 15, fmt.Sprintf("strong ROE %.1f%%", s.ROE)
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "moat_erosion",
			Name:        "ROE Level",
			Value:       s.ROE,
			RiskScore:   risk,
			Description: desc,
			IsWarning:   warning,
		})
		scores = append(scores, risk)
	}

	if d.Trends.ROETrend != "" {
		var risk float64
		var desc string
		var critical bool
		switch d.Trends.ROETrend {
		case "declining":
			risk, desc, critical = 80, "ROE is declining over time", true
		case "stable":
			risk, desc = 30, "ROE is stable"
		default:
			risk, desc = 10, "ROE is improving"
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "moat_erosion",
			Name:        "ROE Trend",
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 50,
			IsCritical:  critical,
		})
		scores = append(scores, risk)
	}

	if d.Trends.MarketShareTrend != "" {
		var risk float64
		var desc string
		switch d.Trends.MarketShareTrend {
		case "declining":
			risk, desc = 85, "market share is declining"
		case "stable":
			risk, desc = 30, "market share is stable"
		default:
			risk, desc = 10, "market share is growing"
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "moat_erosion",
			Name:        "Market Share",
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 50,
			IsCritical:  risk >= 80,
		})
		scores = append(scores, risk)
	}

	// Low P/E combined with a high PEG is a classic trap signature.
	pe := s.PERatio()
	if pe > 0 && s.GrowthRate > 0 {
		peg := pe / s.GrowthRate
		if peg > 2.0 && pe < 15 {
			indicators = append(indicators, TrapIndicator{
				Category:    "moat_erosion",
				Name:        "P/E vs Growth",
				Value:       peg,
				RiskScore:   65,
				Description: fmt.Sprintf("low P/E (%.1f) but PEG %.1f suggests deteriorating fundamentals", pe, peg),
				IsWarning:   true,
			})
			scores = append(scores, 65)
		}
	}

	return average(scores, 25), indicators
}

func (d ValueTrapDetector) checkAIVulnerability(s *models.Snapshot) (float64, []TrapIndicator) {
	if d.AIVulnerabilityOverride != nil {
		score := *d.AIVulnerabilityOverride * 100
		return score, []TrapIndicator{{
			Category:    "ai_vulnerability",
			Name:        "AI Vulnerability (Manual)",
			Value:       *d.AIVulnerabilityOverride,
			RiskScore:   score,
			Description: fmt.Sprintf("manual AI vulnerability assessment: %.0f%%", score),
			IsWarning:   score >= 60,
			IsCritical:  score >= 80,
		}}
	}

	industry := d.Industry
	if industry == "" && len(s.Sectors) > 0 {
		industry = s.Sectors[0]
	}
	if industry == "" {
		return 30, []TrapIndicator{{
			Category:    "ai_vulnerability",
			Name:        "AI Disruption Risk",
			RiskScore:   30,
			Description: "industry classification not available, unable to assess AI risk",
		}}
	}

	normalized := strings.ToLower(industry)
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	vuln := 0.3
	for _, entry := range aiVulnerableIndustries {
		if strings.Contains(normalized, entry.pattern) || strings.Contains(entry.pattern, normalized) {
			vuln = entry.vuln
			break
		}
	}

	score := vuln * 100
	var desc string
	var critical bool
	switch {
	case score >= 80:
		desc = fmt.Sprintf("industry %q is highly vulnerable to AI disruption", industry)
		critical = true
	case score >= 60:
		desc = fmt.Sprintf("industry %q has significant AI disruption risk", industry)
	case score >= 40:
		desc = fmt.Sprintf("industry %q has moderate AI exposure", industry)
	default:
		desc = fmt.Sprintf("industry %q has low AI disruption risk", industry)
	}

	return score, []TrapIndicator{{
		Category:    "ai_vulnerability",
		Name:        "AI Disruption Risk",
		Value:       vuln,
		RiskScore:   score,
		Description: desc,
		IsWarning:   score >= 50,
		IsCritical:  critical,
	}}
}

func (d ValueTrapDetector) checkDividendSignal(s *models.Snapshot) (float64, []TrapIndicator) {
	if s.DividendYield <= 0 {
		return 0, []TrapIndicator{{
			Category:    "dividend_signal",
			Name:        "Dividend Status",
			Description: "no dividend, not applicable for dividend trap analysis",
		}}
	}

	highPayout := d.HighPayoutThreshold
	if highPayout <= 0 {
		highPayout = 80.0
	}

	var indicators []TrapIndicator
	var scores []float64

	payout := s.PayoutRatio()
	var risk float64
	var desc string
	var critical bool
	switch {
	case payout > 100:
		risk, desc, critical = 90, fmt.Sprintf("payout ratio %.0f%% exceeds 100%%, dividend at risk", payout), true
	case payout > highPayout:
		risk, desc = 70, fmt.Sprintf("high payout ratio %.0f%%", payout)
	case payout > 60:
		risk, desc = 40, fmt.Sprintf("moderate payout ratio %.0f%%", payout)
	default:
		risk, desc = 15, fmt.Sprintf("healthy payout ratio %.0f%%", payout)
	}
	indicators = append(indicators, TrapIndicator{
		Category:    "dividend_signal",
		Name:        "Payout Ratio",
		Value:       payout,
		RiskScore:   risk,
		Description: desc,
		IsWarning:   risk >= 50,
		IsCritical:  critical,
	})
	scores = append(scores, risk)

	if s.FCF > 0 && s.DividendPerShare > 0 && s.SharesOutstanding > 0 {
		totalDividend := s.DividendPerShare * s.SharesOutstanding
		coverage := s.FCF / totalDividend
		var risk float64
		var desc string
		var critical bool
		switch {
		case coverage < 1.0:
			risk, desc, critical = 85, fmt.Sprintf("FCF cannot cover the dividend (%.1fx)", coverage), true
		case coverage < 1.5:
			risk, desc = 50, fmt.Sprintf("low FCF coverage %.1fx", coverage)
		default:
			risk, desc = 15, fmt.Sprintf("healthy FCF coverage %.1fx", coverage)
		}
		indicators = append(indicators, TrapIndicator{
			Category:    "dividend_signal",
			Name:        "FCF Coverage",
			Value:       coverage,
			RiskScore:   risk,
			Description: desc,
			IsWarning:   risk >= 50,
			IsCritical:  critical,
		})
		scores = append(scores, risk)
	}

	var growthRisk float64
	var growthDesc string
	var growthCritical bool
	switch {
	case s.DividendGrowthRate < 0:
		growthRisk, growthDesc, growthCritical = 80, fmt.Sprintf("dividend cut (growth %.1f%%)", s.DividendGrowthRate), true
	case s.DividendGrowthRate < 2:
		growthRisk, growthDesc = 45, fmt.Sprintf("dividend growth stagnating at %.1f%%", s.DividendGrowthRate)
	default:
		growthRisk, growthDesc = 15, fmt.Sprintf("dividend growing %.1f%%", s.DividendGrowthRate)
	}
	indicators = append(indicators, TrapIndicator{
		Category:    "dividend_signal",
		Name:        "Dividend Growth",
		Value:       s.DividendGrowthRate,
		RiskScore:   growthRisk,
		Description: growthDesc,
		IsWarning:   growthRisk >= 40,
		IsCritical:  growthCritical,
	})
	scores = append(scores, growthRisk)

	return average(scores, 0), indicators
}

func average(scores []float64, fallback float64) float64 {
	if len(scores) == 0 {
		return fallback
	}
	var sum float64
	for _, v := range scores {
		sum += v
	}
	return sum / float64(len(scores))
}
