package signals

import "time"

// BuybackStatus tracks a repurchase program's lifecycle.
type BuybackStatus string

const (
	BuybackAnnounced  BuybackStatus = "announced"
	BuybackInProgress BuybackStatus = "in_progress"
	BuybackCompleted  BuybackStatus = "completed"
	BuybackCancelled  BuybackStatus = "cancelled"
)

// BuybackRecord is one repurchase announcement or execution.
type BuybackRecord struct {
	Ticker       string        `json:"ticker"`
	AnnounceDate time.Time     `json:"announce_date"`
	Shares       float64       `json:"shares"`
	Amount       float64       `json:"amount"`
	Status       BuybackStatus `json:"status"`
	Source       string        `json:"source,omitempty"`
}

// IsActive reports whether the program is still repurchasing.
func (r *BuybackRecord) IsActive() bool {
	return r.Status == BuybackAnnounced || r.Status == BuybackInProgress
}

// BuybackSummary aggregates repurchase activity over a window.
type BuybackSummary struct {
	Ticker     string `json:"ticker"`
	PeriodDays int    `json:"period_days"`

	TotalAmount    float64 `json:"total_amount"`
	TotalShares    float64 `json:"total_shares"`
	RecordCount    int     `json:"record_count"`
	ActivePrograms int     `json:"active_programs"`

	// BuybackYield is annual repurchase amount over market cap, in
	// percentage points.
	BuybackYield float64 `json:"buyback_yield"`

	Sentiment string `json:"sentiment"` // aggressive, moderate, minimal, none
}

// SummarizeBuybacks folds records within the window into a summary.
// Yield bands follow the usual capital-return reading: above 3% is
// aggressive, 1-3% moderate, below 1% minimal.
func SummarizeBuybacks(ticker string, records []BuybackRecord, periodDays int, marketCap float64, now time.Time) BuybackSummary {
	summary := BuybackSummary{Ticker: ticker, PeriodDays: periodDays, Sentiment: "none"}
	cutoff := now.AddDate(0, 0, -periodDays)

	for i := range records {
		r := &records[i]
		if r.AnnounceDate.Before(cutoff) {
			continue
		}
		summary.RecordCount++
		summary.TotalAmount += r.Amount
		summary.TotalShares += r.Shares
		if r.IsActive() {
			summary.ActivePrograms++
		}
	}

	if marketCap > 0 && summary.TotalAmount > 0 {
		annualized := summary.TotalAmount * 365 / float64(periodDays)
		summary.BuybackYield = annualized / marketCap * 100
	}

	switch {
	case summary.BuybackYield > 3:
		summary.Sentiment = "aggressive"
	case summary.BuybackYield >= 1:
		summary.Sentiment = "moderate"
	case summary.TotalAmount > 0:
		summary.Sentiment = "minimal"
	}
	return summary
}

// CombinedSentiment merges insider and buyback signals into the
// three-way sentiment the rating layer consumes. Insider conviction
// wins ties; an aggressive buyback alone is enough to lean positive.
func CombinedSentiment(insider InsiderSummary, buyback BuybackSummary) string {
	score := 0
	switch insider.Sentiment {
	case "bullish":
		score++
	case "bearish":
		score--
	}
	switch buyback.Sentiment {
	case "aggressive":
		score++
	case "moderate":
		if score >= 0 {
			score++
		}
	}

	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}
