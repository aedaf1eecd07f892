package valuation

import (
	"fmt"
	"sort"
)

// RangeMode selects how the conservative fair-value range is derived
// from the reliable method outputs.
type RangeMode string

const (
	// RangeMinMax spans the full spread of reliable estimates.
	RangeMinMax RangeMode = "min-max"
	// RangeQuantile trims to the 25th-75th percentile band.
	RangeQuantile RangeMode = "quantile"
)

// Summary aggregates a set of valuation results into headline numbers.
type Summary struct {
	AverageValue           float64   `json:"average_value"`
	MedianValue            float64   `json:"median_value"`
	MinValue               float64   `json:"min_value"`
	MaxValue               float64   `json:"max_value"`
	RangeLow               float64   `json:"range_low"`
	RangeHigh              float64   `json:"range_high"`
	RangeMode              RangeMode `json:"range_mode"`
	UndervaluedCount       int       `json:"undervalued_count"`
	OvervaluedCount        int       `json:"overvalued_count"`
	FairCount              int       `json:"fair_count"`
	ReliableCount          int       `json:"reliable_count"`
	TotalMethods           int       `json:"total_methods"`
	CurrentPrice           float64   `json:"current_price"`
	AveragePremiumDiscount float64   `json:"average_premium_discount"`
}

// Summarize reduces method results to summary statistics. Only reliable
// pricing results feed the fair-value statistics; risk metrics and the
// reverse DCF echo the current price as their fair value and verdict
// Priced-in, so they are excluded to avoid biasing the range toward the
// market price.
func Summarize(results []Result, mode RangeMode) Summary {
	if mode == "" {
		mode = RangeMinMax
	}
	summary := Summary{TotalMethods: len(results), RangeMode: mode}
	if len(results) > 0 {
		summary.CurrentPrice = results[0].CurrentPrice
	}

	var values []float64
	var premiumSum float64
	for _, r := range results {
		if !r.IsReliable() || r.Verdict == VerdictPricedIn || r.Verdict == VerdictNotApplicable {
			continue
		}
		values = append(values, r.FairValue)
		premiumSum += r.PremiumDiscount
		switch {
		case r.PremiumDiscount > FairThresholdPct:
			summary.UndervaluedCount++
		case r.PremiumDiscount < -FairThresholdPct:
			summary.OvervaluedCount++
		default:
			summary.FairCount++
		}
	}

	summary.ReliableCount = len(values)
	if len(values) == 0 {
		return summary
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	summary.AverageValue = sum / float64(len(sorted))
	summary.MedianValue = median(sorted)
	summary.MinValue = sorted[0]
	summary.MaxValue = sorted[len(sorted)-1]
	summary.AveragePremiumDiscount = premiumSum / float64(len(values))

	switch mode {
	case RangeQuantile:
		summary.RangeLow = quantile(sorted, 0.25)
		summary.RangeHigh = quantile(sorted, 0.75)
	default:
		summary.RangeLow = summary.MinValue
		summary.RangeHigh = summary.MaxValue
	}
	return summary
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// quantile interpolates linearly between the surrounding order
// statistics.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Sentiment is an externally supplied adjustment the aggregator passes
// through to the rating; the core never computes it.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// CombineSentiments folds independent sentiment signals (news,
// insider activity, buybacks) into the single adjustment the rating
// consumes. Each positive and negative signal votes; ties are neutral.
func CombineSentiments(sentiments ...Sentiment) Sentiment {
	score := 0
	for _, s := range sentiments {
		switch s {
		case SentimentPositive:
			score++
		case SentimentNegative:
			score--
		}
	}
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Rating is the combined verdict over all methods.
type Rating struct {
	Label          string    `json:"label"`
	Summary        Summary   `json:"summary"`
	Sentiment      Sentiment `json:"sentiment,omitempty"`
	Notes          []string  `json:"notes,omitempty"`
	ConsensusScore float64   `json:"consensus_score"` // net undervalued share, -1 to 1
}

// OverallRating positions the current price inside the aggregated range
// and folds in the external sentiment as a one-notch adjustment.
func OverallRating(summary Summary, sentiment Sentiment) Rating {
	rating := Rating{Summary: summary, Sentiment: sentiment}

	if summary.ReliableCount == 0 {
		rating.Label = "Insufficient Data"
		rating.Notes = append(rating.Notes, "no reliable fair value estimates")
		return rating
	}

	net := float64(summary.UndervaluedCount-summary.OvervaluedCount) / float64(summary.ReliableCount)
	rating.ConsensusScore = net

	// Map consensus to a five-notch scale, then let sentiment move it
	// one notch.
	notch := 2 // Hold
	switch {
	case net >= 0.6:
		notch = 0 // Strong Buy
	case net >= 0.2:
		notch = 1 // Buy
	case net <= -0.6:
		notch = 4 // Strong Sell
	case net <= -0.2:
		notch = 3 // Sell
	}

	switch sentiment {
	case SentimentPositive:
		if notch > 0 {
			notch--
			rating.Notes = append(rating.Notes, "positive external sentiment applied")
		}
	case SentimentNegative:
		if notch < 4 {
			notch++
			rating.Notes = append(rating.Notes, "negative external sentiment applied")
		}
	}

	labels := [5]string{"Strong Buy", "Buy", "Hold", "Sell", "Strong Sell"}
	rating.Label = labels[notch]

	if summary.CurrentPrice > 0 {
		switch {
		case summary.CurrentPrice < summary.RangeLow:
			rating.Notes = append(rating.Notes, fmt.Sprintf("price %.2f below the conservative range %.2f-%.2f",
				summary.CurrentPrice, summary.RangeLow, summary.RangeHigh))
		case summary.CurrentPrice > summary.RangeHigh:
			rating.Notes = append(rating.Notes, fmt.Sprintf("price %.2f above the conservative range %.2f-%.2f",
				summary.CurrentPrice, summary.RangeLow, summary.RangeHigh))
		}
	}
	return rating
}
