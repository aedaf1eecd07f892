package valuation

import (
	"math"
	"testing"
)

func pricedResult(method string, fair, price float64) Result {
	return Result{
		Method:          method,
		FairValue:       fair,
		CurrentPrice:    price,
		PremiumDiscount: premiumDiscount(fair, price),
		Verdict:         assess(fair, price),
		Applicability:   Applicable,
	}
}

func TestSummarize(t *testing.T) {
	price := 10.0
	results := []Result{
		pricedResult("a", 12, price), // +20% undervalued
		pricedResult("b", 10, price), // fair
		pricedResult("c", 8, price),  // -20% overvalued
		pricedResult("d", 14, price), // +40% undervalued
	}

	s := Summarize(results, RangeMinMax)

	if s.ReliableCount != 4 {
		t.Fatalf("expected 4 reliable, got %d", s.ReliableCount)
	}
	if s.UndervaluedCount != 2 || s.OvervaluedCount != 1 || s.FairCount != 1 {
		t.Errorf("counts wrong: under=%d over=%d fair=%d",
			s.UndervaluedCount, s.OvervaluedCount, s.FairCount)
	}
	if math.Abs(s.AverageValue-11.0) > 1e-9 {
		t.Errorf("expected average 11, got %f", s.AverageValue)
	}
	if math.Abs(s.MedianValue-11.0) > 1e-9 {
		t.Errorf("expected median 11, got %f", s.MedianValue)
	}
	if s.MinValue != 8 || s.MaxValue != 14 {
		t.Errorf("expected min 8 max 14, got %f %f", s.MinValue, s.MaxValue)
	}
	if s.RangeLow != 8 || s.RangeHigh != 14 {
		t.Errorf("min-max range wrong: %f-%f", s.RangeLow, s.RangeHigh)
	}
	if s.CurrentPrice != price {
		t.Errorf("expected current price %f, got %f", price, s.CurrentPrice)
	}
}

func TestSummarizeQuantileRange(t *testing.T) {
	price := 10.0
	results := []Result{
		pricedResult("a", 8, price),
		pricedResult("b", 10, price),
		pricedResult("c", 12, price),
		pricedResult("d", 14, price),
		pricedResult("e", 40, price), // outlier
	}

	s := Summarize(results, RangeQuantile)

	if s.RangeHigh >= 40 {
		t.Errorf("quantile range must trim the outlier, got high %f", s.RangeHigh)
	}
	if s.RangeLow <= 8 {
		t.Errorf("quantile range must trim the low tail, got low %f", s.RangeLow)
	}
}

func TestSummarizeExcludesScreens(t *testing.T) {
	price := 10.0
	screen := Result{
		Method:        "altman_z_score",
		FairValue:     price,
		CurrentPrice:  price,
		Verdict:       VerdictPricedIn,
		Applicability: Applicable,
	}
	na := Result{
		Method:        "ncav",
		CurrentPrice:  price,
		Verdict:       VerdictNotApplicable,
		Applicability: NotApplicable,
	}
	results := []Result{pricedResult("dcf", 15, price), screen, na}

	s := Summarize(results, RangeMinMax)
	if s.ReliableCount != 1 {
		t.Errorf("screens and NA results must not count, got %d", s.ReliableCount)
	}
	if s.TotalMethods != 3 {
		t.Errorf("total should still be 3, got %d", s.TotalMethods)
	}
	if s.AverageValue != 15 {
		t.Errorf("only the pricing method feeds the average, got %f", s.AverageValue)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, RangeMinMax)
	if s.ReliableCount != 0 || s.AverageValue != 0 {
		t.Error("empty input must produce a zero summary")
	}
}

func TestOverallRating(t *testing.T) {
	price := 10.0
	bullish := Summarize([]Result{
		pricedResult("a", 14, price),
		pricedResult("b", 15, price),
		pricedResult("c", 13, price),
	}, RangeMinMax)

	r := OverallRating(bullish, SentimentNeutral)
	if r.Label != "Strong Buy" {
		t.Errorf("all undervalued should rate Strong Buy, got %s", r.Label)
	}

	r = OverallRating(bullish, SentimentNegative)
	if r.Label != "Buy" {
		t.Errorf("negative sentiment moves one notch to Buy, got %s", r.Label)
	}
}

func TestOverallRatingBearishAndSentiment(t *testing.T) {
	price := 10.0
	bearish := Summarize([]Result{
		pricedResult("a", 7, price),
		pricedResult("b", 6, price),
		pricedResult("c", 8, price),
	}, RangeMinMax)

	r := OverallRating(bearish, SentimentNeutral)
	if r.Label != "Strong Sell" {
		t.Errorf("all overvalued should rate Strong Sell, got %s", r.Label)
	}
	r = OverallRating(bearish, SentimentPositive)
	if r.Label != "Sell" {
		t.Errorf("positive sentiment moves one notch to Sell, got %s", r.Label)
	}
}

func TestCombineSentiments(t *testing.T) {
	cases := []struct {
		in   []Sentiment
		want Sentiment
	}{
		{[]Sentiment{SentimentPositive, SentimentNeutral}, SentimentPositive},
		{[]Sentiment{SentimentPositive, SentimentNegative}, SentimentNeutral},
		{[]Sentiment{SentimentNegative, SentimentNeutral}, SentimentNegative},
		{[]Sentiment{SentimentPositive, SentimentPositive, SentimentNegative}, SentimentPositive},
		{[]Sentiment{"", SentimentNegative}, SentimentNegative},
		{[]Sentiment{}, SentimentNeutral},
	}
	for _, tc := range cases {
		if got := CombineSentiments(tc.in...); got != tc.want {
			t.Errorf("CombineSentiments(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestOverallRatingInsufficientData(t *testing.T) {
	r := OverallRating(Summarize(nil, RangeMinMax), SentimentNeutral)
	if r.Label != "Insufficient Data" {
		t.Errorf("expected Insufficient Data, got %s", r.Label)
	}
}
