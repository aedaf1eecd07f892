package news

import (
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestKeywordAnalyzePositive(t *testing.T) {
	a := &KeywordAnalyzer{Now: fixedNow}
	item := Item{
		Ticker:  "600519",
		Title:   "Company reports record profit and announces buyback",
		Content: "Revenue growth exceeded expectations with strong margins.",
	}
	a.AnalyzeItem(&item)

	if item.Sentiment != SentimentPositive {
		t.Fatalf("expected positive, got %s", item.Sentiment)
	}
	if item.Confidence < 0.5 || item.Confidence > 0.9 {
		t.Errorf("confidence out of band: %f", item.Confidence)
	}
	if item.ImpactScore <= 0 {
		t.Errorf("positive item must have positive impact, got %f", item.ImpactScore)
	}
	if item.Category != CategoryEarnings {
		t.Errorf("profit news should classify as earnings, got %s", item.Category)
	}
}

func TestKeywordAnalyzeNegative(t *testing.T) {
	a := &KeywordAnalyzer{Now: fixedNow}
	item := Item{
		Ticker:  "600519",
		Title:   "Regulator opens investigation, lawsuit risk grows",
		Content: "Shares drop amid concern over penalty and loss of market share.",
	}
	a.AnalyzeItem(&item)

	if item.Sentiment != SentimentNegative {
		t.Fatalf("expected negative, got %s", item.Sentiment)
	}
	if item.ImpactScore >= 0 {
		t.Errorf("negative item must have negative impact, got %f", item.ImpactScore)
	}
}

func TestKeywordAnalyzeNoMatches(t *testing.T) {
	a := &KeywordAnalyzer{Now: fixedNow}
	item := Item{Title: "Quarterly filing published", Content: "The document is available."}
	a.AnalyzeItem(&item)

	if item.Sentiment != SentimentNeutral {
		t.Errorf("expected neutral, got %s", item.Sentiment)
	}
	if item.Confidence != 0.3 {
		t.Errorf("no-match confidence should be 0.3, got %f", item.Confidence)
	}
	if item.ImpactScore != 0 {
		t.Errorf("no-match impact should be 0, got %f", item.ImpactScore)
	}
}

func TestKeywordAnalyzeBatch(t *testing.T) {
	a := &KeywordAnalyzer{Now: fixedNow}
	items := []Item{
		{Title: "Record profit growth, outlook strong", PublishDate: fixedNow().AddDate(0, 0, -2)},
		{Title: "New buyback program and dividend increase", PublishDate: fixedNow().AddDate(0, 0, -10)},
		{Title: "Lawsuit filed, shares drop on penalty risk", PublishDate: fixedNow().AddDate(0, 0, -40)},
	}

	result := a.AnalyzeBatch("600519", items)

	if result.PositiveCount != 2 || result.NegativeCount != 1 {
		t.Errorf("counts wrong: pos=%d neg=%d", result.PositiveCount, result.NegativeCount)
	}
	if result.NewsCount7d != 1 {
		t.Errorf("expected 1 item in 7d window, got %d", result.NewsCount7d)
	}
	if result.NewsCount30d != 2 {
		t.Errorf("expected 2 items in 30d window, got %d", result.NewsCount30d)
	}
	if result.SentimentScore <= 0 {
		t.Errorf("two positives vs one negative should net positive, got %f", result.SentimentScore)
	}
	if result.AnalyzerType != "keyword" {
		t.Errorf("analyzer type: got %s", result.AnalyzerType)
	}
	if len(result.Catalysts) == 0 {
		t.Error("buyback and growth items should surface catalysts")
	}
	if len(result.Risks) == 0 {
		t.Error("lawsuit item should surface risks")
	}
}

func TestKeywordBatchDeterminism(t *testing.T) {
	a := &KeywordAnalyzer{Now: fixedNow}
	items := []Item{
		{Title: "profit growth buyback dividend", PublishDate: fixedNow()},
		{Title: "loss lawsuit investigation drop", PublishDate: fixedNow()},
	}

	first := a.AnalyzeBatch("000001", items)
	second := a.AnalyzeBatch("000001", items)

	if first.SentimentScore != second.SentimentScore {
		t.Error("sentiment score must be deterministic")
	}
	if len(first.KeyThemes) != len(second.KeyThemes) {
		t.Fatal("key themes length must be deterministic")
	}
	for i := range first.KeyThemes {
		if first.KeyThemes[i] != second.KeyThemes[i] {
			t.Errorf("theme order differs at %d: %s vs %s", i, first.KeyThemes[i], second.KeyThemes[i])
		}
	}
}

func TestAnalysisResultLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "positive"},
		{0.2, "slightly_positive"},
		{0.0, "neutral"},
		{-0.2, "slightly_negative"},
		{-0.5, "negative"},
	}
	for _, tt := range tests {
		r := AnalysisResult{SentimentScore: tt.score}
		if got := r.Label(); got != tt.want {
			t.Errorf("score %f: got %s, want %s", tt.score, got, tt.want)
		}
	}
}
