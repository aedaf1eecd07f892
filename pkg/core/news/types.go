// Package news fetches and scores company news. The sentiment it
// produces feeds the overall-rating adjustment in the valuation layer.
package news

import "time"

// Sentiment classification for a single item.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Category buckets a news item by topic.
type Category string

const (
	CategoryEarnings   Category = "earnings"
	CategoryIndustry   Category = "industry"
	CategoryMacro      Category = "macro"
	CategoryCompany    Category = "company"
	CategoryGovernance Category = "governance"
	CategoryDividend   Category = "dividend"
	CategoryGuidance   Category = "guidance"
)

// Item is one news article with its analysis fields filled in by an
// Analyzer.
type Item struct {
	Ticker      string    `json:"ticker"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	PublishDate time.Time `json:"publish_date"`

	Sentiment   Sentiment `json:"sentiment"`
	Confidence  float64   `json:"confidence"`   // 0..1
	ImpactScore float64   `json:"impact_score"` // -1..1 price impact estimate
	Keywords    []string  `json:"keywords,omitempty"`
	Category    Category  `json:"category"`
	Rationale   string    `json:"rationale,omitempty"` // LLM mode only
}

// AnalysisResult aggregates sentiment over a batch of items.
type AnalysisResult struct {
	Ticker string `json:"ticker"`
	Items  []Item `json:"items,omitempty"`

	SentimentScore float64 `json:"sentiment_score"` // -1..1
	Confidence     float64 `json:"confidence"`

	NewsCount7d   int `json:"news_count_7d"`
	NewsCount30d  int `json:"news_count_30d"`
	PositiveCount int `json:"positive_count"`
	NegativeCount int `json:"negative_count"`
	NeutralCount  int `json:"neutral_count"`

	KeyThemes []string `json:"key_themes,omitempty"`
	Risks     []string `json:"risks,omitempty"`
	Catalysts []string `json:"catalysts,omitempty"`

	AnalyzerType string    `json:"analyzer_type"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
	Errors       []string  `json:"errors,omitempty"`
}

// Label maps the aggregate score to a coarse human-readable bucket.
func (r *AnalysisResult) Label() string {
	switch {
	case r.SentimentScore > 0.3:
		return "positive"
	case r.SentimentScore < -0.3:
		return "negative"
	case r.SentimentScore > 0.1:
		return "slightly_positive"
	case r.SentimentScore < -0.1:
		return "slightly_negative"
	default:
		return "neutral"
	}
}

// Analyzer fills sentiment fields on items and aggregates a batch.
type Analyzer interface {
	AnalyzeItem(item *Item)
	AnalyzeBatch(ticker string, items []Item) AnalysisResult
}
