package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"valueinvest/pkg/core/llm"
	"valueinvest/pkg/core/utils"
)

const itemPrompt = `Analyze the following stock news and return a JSON response.

Stock Ticker: %s
News Title: %s
News Content: %s

Return ONLY a valid JSON object with these fields:
{
  "sentiment": "positive" | "negative" | "neutral",
  "confidence": 0.0-1.0,
  "impact_score": -1.0 to 1.0,
  "category": "earnings" | "industry" | "macro" | "company" | "governance" | "dividend" | "guidance",
  "keywords": ["keyword1", "keyword2", "keyword3"],
  "rationale": "Brief explanation in 1-2 sentences"
}`

const batchPrompt = `Summarize the following analyzed news for stock %s.

News items:
%s

Return ONLY a valid JSON object:
{
  "overall_sentiment": -1.0 to 1.0,
  "sentiment_trend": "improving" | "deteriorating" | "stable",
  "key_themes": ["theme1", "theme2", "theme3"],
  "risks": ["risk1", "risk2"],
  "catalysts": ["catalyst1", "catalyst2"]
}`

const systemPrompt = "You are a financial news analyst. Respond with JSON only."

// maxContentChars caps the article body sent per request.
const maxContentChars = 2000

// LLMAnalyzer scores items through an LLM provider. Model output is
// run through json-repair before decoding since providers sometimes
// wrap JSON in fences or truncate trailing braces.
type LLMAnalyzer struct {
	Provider llm.Provider
	Options  map[string]interface{}

	Now func() time.Time
}

type itemVerdict struct {
	Sentiment   string   `json:"sentiment"`
	Confidence  float64  `json:"confidence"`
	ImpactScore float64  `json:"impact_score"`
	Category    string   `json:"category"`
	Keywords    []string `json:"keywords"`
	Rationale   string   `json:"rationale"`
}

type batchVerdict struct {
	OverallSentiment float64  `json:"overall_sentiment"`
	SentimentTrend   string   `json:"sentiment_trend"`
	KeyThemes        []string `json:"key_themes"`
	Risks            []string `json:"risks"`
	Catalysts        []string `json:"catalysts"`
}

func (a *LLMAnalyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// AnalyzeItem asks the provider for a per-item verdict. On any failure
// the item degrades to neutral with zero confidence and the error is
// recorded in the rationale, mirroring the keyword analyzer's
// never-fail contract.
func (a *LLMAnalyzer) AnalyzeItem(item *Item) {
	content := item.Content
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	prompt := fmt.Sprintf(itemPrompt, item.Ticker, item.Title, content)

	raw, err := a.Provider.GenerateResponse(context.Background(), prompt, systemPrompt, a.Options)
	if err != nil {
		item.Sentiment = SentimentNeutral
		item.Confidence = 0
		item.Rationale = fmt.Sprintf("llm analysis failed: %v", err)
		return
	}

	var verdict itemVerdict
	if err := decodeRepaired(raw, &verdict); err != nil {
		item.Sentiment = SentimentNeutral
		item.Confidence = 0
		item.Rationale = fmt.Sprintf("llm response not decodable: %v", err)
		return
	}

	item.Sentiment = parseSentiment(verdict.Sentiment)
	item.Confidence = clamp01(verdict.Confidence)
	item.ImpactScore = clampSigned(verdict.ImpactScore)
	item.Category = parseCategory(verdict.Category)
	item.Keywords = verdict.Keywords
	item.Rationale = verdict.Rationale
}

// AnalyzeBatch analyzes each item, aggregates, then asks the provider
// for batch-level themes, risks and catalysts. The batch summary is
// best effort; aggregation numbers stand even when it fails.
func (a *LLMAnalyzer) AnalyzeBatch(ticker string, items []Item) AnalysisResult {
	analyzed := make([]Item, len(items))
	copy(analyzed, items)
	for i := range analyzed {
		a.AnalyzeItem(&analyzed[i])
	}

	result := aggregate(ticker, analyzed, "llm", a.now())
	if len(analyzed) == 0 {
		return result
	}

	var lines []string
	for i, item := range analyzed {
		if i == 20 {
			break
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (impact: %.2f)", item.Sentiment, item.Title, item.ImpactScore))
	}
	prompt := fmt.Sprintf(batchPrompt, ticker, strings.Join(lines, "\n"))

	raw, err := a.Provider.GenerateResponse(context.Background(), prompt, systemPrompt, a.Options)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("batch summary failed: %v", err))
		return result
	}
	var verdict batchVerdict
	if err := decodeRepaired(raw, &verdict); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("batch summary not decodable: %v", err))
		return result
	}

	if len(verdict.KeyThemes) > 0 {
		result.KeyThemes = verdict.KeyThemes
	}
	result.Risks = verdict.Risks
	result.Catalysts = verdict.Catalysts
	return result
}

// decodeRepaired runs model output through the repair-then-decode
// pipeline shared with the config layer.
func decodeRepaired(raw string, v interface{}) error {
	_, err := utils.SmartParse(raw, v)
	return err
}

func parseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func parseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "earnings":
		return CategoryEarnings
	case "industry":
		return CategoryIndustry
	case "macro":
		return CategoryMacro
	case "governance":
		return CategoryGovernance
	case "dividend":
		return CategoryDividend
	case "guidance":
		return CategoryGuidance
	default:
		return CategoryCompany
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampSigned(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
