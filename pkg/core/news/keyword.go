package news

import (
	"sort"
	"strings"
	"time"
)

// Keyword lists need ordered iteration so batch output is stable.
var positiveKeywords = []string{
	"growth", "surge", "jump", "rise", "gain", "profit", "beat",
	"upgrade", "buyback", "dividend", "acquire", "expand", "win",
	"record", "strong", "bullish", "outperform", "overweight",
	"positive", "optimistic", "opportunity", "breakthrough",
	"increase", "improve", "exceed", "milestone", "partnership",
	"增长", "上升", "突破", "创新高", "超预期", "利好", "中标",
	"回购", "增持", "分红", "盈利", "扩张", "并购", "合作",
	"订单", "扭亏", "强劲", "看好", "上调", "买入", "龙头",
	"领先", "复苏", "回暖", "改善", "优化", "升级", "创新",
}

var negativeKeywords = []string{
	"decline", "drop", "fall", "loss", "downgrade", "lawsuit",
	"investigation", "fine", "penalty", "bankrupt", "delist", "crash",
	"miss", "bearish", "underperform", "underweight", "negative",
	"pessimistic", "risk", "threat", "concern", "worst",
	"decrease", "reduce", "layoff", "shutdown", "default",
	"下降", "下跌", "亏损", "减持", "利空", "下修", "诉讼",
	"调查", "处罚", "风险", "下滑", "裁员", "关停", "违约",
	"债务", "破产", "退市", "跌停", "暴跌", "不及预期", "下调",
	"卖出", "看空", "悲观", "萎缩", "恶化", "质押",
}

var riskKeywords = []string{
	"risk", "lawsuit", "investigation", "fine", "penalty", "default",
	"competition", "pressure", "uncertainty", "concern", "threat",
	"风险", "诉讼", "调查", "处罚", "违约", "质押", "减持",
	"竞争加剧", "成本上升", "下滑", "压力", "不确定性",
}

var catalystKeywords = []string{
	"order", "contract", "acquisition", "buyback", "new product",
	"expansion", "growth", "record", "beat",
	"订单", "中标", "签约", "并购", "回购", "新产品",
	"扩张", "增长", "创新高", "超预期", "利好",
}

var categoryPatterns = []struct {
	category Category
	words    []string
}{
	{CategoryEarnings, []string{"earnings", "profit", "revenue", "loss", "quarter", "业绩", "利润", "营收", "盈利", "亏损", "财报"}},
	{CategoryDividend, []string{"dividend", "payout", "分红", "股息", "派息"}},
	{CategoryGuidance, []string{"guidance", "forecast", "outlook", "estimate", "指引", "预期", "展望", "预测"}},
	{CategoryIndustry, []string{"industry", "market", "sector", "competition", "行业", "市场", "竞争", "份额"}},
	{CategoryMacro, []string{"macro", "policy", "economy", "rate", "federal", "宏观", "政策", "经济", "利率", "央行"}},
	{CategoryGovernance, []string{"governance", "shareholder", "management", "board", "治理", "股东", "管理层", "董事"}},
}

// KeywordAnalyzer scores items by matching positive and negative word
// lists. It is the zero-cost fallback when no LLM provider is configured.
type KeywordAnalyzer struct {
	// Now allows tests to freeze the clock; zero value uses time.Now.
	Now func() time.Time
}

func (a *KeywordAnalyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// AnalyzeItem fills Sentiment, Confidence, ImpactScore, Keywords and
// Category in place. Neutral with low confidence when nothing matches.
func (a *KeywordAnalyzer) AnalyzeItem(item *Item) {
	text := strings.ToLower(item.Title + " " + item.Content)

	positive := countMatches(text, positiveKeywords)
	negative := countMatches(text, negativeKeywords)
	total := positive + negative

	if total == 0 {
		item.Sentiment = SentimentNeutral
		item.Confidence = 0.3
		item.ImpactScore = 0
	} else {
		ratio := float64(positive) / float64(total)
		switch {
		case ratio > 0.6:
			item.Sentiment = SentimentPositive
			item.Confidence = minf(0.9, 0.5+ratio*0.4)
			item.ImpactScore = ratio
		case ratio < 0.4:
			item.Sentiment = SentimentNegative
			item.Confidence = minf(0.9, 0.5+(1-ratio)*0.4)
			item.ImpactScore = -(1 - ratio)
		default:
			item.Sentiment = SentimentNeutral
			item.Confidence = 0.4
			item.ImpactScore = ratio - 0.5
		}
	}

	item.Keywords = extractMatches(text, positiveKeywords, negativeKeywords)
	if len(item.Keywords) > 10 {
		item.Keywords = item.Keywords[:10]
	}
	item.Category = classifyCategory(text)
}

// AnalyzeBatch analyzes every item and aggregates the scores.
func (a *KeywordAnalyzer) AnalyzeBatch(ticker string, items []Item) AnalysisResult {
	analyzed := make([]Item, len(items))
	copy(analyzed, items)
	for i := range analyzed {
		a.AnalyzeItem(&analyzed[i])
	}

	result := aggregate(ticker, analyzed, "keyword", a.now())
	result.Risks = collectKeywords(analyzed, riskKeywords, false, 5)
	result.Catalysts = collectKeywords(analyzed, catalystKeywords, true, 5)
	return result
}

// aggregate folds analyzed items into batch-level metrics. Shared with
// the LLM analyzer.
func aggregate(ticker string, items []Item, analyzerType string, now time.Time) AnalysisResult {
	result := AnalysisResult{
		Ticker:       ticker,
		Items:        items,
		AnalyzerType: analyzerType,
		AnalyzedAt:   now,
	}
	if len(items) == 0 {
		return result
	}

	var scoreSum float64
	var confSum float64
	var confCount int
	for _, item := range items {
		switch item.Sentiment {
		case SentimentPositive:
			result.PositiveCount++
			scoreSum += pickScore(item.ImpactScore, 0.5)
		case SentimentNegative:
			result.NegativeCount++
			scoreSum -= pickScore(-item.ImpactScore, 0.5)
		default:
			result.NeutralCount++
		}
		if item.Confidence > 0 {
			confSum += item.Confidence
			confCount++
		}
		if now.Sub(item.PublishDate) <= 7*24*time.Hour {
			result.NewsCount7d++
		}
		if now.Sub(item.PublishDate) <= 30*24*time.Hour {
			result.NewsCount30d++
		}
	}

	result.SentimentScore = scoreSum / float64(len(items))
	if confCount > 0 {
		result.Confidence = confSum / float64(confCount)
	} else {
		result.Confidence = 0.5
	}
	result.KeyThemes = topKeywords(items, 5)
	return result
}

func pickScore(impact, fallback float64) float64 {
	if impact != 0 {
		return impact
	}
	return fallback
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func extractMatches(text string, lists ...[]string) []string {
	var found []string
	seen := map[string]bool{}
	for _, list := range lists {
		for _, w := range list {
			if !seen[w] && strings.Contains(text, w) {
				seen[w] = true
				found = append(found, w)
			}
		}
	}
	return found
}

func classifyCategory(text string) Category {
	for _, cp := range categoryPatterns {
		for _, w := range cp.words {
			if strings.Contains(text, w) {
				return cp.category
			}
		}
	}
	return CategoryCompany
}

func collectKeywords(items []Item, words []string, positiveOnly bool, limit int) []string {
	var out []string
	seen := map[string]bool{}
	for _, item := range items {
		if positiveOnly && item.Sentiment != SentimentPositive {
			continue
		}
		text := strings.ToLower(item.Title + " " + item.Content)
		for _, w := range words {
			if !seen[w] && strings.Contains(text, w) {
				seen[w] = true
				out = append(out, w)
				if len(out) == limit {
					return out
				}
			}
		}
	}
	return out
}

// topKeywords returns the most frequent item keywords, count descending
// then lexical for stability.
func topKeywords(items []Item, limit int) []string {
	counts := map[string]int{}
	for _, item := range items {
		for _, kw := range item.Keywords {
			counts[kw]++
		}
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
