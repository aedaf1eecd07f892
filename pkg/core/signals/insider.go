// Package signals scores insider trading and buyback activity into the
// sentiment signal consumed by the overall rating.
package signals

import "time"

// TradeType is the kind of insider transaction.
type TradeType string

const (
	TradeBuy      TradeType = "buy"
	TradeSell     TradeType = "sell"
	TradeGrant    TradeType = "grant"
	TradeExercise TradeType = "exercise"
	TradeOther    TradeType = "other"
)

// InsiderTrade is one reported insider transaction.
type InsiderTrade struct {
	Ticker      string    `json:"ticker"`
	InsiderName string    `json:"insider_name"`
	Title       string    `json:"title"` // CEO, CFO, Chairman, Director, ...
	Type        TradeType `json:"type"`
	TradeDate   time.Time `json:"trade_date"`
	Shares      float64   `json:"shares"`
	Price       float64   `json:"price"`
	Value       float64   `json:"value"` // shares times price
	Source      string    `json:"source,omitempty"`
}

// IsKeyInsider reports whether the trade came from the CEO, CFO or
// Chairman. Their trades carry more signal than routine director
// activity.
func (t *InsiderTrade) IsKeyInsider() bool {
	switch t.Title {
	case "CEO", "CFO", "Chairman":
		return true
	}
	return false
}

// InsiderSummary aggregates trading activity over a window.
type InsiderSummary struct {
	Ticker     string `json:"ticker"`
	PeriodDays int    `json:"period_days"`

	TotalTrades int `json:"total_trades"`
	BuyCount    int `json:"buy_count"`
	SellCount   int `json:"sell_count"`
	OtherCount  int `json:"other_count"`

	BuyShares  float64 `json:"buy_shares"`
	SellShares float64 `json:"sell_shares"`
	NetShares  float64 `json:"net_shares"`

	BuyValue  float64 `json:"buy_value"`
	SellValue float64 `json:"sell_value"`
	NetValue  float64 `json:"net_value"`

	UniqueInsiders   int `json:"unique_insiders"`
	KeyInsiderTrades int `json:"key_insider_trades"`

	Sentiment string `json:"sentiment"` // bullish, bearish, neutral
}

// BuyRatio is buy value over total traded value.
func (s *InsiderSummary) BuyRatio() float64 {
	total := s.BuyValue + s.SellValue
	if total == 0 {
		return 0
	}
	return s.BuyValue / total
}

// SummarizeInsiderTrades folds trades within the window into a
// summary. Grants and exercises count as activity but not as directed
// buying or selling.
func SummarizeInsiderTrades(ticker string, trades []InsiderTrade, periodDays int, now time.Time) InsiderSummary {
	summary := InsiderSummary{Ticker: ticker, PeriodDays: periodDays, Sentiment: "neutral"}
	cutoff := now.AddDate(0, 0, -periodDays)
	insiders := map[string]bool{}

	for i := range trades {
		t := &trades[i]
		if t.TradeDate.Before(cutoff) {
			continue
		}
		summary.TotalTrades++
		insiders[t.InsiderName] = true
		if t.IsKeyInsider() {
			summary.KeyInsiderTrades++
		}

		switch t.Type {
		case TradeBuy:
			summary.BuyCount++
			summary.BuyShares += t.Shares
			summary.BuyValue += t.Value
		case TradeSell:
			summary.SellCount++
			summary.SellShares += t.Shares
			summary.SellValue += t.Value
		default:
			summary.OtherCount++
		}
	}

	summary.UniqueInsiders = len(insiders)
	summary.NetShares = summary.BuyShares - summary.SellShares
	summary.NetValue = summary.BuyValue - summary.SellValue

	switch {
	case summary.NetValue > 0 && summary.BuyRatio() > 0.6:
		summary.Sentiment = "bullish"
	case summary.NetValue < 0 && summary.BuyRatio() < 0.4:
		summary.Sentiment = "bearish"
	}
	return summary
}
