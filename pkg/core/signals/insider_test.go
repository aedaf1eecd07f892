package signals

import (
	"testing"
	"time"
)

var signalNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestSummarizeInsiderTradesBullish(t *testing.T) {
	trades := []InsiderTrade{
		{InsiderName: "Wang", Title: "CEO", Type: TradeBuy, TradeDate: signalNow.AddDate(0, 0, -5), Shares: 10000, Price: 20, Value: 200000},
		{InsiderName: "Li", Title: "Director", Type: TradeBuy, TradeDate: signalNow.AddDate(0, 0, -15), Shares: 5000, Price: 21, Value: 105000},
		{InsiderName: "Zhao", Title: "Officer", Type: TradeSell, TradeDate: signalNow.AddDate(0, 0, -20), Shares: 2000, Price: 22, Value: 44000},
	}

	s := SummarizeInsiderTrades("600519", trades, 90, signalNow)

	if s.TotalTrades != 3 || s.BuyCount != 2 || s.SellCount != 1 {
		t.Fatalf("counts wrong: total=%d buy=%d sell=%d", s.TotalTrades, s.BuyCount, s.SellCount)
	}
	if s.NetValue != 261000 {
		t.Errorf("net value: got %f", s.NetValue)
	}
	if s.KeyInsiderTrades != 1 {
		t.Errorf("expected 1 key insider trade, got %d", s.KeyInsiderTrades)
	}
	if s.UniqueInsiders != 3 {
		t.Errorf("expected 3 unique insiders, got %d", s.UniqueInsiders)
	}
	if s.Sentiment != "bullish" {
		t.Errorf("expected bullish, got %s", s.Sentiment)
	}
}

func TestSummarizeInsiderTradesBearish(t *testing.T) {
	trades := []InsiderTrade{
		{InsiderName: "Wang", Title: "CFO", Type: TradeSell, TradeDate: signalNow.AddDate(0, 0, -3), Shares: 50000, Value: 1000000},
		{InsiderName: "Li", Title: "Director", Type: TradeBuy, TradeDate: signalNow.AddDate(0, 0, -8), Shares: 1000, Value: 20000},
	}

	s := SummarizeInsiderTrades("000001", trades, 90, signalNow)
	if s.Sentiment != "bearish" {
		t.Errorf("expected bearish, got %s", s.Sentiment)
	}
}

func TestSummarizeInsiderTradesWindowAndEmpty(t *testing.T) {
	trades := []InsiderTrade{
		{InsiderName: "Old", Type: TradeBuy, TradeDate: signalNow.AddDate(0, 0, -100), Value: 500000},
	}

	s := SummarizeInsiderTrades("000001", trades, 90, signalNow)
	if s.TotalTrades != 0 {
		t.Errorf("trade outside window must be excluded, got %d", s.TotalTrades)
	}
	if s.Sentiment != "neutral" {
		t.Errorf("no activity should be neutral, got %s", s.Sentiment)
	}
	if s.BuyRatio() != 0 {
		t.Errorf("empty summary buy ratio should be 0, got %f", s.BuyRatio())
	}
}

func TestSummarizeBuybacks(t *testing.T) {
	records := []BuybackRecord{
		{AnnounceDate: signalNow.AddDate(0, 0, -30), Amount: 2e9, Shares: 1e8, Status: BuybackInProgress},
		{AnnounceDate: signalNow.AddDate(0, 0, -200), Amount: 9e9, Status: BuybackCompleted},
	}

	// 11e9 over one year against a 50e9 market cap is a 22% yield.
	s := SummarizeBuybacks("600036", records, 365, 50e9, signalNow)

	if s.RecordCount != 2 {
		t.Fatalf("expected 2 records in window, got %d", s.RecordCount)
	}
	if s.TotalAmount != 11e9 {
		t.Errorf("total amount: got %g", s.TotalAmount)
	}
	if s.ActivePrograms != 1 {
		t.Errorf("expected 1 active program, got %d", s.ActivePrograms)
	}
	if s.Sentiment != "aggressive" {
		t.Errorf("22%% yield should be aggressive, got %s", s.Sentiment)
	}
}

func TestSummarizeBuybacksNone(t *testing.T) {
	s := SummarizeBuybacks("600036", nil, 365, 50e9, signalNow)
	if s.Sentiment != "none" || s.BuybackYield != 0 {
		t.Errorf("no records: sentiment=%s yield=%f", s.Sentiment, s.BuybackYield)
	}
}

func TestCombinedSentiment(t *testing.T) {
	tests := []struct {
		insider string
		buyback string
		want    string
	}{
		{"bullish", "aggressive", "positive"},
		{"bullish", "none", "positive"},
		{"neutral", "aggressive", "positive"},
		{"neutral", "moderate", "positive"},
		{"bearish", "none", "negative"},
		{"bearish", "moderate", "negative"},
		{"bearish", "aggressive", "neutral"},
		{"neutral", "none", "neutral"},
	}
	for _, tt := range tests {
		got := CombinedSentiment(InsiderSummary{Sentiment: tt.insider}, BuybackSummary{Sentiment: tt.buyback})
		if got != tt.want {
			t.Errorf("insider=%s buyback=%s: got %s, want %s", tt.insider, tt.buyback, got, tt.want)
		}
	}
}
