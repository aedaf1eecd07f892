package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"valueinvest/pkg/core/config"
	"valueinvest/pkg/core/llm"
	"valueinvest/pkg/core/news"
	"valueinvest/pkg/core/report"
	"valueinvest/pkg/core/signals"
	"valueinvest/pkg/core/store"
	"valueinvest/pkg/core/valuation"
	"valueinvest/pkg/models"
)

func main() {
	godotenv.Load()

	var (
		snapshotPath    = flag.String("snapshot", "", "path to snapshot JSON (required)")
		assumptionsPath = flag.String("assumptions", "", "path to assumptions Hjson")
		typeOverride    = flag.String("type", "", "company type override: dividend, bank, growth, value")
		totalReturnCAGR = flag.Float64("cagr", 0, "long-window total return CAGR in percentage points")
		industry        = flag.String("industry", "", "industry label for the value trap screen")
		methodList      = flag.String("methods", "", "comma-separated method names; empty runs the type subset")
		rangeMode       = flag.String("range", "", "fair value range mode: min-max or quantile")
		withNews        = flag.Bool("news", false, "fetch recent news and fold sentiment into the rating")
		insiderPath     = flag.String("insider", "", "path to insider trades JSON, folded into the rating")
		buybackPath     = flag.String("buybacks", "", "path to buyback records JSON, folded into the rating")
		signalDays      = flag.Int("signal-days", 180, "lookback window in days for insider/buyback signals")
		save            = flag.Bool("save", false, "persist the report to DATABASE_URL")
		asJSON          = flag.Bool("json", false, "print the report as JSON instead of markdown")
	)
	flag.Parse()

	if *snapshotPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	snapshot, err := loadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("load snapshot: %v", err)
	}

	assumptions := config.Defaults()
	if *assumptionsPath != "" {
		assumptions, err = config.Load(*assumptionsPath)
		if err != nil {
			log.Fatalf("load assumptions: %v", err)
		}
	}
	assumptions.Apply(snapshot)

	engine := valuation.NewEngineWithParams(assumptions.EngineParams())
	companyType := valuation.ClassifyCompanyType(snapshot, *totalReturnCAGR, valuation.CompanyType(strings.ToLower(*typeOverride)))
	fmt.Printf("[ANALYZE] %s classified as %s\n", snapshot.Ticker, companyType)

	var results []valuation.Result
	if *methodList != "" {
		results, err = engine.RunMultiple(snapshot, strings.Split(*methodList, ","))
	} else {
		results, err = engine.RunForType(snapshot, companyType)
	}
	if err != nil {
		log.Fatalf("run methods: %v", err)
	}

	sentiment := valuation.SentimentNeutral
	if *withNews {
		sentiment = fetchSentiment(snapshot.Ticker, assumptions)
	}
	if *insiderPath != "" || *buybackPath != "" {
		signalSentiment, err := loadSignalSentiment(snapshot, *insiderPath, *buybackPath, *signalDays)
		if err != nil {
			log.Fatalf("load signals: %v", err)
		}
		sentiment = valuation.CombineSentiments(sentiment, signalSentiment)
	}

	mode := valuation.RangeMode(*rangeMode)
	if mode == "" {
		mode = valuation.RangeMode(assumptions.RangeMode)
	}
	summary := valuation.Summarize(results, mode)
	rating := valuation.OverallRating(summary, sentiment)

	detector := valuation.ValueTrapDetector{Industry: *industry}
	var trap *valuation.ValueTrapReport
	if detector.IsApplicable(snapshot) {
		trap = detector.Detect(snapshot)
	}

	rep := report.Build(snapshot, companyType, results, summary, rating, trap)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			log.Fatalf("encode report: %v", err)
		}
	} else {
		fmt.Println(rep.Markdown)
	}

	if *save {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("init database: %v", err)
		}
		defer store.Close()
		if err := store.NewReportRepo().Save(ctx, rep); err != nil {
			log.Fatalf("save report: %v", err)
		}
		fmt.Printf("[ANALYZE] report %s saved for %s\n", rep.RunID, rep.Ticker)
	}
}

func loadSnapshot(path string) (*models.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s models.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}

// loadSignalSentiment reads insider trades and buyback records from
// JSON files and folds them into one sentiment signal.
func loadSignalSentiment(s *models.Snapshot, insiderPath, buybackPath string, periodDays int) (valuation.Sentiment, error) {
	now := time.Now()

	var trades []signals.InsiderTrade
	if insiderPath != "" {
		data, err := os.ReadFile(insiderPath)
		if err != nil {
			return valuation.SentimentNeutral, err
		}
		if err := json.Unmarshal(data, &trades); err != nil {
			return valuation.SentimentNeutral, fmt.Errorf("parse %s: %w", insiderPath, err)
		}
	}
	var records []signals.BuybackRecord
	if buybackPath != "" {
		data, err := os.ReadFile(buybackPath)
		if err != nil {
			return valuation.SentimentNeutral, err
		}
		if err := json.Unmarshal(data, &records); err != nil {
			return valuation.SentimentNeutral, fmt.Errorf("parse %s: %w", buybackPath, err)
		}
	}

	insider := signals.SummarizeInsiderTrades(s.Ticker, trades, periodDays, now)
	buyback := signals.SummarizeBuybacks(s.Ticker, records, periodDays, s.MarketCap(), now)
	combined := signals.CombinedSentiment(insider, buyback)
	fmt.Printf("[SIGNALS] insider %s (net %.0f), buyback %s (yield %.1f%%), combined %s\n",
		insider.Sentiment, insider.NetValue, buyback.Sentiment, buyback.BuybackYield, combined)
	return valuation.Sentiment(combined), nil
}

// fetchSentiment pulls recent news and scores it. Falls back to the
// keyword analyzer when no LLM provider is configured, and to neutral
// when fetching fails.
func fetchSentiment(ticker string, assumptions config.Assumptions) valuation.Sentiment {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fetcher := &news.EastMoneyFetcher{}
	items, err := fetcher.FetchNews(ctx, ticker, assumptions.NewsDays)
	if err != nil {
		fmt.Printf("[NEWS] fetch failed, using neutral sentiment: %v\n", err)
		return valuation.SentimentNeutral
	}
	if len(items) == 0 {
		return valuation.SentimentNeutral
	}

	var analyzer news.Analyzer = &news.KeywordAnalyzer{}
	if assumptions.LLMProvider != "" {
		provider, err := llm.NewProvider(assumptions.LLMProvider)
		if err != nil {
			fmt.Printf("[NEWS] %v, falling back to keyword analyzer\n", err)
		} else {
			options := map[string]interface{}{}
			if assumptions.LLMModel != "" {
				options["model"] = assumptions.LLMModel
			}
			analyzer = &news.LLMAnalyzer{Provider: provider, Options: options}
		}
	}

	result := analyzer.AnalyzeBatch(ticker, items)
	fmt.Printf("[NEWS] %d items, sentiment %.2f (%s)\n", len(result.Items), result.SentimentScore, result.Label())

	switch {
	case result.SentimentScore > 0.3:
		return valuation.SentimentPositive
	case result.SentimentScore < -0.3:
		return valuation.SentimentNegative
	default:
		return valuation.SentimentNeutral
	}
}
