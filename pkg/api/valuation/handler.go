// Package valuation exposes the analysis engine over HTTP.
package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"valueinvest/pkg/core/report"
	"valueinvest/pkg/core/signals"
	"valueinvest/pkg/core/store"
	"valueinvest/pkg/core/valuation"
	"valueinvest/pkg/models"
)

var (
	engine     *valuation.Engine
	reportRepo *store.ReportRepo
	persist    bool
)

// InitHandler wires the engine and optional persistence. Pass
// persistReports false when no database is configured.
func InitHandler(e *valuation.Engine, persistReports bool) {
	engine = e
	persist = persistReports
	if persistReports {
		reportRepo = store.NewReportRepo()
	}
}

// ReportRequest is the POST body for /api/valuation/report.
type ReportRequest struct {
	Snapshot models.Snapshot `json:"snapshot"`

	// Optional inputs
	CompanyType     string              `json:"company_type,omitempty"` // override for the classifier
	TotalReturnCAGR float64             `json:"total_return_cagr,omitempty"`
	Industry        string              `json:"industry,omitempty"`
	Sentiment       valuation.Sentiment `json:"sentiment,omitempty"` // external news sentiment
	Methods         []string            `json:"methods,omitempty"`   // run these instead of the type subset
	RangeMode       string              `json:"range_mode,omitempty"`
	IncludeHTML     bool                `json:"include_html,omitempty"`

	// Insider trades and buyback records are summarized and folded
	// into the rating's sentiment adjustment.
	InsiderTrades    []signals.InsiderTrade  `json:"insider_trades,omitempty"`
	Buybacks         []signals.BuybackRecord `json:"buybacks,omitempty"`
	SignalPeriodDays int                     `json:"signal_period_days,omitempty"` // default 180
}

// ReportResponse wraps the report plus the rendered HTML when asked.
type ReportResponse struct {
	Report         *report.Report          `json:"report"`
	InsiderSummary *signals.InsiderSummary `json:"insider_summary,omitempty"`
	BuybackSummary *signals.BuybackSummary `json:"buyback_summary,omitempty"`
	HTML           string                  `json:"html,omitempty"`
}

// HandleValuationReport classifies the company, runs the matching
// method subset, aggregates and returns the report.
func HandleValuationReport(w http.ResponseWriter, r *http.Request) {
	// CORS
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Snapshot.Ticker == "" {
		http.Error(w, "snapshot.ticker is required", http.StatusBadRequest)
		return
	}
	if req.Snapshot.CurrentPrice <= 0 {
		http.Error(w, "snapshot.current_price must be positive", http.StatusBadRequest)
		return
	}

	snapshot := req.Snapshot
	companyType := valuation.ClassifyCompanyType(&snapshot, req.TotalReturnCAGR, valuation.CompanyType(strings.ToLower(req.CompanyType)))

	var results []valuation.Result
	var err error
	if len(req.Methods) > 0 {
		results, err = engine.RunMultiple(&snapshot, req.Methods)
	} else {
		results, err = engine.RunForType(&snapshot, companyType)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sentiment := req.Sentiment
	var insiderSummary *signals.InsiderSummary
	var buybackSummary *signals.BuybackSummary
	if len(req.InsiderTrades) > 0 || len(req.Buybacks) > 0 {
		periodDays := req.SignalPeriodDays
		if periodDays <= 0 {
			periodDays = 180
		}
		now := time.Now()
		ins := signals.SummarizeInsiderTrades(snapshot.Ticker, req.InsiderTrades, periodDays, now)
		bb := signals.SummarizeBuybacks(snapshot.Ticker, req.Buybacks, periodDays, snapshot.MarketCap(), now)
		insiderSummary, buybackSummary = &ins, &bb
		sentiment = valuation.CombineSentiments(sentiment,
			valuation.Sentiment(signals.CombinedSentiment(ins, bb)))
	}

	rangeMode := valuation.RangeMode(req.RangeMode)
	summary := valuation.Summarize(results, rangeMode)
	rating := valuation.OverallRating(summary, sentiment)

	detector := valuation.ValueTrapDetector{Industry: req.Industry}
	var trap *valuation.ValueTrapReport
	if detector.IsApplicable(&snapshot) {
		trap = detector.Detect(&snapshot)
	}

	rep := report.Build(&snapshot, companyType, results, summary, rating, trap)

	if persist && reportRepo != nil {
		if err := reportRepo.Save(r.Context(), rep); err != nil {
			// Persistence is best effort for the API path.
			fmt.Printf("[VALUATION] save report for %s failed: %v\n", rep.Ticker, err)
		}
	}

	resp := ReportResponse{Report: rep, InsiderSummary: insiderSummary, BuybackSummary: buybackSummary}
	if req.IncludeHTML {
		html, err := rep.RenderHTML()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp.HTML = html
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// HandleGetReport serves the stored report for a ticker.
func HandleGetReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	ticker := strings.TrimSpace(r.URL.Query().Get("ticker"))
	if ticker == "" {
		http.Error(w, "ticker query parameter is required", http.StatusBadRequest)
		return
	}
	if reportRepo == nil {
		http.Error(w, "report storage not configured", http.StatusServiceUnavailable)
		return
	}

	rep, err := reportRepo.Load(context.Background(), ticker)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rep)
}
