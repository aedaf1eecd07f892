// Package report assembles valuation runs into a markdown report and
// renders it for the API.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"valueinvest/pkg/core/utils"
	"valueinvest/pkg/core/valuation"
	"valueinvest/pkg/models"
)

// Report is one complete analysis run for a ticker.
type Report struct {
	RunID       string    `json:"run_id"`
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	CompanyType string    `json:"company_type"`
	GeneratedAt time.Time `json:"generated_at"`

	Results []valuation.Result         `json:"results"`
	Summary valuation.Summary          `json:"summary"`
	Rating  valuation.Rating           `json:"rating"`
	Trap    *valuation.ValueTrapReport `json:"trap,omitempty"`

	Markdown string `json:"markdown"`
}

// Build assembles the report and renders its markdown body.
func Build(s *models.Snapshot, companyType valuation.CompanyType, results []valuation.Result, summary valuation.Summary, rating valuation.Rating, trap *valuation.ValueTrapReport) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		Ticker:      s.Ticker,
		Name:        s.Name,
		CompanyType: string(companyType),
		GeneratedAt: time.Now(),
		Results:     results,
		Summary:     summary,
		Rating:      rating,
		Trap:        trap,
	}
	r.Markdown = r.renderMarkdown(s)
	return r
}

func (r *Report) renderMarkdown(s *models.Snapshot) string {
	var b strings.Builder

	title := r.Ticker
	if r.Name != "" {
		title = fmt.Sprintf("%s (%s)", r.Name, r.Ticker)
	}
	fmt.Fprintf(&b, "# Valuation Report: %s\n\n", title)
	fmt.Fprintf(&b, "- Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "- Company type: %s\n", r.CompanyType)
	fmt.Fprintf(&b, "- Current price: %.2f\n", s.CurrentPrice)
	fmt.Fprintf(&b, "- Rating: **%s**\n\n", r.Rating.Label)

	b.WriteString("## Methods\n\n")
	b.WriteString("| Method | Fair Value | Premium | Verdict | Confidence |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, res := range r.Results {
		fair := "N/A"
		premium := "--"
		if res.FairValue > 0 {
			fair = fmt.Sprintf("%.2f", res.FairValue)
			premium = fmt.Sprintf("%+.1f%%", res.PremiumDiscount)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			res.Method, fair, premium, res.Verdict, res.Confidence)
	}
	b.WriteString("\n")

	if r.Summary.ReliableCount > 0 {
		b.WriteString("## Summary\n\n")
		fmt.Fprintf(&b, "- Reliable methods: %d of %d\n", r.Summary.ReliableCount, r.Summary.TotalMethods)
		fmt.Fprintf(&b, "- Average fair value: %.2f (median %.2f)\n", r.Summary.AverageValue, r.Summary.MedianValue)
		fmt.Fprintf(&b, "- Fair value range (%s): %.2f to %.2f\n", r.Summary.RangeMode, r.Summary.RangeLow, r.Summary.RangeHigh)
		fmt.Fprintf(&b, "- Average premium/discount: %+.1f%%\n", r.Summary.AveragePremiumDiscount)
		fmt.Fprintf(&b, "- Verdicts: %d undervalued, %d fair, %d overvalued\n\n",
			r.Summary.UndervaluedCount, r.Summary.FairCount, r.Summary.OvervaluedCount)
	}

	if r.Trap != nil {
		b.WriteString("## Value Trap Screen\n\n")
		fmt.Fprintf(&b, "- Risk: **%s** (score %.0f)\n", r.Trap.OverallRisk, r.Trap.TrapScore)
		fmt.Fprintf(&b, "- %s\n", r.Trap.Recommendation)
		for _, issue := range r.Trap.CriticalIssues {
			fmt.Fprintf(&b, "- Critical: %s\n", issue)
		}
		for _, warning := range r.Trap.Warnings {
			fmt.Fprintf(&b, "- Warning: %s\n", warning)
		}
		b.WriteString("\n")
	}

	if len(r.Rating.Notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, note := range r.Rating.Notes {
			fmt.Fprintf(&b, "- %s\n", note)
		}
	}

	return b.String()
}

// renderer carries the table extension for the methods table.
var renderer = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts the report markdown to HTML.
func (r *Report) RenderHTML() (string, error) {
	md := utils.CleanMarkdown(r.Markdown)
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render report markdown: %w", err)
	}
	return buf.String(), nil
}
