package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"valueinvest/pkg/core/report"
)

// ErrNotFound is returned when no report exists for a ticker.
var ErrNotFound = errors.New("report not found")

// ReportRepo stores the latest valuation report per ticker as a JSONB
// blob. History lives in the report's RunID; the table keeps only the
// newest run.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS valuation_reports (
//	  ticker TEXT PRIMARY KEY,
//	  run_id UUID NOT NULL,
//	  report_json JSONB NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type ReportRepo struct{}

func NewReportRepo() *ReportRepo {
	return &ReportRepo{}
}

// Save upserts the report keyed by ticker.
func (r *ReportRepo) Save(ctx context.Context, rep *report.Report) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query := `
		INSERT INTO valuation_reports (ticker, run_id, report_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (ticker)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			report_json = EXCLUDED.report_json,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := pool.Exec(ctx, query, rep.Ticker, rep.RunID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("save report for %s: %w", rep.Ticker, err)
	}
	return nil
}

// Load retrieves the latest report for a ticker.
func (r *ReportRepo) Load(ctx context.Context, ticker string) (*report.Report, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT report_json FROM valuation_reports WHERE ticker = $1`, ticker).Scan(&jsonData)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("load report for %s: %w", ticker, err)
	}

	var rep report.Report
	if err := json.Unmarshal(jsonData, &rep); err != nil {
		return nil, fmt.Errorf("unmarshal report for %s: %w", ticker, err)
	}
	return &rep, nil
}
