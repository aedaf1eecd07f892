// Package valuation implements the intrinsic-value engine: a registry of
// independent valuation methods applied uniformly to a financial Snapshot,
// producing comparable fair-value estimates with an aggregated verdict.
package valuation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"valueinvest/pkg/models"
)

// Verdict classifies a fair value against the current price.
type Verdict string

const (
	VerdictUndervalued   Verdict = "Undervalued"
	VerdictFair          Verdict = "Fair"
	VerdictOvervalued    Verdict = "Overvalued"
	VerdictPricedIn      Verdict = "Priced-in"
	VerdictNotApplicable Verdict = "Not-applicable"
)

// Applicability describes how well a method's inputs were satisfied.
type Applicability string

const (
	Applicable    Applicability = "Applicable"
	Limited       Applicability = "Limited"
	NotApplicable Applicability = "Not Applicable"
)

// Confidence levels attached to results.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
	ConfidenceNA     = "N/A"
)

// FairThresholdPct is the premium/discount band treated as fairly priced.
const FairThresholdPct = 15.0

// ErrUnknownMethod is returned by the engine when a caller requests a
// method name that was never registered. This is the only error that
// propagates out of the engine; data problems are absorbed into Results.
var ErrUnknownMethod = errors.New("unknown valuation method")

// Range holds a low/base/high sensitivity band for a fair value.
type Range struct {
	Low  float64 `json:"low"`
	Base float64 `json:"base"`
	High float64 `json:"high"`
}

// Pct returns the low-to-high width as a percentage of the base.
func (r Range) Pct() float64 {
	if r.Base == 0 {
		return 0
	}
	return (r.High - r.Low) / r.Base * 100
}

// Result is the output of a single valuation method. FairValue is 0 and
// Verdict is VerdictNotApplicable when the method could not produce an
// estimate; the reason is carried in Analysis and MissingFields.
type Result struct {
	Method          string                 `json:"method"`
	FairValue       float64                `json:"fair_value"`
	CurrentPrice    float64                `json:"current_price"`
	PremiumDiscount float64                `json:"premium_discount"`
	Verdict         Verdict                `json:"verdict"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Components      map[string]float64     `json:"components,omitempty"`
	Analysis        []string               `json:"analysis,omitempty"`
	Confidence      string                 `json:"confidence"`
	FairValueRange  *Range                 `json:"fair_value_range,omitempty"`
	MissingFields   []string               `json:"missing_fields,omitempty"`
	Applicability   Applicability          `json:"applicability"`
}

// MarginOfSafety returns the gap between fair value and price as a
// percentage of fair value, or 0 when there is no fair value.
func (r Result) MarginOfSafety() float64 {
	if r.FairValue <= 0 {
		return 0
	}
	return (r.FairValue - r.CurrentPrice) / r.FairValue * 100
}

// IsReliable reports whether the result has a usable fair value with no
// missing critical inputs.
func (r Result) IsReliable() bool {
	return len(r.MissingFields) == 0 && r.FairValue > 0
}

// Method is the capability contract every valuation methodology
// implements. Calculate must be a pure function of the snapshot:
// no I/O, no retained state, deterministic for identical input.
// Mathematically undefined cases (zero denominators, negative values
// under square roots) are captured into a not-applicable Result rather
// than escaping as errors.
type Method interface {
	Name() string
	IsApplicable(s *models.Snapshot) bool
	Calculate(s *models.Snapshot) Result
}

// assess maps a fair value against the current price onto a verdict,
// using the symmetric ±15% fair band.
func assess(fairValue, currentPrice float64) Verdict {
	if fairValue <= 0 || currentPrice <= 0 {
		return VerdictNotApplicable
	}
	premium := (fairValue - currentPrice) / currentPrice * 100
	switch {
	case premium > FairThresholdPct:
		return VerdictUndervalued
	case premium < -FairThresholdPct:
		return VerdictOvervalued
	default:
		return VerdictFair
	}
}

// premiumDiscount is (fair/price - 1) * 100, defined only for positive prices.
func premiumDiscount(fairValue, currentPrice float64) float64 {
	if currentPrice <= 0 || fairValue <= 0 {
		return 0
	}
	return (fairValue/currentPrice - 1) * 100
}

// notApplicableResult builds the standardized result for a method that
// cannot run on the given snapshot.
func notApplicableResult(method string, s *models.Snapshot, reason string, missing []string) Result {
	return Result{
		Method:        method,
		CurrentPrice:  s.CurrentPrice,
		Verdict:       VerdictNotApplicable,
		Confidence:    ConfidenceNA,
		Applicability: NotApplicable,
		MissingFields: missing,
		Analysis:      []string{"Cannot calculate: " + reason},
		Details:       map[string]interface{}{"reason": reason},
	}
}

// fieldReq names one required input and its value in the snapshot.
type fieldReq struct {
	name  string
	value float64
}

// requireFields checks named inputs for presence (non-zero) in order and
// returns the missing ones formatted for diagnostics. Order is stable so
// repeated calculations yield identical results.
func requireFields(reqs ...fieldReq) []string {
	var missing []string
	for _, req := range reqs {
		if req.value == 0 {
			missing = append(missing, req.name)
		}
	}
	return missing
}

func missingReason(missing []string) string {
	return "missing required data: " + strings.Join(missing, ", ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func pctf(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
