package valuation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"valueinvest/pkg/models"
)

func fullSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Ticker:             "FULL",
		Name:               "Full Data Co",
		CurrentPrice:       30,
		SharesOutstanding:  100,
		EPS:                2.5,
		BVPS:               15,
		Revenue:            1200,
		NetIncome:          250,
		FCF:                200,
		OperatingCashFlow:  280,
		EBIT:               320,
		Depreciation:       60,
		Capex:              80,
		CurrentAssets:      500,
		CurrentLiabilities: 200,
		TotalAssets:        2000,
		TotalLiabilities:   800,
		NetDebt:            100,
		NetWorkingCapital:  300,
		NetFixedAssets:     900,
		RetainedEarnings:   600,
		OperatingMargin:    26,
		GrossMargin:        45,
		TaxRate:            25,
		ROE:                16,
		GrowthRate:         12,
		DividendPerShare:   0.8,
		DividendYield:      2.7,
		DividendGrowthRate: 5,
		AAACorporateYield:  4.4,
		CostOfCapital:      9,
		DiscountRate:       9,
		TerminalGrowth:     2.5,
		GrowthRate1to5:     10,
		GrowthRate6to10:    5,
	}
}

func TestEngineRunAllNeverErrors(t *testing.T) {
	e := NewEngine()

	snapshots := []*models.Snapshot{
		fullSnapshot(),
		{Ticker: "EMPTY"},
		{Ticker: "PRICE", CurrentPrice: 10},
		{Ticker: "NEG", CurrentPrice: 10, EPS: -5, FCF: -100, TotalAssets: 100},
	}
	for _, s := range snapshots {
		results := e.RunAll(s)
		for _, r := range results {
			if r.Method == "" {
				t.Errorf("%s: result without method name", s.Ticker)
			}
		}
	}
}

func TestEngineRunAllRegistrationOrder(t *testing.T) {
	e := NewEngine()
	s := fullSnapshot()

	results := e.RunAll(s)
	order := e.Methods()

	// Results must appear in registration order, skipping only the
	// inapplicable methods.
	idx := 0
	for _, r := range results {
		found := false
		for ; idx < len(order); idx++ {
			if order[idx] == r.Method {
				found = true
				idx++
				break
			}
		}
		if !found {
			t.Fatalf("result %q out of registration order", r.Method)
		}
	}
}

func TestEngineDeterminism(t *testing.T) {
	e := NewEngine()
	s := fullSnapshot()

	a := e.RunAll(s)
	b := e.RunAll(s)

	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !reflect.DeepEqual(a[i], b[i]) {
			t.Errorf("method %s: results differ between identical runs", a[i].Method)
		}
	}
}

func TestEngineParamsChangeResults(t *testing.T) {
	s := &models.Snapshot{
		Ticker:       "PARM",
		CurrentPrice: 30,
		EPS:          2,
		GrowthRate:   10,
	}

	defaults := NewEngine()
	tuned := NewEngineWithParams(EngineParams{TargetPE: 25, FairPEG: 1.2})

	// GARP: 2 * 1.1^5 * 18 / 1.12^5 = 32.90 at the default exit
	// multiple, 45.69 at 25x.
	base, err := defaults.RunSingle(s, "garp")
	if err != nil {
		t.Fatal(err)
	}
	got, err := tuned.RunSingle(s, "garp")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(base.FairValue-32.90) > 0.01 {
		t.Errorf("default garp: expected 32.90, got %f", base.FairValue)
	}
	if math.Abs(got.FairValue-45.69) > 0.01 {
		t.Errorf("garp at 25x exit: expected 45.69, got %f", got.FairValue)
	}

	// PEG: fair P/E = growth * FairPEG, so 20 at 1.0 and 24 at 1.2.
	base, err = defaults.RunSingle(s, "peg")
	if err != nil {
		t.Fatal(err)
	}
	got, err = tuned.RunSingle(s, "peg")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(base.FairValue-20.00) > 0.01 || math.Abs(got.FairValue-24.00) > 0.01 {
		t.Errorf("peg: expected 20.00 then 24.00, got %f and %f", base.FairValue, got.FairValue)
	}
}

func TestEngineRunSingleUnknown(t *testing.T) {
	e := NewEngine()
	_, err := e.RunSingle(fullSnapshot(), "no_such_method")
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestEngineRunMultipleUnknownFailsFast(t *testing.T) {
	e := NewEngine()
	_, err := e.RunMultiple(fullSnapshot(), []string{"dcf", "bogus"})
	if !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestEngineCategoryRunners(t *testing.T) {
	e := NewEngine()
	s := fullSnapshot()

	cases := []struct {
		name  string
		run   func(*models.Snapshot) ([]Result, error)
		names []string
	}{
		{"bank", e.RunBank, BankMethods},
		{"dividend", e.RunDividend, DividendMethods},
		{"growth", e.RunGrowth, GrowthMethods},
		{"value", e.RunValue, ValueMethods},
	}
	for _, tc := range cases {
		results, err := tc.run(s)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(results) != len(tc.names) {
			t.Errorf("%s: expected %d results, got %d", tc.name, len(tc.names), len(results))
		}
		for i, r := range results {
			if r.Method != tc.names[i] {
				t.Errorf("%s: result %d is %s, want %s", tc.name, i, r.Method, tc.names[i])
			}
		}
	}
}

func TestMethodSubsetsRegistered(t *testing.T) {
	e := NewEngine()
	registered := map[string]bool{}
	for _, name := range e.Methods() {
		registered[name] = true
	}
	for _, subset := range [][]string{DefaultMethods, BankMethods, DividendMethods, GrowthMethods, ValueMethods} {
		for _, name := range subset {
			if !registered[name] {
				t.Errorf("subset method %q is not registered", name)
			}
		}
	}

	// Multiple-based comps belong to both the growth and value runs.
	for _, subset := range []struct {
		name  string
		names []string
	}{{"growth", GrowthMethods}, {"value", ValueMethods}} {
		found := false
		for _, name := range subset.names {
			if name == "ev_ebitda" {
				found = true
			}
		}
		if !found {
			t.Errorf("%s subset should include ev_ebitda", subset.name)
		}
	}
}

func TestEngineRunMultipleKeepsInapplicable(t *testing.T) {
	e := NewEngine()
	s := &models.Snapshot{Ticker: "NODIV", CurrentPrice: 10, EPS: 1, BVPS: 5}

	results, err := e.RunMultiple(s, []string{"graham_number", "gordon_ddm"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Verdict != VerdictNotApplicable {
		t.Errorf("requested but inapplicable method must surface Not-applicable, got %s", results[1].Verdict)
	}
}

func TestSnapshotNotMutated(t *testing.T) {
	e := NewEngine()
	s := fullSnapshot()
	before := *s

	e.RunAll(s)

	if !reflect.DeepEqual(*s, before) {
		t.Error("snapshot was mutated by a method")
	}
}
