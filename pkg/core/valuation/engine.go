package valuation

import (
	"fmt"

	"valueinvest/pkg/models"
)

// Method name subsets by company archetype.
var (
	DefaultMethods = []string{
		"graham_number", "graham_formula", "ncav", "dcf", "reverse_dcf",
		"epv", "gordon_ddm", "two_stage_ddm", "peg", "garp",
		"magic_formula", "ev_ebitda", "owner_earnings", "altman_z_score",
	}
	BankMethods = []string{
		"graham_number", "bank_pb", "residual_income", "gordon_ddm",
		"two_stage_ddm", "altman_z_score",
	}
	DividendMethods = []string{
		"gordon_ddm", "two_stage_ddm", "graham_number", "graham_formula",
		"epv", "owner_earnings",
	}
	GrowthMethods = []string{
		"dcf", "reverse_dcf", "peg", "garp", "rule_of_40",
		"graham_formula", "magic_formula", "ev_ebitda",
	}
	ValueMethods = []string{
		"graham_number", "ncav", "epv", "graham_formula",
		"ev_ebitda", "owner_earnings", "altman_z_score",
	}
)

// Engine holds the registered valuation methods and runs them against
// snapshots. Methods are pure functions of the snapshot, so the engine
// never caches: every call recomputes.
type Engine struct {
	methods map[string]Method
	order   []string
}

// EngineParams are the analyst-tunable parameters of the methods that
// carry one. Zero values fall back to each method's default.
type EngineParams struct {
	CostOfEquity      float64 // percentage points, bank_pb and residual_income
	SustainableGrowth float64 // percentage points, bank_pb
	FairPEG           float64 // ratio, peg
	TargetPE          float64 // exit multiple, garp
}

// NewEngine builds an engine with the full method set registered at
// its defaults.
func NewEngine() *Engine {
	return NewEngineWithParams(EngineParams{})
}

// NewEngineWithParams builds the full engine with method parameters
// taken from the supplied assumptions.
func NewEngineWithParams(p EngineParams) *Engine {
	e := &Engine{methods: make(map[string]Method)}
	for _, m := range []Method{
		GrahamNumber{},
		GrahamFormula{},
		NCAV{},
		DCF{},
		ReverseDCF{},
		EPV{},
		GordonDDM{},
		TwoStageDDM{},
		PEG{FairPEG: p.FairPEG},
		GARP{TargetPE: p.TargetPE},
		RuleOf40{},
		BankPB{CostOfEquity: p.CostOfEquity, SustainableGrowth: p.SustainableGrowth},
		ResidualIncome{CostOfEquity: p.CostOfEquity},
		MagicFormula{},
		EVEBITDA{},
		OwnerEarnings{},
		PiotroskiFScore{},
		AltmanZScore{},
		ValueTrapDetector{},
	} {
		e.Register(m)
	}
	return e
}

// Register adds a method, replacing any method of the same name while
// preserving first-registration order.
func (e *Engine) Register(m Method) {
	name := m.Name()
	if _, exists := e.methods[name]; !exists {
		e.order = append(e.order, name)
	}
	e.methods[name] = m
}

// Methods returns the registered method names in registration order.
func (e *Engine) Methods() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// RunSingle executes one method by name.
func (e *Engine) RunSingle(s *models.Snapshot, name string) (Result, error) {
	m, ok := e.methods[name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
	return m.Calculate(s), nil
}

// RunMultiple executes the named methods in the given order. Unknown
// names fail fast; methods that cannot apply to the snapshot still
// produce a Not-applicable result with diagnostics rather than being
// dropped, so callers see why a requested method yielded nothing.
func (e *Engine) RunMultiple(s *models.Snapshot, names []string) ([]Result, error) {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		m, ok := e.methods[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
		}
		if !m.IsApplicable(s) {
			results = append(results, notApplicableResult(name, s, "method not applicable to this snapshot", nil))
			continue
		}
		results = append(results, m.Calculate(s))
	}
	return results, nil
}

// RunAll executes every registered method whose applicability check
// passes, in registration order.
func (e *Engine) RunAll(s *models.Snapshot) []Result {
	var results []Result
	for _, name := range e.order {
		m := e.methods[name]
		if !m.IsApplicable(s) {
			continue
		}
		results = append(results, m.Calculate(s))
	}
	return results
}

// RunBank runs the bank-archetype subset.
func (e *Engine) RunBank(s *models.Snapshot) ([]Result, error) {
	return e.RunMultiple(s, BankMethods)
}

// RunDividend runs the dividend-archetype subset.
func (e *Engine) RunDividend(s *models.Snapshot) ([]Result, error) {
	return e.RunMultiple(s, DividendMethods)
}

// RunGrowth runs the growth-archetype subset.
func (e *Engine) RunGrowth(s *models.Snapshot) ([]Result, error) {
	return e.RunMultiple(s, GrowthMethods)
}

// RunValue runs the value-archetype subset.
func (e *Engine) RunValue(s *models.Snapshot) ([]Result, error) {
	return e.RunMultiple(s, ValueMethods)
}

// RunForType runs the method subset matching a classified company type.
func (e *Engine) RunForType(s *models.Snapshot, companyType CompanyType) ([]Result, error) {
	switch companyType {
	case CompanyBank:
		return e.RunBank(s)
	case CompanyDividend:
		return e.RunDividend(s)
	case CompanyGrowth:
		return e.RunGrowth(s)
	default:
		return e.RunValue(s)
	}
}
