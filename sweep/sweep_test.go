package sweep

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
)

func unitParams() kinetics.Params {
	return kinetics.Params{KOn: 1, KOff: 1, KCatMax: 1, Efficiency: 1}
}

func basicSpec() *Spec {
	return &Spec{
		Dimensions: []Dimension{
			Fixed("total_target", 1.0, 2.0, 5.0),
			Fixed("total_enzyme", 0.5, 1.0, 2.0, 4.0),
			Fixed("efficiency", 0.1, 1.0),
		},
		Base:            unitParams(),
		Defaults:        DefaultCondition(),
		Times:           []float64{0, 1, 2, 5, 20},
		EquilibriumInit: true,
	}
}

func TestSpecValidate(t *testing.T) {
	if err := basicSpec().Validate(); err != nil {
		t.Fatalf("Valid spec rejected: %v", err)
	}

	var cerr *ConfigError
	for name, mutate := range map[string]func(*Spec){
		"no dimensions":   func(s *Spec) { s.Dimensions = nil },
		"empty dimension": func(s *Spec) { s.Dimensions[0].Values = nil },
		"duplicate axis":  func(s *Spec) { s.Dimensions[1].Name = "total_target" },
		"bad base params": func(s *Spec) { s.Base.KOn = 0 },
		"one time point":  func(s *Spec) { s.Times = []float64{0} },
		"nonzero start":   func(s *Spec) { s.Times = []float64{1, 2} },
		"non-increasing":  func(s *Spec) { s.Times = []float64{0, 2, 2} },
		"unknown method":  func(s *Spec) { s.Method = "lsoda" },
	} {
		s := basicSpec()
		mutate(s)
		if err := s.Validate(); !errors.As(err, &cerr) {
			t.Errorf("%s: expected ConfigError, got %v", name, err)
		}
	}
}

func TestEnumerateOrderAndCount(t *testing.T) {
	s := basicSpec()
	conds, err := s.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(conds) != 3*4*2 {
		t.Fatalf("Expected 24 conditions, got %d", len(conds))
	}

	// First dimension varies slowest, last fastest.
	if conds[0].TotalTarget != 1.0 || conds[0].TotalEnzyme != 0.5 || conds[0].Efficiency != 0.1 {
		t.Errorf("First condition wrong: %+v", conds[0])
	}
	if conds[1].Efficiency != 1.0 || conds[1].TotalEnzyme != 0.5 {
		t.Errorf("Second condition should advance last axis only: %+v", conds[1])
	}
	if conds[2].TotalEnzyme != 1.0 || conds[2].TotalTarget != 1.0 {
		t.Errorf("Third condition should advance middle axis: %+v", conds[2])
	}
	if conds[8].TotalTarget != 2.0 {
		t.Errorf("Ninth condition should advance first axis: %+v", conds[8])
	}
}

func TestSweepCardinality(t *testing.T) {
	s := basicSpec()
	eng := New(s, 1, nil)

	res, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantRows := 3 * 4 * 2 * len(s.Times) * 3 // dims x time points x species
	if len(res.Rows) != wantRows {
		t.Errorf("Expected %d rows, got %d", wantRows, len(res.Rows))
	}
	if res.Conditions != 24 {
		t.Errorf("Expected 24 conditions, got %d", res.Conditions)
	}
	if len(res.DistinctConditions()) != 24 {
		t.Errorf("Expected 24 distinct condition keys, got %d", len(res.DistinctConditions()))
	}
	if res.RunID == "" {
		t.Error("RunID should be set")
	}
}

func TestSweepDeterministicOrder(t *testing.T) {
	s := basicSpec()

	seq, err := New(s, 1, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Sequential run failed: %v", err)
	}
	par, err := New(s, 4, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Parallel run failed: %v", err)
	}

	if len(seq.Rows) != len(par.Rows) {
		t.Fatalf("Row counts differ: %d vs %d", len(seq.Rows), len(par.Rows))
	}
	for i := range seq.Rows {
		a, b := seq.Rows[i], par.Rows[i]
		if a.Key() != b.Key() || a.Time != b.Time || a.Species != b.Species ||
			a.Concentration != b.Concentration {
			t.Fatalf("Row %d differs between sequential and parallel runs:\n%+v\n%+v", i, a, b)
		}
	}
}

func TestMassConservationAndNonNegativity(t *testing.T) {
	s := basicSpec()
	res, err := New(s, 1, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Group rows per condition per time point.
	type ptKey struct {
		cond string
		time float64
	}
	byPoint := make(map[ptKey]map[string]float64)
	for _, r := range res.Rows {
		if r.Concentration < -1e-9 {
			t.Errorf("Negative concentration %g for %s", r.Concentration, r.Species)
		}
		k := ptKey{r.Key(), r.Time}
		if byPoint[k] == nil {
			byPoint[k] = make(map[string]float64)
		}
		byPoint[k][r.Species] = r.Concentration
	}

	conds, _ := s.Enumerate()
	for _, c := range conds {
		for _, tp := range s.Times {
			pt := byPoint[ptKey{c.Key(), tp}]
			// Enzyme is conserved at every time point.
			enz := pt["enzyme"] + pt["complex"]
			if math.Abs(enz-c.TotalEnzyme)/c.TotalEnzyme > 1e-6 {
				t.Errorf("Enzyme conservation violated for %s at t=%g: %g vs %g",
					c.Key(), tp, enz, c.TotalEnzyme)
			}
		}
		// Target pool only depletes (k_cat > 0, no synthesis).
		prev := math.Inf(1)
		for _, tp := range s.Times {
			pt := byPoint[ptKey{c.Key(), tp}]
			pool := pt["target"] + pt["complex"]
			if pool > prev*(1+1e-9) {
				t.Errorf("Target pool increased for %s at t=%g: %g -> %g", c.Key(), tp, prev, pool)
			}
			prev = pool
		}
	}
}

func TestTargetPoolConservedWithoutCatalysis(t *testing.T) {
	s := basicSpec()
	s.Base.KCatMax = 0

	res, err := New(s, 1, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	totals := make(map[string]map[float64]float64)
	for _, r := range res.Rows {
		if r.Species != "target" && r.Species != "complex" {
			continue
		}
		k := r.Key()
		if totals[k] == nil {
			totals[k] = make(map[float64]float64)
		}
		totals[k][r.Time] += r.Concentration
	}
	conds, _ := s.Enumerate()
	for _, c := range conds {
		for tp, pool := range totals[c.Key()] {
			if math.Abs(pool-c.TotalTarget)/c.TotalTarget > 1e-6 {
				t.Errorf("Target conservation violated for %s at t=%g: %g vs %g",
					c.Key(), tp, pool, c.TotalTarget)
			}
		}
	}
}

func TestTargetPoolTracksSynthesis(t *testing.T) {
	// With synthesis on and catalysis off, the target pool must grow as
	// total_target + synthesis*t while enzyme + complex stays conserved.
	p := unitParams()
	p.KCatMax = 0

	cond := DefaultCondition()
	cond.TotalTarget = 1
	cond.TotalEnzyme = 1
	cond.Synthesis = 0.05

	times := []float64{0, 1, 2, 5, 10, 20}
	rows, err := RunCondition(p, cond, times, true, nil, nil)
	if err != nil {
		t.Fatalf("RunCondition failed: %v", err)
	}

	targetPool := make(map[float64]float64)
	enzymePool := make(map[float64]float64)
	for _, r := range rows {
		switch r.Species {
		case "target", "complex":
			targetPool[r.Time] += r.Concentration
		}
		switch r.Species {
		case "enzyme", "complex":
			enzymePool[r.Time] += r.Concentration
		}
	}

	for _, tp := range times {
		want := cond.TotalTarget + cond.Synthesis*tp
		if math.Abs(targetPool[tp]-want)/want > 1e-6 {
			t.Errorf("Target pool at t=%g: %g, want %g", tp, targetPool[tp], want)
		}
		if math.Abs(enzymePool[tp]-cond.TotalEnzyme)/cond.TotalEnzyme > 1e-6 {
			t.Errorf("Enzyme pool at t=%g: %g, want %g", tp, enzymePool[tp], cond.TotalEnzyme)
		}
	}
}

func TestEndToEndScenario(t *testing.T) {
	// total_target=total_enzyme=1, all rates 1, equilibrium init:
	// complex(0)=(3-sqrt(5))/2~0.382, and the target pool depletes to ~0
	// by t=20 (no synthesis).
	s := &Spec{
		Dimensions:      []Dimension{Fixed("total_target", 1.0)},
		Base:            unitParams(),
		Defaults:        DefaultCondition(),
		Times:           []float64{0, 1, 2, 5, 20},
		EquilibriumInit: true,
	}
	s.Defaults.TotalEnzyme = 1.0

	res, err := New(s, 1, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	get := func(tp float64, species string) float64 {
		for _, r := range res.Rows {
			if r.Time == tp && r.Species == species {
				return r.Concentration
			}
		}
		t.Fatalf("Row for t=%g %s not found", tp, species)
		return 0
	}

	wantComplex := (3 - math.Sqrt(5)) / 2
	if got := get(0, "complex"); math.Abs(got-wantComplex) > 1e-6 {
		t.Errorf("complex(0)=%g, want %g", got, wantComplex)
	}
	if got := get(0, "target"); math.Abs(got-(1-wantComplex)) > 1e-6 {
		t.Errorf("target(0)=%g, want %g", got, 1-wantComplex)
	}
	if got := get(20, "target"); got > 5e-3 {
		t.Errorf("target(20)=%g, expected near-complete depletion", got)
	}
	if got := get(20, "target") + get(20, "complex"); got > 1e-2 {
		t.Errorf("target pool at t=20 is %g, expected near zero", got)
	}

	// initial_target must be the free target at t=0 on every row.
	for _, r := range res.Rows {
		if math.Abs(r.InitialTarget-(1-wantComplex)) > 1e-6 {
			t.Errorf("initial_target=%g on row %+v", r.InitialTarget, r)
		}
		if r.TimeInHours != r.Time/3600 {
			t.Errorf("time_in_hours mismatch on row %+v", r)
		}
	}
}

func TestRobustnessSweepViaScales(t *testing.T) {
	// The nine-variant robustness grid is an ordinary Cartesian product of
	// multiplier axes, no special casing.
	s := &Spec{
		Dimensions: []Dimension{
			Fixed("k_on_scale", 0.5, 1, 2),
			Fixed("k_cat_scale", 0.5, 1, 2),
		},
		Base:     unitParams(),
		Defaults: DefaultCondition(),
		Times:    []float64{0, 1},
	}
	s.Defaults.TotalTarget = 1
	s.Defaults.TotalEnzyme = 1

	res, err := New(s, 1, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Conditions != 9 {
		t.Errorf("Expected 9 variants, got %d", res.Conditions)
	}
	if len(res.Rows) != 9*2*3 {
		t.Errorf("Expected 54 rows, got %d", len(res.Rows))
	}
}

func TestDeriveHook(t *testing.T) {
	s := &Spec{
		Dimensions: []Dimension{
			CellTypes("oocyte", "somatic"),
			Fixed("mirna_count", 1e4),
		},
		Base:            unitParams(),
		Defaults:        DefaultCondition(),
		Times:           []float64{0, 1},
		EquilibriumInit: true,
		Derive: func(c *results.Condition) error {
			c.TotalEnzyme = kinetics.CountToNanomolar(c.Meta["mirna_count"], kinetics.CellVolume(c.CellType))
			c.TotalTarget = 1.0
			return nil
		},
	}

	conds, err := s.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(conds) != 2 {
		t.Fatalf("Expected 2 conditions, got %d", len(conds))
	}
	if conds[0].CellType != "oocyte" || conds[1].CellType != "somatic" {
		t.Fatalf("Cell types wrong: %+v", conds)
	}
	// Same molecule count is far more concentrated in the smaller cell.
	if conds[1].TotalEnzyme <= conds[0].TotalEnzyme {
		t.Errorf("Somatic enzyme %g should exceed oocyte %g",
			conds[1].TotalEnzyme, conds[0].TotalEnzyme)
	}
}

func TestParallelCollectsAllFailures(t *testing.T) {
	// Negative totals make the equilibrium solver fail for two of the
	// four conditions; both failures must be reported.
	s := &Spec{
		Dimensions:      []Dimension{Fixed("total_target", -1.0, 1.0, -2.0, 2.0)},
		Base:            unitParams(),
		Defaults:        DefaultCondition(),
		Times:           []float64{0, 1},
		EquilibriumInit: true,
	}
	s.Defaults.TotalEnzyme = 1

	_, err := New(s, 3, nil).Run(context.Background())
	if err == nil {
		t.Fatal("Expected failures for negative totals")
	}

	var perr *kinetics.PhysicalInfeasibilityError
	if !errors.As(err, &perr) {
		t.Errorf("Expected PhysicalInfeasibilityError in chain, got %v", err)
	}
	var cerr *ConditionError
	if !errors.As(err, &cerr) {
		t.Errorf("Expected ConditionError with condition context, got %v", err)
	}
}

func TestSequentialFailsFast(t *testing.T) {
	calls := 0
	s := &Spec{
		Dimensions:      []Dimension{Fixed("total_target", -1.0, 1.0)},
		Base:            unitParams(),
		Defaults:        DefaultCondition(),
		Times:           []float64{0, 1},
		EquilibriumInit: true,
	}
	s.Defaults.TotalEnzyme = 1

	eng := New(s, 1, nil)
	eng.BeforeCondition = func(int, results.Condition) { calls++ }

	if _, err := eng.Run(context.Background()); err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Sequential run should stop at first failure, simulated %d conditions", calls)
	}
}

func TestLogRangeSpacing(t *testing.T) {
	d := LogRange("total_enzyme", 0.01, 100, 5)
	want := []float64{0.01, 0.1, 1, 10, 100}
	for i, v := range d.Values {
		if math.Abs(v-want[i])/want[i] > 1e-12 {
			t.Errorf("Value %d = %g, want %g", i, v, want[i])
		}
	}
}

func TestCacheKeySensitivity(t *testing.T) {
	base := basicSpec().CacheKey()
	if base != basicSpec().CacheKey() {
		t.Fatal("CacheKey must be deterministic")
	}

	for name, mutate := range map[string]func(*Spec){
		"dimension value": func(s *Spec) { s.Dimensions[0].Values[0] = 1.5 },
		"base k_on":       func(s *Spec) { s.Base.KOn = 2 },
		"base k_cat_max":  func(s *Spec) { s.Base.KCatMax = 0.5 },
		"time grid":       func(s *Spec) { s.Times[2] = 3 },
		"equilibrium":     func(s *Spec) { s.EquilibriumInit = false },
		"method":          func(s *Spec) { s.Method = "rk45" },
	} {
		s := basicSpec()
		mutate(s)
		if s.CacheKey() == base {
			t.Errorf("%s: key should change", name)
		}
	}
}
