package sensitivity

import (
	"math"
	"testing"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/sweep"
)

// testTimes is a short horizon over which silencing is only partial, so
// parameter perturbations produce clearly distinguishable scores. Over a
// full day every variant silences to near zero.
func testTimes() []float64 {
	times := make([]float64, 13)
	for i := range times {
		times[i] = 120 * float64(i) / float64(len(times)-1)
	}
	return times
}

func testAnalyzer() *Analyzer {
	cond := sweep.DefaultCondition()
	cond.TotalTarget = 10
	cond.TotalEnzyme = 5
	return NewAnalyzer(kinetics.DefaultParams(), cond).WithTimes(testTimes())
}

func TestAnalyzeParams(t *testing.T) {
	a := testAnalyzer()

	res, err := a.AnalyzeParams(0.1)
	if err != nil {
		t.Fatal(err)
	}

	if math.IsNaN(res.Baseline) || res.Baseline < 0 || res.Baseline > 1 {
		t.Fatalf("baseline remaining fraction = %g, want [0, 1]", res.Baseline)
	}
	if len(res.Scores) != len(ParamNames) {
		t.Fatalf("scores for %d parameters, want %d", len(res.Scores), len(ParamNames))
	}
	for name, score := range res.Scores {
		if math.IsNaN(score) {
			t.Errorf("score for %s is NaN", name)
		}
		if got := res.Impact[name]; got != score-res.Baseline {
			t.Errorf("impact for %s = %g, want %g", name, got, score-res.Baseline)
		}
	}

	// Cutting cleavage tenfold leaves more target behind.
	if res.Impact["k_cat_max"] <= 0 {
		t.Errorf("k_cat_max impact = %g, expected slower cleavage to raise remaining fraction",
			res.Impact["k_cat_max"])
	}
	// Same for efficiency: it multiplies the cleavage rate.
	if res.Impact["efficiency"] <= 0 {
		t.Errorf("efficiency impact = %g, expected positive", res.Impact["efficiency"])
	}
}

func TestRankingSorted(t *testing.T) {
	a := testAnalyzer()

	res, err := a.AnalyzeParams(0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Ranking) != len(ParamNames) {
		t.Fatalf("ranking has %d entries, want %d", len(res.Ranking), len(ParamNames))
	}
	for i := 1; i < len(res.Ranking); i++ {
		if math.Abs(res.Ranking[i].Impact) > math.Abs(res.Ranking[i-1].Impact) {
			t.Errorf("ranking not sorted at %d: |%g| > |%g|", i,
				res.Ranking[i].Impact, res.Ranking[i-1].Impact)
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	a := testAnalyzer()

	seq, err := a.AnalyzeParams(0.5)
	if err != nil {
		t.Fatal(err)
	}
	par, err := a.AnalyzeParamsParallel(0.5)
	if err != nil {
		t.Fatal(err)
	}

	if seq.Baseline != par.Baseline {
		t.Errorf("baselines differ: %g vs %g", seq.Baseline, par.Baseline)
	}
	for _, name := range ParamNames {
		if seq.Scores[name] != par.Scores[name] {
			t.Errorf("%s: sequential %g, parallel %g", name, seq.Scores[name], par.Scores[name])
		}
	}
}

func TestGradientSigns(t *testing.T) {
	a := testAnalyzer()

	// Faster cleavage lowers the remaining fraction.
	gCat, err := a.Gradient("k_cat_max", 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if gCat >= 0 {
		t.Errorf("d(remaining)/d(k_cat_max scale) = %g, want negative", gCat)
	}

	// Faster unbinding lowers complex occupancy, so more target survives.
	// Scored on the absolute final concentration: the remaining fraction
	// also shifts its denominator when the equilibrium moves.
	cond := sweep.DefaultCondition()
	cond.TotalTarget = 10
	cond.TotalEnzyme = 5
	abs := NewAnalyzer(kinetics.DefaultParams(), cond).
		WithTimes(testTimes()).
		WithScorer(FinalTargetScorer())
	gOff, err := abs.Gradient("k_off", 0.05)
	if err != nil {
		t.Fatal(err)
	}
	if gOff <= 0 {
		t.Errorf("d(final target)/d(k_off scale) = %g, want positive", gOff)
	}
}

func TestUnknownParameter(t *testing.T) {
	a := testAnalyzer()
	if _, err := a.Gradient("k_nope", 0.01); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestFinalTargetScorer(t *testing.T) {
	cond := sweep.DefaultCondition()
	cond.TotalTarget = 10
	cond.TotalEnzyme = 5

	a := NewAnalyzer(kinetics.DefaultParams(), cond).WithScorer(FinalTargetScorer())
	res, err := a.AnalyzeParams(0.1)
	if err != nil {
		t.Fatal(err)
	}
	if res.Baseline < 0 || res.Baseline > 10 {
		t.Errorf("final target = %g, want within [0, total]", res.Baseline)
	}
}
