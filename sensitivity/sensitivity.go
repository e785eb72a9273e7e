// Package sensitivity quantifies how the silencing outcome responds to
// changes in the kinetic parameters: which rate constant dominates the
// remaining target fraction, and how steeply the outcome varies around
// the measured values.
package sensitivity

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/solver"
	"github.com/martinmodrak/miRNA-sim/sweep"
)

// ParamNames are the kinetic parameters the analyzer can perturb.
var ParamNames = []string{"k_on", "k_off", "k_cat_max", "efficiency"}

// Scorer reduces one condition's trajectory to a single number.
type Scorer func(rows []results.Row) float64

// FinalTargetScorer returns the free target concentration at the last
// time point.
func FinalTargetScorer() Scorer {
	return func(rows []results.Row) float64 {
		final := math.NaN()
		lastT := math.Inf(-1)
		for i := range rows {
			r := &rows[i]
			if r.Species == "target" && r.Time >= lastT {
				lastT = r.Time
				final = r.Concentration
			}
		}
		return final
	}
}

// RemainingFractionScorer returns final free target divided by initial
// free target. Conditions that start with no free target score NaN.
func RemainingFractionScorer() Scorer {
	finalTarget := FinalTargetScorer()
	return func(rows []results.Row) float64 {
		if len(rows) == 0 || rows[0].InitialTarget == 0 {
			return math.NaN()
		}
		return finalTarget(rows) / rows[0].InitialTarget
	}
}

// Result holds a per-parameter perturbation analysis.
type Result struct {
	Baseline float64            // score with unperturbed parameters
	Scores   map[string]float64 // score with each parameter perturbed
	Impact   map[string]float64 // Scores[p] - Baseline
	Ranking  []RankedParam      // parameters by absolute impact, descending
}

// RankedParam pairs a parameter with its impact on the score.
type RankedParam struct {
	Name   string  `json:"name"`
	Impact float64 `json:"impact"`
}

// Analyzer perturbs kinetic parameters of a fixed condition and scores
// the resulting trajectories.
type Analyzer struct {
	base   kinetics.Params
	cond   results.Condition
	times  []float64
	opts   *solver.Options
	scorer Scorer
}

// NewAnalyzer builds an analyzer around a base parameter set and one
// sweep condition. The default scorer is the remaining target fraction
// over a 24 hour linear grid.
func NewAnalyzer(base kinetics.Params, cond results.Condition) *Analyzer {
	times := make([]float64, 25)
	for i := range times {
		times[i] = 24 * kinetics.SecondsPerHour * float64(i) / float64(len(times)-1)
	}
	return &Analyzer{
		base:   base,
		cond:   cond,
		times:  times,
		opts:   solver.DefaultOptions(),
		scorer: RemainingFractionScorer(),
	}
}

// WithTimes sets the output time grid in seconds.
func (a *Analyzer) WithTimes(times []float64) *Analyzer {
	a.times = times
	return a
}

// WithOptions sets the solver options.
func (a *Analyzer) WithOptions(opts *solver.Options) *Analyzer {
	a.opts = opts
	return a
}

// WithScorer sets the trajectory scorer.
func (a *Analyzer) WithScorer(s Scorer) *Analyzer {
	a.scorer = s
	return a
}

// score simulates one variant.
func (a *Analyzer) score(v variant) (float64, error) {
	rows, err := sweep.RunCondition(v.params, v.cond, a.times, true, nil, a.opts)
	if err != nil {
		return math.NaN(), err
	}
	return a.scorer(rows), nil
}

// variant is one perturbed simulation input. Efficiency lives on the
// condition, not the parameter set, because the runner applies the
// condition's efficiency to the effective parameters.
type variant struct {
	params kinetics.Params
	cond   results.Condition
}

func (a *Analyzer) baseline() variant {
	return variant{params: a.base, cond: a.cond}
}

// perturbed returns the baseline with one named parameter scaled.
func (a *Analyzer) perturbed(name string, factor float64) (variant, error) {
	v := a.baseline()
	switch name {
	case "k_on":
		v.params.KOn *= factor
	case "k_off":
		v.params.KOff *= factor
	case "k_cat_max":
		v.params.KCatMax *= factor
	case "efficiency":
		v.cond.Efficiency = math.Min(v.cond.Efficiency*factor, 1)
	default:
		return v, fmt.Errorf("unknown parameter: %s", name)
	}
	return v, nil
}

// AnalyzeParams scales each kinetic parameter by factor in turn and
// reports the change in score.
func (a *Analyzer) AnalyzeParams(factor float64) (*Result, error) {
	result := &Result{
		Scores: make(map[string]float64),
		Impact: make(map[string]float64),
	}

	baseline, err := a.score(a.baseline())
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	result.Baseline = baseline

	for _, name := range ParamNames {
		v, err := a.perturbed(name, factor)
		if err != nil {
			return nil, err
		}
		score, err := a.score(v)
		if err != nil {
			return nil, fmt.Errorf("perturb %s: %w", name, err)
		}
		result.Scores[name] = score
		result.Impact[name] = score - baseline
	}

	result.Ranking = rankByImpact(result.Impact)
	return result, nil
}

// AnalyzeParamsParallel runs the per-parameter perturbations concurrently.
func (a *Analyzer) AnalyzeParamsParallel(factor float64) (*Result, error) {
	result := &Result{
		Scores: make(map[string]float64),
		Impact: make(map[string]float64),
	}

	baseline, err := a.score(a.baseline())
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	result.Baseline = baseline

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, len(ParamNames))

	for i, name := range ParamNames {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			v, err := a.perturbed(name, factor)
			if err != nil {
				errs[i] = err
				return
			}
			score, err := a.score(v)
			if err != nil {
				errs[i] = fmt.Errorf("perturb %s: %w", name, err)
				return
			}
			mu.Lock()
			result.Scores[name] = score
			result.Impact[name] = score - baseline
			mu.Unlock()
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result.Ranking = rankByImpact(result.Impact)
	return result, nil
}

func rankByImpact(impact map[string]float64) []RankedParam {
	ranking := make([]RankedParam, 0, len(impact))
	for name, imp := range impact {
		ranking = append(ranking, RankedParam{Name: name, Impact: imp})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if math.Abs(ranking[i].Impact) != math.Abs(ranking[j].Impact) {
			return math.Abs(ranking[i].Impact) > math.Abs(ranking[j].Impact)
		}
		return ranking[i].Name < ranking[j].Name
	})
	return ranking
}

// Gradient estimates d(score)/d(log parameter) by central difference with
// relative step h: (f(p*(1+h)) - f(p*(1-h))) / (2h).
func (a *Analyzer) Gradient(name string, h float64) (float64, error) {
	up, err := a.perturbed(name, 1+h)
	if err != nil {
		return 0, err
	}
	down, err := a.perturbed(name, 1-h)
	if err != nil {
		return 0, err
	}

	scoreUp, err := a.score(up)
	if err != nil {
		return 0, fmt.Errorf("forward step: %w", err)
	}
	scoreDown, err := a.score(down)
	if err != nil {
		return 0, fmt.Errorf("backward step: %w", err)
	}

	return (scoreUp - scoreDown) / (2 * h), nil
}
