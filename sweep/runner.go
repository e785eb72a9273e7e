package sweep

import (
	"fmt"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/solver"
)

// negativeTol is the numerical slack below zero tolerated in returned
// concentrations; anything more negative is an integration defect and is
// surfaced as an error rather than clamped away.
const negativeTol = 1e-9

// ConditionError wraps a failure during one condition's simulation with
// the full condition tuple, so the failure is diagnosable without
// re-running the sweep.
type ConditionError struct {
	Condition results.Condition
	Err       error
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("condition %s: %v", e.Condition.Key(), e.Err)
}

func (e *ConditionError) Unwrap() error { return e.Err }

// RunCondition simulates a single condition: builds the effective
// parameter set, computes the initial state (equilibrium or cold start),
// integrates, and emits one row per (time point, species), each tagged
// with the whole condition tuple. A nil method integrates with automatic
// stiffness handling.
func RunCondition(base kinetics.Params, cond results.Condition, times []float64,
	equilibriumInit bool, method *solver.Method, opts *solver.Options) ([]results.Row, error) {

	p := base.Scaled(cond.KOnScale, cond.KOffScale, cond.KCatScale)
	p.Efficiency = cond.Efficiency

	var init kinetics.State
	if equilibriumInit {
		st, err := kinetics.Equilibrium(cond.TotalTarget, cond.TotalEnzyme, p.KD())
		if err != nil {
			return nil, &ConditionError{Condition: cond, Err: err}
		}
		init = st
	} else {
		init = kinetics.State{Target: cond.TotalTarget, Enzyme: cond.TotalEnzyme, Complex: 0}
	}

	sys := kinetics.NewSystem(p, cond.Synthesis)
	prob := &solver.Problem{
		F:     sys.Derivatives,
		U0:    init.Vec(),
		Times: times,
	}

	var sol *solver.Solution
	var err error
	if method == nil {
		sol, err = solver.SolveAuto(prob, opts)
	} else {
		sol, err = solver.Solve(prob, method, opts)
	}
	if err != nil {
		return nil, &ConditionError{Condition: cond, Err: err}
	}

	rows := make([]results.Row, 0, len(times)*kinetics.NumSpecies)
	for ti, t := range sol.T {
		u := sol.U[ti]
		for si := 0; si < kinetics.NumSpecies; si++ {
			conc := u[si]
			if conc < -negativeTol {
				return nil, &ConditionError{
					Condition: cond,
					Err: fmt.Errorf("negative %s concentration %g at t=%g",
						kinetics.SpeciesNames[si], conc, t),
				}
			}
			if conc < 0 {
				conc = 0
			}
			rows = append(rows, results.Row{
				Condition:     cond,
				Time:          t,
				Species:       kinetics.SpeciesNames[si],
				Concentration: conc,
				TimeInHours:   t / kinetics.SecondsPerHour,
				InitialTarget: init.Target,
			})
		}
	}
	return rows, nil
}
