// Package solver implements adaptive Runge-Kutta integration for the
// silencing kinetics ODE system. The rate constants span several orders of
// magnitude, so the solvers use embedded error estimation with step-size
// control, with an implicit fallback for stiff conditions.
package solver

import (
	"fmt"
	"math"
)

// Func evaluates the right-hand side du/dt at time t and state u, writing
// the result into du. Implementations must not retain u or du.
type Func func(t float64, u, du []float64)

// Problem is an initial value problem with a fixed output grid. Times must
// be strictly increasing; the first entry is the initial time and the
// initial state is reported there unchanged.
type Problem struct {
	F     Func
	U0    []float64
	Times []float64
}

// Validate checks the output grid and initial state before integration.
func (p *Problem) Validate() error {
	if p.F == nil {
		return fmt.Errorf("problem has no derivative function")
	}
	if len(p.U0) == 0 {
		return fmt.Errorf("problem has empty initial state")
	}
	if len(p.Times) == 0 {
		return fmt.Errorf("problem has empty time grid")
	}
	for i := 1; i < len(p.Times); i++ {
		if p.Times[i] <= p.Times[i-1] {
			return fmt.Errorf("time grid must be strictly increasing: t[%d]=%g <= t[%d]=%g",
				i, p.Times[i], i-1, p.Times[i-1])
		}
	}
	return nil
}

// Solution holds the state at every requested output time.
type Solution struct {
	T []float64
	U [][]float64
}

// At returns the state at output index i.
func (s *Solution) At(i int) []float64 {
	if i < 0 || i >= len(s.U) {
		return nil
	}
	return s.U[i]
}

// Final returns the state at the last output time.
func (s *Solution) Final() []float64 {
	if len(s.U) == 0 {
		return nil
	}
	return s.U[len(s.U)-1]
}

// Method is an explicit Runge-Kutta method given by its Butcher tableau
// with embedded error-estimate weights.
type Method struct {
	Name  string
	Order int
	C     []float64
	A     [][]float64
	B     []float64
	Bhat  []float64
}

// IntegrationError reports integrator divergence or budget exhaustion.
// It is fatal for the condition being simulated and is never replaced by a
// placeholder result.
type IntegrationError struct {
	Time   float64
	Steps  int
	Reason string
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at t=%g after %d steps: %s", e.Time, e.Steps, e.Reason)
}

// Solve integrates the problem with the given method, producing the state
// at exactly the requested output times. A nil method selects Tsit5, a nil
// opts selects DefaultOptions.
func Solve(prob *Problem, m *Method, opts *Options) (*Solution, error) {
	if m == nil {
		m = Tsit5()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}

	n := len(prob.U0)
	stages := len(m.C)

	ucur := append([]float64(nil), prob.U0...)
	out := &Solution{
		T: append([]float64(nil), prob.Times...),
		U: make([][]float64, 0, len(prob.Times)),
	}
	out.U = append(out.U, append([]float64(nil), ucur...))

	k := make([][]float64, stages)
	for i := range k {
		k[i] = make([]float64, n)
	}
	ustage := make([]float64, n)
	unext := make([]float64, n)

	tcur := prob.Times[0]
	dtcur := opts.Dt
	nsteps := 0

	for seg := 1; seg < len(prob.Times); seg++ {
		tend := prob.Times[seg]

		for tcur < tend {
			if nsteps >= opts.MaxSteps {
				return nil, &IntegrationError{Time: tcur, Steps: nsteps, Reason: "step budget exhausted"}
			}

			// Never overshoot the next output time.
			dt := dtcur
			if tcur+dt >= tend {
				dt = tend - tcur
			}

			// Runge-Kutta stages
			prob.F(tcur, ucur, k[0])
			for stage := 1; stage < stages; stage++ {
				copy(ustage, ucur)
				for j := 0; j < stage; j++ {
					aj := 0.0
					if len(m.A) > stage && len(m.A[stage]) > j {
						aj = m.A[stage][j]
					}
					if aj != 0 {
						scale := dt * aj
						for i := 0; i < n; i++ {
							ustage[i] += scale * k[j][i]
						}
					}
				}
				prob.F(tcur+m.C[stage]*dt, ustage, k[stage])
			}

			copy(unext, ucur)
			for j := range m.B {
				if m.B[j] != 0 {
					scale := dt * m.B[j]
					for i := 0; i < n; i++ {
						unext[i] += scale * k[j][i]
					}
				}
			}

			// Embedded error estimate
			errNorm := 0.0
			if opts.Adaptive {
				for i := 0; i < n; i++ {
					est := 0.0
					for j := range m.Bhat {
						est += dt * m.Bhat[j] * k[j][i]
					}
					scale := opts.Abstol + opts.Reltol*math.Max(math.Abs(ucur[i]), math.Abs(unext[i]))
					if scale == 0 {
						scale = opts.Abstol
					}
					if v := math.Abs(est) / scale; v > errNorm {
						errNorm = v
					}
				}
			}

			for i := 0; i < n; i++ {
				if math.IsNaN(unext[i]) || math.IsInf(unext[i], 0) {
					return nil, &IntegrationError{Time: tcur, Steps: nsteps, Reason: "state diverged (non-finite value)"}
				}
			}

			if !opts.Adaptive || errNorm <= 1.0 {
				tcur += dt
				copy(ucur, unext)
				nsteps++

				if opts.Adaptive && errNorm > 0 {
					factor := 0.9 * math.Pow(1.0/errNorm, 1.0/float64(m.Order+1))
					factor = math.Min(factor, 5.0)
					dtcur = math.Min(opts.Dtmax, math.Max(opts.Dtmin, dtcur*factor))
				}
			} else {
				// Rejected at the minimum step size: the problem is not
				// converging and must be surfaced, not ground through.
				if dt <= opts.Dtmin {
					return nil, &IntegrationError{Time: tcur, Steps: nsteps,
						Reason: fmt.Sprintf("error %.3g above tolerance at minimum step size %g", errNorm, opts.Dtmin)}
				}
				factor := 0.9 * math.Pow(1.0/errNorm, 1.0/float64(m.Order+1))
				factor = math.Max(factor, 0.1)
				dtcur = math.Max(opts.Dtmin, dt*factor)
			}
		}

		out.U = append(out.U, append([]float64(nil), ucur...))
	}

	return out, nil
}
