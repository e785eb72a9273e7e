package solver

import "math"

// stiffnessRatioThreshold is the derivative-spread ratio above which a
// condition is handed to the implicit integrator.
const stiffnessRatioThreshold = 1000.0

// ImplicitEuler integrates with the backward Euler method on a fixed step,
// solving the implicit equation by fixed-point iteration. Backward Euler
// is A-stable, so it stays stable on stiff conditions where the explicit
// methods would shrink their steps below Dtmin.
func ImplicitEuler(prob *Problem, opts *Options) (*Solution, error) {
	if opts == nil {
		opts = StiffOptions()
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}

	n := len(prob.U0)
	const maxFixedPoint = 50
	fixedPointTol := opts.Abstol * 10

	ucur := append([]float64(nil), prob.U0...)
	out := &Solution{
		T: append([]float64(nil), prob.Times...),
		U: make([][]float64, 0, len(prob.Times)),
	}
	out.U = append(out.U, append([]float64(nil), ucur...))

	du := make([]float64, n)
	unext := make([]float64, n)
	unew := make([]float64, n)

	tcur := prob.Times[0]
	nsteps := 0

	for seg := 1; seg < len(prob.Times); seg++ {
		tend := prob.Times[seg]

		for tcur < tend {
			if nsteps >= opts.MaxSteps {
				return nil, &IntegrationError{Time: tcur, Steps: nsteps, Reason: "step budget exhausted"}
			}

			dt := opts.Dt
			if tcur+dt >= tend {
				dt = tend - tcur
			}
			tnext := tcur + dt

			// Explicit Euler predictor as the starting guess.
			prob.F(tcur, ucur, du)
			for i := 0; i < n; i++ {
				unext[i] = ucur[i] + dt*du[i]
			}

			// Fixed-point iteration on u_{n+1} = u_n + dt*f(t_{n+1}, u_{n+1}).
			converged := false
			for iter := 0; iter < maxFixedPoint; iter++ {
				prob.F(tnext, unext, du)
				maxDiff := 0.0
				for i := 0; i < n; i++ {
					unew[i] = ucur[i] + dt*du[i]
					if d := math.Abs(unew[i] - unext[i]); d > maxDiff {
						maxDiff = d
					}
				}
				copy(unext, unew)
				if maxDiff < fixedPointTol {
					converged = true
					break
				}
			}
			if !converged {
				return nil, &IntegrationError{Time: tcur, Steps: nsteps, Reason: "fixed-point iteration did not converge"}
			}
			for i := 0; i < n; i++ {
				if math.IsNaN(unext[i]) || math.IsInf(unext[i], 0) {
					return nil, &IntegrationError{Time: tcur, Steps: nsteps, Reason: "state diverged (non-finite value)"}
				}
			}

			tcur = tnext
			copy(ucur, unext)
			nsteps++
		}

		out.U = append(out.U, append([]float64(nil), ucur...))
	}

	return out, nil
}

// SolveAuto integrates with Tsit5 and falls back to backward Euler when the
// initial derivative spread suggests a stiff condition.
func SolveAuto(prob *Problem, opts *Options) (*Solution, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := prob.Validate(); err != nil {
		return nil, err
	}
	if detectStiffness(prob) {
		stiff := *opts
		stiff.Adaptive = false
		return ImplicitEuler(prob, &stiff)
	}
	return Solve(prob, Tsit5(), opts)
}

// detectStiffness estimates stiffness from the ratio of the largest to
// smallest non-negligible derivative at the initial state. A coarse
// heuristic, but cheap: one derivative evaluation.
func detectStiffness(prob *Problem) bool {
	du := make([]float64, len(prob.U0))
	prob.F(prob.Times[0], prob.U0, du)

	maxDu := 0.0
	minDu := math.MaxFloat64
	for _, v := range du {
		a := math.Abs(v)
		if a > 1e-10 {
			if a > maxDu {
				maxDu = a
			}
			if a < minDu {
				minDu = a
			}
		}
	}
	if minDu < 1e-10 || maxDu < 1e-10 {
		return false
	}
	return maxDu/minDu > stiffnessRatioThreshold
}
