package solver

// Options contains solver configuration parameters. Times are in seconds,
// matching the kinetics model.
type Options struct {
	Dt       float64 // Initial time step
	Dtmin    float64 // Minimum time step
	Dtmax    float64 // Maximum time step
	Abstol   float64 // Absolute error tolerance
	Reltol   float64 // Relative error tolerance
	MaxSteps int     // Per-problem accepted-step budget
	Adaptive bool    // Use adaptive step size control
}

// DefaultOptions returns tolerances tight enough that the conservation
// invariants of the three-species system hold to 1e-6 relative error over
// the multi-hour horizons the study sweeps use.
func DefaultOptions() *Options {
	return &Options{
		Dt:       1.0,
		Dtmin:    1e-10,
		Dtmax:    600.0,
		Abstol:   1e-9,
		Reltol:   1e-7,
		MaxSteps: 2000000,
		Adaptive: true,
	}
}

// AccurateOptions returns options for high-precision runs, for checking
// reference trajectories and publishing results.
func AccurateOptions() *Options {
	return &Options{
		Dt:       0.1,
		Dtmin:    1e-12,
		Dtmax:    60.0,
		Abstol:   1e-12,
		Reltol:   1e-9,
		MaxSteps: 10000000,
		Adaptive: true,
	}
}

// StiffOptions returns options for conditions whose rate constants differ
// by many orders of magnitude, where the explicit solver needs very small
// steps to stay stable.
func StiffOptions() *Options {
	return &Options{
		Dt:       0.01,
		Dtmin:    1e-12,
		Dtmax:    10.0,
		Abstol:   1e-10,
		Reltol:   1e-7,
		MaxSteps: 5000000,
		Adaptive: true,
	}
}
