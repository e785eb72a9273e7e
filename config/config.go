// Package config loads sweep specifications from YAML files and turns
// them into runnable sweep specs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/solver"
	"github.com/martinmodrak/miRNA-sim/sweep"
)

// Config is the on-disk sweep specification.
type Config struct {
	BaseParams kinetics.Params `yaml:"base_params"`
	Times      TimeGrid        `yaml:"times"`
	Defaults   Defaults        `yaml:"defaults"`
	Dimensions []DimensionSpec `yaml:"dimensions"`

	EquilibriumInit bool   `yaml:"equilibrium_init"`
	Method          string `yaml:"method"`
	// Derive selects a named post-processing rule applied to every
	// enumerated condition; see derivations in this package.
	Derive string `yaml:"derive"`

	Solver *SolverConfig `yaml:"solver"`
}

// TimeGrid specifies the output time points, either explicitly in seconds
// or as a spaced grid over [0, end_hours].
type TimeGrid struct {
	Seconds []float64 `yaml:"seconds"`

	EndHours   float64 `yaml:"end_hours"`
	Points     int     `yaml:"points"`
	Spacing    string  `yaml:"spacing"`     // "linear" (default) or "log"
	FirstHours float64 `yaml:"first_hours"` // first nonzero point for log spacing
}

// Defaults seeds every condition before the dimension axes are applied.
type Defaults struct {
	CellType    string  `yaml:"cell_type"`
	TotalTarget float64 `yaml:"total_target"`
	TotalEnzyme float64 `yaml:"total_enzyme"`
	Efficiency  float64 `yaml:"efficiency"`
	Synthesis   float64 `yaml:"synthesis"`
}

// DimensionSpec is one sweep axis: explicit values, a spaced numeric
// range, or categorical labels.
type DimensionSpec struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
	Labels []string  `yaml:"labels"`

	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Points  int     `yaml:"points"`
	Spacing string  `yaml:"spacing"` // "linear" (default) or "log"
}

// SolverConfig overrides integrator tolerances.
type SolverConfig struct {
	Dt       float64 `yaml:"dt"`
	Dtmin    float64 `yaml:"dtmin"`
	Dtmax    float64 `yaml:"dtmax"`
	Abstol   float64 `yaml:"abstol"`
	Reltol   float64 `yaml:"reltol"`
	MaxSteps int     `yaml:"max_steps"`
}

// DefaultConfig returns a configuration with the study's base kinetic
// parameters and a 24-hour linear grid.
func DefaultConfig() *Config {
	return &Config{
		BaseParams: kinetics.DefaultParams(),
		Times:      TimeGrid{EndHours: 24, Points: 25, Spacing: "linear"},
		Defaults: Defaults{
			Efficiency: 1,
		},
		EquilibriumInit: true,
	}
}

// Load reads a YAML sweep specification, applying defaults for fields the
// file omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Spec converts the configuration into a validated sweep spec.
func (c *Config) Spec() (*sweep.Spec, error) {
	times, err := c.Times.Build()
	if err != nil {
		return nil, err
	}

	dims := make([]sweep.Dimension, 0, len(c.Dimensions))
	for _, d := range c.Dimensions {
		dim, err := d.Build()
		if err != nil {
			return nil, err
		}
		dims = append(dims, dim)
	}

	defaults := sweep.DefaultCondition()
	defaults.CellType = c.Defaults.CellType
	defaults.TotalTarget = c.Defaults.TotalTarget
	defaults.TotalEnzyme = c.Defaults.TotalEnzyme
	if c.Defaults.Efficiency > 0 {
		defaults.Efficiency = c.Defaults.Efficiency
	}
	defaults.Synthesis = c.Defaults.Synthesis

	var derive func(*results.Condition) error
	if c.Derive != "" {
		derive = derivations[c.Derive]
		if derive == nil {
			return nil, &sweep.ConfigError{Reason: fmt.Sprintf("unknown derivation %q", c.Derive)}
		}
	}

	var opts *solver.Options
	if c.Solver != nil {
		opts = c.Solver.Build()
	}

	s := &sweep.Spec{
		Dimensions:      dims,
		Base:            c.BaseParams,
		Defaults:        defaults,
		Times:           times,
		EquilibriumInit: c.EquilibriumInit,
		Method:          c.Method,
		Opts:            opts,
		Derive:          derive,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Build expands the time grid into seconds.
func (g TimeGrid) Build() ([]float64, error) {
	if len(g.Seconds) > 0 {
		return append([]float64(nil), g.Seconds...), nil
	}
	if g.EndHours <= 0 || g.Points < 2 {
		return nil, &sweep.ConfigError{Reason: "time grid needs end_hours > 0 and points >= 2"}
	}
	end := g.EndHours * kinetics.SecondsPerHour

	switch g.Spacing {
	case "", "linear":
		return linspace(0, end, g.Points), nil
	case "log":
		if g.Points < 3 {
			return nil, &sweep.ConfigError{Reason: "log time grid needs points >= 3"}
		}
		first := g.FirstHours * kinetics.SecondsPerHour
		if first <= 0 {
			first = end / 1000
		}
		times := make([]float64, 0, g.Points)
		times = append(times, 0)
		times = append(times, sweep.LogRange("t", first, end, g.Points-1).Values...)
		return times, nil
	default:
		return nil, &sweep.ConfigError{Reason: fmt.Sprintf("unknown time spacing %q", g.Spacing)}
	}
}

// Build expands the axis specification into a dimension.
func (d DimensionSpec) Build() (sweep.Dimension, error) {
	switch {
	case len(d.Labels) > 0:
		return sweep.Dimension{Name: d.Name, Labels: d.Labels}, nil
	case len(d.Values) > 0:
		return sweep.Dimension{Name: d.Name, Values: d.Values}, nil
	case d.Points > 0:
		if d.Points > 1 && d.Max <= d.Min {
			return sweep.Dimension{}, &sweep.ConfigError{
				Reason: fmt.Sprintf("dimension %q: max must exceed min", d.Name)}
		}
		switch d.Spacing {
		case "", "linear":
			return sweep.LinRange(d.Name, d.Min, d.Max, d.Points), nil
		case "log":
			if d.Min <= 0 {
				return sweep.Dimension{}, &sweep.ConfigError{
					Reason: fmt.Sprintf("dimension %q: log spacing needs min > 0", d.Name)}
			}
			return sweep.LogRange(d.Name, d.Min, d.Max, d.Points), nil
		default:
			return sweep.Dimension{}, &sweep.ConfigError{
				Reason: fmt.Sprintf("dimension %q: unknown spacing %q", d.Name, d.Spacing)}
		}
	default:
		return sweep.Dimension{}, &sweep.ConfigError{
			Reason: fmt.Sprintf("dimension %q has no values, labels or range", d.Name)}
	}
}

// Build converts the overrides into solver options, starting from the
// defaults.
func (s *SolverConfig) Build() *solver.Options {
	opts := solver.DefaultOptions()
	if s.Dt > 0 {
		opts.Dt = s.Dt
	}
	if s.Dtmin > 0 {
		opts.Dtmin = s.Dtmin
	}
	if s.Dtmax > 0 {
		opts.Dtmax = s.Dtmax
	}
	if s.Abstol > 0 {
		opts.Abstol = s.Abstol
	}
	if s.Reltol > 0 {
		opts.Reltol = s.Reltol
	}
	if s.MaxSteps > 0 {
		opts.MaxSteps = s.MaxSteps
	}
	return opts
}

func linspace(min, max float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = min + (max-min)*float64(i)/float64(n-1)
	}
	return out
}
