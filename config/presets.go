package config

import (
	"fmt"
	"sort"

	"github.com/martinmodrak/miRNA-sim/kinetics"
)

// Presets are the built-in study sweeps, runnable without a config file.
var Presets = map[string]*Config{
	// Oocyte conditions: large cytoplasmic volume, so identical molecule
	// counts give much lower concentrations than in somatic cells.
	"oocyte": {
		BaseParams:      kinetics.DefaultParams(),
		Times:           TimeGrid{EndHours: 48, Points: 49},
		Defaults:        Defaults{CellType: "oocyte", Efficiency: 1},
		EquilibriumInit: true,
		Derive:          "cell_counts",
		Dimensions: []DimensionSpec{
			{Name: "target_count", Values: []float64{1e3, 1e4, 1e5}},
			{Name: "mirna_count", Values: []float64{1e3, 1e4, 1e5}},
		},
	},

	// Somatic conditions: the same count grid in a small cell.
	"somatic": {
		BaseParams:      kinetics.DefaultParams(),
		Times:           TimeGrid{EndHours: 24, Points: 25},
		Defaults:        Defaults{CellType: "somatic", Efficiency: 1},
		EquilibriumInit: true,
		Derive:          "cell_counts",
		Dimensions: []DimensionSpec{
			{Name: "target_count", Values: []float64{1e3, 1e4, 1e5}},
			{Name: "mirna_count", Values: []float64{1e3, 1e4, 1e5}},
		},
	},

	// Cleavage efficiency sweep at fixed concentrations.
	"efficiency": {
		BaseParams:      kinetics.DefaultParams(),
		Times:           TimeGrid{EndHours: 24, Points: 25},
		Defaults:        Defaults{TotalTarget: 10, TotalEnzyme: 5, Efficiency: 1},
		EquilibriumInit: true,
		Dimensions: []DimensionSpec{
			{Name: "efficiency", Values: []float64{0.01, 0.1, 0.5, 1}},
			{Name: "total_enzyme", Min: 0.1, Max: 100, Points: 4, Spacing: "log"},
		},
	},

	// Rate-constant robustness: each rate scaled a decade up and down.
	"robustness": {
		BaseParams:      kinetics.DefaultParams(),
		Times:           TimeGrid{EndHours: 24, Points: 25},
		Defaults:        Defaults{TotalTarget: 10, TotalEnzyme: 5, Efficiency: 1},
		EquilibriumInit: true,
		Dimensions: []DimensionSpec{
			{Name: "k_on_scale", Values: []float64{0.1, 1, 10}},
			{Name: "k_off_scale", Values: []float64{0.1, 1, 10}},
			{Name: "k_cat_scale", Values: []float64{0.1, 1, 10}},
		},
	},
}

// Preset returns the named built-in sweep configuration. The result is a
// copy, so callers may adjust it without corrupting the preset.
func Preset(name string) (*Config, error) {
	cfg, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (have: %v)", name, PresetNames())
	}
	return cfg.clone(), nil
}

// clone deep-copies the configuration, including slice-valued fields.
func (c *Config) clone() *Config {
	out := *c
	out.Times.Seconds = append([]float64(nil), c.Times.Seconds...)
	out.Dimensions = make([]DimensionSpec, len(c.Dimensions))
	for i, d := range c.Dimensions {
		d.Values = append([]float64(nil), d.Values...)
		d.Labels = append([]string(nil), d.Labels...)
		out.Dimensions[i] = d
	}
	if c.Solver != nil {
		s := *c.Solver
		out.Solver = &s
	}
	return &out
}

// PresetNames lists the built-in presets in stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
