// Package kinetics models the chemical kinetics of miRNA-mediated mRNA
// silencing: a free target mRNA reversibly binds a miRNA-loaded catalytic
// complex (the enzyme) and the bound intermediate is either released or
// cleaved.
package kinetics

import "fmt"

// Params holds the base rate constants for one simulation condition.
// Concentrations are in nM, time in seconds, so KOn is in 1/(nM*s) and
// KOff/KCatMax in 1/s. Efficiency scales KCatMax down to model a pathway
// that is less efficient than the reference cleavage pathway.
type Params struct {
	KOn        float64 `json:"k_on" yaml:"k_on"`
	KOff       float64 `json:"k_off" yaml:"k_off"`
	KCatMax    float64 `json:"k_cat_max" yaml:"k_cat_max"`
	Efficiency float64 `json:"efficiency" yaml:"efficiency"`
}

// DefaultParams returns rate constants in the range reported for
// RISC-mediated cleavage (single-turnover binding around 1e-3 1/(nM*s),
// slow release, cleavage on the order of minutes).
func DefaultParams() Params {
	return Params{
		KOn:        1.9e-3,
		KOff:       1.8e-4,
		KCatMax:    8.1e-3,
		Efficiency: 1.0,
	}
}

// EffectiveKCat returns the catalytic rate after applying the efficiency
// coefficient.
func (p Params) EffectiveKCat() float64 {
	return p.KCatMax * p.Efficiency
}

// KD returns the dissociation constant k_off/k_on.
func (p Params) KD() float64 {
	return p.KOff / p.KOn
}

// Validate checks that the parameter set is physically meaningful.
func (p Params) Validate() error {
	if p.KOn <= 0 {
		return fmt.Errorf("k_on must be positive, got %g", p.KOn)
	}
	if p.KOff < 0 {
		return fmt.Errorf("k_off must be non-negative, got %g", p.KOff)
	}
	if p.KCatMax < 0 {
		return fmt.Errorf("k_cat_max must be non-negative, got %g", p.KCatMax)
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return fmt.Errorf("efficiency must be in (0, 1], got %g", p.Efficiency)
	}
	return nil
}

// Scaled returns a copy of p with each rate constant multiplied by the
// given factor. Used by robustness sweeps that perturb one constant at a
// time.
func (p Params) Scaled(onScale, offScale, catScale float64) Params {
	p.KOn *= onScale
	p.KOff *= offScale
	p.KCatMax *= catScale
	return p
}
