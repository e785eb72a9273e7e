package kinetics

import (
	"math"
	"testing"
)

func TestParamsEffectiveKCat(t *testing.T) {
	p := Params{KOn: 1, KOff: 1, KCatMax: 2.0, Efficiency: 0.25}
	if got := p.EffectiveKCat(); got != 0.5 {
		t.Errorf("Expected effective k_cat=0.5, got %g", got)
	}
	if got := p.KD(); got != 1.0 {
		t.Errorf("Expected kd=1, got %g", got)
	}
}

func TestParamsValidate(t *testing.T) {
	good := DefaultParams()
	if err := good.Validate(); err != nil {
		t.Errorf("DefaultParams should validate, got %v", err)
	}

	for _, tc := range []struct {
		name string
		p    Params
	}{
		{"zero k_on", Params{KOn: 0, KOff: 1, KCatMax: 1, Efficiency: 1}},
		{"negative k_off", Params{KOn: 1, KOff: -1, KCatMax: 1, Efficiency: 1}},
		{"zero efficiency", Params{KOn: 1, KOff: 1, KCatMax: 1, Efficiency: 0}},
		{"efficiency above one", Params{KOn: 1, KOff: 1, KCatMax: 1, Efficiency: 1.5}},
	} {
		if err := tc.p.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestParamsScaled(t *testing.T) {
	p := Params{KOn: 2, KOff: 3, KCatMax: 4, Efficiency: 1}
	s := p.Scaled(10, 0.1, 1)
	if s.KOn != 20 || s.KOff != 0.3 || s.KCatMax != 4 {
		t.Errorf("Scaled returned %+v", s)
	}
	if p.KOn != 2 {
		t.Error("Scaled must not mutate the receiver")
	}
}

func TestDerivativesFluxBalance(t *testing.T) {
	p := Params{KOn: 2.0, KOff: 0.5, KCatMax: 1.0, Efficiency: 0.5}
	sys := NewSystem(p, 0)

	u := []float64{3.0, 2.0, 1.0} // target, enzyme, complex
	du := make([]float64, NumSpecies)
	sys.Derivatives(0, u, du)

	binding := 2.0 * 2.0 * 3.0 // k_on*enzyme*target
	release := 0.5 * 1.0
	cleave := 0.5 * 1.0 // effective k_cat = 0.5

	if math.Abs(du[ITarget]-(-binding+release)) > 1e-12 {
		t.Errorf("d(target)/dt = %g, want %g", du[ITarget], -binding+release)
	}
	if math.Abs(du[IEnzyme]-(-binding+release+cleave)) > 1e-12 {
		t.Errorf("d(enzyme)/dt = %g, want %g", du[IEnzyme], -binding+release+cleave)
	}
	if math.Abs(du[IComplex]-(binding-release-cleave)) > 1e-12 {
		t.Errorf("d(complex)/dt = %g, want %g", du[IComplex], binding-release-cleave)
	}

	// Enzyme is conserved: d(enzyme)+d(complex) = 0 identically.
	if math.Abs(du[IEnzyme]+du[IComplex]) > 1e-12 {
		t.Errorf("Enzyme conservation violated in derivatives: %g", du[IEnzyme]+du[IComplex])
	}
}

func TestDerivativesSynthesis(t *testing.T) {
	sys := NewSystem(Params{KOn: 1, KOff: 1, KCatMax: 0, Efficiency: 1}, 0.25)
	u := []float64{0, 0, 0}
	du := make([]float64, NumSpecies)
	sys.Derivatives(0, u, du)
	if du[ITarget] != 0.25 {
		t.Errorf("Expected pure synthesis flux 0.25, got %g", du[ITarget])
	}
}

func TestCountConversionRoundTrip(t *testing.T) {
	count := 1.2e5
	conc := CountToNanomolar(count, OocyteVolumeLiters)
	back := NanomolarToCount(conc, OocyteVolumeLiters)
	if math.Abs(back-count)/count > 1e-12 {
		t.Errorf("Round trip %g -> %g -> %g", count, conc, back)
	}

	// Same count in a somatic cell is far more concentrated.
	somatic := CountToNanomolar(count, SomaticVolumeLiters)
	if somatic <= conc {
		t.Errorf("Somatic concentration %g should exceed oocyte %g", somatic, conc)
	}
}

func TestStateVecRoundTrip(t *testing.T) {
	s := State{Target: 1, Enzyme: 2, Complex: 3}
	got := StateFromVec(s.Vec())
	if got != s {
		t.Errorf("Round trip mismatch: %+v vs %+v", got, s)
	}
}
