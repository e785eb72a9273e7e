package kinetics

// State vector layout for the three-species system. The solver works on
// dense []float64 vectors; these indices fix the meaning of each slot.
const (
	ITarget = iota
	IEnzyme
	IComplex
	NumSpecies
)

// SpeciesNames lists the species in state-vector order. Trajectory rows
// use these names in their species column.
var SpeciesNames = [NumSpecies]string{"target", "enzyme", "complex"}

// State is the concentration triple at one time point.
type State struct {
	Target  float64 `json:"target"`
	Enzyme  float64 `json:"enzyme"`
	Complex float64 `json:"complex"`
}

// Vec returns the state as a dense vector in canonical order.
func (s State) Vec() []float64 {
	return []float64{s.Target, s.Enzyme, s.Complex}
}

// StateFromVec builds a State from a dense vector in canonical order.
func StateFromVec(u []float64) State {
	return State{Target: u[ITarget], Enzyme: u[IEnzyme], Complex: u[IComplex]}
}

// System binds a parameter set and a constant synthesis rate into the
// right-hand side of the silencing ODE:
//
//	d(target)/dt  =  synthesis - k_on*enzyme*target + k_off*complex
//	d(enzyme)/dt  = -k_on*enzyme*target + k_off*complex + k_cat*complex
//	d(complex)/dt =  k_on*enzyme*target - k_off*complex - k_cat*complex
//
// k_cat here is the effective catalytic rate, KCatMax*Efficiency.
type System struct {
	kOn       float64
	kOff      float64
	kCat      float64
	synthesis float64
}

// NewSystem builds the ODE right-hand side for the given parameters and
// synthesis rate.
func NewSystem(p Params, synthesis float64) *System {
	return &System{
		kOn:       p.KOn,
		kOff:      p.KOff,
		kCat:      p.EffectiveKCat(),
		synthesis: synthesis,
	}
}

// Derivatives evaluates du/dt at state u, writing into du. It matches the
// solver's right-hand-side signature.
func (s *System) Derivatives(_ float64, u, du []float64) {
	binding := s.kOn * u[IEnzyme] * u[ITarget]
	release := s.kOff * u[IComplex]
	cleave := s.kCat * u[IComplex]

	du[ITarget] = s.synthesis - binding + release
	du[IEnzyme] = -binding + release + cleave
	du[IComplex] = binding - release - cleave
}

// Synthesis returns the constant production rate of free target.
func (s *System) Synthesis() float64 {
	return s.synthesis
}
