package kinetics

import (
	"fmt"
	"math"
)

// equilibriumRatioTol is the maximum relative deviation allowed between the
// implied equilibrium ratio of the computed root and the requested K_D.
// Exceeding it indicates numerical trouble in the quadratic formula
// (catastrophic cancellation near degenerate inputs).
const equilibriumRatioTol = 1e-3

// kdDegenerateTol is the K_D below which the quadratic leading coefficient
// vanishes and the system is treated as non-binding.
const kdDegenerateTol = 1e-12

// PhysicalInfeasibilityError reports an equilibrium solution that violates
// physical constraints. It carries the inputs so a failure inside a large
// sweep is diagnosable without re-running.
type PhysicalInfeasibilityError struct {
	TotalTarget float64
	TotalEnzyme float64
	KD          float64
	Complex     float64
	Reason      string
}

func (e *PhysicalInfeasibilityError) Error() string {
	return fmt.Sprintf("equilibrium physically infeasible: %s (total_target=%g total_enzyme=%g kd=%g complex=%g)",
		e.Reason, e.TotalTarget, e.TotalEnzyme, e.KD, e.Complex)
}

// Equilibrium computes the bound-complex concentration at binding
// equilibrium for conserved totals of target and enzyme:
//
//	complex / ((totalTarget-complex) * (totalEnzyme-complex)) = kd
//
// which is a quadratic in complex. The smaller root is the physical one;
// the larger root always exceeds min(totalTarget, totalEnzyme). The
// returned State has free target, free enzyme and complex.
func Equilibrium(totalTarget, totalEnzyme, kd float64) (State, error) {
	if totalTarget < 0 || totalEnzyme < 0 {
		return State{}, &PhysicalInfeasibilityError{
			TotalTarget: totalTarget, TotalEnzyme: totalEnzyme, KD: kd,
			Reason: "negative total concentration",
		}
	}
	if kd < 0 {
		return State{}, &PhysicalInfeasibilityError{
			TotalTarget: totalTarget, TotalEnzyme: totalEnzyme, KD: kd,
			Reason: "negative dissociation constant",
		}
	}

	// Either species absent, or no binding at all: no complex can form.
	if totalTarget == 0 || totalEnzyme == 0 || kd < kdDegenerateTol {
		return State{Target: totalTarget, Enzyme: totalEnzyme, Complex: 0}, nil
	}

	// kd*c^2 - ((totalTarget+totalEnzyme)*kd + 1)*c + kd*totalTarget*totalEnzyme = 0
	a := kd
	b := -(totalTarget+totalEnzyme)*kd - 1
	c := kd * totalTarget * totalEnzyme

	disc := b*b - 4*a*c
	if disc < 0 {
		return State{}, &PhysicalInfeasibilityError{
			TotalTarget: totalTarget, TotalEnzyme: totalEnzyme, KD: kd,
			Reason: fmt.Sprintf("negative discriminant %g", disc),
		}
	}

	// b is always negative here, so -b+sqrt(disc) never cancels. Computing
	// the larger root first and recovering the smaller one via Vieta avoids
	// subtracting nearly equal quantities.
	q := -0.5 * (b - math.Sqrt(disc))
	complexEq := c / q

	freeTarget := totalTarget - complexEq
	freeEnzyme := totalEnzyme - complexEq

	if complexEq < 0 || freeTarget < 0 || freeEnzyme < 0 {
		return State{}, &PhysicalInfeasibilityError{
			TotalTarget: totalTarget, TotalEnzyme: totalEnzyme, KD: kd,
			Complex: complexEq,
			Reason:  "negative concentration in equilibrium state",
		}
	}

	// Authoritative correctness gate: the implied ratio must reproduce kd.
	implied := complexEq / (freeTarget * freeEnzyme)
	if relDev := math.Abs(implied-kd) / kd; relDev > equilibriumRatioTol {
		return State{}, &PhysicalInfeasibilityError{
			TotalTarget: totalTarget, TotalEnzyme: totalEnzyme, KD: kd,
			Complex: complexEq,
			Reason:  fmt.Sprintf("implied equilibrium ratio %g deviates from kd by %g", implied, relDev),
		}
	}

	return State{Target: freeTarget, Enzyme: freeEnzyme, Complex: complexEq}, nil
}
