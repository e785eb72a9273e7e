package kinetics

// Physical constants and unit conversions shared by every condition.
// All simulations run in nM and seconds; cell-type presets convert
// molecule counts to concentrations through the cell volume.

const (
	// Avogadro is the Avogadro constant in 1/mol.
	Avogadro = 6.02214076e23

	// NanomolarPerMolar converts mol/L to nmol/L.
	NanomolarPerMolar = 1e9

	// SecondsPerHour converts simulation time to the hours used in
	// reported trajectories.
	SecondsPerHour = 3600.0
)

// Approximate cytoplasmic volumes in liters. The oocyte value is for a
// fully grown mouse oocyte (~80 um diameter); the somatic value is a
// typical cultured cell.
const (
	OocyteVolumeLiters  = 2.5e-10
	SomaticVolumeLiters = 2.0e-12
)

// CellVolume returns the cytoplasmic volume in liters for a named cell
// type. Unknown cell types fall back to the somatic volume.
func CellVolume(cellType string) float64 {
	switch cellType {
	case "oocyte":
		return OocyteVolumeLiters
	case "somatic":
		return SomaticVolumeLiters
	default:
		return SomaticVolumeLiters
	}
}

// CountToNanomolar converts a molecule count in a compartment of the given
// volume (liters) to a concentration in nM.
func CountToNanomolar(count, volumeLiters float64) float64 {
	return count / (Avogadro * volumeLiters) * NanomolarPerMolar
}

// NanomolarToCount converts a concentration in nM back to a molecule count
// for a compartment of the given volume (liters).
func NanomolarToCount(conc, volumeLiters float64) float64 {
	return conc / NanomolarPerMolar * Avogadro * volumeLiters
}
