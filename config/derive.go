package config

import (
	"fmt"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/sweep"
)

// derivations maps a config-selectable name to a rule that finalizes a
// condition after its axes have been applied.
var derivations = map[string]func(*results.Condition) error{
	"cell_counts": deriveCellCounts,
}

// DerivationNames lists the derivation rules a config file may select.
func DerivationNames() []string {
	return []string{"cell_counts"}
}

// deriveCellCounts converts molecule-count axes into concentrations using
// the condition's cell volume. A sweep declares target_count and
// mirna_count meta dimensions together with a cell_type axis; the same
// count then yields very different concentrations in an oocyte and a
// somatic cell.
func deriveCellCounts(c *results.Condition) error {
	vol := kinetics.CellVolume(c.CellType)

	targetCount, okT := c.Meta["target_count"]
	enzymeCount, okE := c.Meta["mirna_count"]
	if !okT && !okE {
		return &sweep.ConfigError{
			Reason: "cell_counts derivation needs target_count or mirna_count dimensions"}
	}
	if okT {
		if targetCount < 0 {
			return &sweep.ConfigError{Reason: fmt.Sprintf("negative target_count %g", targetCount)}
		}
		c.TotalTarget = kinetics.CountToNanomolar(targetCount, vol)
	}
	if okE {
		if enzymeCount < 0 {
			return &sweep.ConfigError{Reason: fmt.Sprintf("negative mirna_count %g", enzymeCount)}
		}
		c.TotalEnzyme = kinetics.CountToNanomolar(enzymeCount, vol)
	}
	return nil
}
