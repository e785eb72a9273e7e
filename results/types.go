// Package results defines the structured output format for silencing
// simulations: long-format trajectory tables annotated with the full
// parameter tuple of the condition that produced each row.
package results

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/martinmodrak/miRNA-sim/kinetics"
)

const SchemaVersion = "1.0.0"

// Condition is one point of a parameter sweep. Conditions are value
// objects: two conditions are the same iff every field matches.
type Condition struct {
	// CellType tags the condition with a categorical cell identity
	// (e.g. "oocyte", "somatic"). Empty when a sweep has no cell axis.
	CellType string `json:"cell_type,omitempty"`

	TotalTarget float64 `json:"total_target"` // nM
	TotalEnzyme float64 `json:"total_enzyme"` // nM
	Efficiency  float64 `json:"efficiency"`
	Synthesis   float64 `json:"synthesis"` // nM/s

	// Rate-constant multipliers for robustness sweeps; 1 leaves the base
	// parameters untouched.
	KOnScale  float64 `json:"k_on_scale"`
	KOffScale float64 `json:"k_off_scale"`
	KCatScale float64 `json:"k_cat_scale"`

	// Meta carries sweep-specific numeric annotations that are not kinetic
	// inputs themselves (e.g. target_fraction, mirna_count).
	Meta map[string]float64 `json:"meta,omitempty"`
}

// Key returns a canonical identity string for the condition, used for
// distinct-condition-set comparisons. Meta keys are sorted so the key does
// not depend on map iteration order.
func (c Condition) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cell=%s|tt=%g|te=%g|eff=%g|syn=%g|son=%g|soff=%g|scat=%g",
		c.CellType, c.TotalTarget, c.TotalEnzyme, c.Efficiency, c.Synthesis,
		c.KOnScale, c.KOffScale, c.KCatScale)
	if len(c.Meta) > 0 {
		keys := make([]string, 0, len(c.Meta))
		for k := range c.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "|%s=%g", k, c.Meta[k])
		}
	}
	return b.String()
}

// Row is one (time, species) observation of one condition's trajectory.
type Row struct {
	Condition

	Time          float64 `json:"time"` // seconds
	Species       string  `json:"species"`
	Concentration float64 `json:"concentration"` // nM
	TimeInHours   float64 `json:"time_in_hours"`
	InitialTarget float64 `json:"initial_target"` // free target at t=0, nM
}

// SweepResult is the concatenated trajectory table for a whole sweep.
type SweepResult struct {
	Version         string          `json:"version"`
	RunID           string          `json:"run_id"`
	CreatedAt       time.Time       `json:"created_at"`
	BaseParams      kinetics.Params `json:"base_params"`
	Times           []float64       `json:"times"`
	EquilibriumInit bool            `json:"equilibrium_init"`
	Conditions      int             `json:"conditions"`
	Rows            []Row           `json:"rows"`
}

// DistinctConditions returns the set of condition keys present in the
// result rows.
func (r *SweepResult) DistinctConditions() map[string]struct{} {
	set := make(map[string]struct{})
	for i := range r.Rows {
		set[r.Rows[i].Key()] = struct{}{}
	}
	return set
}
