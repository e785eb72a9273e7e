// Package sweep enumerates the Cartesian product of parameter dimensions
// and runs one silencing simulation per combination, concatenating the
// trajectories into a single long-format table.
package sweep

import (
	"math"

	"github.com/martinmodrak/miRNA-sim/results"
)

// Dimension is one named axis of a sweep: an ordered, finite list of
// candidate values. Numeric axes set a kinetic input of the condition;
// the "cell_type" axis is categorical.
type Dimension struct {
	Name   string    `json:"name" yaml:"name"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Labels []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Len returns the number of candidate values on the axis.
func (d Dimension) Len() int {
	if len(d.Labels) > 0 {
		return len(d.Labels)
	}
	return len(d.Values)
}

// Categorical reports whether the axis holds labels rather than numbers.
func (d Dimension) Categorical() bool {
	return len(d.Labels) > 0
}

// apply writes the i-th candidate value into the condition. Numeric axes
// with no dedicated condition field land in Meta.
func (d Dimension) apply(c *results.Condition, i int) {
	if d.Categorical() {
		if d.Name == "cell_type" {
			c.CellType = d.Labels[i]
		}
		return
	}
	v := d.Values[i]
	switch d.Name {
	case "total_target":
		c.TotalTarget = v
	case "total_enzyme":
		c.TotalEnzyme = v
	case "efficiency":
		c.Efficiency = v
	case "synthesis":
		c.Synthesis = v
	case "k_on_scale":
		c.KOnScale = v
	case "k_off_scale":
		c.KOffScale = v
	case "k_cat_scale":
		c.KCatScale = v
	default:
		if c.Meta == nil {
			c.Meta = make(map[string]float64)
		}
		c.Meta[d.Name] = v
	}
}

// Fixed builds a dimension from explicit values.
func Fixed(name string, values ...float64) Dimension {
	return Dimension{Name: name, Values: values}
}

// LinRange builds a dimension of n evenly spaced values over [min, max].
func LinRange(name string, min, max float64, n int) Dimension {
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		if n == 1 {
			values[i] = min
		} else {
			values[i] = min + (max-min)*float64(i)/float64(n-1)
		}
	}
	return Dimension{Name: name, Values: values}
}

// LogRange builds a dimension of n log-uniformly spaced values over
// [min, max]. Both bounds must be positive.
func LogRange(name string, min, max float64, n int) Dimension {
	values := make([]float64, n)
	lmin, lmax := math.Log10(min), math.Log10(max)
	for i := 0; i < n; i++ {
		if n == 1 {
			values[i] = min
		} else {
			values[i] = math.Pow(10, lmin+(lmax-lmin)*float64(i)/float64(n-1))
		}
	}
	return Dimension{Name: name, Values: values}
}

// CellTypes builds the categorical cell-type dimension.
func CellTypes(names ...string) Dimension {
	return Dimension{Name: "cell_type", Labels: names}
}
