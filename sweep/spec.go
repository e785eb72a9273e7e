package sweep

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/martinmodrak/miRNA-sim/kinetics"
	"github.com/martinmodrak/miRNA-sim/results"
	"github.com/martinmodrak/miRNA-sim/solver"
)

// ConfigError reports a malformed sweep specification. It is surfaced
// before any computation starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid sweep specification: " + e.Reason
}

// Spec fully describes a sweep: the axes, the base kinetic parameters, the
// output time grid and the integrator settings. Two specs with equal
// content produce bit-for-bit identical results, which is what the result
// cache keys on.
type Spec struct {
	Dimensions []Dimension
	Base       kinetics.Params
	// Defaults seeds every condition before dimension values are applied;
	// axes override individual fields.
	Defaults        results.Condition
	Times           []float64 // seconds, strictly increasing, starting at 0
	EquilibriumInit bool
	Method          string // solver method name; "" = tsit5, "auto" adds a stiff fallback
	Opts            *solver.Options

	// Derive, when set, post-processes each enumerated condition (e.g.
	// converting per-cell molecule counts to concentrations using the
	// condition's cell type). It runs before simulation and before cache
	// verification, so derived fields participate in condition identity.
	Derive func(*results.Condition) error
}

// DefaultCondition returns the neutral condition seed: unit rate scales,
// full efficiency, no synthesis.
func DefaultCondition() results.Condition {
	return results.Condition{
		Efficiency: 1,
		KOnScale:   1,
		KOffScale:  1,
		KCatScale:  1,
	}
}

// Validate fails fast on malformed specifications.
func (s *Spec) Validate() error {
	if len(s.Dimensions) == 0 {
		return &ConfigError{Reason: "no dimensions"}
	}
	seen := make(map[string]struct{}, len(s.Dimensions))
	for _, d := range s.Dimensions {
		if d.Name == "" {
			return &ConfigError{Reason: "dimension with empty name"}
		}
		if d.Len() == 0 {
			return &ConfigError{Reason: fmt.Sprintf("dimension %q is empty", d.Name)}
		}
		if len(d.Values) > 0 && len(d.Labels) > 0 {
			return &ConfigError{Reason: fmt.Sprintf("dimension %q has both values and labels", d.Name)}
		}
		if _, dup := seen[d.Name]; dup {
			return &ConfigError{Reason: fmt.Sprintf("duplicate dimension %q", d.Name)}
		}
		seen[d.Name] = struct{}{}
	}
	if err := s.Base.Validate(); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("base parameters: %v", err)}
	}
	if len(s.Times) < 2 {
		return &ConfigError{Reason: "time grid needs at least two points"}
	}
	if s.Times[0] != 0 {
		return &ConfigError{Reason: fmt.Sprintf("time grid must start at 0, got %g", s.Times[0])}
	}
	for i := 1; i < len(s.Times); i++ {
		if s.Times[i] <= s.Times[i-1] {
			return &ConfigError{Reason: fmt.Sprintf("time grid not strictly increasing at index %d", i)}
		}
	}
	if s.Method != "" && s.Method != "auto" && solver.MethodByName(s.Method) == nil {
		return &ConfigError{Reason: fmt.Sprintf("unknown solver method %q", s.Method)}
	}
	return nil
}

// ConditionCount returns the size of the Cartesian product.
func (s *Spec) ConditionCount() int {
	total := 1
	for _, d := range s.Dimensions {
		total *= d.Len()
	}
	return total
}

// Enumerate expands the Cartesian product into condition records, in
// lexicographic order of the dimensions as declared: the first dimension
// varies slowest, the last fastest.
func (s *Spec) Enumerate() ([]results.Condition, error) {
	total := s.ConditionCount()
	conds := make([]results.Condition, 0, total)

	for i := 0; i < total; i++ {
		c := s.Defaults
		if s.Defaults.Meta != nil {
			c.Meta = make(map[string]float64, len(s.Defaults.Meta))
			for k, v := range s.Defaults.Meta {
				c.Meta[k] = v
			}
		}
		idx := i
		for j := len(s.Dimensions) - 1; j >= 0; j-- {
			d := s.Dimensions[j]
			d.apply(&c, idx%d.Len())
			idx /= d.Len()
		}
		if s.Derive != nil {
			if err := s.Derive(&c); err != nil {
				return nil, fmt.Errorf("derive condition %s: %w", c.Key(), err)
			}
		}
		conds = append(conds, c)
	}
	return conds, nil
}

// CacheKey returns a stable content hash of the sweep configuration and
// base parameters. Any change to an axis, a base rate constant, the time
// grid or the solver settings yields a different key.
func (s *Spec) CacheKey() string {
	h := sha256.New()
	buf := make([]byte, 8)
	putFloat := func(v float64) {
		binary.BigEndian.PutUint64(buf, math.Float64bits(v))
		h.Write(buf)
	}

	for _, d := range s.Dimensions {
		h.Write([]byte("dim:" + d.Name))
		for _, v := range d.Values {
			putFloat(v)
		}
		for _, l := range d.Labels {
			h.Write([]byte("label:" + l))
		}
	}

	h.Write([]byte("base"))
	putFloat(s.Base.KOn)
	putFloat(s.Base.KOff)
	putFloat(s.Base.KCatMax)
	putFloat(s.Base.Efficiency)

	h.Write([]byte("defaults:" + s.Defaults.Key()))

	h.Write([]byte("times"))
	for _, t := range s.Times {
		putFloat(t)
	}

	if s.EquilibriumInit {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	h.Write([]byte("method:" + s.Method))
	if s.Opts != nil {
		putFloat(s.Opts.Dt)
		putFloat(s.Opts.Dtmin)
		putFloat(s.Opts.Dtmax)
		putFloat(s.Opts.Abstol)
		putFloat(s.Opts.Reltol)
		binary.BigEndian.PutUint64(buf, uint64(s.Opts.MaxSteps))
		h.Write(buf)
	}

	return hex.EncodeToString(h.Sum(nil))
}
