package quant

import (
	"fmt"
	"sort"
)

// Coeff is a time-dependent coefficient attached to an operator term.
type Coeff interface {
	Eval(t float64) complex128
}

// Constant is a fixed coefficient.
type Constant complex128

// Eval returns the constant value.
func (c Constant) Eval(float64) complex128 { return complex128(c) }

// Func is a closed-form coefficient.
type Func func(t float64) complex128

// Eval evaluates the function at t.
func (f Func) Eval(t float64) complex128 { return f(t) }

// Interp selects how a sampled coefficient is evaluated between samples.
type Interp int

const (
	// InterpLinear interpolates linearly between neighboring samples.
	InterpLinear Interp = iota
	// InterpPrevious holds the most recent sample.
	InterpPrevious
)

// Sampled is a coefficient given by values on a time grid. Evaluation
// outside the grid clamps to the boundary samples.
type Sampled struct {
	times  []float64
	values []complex128
	mode   Interp
}

// NewSampled builds a sampled coefficient. The grid must be strictly
// increasing and match the value count.
func NewSampled(times []float64, values []complex128, mode Interp) (*Sampled, error) {
	if len(times) != len(values) || len(times) < 2 {
		return nil, fmt.Errorf("%w: %d samples on a grid of %d points", ErrBadShape, len(values), len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: time grid not strictly increasing at index %d", ErrBadShape, i)
		}
	}
	ts := make([]float64, len(times))
	copy(ts, times)
	vs := make([]complex128, len(values))
	copy(vs, values)
	return &Sampled{times: ts, values: vs, mode: mode}, nil
}

// Eval interpolates the coefficient at t.
func (s *Sampled) Eval(t float64) complex128 {
	n := len(s.times)
	if t <= s.times[0] {
		return s.values[0]
	}
	if t >= s.times[n-1] {
		return s.values[n-1]
	}
	i := sort.SearchFloat64s(s.times, t)
	// s.times[i-1] < t <= s.times[i]
	if s.mode == InterpPrevious {
		if s.times[i] == t {
			return s.values[i]
		}
		return s.values[i-1]
	}
	w := (t - s.times[i-1]) / (s.times[i] - s.times[i-1])
	return s.values[i-1] + complex(w, 0)*(s.values[i]-s.values[i-1])
}
