package noise

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/qdyn/internal/quant"
)

var (
	// ErrCoeffShape indicates coefficient rows not matching the operator list.
	ErrCoeffShape = errors.New("noise: coefficient shape mismatch")

	// ErrNotSingleSite indicates an operator that cannot be tiled across all sites.
	ErrNotSingleSite = errors.New("noise: operator is not a single-site operator")

	// ErrRelaxationTime indicates a non-positive or inconsistent T1/T2 value.
	ErrRelaxationTime = errors.New("noise: invalid relaxation time")

	// ErrNoOperators indicates a drive-noise model with no operator source.
	ErrNoOperators = errors.New("noise: no operators found")
)

// Lindblad produces collapse operators injected as stochastic channels.
type Lindblad interface {
	LindbladOps(n int, tlist []float64) ([]*quant.TimeDep, error)
}

// Drive produces a single operator added to the coherent generator. The
// fallback operator supplies the target operators when the model itself
// carries none; it may be nil.
type Drive interface {
	DriveOp(n int, tlist []float64, fallback *quant.TimeDep) (*quant.TimeDep, error)
}

// Decoherence wraps a fixed list of collapse operators, optionally
// time-dependent through per-operator coefficient rows sampled on the solve's
// time grid. With AllQubits set, each operator must act on a single site and
// is replicated cyclically across the register, its coefficient row tiled
// over the replicas.
type Decoherence struct {
	cOps      []*quant.Operator
	targets   []int
	coeffs    [][]complex128
	allQubits bool
}

// NewDecoherence validates and builds a decoherence model. coeffs may be nil
// (time-independent); otherwise its row count must equal the operator count.
func NewDecoherence(cOps []*quant.Operator, targets []int, coeffs [][]complex128, allQubits bool) (*Decoherence, error) {
	if len(cOps) == 0 {
		return nil, ErrNoOperators
	}
	if coeffs != nil && len(coeffs) != len(cOps) {
		return nil, fmt.Errorf("%w: %d rows for %d collapse operators",
			ErrCoeffShape, len(coeffs), len(cOps))
	}
	if allQubits {
		for i, op := range cOps {
			d := op.Dims()
			if len(d) != 1 || d[0] != 2 {
				return nil, fmt.Errorf("%w: collapse operator %d has dims %v",
					ErrNotSingleSite, i, d)
			}
		}
	}
	return &Decoherence{cOps: cOps, targets: targets, coeffs: coeffs, allQubits: allQubits}, nil
}

// LindbladOps returns the expanded collapse operators, one per operator (or
// one per operator per site with AllQubits).
func (d *Decoherence) LindbladOps(n int, tlist []float64) ([]*quant.TimeDep, error) {
	out := make([]*quant.TimeDep, 0, len(d.cOps))
	for i, cOp := range d.cOps {
		var expanded []*quant.Operator
		if d.allQubits {
			ops, err := quant.ExpandPeriodic(cOp, n, d.targets)
			if err != nil {
				return nil, err
			}
			expanded = ops
		} else {
			op, err := quant.Expand(cOp, n, d.targets)
			if err != nil {
				return nil, err
			}
			expanded = []*quant.Operator{op}
		}

		if d.coeffs == nil {
			for _, op := range expanded {
				out = append(out, quant.Static(op))
			}
			continue
		}
		if len(d.coeffs[i]) != len(tlist) {
			return nil, fmt.Errorf("%w: row %d has %d samples for %d grid points",
				ErrCoeffShape, i, len(d.coeffs[i]), len(tlist))
		}
		c, err := quant.NewSampled(tlist, d.coeffs[i], quant.InterpLinear)
		if err != nil {
			return nil, err
		}
		for _, op := range expanded {
			td, err := quant.NewTimeDep(nil, quant.Term{Op: op, C: c})
			if err != nil {
				return nil, err
			}
			out = append(out, td)
		}
	}
	return out, nil
}

// Relaxation models per-site amplitude damping (T1) and dephasing (T2).
// A nil slice disables the channel, a single value broadcasts to all sites,
// and a length-n slice sets each site; NaN entries disable single sites.
type Relaxation struct {
	t1, t2 []float64
}

// NewRelaxation builds a relaxation model from T1 and T2 timescales.
func NewRelaxation(t1, t2 []float64) *Relaxation {
	return &Relaxation{t1: t1, t2: t2}
}

func perSite(vals []float64, n int, label string) ([]float64, error) {
	out := make([]float64, n)
	switch {
	case vals == nil:
		for i := range out {
			out[i] = math.NaN()
		}
	case len(vals) == 1:
		for i := range out {
			out[i] = vals[0]
		}
	case len(vals) == n:
		copy(out, vals)
	default:
		return nil, fmt.Errorf("%w: %s has %d entries for %d sites",
			ErrRelaxationTime, label, len(vals), n)
	}
	for i, v := range out {
		if !math.IsNaN(v) && v <= 0 {
			return nil, fmt.Errorf("%w: %s[%d] = %v", ErrRelaxationTime, label, i, v)
		}
	}
	return out, nil
}

// LindbladOps returns, per site, a damping operator scaled by 1/√T1 and a
// dephasing operator scaled by 1/√(2·T2eff). When both timescales are set,
// T2eff = 1/(1/T2 − 1/(2·T1)) so that the total dephasing rate matches the
// requested T2; this requires 2·T1 > T2.
func (r *Relaxation) LindbladOps(n int, tlist []float64) ([]*quant.TimeDep, error) {
	t1, err := perSite(r.t1, n, "T1")
	if err != nil {
		return nil, err
	}
	t2, err := perSite(r.t2, n, "T2")
	if err != nil {
		return nil, err
	}

	out := make([]*quant.TimeDep, 0, 2*n)
	for site := 0; site < n; site++ {
		hasT1 := !math.IsNaN(t1[site])
		hasT2 := !math.IsNaN(t2[site])
		if hasT1 {
			op, err := quant.Expand(quant.SigmaMinus().Scale(complex(1/math.Sqrt(t1[site]), 0)), n, []int{site})
			if err != nil {
				return nil, err
			}
			out = append(out, quant.Static(op))
		}
		if hasT2 {
			t2eff := t2[site]
			if hasT1 {
				if 2*t1[site] <= t2[site] {
					return nil, fmt.Errorf("%w: T1=%v, T2=%v does not fulfill 2·T1 > T2",
						ErrRelaxationTime, t1[site], t2[site])
				}
				t2eff = 1 / (1/t2[site] - 1/(2*t1[site]))
			}
			op, err := quant.Expand(quant.SigmaZ().Scale(complex(1/math.Sqrt(2*t2eff), 0)), n, []int{site})
			if err != nil {
				return nil, err
			}
			out = append(out, quant.Static(op))
		}
	}
	return out, nil
}
