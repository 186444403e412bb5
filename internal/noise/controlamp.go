package noise

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/qdyn/internal/quant"
)

// DefaultCteTol is the norm below which a fallback operator's constant part
// is treated as absent.
const DefaultCteTol = 1e-15

// ControlAmp applies noise to the amplitudes of drive operators. If Ops is
// set, the operators are expanded onto the register (cyclically when Periodic
// is set); otherwise the operators already present in the fallback drive are
// used: its constant part, when non-negligible in norm, plus every
// time-dependent term.
type ControlAmp struct {
	Ops      []*quant.Operator
	Coeffs   [][]complex128
	Targets  []int
	Periodic bool
	CteTol   float64 // zero means DefaultCteTol
}

func (c *ControlAmp) assemble(n int, fallback *quant.TimeDep) ([]*quant.Operator, error) {
	if c.Ops != nil {
		if c.Periodic {
			var ops []*quant.Operator
			for _, op := range c.Ops {
				expanded, err := quant.ExpandPeriodic(op, n, c.Targets)
				if err != nil {
					return nil, err
				}
				ops = append(ops, expanded...)
			}
			return ops, nil
		}
		ops := make([]*quant.Operator, len(c.Ops))
		for i, op := range c.Ops {
			expanded, err := quant.Expand(op, n, c.Targets)
			if err != nil {
				return nil, err
			}
			ops[i] = expanded
		}
		return ops, nil
	}
	if fallback == nil {
		return nil, ErrNoOperators
	}
	tol := c.CteTol
	if tol == 0 {
		tol = DefaultCteTol
	}
	var ops []*quant.Operator
	if cte := fallback.Const(); cte != nil && cte.Norm() > tol {
		ops = append(ops, cte)
	}
	for _, tm := range fallback.Terms() {
		ops = append(ops, tm.Op)
	}
	if len(ops) == 0 {
		return nil, ErrNoOperators
	}
	return ops, nil
}

func buildDrive(ops []*quant.Operator, coeffs [][]complex128, tlist []float64) (*quant.TimeDep, error) {
	if len(coeffs) != len(ops) {
		return nil, fmt.Errorf("%w: %d coefficient rows for %d operators",
			ErrCoeffShape, len(coeffs), len(ops))
	}
	terms := make([]quant.Term, len(ops))
	for i, op := range ops {
		if len(coeffs[i]) != len(tlist) {
			return nil, fmt.Errorf("%w: row %d has %d samples for %d grid points",
				ErrCoeffShape, i, len(coeffs[i]), len(tlist))
		}
		c, err := quant.NewSampled(tlist, coeffs[i], quant.InterpLinear)
		if err != nil {
			return nil, err
		}
		terms[i] = quant.Term{Op: op, C: c}
	}
	return quant.NewTimeDep(nil, terms...)
}

// DriveOp assembles the target operators and sums the coefficient-weighted
// terms into one time-dependent operator.
func (c *ControlAmp) DriveOp(n int, tlist []float64, fallback *quant.TimeDep) (*quant.TimeDep, error) {
	ops, err := c.assemble(n, fallback)
	if err != nil {
		return nil, err
	}
	return buildDrive(ops, c.Coeffs, tlist)
}

// White is gaussian white noise in drive amplitudes: a coefficient row is
// drawn independently for every operator and grid sample from N(Mean, Std²),
// then assembled exactly as ControlAmp assembles explicit coefficients.
type White struct {
	Mean     float64
	Std      float64
	Ops      []*quant.Operator
	Targets  []int
	Periodic bool
	CteTol   float64
	Src      rand.Source
}

// DriveOp samples coefficients and builds the summed drive operator.
// A random source is required; global randomness is never consulted.
func (w *White) DriveOp(n int, tlist []float64, fallback *quant.TimeDep) (*quant.TimeDep, error) {
	if w.Src == nil {
		return nil, fmt.Errorf("noise: white noise requires an explicit random source")
	}
	ca := &ControlAmp{Ops: w.Ops, Targets: w.Targets, Periodic: w.Periodic, CteTol: w.CteTol}
	ops, err := ca.assemble(n, fallback)
	if err != nil {
		return nil, err
	}
	normal := distuv.Normal{Mu: w.Mean, Sigma: w.Std, Src: w.Src}
	coeffs := make([][]complex128, len(ops))
	for i := range coeffs {
		row := make([]complex128, len(tlist))
		for j := range row {
			row[j] = complex(normal.Rand(), 0)
		}
		coeffs[i] = row
	}
	return buildDrive(ops, coeffs, tlist)
}
