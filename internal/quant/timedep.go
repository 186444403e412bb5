package quant

import "fmt"

// Term pairs an operator with its time-dependent coefficient.
type Term struct {
	Op *Operator
	C  Coeff
}

// TimeDep is a time-dependent operator: an optional constant part plus an
// ordered list of (operator, coefficient) terms. All component operators
// share one dimension structure.
type TimeDep struct {
	cte   *Operator
	terms []Term
}

// NewTimeDep builds a time-dependent operator. At least one component is
// required and all components must share dimensions.
func NewTimeDep(cte *Operator, terms ...Term) (*TimeDep, error) {
	var ref *Operator
	if cte != nil {
		ref = cte
	} else if len(terms) > 0 {
		ref = terms[0].Op
	} else {
		return nil, fmt.Errorf("%w: empty time-dependent operator", ErrBadShape)
	}
	for i, tm := range terms {
		if tm.Op == nil || tm.C == nil {
			return nil, fmt.Errorf("%w: term %d incomplete", ErrBadShape, i)
		}
		if !ref.SameDims(tm.Op) {
			return nil, fmt.Errorf("%w: term %d has dims %v, want %v",
				ErrDimMismatch, i, tm.Op.Dims(), ref.Dims())
		}
	}
	ts := make([]Term, len(terms))
	copy(ts, terms)
	return &TimeDep{cte: cte, terms: ts}, nil
}

// Static wraps a constant operator.
func Static(op *Operator) *TimeDep { return &TimeDep{cte: op} }

// Const returns the constant part, which may be nil.
func (td *TimeDep) Const() *Operator { return td.cte }

// Terms returns the time-dependent terms.
func (td *TimeDep) Terms() []Term { return td.terms }

// IsConstant reports whether the operator has no time-dependent terms.
func (td *TimeDep) IsConstant() bool { return len(td.terms) == 0 }

// Dims returns the shared dimension structure.
func (td *TimeDep) Dims() []int {
	if td.cte != nil {
		return td.cte.Dims()
	}
	return td.terms[0].Op.Dims()
}

// Size returns the full Hilbert-space dimension.
func (td *TimeDep) Size() int {
	if td.cte != nil {
		return td.cte.Size()
	}
	return td.terms[0].Op.Size()
}

// Eval returns the operator value at time t.
func (td *TimeDep) Eval(t float64) *Operator {
	if td.IsConstant() {
		return td.cte
	}
	out := zero(td.Dims())
	if td.cte != nil {
		for i := 0; i < out.n; i++ {
			for j := 0; j < out.n; j++ {
				out.m.Set(i, j, td.cte.m.At(i, j))
			}
		}
	}
	for _, tm := range td.terms {
		c := tm.C.Eval(t)
		if c == 0 {
			continue
		}
		for i := 0; i < out.n; i++ {
			for j := 0; j < out.n; j++ {
				if v := tm.Op.m.At(i, j); v != 0 {
					out.m.Set(i, j, out.m.At(i, j)+c*v)
				}
			}
		}
	}
	return out
}

// Scale returns the operator scaled by z; every component is scaled.
func (td *TimeDep) Scale(z complex128) *TimeDep {
	out := &TimeDep{}
	if td.cte != nil {
		out.cte = td.cte.Scale(z)
	}
	out.terms = make([]Term, len(td.terms))
	for i, tm := range td.terms {
		out.terms[i] = Term{Op: tm.Op.Scale(z), C: tm.C}
	}
	return out
}

// Merge returns the sum of two time-dependent operators.
func (td *TimeDep) Merge(other *TimeDep) (*TimeDep, error) {
	a, b := td.Dims(), other.Dims()
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: merge %v vs %v", ErrDimMismatch, a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			return nil, fmt.Errorf("%w: merge %v vs %v", ErrDimMismatch, a, b)
		}
	}
	out := &TimeDep{}
	switch {
	case td.cte != nil && other.cte != nil:
		sum, err := td.cte.Add(other.cte)
		if err != nil {
			return nil, err
		}
		out.cte = sum
	case td.cte != nil:
		out.cte = td.cte
	case other.cte != nil:
		out.cte = other.cte
	}
	out.terms = make([]Term, 0, len(td.terms)+len(other.terms))
	out.terms = append(out.terms, td.terms...)
	out.terms = append(out.terms, other.terms...)
	return out, nil
}
