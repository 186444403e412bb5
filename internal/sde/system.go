package sde

import (
	"fmt"

	"github.com/san-kum/qdyn/internal/quant"
)

// System is the generator of a diffusive stochastic Schrödinger unraveling:
// a Hamiltonian plus stochastic channel operators, evaluated at arbitrary
// times. Constant systems cache their evaluated operators.
type System struct {
	h  *quant.TimeDep
	sc []*quant.TimeDep

	dim   int
	cache *evalOps
}

type evalOps struct {
	h   *quant.Operator
	a   []*quant.Operator
	ada []*quant.Operator
}

// NewSystem validates dimension agreement between the Hamiltonian and every
// stochastic operator.
func NewSystem(h *quant.TimeDep, sc []*quant.TimeDep) (*System, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil Hamiltonian", quant.ErrBadShape)
	}
	dim := h.Size()
	for i, op := range sc {
		if op.Size() != dim {
			return nil, fmt.Errorf("%w: stochastic operator %d has size %d, system has %d",
				quant.ErrDimMismatch, i, op.Size(), dim)
		}
	}
	s := &System{h: h, sc: sc, dim: dim}
	constant := h.IsConstant()
	for _, op := range sc {
		constant = constant && op.IsConstant()
	}
	if constant {
		s.cache = s.eval(0)
	}
	return s, nil
}

// Dim returns the Hilbert-space dimension.
func (s *System) Dim() int { return s.dim }

// Channels returns the number of stochastic channels.
func (s *System) Channels() int { return len(s.sc) }

func (s *System) eval(t float64) *evalOps {
	ops := &evalOps{
		h:   s.h.Eval(t),
		a:   make([]*quant.Operator, len(s.sc)),
		ada: make([]*quant.Operator, len(s.sc)),
	}
	for j, td := range s.sc {
		a := td.Eval(t)
		ada, err := a.Dag().Mul(a)
		if err != nil {
			// dimensions were validated in NewSystem
			panic(err)
		}
		ops.a[j] = a
		ops.ada[j] = ada
	}
	return ops
}

func (s *System) at(t float64) *evalOps {
	if s.cache != nil {
		return s.cache
	}
	return s.eval(t)
}

// Deriv returns the drift d1 and per-channel diffusion d2 of the normalized
// diffusive unraveling at (t, ψ):
//
//	d1 = -iHψ + Σⱼ [ (eⱼ/2)Aⱼψ − ½Aⱼ†Aⱼψ − (eⱼ²/8)ψ ]
//	d2ⱼ = Aⱼψ − (eⱼ/2)ψ
//
// with eⱼ = ⟨ψ|(Aⱼ+Aⱼ†)|ψ⟩. ψ is assumed normalized.
func (s *System) Deriv(t float64, psi quant.Ket) (quant.Ket, []quant.Ket) {
	ops := s.at(t)

	d1 := ops.h.Apply(psi)
	for i := range d1 {
		d1[i] *= complex(0, -1)
	}
	d2 := make([]quant.Ket, len(s.sc))
	for j := range s.sc {
		ap := ops.a[j].Apply(psi)
		e := 2 * real(psi.Dot(ap))
		adap := ops.ada[j].Apply(psi)
		he := complex(e/2, 0)
		e8 := complex(e*e/8, 0)
		for i := range d1 {
			d1[i] += he*ap[i] - 0.5*adap[i] - e8*psi[i]
		}
		v := make(quant.Ket, len(psi))
		for i := range v {
			v[i] = ap[i] - he*psi[i]
		}
		d2[j] = v
	}
	return d1, d2
}

// EVals returns the homodyne expectation eⱼ = ⟨ψ|(Aⱼ+Aⱼ†)|ψ⟩ per channel,
// the deterministic part of the measurement current.
func (s *System) EVals(t float64, psi quant.Ket) []float64 {
	ops := s.at(t)
	e := make([]float64, len(s.sc))
	for j := range s.sc {
		e[j] = 2 * real(psi.Dot(ops.a[j].Apply(psi)))
	}
	return e
}
