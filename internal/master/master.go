// Package master integrates the Lindblad master equation with a fixed-step
// RK4 propagator. It serves as the deterministic reference the stochastic
// ensembles converge to.
package master

import (
	"fmt"

	"github.com/san-kum/qdyn/internal/quant"
)

// Result holds the density-matrix evolution reduced to observables.
type Result struct {
	Times []float64
	// Expect[o][i] is Tr(eOps[o]·ρ) at Times[i].
	Expect [][]complex128
}

type system struct {
	h    *quant.TimeDep
	cOps []*quant.TimeDep
}

// liouvillian evaluates dρ = −i[H,ρ] + Σⱼ(AⱼρAⱼ† − ½{Aⱼ†Aⱼ, ρ}).
func (s *system) liouvillian(t float64, rho *quant.Operator) *quant.Operator {
	h := s.h.Eval(t)
	hr, err := h.Mul(rho)
	if err != nil {
		panic(err)
	}
	rh, err := rho.Mul(h)
	if err != nil {
		panic(err)
	}
	comm, err := hr.Sub(rh)
	if err != nil {
		panic(err)
	}
	out := comm.Scale(complex(0, -1))

	for _, td := range s.cOps {
		a := td.Eval(t)
		ad := a.Dag()
		ada, err := ad.Mul(a)
		if err != nil {
			panic(err)
		}
		ar, err := a.Mul(rho)
		if err != nil {
			panic(err)
		}
		arad, err := ar.Mul(ad)
		if err != nil {
			panic(err)
		}
		adar, err := ada.Mul(rho)
		if err != nil {
			panic(err)
		}
		radar, err := rho.Mul(ada)
		if err != nil {
			panic(err)
		}
		anti, err := adar.Add(radar)
		if err != nil {
			panic(err)
		}
		diss, err := arad.Sub(anti.Scale(0.5))
		if err != nil {
			panic(err)
		}
		out, err = out.Add(diss)
		if err != nil {
			panic(err)
		}
	}
	return out
}

func (s *system) rk4(t, dt float64, rho *quant.Operator) *quant.Operator {
	k1 := s.liouvillian(t, rho)
	y2, _ := rho.Add(k1.Scale(complex(dt/2, 0)))
	k2 := s.liouvillian(t+dt/2, y2)
	y3, _ := rho.Add(k2.Scale(complex(dt/2, 0)))
	k3 := s.liouvillian(t+dt/2, y3)
	y4, _ := rho.Add(k3.Scale(complex(dt, 0)))
	k4 := s.liouvillian(t+dt, y4)

	sum, _ := k1.Add(k4)
	mid, _ := k2.Add(k3)
	sum, _ = sum.Add(mid.Scale(2))
	out, _ := rho.Add(sum.Scale(complex(dt/6, 0)))
	return out
}

// Solve propagates ρ₀ over the output grid with nsub RK4 steps per interval
// and reduces it to the requested observables.
func Solve(h *quant.TimeDep, cOps []*quant.TimeDep, rho0 *quant.Operator, tlist []float64, nsub int, eOps []*quant.Operator) (*Result, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil Hamiltonian", quant.ErrBadShape)
	}
	if rho0.Size() != h.Size() {
		return nil, fmt.Errorf("%w: density matrix has size %d, system has %d",
			quant.ErrDimMismatch, rho0.Size(), h.Size())
	}
	for i, op := range cOps {
		if op.Size() != h.Size() {
			return nil, fmt.Errorf("%w: collapse operator %d has size %d, system has %d",
				quant.ErrDimMismatch, i, op.Size(), h.Size())
		}
	}
	if len(tlist) < 2 {
		return nil, fmt.Errorf("%w: need at least two output times", quant.ErrBadShape)
	}
	if nsub <= 0 {
		return nil, fmt.Errorf("%w: nsub must be positive", quant.ErrBadShape)
	}

	s := &system{h: h, cOps: cOps}
	res := &Result{
		Times:  append([]float64(nil), tlist...),
		Expect: make([][]complex128, len(eOps)),
	}
	for o := range eOps {
		res.Expect[o] = make([]complex128, len(tlist))
	}

	rho := rho0
	record := func(i int) error {
		for o, op := range eOps {
			m, err := op.Mul(rho)
			if err != nil {
				return err
			}
			res.Expect[o][i] = m.Trace()
		}
		return nil
	}
	if err := record(0); err != nil {
		return nil, err
	}
	for i := 0; i < len(tlist)-1; i++ {
		dt := (tlist[i+1] - tlist[i]) / float64(nsub)
		for sub := 0; sub < nsub; sub++ {
			rho = s.rk4(tlist[i]+float64(sub)*dt, dt, rho)
		}
		if err := record(i + 1); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// SolveKet is Solve starting from a pure state.
func SolveKet(h *quant.TimeDep, cOps []*quant.TimeDep, psi0 quant.Ket, dims []int, tlist []float64, nsub int, eOps []*quant.Operator) (*Result, error) {
	return Solve(h, cOps, quant.Proj(psi0, dims), tlist, nsub, eOps)
}
