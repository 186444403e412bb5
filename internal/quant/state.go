package quant

import (
	"math"
	"math/cmplx"
)

// Ket is a pure-state vector.
type Ket []complex128

// Clone returns a copy of the state.
func (k Ket) Clone() Ket {
	c := make(Ket, len(k))
	copy(c, k)
	return c
}

// Norm returns the Euclidean norm.
func (k Ket) Norm() float64 {
	sum := 0.0
	for _, v := range k {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// Normalize scales the state to unit norm in place and returns it.
// A zero state is left unchanged.
func (k Ket) Normalize() Ket {
	n := k.Norm()
	if n == 0 {
		return k
	}
	inv := complex(1/n, 0)
	for i := range k {
		k[i] *= inv
	}
	return k
}

// Dot returns the inner product ⟨k|o⟩.
func (k Ket) Dot(o Ket) complex128 {
	var s complex128
	for i := range k {
		s += cmplx.Conj(k[i]) * o[i]
	}
	return s
}

// IsValid reports whether all amplitudes are finite.
func (k Ket) IsValid() bool {
	for _, v := range k {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) ||
			math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
			return false
		}
	}
	return true
}

// Fock returns the number state |j⟩ in an n-level space.
func Fock(n, j int) Ket {
	k := make(Ket, n)
	k[j] = 1
	return k
}

// Coherent returns the coherent state with amplitude alpha, truncated to n
// levels and renormalized.
func Coherent(n int, alpha complex128) Ket {
	k := make(Ket, n)
	k[0] = 1
	for j := 1; j < n; j++ {
		k[j] = k[j-1] * alpha / complex(math.Sqrt(float64(j)), 0)
	}
	return k.Normalize()
}

// Expect returns ⟨ψ|op|ψ⟩ / ⟨ψ|ψ⟩.
func Expect(op *Operator, psi Ket) complex128 {
	n2 := psi.Dot(psi)
	if n2 == 0 {
		return 0
	}
	return psi.Dot(op.Apply(psi)) / n2
}

// Proj returns the projector |ψ⟩⟨ψ| with the given dimension structure.
// A nil dims treats the state as a single subsystem.
func Proj(psi Ket, dims []int) *Operator {
	if dims == nil {
		dims = []int{len(psi)}
	}
	op := zero(dims)
	for i := range psi {
		for j := range psi {
			op.m.Set(i, j, psi[i]*cmplx.Conj(psi[j]))
		}
	}
	return op
}
