package quant

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDimMismatch indicates incompatible Hilbert-space dimensions.
	ErrDimMismatch = errors.New("quant: dimension mismatch")

	// ErrBadShape indicates malformed construction input.
	ErrBadShape = errors.New("quant: bad shape")
)

// Operator is a linear operator on a finite-dimensional Hilbert space,
// stored as a dense complex matrix together with its tensor factorization
// into subsystem dimensions.
type Operator struct {
	dims []int
	n    int
	m    *mat.CDense
}

// NewOperator builds an operator from row-major data. The product of dims
// must equal the matrix side length.
func NewOperator(dims []int, data []complex128) (*Operator, error) {
	n := 1
	for _, d := range dims {
		if d < 1 {
			return nil, fmt.Errorf("%w: subsystem dimension %d", ErrBadShape, d)
		}
		n *= d
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("%w: %d entries for side %d", ErrBadShape, len(data), n)
	}
	ds := make([]int, len(dims))
	copy(ds, dims)
	buf := make([]complex128, len(data))
	copy(buf, data)
	return &Operator{dims: ds, n: n, m: mat.NewCDense(n, n, buf)}, nil
}

func zero(dims []int) *Operator {
	n := 1
	for _, d := range dims {
		n *= d
	}
	ds := make([]int, len(dims))
	copy(ds, dims)
	return &Operator{dims: ds, n: n, m: mat.NewCDense(n, n, nil)}
}

// Dims returns the subsystem dimension structure.
func (a *Operator) Dims() []int {
	ds := make([]int, len(a.dims))
	copy(ds, a.dims)
	return ds
}

// Size returns the full Hilbert-space dimension.
func (a *Operator) Size() int { return a.n }

// At returns the matrix element at (i, j).
func (a *Operator) At(i, j int) complex128 { return a.m.At(i, j) }

// SameDims reports whether two operators share an identical dimension
// structure.
func (a *Operator) SameDims(b *Operator) bool {
	if len(a.dims) != len(b.dims) {
		return false
	}
	for i := range a.dims {
		if a.dims[i] != b.dims[i] {
			return false
		}
	}
	return true
}

// Add returns a + b.
func (a *Operator) Add(b *Operator) (*Operator, error) {
	if !a.SameDims(b) {
		return nil, fmt.Errorf("%w: add %v vs %v", ErrDimMismatch, a.dims, b.dims)
	}
	out := zero(a.dims)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			out.m.Set(i, j, a.m.At(i, j)+b.m.At(i, j))
		}
	}
	return out, nil
}

// Sub returns a - b.
func (a *Operator) Sub(b *Operator) (*Operator, error) {
	return a.Add(b.Scale(-1))
}

// Scale returns z * a.
func (a *Operator) Scale(z complex128) *Operator {
	out := zero(a.dims)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			out.m.Set(i, j, z*a.m.At(i, j))
		}
	}
	return out
}

// Mul returns the operator product a * b.
func (a *Operator) Mul(b *Operator) (*Operator, error) {
	if !a.SameDims(b) {
		return nil, fmt.Errorf("%w: mul %v vs %v", ErrDimMismatch, a.dims, b.dims)
	}
	out := zero(a.dims)
	for i := 0; i < a.n; i++ {
		for k := 0; k < a.n; k++ {
			aik := a.m.At(i, k)
			if aik == 0 {
				continue
			}
			for j := 0; j < a.n; j++ {
				if v := b.m.At(k, j); v != 0 {
					out.m.Set(i, j, out.m.At(i, j)+aik*v)
				}
			}
		}
	}
	return out, nil
}

// Dag returns the adjoint (conjugate transpose).
func (a *Operator) Dag() *Operator {
	out := zero(a.dims)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			out.m.Set(j, i, cmplx.Conj(a.m.At(i, j)))
		}
	}
	return out
}

// Tensor returns the Kronecker product a ⊗ b; the result's dimension
// structure is the concatenation of both factor lists.
func (a *Operator) Tensor(b *Operator) *Operator {
	dims := make([]int, 0, len(a.dims)+len(b.dims))
	dims = append(dims, a.dims...)
	dims = append(dims, b.dims...)
	out := zero(dims)
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			aij := a.m.At(i, j)
			if aij == 0 {
				continue
			}
			for k := 0; k < b.n; k++ {
				for l := 0; l < b.n; l++ {
					out.m.Set(i*b.n+k, j*b.n+l, aij*b.m.At(k, l))
				}
			}
		}
	}
	return out
}

// Norm returns the Frobenius norm.
func (a *Operator) Norm() float64 {
	sum := 0.0
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			v := a.m.At(i, j)
			sum += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return math.Sqrt(sum)
}

// Trace returns the matrix trace.
func (a *Operator) Trace() complex128 {
	var tr complex128
	for i := 0; i < a.n; i++ {
		tr += a.m.At(i, i)
	}
	return tr
}

// EqualApprox reports element-wise equality within tol.
func (a *Operator) EqualApprox(b *Operator, tol float64) bool {
	if !a.SameDims(b) {
		return false
	}
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.n; j++ {
			if cmplx.Abs(a.m.At(i, j)-b.m.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}

// Apply returns the matrix-vector product a|k⟩. Dimension agreement is the
// caller's responsibility; the solvers validate it before integration starts.
func (a *Operator) Apply(k Ket) Ket {
	if len(k) != a.n {
		panic("quant: operator applied to state of wrong dimension")
	}
	out := make(Ket, a.n)
	for i := 0; i < a.n; i++ {
		var s complex128
		for j := 0; j < a.n; j++ {
			if v := a.m.At(i, j); v != 0 {
				s += v * k[j]
			}
		}
		out[i] = s
	}
	return out
}

// Identity returns the identity on a single subsystem of dimension n.
func Identity(n int) *Operator {
	op := zero([]int{n})
	for i := 0; i < n; i++ {
		op.m.Set(i, i, 1)
	}
	return op
}

// Destroy returns the bosonic annihilation operator truncated to n levels.
func Destroy(n int) *Operator {
	op := zero([]int{n})
	for i := 1; i < n; i++ {
		op.m.Set(i-1, i, complex(math.Sqrt(float64(i)), 0))
	}
	return op
}

// Create returns the creation operator truncated to n levels.
func Create(n int) *Operator { return Destroy(n).Dag() }

// Num returns the number operator truncated to n levels.
func Num(n int) *Operator {
	op := zero([]int{n})
	for i := 0; i < n; i++ {
		op.m.Set(i, i, complex(float64(i), 0))
	}
	return op
}

// SigmaX returns the Pauli X operator.
func SigmaX() *Operator {
	op := zero([]int{2})
	op.m.Set(0, 1, 1)
	op.m.Set(1, 0, 1)
	return op
}

// SigmaY returns the Pauli Y operator.
func SigmaY() *Operator {
	op := zero([]int{2})
	op.m.Set(0, 1, complex(0, -1))
	op.m.Set(1, 0, complex(0, 1))
	return op
}

// SigmaZ returns the Pauli Z operator.
func SigmaZ() *Operator {
	op := zero([]int{2})
	op.m.Set(0, 0, 1)
	op.m.Set(1, 1, -1)
	return op
}

// SigmaMinus returns the qubit lowering operator |0⟩⟨1|.
func SigmaMinus() *Operator { return Destroy(2) }

// SigmaPlus returns the qubit raising operator |1⟩⟨0|.
func SigmaPlus() *Operator { return Create(2) }
