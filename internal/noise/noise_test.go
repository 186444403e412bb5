package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qdyn/internal/quant"
)

func TestRelaxationT1Only(t *testing.T) {
	r := NewRelaxation([]float64{1.0}, nil)
	ops, err := r.LindbladOps(1, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	want := quant.SigmaMinus().Scale(complex(1/math.Sqrt(1.0), 0))
	assert.True(t, ops[0].IsConstant())
	assert.True(t, ops[0].Const().EqualApprox(want, 1e-14))
}

func TestRelaxationT1T2Combination(t *testing.T) {
	// T2 = 1.9 < 2·T1 = 2.0 is allowed and yields two channels.
	ops, err := NewRelaxation([]float64{1.0}, []float64{1.9}).LindbladOps(1, nil)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	t2eff := 1 / (1/1.9 - 1/2.0)
	wantZ := quant.SigmaZ().Scale(complex(1/math.Sqrt(2*t2eff), 0))
	assert.True(t, ops[1].Const().EqualApprox(wantZ, 1e-14))

	// The boundary T2 = 2·T1 must fail, not clamp.
	_, err = NewRelaxation([]float64{1.0}, []float64{2.0}).LindbladOps(1, nil)
	assert.ErrorIs(t, err, ErrRelaxationTime)

	_, err = NewRelaxation([]float64{1.0}, []float64{2.5}).LindbladOps(1, nil)
	assert.ErrorIs(t, err, ErrRelaxationTime)
}

func TestRelaxationT2Only(t *testing.T) {
	ops, err := NewRelaxation(nil, []float64{0.5}).LindbladOps(2, nil)
	require.NoError(t, err)
	require.Len(t, ops, 2) // one dephasing channel per site

	want, err := quant.Expand(quant.SigmaZ().Scale(complex(1/math.Sqrt(2*0.5), 0)), 2, []int{0})
	require.NoError(t, err)
	assert.True(t, ops[0].Const().EqualApprox(want, 1e-14))
}

func TestRelaxationValidation(t *testing.T) {
	_, err := NewRelaxation([]float64{-1}, nil).LindbladOps(1, nil)
	assert.ErrorIs(t, err, ErrRelaxationTime)

	_, err = NewRelaxation([]float64{1, 2, 3}, nil).LindbladOps(2, nil)
	assert.ErrorIs(t, err, ErrRelaxationTime)

	// NaN disables a single site
	ops, err := NewRelaxation([]float64{1, math.NaN()}, nil).LindbladOps(2, nil)
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestDecoherenceAllQubits(t *testing.T) {
	d, err := NewDecoherence([]*quant.Operator{quant.SigmaMinus()}, nil, nil, true)
	require.NoError(t, err)

	ops, err := d.LindbladOps(3, nil)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, 8, op.Size())
		assert.True(t, op.IsConstant())
	}
}

func TestDecoherenceAllQubitsTiledCoeffs(t *testing.T) {
	tlist := []float64{0, 1, 2, 3}
	coeffs := [][]complex128{{0, 1, 2, 3}}
	d, err := NewDecoherence([]*quant.Operator{quant.SigmaMinus()}, nil, coeffs, true)
	require.NoError(t, err)

	ops, err := d.LindbladOps(3, tlist)
	require.NoError(t, err)
	require.Len(t, ops, 3)
	for _, op := range ops {
		require.Len(t, op.Terms(), 1)
		// the single coefficient row is tiled identically across embeddings
		assert.InDelta(t, 1.5, real(op.Terms()[0].C.Eval(1.5)), 1e-12)
	}
}

func TestDecoherenceValidation(t *testing.T) {
	sm := quant.SigmaMinus()

	// row count must match operator count
	_, err := NewDecoherence([]*quant.Operator{sm, sm}, nil, [][]complex128{{1, 2}}, false)
	assert.ErrorIs(t, err, ErrCoeffShape)

	// all_qubits demands single-site operators
	_, err = NewDecoherence([]*quant.Operator{sm.Tensor(sm)}, nil, nil, true)
	assert.ErrorIs(t, err, ErrNotSingleSite)

	// coefficient row length must match the grid
	d, err := NewDecoherence([]*quant.Operator{sm}, nil, [][]complex128{{1, 2}}, false)
	require.NoError(t, err)
	_, err = d.LindbladOps(1, []float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrCoeffShape)
}

func TestDecoherenceTargets(t *testing.T) {
	d, err := NewDecoherence([]*quant.Operator{quant.SigmaMinus()}, []int{2}, nil, false)
	require.NoError(t, err)
	ops, err := d.LindbladOps(3, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	want, err := quant.Expand(quant.SigmaMinus(), 3, []int{2})
	require.NoError(t, err)
	assert.True(t, ops[0].Const().EqualApprox(want, 1e-14))

	// operator too large for the addressed site
	bad, err := NewDecoherence([]*quant.Operator{quant.Destroy(3)}, []int{0}, nil, false)
	require.NoError(t, err)
	_, err = bad.LindbladOps(2, nil)
	assert.ErrorIs(t, err, quant.ErrDimMismatch)
}

func TestDecoherenceEmpty(t *testing.T) {
	_, err := NewDecoherence(nil, nil, nil, false)
	assert.True(t, errors.Is(err, ErrNoOperators))
}
