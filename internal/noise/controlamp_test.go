package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/san-kum/qdyn/internal/quant"
)

func TestControlAmpExplicitOps(t *testing.T) {
	tlist := []float64{0, 1, 2}
	ca := &ControlAmp{
		Ops:    []*quant.Operator{quant.SigmaX()},
		Coeffs: [][]complex128{{0, 1, 0}},
	}
	drive, err := ca.DriveOp(2, tlist, nil)
	require.NoError(t, err)
	require.Len(t, drive.Terms(), 1)
	assert.Equal(t, 4, drive.Size())

	// at the grid peak the drive equals the expanded operator
	want, err := quant.Expand(quant.SigmaX(), 2, nil)
	require.NoError(t, err)
	assert.True(t, drive.Eval(1).EqualApprox(want, 1e-14))
	assert.True(t, drive.Eval(0).EqualApprox(want.Scale(0), 1e-14))
}

func TestControlAmpPeriodic(t *testing.T) {
	tlist := []float64{0, 1}
	ca := &ControlAmp{
		Ops:      []*quant.Operator{quant.SigmaZ()},
		Periodic: true,
		Coeffs:   [][]complex128{{1, 1}, {1, 1}, {1, 1}},
	}
	drive, err := ca.DriveOp(3, tlist, nil)
	require.NoError(t, err)
	assert.Len(t, drive.Terms(), 3)
}

func TestControlAmpFallback(t *testing.T) {
	tlist := []float64{0, 1}
	n := quant.Num(4)
	sys, err := quant.NewTimeDep(quant.Identity(4),
		quant.Term{Op: n, C: quant.Constant(1)})
	require.NoError(t, err)

	// constant part plus one term: two coefficient rows expected
	ca := &ControlAmp{Coeffs: [][]complex128{{1, 1}, {2, 2}}}
	drive, err := ca.DriveOp(1, tlist, sys)
	require.NoError(t, err)
	assert.Len(t, drive.Terms(), 2)

	// row count mismatch against the fallback source
	bad := &ControlAmp{Coeffs: [][]complex128{{1, 1}}}
	_, err = bad.DriveOp(1, tlist, sys)
	assert.ErrorIs(t, err, ErrCoeffShape)
}

func TestControlAmpNegligibleConstant(t *testing.T) {
	tlist := []float64{0, 1}
	sys, err := quant.NewTimeDep(quant.Identity(4).Scale(1e-18),
		quant.Term{Op: quant.Num(4), C: quant.Constant(1)})
	require.NoError(t, err)

	// the near-zero constant part is dropped: one row suffices
	ca := &ControlAmp{Coeffs: [][]complex128{{1, 1}}}
	drive, err := ca.DriveOp(1, tlist, sys)
	require.NoError(t, err)
	assert.Len(t, drive.Terms(), 1)

	// a looser threshold keeps it
	keep := &ControlAmp{Coeffs: [][]complex128{{1, 1}, {1, 1}}, CteTol: 1e-20}
	drive, err = keep.DriveOp(1, tlist, sys)
	require.NoError(t, err)
	assert.Len(t, drive.Terms(), 2)
}

func TestControlAmpNoSource(t *testing.T) {
	_, err := (&ControlAmp{}).DriveOp(1, []float64{0, 1}, nil)
	assert.ErrorIs(t, err, ErrNoOperators)
}

func TestWhiteNoiseSampling(t *testing.T) {
	tlist := []float64{0, 0.5, 1, 1.5}
	w := &White{
		Mean: 0, Std: 0.1,
		Ops: []*quant.Operator{quant.SigmaX(), quant.SigmaY()},
		Src: rand.NewSource(7),
	}
	drive, err := w.DriveOp(1, tlist, nil)
	require.NoError(t, err)
	assert.Len(t, drive.Terms(), 2)

	// identical sources reproduce identical coefficients
	w2 := &White{Mean: 0, Std: 0.1,
		Ops: []*quant.Operator{quant.SigmaX(), quant.SigmaY()},
		Src: rand.NewSource(7),
	}
	drive2, err := w2.DriveOp(1, tlist, nil)
	require.NoError(t, err)
	for _, tt := range []float64{0, 0.25, 1.2} {
		assert.Equal(t, drive.Eval(tt).At(0, 1), drive2.Eval(tt).At(0, 1))
	}
}

func TestWhiteNoisePeriodicCount(t *testing.T) {
	w := &White{
		Mean: 0, Std: 1,
		Ops:      []*quant.Operator{quant.SigmaZ()},
		Periodic: true,
		Src:      rand.NewSource(3),
	}
	drive, err := w.DriveOp(3, []float64{0, 1}, nil)
	require.NoError(t, err)
	// one operator replicated over three sites
	assert.Len(t, drive.Terms(), 3)
}

func TestWhiteNoiseFallbackCount(t *testing.T) {
	sys, err := quant.NewTimeDep(quant.Identity(2),
		quant.Term{Op: quant.SigmaZ(), C: quant.Constant(1)})
	require.NoError(t, err)

	w := &White{Mean: 0, Std: 1, Src: rand.NewSource(5)}
	drive, err := w.DriveOp(1, []float64{0, 1}, sys)
	require.NoError(t, err)
	// term count plus one for the constant part
	assert.Len(t, drive.Terms(), 2)
}

func TestWhiteNoiseRequiresSource(t *testing.T) {
	w := &White{Ops: []*quant.Operator{quant.SigmaX()}}
	_, err := w.DriveOp(1, []float64{0, 1}, nil)
	assert.Error(t, err)
}
