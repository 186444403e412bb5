package traj

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/qdyn/internal/master"
	"github.com/san-kum/qdyn/internal/quant"
	"github.com/san-kum/qdyn/internal/sde"
)

func dampedQubit(t *testing.T, gamma float64) *Solver {
	t.Helper()
	s, err := New(
		quant.Static(quant.SigmaZ()),
		[]*quant.TimeDep{quant.Static(quant.SigmaMinus().Scale(complex(math.Sqrt(gamma), 0)))},
		[]*quant.Operator{quant.SigmaZ()},
	)
	require.NoError(t, err)
	return s
}

func TestParseMethod(t *testing.T) {
	for _, name := range MethodNames() {
		m, err := ParseMethod(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}
	_, err := ParseMethod("direct")
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestNewValidation(t *testing.T) {
	h := quant.Static(quant.SigmaZ())
	sc := []*quant.TimeDep{quant.Static(quant.SigmaMinus())}

	_, err := New(h, nil, nil)
	require.ErrorIs(t, err, quant.ErrBadShape)

	_, err = New(h, sc, []*quant.Operator{quant.Num(3)})
	require.ErrorIs(t, err, quant.ErrDimMismatch)

	_, err = New(h, []*quant.TimeDep{quant.Static(quant.Destroy(3))}, nil)
	require.ErrorIs(t, err, quant.ErrDimMismatch)
}

func TestRunValidation(t *testing.T) {
	s := dampedQubit(t, 0.5)
	psi0 := quant.Fock(2, 1)
	tlist := []float64{0, 0.5, 1.0}
	base := Opts{Scheme: "platen", NTraj: 4, NSub: 10}

	cases := []struct {
		name string
		mod  func(*Opts)
		psi  quant.Ket
		grid []float64
		want error
	}{
		{"zero ntraj", func(o *Opts) { o.NTraj = 0 }, psi0, tlist, quant.ErrBadShape},
		{"zero nsub", func(o *Opts) { o.NSub = 0 }, psi0, tlist, quant.ErrBadShape},
		{"seed count", func(o *Opts) { o.Seeds = []uint64{1} }, psi0, tlist, quant.ErrBadShape},
		{"state dims", func(o *Opts) {}, quant.Fock(3, 0), tlist, quant.ErrDimMismatch},
		{"short grid", func(o *Opts) {}, psi0, []float64{0}, quant.ErrBadShape},
		{"unordered grid", func(o *Opts) {}, psi0, []float64{0, 1, 1}, quant.ErrBadShape},
		{"bad scheme", func(o *Opts) { o.Scheme = "rk4" }, psi0, tlist, sde.ErrUnknownScheme},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := base
			tc.mod(&opts)
			_, err := s.Run(context.Background(), tc.psi, tc.grid, opts)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRunReplaysBitIdentical(t *testing.T) {
	s := dampedQubit(t, 0.4)
	psi0 := quant.Fock(2, 1)
	tlist := []float64{0, 0.25, 0.5, 0.75, 1.0}
	opts := Opts{Scheme: "milstein", NTraj: 6, NSub: 15, Seed: 99, StoreMeasurement: true}

	a, err := s.Run(context.Background(), psi0, tlist, opts)
	require.NoError(t, err)
	b, err := s.Run(context.Background(), psi0, tlist, opts)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(a, b))

	// replaying the recorded realization reproduces the run too
	opts.Noise = a.Noise
	c, err := s.Run(context.Background(), psi0, tlist, opts)
	require.NoError(t, err)
	assert.Equal(t, a.Expect, c.Expect)
	assert.Equal(t, a.Measurement, c.Measurement)
}

func TestSeedPermutationPermutesBlocks(t *testing.T) {
	s := dampedQubit(t, 0.4)
	psi0 := quant.Fock(2, 1)
	tlist := []float64{0, 0.5, 1.0}

	a, err := s.RunSeeds(context.Background(), psi0, tlist,
		Opts{Scheme: "platen", NSub: 10}, []uint64{1, 2})
	require.NoError(t, err)
	b, err := s.RunSeeds(context.Background(), psi0, tlist,
		Opts{Scheme: "platen", NSub: 10}, []uint64{2, 1})
	require.NoError(t, err)

	assert.Equal(t, a.Noise.Block(0), b.Noise.Block(1))
	assert.Equal(t, a.Noise.Block(1), b.Noise.Block(0))
	// the ensemble average is order-independent
	for o := range a.Expect {
		for i := range a.Expect[o] {
			assert.InDelta(t, real(a.Expect[o][i]), real(b.Expect[o][i]), 1e-12)
		}
	}
}

func TestRecordShapes(t *testing.T) {
	s := dampedQubit(t, 0.3)
	psi0 := quant.Fock(2, 1)
	tlist := []float64{0, 0.5, 1.0, 1.5}

	hom, err := s.Run(context.Background(), psi0, tlist,
		Opts{Scheme: "euler-maruyama", Method: Homodyne, NTraj: 2, NSub: 10, Seed: 1, StoreMeasurement: true})
	require.NoError(t, err)
	require.Len(t, hom.Measurement, 2)
	ti, ch, q := hom.Measurement[0].Shape()
	assert.Equal(t, [3]int{3, 1, 1}, [3]int{ti, ch, q})

	het, err := s.Run(context.Background(), psi0, tlist,
		Opts{Scheme: "euler-maruyama", Method: Heterodyne, NTraj: 2, NSub: 10, Seed: 1, StoreMeasurement: true})
	require.NoError(t, err)
	ti, ch, q = het.Measurement[0].Shape()
	assert.Equal(t, [3]int{3, 1, 2}, [3]int{ti, ch, q})
	// heterodyne doubles the stochastic channels inside the realization
	assert.Equal(t, 2, het.Noise.NChan)

	none, err := s.Run(context.Background(), psi0, tlist,
		Opts{Scheme: "euler-maruyama", NTraj: 2, NSub: 10, Seed: 1})
	require.NoError(t, err)
	assert.Nil(t, none.Measurement)
	assert.Nil(t, none.States)
	assert.NotNil(t, none.Noise)
}

func TestChannelLimitedScheme(t *testing.T) {
	// heterodyne doubles one channel to two, exceeding taylor2.0's limit
	s := dampedQubit(t, 0.3)
	_, err := s.Run(context.Background(), quant.Fock(2, 1), []float64{0, 0.5},
		Opts{Scheme: "taylor2.0", Method: Heterodyne, NTraj: 1, NSub: 10})
	require.ErrorIs(t, err, sde.ErrNoiseShape)
}

func TestNoiseShapeMismatchRejected(t *testing.T) {
	s := dampedQubit(t, 0.3)
	tlist := []float64{0, 0.5, 1.0}
	noise := sde.NewWiener([]uint64{1, 2}, tlist, 10, 1, 1)

	_, err := s.Run(context.Background(), quant.Fock(2, 1), tlist,
		Opts{Scheme: "platen", NTraj: 3, NSub: 10, Noise: noise})
	require.ErrorIs(t, err, sde.ErrNoiseShape)
}

func TestRunCancelled(t *testing.T) {
	s := dampedQubit(t, 0.3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, quant.Fock(2, 1), []float64{0, 0.5, 1.0},
		Opts{Scheme: "platen", NTraj: 8, NSub: 10})
	require.ErrorIs(t, err, context.Canceled)
}

// The homodyne ensemble mean must track the master equation within sampling
// error.
func TestHomodyneMatchesMaster(t *testing.T) {
	gamma := 0.5
	s := dampedQubit(t, gamma)
	psi0 := quant.Fock(2, 1)
	tlist := []float64{0, 0.4, 0.8, 1.2, 1.6, 2.0}

	ref, err := master.SolveKet(
		quant.Static(quant.SigmaZ()),
		[]*quant.TimeDep{quant.Static(quant.SigmaMinus().Scale(complex(math.Sqrt(gamma), 0)))},
		psi0, []int{2}, tlist, 50, []*quant.Operator{quant.SigmaZ()})
	require.NoError(t, err)

	res, err := s.Run(context.Background(), psi0, tlist,
		Opts{Scheme: "platen", Method: Homodyne, NTraj: 200, NSub: 25, Seed: 7})
	require.NoError(t, err)

	for i := range tlist {
		assert.InDelta(t, real(ref.Expect[0][i]), real(res.Expect[0][i]), 0.25, "t=%g", tlist[i])
	}
}

func TestPhotocurrentMatchesMaster(t *testing.T) {
	gamma := 0.5
	s := dampedQubit(t, gamma)
	psi0 := quant.Fock(2, 1)
	tlist := []float64{0, 0.5, 1.0, 1.5, 2.0}

	res, err := s.Run(context.Background(), psi0, tlist,
		Opts{Method: Photocurrent, NTraj: 300, NSub: 40, Seed: 11, StoreMeasurement: true})
	require.NoError(t, err)

	for i, tt := range tlist {
		want := 1 - 2*math.Exp(-gamma*tt)
		assert.InDelta(t, want, real(res.Expect[0][i]), 0.25, "t=%g", tt)
	}

	// mean click count over the whole window approaches 1 − e^{-γT}
	total := 0.0
	for _, rec := range res.Measurement {
		for i := range rec.Times {
			total += rec.At(i, 0)
		}
	}
	assert.InDelta(t, 1-math.Exp(-gamma*2.0), total/300, 0.15)
}
