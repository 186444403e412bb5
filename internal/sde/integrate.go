package sde

import (
	"fmt"

	"github.com/san-kum/qdyn/internal/quant"
)

// Traj holds a single trajectory on the output grid: the state at every
// output time, and per-interval accumulators the measurement records are
// built from.
type Traj struct {
	// States[i] is the normalized state at tlist[i].
	States []quant.Ket
	// ESum[i][j] accumulates eⱼ·dt_sub over the substeps of interval i.
	ESum [][]float64
	// DWSum[i][j] accumulates the Wiener increments of interval i.
	DWSum [][]float64
	// Counts[i][j] accumulates detector clicks over interval i (jump solves).
	Counts [][]int
}

// TrajError reports where a trajectory became invalid.
type TrajError struct {
	Traj int
	Time float64
	Err  error
}

func (e *TrajError) Error() string {
	return fmt.Sprintf("sde: trajectory %d invalid at t=%g: %v", e.Traj, e.Time, e.Err)
}

func (e *TrajError) Unwrap() error { return e.Err }

// Integrate runs one diffusive trajectory over the output grid, consuming the
// trajectory's block of the supplied realization. The state is renormalized
// after every substep; a non-finite or zero-norm state aborts with a
// TrajError.
func Integrate(sys *System, sch Scheme, psi0 quant.Ket, tlist []float64, nsub int, noise *Realization, traj int) (*Traj, error) {
	nsteps := len(tlist) - 1
	nchan := sys.Channels()
	ninc := noise.NInc

	out := &Traj{
		States: make([]quant.Ket, len(tlist)),
		ESum:   make([][]float64, nsteps),
		DWSum:  make([][]float64, nsteps),
	}
	psi := psi0.Clone()
	psi.Normalize()
	out.States[0] = psi.Clone()

	for i := 0; i < nsteps; i++ {
		dt := (tlist[i+1] - tlist[i]) / float64(nsub)
		esum := make([]float64, nchan)
		dwsum := make([]float64, nchan)
		for s := 0; s < nsub; s++ {
			t := tlist[i] + float64(s)*dt
			dw := noise.At(traj, i, s)
			for j, e := range sys.EVals(t, psi) {
				esum[j] += e * dt
				dwsum[j] += dw[j*ninc]
			}
			psi = sch.Step(sys, psi, t, dt, dw)
			if !psi.IsValid() || psi.Norm() == 0 {
				return nil, &TrajError{Traj: traj, Time: t, Err: fmt.Errorf("state diverged under scheme %s", sch.Name())}
			}
			psi.Normalize()
		}
		out.ESum[i] = esum
		out.DWSum[i] = dwsum
		out.States[i+1] = psi.Clone()
	}
	return out, nil
}

// IntegrateJump runs one photodetection trajectory, consuming one uniform
// draw per channel per substep.
func IntegrateJump(sys *System, psi0 quant.Ket, tlist []float64, nsub int, noise *Realization, traj int) (*Traj, error) {
	nsteps := len(tlist) - 1
	nchan := sys.Channels()

	out := &Traj{
		States: make([]quant.Ket, len(tlist)),
		Counts: make([][]int, nsteps),
	}
	psi := psi0.Clone()
	psi.Normalize()
	out.States[0] = psi.Clone()

	for i := 0; i < nsteps; i++ {
		dt := (tlist[i+1] - tlist[i]) / float64(nsub)
		counts := make([]int, nchan)
		for s := 0; s < nsub; s++ {
			t := tlist[i] + float64(s)*dt
			next, clicks := JumpStep(sys, psi, t, dt, noise.At(traj, i, s))
			if !next.IsValid() || next.Norm() == 0 {
				return nil, &TrajError{Traj: traj, Time: t, Err: fmt.Errorf("state diverged after detection event")}
			}
			psi = next
			for j, c := range clicks {
				counts[j] += c
			}
		}
		out.Counts[i] = counts
		out.States[i+1] = psi.Clone()
	}
	return out, nil
}
