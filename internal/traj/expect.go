package traj

import (
	"math"

	"github.com/san-kum/qdyn/internal/quant"
	"github.com/san-kum/qdyn/internal/sde"
)

// average reduces the ensemble to per-observable expectation traces,
// iterating trajectories in index order so the result is deterministic.
func (s *Solver) average(trajs []*sde.Traj, tlist []float64) [][]complex128 {
	out := make([][]complex128, len(s.eOps))
	inv := complex(1/float64(len(trajs)), 0)
	for o, op := range s.eOps {
		trace := make([]complex128, len(tlist))
		for _, tr := range trajs {
			for i, psi := range tr.States {
				trace[i] += quant.Expect(op, psi)
			}
		}
		for i := range trace {
			trace[i] *= inv
		}
		out[o] = trace
	}
	return out
}

// records extracts one measurement record per trajectory.
func (s *Solver) records(trajs []*sde.Traj, tlist []float64, m Method, nchan int) []*Record {
	times := tlist[1:]
	out := make([]*Record, len(trajs))
	for k, tr := range trajs {
		switch m {
		case Heterodyne:
			out[k] = heterodyneRecord(tr, tlist, times, nchan)
		case Photocurrent:
			out[k] = countRecord(tr, times, nchan)
		default:
			out[k] = homodyneRecord(tr, tlist, times, nchan)
		}
	}
	return out
}

// homodyneRecord builds the per-interval current
// Jⱼ(i) = (Σ_sub eⱼ·dt_sub + Σ_sub dWⱼ) / Δtᵢ.
func homodyneRecord(tr *sde.Traj, tlist, times []float64, nchan int) *Record {
	r := newRecord(times, nchan, 1)
	for i := range times {
		dt := tlist[i+1] - tlist[i]
		for j := 0; j < nchan; j++ {
			r.set(i, j, 0, (tr.ESum[i][j]+tr.DWSum[i][j])/dt)
		}
	}
	return r
}

// heterodyneRecord folds the doubled quadrature channels back onto the
// physical channels; the √2 undoes the channel-splitting scale.
func heterodyneRecord(tr *sde.Traj, tlist, times []float64, nchan int) *Record {
	r := newRecord(times, nchan, 2)
	for i := range times {
		dt := tlist[i+1] - tlist[i]
		for j := 0; j < nchan; j++ {
			for q := 0; q < 2; q++ {
				c := 2*j + q
				r.set(i, j, q, math.Sqrt2*(tr.ESum[i][c]+tr.DWSum[i][c])/dt)
			}
		}
	}
	return r
}

// countRecord reports raw click counts per channel per interval.
func countRecord(tr *sde.Traj, times []float64, nchan int) *Record {
	r := newRecord(times, nchan, 1)
	for i := range times {
		for j := 0; j < nchan; j++ {
			r.set(i, j, 0, float64(tr.Counts[i][j]))
		}
	}
	return r
}
