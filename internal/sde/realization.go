package sde

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Kind distinguishes the random-increment families a realization holds.
type Kind int

const (
	// KindWiener holds gaussian increments pre-scaled by √dt for diffusive
	// detection.
	KindWiener Kind = iota
	// KindUniform holds uniform [0,1) draws for jump detection.
	KindUniform
)

// ErrNoiseShape indicates a supplied realization incompatible with the solve
// configuration.
var ErrNoiseShape = errors.New("sde: noise realization shape mismatch")

// Realization is the complete randomness of an ensemble: one block of
// per-step, per-substep, per-channel increments for every trajectory.
// It is immutable once generated; a trajectory's block fully determines its
// evolution, and permuting the seed list permutes whole blocks.
type Realization struct {
	Kind   Kind      `msgpack:"kind"`
	NTraj  int       `msgpack:"ntraj"`
	NSteps int       `msgpack:"nsteps"`
	NSub   int       `msgpack:"nsub"`
	NChan  int       `msgpack:"nchan"`
	NInc   int       `msgpack:"ninc"`
	Seeds  []uint64  `msgpack:"seeds"`
	Data   []float64 `msgpack:"data"`
}

// NewWiener generates Wiener increments for every trajectory, each block
// drawn from its own seed. Increments are pre-scaled by the square root of
// the substep duration of their output interval.
func NewWiener(seeds []uint64, tlist []float64, nsub, nchan, ninc int) *Realization {
	r := &Realization{
		Kind:   KindWiener,
		NTraj:  len(seeds),
		NSteps: len(tlist) - 1,
		NSub:   nsub,
		NChan:  nchan,
		NInc:   ninc,
		Seeds:  append([]uint64(nil), seeds...),
	}
	per := r.NSteps * nsub * nchan * ninc
	r.Data = make([]float64, r.NTraj*per)
	for k, seed := range seeds {
		normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
		block := r.Data[k*per : (k+1)*per]
		idx := 0
		for i := 0; i < r.NSteps; i++ {
			scale := math.Sqrt((tlist[i+1] - tlist[i]) / float64(nsub))
			for s := 0; s < nsub*nchan*ninc; s++ {
				block[idx] = scale * normal.Rand()
				idx++
			}
		}
	}
	return r
}

// NewUniform generates uniform draws for jump detection, one per channel per
// substep.
func NewUniform(seeds []uint64, tlist []float64, nsub, nchan int) *Realization {
	r := &Realization{
		Kind:   KindUniform,
		NTraj:  len(seeds),
		NSteps: len(tlist) - 1,
		NSub:   nsub,
		NChan:  nchan,
		NInc:   1,
		Seeds:  append([]uint64(nil), seeds...),
	}
	per := r.NSteps * nsub * nchan
	r.Data = make([]float64, r.NTraj*per)
	for k, seed := range seeds {
		uni := distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)}
		block := r.Data[k*per : (k+1)*per]
		for i := range block {
			block[i] = uni.Rand()
		}
	}
	return r
}

func (r *Realization) perTraj() int { return r.NSteps * r.NSub * r.NChan * r.NInc }

// At returns the increments for one substep: NChan*NInc values, channel-major.
// The returned slice aliases the realization and must not be written.
func (r *Realization) At(traj, step, sub int) []float64 {
	w := r.NChan * r.NInc
	off := ((traj*r.NSteps+step)*r.NSub + sub) * w
	return r.Data[off : off+w]
}

// Block returns one trajectory's full increment block (read-only).
func (r *Realization) Block(traj int) []float64 {
	per := r.perTraj()
	return r.Data[traj*per : (traj+1)*per]
}

// Equal reports whether two realizations hold identical increments.
func (r *Realization) Equal(o *Realization) bool {
	if o == nil || r.Kind != o.Kind || r.NTraj != o.NTraj || r.NSteps != o.NSteps ||
		r.NSub != o.NSub || r.NChan != o.NChan || r.NInc != o.NInc {
		return false
	}
	for i := range r.Data {
		if r.Data[i] != o.Data[i] {
			return false
		}
	}
	return true
}

// Validate checks the realization against a solve configuration.
func (r *Realization) Validate(kind Kind, ntraj, nsteps, nsub, nchan, ninc int) error {
	if r.Kind != kind {
		return fmt.Errorf("%w: increment family", ErrNoiseShape)
	}
	if r.NTraj != ntraj || r.NSteps != nsteps || r.NSub != nsub ||
		r.NChan != nchan || r.NInc != ninc {
		return fmt.Errorf("%w: have (%d,%d,%d,%d,%d), want (%d,%d,%d,%d,%d)",
			ErrNoiseShape, r.NTraj, r.NSteps, r.NSub, r.NChan, r.NInc,
			ntraj, nsteps, nsub, nchan, ninc)
	}
	if len(r.Data) != ntraj*r.perTraj() {
		return fmt.Errorf("%w: %d increments for declared shape", ErrNoiseShape, len(r.Data))
	}
	return nil
}
