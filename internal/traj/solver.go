package traj

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/san-kum/qdyn/internal/quant"
	"github.com/san-kum/qdyn/internal/sde"
)

// Opts configures an ensemble solve.
type Opts struct {
	// Scheme names the diffusive integration scheme; ignored for the
	// photocurrent method.
	Scheme string
	Method Method
	NTraj  int
	// NSub is the number of integration substeps per output interval.
	NSub int
	// Seed feeds the master generator deriving per-trajectory seeds when
	// Seeds is empty.
	Seed  uint64
	Seeds []uint64
	// Noise replays a previously generated realization instead of drawing a
	// fresh one. Its shape must match the solve configuration.
	Noise *sde.Realization

	StoreMeasurement bool
	StoreStates      bool
	// Workers bounds the trajectory pool; 0 means GOMAXPROCS.
	Workers int
}

// Result is the reduced output of an ensemble solve.
type Result struct {
	Times []float64
	// Expect[o][i] is the ensemble average of observable o at Times[i].
	Expect [][]complex128
	NTraj  int
	// Measurement holds one record per trajectory when requested.
	Measurement []*Record
	// States holds every trajectory's states when requested.
	States [][]quant.Ket
	// Noise is the complete randomness of the run, sufficient to replay it.
	Noise *sde.Realization
}

// Solver evolves ensembles of stochastic trajectories for one system.
type Solver struct {
	h    *quant.TimeDep
	sc   []*quant.TimeDep
	eOps []*quant.Operator
	log  zerolog.Logger
}

// New builds a solver from a Hamiltonian, stochastic channel operators, and
// the observables to average.
func New(h *quant.TimeDep, sc []*quant.TimeDep, eOps []*quant.Operator) (*Solver, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil Hamiltonian", quant.ErrBadShape)
	}
	if len(sc) == 0 {
		return nil, fmt.Errorf("%w: no stochastic operators", quant.ErrBadShape)
	}
	for i, op := range sc {
		if op.Size() != h.Size() {
			return nil, fmt.Errorf("%w: stochastic operator %d has size %d, system has %d",
				quant.ErrDimMismatch, i, op.Size(), h.Size())
		}
	}
	for i, op := range eOps {
		if op.Size() != h.Size() {
			return nil, fmt.Errorf("%w: observable %d has size %d, system has %d",
				quant.ErrDimMismatch, i, op.Size(), h.Size())
		}
	}
	return &Solver{h: h, sc: sc, eOps: eOps, log: zerolog.Nop()}, nil
}

// WithLogger returns a copy of the solver logging through l.
func (s *Solver) WithLogger(l zerolog.Logger) *Solver {
	out := *s
	out.log = l
	return &out
}

// channels returns the effective stochastic operators for a method;
// heterodyne splits every channel into two quadrature channels.
func (s *Solver) channels(m Method) []*quant.TimeDep {
	if m != Heterodyne {
		return s.sc
	}
	inv := complex(1/math.Sqrt2, 0)
	out := make([]*quant.TimeDep, 0, 2*len(s.sc))
	for _, op := range s.sc {
		out = append(out, op.Scale(inv), op.Scale(complex(0, -1)*inv))
	}
	return out
}

func (s *Solver) validate(psi0 quant.Ket, tlist []float64, opts Opts) error {
	if opts.NTraj <= 0 {
		return fmt.Errorf("%w: ntraj must be positive", quant.ErrBadShape)
	}
	if opts.NSub <= 0 {
		return fmt.Errorf("%w: nsub must be positive", quant.ErrBadShape)
	}
	if len(opts.Seeds) > 0 && len(opts.Seeds) != opts.NTraj {
		return fmt.Errorf("%w: %d seeds for %d trajectories", quant.ErrBadShape, len(opts.Seeds), opts.NTraj)
	}
	if len(psi0) != s.h.Size() {
		return fmt.Errorf("%w: state has dimension %d, system has %d",
			quant.ErrDimMismatch, len(psi0), s.h.Size())
	}
	if len(tlist) < 2 {
		return fmt.Errorf("%w: need at least two output times", quant.ErrBadShape)
	}
	for i := 1; i < len(tlist); i++ {
		if tlist[i] <= tlist[i-1] {
			return fmt.Errorf("%w: output times must be strictly increasing", quant.ErrBadShape)
		}
	}
	return nil
}

func (s *Solver) seeds(opts Opts) []uint64 {
	if len(opts.Seeds) > 0 {
		return append([]uint64(nil), opts.Seeds...)
	}
	master := rand.New(rand.NewSource(opts.Seed))
	seeds := make([]uint64, opts.NTraj)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}
	return seeds
}

// Run evolves the ensemble and reduces it. On any trajectory error the whole
// solve fails; no partial results are returned.
func (s *Solver) Run(ctx context.Context, psi0 quant.Ket, tlist []float64, opts Opts) (*Result, error) {
	if err := s.validate(psi0, tlist, opts); err != nil {
		return nil, err
	}

	sc := s.channels(opts.Method)
	sys, err := sde.NewSystem(s.h, sc)
	if err != nil {
		return nil, err
	}

	var sch sde.Scheme
	ninc := 1
	if opts.Method != Photocurrent {
		if sch, err = sde.NewScheme(opts.Scheme); err != nil {
			return nil, err
		}
		ninc = sch.Increments()
		if lim, ok := sch.(sde.ChannelLimited); ok && len(sc) > lim.MaxChannels() {
			return nil, fmt.Errorf("%w: scheme %s supports at most %d channels, system has %d",
				sde.ErrNoiseShape, sch.Name(), lim.MaxChannels(), len(sc))
		}
	}

	nsteps := len(tlist) - 1
	noise := opts.Noise
	if noise != nil {
		kind := sde.KindWiener
		if opts.Method == Photocurrent {
			kind = sde.KindUniform
		}
		if err := noise.Validate(kind, opts.NTraj, nsteps, opts.NSub, len(sc), ninc); err != nil {
			return nil, err
		}
	} else {
		seeds := s.seeds(opts)
		if opts.Method == Photocurrent {
			noise = sde.NewUniform(seeds, tlist, opts.NSub, len(sc))
		} else {
			noise = sde.NewWiener(seeds, tlist, opts.NSub, len(sc), ninc)
		}
	}

	s.log.Debug().
		Str("method", opts.Method.String()).
		Str("scheme", opts.Scheme).
		Int("ntraj", opts.NTraj).
		Int("nsub", opts.NSub).
		Int("channels", len(sc)).
		Msg("running ensemble")

	trajs := make([]*sde.Traj, opts.NTraj)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > opts.NTraj {
		workers = opts.NTraj
	}

	idx := make(chan int, opts.NTraj)
	for k := 0; k < opts.NTraj; k++ {
		idx <- k
	}
	close(idx)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	aborted := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range idx {
				if aborted() {
					return
				}
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				var tr *sde.Traj
				var err error
				if opts.Method == Photocurrent {
					tr, err = sde.IntegrateJump(sys, psi0, tlist, opts.NSub, noise, k)
				} else {
					tr, err = sde.Integrate(sys, sch, psi0, tlist, opts.NSub, noise, k)
				}
				if err != nil {
					fail(err)
					return
				}
				trajs[k] = tr
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	res := &Result{
		Times:  append([]float64(nil), tlist...),
		Expect: s.average(trajs, tlist),
		NTraj:  opts.NTraj,
		Noise:  noise,
	}
	if opts.StoreMeasurement {
		res.Measurement = s.records(trajs, tlist, opts.Method, len(s.sc))
	}
	if opts.StoreStates {
		res.States = make([][]quant.Ket, opts.NTraj)
		for k, tr := range trajs {
			res.States[k] = tr.States
		}
	}
	s.log.Debug().Int("ntraj", opts.NTraj).Msg("ensemble reduced")
	return res, nil
}

// RunSeeds is Run with an explicit seed list.
func (s *Solver) RunSeeds(ctx context.Context, psi0 quant.Ket, tlist []float64, opts Opts, seeds []uint64) (*Result, error) {
	opts.Seeds = seeds
	opts.NTraj = len(seeds)
	return s.Run(ctx, psi0, tlist, opts)
}
