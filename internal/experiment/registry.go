// Package experiment names the solvable scenarios and the solver and method
// choices the CLI exposes.
package experiment

import (
	"fmt"
	"math"

	"github.com/san-kum/qdyn/internal/noise"
	"github.com/san-kum/qdyn/internal/quant"
	"github.com/san-kum/qdyn/internal/sde"
	"github.com/san-kum/qdyn/internal/traj"
)

// Scenario is a fully assembled physical setup ready to hand to the solver.
type Scenario struct {
	Name     string
	Describe string

	H    *quant.TimeDep
	SC   []*quant.TimeDep
	EOps []*quant.Operator
	// Labels names EOps entry-for-entry in output tables.
	Labels []string
	Psi0   quant.Ket
	Dims   []int
}

type Registry struct {
	scenarios map[string]func(tlist []float64) (*Scenario, error)
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]func([]float64) (*Scenario, error))}

	r.scenarios["damped-cavity"] = dampedCavity
	r.scenarios["relaxing-qubit"] = relaxingQubit
	r.scenarios["driven-qubit"] = drivenQubit
	r.scenarios["dephasing-chain"] = dephasingChain

	return r
}

// GetScenario assembles a scenario on the given output grid; time-dependent
// drives are sampled on it.
func (r *Registry) GetScenario(name string, tlist []float64) (*Scenario, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return fn(tlist)
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	return names
}

// ListSolvers exposes the integration scheme names.
func (r *Registry) ListSolvers() []string { return sde.SchemeNames() }

// ListMethods exposes the detection method names.
func (r *Registry) ListMethods() []string { return traj.MethodNames() }

// dampedCavity is a leaky cavity mode monitored through its output field:
// H = Δ·a†a, one collapse channel √γ·a, starting from a coherent state.
func dampedCavity(_ []float64) (*Scenario, error) {
	const (
		levels = 5
		delta  = 1.0
		gamma  = 0.25
	)
	a := quant.Destroy(levels)
	x, err := a.Add(a.Dag())
	if err != nil {
		return nil, err
	}
	return &Scenario{
		Name:     "damped-cavity",
		Describe: "leaky cavity mode from a coherent state",
		H:        quant.Static(quant.Num(levels).Scale(delta)),
		SC:       []*quant.TimeDep{quant.Static(a.Scale(complex(math.Sqrt(gamma), 0)))},
		EOps:     []*quant.Operator{x, quant.Num(levels)},
		Labels:   []string{"x", "n"},
		Psi0:     quant.Coherent(levels, 1),
		Dims:     []int{levels},
	}, nil
}

// relaxingQubit is a single qubit with T1 and T2 channels from the
// relaxation noise model, decaying from the excited state.
func relaxingQubit(tlist []float64) (*Scenario, error) {
	rel := noise.NewRelaxation([]float64{4.0}, []float64{3.0})
	sc, err := rel.LindbladOps(1, tlist)
	if err != nil {
		return nil, err
	}
	return &Scenario{
		Name:     "relaxing-qubit",
		Describe: "qubit decay under T1/T2 relaxation",
		H:        quant.Static(quant.SigmaZ().Scale(0.5)),
		SC:       sc,
		EOps:     []*quant.Operator{quant.SigmaZ(), quant.SigmaX()},
		Labels:   []string{"sz", "sx"},
		Psi0:     quant.Fock(2, 1),
		Dims:     []int{2},
	}, nil
}

// drivenQubit adds a resonant σx drive on top of the relaxing qubit; the
// drive envelope is sampled on the output grid.
func drivenQubit(tlist []float64) (*Scenario, error) {
	const rabi = 2.0

	rel := noise.NewRelaxation([]float64{6.0}, []float64{5.0})
	sc, err := rel.LindbladOps(1, tlist)
	if err != nil {
		return nil, err
	}

	env := make([]complex128, len(tlist))
	for i, t := range tlist {
		env[i] = complex(rabi*math.Cos(t), 0)
	}
	drive := &noise.ControlAmp{
		Ops:    []*quant.Operator{quant.SigmaX().Scale(0.5)},
		Coeffs: [][]complex128{env},
	}
	driveTD, err := drive.DriveOp(1, tlist, nil)
	if err != nil {
		return nil, err
	}
	h, err := quant.Static(quant.SigmaZ().Scale(0.5)).Merge(driveTD)
	if err != nil {
		return nil, err
	}
	return &Scenario{
		Name:     "driven-qubit",
		Describe: "Rabi-driven qubit with relaxation",
		H:        h,
		SC:       sc,
		EOps:     []*quant.Operator{quant.SigmaZ(), quant.SigmaX()},
		Labels:   []string{"sz", "sx"},
		Psi0:     quant.Fock(2, 0),
		Dims:     []int{2},
	}, nil
}

// dephasingChain is a three-qubit register with collective σz dephasing on
// every site, watching the coherence of a superposition on the first qubit.
func dephasingChain(tlist []float64) (*Scenario, error) {
	const (
		n    = 3
		rate = 0.3
	)
	dec, err := noise.NewDecoherence(
		[]*quant.Operator{quant.SigmaZ().Scale(complex(math.Sqrt(rate), 0))},
		nil, nil, true)
	if err != nil {
		return nil, err
	}
	sc, err := dec.LindbladOps(n, tlist)
	if err != nil {
		return nil, err
	}

	dims := []int{2, 2, 2}
	h, err := quant.Expand(quant.SigmaZ().Scale(0.5), n, []int{0})
	if err != nil {
		return nil, err
	}
	sx0, err := quant.Expand(quant.SigmaX(), n, []int{0})
	if err != nil {
		return nil, err
	}
	sz0, err := quant.Expand(quant.SigmaZ(), n, []int{0})
	if err != nil {
		return nil, err
	}

	// (|0⟩+|1⟩)/√2 on the first qubit, ground elsewhere
	psi0 := make(quant.Ket, 8)
	psi0[0] = complex(1/math.Sqrt2, 0)
	psi0[4] = complex(1/math.Sqrt2, 0)

	return &Scenario{
		Name:     "dephasing-chain",
		Describe: "three qubits under collective dephasing",
		H:        quant.Static(h),
		SC:       sc,
		EOps:     []*quant.Operator{sx0, sz0},
		Labels:   []string{"sx0", "sz0"},
		Psi0:     psi0,
		Dims:     dims,
	}, nil
}
