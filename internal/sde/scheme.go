package sde

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/qdyn/internal/quant"
)

// Scheme advances a state by one integration substep, consuming one
// pre-generated increment vector (channel-major, Increments values per
// channel, each pre-scaled by √dt).
type Scheme interface {
	Name() string
	// Increments reports how many random increments the scheme consumes per
	// channel per substep (2 for schemes needing the double Itô integral).
	Increments() int
	Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket
}

// ChannelLimited is implemented by schemes restricted to a fixed channel
// count.
type ChannelLimited interface {
	MaxChannels() int
}

// ErrUnknownScheme indicates an unrecognized scheme name.
var ErrUnknownScheme = errors.New("sde: unknown scheme")

var schemeFactories = map[string]func() Scheme{
	"euler-maruyama": func() Scheme { return eulerMaruyama{} },
	"euler":          func() Scheme { return eulerMaruyama{} },
	"pc-euler":       func() Scheme { return pcEuler{corrDiffusion: false} },
	"pc-euler-2":     func() Scheme { return pcEuler{corrDiffusion: true} },
	"platen":         func() Scheme { return platen{} },
	"milstein":       func() Scheme { return milstein{} },
	"milstein-imp":   func() Scheme { return milsteinImp{} },
	"explicit1.5":    func() Scheme { return explicit15{} },
	"taylor1.5":      func() Scheme { return taylor15{} },
	"taylor1.5-imp":  func() Scheme { return taylor15Imp{} },
	"taylor2.0":      func() Scheme { return taylor20{} },
}

// NewScheme resolves a scheme by name.
func NewScheme(name string) (Scheme, error) {
	f, ok := schemeFactories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return f(), nil
}

// SchemeNames lists the recognized scheme names, sorted.
func SchemeNames() []string {
	names := make([]string, 0, len(schemeFactories))
	for name := range schemeFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// eulerStep computes ψ + d1·dt + Σⱼ d2ⱼ·dWⱼ for already-evaluated derivatives.
func eulerStep(psi, d1 quant.Ket, d2 []quant.Ket, dt float64, dw []float64, stride int) quant.Ket {
	out := psi.Clone()
	addScaled(out, complex(dt, 0), d1)
	for j, v := range d2 {
		addScaled(out, complex(dw[j*stride], 0), v)
	}
	return out
}

type eulerMaruyama struct{}

func (eulerMaruyama) Name() string    { return "euler-maruyama" }
func (eulerMaruyama) Increments() int { return 1 }

func (eulerMaruyama) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	d1, d2 := sys.Deriv(t, psi)
	return eulerStep(psi, d1, d2, dt, dw, 1)
}

// pcEuler is the weak predictor-corrector pair: an Euler predictor followed
// by trapezoidal averaging of the Stratonovich-corrected drift, optionally
// also averaging the diffusion (pc-euler-2).
type pcEuler struct {
	corrDiffusion bool
}

func (p pcEuler) Name() string {
	if p.corrDiffusion {
		return "pc-euler-2"
	}
	return "pc-euler"
}
func (pcEuler) Increments() int { return 1 }

// stratDrift returns d1 − ½ Σⱼ Lⱼd2ⱼ with the derivative taken as a forward
// directional difference along d2ⱼ.
func stratDrift(sys *System, t float64, psi, d1 quant.Ket, d2 []quant.Ket, sq float64) quant.Ket {
	out := d1.Clone()
	for j, v := range d2 {
		_, d2s := sys.Deriv(t, support(psi, complex(sq, 0), v))
		addScaled(out, complex(-0.5/sq, 0), d2s[j])
		addScaled(out, complex(0.5/sq, 0), v)
	}
	return out
}

func (p pcEuler) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	sq := math.Sqrt(dt)
	d1, d2 := sys.Deriv(t, psi)
	pred := eulerStep(psi, d1, d2, dt, dw, 1)
	d1p, d2p := sys.Deriv(t+dt, pred)

	a0 := stratDrift(sys, t, psi, d1, d2, sq)
	a1 := stratDrift(sys, t+dt, pred, d1p, d2p, sq)

	out := psi.Clone()
	addScaled(out, complex(dt/2, 0), a0)
	addScaled(out, complex(dt/2, 0), a1)
	for j := range d2 {
		w := complex(dw[j], 0)
		if p.corrDiffusion {
			addScaled(out, w/2, d2[j])
			addScaled(out, w/2, d2p[j])
		} else {
			addScaled(out, w, d2[j])
		}
	}
	return out
}

// platen is the derivative-free explicit strong order-1.0 scheme, with
// channel-diagonal supporting values.
type platen struct{}

func (platen) Name() string    { return "platen" }
func (platen) Increments() int { return 1 }

func (platen) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	sq := math.Sqrt(dt)
	d1, d2 := sys.Deriv(t, psi)

	pred := eulerStep(psi, d1, d2, dt, dw, 1)
	d1p, _ := sys.Deriv(t+dt, pred)

	out := psi.Clone()
	addScaled(out, complex(dt/2, 0), d1)
	addScaled(out, complex(dt/2, 0), d1p)

	drifted := support(psi, complex(dt, 0), d1)
	for j, v := range d2 {
		_, d2p := sys.Deriv(t, support(drifted, complex(sq, 0), v))
		_, d2m := sys.Deriv(t, support(drifted, complex(-sq, 0), v))
		w := dw[j]
		addScaled(out, complex(w/4, 0), d2p[j])
		addScaled(out, complex(w/4, 0), d2m[j])
		addScaled(out, complex(w/2, 0), v)
		coef := complex((w*w-dt)/(4*sq), 0)
		addScaled(out, coef, d2p[j])
		addScaled(out, -coef, d2m[j])
	}
	return out
}

// milstein adds the commutative second-order diffusion correction
// ½ Σⱼₖ Lⱼd2ₖ (dWⱼdWₖ − δⱼₖ dt) to the Euler step, with the derivative
// operators approximated by forward directional differences.
type milstein struct{}

func (milstein) Name() string    { return "milstein" }
func (milstein) Increments() int { return 1 }

func milsteinTerms(sys *System, psi quant.Ket, t, dt float64, d2 []quant.Ket, dw []float64, stride int, out quant.Ket) {
	sq := math.Sqrt(dt)
	for j, v := range d2 {
		_, d2j := sys.Deriv(t, support(psi, complex(sq, 0), v))
		for k := range d2 {
			prod := dw[j*stride] * dw[k*stride]
			if j == k {
				prod -= dt
			}
			coef := complex(prod/(2*sq), 0)
			addScaled(out, coef, d2j[k])
			addScaled(out, -coef, d2[k])
		}
	}
}

func (milstein) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	d1, d2 := sys.Deriv(t, psi)
	out := eulerStep(psi, d1, d2, dt, dw, 1)
	milsteinTerms(sys, psi, t, dt, d2, dw, 1, out)
	return out
}

// milsteinImp is the drift-implicit Milstein variant; the implicit drift
// average is resolved by fixed-point iteration.
type milsteinImp struct{}

func (milsteinImp) Name() string    { return "milstein-imp" }
func (milsteinImp) Increments() int { return 1 }

const implicitIters = 3

func implicitDrift(sys *System, explicit quant.Ket, t, dt float64, start quant.Ket) quant.Ket {
	out := start
	for i := 0; i < implicitIters; i++ {
		d1, _ := sys.Deriv(t+dt, out)
		next := explicit.Clone()
		addScaled(next, complex(dt/2, 0), d1)
		out = next
	}
	return out
}

func (milsteinImp) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	d1, d2 := sys.Deriv(t, psi)

	// explicit part: ψ + ½d1·dt + stochastic Milstein terms
	explicit := psi.Clone()
	addScaled(explicit, complex(dt/2, 0), d1)
	for j, v := range d2 {
		addScaled(explicit, complex(dw[j], 0), v)
	}
	milsteinTerms(sys, psi, t, dt, d2, dw, 1, explicit)

	pred := eulerStep(psi, d1, d2, dt, dw, 1)
	return implicitDrift(sys, explicit, t, dt, pred)
}
