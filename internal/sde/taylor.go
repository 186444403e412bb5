package sde

import (
	"math"

	"github.com/san-kum/qdyn/internal/quant"
)

// Order-1.5 and order-2.0 schemes. All derivative operators (L0 along the
// drift, L1 along each diffusion direction) are approximated by directional
// differences of the drift/diffusion functions, with the supporting-value
// spacing √dt used throughout. Each channel consumes two increments: the
// Wiener increment dW and an auxiliary dV building the double Itô integral
// dZ = ½dt(dW + dV/√3).

const invSqrt3 = 0.5773502691896258

// explicit15 is the derivative-free explicit strong order-1.5 scheme
// (supporting-value form), channel-diagonal with commutative cross terms.
type explicit15 struct{}

func (explicit15) Name() string    { return "explicit1.5" }
func (explicit15) Increments() int { return 2 }

func (explicit15) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	sq := math.Sqrt(dt)
	d1, d2 := sys.Deriv(t, psi)

	out := psi.Clone()
	addScaled(out, complex(dt, 0), d1)

	drifted := support(psi, complex(dt, 0), d1)
	for j, v := range d2 {
		dW := dw[2*j]
		dZ := 0.5 * dt * (dW + dw[2*j+1]*invSqrt3)

		up := support(drifted, complex(sq, 0), v)
		dn := support(drifted, complex(-sq, 0), v)
		d1u, d2u := sys.Deriv(t+dt, up)
		d1d, d2d := sys.Deriv(t+dt, dn)
		fp := support(up, complex(sq, 0), d2u[j])
		fm := support(up, complex(-sq, 0), d2u[j])
		_, d2fp := sys.Deriv(t+dt, fp)
		_, d2fm := sys.Deriv(t+dt, fm)

		addScaled(out, complex(dW, 0), v)
		// drift correction beyond the base d1·dt
		addScaled(out, complex(dt/4, 0), d1u)
		addScaled(out, complex(-dt/2, 0), d1)
		addScaled(out, complex(dt/4, 0), d1d)

		addScaled(out, complex(dZ/(2*sq), 0), d1u)
		addScaled(out, complex(-dZ/(2*sq), 0), d1d)

		c := complex((dW*dW-dt)/(4*sq), 0)
		addScaled(out, c, d2u[j])
		addScaled(out, -c, d2d[j])

		c = complex((dW*dt-dZ)/(2*dt), 0)
		addScaled(out, c, d2u[j])
		addScaled(out, complex(-2, 0)*c, v)
		addScaled(out, c, d2d[j])

		c = complex((dW*dW/3-dt)*dW/(4*dt), 0)
		addScaled(out, c, d2fp[j])
		addScaled(out, -c, d2fm[j])
		addScaled(out, -c, d2u[j])
		addScaled(out, c, d2d[j])
	}
	crossTerms(sys, psi, t, dt, d2, dw, 2, out)
	return out
}

// crossTerms adds the off-diagonal Milstein contributions
// ½ Σⱼ≠ₖ Lⱼd2ₖ dWⱼdWₖ for multi-channel systems (commutative treatment).
func crossTerms(sys *System, psi quant.Ket, t, dt float64, d2 []quant.Ket, dw []float64, stride int, out quant.Ket) {
	if len(d2) < 2 {
		return
	}
	sq := math.Sqrt(dt)
	for j, v := range d2 {
		_, d2j := sys.Deriv(t, support(psi, complex(sq, 0), v))
		for k := range d2 {
			if k == j {
				continue
			}
			coef := complex(dw[j*stride]*dw[k*stride]/(2*sq), 0)
			addScaled(out, coef, d2j[k])
			addScaled(out, -coef, d2[k])
		}
	}
}

// taylorDerivs bundles the finite-difference derivative fields a single
// channel of the 1.5/2.0 Taylor expansions needs.
type taylorDerivs struct {
	l1d2   quant.Ket // L1 d2
	l1d1   quant.Ket // L1 d1
	l0d2   quant.Ket // L0 d2
	l1l1d2 quant.Ket // L1 L1 d2
}

func channelDerivs(sys *System, psi quant.Ket, t, dt float64, d2 []quant.Ket, d2f []quant.Ket, j int) taylorDerivs {
	sq := math.Sqrt(dt)
	v := d2[j]
	up := support(psi, complex(sq, 0), v)
	dn := support(psi, complex(-sq, 0), v)
	d1u, d2u := sys.Deriv(t, up)
	d1d, d2d := sys.Deriv(t, dn)

	td := taylorDerivs{
		l1d2: diffScaled(complex(1/(2*sq), 0), d2u[j], d2d[j]),
		l1d1: diffScaled(complex(1/(2*sq), 0), d1u, d1d),
		l0d2: diffScaled(complex(1/dt, 0), d2f[j], d2[j]),
	}

	// L1L1 d2 = D²d2[v,v] + Dd2[L1d2]
	second := make(quant.Ket, len(psi))
	for i := range second {
		second[i] = (d2u[j][i] - 2*v[i] + d2d[j][i]) / complex(dt, 0)
	}
	wup := support(psi, complex(sq, 0), td.l1d2)
	wdn := support(psi, complex(-sq, 0), td.l1d2)
	_, d2wu := sys.Deriv(t, wup)
	_, d2wd := sys.Deriv(t, wdn)
	chain := diffScaled(complex(1/(2*sq), 0), d2wu[j], d2wd[j])
	for i := range second {
		second[i] += chain[i]
	}
	td.l1l1d2 = second
	return td
}

// taylor15 is the strong order-1.5 Itô–Taylor scheme with directional-
// difference derivative operators.
type taylor15 struct{}

func (taylor15) Name() string    { return "taylor1.5" }
func (taylor15) Increments() int { return 2 }

func taylor15Increment(sys *System, psi quant.Ket, t, dt float64, dw []float64, implicit bool) quant.Ket {
	d1, d2 := sys.Deriv(t, psi)
	drifted := support(psi, complex(dt, 0), d1)
	d1f, d2f := sys.Deriv(t+dt, drifted)

	out := psi.Clone()
	if implicit {
		// half the drift now, the other half resolved implicitly by the caller
		addScaled(out, complex(dt/2, 0), d1)
	} else {
		addScaled(out, complex(dt, 0), d1)
		// ½ L0d1 dt²
		addScaled(out, complex(dt/2, 0), d1f)
		addScaled(out, complex(-dt/2, 0), d1)
	}

	for j, v := range d2 {
		dW := dw[2*j]
		dZ := 0.5 * dt * (dW + dw[2*j+1]*invSqrt3)
		td := channelDerivs(sys, psi, t, dt, d2, d2f, j)

		addScaled(out, complex(dW, 0), v)
		addScaled(out, complex((dW*dW-dt)/2, 0), td.l1d2)
		addScaled(out, complex(dZ, 0), td.l1d1)
		addScaled(out, complex(dW*dt-dZ, 0), td.l0d2)
		addScaled(out, complex((dW*dW/3-dt)*dW/2, 0), td.l1l1d2)
	}
	crossTerms(sys, psi, t, dt, d2, dw, 2, out)
	return out
}

func (taylor15) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	return taylor15Increment(sys, psi, t, dt, dw, false)
}

// taylor15Imp is the drift-implicit order-1.5 variant.
type taylor15Imp struct{}

func (taylor15Imp) Name() string    { return "taylor1.5-imp" }
func (taylor15Imp) Increments() int { return 2 }

func (taylor15Imp) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	explicit := taylor15Increment(sys, psi, t, dt, dw, true)
	d1, d2 := sys.Deriv(t, psi)
	pred := eulerStep(psi, d1, d2, dt, dw, 2)
	return implicitDrift(sys, explicit, t, dt, pred)
}

// taylor20 extends the order-1.5 expansion with the leading second-order
// terms. It is restricted to a single constant stochastic channel; the
// higher multiple Itô integrals are approximated from dW and dZ, making the
// scheme order 2.0 in the weak sense used for ensemble averages.
type taylor20 struct{}

func (taylor20) Name() string     { return "taylor2.0" }
func (taylor20) Increments() int  { return 2 }
func (taylor20) MaxChannels() int { return 1 }

func (taylor20) Step(sys *System, psi quant.Ket, t, dt float64, dw []float64) quant.Ket {
	sq := math.Sqrt(dt)
	out := taylor15Increment(sys, psi, t, dt, dw, false)

	d1, d2 := sys.Deriv(t, psi)
	v := d2[0]
	dW := dw[0]

	// I(1,1,1,1) · L1L1L1 d2, directional third difference along d2
	up2 := support(psi, complex(2*sq, 0), v)
	up1 := support(psi, complex(sq, 0), v)
	dn1 := support(psi, complex(-sq, 0), v)
	dn2 := support(psi, complex(-2*sq, 0), v)
	_, a2 := sys.Deriv(t, up2)
	_, a1 := sys.Deriv(t, up1)
	_, b1 := sys.Deriv(t, dn1)
	_, b2 := sys.Deriv(t, dn2)
	third := make(quant.Ket, len(psi))
	den := complex(2*dt*sq, 0)
	for i := range third {
		third[i] = (a2[0][i] - 2*a1[0][i] + 2*b1[0][i] - b2[0][i]) / den
	}
	i1111 := dW*dW*dW*dW/24 - dW*dW*dt/4 + dt*dt/8
	addScaled(out, complex(i1111, 0), third)

	// I(1,1,0) · L1L1 d1, second directional difference of the drift
	d1u, _ := sys.Deriv(t, up1)
	d1d, _ := sys.Deriv(t, dn1)
	l1l1d1 := make(quant.Ket, len(psi))
	for i := range l1l1d1 {
		l1l1d1[i] = (d1u[i] - 2*d1[i] + d1d[i]) / complex(dt, 0)
	}
	i110 := (dW*dW - dt) * dt / 4
	addScaled(out, complex(i110, 0), l1l1d1)

	return out
}
