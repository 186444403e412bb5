package sde

import (
	"github.com/san-kum/qdyn/internal/quant"
)

// JumpStep advances one photodetection substep. Each channel compares its
// jump probability pⱼ = dt·⟨ψ|Aⱼ†Aⱼ|ψ⟩ against one uniform draw; a hit
// applies the collapse ψ → Aⱼψ/‖Aⱼψ‖, otherwise the state follows the
// no-jump drift. The returned counts mark which channels fired.
func JumpStep(sys *System, psi quant.Ket, t, dt float64, draws []float64) (quant.Ket, []int) {
	ops := sys.at(t)
	counts := make([]int, len(ops.a))

	jumped := false
	out := psi
	for j, u := range draws {
		adap := ops.ada[j].Apply(psi)
		p := dt * real(psi.Dot(adap))
		if u < p {
			out = ops.a[j].Apply(psi)
			out.Normalize()
			counts[j] = 1
			jumped = true
			break
		}
	}
	if jumped {
		return out, counts
	}

	// no-jump drift: ψ' = ψ − dt(iH + ½Σⱼ(Aⱼ†Aⱼ − ⟨Aⱼ†Aⱼ⟩))ψ, renormalized
	out = psi.Clone()
	h := ops.h.Apply(psi)
	addScaled(out, complex(0, -dt), h)
	for j := range ops.a {
		adap := ops.ada[j].Apply(psi)
		e := real(psi.Dot(adap))
		addScaled(out, complex(-dt/2, 0), adap)
		addScaled(out, complex(dt*e/2, 0), psi)
	}
	out.Normalize()
	return out, counts
}

// JumpRates returns the per-channel instantaneous detection rates
// ⟨ψ|Aⱼ†Aⱼ|ψ⟩.
func JumpRates(sys *System, t float64, psi quant.Ket) []float64 {
	ops := sys.at(t)
	rates := make([]float64, len(ops.a))
	for j := range ops.a {
		rates[j] = real(psi.Dot(ops.ada[j].Apply(psi)))
	}
	return rates
}
