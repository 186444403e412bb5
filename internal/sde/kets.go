package sde

import "github.com/san-kum/qdyn/internal/quant"

// small vector helpers shared by the stepping schemes

// addScaled performs dst += a*src.
func addScaled(dst quant.Ket, a complex128, src quant.Ket) {
	if a == 0 {
		return
	}
	for i := range dst {
		dst[i] += a * src[i]
	}
}

// diffScaled returns a*(x − y).
func diffScaled(a complex128, x, y quant.Ket) quant.Ket {
	out := make(quant.Ket, len(x))
	for i := range out {
		out[i] = a * (x[i] - y[i])
	}
	return out
}

// support returns base + a*dir.
func support(base quant.Ket, a complex128, dir quant.Ket) quant.Ket {
	out := base.Clone()
	addScaled(out, a, dir)
	return out
}
