// Package analysis post-processes runs: spectra of expectation traces and
// measurement currents.
package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the discrete Fourier transform with a radix-2
// Cooley-Tukey recursion. Inputs are zero-padded to the next power of two.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	padded := make([]complex128, n)
	for i, v := range data {
		padded[i] = complex(v, 0)
	}
	return fft(padded)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func fft(data []complex128) []complex128 {
	n := len(data)
	if n <= 1 {
		return data
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// PowerSpectrum returns the magnitude of the positive-frequency half of the
// transform.
func PowerSpectrum(data []float64) []float64 {
	f := FFT(data)
	ps := make([]float64, len(f)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(f[i])
	}
	return ps
}

// Spectrum is a power spectrum with its frequency axis.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// NewSpectrum computes the power spectrum of a uniformly sampled signal with
// sample spacing dt.
func NewSpectrum(data []float64, dt float64) *Spectrum {
	ps := PowerSpectrum(data)
	n := 2 * len(ps)
	freqs := make([]float64, len(ps))
	for i := range freqs {
		freqs[i] = float64(i) / (float64(n) * dt)
	}
	return &Spectrum{Freqs: freqs, Power: ps}
}

// Dominant returns the strongest nonzero frequency.
func (s *Spectrum) Dominant() float64 {
	maxIdx := 0
	maxPower := 0.0
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > maxPower {
			maxPower = s.Power[i]
			maxIdx = i
		}
	}
	return s.Freqs[maxIdx]
}
